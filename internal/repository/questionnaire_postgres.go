package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/futig/coach-backend/internal/entity"
)

// QuestionnaireRepository persists one questionnaire state per user
type QuestionnaireRepository interface {
	Get(ctx context.Context, userID string) (*entity.QuestionnaireState, error)
	Save(ctx context.Context, userID string, state entity.QuestionnaireState) error
	Delete(ctx context.Context, userID string) error
}

var _ QuestionnaireRepository = &QuestionnairePostgres{}

type QuestionnairePostgres struct {
	db *pgxpool.Pool
}

func NewQuestionnairePostgres(db *pgxpool.Pool) *QuestionnairePostgres {
	return &QuestionnairePostgres{db: db}
}

// Get returns entity.ErrDiscoveryNotStarted when the user has no stored state
func (r *QuestionnairePostgres) Get(ctx context.Context, userID string) (*entity.QuestionnaireState, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT state FROM questionnaire_states WHERE user_id = $1`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrDiscoveryNotStarted
		}
		return nil, fmt.Errorf("get questionnaire state: %w", err)
	}

	var state entity.QuestionnaireState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode questionnaire state: %w", err)
	}
	if state.UserAnswers == nil {
		state.UserAnswers = entity.UserAnswers{}
	}

	return &state, nil
}

func (r *QuestionnairePostgres) Save(ctx context.Context, userID string, state entity.QuestionnaireState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode questionnaire state: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO questionnaire_states (user_id, state, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET state = EXCLUDED.state, updated_at = now()`,
		userID, raw,
	)
	if err != nil {
		return fmt.Errorf("save questionnaire state: %w", err)
	}

	return nil
}

func (r *QuestionnairePostgres) Delete(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM questionnaire_states WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete questionnaire state: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/futig/coach-backend/internal/telegram/state"
)

var _ state.Storage = &TelegramChatRepository{}

// TelegramChatRepository handles telegram chat persistence
type TelegramChatRepository struct {
	db *pgxpool.Pool
}

func NewTelegramChatRepository(db *pgxpool.Pool) *TelegramChatRepository {
	return &TelegramChatRepository{db: db}
}

// Get retrieves the telegram chat of a user
func (r *TelegramChatRepository) Get(ctx context.Context, userID int64) (*state.TelegramChat, error) {
	var (
		projectID pgtype.UUID
		stateData []byte
		chat      = state.TelegramChat{UserID: userID}
	)

	err := r.db.QueryRow(ctx, `
		SELECT project_id, state_data, created_at, updated_at
		FROM telegram_chats WHERE user_id = $1`,
		userID,
	).Scan(&projectID, &stateData, &chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, state.ErrChatNotFound
		}
		return nil, fmt.Errorf("query telegram chat: %w", err)
	}

	chat.ProjectID = fromPgUUID(projectID)
	if len(stateData) > 0 {
		chat.StateData = json.RawMessage(stateData)
	} else {
		chat.StateData = json.RawMessage("{}")
	}

	return &chat, nil
}

// Set upserts the telegram chat
func (r *TelegramChatRepository) Set(ctx context.Context, chat *state.TelegramChat) error {
	var projectID pgtype.UUID
	if chat.ProjectID != "" {
		id, err := toPgUUID(chat.ProjectID)
		if err != nil {
			return fmt.Errorf("parse project ID: %w", err)
		}
		projectID = id
	}

	stateData := []byte(chat.StateData)
	if len(stateData) == 0 {
		stateData = []byte("{}")
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO telegram_chats (user_id, project_id, state_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET project_id = EXCLUDED.project_id, state_data = EXCLUDED.state_data, updated_at = EXCLUDED.updated_at`,
		chat.UserID, projectID, stateData, chat.CreatedAt, chat.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert telegram chat: %w", err)
	}

	return nil
}

// Delete removes the telegram chat
func (r *TelegramChatRepository) Delete(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM telegram_chats WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete telegram chat: %w", err)
	}
	return nil
}

// Package discovery runs the questionnaire for one user at a time, persisting the state
// between messages.
package discovery

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	engine "github.com/futig/coach-backend/internal/discovery"
	"github.com/futig/coach-backend/internal/entity"
	"github.com/futig/coach-backend/internal/repository"
)

type DiscoveryUsecase struct {
	stateRepo repository.QuestionnaireRepository
	metrics   Metrics
	logger    *zap.Logger
}

func NewUsecase(stateRepo repository.QuestionnaireRepository, metrics Metrics, logger *zap.Logger) *DiscoveryUsecase {
	return &DiscoveryUsecase{
		stateRepo: stateRepo,
		metrics:   metrics,
		logger:    logger,
	}
}

// Start answers the first message of a user. A message naming a known model is
// acknowledged without touching the stored state; any other message restarts the
// questionnaire from the first question.
func (uc *DiscoveryUsecase) Start(ctx context.Context, userID, input string) (*entity.DiscoveryReply, error) {
	reply := engine.Begin(input)

	if reply.KnownModel != nil {
		ctxzap.Info(ctx, "known model detected, questionnaire skipped",
			zap.String("user_id", userID),
			zap.String("model", string(*reply.KnownModel)),
		)
		return &reply, nil
	}

	if err := uc.stateRepo.Save(ctx, userID, engine.NewState()); err != nil {
		return nil, fmt.Errorf("save questionnaire state: %w", err)
	}

	ctxzap.Info(ctx, "questionnaire started", zap.String("user_id", userID))
	return &reply, nil
}

// Answer records rawAnswer for the pending question. When it was the last question the
// reply carries the recommendation. Answering a completed questionnaire fails with
// *entity.InvalidStateError and leaves the stored state unchanged.
func (uc *DiscoveryUsecase) Answer(ctx context.Context, userID, rawAnswer string) (*entity.DiscoveryReply, error) {
	state, err := uc.stateRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	next, err := engine.UpdateState(*state, rawAnswer)
	if err != nil {
		return nil, err
	}

	if err := uc.stateRepo.Save(ctx, userID, next); err != nil {
		return nil, fmt.Errorf("save questionnaire state: %w", err)
	}

	if !next.IsComplete {
		question, _ := engine.CurrentQuestion(next)
		ctxzap.Debug(ctx, "answer recorded",
			zap.String("user_id", userID),
			zap.Int("next_question", question.Index),
		)
		return &entity.DiscoveryReply{
			Message:  question.Text,
			Question: &question,
		}, nil
	}

	rec := engine.CalculateRecommendation(next.UserAnswers)
	uc.metrics.QuestionnaireCompleted()
	uc.metrics.Recommendation(modelNames(rec.RecommendedModels))

	ctxzap.Info(ctx, "questionnaire completed",
		zap.String("user_id", userID),
		zap.Strings("recommended", modelNames(rec.RecommendedModels)),
		zap.Bool("tie", rec.IsTie()),
	)

	return &entity.DiscoveryReply{
		Message:        engine.RecommendationMessage(rec),
		Completed:      true,
		Recommendation: &rec,
	}, nil
}

// Recommendation scores whatever has been answered so far
func (uc *DiscoveryUsecase) Recommendation(ctx context.Context, userID string) (*entity.RecommendationDTO, error) {
	state, err := uc.stateRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	rec := engine.CalculateRecommendation(state.UserAnswers)
	return &entity.RecommendationDTO{
		Label:          rec.Label(),
		Models:         rec.RecommendedModels,
		IsTie:          rec.IsTie(),
		ScoreBreakdown: rec.ScoreBreakdown,
		AnsweredCount:  len(state.UserAnswers),
	}, nil
}

// Reset forgets the stored questionnaire of a user
func (uc *DiscoveryUsecase) Reset(ctx context.Context, userID string) error {
	if err := uc.stateRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("reset questionnaire: %w", err)
	}
	ctxzap.Info(ctx, "questionnaire reset", zap.String("user_id", userID))
	return nil
}

func modelNames(models []entity.ModelKey) []string {
	out := make([]string, len(models))
	for i, m := range models {
		out[i] = string(m)
	}
	return out
}

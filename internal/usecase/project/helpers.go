package project

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/coach-backend/internal/entity"
	"github.com/futig/coach-backend/internal/pkg/retry"
)

// maxHistoryMessages bounds the chat history forwarded to the collaborator
const maxHistoryMessages = 20

func resolveBusinessType(req *entity.CreateProjectRequest) (entity.BusinessType, error) {
	switch {
	case req.BusinessType != "" && req.Model != "":
		if err := req.Model.Validate(); err != nil {
			return "", err
		}
		if req.Model.BusinessType() != req.BusinessType {
			return "", fmt.Errorf("%w: model %q does not match business type %q",
				entity.ErrInvalidParameter, req.Model, req.BusinessType)
		}
		return req.BusinessType, req.BusinessType.Validate()
	case req.BusinessType != "":
		return req.BusinessType, req.BusinessType.Validate()
	case req.Model != "":
		if err := req.Model.Validate(); err != nil {
			return "", err
		}
		return req.Model.BusinessType(), nil
	default:
		return "", fmt.Errorf("%w: business_type or model", entity.ErrMissingField)
	}
}

// generate calls the collaborator with bounded retries. Only classified collaborator
// failures are retried; caller cancellation ends the loop.
func (uc *ProjectUsecase) generate(ctx context.Context, req *entity.LLMGenerateRequest) (*entity.LLMGenerateResponse, error) {
	return retry.Do(ctx, uc.retryCfg,
		func(ctx context.Context) (*entity.LLMGenerateResponse, error) {
			return uc.llm.Generate(ctx, req)
		},
		isTransient,
		func(attempt uint, err error) {
			ctxzap.Warn(ctx, "text generation failed, retrying",
				zap.Uint("attempt", attempt+1),
				zap.Error(err),
			)
		},
	)
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, entity.ErrLLMRateLimited) || errors.Is(err, entity.ErrLLMUnavailable)
}

// conflictRetry bounds how often a change is reapplied after another writer saved first
var conflictRetry = &retry.RetryConfig{Attempts: 4, Delay: 10 * time.Millisecond, MaxDelay: 100 * time.Millisecond}

func isConflict(err error) bool {
	return errors.Is(err, entity.ErrProjectConflict)
}

// update loads the project, lets fn change it and saves it. When the save loses to a
// concurrent writer the project is reloaded and fn runs again, so fn must derive every
// change from the project it is handed.
func (uc *ProjectUsecase) update(ctx context.Context, id string, fn func(project *entity.Project) error) (*entity.Project, error) {
	return retry.Do(ctx, conflictRetry,
		func(ctx context.Context) (*entity.Project, error) {
			project, err := uc.projectRepo.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			if err := fn(project); err != nil {
				return nil, err
			}
			saved, err := uc.projectRepo.Update(ctx, project)
			if err != nil {
				return nil, fmt.Errorf("save project: %w", err)
			}
			return saved, nil
		},
		isConflict,
		func(attempt uint, err error) {
			ctxzap.Warn(ctx, "project changed concurrently, reapplying",
				zap.String("project_id", id),
				zap.Uint("attempt", attempt+1),
			)
		},
	)
}

// mutate applies fn to the project's memory and saves it
func (uc *ProjectUsecase) mutate(ctx context.Context, id string, fn func(mem *entity.ProjectMemory) error) (*entity.Project, error) {
	return uc.update(ctx, id, func(project *entity.Project) error {
		return fn(&project.Memory)
	})
}

// completeAndAdvance marks the current stage completed and enters the next one. It
// reports false at the terminal stage.
func (uc *ProjectUsecase) completeAndAdvance(mem *entity.ProjectMemory) (bool, error) {
	if err := uc.controller.MarkStageCompleted(mem, mem.CurrentStage); err != nil {
		return false, err
	}

	_, ok, err := uc.controller.AdvanceStage(mem)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// recordAdvance counts a stage transition once it is saved
func (uc *ProjectUsecase) recordAdvance(ctx context.Context, from entity.StageKey, saved *entity.Project) {
	uc.metrics.StageAdvanced(string(saved.Memory.BusinessType), string(saved.Memory.CurrentStage))
	ctxzap.Info(ctx, "stage advanced",
		zap.String("project_id", saved.ID),
		zap.String("from", string(from)),
		zap.String("to", string(saved.Memory.CurrentStage)),
	)
}

func trimHistory(history []entity.ChatMessage) []entity.ChatMessage {
	out := make([]entity.ChatMessage, 0, len(history))
	for _, m := range history {
		if m.Role != entity.RoleUser && m.Role != entity.RoleAssistant {
			continue
		}
		if m.Content == "" {
			continue
		}
		out = append(out, m)
	}
	if len(out) > maxHistoryMessages {
		out = out[len(out)-maxHistoryMessages:]
	}
	return out
}

func removeTask(tasks []string, task string) []string {
	out := make([]string, 0, len(tasks))
	removed := false
	for _, t := range tasks {
		if !removed && t == task {
			removed = true
			continue
		}
		out = append(out, t)
	}
	return out
}

func derefTodos(todos []*entity.Todo) []entity.Todo {
	out := make([]entity.Todo, len(todos))
	for i, t := range todos {
		out[i] = *t
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

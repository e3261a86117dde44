package handlers

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/coach-backend/internal/entity"
	"github.com/futig/coach-backend/internal/telegram/keyboard"
	"github.com/futig/coach-backend/internal/telegram/render"
	"github.com/futig/coach-backend/internal/telegram/state"
)

// projectStarter creates the project once a model is settled and binds the chat to it
type projectStarter struct {
	sender       *MessageSender
	stateManager *state.Manager
	projectUC    ProjectUsecase
	keyboard     *keyboard.Builder
}

func (s *projectStarter) start(ctx context.Context, msg *Message, model entity.ModelKey) error {
	project, err := s.projectUC.CreateProject(ctx, &entity.CreateProjectRequest{
		UserID: DiscoveryUserID(msg.UserID),
		Model:  model,
	})
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	if err := s.stateManager.SetProject(ctx, msg.UserID, project.ID); err != nil {
		return fmt.Errorf("bind chat to project: %w", err)
	}

	view, err := s.projectUC.CurrentStage(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("load first stage: %w", err)
	}

	ctxzap.Info(ctx, "project started from chat",
		zap.String("project_id", project.ID),
		zap.String("model", string(model)),
	)

	return s.sender.SendCritical(ctx, msg.ChatID, render.RenderProjectCreated(model, view), s.keyboard.ProjectKeyboard())
}

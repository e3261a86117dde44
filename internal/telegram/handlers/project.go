package handlers

import (
	"context"

	"github.com/futig/coach-backend/internal/entity"
	"github.com/futig/coach-backend/internal/telegram/render"
	"github.com/futig/coach-backend/internal/telegram/state"
)

// ProjectHandler answers free text with the stage-aware coach
type ProjectHandler struct {
	BaseHandler
	bot          API
	stateManager *state.Manager
	projectUC    ProjectUsecase
}

func NewProjectHandler(bot API, stateManager *state.Manager, projectUC ProjectUsecase) *ProjectHandler {
	return &ProjectHandler{
		BaseHandler: BaseHandler{
			phase:         state.PhaseProject,
			messageSender: NewMessageSender(bot),
		},
		bot:          bot,
		stateManager: stateManager,
		projectUC:    projectUC,
	}
}

func (h *ProjectHandler) Handle(ctx context.Context, msg *Message) error {
	chat, err := h.stateManager.GetChat(ctx, msg.UserID)
	if err != nil {
		return err
	}
	if chat.ProjectID == "" {
		h.sendMessage(ctx, msg.ChatID, render.MsgNoProject, nil)
		return nil
	}

	typing := NewTypingNotifier(h.bot, msg.ChatID)
	typing.Start(ctx)
	reply, err := h.projectUC.Chat(ctx, chat.ProjectID, &entity.ChatRequest{Message: msg.Text})
	typing.Stop()

	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	h.sendMessage(ctx, msg.ChatID, reply.Content, nil)
	return nil
}

package handlers

import (
	"context"

	engine "github.com/futig/coach-backend/internal/discovery"
	"github.com/futig/coach-backend/internal/telegram/keyboard"
	"github.com/futig/coach-backend/internal/telegram/render"
	"github.com/futig/coach-backend/internal/telegram/state"
)

// DiscoveryHandler handles the first free-text message of a chat
type DiscoveryHandler struct {
	BaseHandler
	stateManager *state.Manager
	discoveryUC  DiscoveryUsecase
	starter      *projectStarter
}

func NewDiscoveryHandler(
	bot API,
	stateManager *state.Manager,
	discoveryUC DiscoveryUsecase,
	projectUC ProjectUsecase,
	kb *keyboard.Builder,
) *DiscoveryHandler {
	sender := NewMessageSender(bot)
	return &DiscoveryHandler{
		BaseHandler: BaseHandler{
			phase:         state.PhaseDiscovery,
			messageSender: sender,
		},
		stateManager: stateManager,
		discoveryUC:  discoveryUC,
		starter: &projectStarter{
			sender:       sender,
			stateManager: stateManager,
			projectUC:    projectUC,
			keyboard:     kb,
		},
	}
}

// Handle skips straight to a project when the message names a model, otherwise starts the questionnaire
func (h *DiscoveryHandler) Handle(ctx context.Context, msg *Message) error {
	reply, err := h.discoveryUC.Start(ctx, DiscoveryUserID(msg.UserID), msg.Text)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	if reply.KnownModel != nil {
		h.sendMessage(ctx, msg.ChatID, reply.Message, nil)
		return h.starter.start(ctx, msg, *reply.KnownModel)
	}

	data, err := h.stateManager.GetStateData(ctx, msg.UserID)
	if err != nil {
		return err
	}
	data.Phase = state.PhaseQuestionnaire
	if err := h.stateManager.UpdateStateData(ctx, msg.UserID, data); err != nil {
		return err
	}

	h.sendMessage(ctx, msg.ChatID, render.RenderQuestion(reply.Question, engine.QuestionCount()), nil)
	return nil
}

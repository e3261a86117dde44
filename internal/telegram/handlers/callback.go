package handlers

import (
	"context"
	"fmt"
	"slices"

	"github.com/futig/coach-backend/internal/entity"
	"github.com/futig/coach-backend/internal/telegram/keyboard"
	"github.com/futig/coach-backend/internal/telegram/state"
)

const msgChoiceExpired = "That choice is no longer available. Send /start to begin again."

// CallbackHandler handles inline button presses
type CallbackHandler struct {
	BaseHandler
	stateManager *state.Manager
	starter      *projectStarter
	commands     *CommandHandler
}

func NewCallbackHandler(
	bot API,
	stateManager *state.Manager,
	projectUC ProjectUsecase,
	commands *CommandHandler,
	kb *keyboard.Builder,
) *CallbackHandler {
	sender := NewMessageSender(bot)
	return &CallbackHandler{
		BaseHandler: BaseHandler{
			phase:         PhaseCallback,
			messageSender: sender,
		},
		stateManager: stateManager,
		starter: &projectStarter{
			sender:       sender,
			stateManager: stateManager,
			projectUC:    projectUC,
			keyboard:     kb,
		},
		commands: commands,
	}
}

func (h *CallbackHandler) Handle(ctx context.Context, msg *Message) error {
	cb, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		return err
	}

	switch cb.Action {
	case keyboard.ActionModel:
		return h.chooseModel(ctx, msg, entity.ModelKey(cb.Value))
	case keyboard.ActionCommand:
		return h.commands.Run(ctx, msg, cb.Value, "")
	default:
		return fmt.Errorf("unknown callback action %q", cb.Action)
	}
}

// chooseModel accepts only a model from the pending tie, so stale buttons do nothing
func (h *CallbackHandler) chooseModel(ctx context.Context, msg *Message, model entity.ModelKey) error {
	data, err := h.stateManager.GetStateData(ctx, msg.UserID)
	if err != nil {
		return err
	}

	if data.Phase != state.PhaseChoosingModel || !slices.Contains(data.PendingModels, model) {
		h.sendMessage(ctx, msg.ChatID, msgChoiceExpired, nil)
		return nil
	}

	return h.starter.start(ctx, msg, model)
}

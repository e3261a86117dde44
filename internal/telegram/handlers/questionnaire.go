package handlers

import (
	"context"
	"errors"

	engine "github.com/futig/coach-backend/internal/discovery"
	"github.com/futig/coach-backend/internal/entity"
	"github.com/futig/coach-backend/internal/telegram/keyboard"
	"github.com/futig/coach-backend/internal/telegram/render"
	"github.com/futig/coach-backend/internal/telegram/state"
)

// QuestionnaireHandler feeds answers to the questionnaire and acts on the recommendation
type QuestionnaireHandler struct {
	BaseHandler
	stateManager *state.Manager
	discoveryUC  DiscoveryUsecase
	keyboard     *keyboard.Builder
	starter      *projectStarter
}

func NewQuestionnaireHandler(
	bot API,
	stateManager *state.Manager,
	discoveryUC DiscoveryUsecase,
	projectUC ProjectUsecase,
	kb *keyboard.Builder,
) *QuestionnaireHandler {
	sender := NewMessageSender(bot)
	return &QuestionnaireHandler{
		BaseHandler: BaseHandler{
			phase:         state.PhaseQuestionnaire,
			messageSender: sender,
		},
		stateManager: stateManager,
		discoveryUC:  discoveryUC,
		keyboard:     kb,
		starter: &projectStarter{
			sender:       sender,
			stateManager: stateManager,
			projectUC:    projectUC,
			keyboard:     kb,
		},
	}
}

func (h *QuestionnaireHandler) Handle(ctx context.Context, msg *Message) error {
	reply, err := h.discoveryUC.Answer(ctx, DiscoveryUserID(msg.UserID), msg.Text)
	if err != nil {
		// the stored questionnaire is gone or finished; fall back to a fresh start
		if errors.Is(err, entity.ErrDiscoveryNotStarted) || errors.Is(err, entity.ErrInvalidState) {
			if resetErr := h.setPhase(ctx, msg.UserID, state.PhaseDiscovery); resetErr != nil {
				return resetErr
			}
		}
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	if !reply.Completed {
		h.sendMessage(ctx, msg.ChatID, render.RenderQuestion(reply.Question, engine.QuestionCount()), nil)
		return nil
	}

	rec := reply.Recommendation
	if rec.IsTie() {
		if err := h.setPhase(ctx, msg.UserID, state.PhaseChoosingModel, rec.RecommendedModels...); err != nil {
			return err
		}
		return h.messageSender.SendCritical(ctx, msg.ChatID, reply.Message, h.keyboard.ModelChoiceKeyboard(rec.RecommendedModels))
	}

	h.sendMessage(ctx, msg.ChatID, reply.Message, nil)
	return h.starter.start(ctx, msg, rec.RecommendedModels[0])
}

func (h *QuestionnaireHandler) setPhase(ctx context.Context, userID int64, phase state.Phase, pending ...entity.ModelKey) error {
	data, err := h.stateManager.GetStateData(ctx, userID)
	if err != nil {
		return err
	}
	data.Phase = phase
	data.PendingModels = pending
	return h.stateManager.UpdateStateData(ctx, userID, data)
}

// ChoiceHandler reminds the user to press a button while a tie is pending
type ChoiceHandler struct {
	BaseHandler
	stateManager *state.Manager
	keyboard     *keyboard.Builder
}

func NewChoiceHandler(bot API, stateManager *state.Manager, kb *keyboard.Builder) *ChoiceHandler {
	return &ChoiceHandler{
		BaseHandler: BaseHandler{
			phase:         state.PhaseChoosingModel,
			messageSender: NewMessageSender(bot),
		},
		stateManager: stateManager,
		keyboard:     kb,
	}
}

func (h *ChoiceHandler) Handle(ctx context.Context, msg *Message) error {
	data, err := h.stateManager.GetStateData(ctx, msg.UserID)
	if err != nil {
		return err
	}
	h.sendMessage(ctx, msg.ChatID, render.MsgPickModel, h.keyboard.ModelChoiceKeyboard(data.PendingModels))
	return nil
}

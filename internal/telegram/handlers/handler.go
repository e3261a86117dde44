package handlers

import (
	"context"
	"strconv"

	"github.com/futig/coach-backend/internal/telegram/state"
)

// PhaseCallback routes inline button presses; the remaining keys are chat phases
const PhaseCallback state.Phase = "callback"

// Message represents a normalized Telegram message
type Message struct {
	ChatID       int64
	UserID       int64
	MessageID    int
	Text         string
	CallbackData string
	CallbackID   string
}

// Handler processes messages of one chat phase
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
	Phase() state.Phase
}

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	phase         state.Phase
	messageSender *MessageSender
}

// Phase implements Handler
func (h *BaseHandler) Phase() state.Phase {
	return h.phase
}

func (h *BaseHandler) sendMessage(ctx context.Context, chatID int64, text string, markup interface{}) {
	if h.messageSender != nil {
		_ = h.messageSender.Send(ctx, chatID, text, markup)
	}
}

var validPhases = map[state.Phase]bool{
	PhaseCallback:            true,
	state.PhaseDiscovery:     true,
	state.PhaseQuestionnaire: true,
	state.PhaseChoosingModel: true,
	state.PhaseProject:       true,
}

// IsValidPhase checks if a phase is valid for handler registration
func IsValidPhase(phase state.Phase) bool {
	return validPhases[phase]
}

// DiscoveryUserID is the questionnaire key of a Telegram user. HTTP callers pick their own ids.
func DiscoveryUserID(telegramUserID int64) string {
	return "tg:" + strconv.FormatInt(telegramUserID, 10)
}

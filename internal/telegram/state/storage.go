package state

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/futig/coach-backend/internal/entity"
)

var ErrChatNotFound = errors.New("telegram chat not found")

// Phase is the conversation mode a chat is in
type Phase string

const (
	// PhaseDiscovery waits for the first free-text message
	PhaseDiscovery Phase = "discovery"
	// PhaseQuestionnaire routes messages to the questionnaire
	PhaseQuestionnaire Phase = "questionnaire"
	// PhaseChoosingModel waits for a button press after a tie
	PhaseChoosingModel Phase = "choosing_model"
	// PhaseProject routes messages to the project coach
	PhaseProject Phase = "project"
)

// TelegramChat maps a telegram user to their project and UI state
type TelegramChat struct {
	UserID    int64           `json:"user_id"`
	ProjectID string          `json:"project_id,omitempty"`
	StateData json.RawMessage `json:"state_data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StateData is the telegram-specific UI state stored in the state_data JSONB column
type StateData struct {
	Version int   `json:"version,omitempty"`
	Phase   Phase `json:"phase,omitempty"`

	// Models offered as buttons after a tied recommendation
	PendingModels []entity.ModelKey `json:"pending_models,omitempty"`

	// Todo ids in the order they were last listed, so /done <n> is stable
	ListedTodoIDs []string `json:"listed_todo_ids,omitempty"`

	// Processing state (for idempotency)
	IsProcessing      bool      `json:"is_processing,omitempty"`
	ProcessingStarted time.Time `json:"processing_started,omitempty"`
}

const (
	StateDataCurrentVersion = 1
)

// Storage persists telegram chats
type Storage interface {
	Get(ctx context.Context, userID int64) (*TelegramChat, error)
	Set(ctx context.Context, chat *TelegramChat) error
	Delete(ctx context.Context, userID int64) error
}

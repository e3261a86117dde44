package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

type contextKey string

const stateDataKey contextKey = "state_data"

// processingTimeout releases a chat whose handler died while holding the processing flag
const processingTimeout = 3 * time.Minute

// StateDataFromContext retrieves StateData from context if available
func StateDataFromContext(ctx context.Context) (*StateData, bool) {
	data, ok := ctx.Value(stateDataKey).(*StateData)
	return data, ok
}

// ContextWithStateData attaches StateData to context for request-scoped caching
func ContextWithStateData(ctx context.Context, data *StateData) context.Context {
	return context.WithValue(ctx, stateDataKey, data)
}

// Manager manages telegram chats
type Manager struct {
	storage Storage
	now     func() time.Time
	locks   userLocks
}

func NewManager(storage Storage) *Manager {
	return &Manager{
		storage: storage,
		now:     time.Now,
	}
}

// GetChat loads the chat, creating an empty one in the discovery phase when none exists
func (m *Manager) GetChat(ctx context.Context, userID int64) (*TelegramChat, error) {
	chat, err := m.storage.Get(ctx, userID)
	if errors.Is(err, ErrChatNotFound) {
		now := m.now()
		return &TelegramChat{
			UserID:    userID,
			StateData: json.RawMessage("{}"),
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get telegram chat from storage: %w", err)
	}

	return chat, nil
}

// SetChat saves the chat
func (m *Manager) SetChat(ctx context.Context, chat *TelegramChat) error {
	chat.UpdatedAt = m.now()

	if err := m.storage.Set(ctx, chat); err != nil {
		return fmt.Errorf("save telegram chat to storage: %w", err)
	}

	return nil
}

// DeleteChat forgets the chat; the next message starts over in discovery
func (m *Manager) DeleteChat(ctx context.Context, userID int64) error {
	if err := m.storage.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete telegram chat from storage: %w", err)
	}

	return nil
}

// GetStateData extracts typed state data, preferring the copy cached in ctx
func (m *Manager) GetStateData(ctx context.Context, userID int64) (*StateData, error) {
	if data, ok := StateDataFromContext(ctx); ok {
		return data, nil
	}

	chat, err := m.GetChat(ctx, userID)
	if err != nil {
		return nil, err
	}

	return decodeStateData(chat.StateData)
}

// UpdateStateData stores data as the chat's state
func (m *Manager) UpdateStateData(ctx context.Context, userID int64, data *StateData) error {
	chat, err := m.GetChat(ctx, userID)
	if err != nil {
		return err
	}

	data.Version = StateDataCurrentVersion

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal state data: %w", err)
	}

	chat.StateData = jsonData
	return m.SetChat(ctx, chat)
}

// SetProject binds the chat to a project and moves it to the project phase
func (m *Manager) SetProject(ctx context.Context, userID int64, projectID string) error {
	chat, err := m.GetChat(ctx, userID)
	if err != nil {
		return err
	}

	// mutate the request-scoped copy so later updates in the same request keep the phase
	data, err := m.GetStateData(ctx, userID)
	if err != nil {
		return err
	}
	data.Phase = PhaseProject
	data.PendingModels = nil
	data.Version = StateDataCurrentVersion

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal state data: %w", err)
	}

	chat.ProjectID = projectID
	chat.StateData = jsonData
	return m.SetChat(ctx, chat)
}

// TryStartProcessing sets the processing flag. It returns false when another message of the
// same user is still being handled. The check and the write happen under the user's lock
// against freshly loaded state; a copy cached in ctx is refreshed to what was written.
func (m *Manager) TryStartProcessing(ctx context.Context, userID int64) (bool, error) {
	unlock := m.locks.lock(userID)
	defer unlock()

	chat, err := m.GetChat(ctx, userID)
	if err != nil {
		return false, err
	}
	data, err := decodeStateData(chat.StateData)
	if err != nil {
		return false, err
	}

	if data.IsProcessing && m.now().Sub(data.ProcessingStarted) < processingTimeout {
		return false, nil
	}

	data.IsProcessing = true
	data.ProcessingStarted = m.now()
	if err := m.UpdateStateData(ctx, userID, data); err != nil {
		return false, err
	}

	if cached, ok := StateDataFromContext(ctx); ok {
		*cached = *data
	}
	return true, nil
}

// FinishProcessing clears the processing flag
func (m *Manager) FinishProcessing(ctx context.Context, userID int64) error {
	unlock := m.locks.lock(userID)
	defer unlock()

	data, err := m.GetStateData(ctx, userID)
	if err != nil {
		return err
	}

	data.IsProcessing = false
	data.ProcessingStarted = time.Time{}
	return m.UpdateStateData(ctx, userID, data)
}

func decodeStateData(raw json.RawMessage) (*StateData, error) {
	data := &StateData{Version: StateDataCurrentVersion, Phase: PhaseDiscovery}
	if len(raw) == 0 {
		return data, nil
	}

	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("unmarshal state data: %w", err)
	}

	if data.Version == 0 {
		data.Version = StateDataCurrentVersion
	}
	if data.Phase == "" {
		data.Phase = PhaseDiscovery
	}

	return data, nil
}

// userLocks hands out one mutex per user and forgets it once nobody holds or waits for it
type userLocks struct {
	mu    sync.Mutex
	users map[int64]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func (l *userLocks) lock(userID int64) (unlock func()) {
	l.mu.Lock()
	if l.users == nil {
		l.users = make(map[int64]*userLock)
	}
	ul, ok := l.users[userID]
	if !ok {
		ul = &userLock{}
		l.users[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.Lock()
	return func() {
		ul.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.users, userID)
		}
		l.mu.Unlock()
	}
}

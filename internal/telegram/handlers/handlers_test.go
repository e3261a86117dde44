package handlers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/coach-backend/internal/entity"
	"github.com/futig/coach-backend/internal/pkg/usermsg"
	"github.com/futig/coach-backend/internal/telegram/keyboard"
	"github.com/futig/coach-backend/internal/telegram/render"
	"github.com/futig/coach-backend/internal/telegram/state"
)

const (
	testUser int64 = 42
	testChat int64 = 420
)

type fakeAPI struct {
	mu        sync.Mutex
	messages  []tgbotapi.MessageConfig
	documents []tgbotapi.DocumentConfig
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		f.messages = append(f.messages, m)
	case tgbotapi.DocumentConfig:
		f.documents = append(f.documents, m)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) lastText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return ""
	}
	return f.messages[len(f.messages)-1].Text
}

type memoryStorage struct {
	mu    sync.Mutex
	chats map[int64]state.TelegramChat
}

func (s *memoryStorage) Get(_ context.Context, userID int64) (*state.TelegramChat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[userID]
	if !ok {
		return nil, state.ErrChatNotFound
	}
	return &chat, nil
}

func (s *memoryStorage) Set(_ context.Context, chat *state.TelegramChat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats[chat.UserID] = *chat
	return nil
}

func (s *memoryStorage) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chats, userID)
	return nil
}

type fakeDiscovery struct {
	startReply  *entity.DiscoveryReply
	answerReply *entity.DiscoveryReply
	answerErr   error
	resetUsers  []string
	lastUser    string
}

func (f *fakeDiscovery) Start(_ context.Context, userID, _ string) (*entity.DiscoveryReply, error) {
	f.lastUser = userID
	return f.startReply, nil
}

func (f *fakeDiscovery) Answer(_ context.Context, userID, _ string) (*entity.DiscoveryReply, error) {
	f.lastUser = userID
	return f.answerReply, f.answerErr
}

func (f *fakeDiscovery) Reset(_ context.Context, userID string) error {
	f.resetUsers = append(f.resetUsers, userID)
	return nil
}

type fakeProjects struct {
	created   []entity.ModelKey
	todos     []*entity.Todo
	generated int
	completed []string
	advance   bool
	chatErr   error
}

func (f *fakeProjects) CreateProject(_ context.Context, req *entity.CreateProjectRequest) (*entity.Project, error) {
	f.created = append(f.created, req.Model)
	return &entity.Project{ID: "p-1", UserID: req.UserID}, nil
}

func (f *fakeProjects) CurrentStage(context.Context, string) (*entity.StageView, error) {
	return &entity.StageView{
		Stage:     entity.StagePreQualification,
		Title:     "Pre-qualification",
		Objective: "Check the basics",
		Checklist: []string{"Confirm budget"},
	}, nil
}

func (f *fakeProjects) GenerateTasks(context.Context, string) ([]*entity.Todo, error) {
	f.generated++
	gen := []*entity.Todo{
		{ID: "t-1", Stage: entity.StagePreQualification, Task: "Confirm budget"},
		{ID: "t-2", Stage: entity.StagePreQualification, Task: "Block weekly hours"},
	}
	f.todos = append(f.todos, gen...)
	return gen, nil
}

func (f *fakeProjects) ListTodos(context.Context, string) ([]*entity.Todo, error) {
	return f.todos, nil
}

func (f *fakeProjects) CompleteTask(_ context.Context, _, todoID string) (*entity.CompleteTaskResult, error) {
	f.completed = append(f.completed, todoID)
	for _, t := range f.todos {
		if t.ID == todoID {
			t.Completed = true
			return &entity.CompleteTaskResult{Todo: t, Project: &entity.Project{ID: "p-1"}, StageComplete: f.advance, Advanced: f.advance}, nil
		}
	}
	return nil, entity.ErrTodoNotFound
}

func (f *fakeProjects) Chat(context.Context, string, *entity.ChatRequest) (*entity.ChatResponse, error) {
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	return &entity.ChatResponse{Content: "Start with your budget."}, nil
}

func (f *fakeProjects) ExportPlan(_ context.Context, _ string, format entity.ResultFormat) (*entity.ExportResult, error) {
	return &entity.ExportResult{Filename: "plan." + string(format), Data: []byte("%PDF")}, nil
}

type fixture struct {
	api       *fakeAPI
	manager   *state.Manager
	discovery *fakeDiscovery
	projects  *fakeProjects
	commands  *CommandHandler
	kb        *keyboard.Builder
}

func newFixture() *fixture {
	f := &fixture{
		api:       &fakeAPI{},
		manager:   state.NewManager(&memoryStorage{chats: make(map[int64]state.TelegramChat)}),
		discovery: &fakeDiscovery{},
		projects:  &fakeProjects{},
		kb:        keyboard.NewBuilder(),
	}
	f.commands = NewCommandHandler(f.api, f.manager, f.discovery, f.projects, f.kb)
	return f
}

func (f *fixture) phase(t *testing.T) *state.StateData {
	t.Helper()
	data, err := f.manager.GetStateData(context.Background(), testUser)
	require.NoError(t, err)
	return data
}

func text(s string) *Message {
	return &Message{ChatID: testChat, UserID: testUser, Text: s}
}

func TestDiscoveryHandler_KnownModelCreatesProject(t *testing.T) {
	f := newFixture()
	model := entity.ModelSaaS
	f.discovery.startReply = &entity.DiscoveryReply{Message: "Great!", KnownModel: &model}

	h := NewDiscoveryHandler(f.api, f.manager, f.discovery, f.projects, f.kb)
	require.NoError(t, h.Handle(context.Background(), text("I want to build a SaaS")))

	assert.Equal(t, "tg:42", f.discovery.lastUser)
	assert.Equal(t, []entity.ModelKey{entity.ModelSaaS}, f.projects.created)
	assert.Equal(t, state.PhaseProject, f.phase(t).Phase)

	chat, err := f.manager.GetChat(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, "p-1", chat.ProjectID)
	assert.Contains(t, f.api.lastText(), "SaaS project is ready")
}

func TestDiscoveryHandler_StartsQuestionnaire(t *testing.T) {
	f := newFixture()
	q := entity.Question{Index: 0, Text: "How much money can you invest?"}
	f.discovery.startReply = &entity.DiscoveryReply{Message: q.Text, Question: &q}

	h := NewDiscoveryHandler(f.api, f.manager, f.discovery, f.projects, f.kb)
	require.NoError(t, h.Handle(context.Background(), text("hello")))

	assert.Equal(t, state.PhaseQuestionnaire, f.phase(t).Phase)
	assert.Equal(t, "❓ Question 1 of 10: How much money can you invest?", f.api.lastText())
	assert.Empty(t, f.projects.created)
}

func TestQuestionnaireHandler_TieThenChoice(t *testing.T) {
	f := newFixture()
	rec := entity.BusinessRecommendation{RecommendedModels: []entity.ModelKey{entity.ModelCopy, entity.ModelSaaS}}
	f.discovery.answerReply = &entity.DiscoveryReply{Message: "Pick one", Completed: true, Recommendation: &rec}

	h := NewQuestionnaireHandler(f.api, f.manager, f.discovery, f.projects, f.kb)
	require.NoError(t, h.Handle(context.Background(), text("team")))

	data := f.phase(t)
	assert.Equal(t, state.PhaseChoosingModel, data.Phase)
	assert.Equal(t, rec.RecommendedModels, data.PendingModels)
	last := f.api.messages[len(f.api.messages)-1]
	assert.IsType(t, tgbotapi.InlineKeyboardMarkup{}, last.ReplyMarkup)

	cb := NewCallbackHandler(f.api, f.manager, f.projects, f.commands, f.kb)

	stale := &Message{ChatID: testChat, UserID: testUser, CallbackData: "model:ecom"}
	require.NoError(t, cb.Handle(context.Background(), stale))
	assert.Empty(t, f.projects.created)
	assert.Equal(t, msgChoiceExpired, f.api.lastText())

	pick := &Message{ChatID: testChat, UserID: testUser, CallbackData: "model:saas"}
	require.NoError(t, cb.Handle(context.Background(), pick))
	assert.Equal(t, []entity.ModelKey{entity.ModelSaaS}, f.projects.created)
	assert.Equal(t, state.PhaseProject, f.phase(t).Phase)
	assert.Empty(t, f.phase(t).PendingModels)
}

func TestQuestionnaireHandler_SingleWinner(t *testing.T) {
	f := newFixture()
	rec := entity.BusinessRecommendation{RecommendedModels: []entity.ModelKey{entity.ModelSMMA}}
	f.discovery.answerReply = &entity.DiscoveryReply{Message: "SMMA fits", Completed: true, Recommendation: &rec}

	h := NewQuestionnaireHandler(f.api, f.manager, f.discovery, f.projects, f.kb)
	require.NoError(t, h.Handle(context.Background(), text("solo")))

	assert.Equal(t, []entity.ModelKey{entity.ModelSMMA}, f.projects.created)
	assert.Equal(t, state.PhaseProject, f.phase(t).Phase)
}

func TestQuestionnaireHandler_LostStateRestartsDiscovery(t *testing.T) {
	f := newFixture()
	f.discovery.answerErr = fmt.Errorf("load: %w", entity.ErrDiscoveryNotStarted)

	data := f.phase(t)
	data.Phase = state.PhaseQuestionnaire
	require.NoError(t, f.manager.UpdateStateData(context.Background(), testUser, data))

	h := NewQuestionnaireHandler(f.api, f.manager, f.discovery, f.projects, f.kb)
	require.NoError(t, h.Handle(context.Background(), text("yes")))

	assert.Equal(t, state.PhaseDiscovery, f.phase(t).Phase)
	assert.Equal(t, usermsg.StartAgain, f.api.lastText())
}

func TestProjectHandler(t *testing.T) {
	f := newFixture()
	h := NewProjectHandler(f.api, f.manager, f.projects)

	require.NoError(t, h.Handle(context.Background(), text("what now?")))
	assert.Equal(t, render.MsgNoProject, f.api.lastText())

	require.NoError(t, f.manager.SetProject(context.Background(), testUser, "p-1"))
	require.NoError(t, h.Handle(context.Background(), text("what now?")))
	assert.Equal(t, "Start with your budget.", f.api.lastText())

	f.projects.chatErr = fmt.Errorf("generate: %w", entity.ErrLLMRateLimited)
	require.NoError(t, h.Handle(context.Background(), text("and then?")))
	assert.Equal(t, usermsg.RateLimited, f.api.lastText())
}

func TestCommands_TasksAndDone(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.manager.SetProject(ctx, testUser, "p-1"))

	require.NoError(t, f.commands.Run(ctx, text("/tasks"), CommandTasks, ""))
	assert.Equal(t, 1, f.projects.generated)
	assert.Equal(t, []string{"t-1", "t-2"}, f.phase(t).ListedTodoIDs)
	assert.Contains(t, f.api.lastText(), "1. Confirm budget")

	// open tasks are listed again instead of generating more
	require.NoError(t, f.commands.Run(ctx, text("/tasks"), CommandTasks, ""))
	assert.Equal(t, 1, f.projects.generated)

	require.NoError(t, f.commands.Run(ctx, text("/done 2"), CommandDone, "2"))
	assert.Equal(t, []string{"t-2"}, f.projects.completed)
	assert.Equal(t, "✅ Done: Block weekly hours", f.api.lastText())

	require.NoError(t, f.commands.Run(ctx, text("/done 9"), CommandDone, "9"))
	assert.Equal(t, render.MsgDoneUsage, f.api.lastText())

	f.projects.advance = true
	require.NoError(t, f.commands.Run(ctx, text("/done 1"), CommandDone, "1"))
	assert.True(t, strings.Contains(f.api.lastText(), "Stage complete"))
	assert.Empty(t, f.phase(t).ListedTodoIDs)
}

func TestCommands_WithoutProject(t *testing.T) {
	f := newFixture()
	for _, cmd := range []string{CommandStage, CommandTasks, CommandDone, CommandPlan} {
		require.NoError(t, f.commands.Run(context.Background(), text("/"+cmd), cmd, ""))
		assert.Equal(t, render.MsgNoProject, f.api.lastText(), cmd)
	}
}

func TestCommands_StartResetsEverything(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.manager.SetProject(ctx, testUser, "p-1"))

	require.NoError(t, f.commands.Run(ctx, text("/start"), CommandStart, ""))

	assert.Equal(t, []string{"tg:42"}, f.discovery.resetUsers)
	assert.Equal(t, state.PhaseDiscovery, f.phase(t).Phase)
	chat, err := f.manager.GetChat(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, chat.ProjectID)
	assert.Equal(t, render.MsgWelcome, f.api.lastText())
}

func TestCommands_PlanSendsPDF(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.manager.SetProject(ctx, testUser, "p-1"))

	require.NoError(t, f.commands.Run(ctx, text("/plan"), CommandPlan, ""))
	require.Len(t, f.api.documents, 1)
	assert.Equal(t, render.MsgPlanCaption, f.api.documents[0].Caption)
}

func TestClassifyHandlerError(t *testing.T) {
	assert.Equal(t, SeverityWarning, classifyHandlerError(entity.ErrTodoNotFound).Severity)
	assert.Equal(t, SeverityError, classifyHandlerError(entity.ErrLLMUnavailable).Severity)
	assert.Equal(t, usermsg.Unavailable, classifyHandlerError(entity.ErrLLMUnavailable).UserMessage)
}

func TestDiscoveryUserID(t *testing.T) {
	assert.Equal(t, "tg:42", DiscoveryUserID(42))
}

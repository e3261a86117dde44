package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/futig/coach-backend/internal/entity"
)

// API is the part of *tgbotapi.BotAPI the handlers talk to
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// DiscoveryUsecase drives the questionnaire of a chat user
type DiscoveryUsecase interface {
	Start(ctx context.Context, userID, input string) (*entity.DiscoveryReply, error)
	Answer(ctx context.Context, userID, rawAnswer string) (*entity.DiscoveryReply, error)
	Reset(ctx context.Context, userID string) error
}

// ProjectUsecase defines the subset of project operations needed by Telegram handlers
type ProjectUsecase interface {
	CreateProject(ctx context.Context, req *entity.CreateProjectRequest) (*entity.Project, error)
	CurrentStage(ctx context.Context, id string) (*entity.StageView, error)
	GenerateTasks(ctx context.Context, id string) ([]*entity.Todo, error)
	ListTodos(ctx context.Context, id string) ([]*entity.Todo, error)
	CompleteTask(ctx context.Context, projectID, todoID string) (*entity.CompleteTaskResult, error)
	Chat(ctx context.Context, id string, req *entity.ChatRequest) (*entity.ChatResponse, error)
	ExportPlan(ctx context.Context, id string, format entity.ResultFormat) (*entity.ExportResult, error)
}

package project

import (
	"context"

	"github.com/futig/coach-backend/internal/entity"
)

type ProjectUsecase interface {
	CreateProject(ctx context.Context, req *entity.CreateProjectRequest) (*entity.Project, error)
	GetProject(ctx context.Context, id string) (*entity.Project, error)
	CurrentStage(ctx context.Context, id string) (*entity.StageView, error)
	ListTodos(ctx context.Context, id string) ([]*entity.Todo, error)
	GenerateTasks(ctx context.Context, id string) ([]*entity.Todo, error)
	Chat(ctx context.Context, id string, req *entity.ChatRequest) (*entity.ChatResponse, error)
	CompleteTask(ctx context.Context, projectID, todoID string) (*entity.CompleteTaskResult, error)
	AdvanceStage(ctx context.Context, id string, fromStage entity.StageKey) (*entity.AdvanceResult, error)
	JumpToStage(ctx context.Context, id string, stage entity.StageKey) (*entity.Project, error)
	UpdateStep(ctx context.Context, id, step string) (*entity.Project, error)
	RecordOutputs(ctx context.Context, id string, outputs map[string]any) (*entity.Project, error)
	RecordNote(ctx context.Context, id, key, text string) (*entity.Project, error)
	ExportPlan(ctx context.Context, id string, format entity.ResultFormat) (*entity.ExportResult, error)
}

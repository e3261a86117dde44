package project

import (
	"time"

	"github.com/futig/coach-backend/internal/entity"
)

type advanceResponse struct {
	Project  entity.ProjectDTO `json:"project"`
	Advanced bool              `json:"advanced"`
	Terminal bool              `json:"terminal"`
}

type completeTaskResponse struct {
	Todo          *entity.Todo      `json:"todo"`
	Project       entity.ProjectDTO `json:"project"`
	StageComplete bool              `json:"stage_complete"`
	Advanced      bool              `json:"advanced"`
}

type todosResponse struct {
	Todos []*entity.Todo `json:"todos"`
}

func toProjectDTO(p *entity.Project) entity.ProjectDTO {
	m := p.Memory.Clone()
	return entity.ProjectDTO{
		ID:              p.ID,
		UserID:          p.UserID,
		BusinessType:    m.BusinessType,
		Budget:          p.Budget,
		CurrentStage:    m.CurrentStage,
		CurrentStep:     m.CurrentStep,
		CompletedStages: m.CompletedStages,
		Outputs:         nonNilOutputs(m.Outputs),
		Notes:           nonNilNotes(m.Notes),
		TasksInProgress: m.TasksInProgress,
		CreatedAt:       p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toAdvanceResponse(res *entity.AdvanceResult) advanceResponse {
	return advanceResponse{
		Project:  toProjectDTO(res.Project),
		Advanced: res.Advanced,
		Terminal: res.Terminal,
	}
}

func toCompleteTaskResponse(res *entity.CompleteTaskResult) completeTaskResponse {
	return completeTaskResponse{
		Todo:          res.Todo,
		Project:       toProjectDTO(res.Project),
		StageComplete: res.StageComplete,
		Advanced:      res.Advanced,
	}
}

func toTodosResponse(todos []*entity.Todo) todosResponse {
	if todos == nil {
		todos = []*entity.Todo{}
	}
	return todosResponse{Todos: todos}
}

func nonNilOutputs(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func nonNilNotes(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

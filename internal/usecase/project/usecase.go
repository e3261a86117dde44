// Package project orchestrates a coaching project: stage progression, task generation
// and coaching chat on top of the progression controller and the text-generation collaborator.
package project

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/coach-backend/internal/entity"
	"github.com/futig/coach-backend/internal/pkg/formatter"
	"github.com/futig/coach-backend/internal/pkg/retry"
	"github.com/futig/coach-backend/internal/progression"
	"github.com/futig/coach-backend/internal/prompt"
	"github.com/futig/coach-backend/internal/repository"
)

// ProjectUsecase implements project business logic
type ProjectUsecase struct {
	projectRepo repository.ProjectRepository
	todoRepo    repository.TodoRepository
	controller  *progression.Controller
	assembler   *prompt.Assembler
	llm         LLMConnector
	retryCfg    *retry.RetryConfig
	formatters  *formatter.Factory
	metrics     Metrics
	logger      *zap.Logger
}

func NewUsecase(
	projectRepo repository.ProjectRepository,
	todoRepo repository.TodoRepository,
	controller *progression.Controller,
	assembler *prompt.Assembler,
	llm LLMConnector,
	retryCfg *retry.RetryConfig,
	formatters *formatter.Factory,
	metrics Metrics,
	logger *zap.Logger,
) *ProjectUsecase {
	return &ProjectUsecase{
		projectRepo: projectRepo,
		todoRepo:    todoRepo,
		controller:  controller,
		assembler:   assembler,
		llm:         llm,
		retryCfg:    retryCfg,
		formatters:  formatters,
		metrics:     metrics,
		logger:      logger,
	}
}

// CreateProject starts a project at the first stage of its business type. The type comes
// from the request or, when absent, from the recommended model.
func (uc *ProjectUsecase) CreateProject(ctx context.Context, req *entity.CreateProjectRequest) (*entity.Project, error) {
	bt, err := resolveBusinessType(req)
	if err != nil {
		return nil, err
	}

	mem, err := uc.controller.NewMemory(bt, req.SkipPreQualification)
	if err != nil {
		return nil, err
	}

	project, err := uc.projectRepo.Create(ctx, entity.Project{
		ID:     uuid.New().String(),
		UserID: req.UserID,
		Budget: req.Budget,
		Memory: mem,
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	ctxzap.Info(ctx, "project created",
		zap.String("project_id", project.ID),
		zap.String("business_type", string(bt)),
		zap.String("stage", string(mem.CurrentStage)),
	)

	return project, nil
}

func (uc *ProjectUsecase) GetProject(ctx context.Context, id string) (*entity.Project, error) {
	return uc.projectRepo.Get(ctx, id)
}

// CurrentStage returns the curriculum entry of the project's current stage
func (uc *ProjectUsecase) CurrentStage(ctx context.Context, id string) (*entity.StageView, error) {
	project, err := uc.projectRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	mem := project.Memory
	entry, err := uc.controller.GetCurrentStageEntry(mem.BusinessType, mem.CurrentStage)
	if err != nil {
		return nil, err
	}

	return &entity.StageView{
		BusinessType:    mem.BusinessType,
		Stage:           entry.Stage(),
		Title:           entry.Title(),
		Objective:       entry.Objective(),
		Checklist:       entry.Checklist(),
		AISupport:       entry.AISupport(),
		CurrentStep:     mem.CurrentStep,
		CompletedStages: mem.CompletedStages,
	}, nil
}

func (uc *ProjectUsecase) ListTodos(ctx context.Context, id string) ([]*entity.Todo, error) {
	if _, err := uc.projectRepo.Get(ctx, id); err != nil {
		return nil, err
	}
	return uc.todoRepo.ListByProject(ctx, id)
}

// GenerateTasks asks the collaborator for a task list of the current stage and appends it
// to the project's todos. Nothing is stored unless generation succeeds.
func (uc *ProjectUsecase) GenerateTasks(ctx context.Context, id string) ([]*entity.Todo, error) {
	project, err := uc.projectRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	mem := project.Memory
	entry, err := uc.controller.GetCurrentStageEntry(mem.BusinessType, mem.CurrentStage)
	if err != nil {
		return nil, err
	}

	resp, err := uc.generate(ctx, &entity.LLMGenerateRequest{
		SystemPrompt: uc.assembler.BuildTaskPrompt(mem, project.Budget),
	})
	if err != nil {
		return nil, fmt.Errorf("generate tasks: %w", err)
	}

	tasks := prompt.TasksOrChecklist(resp.Content, entry.Checklist())
	todos := make([]entity.Todo, 0, len(tasks))
	for _, task := range tasks {
		todos = append(todos, entity.Todo{
			ID:        uuid.New().String(),
			ProjectID: project.ID,
			Stage:     mem.CurrentStage,
			Task:      task,
		})
	}

	created, err := uc.todoRepo.Append(ctx, todos)
	if err != nil {
		return nil, fmt.Errorf("append todos: %w", err)
	}

	_, err = uc.mutate(ctx, project.ID, func(mem *entity.ProjectMemory) error {
		mem.TasksInProgress = append(mem.TasksInProgress, tasks...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.TasksGenerated(string(mem.BusinessType), len(created))
	ctxzap.Info(ctx, "tasks generated",
		zap.String("project_id", project.ID),
		zap.String("stage", string(mem.CurrentStage)),
		zap.Int("count", len(created)),
	)

	return created, nil
}

// Chat answers a user message in the context of the current stage and step. It never
// changes the project.
func (uc *ProjectUsecase) Chat(ctx context.Context, id string, req *entity.ChatRequest) (*entity.ChatResponse, error) {
	project, err := uc.projectRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	mem := project.Memory
	resp, err := uc.generate(ctx, &entity.LLMGenerateRequest{
		SystemPrompt: uc.assembler.BuildStep(mem.BusinessType, mem.CurrentStage, mem.CurrentStep, req.Message),
		Messages:     trimHistory(req.History),
	})
	if err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}

	return &entity.ChatResponse{Content: resp.Content, Stage: mem.CurrentStage}, nil
}

// CompleteTask marks a todo done. When that finishes every task of the current stage the
// stage is marked completed and the project advances. A todo of an earlier stage never
// advances the project, so repeating the call is safe.
func (uc *ProjectUsecase) CompleteTask(ctx context.Context, projectID, todoID string) (*entity.CompleteTaskResult, error) {
	project, err := uc.projectRepo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	todo, err := uc.todoRepo.Get(ctx, todoID)
	if err != nil {
		return nil, err
	}
	if todo.ProjectID != project.ID {
		return nil, entity.ErrTodoNotFound
	}

	todo, err = uc.todoRepo.MarkCompleted(ctx, todoID)
	if err != nil {
		return nil, fmt.Errorf("complete todo: %w", err)
	}

	result := &entity.CompleteTaskResult{Todo: todo}
	var from entity.StageKey
	saved, err := uc.update(ctx, project.ID, func(p *entity.Project) error {
		todos, err := uc.todoRepo.ListByProject(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("list todos: %w", err)
		}

		mem := &p.Memory
		mem.TasksInProgress = removeTask(mem.TasksInProgress, todo.Task)
		from = mem.CurrentStage
		result.StageComplete, result.Advanced = false, false

		if todo.Stage == mem.CurrentStage && progression.StageTasksComplete(derefTodos(todos), mem.CurrentStage) {
			result.StageComplete = true
			result.Advanced, err = uc.completeAndAdvance(mem)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	result.Project = saved
	if result.Advanced {
		uc.recordAdvance(ctx, from, saved)
	}
	return result, nil
}

// AdvanceStage completes the current stage and moves to the next one. When fromStage is
// set and the project is no longer at it the call fails with an InvalidStateError, so a
// retried request cannot skip a stage.
func (uc *ProjectUsecase) AdvanceStage(ctx context.Context, id string, fromStage entity.StageKey) (*entity.AdvanceResult, error) {
	var (
		advanced bool
		from     entity.StageKey
	)
	saved, err := uc.update(ctx, id, func(p *entity.Project) error {
		mem := &p.Memory
		if fromStage != "" && mem.CurrentStage != fromStage {
			return &entity.InvalidStateError{
				Op:     "advance stage",
				Reason: fmt.Sprintf("project is at %q, not %q", mem.CurrentStage, fromStage),
			}
		}

		from = mem.CurrentStage
		var err error
		advanced, err = uc.completeAndAdvance(mem)
		return err
	})
	if err != nil {
		return nil, err
	}

	if advanced {
		uc.recordAdvance(ctx, from, saved)
	} else {
		ctxzap.Info(ctx, "terminal stage reached", zap.String("project_id", id), zap.String("stage", string(from)))
	}

	return &entity.AdvanceResult{Project: saved, Advanced: advanced, Terminal: !advanced}, nil
}

// JumpToStage moves the project to any stage of its curriculum
func (uc *ProjectUsecase) JumpToStage(ctx context.Context, id string, stage entity.StageKey) (*entity.Project, error) {
	return uc.mutate(ctx, id, func(mem *entity.ProjectMemory) error {
		return uc.controller.JumpToStage(mem, stage)
	})
}

func (uc *ProjectUsecase) UpdateStep(ctx context.Context, id, step string) (*entity.Project, error) {
	return uc.mutate(ctx, id, func(mem *entity.ProjectMemory) error {
		uc.controller.UpdateCurrentStep(mem, step)
		return nil
	})
}

func (uc *ProjectUsecase) RecordOutputs(ctx context.Context, id string, outputs map[string]any) (*entity.Project, error) {
	return uc.mutate(ctx, id, func(mem *entity.ProjectMemory) error {
		uc.controller.RecordOutputs(mem, outputs)
		return nil
	})
}

func (uc *ProjectUsecase) RecordNote(ctx context.Context, id, key, text string) (*entity.Project, error) {
	return uc.mutate(ctx, id, func(mem *entity.ProjectMemory) error {
		uc.controller.RecordNote(mem, key, text)
		return nil
	})
}

// ExportPlan renders the roadmap, current checklist, todos and notes in the given format
func (uc *ProjectUsecase) ExportPlan(ctx context.Context, id string, format entity.ResultFormat) (*entity.ExportResult, error) {
	fm, err := uc.formatters.Create(format)
	if err != nil {
		return nil, err
	}

	project, err := uc.projectRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	todos, err := uc.todoRepo.ListByProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	doc, err := uc.planDocument(project, todos)
	if err != nil {
		return nil, err
	}

	data, err := fm.Format(*doc)
	if err != nil {
		return nil, fmt.Errorf("format plan: %w", err)
	}

	ctxzap.Info(ctx, "plan exported",
		zap.String("project_id", id),
		zap.String("format", string(format)),
		zap.Int("bytes", len(data)),
	)

	return &entity.ExportResult{
		Filename:    fmt.Sprintf("plan-%s-%s%s", project.Memory.BusinessType, shortID(project.ID), fm.FileExtension()),
		ContentType: fm.ContentType(),
		Data:        data,
	}, nil
}

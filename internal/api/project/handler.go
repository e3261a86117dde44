package project

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/coach-backend/internal/entity"
	"github.com/futig/coach-backend/internal/pkg/logger"
	"github.com/futig/coach-backend/internal/pkg/request"
	"github.com/futig/coach-backend/internal/pkg/response"
	"github.com/futig/coach-backend/internal/pkg/usermsg"
	"github.com/futig/coach-backend/internal/pkg/validator"
)

type Handler struct {
	usecase   ProjectUsecase
	validator *validator.Validator
}

func NewHandler(usecase ProjectUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// CreateProject handles POST /projects
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateProject")

	var req entity.CreateProjectRequest
	if err := request.DecodeJSON(w, r, &req, false); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}
	if err := h.validator.ValidateCreateProject(&req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctx = logger.AddFields(ctx, zap.String("user_id", req.UserID))
	project, err := h.usecase.CreateProject(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "project created",
		zap.String("project_id", project.ID),
		zap.String("business_type", string(project.Memory.BusinessType)),
	)
	response.Created(w, toProjectDTO(project))
}

// GetProject handles GET /projects/{project_id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	ctx, id := h.projectScope(r, "GetProject")

	project, err := h.usecase.GetProject(ctx, id)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toProjectDTO(project))
}

// GetCurrentStage handles GET /projects/{project_id}/stage
func (h *Handler) GetCurrentStage(w http.ResponseWriter, r *http.Request) {
	ctx, id := h.projectScope(r, "GetCurrentStage")

	view, err := h.usecase.CurrentStage(ctx, id)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, view)
}

// GenerateTasks handles POST /projects/{project_id}/tasks
func (h *Handler) GenerateTasks(w http.ResponseWriter, r *http.Request) {
	ctx, id := h.projectScope(r, "GenerateTasks")

	todos, err := h.usecase.GenerateTasks(ctx, id)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, toTodosResponse(todos))
}

// ListTodos handles GET /projects/{project_id}/todos
func (h *Handler) ListTodos(w http.ResponseWriter, r *http.Request) {
	ctx, id := h.projectScope(r, "ListTodos")

	todos, err := h.usecase.ListTodos(ctx, id)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toTodosResponse(todos))
}

// CompleteTask handles POST /projects/{project_id}/todos/{todo_id}/complete
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	ctx, id := h.projectScope(r, "CompleteTask")
	todoID := chi.URLParam(r, "todo_id")
	ctx = logger.AddFields(ctx, zap.String("todo_id", todoID))

	res, err := h.usecase.CompleteTask(ctx, id, todoID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toCompleteTaskResponse(res))
}

// AdvanceStage handles POST /projects/{project_id}/advance
func (h *Handler) AdvanceStage(w http.ResponseWriter, r *http.Request) {
	ctx, id := h.projectScope(r, "AdvanceStage")

	var req entity.AdvanceStageRequest
	if err := request.DecodeJSON(w, r, &req, false); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}
	if err := h.validator.ValidateAdvance(&req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	res, err := h.usecase.AdvanceStage(ctx, id, req.FromStage)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toAdvanceResponse(res))
}

// JumpToStage handles POST /projects/{project_id}/jump
func (h *Handler) JumpToStage(w http.ResponseWriter, r *http.Request) {
	ctx, id := h.projectScope(r, "JumpToStage")

	var req entity.JumpStageRequest
	if err := request.DecodeJSON(w, r, &req, false); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}
	if err := h.validator.ValidateJump(&req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	project, err := h.usecase.JumpToStage(ctx, id, req.Stage)
	if errors.Is(err, entity.ErrUnknownStage) {
		ctxzap.Warn(ctx, "jump to unknown stage", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toProjectDTO(project))
}

// UpdateStep handles PUT /projects/{project_id}/step
func (h *Handler) UpdateStep(w http.ResponseWriter, r *http.Request) {
	ctx, id := h.projectScope(r, "UpdateStep")

	var req entity.UpdateStepRequest
	if err := request.DecodeJSON(w, r, &req, false); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}
	if err := h.validator.ValidateStep(&req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	project, err := h.usecase.UpdateStep(ctx, id, req.Step)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toProjectDTO(project))
}

// RecordOutputs handles POST /projects/{project_id}/outputs
func (h *Handler) RecordOutputs(w http.ResponseWriter, r *http.Request) {
	ctx, id := h.projectScope(r, "RecordOutputs")

	var req entity.RecordOutputsRequest
	if err := request.DecodeJSON(w, r, &req, false); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}
	if err := h.validator.ValidateOutputs(&req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	project, err := h.usecase.RecordOutputs(ctx, id, req.Outputs)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toProjectDTO(project))
}

// RecordNote handles PUT /projects/{project_id}/notes/{key}
func (h *Handler) RecordNote(w http.ResponseWriter, r *http.Request) {
	ctx, id := h.projectScope(r, "RecordNote")
	key := chi.URLParam(r, "key")

	var req entity.RecordNoteRequest
	if err := request.DecodeJSON(w, r, &req, false); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}
	if err := h.validator.ValidateNote(key, &req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	project, err := h.usecase.RecordNote(ctx, id, key, req.Text)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toProjectDTO(project))
}

// Chat handles POST /projects/{project_id}/chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx, id := h.projectScope(r, "Chat")

	var req entity.ChatRequest
	if err := request.DecodeJSON(w, r, &req, false); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}
	if err := h.validator.ValidateChat(&req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	reply, err := h.usecase.Chat(ctx, id, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, reply)
}

// ExportPlan handles GET /projects/{project_id}/export?format=markdown|pdf|docx
func (h *Handler) ExportPlan(w http.ResponseWriter, r *http.Request) {
	ctx, id := h.projectScope(r, "ExportPlan")

	format := entity.ResultFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = entity.FormatMarkdown
	}
	if !format.IsValid() {
		h.handleUsecaseError(ctx, w, fmt.Errorf("%w: unsupported format %q", entity.ErrInvalidParameter, format))
		return
	}

	res, err := h.usecase.ExportPlan(ctx, id, format)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Attachment(w, res.Filename, res.ContentType, res.Data)
}

func (h *Handler) projectScope(r *http.Request, action string) (context.Context, string) {
	id := chi.URLParam(r, "project_id")
	ctx := logger.WithAction(r.Context(), action)
	return logger.AddFields(ctx, zap.String("project_id", id)), id
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrProjectNotFound), errors.Is(err, entity.ErrTodoNotFound):
		ctxzap.Info(ctx, "resource not found", zap.Error(err))
		response.Error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrInvalidFormat):
		ctxzap.Warn(ctx, "invalid request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, entity.ErrInvalidState):
		ctxzap.Warn(ctx, "invalid stage transition", zap.Error(err))
		response.Error(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, entity.ErrProjectConflict):
		ctxzap.Warn(ctx, "project changed concurrently", zap.Error(err))
		response.Error(w, http.StatusConflict, "conflict", usermsg.For(err))
	case errors.Is(err, entity.ErrUnknownStage):
		// the curriculum has no entry for a stage the project is already at
		ctxzap.Error(ctx, "curriculum entry missing", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "no_guidance", usermsg.For(err))
	case errors.Is(err, entity.ErrLLMRateLimited):
		ctxzap.Warn(ctx, "text generation rate limited", zap.Error(err))
		response.Error(w, http.StatusTooManyRequests, "rate_limited", usermsg.For(err))
	case errors.Is(err, entity.ErrLLMUnavailable):
		ctxzap.Error(ctx, "text generation unavailable", zap.Error(err))
		response.Error(w, http.StatusServiceUnavailable, "unavailable", usermsg.For(err))
	default:
		ctxzap.Error(ctx, "project request failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", usermsg.For(err))
	}
}

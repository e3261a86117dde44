package discovery

import (
	"context"
	"errors"
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
	usecase   DiscoveryUsecase
	validator *validator.Validator
}

func NewHandler(usecase DiscoveryUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// Start handles POST /discovery/{user_id}/start
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	ctx, userID, ok := h.userScope(w, r, "StartDiscovery")
	if !ok {
		return
	}

	var req entity.StartDiscoveryRequest
	if err := request.DecodeJSON(w, r, &req, true); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}
	// an empty first message just opens the questionnaire
	if req.Input != "" {
		if err := h.validator.ValidateText("input", req.Input); err != nil {
			h.handleUsecaseError(ctx, w, err)
			return
		}
	}

	reply, err := h.usecase.Start(ctx, userID, req.Input)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, reply)
}

// Answer handles POST /discovery/{user_id}/answer
func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	ctx, userID, ok := h.userScope(w, r, "AnswerDiscovery")
	if !ok {
		return
	}

	var req entity.SubmitDiscoveryAnswerRequest
	if err := request.DecodeJSON(w, r, &req, false); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}
	if err := h.validator.ValidateText("answer", req.Answer); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	reply, err := h.usecase.Answer(ctx, userID, req.Answer)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, reply)
}

// Recommendation handles GET /discovery/{user_id}/recommendation
func (h *Handler) Recommendation(w http.ResponseWriter, r *http.Request) {
	ctx, userID, ok := h.userScope(w, r, "GetRecommendation")
	if !ok {
		return
	}

	rec, err := h.usecase.Recommendation(ctx, userID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, rec)
}

// Reset handles DELETE /discovery/{user_id}
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx, userID, ok := h.userScope(w, r, "ResetDiscovery")
	if !ok {
		return
	}

	if err := h.usecase.Reset(ctx, userID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.NoContent(w)
}

func (h *Handler) userScope(w http.ResponseWriter, r *http.Request, action string) (context.Context, string, bool) {
	userID := chi.URLParam(r, "user_id")
	ctx := logger.WithAction(r.Context(), action)
	ctx = logger.AddFields(ctx, zap.String("user_id", userID))

	if err := h.validator.ValidateUserID(userID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return ctx, "", false
	}
	return ctx, userID, true
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrDiscoveryNotStarted):
		ctxzap.Info(ctx, "discovery not started", zap.Error(err))
		response.Error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, entity.ErrInvalidState):
		ctxzap.Warn(ctx, "invalid questionnaire transition", zap.Error(err))
		response.Error(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrInvalidFormat):
		ctxzap.Warn(ctx, "invalid request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "bad_request", err.Error())
	default:
		ctxzap.Error(ctx, "discovery request failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "internal_error", usermsg.For(err))
	}
}

package handlers

import (
	"context"
	"errors"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/coach-backend/internal/entity"
	"github.com/futig/coach-backend/internal/pkg/usermsg"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity int

const (
	SeverityWarning ErrorSeverity = iota
	SeverityError
)

func (s ErrorSeverity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// HandlerError represents a structured error with user message and logging info
type HandlerError struct {
	Err         error
	UserMessage string
	Severity    ErrorSeverity
}

// classifyHandlerError picks the log severity and the text shown to the user.
// Expected domain outcomes are warnings; collaborator and storage failures are errors.
func classifyHandlerError(err error) *HandlerError {
	severity := SeverityError
	switch {
	case errors.Is(err, entity.ErrUnknownStage),
		errors.Is(err, entity.ErrInvalidState),
		errors.Is(err, entity.ErrProjectNotFound),
		errors.Is(err, entity.ErrProjectConflict),
		errors.Is(err, entity.ErrTodoNotFound),
		errors.Is(err, entity.ErrDiscoveryNotStarted),
		errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidFormat),
		errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrLLMRateLimited):
		severity = SeverityWarning
	}

	return &HandlerError{
		Err:         err,
		UserMessage: usermsg.For(err),
		Severity:    severity,
	}
}

// HandleError logs err with its severity and tells the user what happened without leaking details
func (h *BaseHandler) HandleError(ctx context.Context, chatID int64, err error) {
	if err == nil {
		return
	}

	handlerErr := classifyHandlerError(err)

	fields := []zap.Field{
		zap.Error(handlerErr.Err),
		zap.Int64("chat_id", chatID),
		zap.Stringer("severity", handlerErr.Severity),
	}
	if handlerErr.Severity == SeverityWarning {
		ctxzap.Warn(ctx, "telegram handler rejected request", fields...)
	} else {
		ctxzap.Error(ctx, "telegram handler failed", fields...)
	}

	h.sendMessage(ctx, chatID, handlerErr.UserMessage, nil)
}

// Package usermsg turns errors into text that is safe to show to an end user.
package usermsg

import (
	"errors"

	"github.com/futig/coach-backend/internal/entity"
)

const (
	NoGuidance    = "I don't have guidance for that step yet. Let's focus on your current stage instead."
	RateLimited   = "I'm getting a lot of requests right now. Please wait a minute and try again."
	Unavailable   = "I'm having trouble connecting right now. Please try again in a moment."
	StartAgain    = "I couldn't find your progress. Send /start to begin again."
	InvalidInput  = "I didn't understand that. Could you rephrase it?"
	AlreadyDone   = "That part is already finished. Send /reset to start over."
	TryAgain      = "Your project was updated at the same moment. Please try again."
	SomethingFail = "Something went wrong on my side. Please try again."
)

// For maps err to a user-facing message. Details of err are never included.
func For(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, entity.ErrUnknownStage):
		return NoGuidance
	case errors.Is(err, entity.ErrInvalidState):
		return AlreadyDone
	case errors.Is(err, entity.ErrProjectConflict):
		return TryAgain
	case errors.Is(err, entity.ErrLLMRateLimited):
		return RateLimited
	case errors.Is(err, entity.ErrLLMUnavailable):
		return Unavailable
	case errors.Is(err, entity.ErrProjectNotFound),
		errors.Is(err, entity.ErrTodoNotFound),
		errors.Is(err, entity.ErrDiscoveryNotStarted):
		return StartAgain
	case errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidFormat),
		errors.Is(err, entity.ErrInvalidParameter):
		return InvalidInput
	default:
		return SomethingFail
	}
}

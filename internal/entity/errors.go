package entity

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Discovery errors
	ErrInvalidState        = errors.New("invalid state transition")
	ErrDiscoveryNotStarted = errors.New("discovery not started")

	// Curriculum errors
	ErrUnknownStage = errors.New("unknown stage")

	// Project errors
	ErrProjectNotFound = errors.New("project not found")
	ErrTodoNotFound    = errors.New("todo not found")
	ErrProjectConflict = errors.New("project was changed by another request")

	// Collaborator errors
	ErrLLMUnavailable = errors.New("text generation unavailable")
	ErrLLMRateLimited = errors.New("text generation rate limited")
	ErrLLMRejected    = errors.New("text generation request rejected")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// InvalidStateError is returned when a transition is requested on a state that does not allow it
type InvalidStateError struct {
	Op     string
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

// UnknownStageError is returned when the knowledge base has no entry for a (business type, stage) pair
type UnknownStageError struct {
	BusinessType BusinessType
	Stage        StageKey
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("unknown stage %q for business type %q", e.Stage, e.BusinessType)
}

func (e *UnknownStageError) Is(target error) bool {
	return target == ErrUnknownStage
}

package llm

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"

	"github.com/futig/coach-backend/internal/entity"
	pkghttp "github.com/futig/coach-backend/pkg/http"
)

// CollaboratorError is a classified text-generation failure. It matches one of
// entity.ErrLLMRateLimited, entity.ErrLLMUnavailable or entity.ErrLLMRejected with errors.Is.
type CollaboratorError struct {
	Kind       error
	RetryAfter time.Duration
	Err        error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *CollaboratorError) Is(target error) bool {
	return target == e.Kind
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

func (e *CollaboratorError) RetryAfterDelay() time.Duration {
	return e.RetryAfter
}

// Classify maps any provider or transport error onto the collaborator failure kinds.
// 429 means rate limited. 5xx, timeouts and network failures mean unavailable. Any other
// status means the provider rejected the request, which no retry can fix.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var classified *CollaboratorError
	if errors.As(err, &classified) {
		return err
	}

	var retryAfter time.Duration
	status := 0
	var httpErr *pkghttp.HTTPError
	var apiErr *openai.Error
	switch {
	case errors.As(err, &httpErr):
		status, retryAfter = httpErr.StatusCode, httpErr.RetryAfter
	case errors.As(err, &apiErr):
		status = apiErr.StatusCode
	}

	switch {
	case status == 0, status >= http.StatusInternalServerError:
		return &CollaboratorError{Kind: entity.ErrLLMUnavailable, Err: err}
	case status == http.StatusTooManyRequests:
		return &CollaboratorError{Kind: entity.ErrLLMRateLimited, RetryAfter: retryAfter, Err: err}
	default:
		return &CollaboratorError{Kind: entity.ErrLLMRejected, Err: err}
	}
}

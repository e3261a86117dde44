package usermsg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/futig/coach-backend/internal/entity"
)

func TestFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"unknown stage", &entity.UnknownStageError{BusinessType: "saas", Stage: "stage_9"}, NoGuidance},
		{"completed questionnaire", &entity.InvalidStateError{Op: "update", Reason: "complete"}, AlreadyDone},
		{"rate limited", fmt.Errorf("generate: %w", entity.ErrLLMRateLimited), RateLimited},
		{"unavailable", fmt.Errorf("generate: %w", entity.ErrLLMUnavailable), Unavailable},
		{"concurrent update", fmt.Errorf("save project: %w", entity.ErrProjectConflict), TryAgain},
		{"provider rejected", fmt.Errorf("generate: %w", entity.ErrLLMRejected), SomethingFail},
		{"missing project", entity.ErrProjectNotFound, StartAgain},
		{"not started", entity.ErrDiscoveryNotStarted, StartAgain},
		{"validation", fmt.Errorf("%w: message", entity.ErrMissingField), InvalidInput},
		{"anything else", errors.New("pq: connection refused"), SomethingFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := For(tt.err)
			assert.Equal(t, tt.want, got)
			if tt.err != nil {
				assert.NotContains(t, got, tt.err.Error())
			}
		})
	}
}

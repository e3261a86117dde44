package llm

import (
	"context"
	"errors"
	"time"

	"github.com/futig/coach-backend/internal/entity"
	"github.com/futig/coach-backend/internal/pkg/metrics"
)

// Generator is any text-generation connector
type Generator interface {
	Name() string
	Generate(ctx context.Context, req *entity.LLMGenerateRequest) (*entity.LLMGenerateResponse, error)
}

// Instrumented records the outcome and duration of every call of the wrapped generator
type Instrumented struct {
	next     Generator
	recorder *metrics.Recorder
}

func NewInstrumented(next Generator, recorder *metrics.Recorder) *Instrumented {
	return &Instrumented{next: next, recorder: recorder}
}

func (i *Instrumented) Name() string { return i.next.Name() }

func (i *Instrumented) Generate(ctx context.Context, req *entity.LLMGenerateRequest) (*entity.LLMGenerateResponse, error) {
	start := time.Now()
	resp, err := i.next.Generate(ctx, req)

	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case errors.Is(err, entity.ErrLLMRateLimited):
		outcome = metrics.OutcomeRateLimited
	case errors.Is(err, entity.ErrLLMRejected):
		outcome = metrics.OutcomeRejected
	default:
		outcome = metrics.OutcomeUnavailable
	}
	i.recorder.LLMRequest(i.next.Name(), outcome, time.Since(start))

	return resp, err
}

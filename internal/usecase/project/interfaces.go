package project

import (
	"context"

	"github.com/futig/coach-backend/internal/entity"
)

type LLMConnector interface {
	Generate(ctx context.Context, req *entity.LLMGenerateRequest) (*entity.LLMGenerateResponse, error)
}

// Metrics counts progression events
type Metrics interface {
	StageAdvanced(businessType, stage string)
	TasksGenerated(businessType string, n int)
}

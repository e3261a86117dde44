package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/coach-backend/internal/config"
	"github.com/futig/coach-backend/internal/entity"
)

const mockReply = "[MOCK] Focus on the first unchecked item of your checklist today and tell me when it is done."

// MockConnector answers without a network call, for local runs
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) Name() string { return config.ProviderMock }

// Generate echoes the checklist of a task prompt as a numbered list and gives a canned
// reply to anything else.
func (m *MockConnector) Generate(ctx context.Context, req *entity.LLMGenerateRequest) (*entity.LLMGenerateResponse, error) {
	ctxzap.Info(ctx, "[MOCK] generating text")

	content := mockReply
	if strings.Contains(req.SystemPrompt, "## Task") {
		content = mockTasks(req.SystemPrompt)
	}

	ctxzap.Info(ctx, "[MOCK] text generated", zap.Int("content_length", len(content)))
	return &entity.LLMGenerateResponse{Content: content}, nil
}

func mockTasks(prompt string) string {
	_, section, found := strings.Cut(prompt, "Checklist:\n")
	if !found {
		return "1. Review the stage objective\n2. Pick the first action for this week"
	}

	var b strings.Builder
	n := 0
	for _, line := range strings.Split(section, "\n") {
		item, ok := strings.CutPrefix(line, "- ")
		if !ok {
			break
		}
		n++
		fmt.Fprintf(&b, "%d. %s\n", n, strings.TrimSpace(item))
	}
	return strings.TrimSpace(b.String())
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"go.uber.org/zap"

	"github.com/futig/coach-backend/internal/config"
	"github.com/futig/coach-backend/internal/entity"
)

// OpenAIConnector generates text with the OpenAI Responses API
type OpenAIConnector struct {
	client    openai.Client
	model     string
	maxTokens int64
	logger    *zap.Logger
}

func NewOpenAIConnector(cfg config.LLMConfig, logger *zap.Logger, opts ...option.RequestOption) *OpenAIConnector {
	opts = append([]option.RequestOption{
		option.WithAPIKey(cfg.OpenAIAPIKey),
		option.WithRequestTimeout(cfg.RequestTimeout),
		// retries are owned by the caller
		option.WithMaxRetries(0),
	}, opts...)

	return &OpenAIConnector{
		client:    openai.NewClient(opts...),
		model:     cfg.OpenAIModel,
		maxTokens: cfg.MaxOutputTokens,
		logger:    logger,
	}
}

func (c *OpenAIConnector) Name() string { return config.ProviderOpenAI }

func (c *OpenAIConnector) Generate(ctx context.Context, req *entity.LLMGenerateRequest) (*entity.LLMGenerateResponse, error) {
	ctxzap.Debug(ctx, "generating text via OpenAI", zap.String("model", c.model), zap.Int("messages", len(req.Messages)))

	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(c.maxTokens),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(transcript(req))},
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return nil, Classify(fmt.Errorf("openai responses: %w", err))
	}

	content := strings.TrimSpace(resp.OutputText())
	if content == "" {
		return nil, Classify(errors.New("openai returned no text"))
	}

	return &entity.LLMGenerateResponse{Content: content}, nil
}

// transcript flattens the system prompt and history into one input text
func transcript(req *entity.LLMGenerateRequest) string {
	var b strings.Builder
	if req.SystemPrompt != "" {
		fmt.Fprintf(&b, "System: %s\n\n", req.SystemPrompt)
	}
	for _, m := range req.Messages {
		switch m.Role {
		case entity.RoleAssistant:
			fmt.Fprintf(&b, "Assistant: %s\n\n", m.Content)
		case entity.RoleSystem:
			fmt.Fprintf(&b, "System: %s\n\n", m.Content)
		default:
			fmt.Fprintf(&b, "User: %s\n\n", m.Content)
		}
	}
	return strings.TrimSpace(b.String())
}

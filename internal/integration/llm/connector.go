// Package llm talks to the external text-generation collaborator.
package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/coach-backend/internal/config"
	"github.com/futig/coach-backend/internal/entity"
	"github.com/futig/coach-backend/internal/integration/common"
	pkghttp "github.com/futig/coach-backend/pkg/http"
)

// Connector calls a text-generation service that accepts entity.LLMGenerateRequest as JSON
type Connector struct {
	config    config.LLMConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(cfg config.LLMConfig, logger *zap.Logger) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

func (c *Connector) Name() string { return config.ProviderHTTP }

// Generate sends the system prompt and history and returns the generated text
func (c *Connector) Generate(ctx context.Context, req *entity.LLMGenerateRequest) (*entity.LLMGenerateResponse, error) {
	ctxzap.Debug(ctx, "generating text via LLM service", zap.Int("messages", len(req.Messages)))

	var resp entity.LLMGenerateResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, c.config.GenerateEndpoint, req, &resp); err != nil {
		return nil, Classify(err)
	}

	if resp.Content == "" {
		return nil, Classify(errors.New("empty content in generation response"))
	}

	ctxzap.Debug(ctx, "text generated", zap.Int("content_length", len(resp.Content)))
	return &resp, nil
}

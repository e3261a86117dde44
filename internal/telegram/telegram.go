package telegram

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/futig/coach-backend/internal/config"
	"github.com/futig/coach-backend/internal/telegram/bot"
	"github.com/futig/coach-backend/internal/telegram/handlers"
	"github.com/futig/coach-backend/internal/telegram/state"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot initializes the telegram bot with all dependencies
func NewBot(
	cfg *config.TelegramConfig,
	storage state.Storage,
	discoveryUC handlers.DiscoveryUsecase,
	projectUC handlers.ProjectUsecase,
	logger *zap.Logger,
) (Bot, error) {
	stateManager := state.NewManager(storage)

	b, err := bot.New(cfg, stateManager, discoveryUC, projectUC, logger)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	registerHandlers(b, logger)

	logger.Info("telegram bot initialized successfully")

	return b, nil
}

func registerHandlers(b *bot.Bot, logger *zap.Logger) {
	api := b.GetAPI()
	stateManager := b.GetStateManager()
	discoveryUC := b.GetDiscoveryUsecase()
	projectUC := b.GetProjectUsecase()
	kb := b.GetKeyboard()

	commands := handlers.NewCommandHandler(api, stateManager, discoveryUC, projectUC, kb)
	b.SetCommandHandler(commands)

	phaseHandlers := []handlers.Handler{
		handlers.NewDiscoveryHandler(api, stateManager, discoveryUC, projectUC, kb),
		handlers.NewQuestionnaireHandler(api, stateManager, discoveryUC, projectUC, kb),
		handlers.NewChoiceHandler(api, stateManager, kb),
		handlers.NewProjectHandler(api, stateManager, projectUC),
		handlers.NewCallbackHandler(api, stateManager, projectUC, commands, kb),
	}
	for _, h := range phaseHandlers {
		b.RegisterHandler(h)
	}

	logger.Info("telegram handlers registered",
		zap.Int("handler_count", len(phaseHandlers)),
	)
}

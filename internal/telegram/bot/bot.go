// Package bot receives Telegram updates and routes them to the handler of the chat's phase.
package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/coach-backend/internal/config"
	"github.com/futig/coach-backend/internal/pkg/usermsg"
	"github.com/futig/coach-backend/internal/telegram/handlers"
	"github.com/futig/coach-backend/internal/telegram/keyboard"
	"github.com/futig/coach-backend/internal/telegram/middleware"
	"github.com/futig/coach-backend/internal/telegram/render"
	"github.com/futig/coach-backend/internal/telegram/state"
)

// Bot represents the Telegram bot
type Bot struct {
	api          *tgbotapi.BotAPI
	cfg          *config.TelegramConfig
	stateManager *state.Manager
	handlers     map[state.Phase]handlers.Handler
	commands     *handlers.CommandHandler
	discoveryUC  handlers.DiscoveryUsecase
	projectUC    handlers.ProjectUsecase
	keyboard     *keyboard.Builder
	logger       *zap.Logger
	loggingMW    *middleware.LoggingMiddleware
	recoveryMW   *middleware.RecoveryMiddleware
	rateLimitMW  *middleware.RateLimiterMiddleware
	updatesChan  tgbotapi.UpdatesChannel
	stopChan     chan struct{}
	wg           sync.WaitGroup
	sem          chan struct{}
}

// New authorizes against the Bot API and builds the middleware chain
func New(
	cfg *config.TelegramConfig,
	stateManager *state.Manager,
	discoveryUC handlers.DiscoveryUsecase,
	projectUC handlers.ProjectUsecase,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}
	api.Debug = cfg.Debug

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	maxConcurrent := cfg.MaxConcurrentUsers
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	b := &Bot{
		api:          api,
		cfg:          cfg,
		stateManager: stateManager,
		discoveryUC:  discoveryUC,
		projectUC:    projectUC,
		keyboard:     keyboard.NewBuilder(),
		logger:       logger,
		handlers:     make(map[state.Phase]handlers.Handler),
		stopChan:     make(chan struct{}),
		sem:          make(chan struct{}, maxConcurrent),
	}

	b.loggingMW = middleware.NewLoggingMiddleware(logger)
	b.recoveryMW = middleware.NewRecoveryMiddleware(logger, api)
	b.rateLimitMW = middleware.NewRateLimiterMiddleware(
		cfg.RateLimitPerMinute,
		cfg.RateLimitBurst,
		logger,
		api,
	)

	return b, nil
}

// Start begins long polling
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	b.updatesChan = b.api.GetUpdatesChan(u)

	go b.processUpdates(ctxzap.ToContext(ctx, b.logger))

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops polling and waits for running handlers up to the shutdown timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	close(b.stopChan)
	b.api.StopReceivingUpdates()
	b.rateLimitMW.Stop()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(b.cfg.ShutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", b.cfg.ShutdownTimeout),
		)
		return errors.New("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

func (b *Bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				return
			}
			// bounded concurrency: at most MaxConcurrentUsers updates run at once
			b.sem <- struct{}{}
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer func() {
					<-b.sem
					b.wg.Done()
				}()
				b.handleUpdateWithMiddleware(ctx, u)
			}(update)
		}
	}
}

func (b *Bot) handleUpdateWithMiddleware(ctx context.Context, update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, func(u3 tgbotapi.Update) {
				b.handleUpdate(ctx, u3)
			})
		})
	})
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	ctx = ctxzap.ToContext(ctx, b.logger.With(
		zap.Int64("user_id", userID),
		zap.Int64("chat_id", message.Chat.ID),
	))

	msg := &handlers.Message{
		ChatID:    message.Chat.ID,
		UserID:    userID,
		MessageID: message.MessageID,
		Text:      message.Text,
	}

	if message.IsCommand() {
		command := message.Command()
		if !b.commands.NeedsProcessing(command) {
			b.runCommand(ctx, msg, command, message.CommandArguments())
			return
		}
		b.withProcessing(ctx, msg, func(ctx context.Context) error {
			return b.commands.Run(ctx, msg, command, message.CommandArguments())
		})
		return
	}

	if message.Text == "" {
		b.sendText(ctx, message.Chat.ID, usermsg.InvalidInput)
		return
	}

	b.withProcessing(ctx, msg, func(ctx context.Context) error {
		data, err := b.stateManager.GetStateData(ctx, userID)
		if err != nil {
			return err
		}

		handler, ok := b.handlers[data.Phase]
		if !ok {
			return fmt.Errorf("no handler for phase %q", data.Phase)
		}
		return handler.Handle(ctx, msg)
	})
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	ctx = ctxzap.ToContext(ctx, b.logger.With(
		zap.Int64("user_id", query.From.ID),
		zap.Int64("chat_id", query.Message.Chat.ID),
		zap.String("callback", query.Data),
	))

	// answer at once so the client stops its spinner
	b.answerCallback(ctx, query.ID)

	handler, ok := b.handlers[handlers.PhaseCallback]
	if !ok {
		ctxzap.Warn(ctx, "callback handler not registered")
		return
	}

	msg := &handlers.Message{
		ChatID:       query.Message.Chat.ID,
		UserID:       query.From.ID,
		MessageID:    query.Message.MessageID,
		CallbackData: query.Data,
		CallbackID:   query.ID,
	}
	b.withProcessing(ctx, msg, func(ctx context.Context) error {
		return handler.Handle(ctx, msg)
	})
}

// withProcessing runs fn while holding the user's processing flag. A message that arrives
// while another one is in flight is rejected.
func (b *Bot) withProcessing(ctx context.Context, msg *handlers.Message, fn func(ctx context.Context) error) {
	data, err := b.stateManager.GetStateData(ctx, msg.UserID)
	if err != nil {
		ctxzap.Error(ctx, "failed to load chat state", zap.Error(err))
		b.sendText(ctx, msg.ChatID, usermsg.SomethingFail)
		return
	}
	ctx = state.ContextWithStateData(ctx, data)

	started, err := b.stateManager.TryStartProcessing(ctx, msg.UserID)
	if err != nil {
		ctxzap.Error(ctx, "failed to set processing flag", zap.Error(err))
		b.sendText(ctx, msg.ChatID, usermsg.SomethingFail)
		return
	}
	if !started {
		b.sendText(ctx, msg.ChatID, render.MsgBusy)
		return
	}

	defer func() {
		if err := b.stateManager.FinishProcessing(ctx, msg.UserID); err != nil {
			ctxzap.Error(ctx, "failed to clear processing flag", zap.Error(err))
		}
	}()

	if err := fn(ctx); err != nil {
		ctxzap.Error(ctx, "handler error", zap.Error(err))
		b.sendText(ctx, msg.ChatID, usermsg.For(err))
	}
}

func (b *Bot) runCommand(ctx context.Context, msg *handlers.Message, command, args string) {
	if err := b.commands.Run(ctx, msg, command, args); err != nil {
		ctxzap.Error(ctx, "command failed", zap.Error(err), zap.String("command", command))
		b.sendText(ctx, msg.ChatID, usermsg.For(err))
	}
}

func (b *Bot) sendText(ctx context.Context, chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		ctxzap.Error(ctx, "failed to send message", zap.Error(err))
	}
}

func (b *Bot) answerCallback(ctx context.Context, callbackID string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		ctxzap.Warn(ctx, "failed to answer callback", zap.Error(err))
	}
}

// RegisterHandler registers the handler of a phase
func (b *Bot) RegisterHandler(handler handlers.Handler) {
	phase := handler.Phase()
	if !handlers.IsValidPhase(phase) {
		b.logger.Fatal("invalid handler phase", zap.String("phase", string(phase)))
	}

	b.handlers[phase] = handler
	b.logger.Debug("handler registered", zap.String("phase", string(phase)))
}

// SetCommandHandler sets the slash-command handler
func (b *Bot) SetCommandHandler(h *handlers.CommandHandler) {
	b.commands = h
}

// GetAPI returns the bot API instance (for handlers)
func (b *Bot) GetAPI() *tgbotapi.BotAPI {
	return b.api
}

// GetStateManager returns the state manager (for handlers)
func (b *Bot) GetStateManager() *state.Manager {
	return b.stateManager
}

// GetKeyboard returns the keyboard builder (for handlers)
func (b *Bot) GetKeyboard() *keyboard.Builder {
	return b.keyboard
}

// GetDiscoveryUsecase returns the discovery usecase (for handlers)
func (b *Bot) GetDiscoveryUsecase() handlers.DiscoveryUsecase {
	return b.discoveryUC
}

// GetProjectUsecase returns the project usecase (for handlers)
func (b *Bot) GetProjectUsecase() handlers.ProjectUsecase {
	return b.projectUC
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/futig/coach-backend/internal/builder"
)

func main() {
	bot, logger, err := builder.BuildTelegramBot()
	if err != nil {
		log.Fatalf("build telegram bot: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start only launches polling; updates are handled until Stop
	if err := bot.Start(ctx); err != nil {
		logger.Error("start telegram bot", zap.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")

	if err := bot.Stop(); err != nil {
		logger.Error("stop telegram bot", zap.Error(err))
	}
	logger.Info("telegram bot stopped")
}

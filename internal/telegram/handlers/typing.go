package handlers

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Telegram drops the typing action after five seconds
const typingInterval = 4 * time.Second

// TypingNotifier keeps the "typing" action visible while a slow call runs
type TypingNotifier struct {
	bot      API
	chatID   int64
	interval time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

// NewTypingNotifier creates a new typing indicator
func NewTypingNotifier(bot API, chatID int64) *TypingNotifier {
	return &TypingNotifier{
		bot:      bot,
		chatID:   chatID,
		interval: typingInterval,
		done:     make(chan struct{}),
	}
}

// Start sends the action immediately and then repeats it until Stop or ctx ends
func (t *TypingNotifier) Start(ctx context.Context) {
	t.send(ctx)

	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				t.send(ctx)
			case <-t.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop is safe to call more than once
func (t *TypingNotifier) Stop() {
	t.stopOnce.Do(func() { close(t.done) })
}

func (t *TypingNotifier) send(ctx context.Context) {
	if _, err := t.bot.Request(tgbotapi.NewChatAction(t.chatID, tgbotapi.ChatTyping)); err != nil {
		ctxzap.Warn(ctx, "failed to send typing action",
			zap.Error(err),
			zap.Int64("chat_id", t.chatID),
		)
	}
}

package middleware

import (
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSender struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.texts = append(f.texts, m.Text)
	}
	return tgbotapi.Message{}, nil
}

func textUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID},
			Chat: &tgbotapi.Chat{ID: userID * 10},
			Text: text,
		},
	}
}

func TestRateLimiter(t *testing.T) {
	sender := &fakeSender{}
	rl := NewRateLimiterMiddleware(6, 2, zap.NewNop(), sender)
	defer rl.Stop()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	calls := 0
	next := func(tgbotapi.Update) { calls++ }

	for i := 0; i < 4; i++ {
		rl.Handle(textUpdate(1, "hi"), next)
	}
	assert.Equal(t, 2, calls, "burst of two")
	assert.Len(t, sender.texts, 1, "one warning per interval")

	// another user has its own bucket
	rl.Handle(textUpdate(2, "hi"), next)
	assert.Equal(t, 3, calls)

	// 6 per minute refills one token every ten seconds
	now = now.Add(10 * time.Second)
	rl.Handle(textUpdate(1, "hi"), next)
	assert.Equal(t, 4, calls)

	now = now.Add(2 * time.Hour)
	rl.cleanup()
	rl.mu.Lock()
	assert.Empty(t, rl.limits)
	rl.mu.Unlock()
}

func TestRateLimiter_PassesUnknownUpdates(t *testing.T) {
	rl := NewRateLimiterMiddleware(1, 1, zap.NewNop(), &fakeSender{})
	defer rl.Stop()

	calls := 0
	for i := 0; i < 3; i++ {
		rl.Handle(tgbotapi.Update{}, func(tgbotapi.Update) { calls++ })
	}
	assert.Equal(t, 3, calls)
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	sender := &fakeSender{}
	m := NewRecoveryMiddleware(zap.New(core), sender)

	require.NotPanics(t, func() {
		m.Handle(textUpdate(3, "boom"), func(tgbotapi.Update) { panic("kaboom") })
	})

	assert.Equal(t, 1, logs.FilterMessage("panic recovered in telegram handler").Len())
	require.Len(t, sender.texts, 1)
	assert.NotContains(t, sender.texts[0], "kaboom")
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := NewLoggingMiddleware(zap.New(core))

	called := false
	m.Handle(textUpdate(4, "secret plan"), func(tgbotapi.Update) { called = true })

	assert.True(t, called)
	require.Equal(t, 2, logs.Len())
	received := logs.All()[0].ContextMap()
	assert.Equal(t, "text", received["type"])
	assert.EqualValues(t, 4, received["user_id"])
	for _, entry := range logs.All() {
		for _, v := range entry.ContextMap() {
			assert.NotEqual(t, "secret plan", v)
		}
	}
}

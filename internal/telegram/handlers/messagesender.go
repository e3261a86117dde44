package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/coach-backend/internal/pkg/retry"
)

// MessageSender provides centralized message sending functionality
type MessageSender struct {
	bot      API
	retryCfg *retry.RetryConfig
}

// NewMessageSender creates a new MessageSender
func NewMessageSender(bot API) *MessageSender {
	return &MessageSender{
		bot:      bot,
		retryCfg: retry.DefaultRetryConfig(),
	}
}

// Send sends a message to the specified chat
func (s *MessageSender) Send(ctx context.Context, chatID int64, text string, markup interface{}) error {
	if _, err := s.bot.Send(newMessage(chatID, text, markup)); err != nil {
		ctxzap.Error(ctx, "failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
		return err
	}
	return nil
}

// SendCritical retries delivery of messages the user must see, such as the recommendation
// or a newly created project. Flood-control waits requested by Telegram are honoured.
func (s *MessageSender) SendCritical(ctx context.Context, chatID int64, text string, markup interface{}) error {
	msg := newMessage(chatID, text, markup)

	_, err := retry.Do(ctx, s.retryCfg,
		func(ctx context.Context) (tgbotapi.Message, error) {
			sent, err := s.bot.Send(msg)
			return sent, withFloodHint(err)
		},
		func(err error) bool {
			return !errors.Is(err, context.Canceled)
		},
		func(attempt uint, err error) {
			ctxzap.Warn(ctx, "failed to send message, retrying",
				zap.Error(err),
				zap.Uint("attempt", attempt+1),
				zap.Int64("chat_id", chatID),
			)
		},
	)
	if err != nil {
		ctxzap.Error(ctx, "failed to send message after all retries",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
		return err
	}
	return nil
}

// SendDocument uploads data as a file attachment
func (s *MessageSender) SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	doc.Caption = caption

	if _, err := s.bot.Send(doc); err != nil {
		ctxzap.Error(ctx, "failed to send document",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
			zap.String("filename", filename),
		)
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}

func newMessage(chatID int64, text string, markup interface{}) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	return msg
}

// floodError carries the wait Telegram asks for after a 429
type floodError struct {
	err   error
	after time.Duration
}

func (e *floodError) Error() string { return e.err.Error() }

func (e *floodError) Unwrap() error { return e.err }

func (e *floodError) RetryAfterDelay() time.Duration { return e.after }

func withFloodHint(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return &floodError{err: err, after: time.Duration(apiErr.RetryAfter) * time.Second}
	}
	return err
}

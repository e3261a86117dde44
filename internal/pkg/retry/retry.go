// Package retry runs collaborator calls with bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = 3
	defaultDelay    = 500 * time.Millisecond
	defaultMaxDelay = 5 * time.Second
)

type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"3"`
	Delay    time.Duration `env:"DELAY" envDefault:"500ms"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"5s"`
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}

// DelayHinter is implemented by errors that carry a server-requested wait
type DelayHinter interface {
	RetryAfterDelay() time.Duration
}

// ToRetryOptions converts the config into retry-go options bound to ctx
func (rc *RetryConfig) ToRetryOptions(ctx context.Context) []retry.Option {
	attempts := rc.Attempts
	if attempts == 0 {
		attempts = 1
	}
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(rc.Delay),
		retry.MaxDelay(rc.MaxDelay),
		retry.DelayType(hintedBackOff),
		retry.LastErrorOnly(true),
	}
}

// hintedBackOff honours a server-requested wait, otherwise backs off exponentially.
// MaxDelay caps both.
func hintedBackOff(n uint, err error, config *retry.Config) time.Duration {
	var hint DelayHinter
	if errors.As(err, &hint) {
		if d := hint.RetryAfterDelay(); d > 0 {
			return d
		}
	}
	return retry.BackOffDelay(n, err, config)
}

// Do runs fn until it succeeds, retryIf rejects the error, attempts run out or ctx ends.
// onRetry may be nil.
func Do[T any](
	ctx context.Context,
	cfg *RetryConfig,
	fn func(ctx context.Context) (T, error),
	retryIf func(error) bool,
	onRetry func(attempt uint, err error),
) (T, error) {
	opts := cfg.ToRetryOptions(ctx)
	if retryIf != nil {
		opts = append(opts, retry.RetryIf(retryIf))
	}
	if onRetry != nil {
		opts = append(opts, retry.OnRetry(onRetry))
	}

	return retry.DoWithData(func() (T, error) {
		return fn(ctx)
	}, opts...)
}

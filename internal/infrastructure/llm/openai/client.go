package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"voltway/internal/bootstrap/logging"
	"voltway/internal/ports"
)

// Config carries provider settings shared by the classifier and the tool
// selector.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration

	// MaxAttempts counts total tries; Delay is the fixed pause between them.
	MaxAttempts int
	Delay       time.Duration
}

func newClient(cfg Config) openai.Client {
	// Retries are owned by withRetries so MaxAttempts/Delay actually bound the
	// call; the SDK's built-in policy is disabled.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return openai.NewClient(opts...)
}

// transientFailure reports whether the call is worth another attempt: HTTP
// 429, a 5xx provider failure, or a transport error that never produced a
// response. 4xx responses and cancelled contexts fail immediately.
func transientFailure(err error) bool {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return apierr.StatusCode == 429 || apierr.StatusCode >= 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// No structured API error means the request never reached the provider.
	return true
}

// withRetries runs fn up to cfg.MaxAttempts times, sleeping cfg.Delay between
// transient failures. Client mistakes fail immediately; an exhausted budget
// surfaces ports.ErrRateLimitExceeded so callers can park the work instead of
// dropping it.
func withRetries(ctx context.Context, cfg Config, op string, fn func(ctx context.Context) error) error {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !transientFailure(lastErr) {
			return lastErr
		}

		logging.Warn(ctx, "llm call failed, will retry",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.String("error", lastErr.Error()),
		)
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.Delay):
		}
	}

	return fmt.Errorf("%w: %s after %d attempts: %w", ports.ErrRateLimitExceeded, op, attempts, lastErr)
}

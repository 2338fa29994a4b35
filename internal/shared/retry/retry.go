package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"petition-backend/internal/shared/apperror"
	"petition-backend/internal/shared/metrics"
)

// Config controls the exponential backoff schedule.
type Config struct {
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultConfig returns 3 retries starting at 1s, doubling, capped at 10s.
func DefaultConfig() Config {
	return Config{
		MaxRetries:        3,
		InitialDelay:      time.Second,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2,
	}
}

// Executor runs operations under the retry policy.
// A nil Executor behaves like one built from DefaultConfig.
type Executor struct {
	Config Config
	Logger *zap.Logger
	// Sleep suspends the calling goroutine. Tests replace it to record delays.
	Sleep func(ctx context.Context, d time.Duration) error
}

// New returns an Executor with cfg. Unset delays and multiplier fall back to
// DefaultConfig values.
func New(cfg Config, logger *zap.Logger) *Executor {
	return &Executor{Config: cfg, Logger: logger}
}

var retryableCodes = map[string]struct{}{
	apperror.CodeTimeout:            {},
	apperror.CodeInternal:           {},
	apperror.CodeBadGateway:         {},
	apperror.CodeUnavailable:        {},
	apperror.CodeGatewayTimeout:     {},
	apperror.CodeBackendUnavailable: {},
}

var transientPatterns = []string{
	"fetch failed",
	"network",
	"timeout",
	"econnreset",
	"etimedout",
	"connection reset",
}

// Do invokes op until it succeeds, fails with a non-retryable error, or the
// retry budget is spent. Exhaustion yields a transient error that records the
// attempt count and wraps the last failure.
func Do[T any](ctx context.Context, e *Executor, name string, op func(context.Context) (T, error)) (T, error) {
	var zero T
	cfg := e.config()
	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		val, err := op(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}
		if attempt == cfg.MaxRetries {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, &apperror.Error{Kind: apperror.KindTransientIO, Op: name, Attempts: attempt + 1, Err: err}
		}

		e.logger().Warn("retrying operation",
			zap.String("operation", name),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", cfg.MaxRetries),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		metrics.RetryAttempts.WithLabelValues(name).Inc()

		if sleepErr := e.sleep(ctx, delay); sleepErr != nil {
			return zero, &apperror.Error{Kind: apperror.KindTransientIO, Op: name, Attempts: attempt + 1, Err: err}
		}
		delay = nextDelay(delay, cfg)
	}

	return zero, &apperror.Error{
		Kind:     apperror.KindTransientIO,
		Code:     apperror.CodeOf(lastErr),
		Op:       name,
		Message:  "retries exhausted",
		Attempts: cfg.MaxRetries + 1,
		Err:      lastErr,
	}
}

// Run is Do for operations without a result.
func (e *Executor) Run(ctx context.Context, name string, op func(context.Context) error) error {
	_, err := Do(ctx, e, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// IsRetryable classifies err from its structured fields, falling back to the
// message for errors raised by transports.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if ae, ok := apperror.As(err); ok {
		switch ae.Kind {
		case apperror.KindValidation, apperror.KindTerminalIO, apperror.KindAssembly:
			return false
		}
		if _, ok := retryableCodes[apperror.CodeOf(err)]; ok {
			return true
		}
		if ae.Kind == apperror.KindTransientIO {
			return true
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ETIMEDOUT) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

func nextDelay(cur time.Duration, cfg Config) time.Duration {
	next := time.Duration(float64(cur) * cfg.BackoffMultiplier)
	if next > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return next
}

func (e *Executor) config() Config {
	def := DefaultConfig()
	if e == nil {
		return def
	}
	cfg := e.Config
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = def.InitialDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.BackoffMultiplier < 1 {
		cfg.BackoffMultiplier = def.BackoffMultiplier
	}
	return cfg
}

func (e *Executor) logger() *zap.Logger {
	if e == nil || e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e *Executor) sleep(ctx context.Context, d time.Duration) error {
	if e != nil && e.Sleep != nil {
		return e.Sleep(ctx, d)
	}
	return sleepContext(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Package retry re-runs failed completion calls with exponential backoff.
package retry

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
)

// Defaults used by config when no retry section is present
const (
	DefaultMaxRetries        = 3
	DefaultInitialDelay      = time.Second
	DefaultMaxDelay          = 30 * time.Second
	DefaultBackoffMultiplier = 2.0
)

// jitterFraction bounds the random delay added on top of the backoff
const jitterFraction = 0.1

// Attempt describes one failed attempt
type Attempt struct {
	Label string
	// Number is 0-indexed
	Number    int
	Delay     time.Duration
	Err       error
	Retryable bool
	Exhausted bool
}

// Observer is notified after every failed attempt
type Observer func(ctx context.Context, attempt Attempt)

// Config configures a Coordinator
type Config struct {
	Enabled           bool
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64

	// Observer is optional
	Observer Observer
}

// Validate validates the config
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	vb := errors.NewValidationBuilder()
	if c.MaxRetries < 0 {
		vb.Field("max_retries", "must not be negative")
	}
	errors.ValidateDuration("initial_delay", c.InitialDelay, vb)
	errors.ValidateDuration("max_delay", c.MaxDelay, vb)
	if c.BackoffMultiplier < 1 {
		vb.Field("backoff_multiplier", "must be at least 1")
	}
	if c.MaxDelay > 0 && c.InitialDelay > c.MaxDelay {
		vb.Field("initial_delay", "must not exceed max_delay")
	}
	return vb.Build()
}

// Coordinator wraps operations with bounded retry
type Coordinator struct {
	cfg Config
}

// New creates a Coordinator
func New(cfg *Config) (*Coordinator, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Coordinator{cfg: *cfg}, nil
}

// MaxAttempts is the total number of calls made before giving up
func (c *Coordinator) MaxAttempts() int {
	if !c.cfg.Enabled {
		return 1
	}
	return c.cfg.MaxRetries + 1
}

// BaseDelay is the backoff before jitter for a 0-indexed attempt
func (c *Coordinator) BaseDelay(attempt int) time.Duration {
	d := float64(c.cfg.InitialDelay) * math.Pow(c.cfg.BackoffMultiplier, float64(attempt))
	if d > float64(c.cfg.MaxDelay) || math.IsInf(d, 0) {
		return c.cfg.MaxDelay
	}
	return time.Duration(d)
}

// Delay is BaseDelay plus up to 10% random jitter. Jitter is only ever added.
func (c *Coordinator) Delay(attempt int) time.Duration {
	base := c.BaseDelay(attempt)
	jitter := time.Duration(rand.Float64() * jitterFraction * float64(base))
	return base + jitter
}

// ExecuteWithRetry runs op until it succeeds, fails with a non-retryable error
// or runs out of attempts. The error returned is the last one op returned.
func (c *Coordinator) ExecuteWithRetry(ctx context.Context, op func(context.Context) error, label string) error {
	_, err := Do(ctx, c, label, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Do is ExecuteWithRetry for operations with a result
func Do[T any](ctx context.Context, c *Coordinator, label string, op func(context.Context) (T, error)) (T, error) {
	if !c.cfg.Enabled {
		return op(ctx)
	}

	var zero T
	for attempt := 0; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			if attempt > 0 {
				slog.InfoContext(ctx, "Request succeeded after retry",
					"label", label,
					"attempts", attempt+1)
			}
			return result, nil
		}

		retryable := IsRetryable(err)
		exhausted := attempt >= c.cfg.MaxRetries
		if !retryable || exhausted {
			c.observe(ctx, Attempt{Label: label, Number: attempt, Err: err, Retryable: retryable, Exhausted: exhausted})
			if exhausted && retryable {
				slog.ErrorContext(ctx, "Retries exhausted",
					"label", label,
					"attempts", attempt+1,
					"error", err)
			} else {
				slog.WarnContext(ctx, "Request failed with non-retryable error",
					"label", label,
					"attempt", attempt,
					"error", err)
			}
			return zero, err
		}

		delay := c.Delay(attempt)
		c.observe(ctx, Attempt{Label: label, Number: attempt, Delay: delay, Err: err, Retryable: true})
		slog.WarnContext(ctx, "Request failed, retrying",
			"label", label,
			"attempt", attempt,
			"max_retries", c.cfg.MaxRetries,
			"delay", delay,
			"error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Coordinator) observe(ctx context.Context, a Attempt) {
	if c.cfg.Observer != nil {
		c.cfg.Observer(ctx, a)
	}
}

// Package ratelimit gates calls to the completion endpoint by concurrency and
// by sliding one second and one minute windows.
package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	"github.com/KirkDiggler/rpg-item-parser/internal/pkg/clock"
)

// Default window lengths
const (
	DefaultSecondWindow = time.Second
	DefaultMinuteWindow = time.Minute
)

// Re-check delays while the head of the queue is blocked on a window
const (
	secondRecheck = 100 * time.Millisecond
	minuteRecheck = 1000 * time.Millisecond
)

// Config configures a Limiter
type Config struct {
	Enabled           bool
	MaxConcurrent     int
	RequestsPerSecond int
	RequestsPerMinute int

	// Clock stamps dispatches. Defaults to the real clock.
	Clock clock.Clock
	// SecondWindow and MinuteWindow default to one second and one minute
	SecondWindow time.Duration
	MinuteWindow time.Duration
}

// Validate validates the config
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	vb := errors.NewValidationBuilder()
	errors.ValidatePositive("max_concurrent", float64(c.MaxConcurrent), vb)
	errors.ValidatePositive("requests_per_second", float64(c.RequestsPerSecond), vb)
	errors.ValidatePositive("requests_per_minute", float64(c.RequestsPerMinute), vb)
	if c.SecondWindow < 0 {
		vb.Field("second_window", "must not be negative")
	}
	if c.MinuteWindow < 0 {
		vb.Field("minute_window", "must not be negative")
	}
	return vb.Build()
}

// Stats is a snapshot of limiter state for diagnostics
type Stats struct {
	Enabled    bool `json:"enabled"`
	Active     int  `json:"active"`
	Queued     int  `json:"queued"`
	LastSecond int  `json:"last_second"`
	LastMinute int  `json:"last_minute"`
}

// Limiter admits operations in FIFO order once a concurrency slot is free and
// both windows have room.
type Limiter struct {
	// head admits one waiter at a time; semaphore.Weighted wakes waiters in
	// arrival order, which is what makes dispatch FIFO.
	head  *semaphore.Weighted
	slots *semaphore.Weighted
	clock clock.Clock

	secondWindow time.Duration
	minuteWindow time.Duration

	mu         sync.Mutex
	enabled    bool
	perSecond  int
	perMinute  int
	active     int
	queued     int
	timestamps []time.Time
}

// New creates a Limiter
func New(cfg *Config) (*Limiter, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	secondWindow := cfg.SecondWindow
	if secondWindow == 0 {
		secondWindow = DefaultSecondWindow
	}
	minuteWindow := cfg.MinuteWindow
	if minuteWindow == 0 {
		minuteWindow = DefaultMinuteWindow
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &Limiter{
		head:         semaphore.NewWeighted(1),
		slots:        semaphore.NewWeighted(int64(maxConcurrent)),
		clock:        clk,
		secondWindow: secondWindow,
		minuteWindow: minuteWindow,
		enabled:      cfg.Enabled,
		perSecond:    cfg.RequestsPerSecond,
		perMinute:    cfg.RequestsPerMinute,
	}, nil
}

// SetEnabled switches admission control on or off. Waiters already queued
// still go through the gate.
func (l *Limiter) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

// Acquire blocks until the caller may dispatch one request. The returned
// release must be called once the request settles.
func (l *Limiter) Acquire(ctx context.Context) (func(), error) {
	l.mu.Lock()
	if !l.enabled {
		l.mu.Unlock()
		return func() {}, nil
	}
	l.queued++
	l.mu.Unlock()

	dequeue := func() {
		l.mu.Lock()
		l.queued--
		l.mu.Unlock()
	}

	if err := l.head.Acquire(ctx, 1); err != nil {
		dequeue()
		return nil, errors.WrapWithCode(err, errors.CodeCanceled, "gave up waiting for rate limiter")
	}
	defer l.head.Release(1)

	if err := l.slots.Acquire(ctx, 1); err != nil {
		dequeue()
		return nil, errors.WrapWithCode(err, errors.CodeCanceled, "gave up waiting for a request slot")
	}

	for {
		delay, ok := l.tryDispatch()
		if ok {
			break
		}

		slog.DebugContext(ctx, "Rate limit window full, waiting", "delay", delay)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			l.slots.Release(1)
			dequeue()
			return nil, errors.WrapWithCode(ctx.Err(), errors.CodeCanceled, "gave up waiting for rate limit window")
		case <-timer.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.active--
			l.mu.Unlock()
			l.slots.Release(1)
		})
	}, nil
}

// tryDispatch checks both windows and, when there is room, records the
// dispatch in the same critical section.
func (l *Limiter) tryDispatch() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.pruneLocked(now)

	inSecond, oldestInSecond := l.countSinceLocked(now.Add(-l.secondWindow))
	if inSecond >= l.perSecond {
		return waitFor(oldestInSecond.Add(l.secondWindow).Sub(now), secondRecheck), false
	}
	if len(l.timestamps) >= l.perMinute {
		return waitFor(l.timestamps[0].Add(l.minuteWindow).Sub(now), minuteRecheck), false
	}

	l.timestamps = append(l.timestamps, now)
	l.active++
	l.queued--
	return 0, true
}

// Stats returns a snapshot of the limiter state
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.pruneLocked(now)
	inSecond, _ := l.countSinceLocked(now.Add(-l.secondWindow))

	return Stats{
		Enabled:    l.enabled,
		Active:     l.active,
		Queued:     l.queued,
		LastSecond: inSecond,
		LastMinute: len(l.timestamps),
	}
}

// pruneLocked drops timestamps older than the minute window
func (l *Limiter) pruneLocked(now time.Time) {
	cutoff := now.Add(-l.minuteWindow)
	i := 0
	for i < len(l.timestamps) && !l.timestamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.timestamps = append(l.timestamps[:0], l.timestamps[i:]...)
	}
}

// countSinceLocked counts timestamps after since and returns the oldest of them
func (l *Limiter) countSinceLocked(since time.Time) (int, time.Time) {
	for i, t := range l.timestamps {
		if t.After(since) {
			return len(l.timestamps) - i, t
		}
	}
	return 0, time.Time{}
}

// waitFor returns the time until a slot frees, capped at the re-check delay
func waitFor(untilFree, recheck time.Duration) time.Duration {
	if untilFree <= 0 {
		return time.Millisecond
	}
	if untilFree < recheck {
		return untilFree
	}
	return recheck
}

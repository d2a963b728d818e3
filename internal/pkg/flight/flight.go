// Package flight collapses concurrent calls for the same key into one.
package flight

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/KirkDiggler/rpg-item-parser/internal/pkg/clock"
)

// Config configures a Group
type Config struct {
	// Grace keeps a successful result for callers arriving just after it
	// settled. Zero disables it. Failures are never kept.
	Grace time.Duration
	Clock clock.Clock
}

type settled[T any] struct {
	val     T
	expires time.Time
}

// Group de-duplicates calls by key
type Group[T any] struct {
	sf    singleflight.Group
	grace time.Duration
	clock clock.Clock

	mu     sync.Mutex
	recent map[string]settled[T]
}

// New creates a Group
func New[T any](cfg *Config) *Group[T] {
	g := &Group[T]{
		clock:  clock.New(),
		recent: make(map[string]settled[T]),
	}
	if cfg != nil {
		g.grace = cfg.Grace
		if cfg.Clock != nil {
			g.clock = cfg.Clock
		}
	}
	return g
}

// Do runs fn once per key at a time. Callers that arrive while fn is running,
// or within the grace window after it succeeded, share its result. shared
// reports whether the result was handed to more than one caller.
//
// fn runs with the first caller's context. Later callers stop waiting when
// their own context ends but do not cancel fn.
func (g *Group[T]) Do(ctx context.Context, key string, fn func(context.Context) (T, error)) (val T, shared bool, err error) {
	if v, ok := g.lookup(key); ok {
		return v, true, nil
	}

	ch := g.sf.DoChan(key, func() (any, error) {
		v, err := fn(ctx)
		if err == nil {
			g.remember(key, v)
		}
		return v, err
	})

	select {
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Shared, res.Err
		}
		v, _ := res.Val.(T)
		return v, res.Shared, nil
	}
}

// Forget drops any in-flight call and kept result for key
func (g *Group[T]) Forget(key string) {
	g.sf.Forget(key)
	g.mu.Lock()
	delete(g.recent, key)
	g.mu.Unlock()
}

func (g *Group[T]) lookup(key string) (T, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	for k, s := range g.recent {
		if !now.Before(s.expires) {
			delete(g.recent, k)
		}
	}

	s, ok := g.recent[key]
	return s.val, ok
}

func (g *Group[T]) remember(key string, v T) {
	if g.grace <= 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.recent[key] = settled[T]{val: v, expires: g.clock.Now().Add(g.grace)}
}

// Package batch folds compatible extraction requests issued close together
// into fewer completion calls.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	"github.com/KirkDiggler/rpg-item-parser/internal/extraction"
	"github.com/KirkDiggler/rpg-item-parser/internal/shape"
)

//go:generate mockgen -destination=mock/mock_processor.go -package=batchmock github.com/KirkDiggler/rpg-item-parser/internal/batch Processor

// Defaults used by config when no batch section is present
const (
	DefaultMaxBatchSize = 5
	DefaultTimeout      = 500 * time.Millisecond
	DefaultPacing       = 250 * time.Millisecond
)

// Processor runs extraction requests, possibly batched
type Processor interface {
	ProcessRequest(ctx context.Context, input *extraction.AskInput) (*extraction.AskOutput, error)
}

// Config configures a Coordinator
type Config struct {
	Asker        extraction.Asker
	Enabled      bool
	MaxBatchSize int
	// Timeout is measured from the first member of a batch
	Timeout time.Duration
	// Pacing separates requests run one by one
	Pacing time.Duration
}

// Validate validates the config
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Asker == nil {
		vb.RequiredField("asker")
	}
	if c.Enabled {
		errors.ValidatePositive("max_batch_size", float64(c.MaxBatchSize), vb)
		errors.ValidateDuration("timeout", c.Timeout, vb)
	}
	if c.Pacing < 0 {
		vb.Field("pacing", "must not be negative")
	}
	return vb.Build()
}

type result struct {
	out *extraction.AskOutput
	err error
}

type member struct {
	ctx   context.Context
	input *extraction.AskInput
	done  chan result
}

func (m *member) deliver(out *extraction.AskOutput, err error) {
	m.done <- result{out: out, err: err}
}

type window struct {
	key     string
	members []*member
	timer   *time.Timer
}

// Coordinator groups requests by key and flushes a group when it is full or
// its timeout fires
type Coordinator struct {
	asker   extraction.Asker
	maxSize int
	timeout time.Duration
	pacer   *rate.Limiter

	mu      sync.Mutex
	enabled bool
	closed  bool
	pending map[string]*window
	running sync.WaitGroup
}

// New creates a Coordinator
func New(cfg *Config) (*Coordinator, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	maxSize := cfg.MaxBatchSize
	if maxSize <= 0 {
		maxSize = DefaultMaxBatchSize
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	pacer := rate.NewLimiter(rate.Inf, 1)
	if cfg.Pacing > 0 {
		pacer = rate.NewLimiter(rate.Every(cfg.Pacing), 1)
	}

	return &Coordinator{
		asker:   cfg.Asker,
		maxSize: maxSize,
		timeout: timeout,
		pacer:   pacer,
		enabled: cfg.Enabled,
		pending: make(map[string]*window),
	}, nil
}

// ProcessRequest runs input directly, or queues it with compatible requests
// when batching is on and the prompt is batchable
func (c *Coordinator) ProcessRequest(ctx context.Context, input *extraction.AskInput) (*extraction.AskOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	key, ok := Key(input.Prompt)
	m := &member{ctx: ctx, input: input, done: make(chan result, 1)}
	if !ok || !c.enqueue(key, m) {
		return c.asker.Ask(ctx, input)
	}

	select {
	case r := <-m.done:
		return r.out, r.err
	case <-ctx.Done():
		return nil, errors.WrapWithCode(ctx.Err(), errors.CodeCanceled, "gave up waiting for batch")
	}
}

// SetEnabled switches batching on or off. Turning it off flushes every
// pending batch immediately.
func (c *Coordinator) SetEnabled(enabled bool) {
	c.mu.Lock()
	c.enabled = enabled
	var flushed []*window
	if !enabled {
		flushed = c.takeAllLocked()
	}
	c.mu.Unlock()

	for _, w := range flushed {
		c.start(w)
	}
}

// Enabled reports whether batching is on
func (c *Coordinator) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Pending returns the number of queued requests
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, w := range c.pending {
		n += len(w.members)
	}
	return n
}

// Close flushes pending batches and waits for running ones to finish.
// Requests made after Close run directly.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	flushed := c.takeAllLocked()
	c.mu.Unlock()

	for _, w := range flushed {
		c.start(w)
	}
	c.running.Wait()
}

// enqueue adds m to its window. It returns false when m should run directly.
func (c *Coordinator) enqueue(key string, m *member) bool {
	c.mu.Lock()
	if !c.enabled || c.closed {
		c.mu.Unlock()
		return false
	}

	w, ok := c.pending[key]
	if !ok {
		w = &window{key: key}
		c.pending[key] = w
		w.timer = time.AfterFunc(c.timeout, func() { c.flushOnTimeout(w) })
	}
	w.members = append(w.members, m)

	var full *window
	if len(w.members) >= c.maxSize {
		w.timer.Stop()
		delete(c.pending, key)
		full = w
	}
	c.mu.Unlock()

	if full != nil {
		c.start(full)
	}
	return true
}

func (c *Coordinator) flushOnTimeout(w *window) {
	c.mu.Lock()
	if c.pending[w.key] != w {
		// already flushed by size, SetEnabled or Close
		c.mu.Unlock()
		return
	}
	delete(c.pending, w.key)
	c.mu.Unlock()

	c.start(w)
}

func (c *Coordinator) takeAllLocked() []*window {
	out := make([]*window, 0, len(c.pending))
	for key, w := range c.pending {
		w.timer.Stop()
		delete(c.pending, key)
		out = append(out, w)
	}
	return out
}

func (c *Coordinator) start(w *window) {
	c.running.Add(1)
	go func() {
		defer c.running.Done()
		c.execute(w)
	}()
}

func (c *Coordinator) execute(w *window) {
	switch {
	case len(w.members) == 1:
		m := w.members[0]
		m.deliver(c.asker.Ask(m.ctx, m.input))
	case w.key == KeyItemParsing && sameShape(w.members):
		c.combined(w)
	default:
		c.sequential(w.members)
	}
}

// combined sends every member in one prompt and hands element i of the
// returned array to member i. Any mismatch falls back to one request each.
func (c *Coordinator) combined(w *window) {
	members := w.members
	n := len(members)
	s := members[0].input.Shape
	ctx := context.WithoutCancel(members[0].ctx)

	slog.InfoContext(ctx, "Sending combined batch", "key", w.key, "size", n)

	raw, err := c.asker.AskRaw(ctx, &extraction.RawInput{
		Prompt: composite(members, s),
		Label:  fmt.Sprintf("%s batch of %d", w.key, n),
	})
	if err != nil {
		slog.WarnContext(ctx, "Combined batch failed, running requests one by one", "key", w.key, "error", err)
		c.sequential(members)
		return
	}

	elems, ok := shape.SplitArray(raw)
	if !ok || len(elems) != n {
		slog.WarnContext(ctx, "Combined batch returned an unexpected array, running requests one by one",
			"key", w.key,
			"expected", n,
			"got", len(elems))
		c.sequential(members)
		return
	}

	var again []*member
	for i, m := range members {
		res := s.Parse(elems[i])
		if !res.OK() {
			slog.WarnContext(ctx, "Batch element does not match shape", "key", w.key, "index", i, "error", res.Err())
			again = append(again, m)
			continue
		}
		m.deliver(&extraction.AskOutput{
			Value: extraction.Apply(res.Value, m.input.Overrides, m.input.Deletions),
			Raw:   elems[i],
		}, nil)
	}

	if len(again) > 0 {
		c.sequential(again)
	}
}

// sequential runs members one at a time, paced
func (c *Coordinator) sequential(members []*member) {
	for _, m := range members {
		if err := c.pacer.Wait(m.ctx); err != nil {
			m.deliver(nil, errors.WrapWithCode(err, errors.CodeCanceled, "gave up waiting for batch pacing"))
			continue
		}
		m.deliver(c.asker.Ask(m.ctx, m.input))
	}
}

func composite(members []*member, s shape.Shape) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, for each of the %d requests below.\n", ItemParsingPrefix, len(members))
	b.WriteString("Treat every request independently.\n")
	for i, m := range members {
		fmt.Fprintf(&b, "\n### Request %d\n", i+1)
		b.WriteString(extraction.Interpolate(m.input.Prompt, m.input.Inputs))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(s.ArrayInstructions(len(members)))
	return b.String()
}

func sameShape(members []*member) bool {
	for _, m := range members[1:] {
		if m.input.Shape.Name != members[0].input.Shape.Name {
			return false
		}
	}
	return true
}

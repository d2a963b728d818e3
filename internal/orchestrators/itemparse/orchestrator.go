// Package itemparse turns raw item text into a tabletop item record
package itemparse

//go:generate mockgen -destination=mock/mock_service.go -package=itemparsemock github.com/KirkDiggler/rpg-item-parser/internal/orchestrators/itemparse Service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/rpg-item-parser/internal/batch"
	"github.com/KirkDiggler/rpg-item-parser/internal/clients/srd"
	"github.com/KirkDiggler/rpg-item-parser/internal/diagnosis"
	"github.com/KirkDiggler/rpg-item-parser/internal/entities/item"
	"github.com/KirkDiggler/rpg-item-parser/internal/entities/vtt"
	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	"github.com/KirkDiggler/rpg-item-parser/internal/extraction"
	"github.com/KirkDiggler/rpg-item-parser/internal/normalize"
	"github.com/KirkDiggler/rpg-item-parser/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-item-parser/internal/projector"
	"github.com/KirkDiggler/rpg-item-parser/internal/repositories/items"
	"github.com/KirkDiggler/rpg-item-parser/internal/shape"
)

// Prompt templates. Each starts with a prefix the batch coordinator knows.
const (
	itemPrompt  = batch.ItemParsingPrefix + " into structured data. Keep the description text verbatim.\n\n{text}"
	basicPrompt = batch.BasicItemPrefix + " described below. Keep the description text verbatim.\n\n{text}"
	chunkPrompt = batch.ChunkPrefix + " described below: {fields}. Leave out anything the text does not state.\n\n{text}"
)

// idKeys are stripped from every result; models like to invent them
var idKeys = []string{"_id", "id"}

// Service defines the item parsing operations
type Service interface {
	// ParseAndFormat extracts an item from raw text and projects it into a
	// tabletop item record
	ParseAndFormat(ctx context.Context, input *ParseInput) (*ParseOutput, error)
}

// Config holds the dependencies for the item parsing orchestrator
type Config struct {
	Processor batch.Processor
	// SRD is optional; without it parsed weapons are not enriched
	SRD srd.Client
	// Items is optional; without it Persist is rejected
	Items items.Repository
	// Reporter is optional; without it failures here are only logged
	Reporter *diagnosis.Reporter
	Clock    clock.Clock

	DefaultStrategy Strategy
	DefaultMode     Mode
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Processor == nil {
		vb.RequiredField("Processor")
	}
	if c.DefaultStrategy != "" && !validStrategy(c.DefaultStrategy) {
		vb.InvalidField("DefaultStrategy", fmt.Sprintf("unknown strategy %q", c.DefaultStrategy))
	}
	if c.DefaultMode != "" && !validMode(c.DefaultMode) {
		vb.InvalidField("DefaultMode", fmt.Sprintf("unknown parsing mode %q", c.DefaultMode))
	}

	return vb.Build()
}

type orchestrator struct {
	processor batch.Processor
	srd       srd.Client
	items     items.Repository
	reporter  *diagnosis.Reporter
	clock     clock.Clock
	strategy  Strategy
	mode      Mode
}

// NewOrchestrator creates a new item parsing orchestrator
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &orchestrator{
		processor: cfg.Processor,
		srd:       cfg.SRD,
		items:     cfg.Items,
		reporter:  cfg.Reporter,
		clock:     cfg.Clock,
		strategy:  cfg.DefaultStrategy,
		mode:      cfg.DefaultMode,
	}
	if o.clock == nil {
		o.clock = clock.New()
	}
	if o.strategy == "" {
		o.strategy = StrategyBasicItemExtraction
	}
	if o.mode == "" {
		o.mode = ModeOneCall
	}

	return o, nil
}

// ParseAndFormat runs the optional name and description pass, the structured
// pass for the parsing mode, reference enrichment, projection and storage
func (o *orchestrator) ParseAndFormat(ctx context.Context, input *ParseInput) (*ParseOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	text := strings.TrimSpace(input.RawText)
	strategy := input.Strategy
	if strategy == "" {
		strategy = o.strategy
	}
	mode := input.ParsingMode
	if mode == "" {
		mode = o.mode
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("raw_text", text, vb)
	if !validStrategy(strategy) {
		vb.InvalidField("strategy", fmt.Sprintf("unknown strategy %q", strategy))
	}
	if !validMode(mode) {
		vb.InvalidField("parsing_mode", fmt.Sprintf("unknown parsing mode %q", mode))
	}
	if input.Persist && o.items == nil {
		vb.InvalidField("persist", "no item repository is configured")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	start := o.clock.Now()
	slog.InfoContext(ctx, "Parsing item",
		"strategy", strategy,
		"mode", mode,
		"chars", len(text))

	run := &parseRun{processor: o.processor, text: text}

	if strategy == StrategyBasicItemExtraction || mode == ModeSeparateItemsAndStats {
		if err := run.basicPass(ctx); err != nil {
			return nil, err
		}
	}

	value, err := run.structuredPass(ctx, mode)
	if err != nil {
		return nil, err
	}

	parsed, err := o.readItem(ctx, value, mode)
	if err != nil {
		return nil, err
	}

	parsed, enriched := o.enrich(ctx, parsed)

	out := &ParseOutput{
		Item:     projector.Project(parsed),
		Parsed:   parsed,
		Enriched: enriched,
		Calls:    run.calls,
	}

	if input.Persist {
		created, err := o.items.Create(ctx, &items.CreateInput{
			Item:    out.Item,
			RawText: input.RawText,
		})
		if err != nil {
			o.reporter.Display(ctx, diagnosis.Storage(err), "store "+out.Item.Name)
			return nil, errors.Wrap(err, "failed to store item")
		}
		out.ID = created.Record.ID
	}

	out.Duration = o.clock.Now().Sub(start)
	slog.InfoContext(ctx, "Parsed item",
		"name", out.Item.Name,
		"type", out.Item.Type,
		"calls", out.Calls,
		"id", out.ID,
		"duration", out.Duration)

	return out, nil
}

// readItem decodes the merged passes. A value that still does not fit the
// item model is the model's fault, so it is diagnosed as a bad answer.
func (o *orchestrator) readItem(ctx context.Context, value map[string]any, mode Mode) (*item.Item, error) {
	parsed, err := item.FromMap(value)
	if err == nil {
		return parsed, nil
	}

	verr := &shape.ValidationError{
		Shape:  structuredShape(mode),
		Issues: []shape.Issue{{Message: err.Error()}},
	}
	o.reporter.Display(ctx, diagnosis.Analyze(verr), "read parsed item")
	return nil, errors.WrapWithCode(verr, errors.CodeInvalidArgument, "failed to read parsed item")
}

// enrich fills weapon blanks from the reference catalog. Lookup failures
// never fail the parse.
func (o *orchestrator) enrich(ctx context.Context, it *item.Item) (*item.Item, bool) {
	if o.srd == nil || normalize.TargetType(it.ItemType, it.ActionType) != vtt.ItemTypeWeapon {
		return it, false
	}

	name := it.BaseItem
	if name == "" {
		name = it.Name
	}

	w, err := o.srd.LookupWeapon(ctx, name)
	if err != nil {
		if !errors.IsNotFound(err) && !errors.IsInvalidArgument(err) {
			slog.WarnContext(ctx, "Reference lookup failed", "name", name, "error", err)
		}
		return it, false
	}

	slog.DebugContext(ctx, "Enriching item from reference data", "name", it.Name, "weapon", w.Key)
	return srd.Enrich(it, w), true
}

// parseRun holds the state of one ParseAndFormat call
type parseRun struct {
	processor batch.Processor
	text      string
	name      string
	calls     int
}

func (r *parseRun) ask(ctx context.Context, input *extraction.AskInput) (map[string]any, error) {
	r.calls++
	out, err := r.processor.ProcessRequest(ctx, input)
	if err != nil {
		return nil, err
	}
	return out.Value, nil
}

// basicPass pulls out the name so the structured pass can be pinned to it
func (r *parseRun) basicPass(ctx context.Context) error {
	value, err := r.ask(ctx, &extraction.AskInput{
		Prompt:    basicPrompt,
		Shape:     shape.Basic(),
		Inputs:    map[string]string{"text": r.text},
		Deletions: idKeys,
		Label:     shape.NameBasic,
	})
	if err != nil {
		return errors.Wrap(err, "basic item extraction failed")
	}

	if name, ok := value["name"].(string); ok {
		r.name = strings.TrimSpace(name)
	}
	return nil
}

func (r *parseRun) structuredPass(ctx context.Context, mode Mode) (map[string]any, error) {
	switch mode {
	case ModeSmallSchemaNoChunks:
		return r.itemPass(ctx, shape.Core())
	case ModeSmallSchemaInChunks:
		return r.chunkedPass(ctx)
	default:
		return r.itemPass(ctx, shape.Item())
	}
}

func (r *parseRun) itemPass(ctx context.Context, s shape.Shape) (map[string]any, error) {
	value, err := r.ask(ctx, r.itemInput(s))
	if err != nil {
		return nil, errors.Wrap(err, "item extraction failed")
	}
	return declared(s, value), nil
}

func (r *parseRun) itemInput(s shape.Shape) *extraction.AskInput {
	input := &extraction.AskInput{
		Prompt:    itemPrompt,
		Shape:     s,
		Inputs:    map[string]string{"text": r.itemText()},
		Deletions: idKeys,
		Label:     s.Name,
	}
	if r.name != "" {
		input.Overrides = map[string]any{"name": r.name}
	}
	return input
}

func (r *parseRun) itemText() string {
	if r.name == "" {
		return r.text
	}
	return fmt.Sprintf("Name: %s\n\n%s", r.name, r.text)
}

// chunkedPass asks for the core fields and each chunk concurrently and
// merges them with the core result first. A key already present is kept.
func (r *parseRun) chunkedPass(ctx context.Context) (map[string]any, error) {
	chunks := shape.Chunks()
	results := make([]map[string]any, len(chunks)+1)
	inputs := make([]*extraction.AskInput, 0, len(chunks)+1)

	inputs = append(inputs, r.itemInput(shape.Core()))
	for _, c := range chunks {
		inputs = append(inputs, &extraction.AskInput{
			Prompt: chunkPrompt,
			Shape:  c,
			Inputs: map[string]string{
				"text":   r.itemText(),
				"fields": strings.Join(c.Keys(), ", "),
			},
			Deletions: idKeys,
			Label:     c.Name,
		})
	}
	r.calls += len(inputs)

	g, gctx := errgroup.WithContext(ctx)
	for i, input := range inputs {
		g.Go(func() error {
			out, err := r.processor.ProcessRequest(gctx, input)
			if err != nil {
				return errors.Wrapf(err, "%s extraction failed", input.Label)
			}
			results[i] = out.Value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]any)
	for i, res := range results {
		for k, v := range declared(inputs[i].Shape, res) {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}
	return merged, nil
}

// declared keeps the top-level keys s asks for. A pass only owns its own
// fields; anything else it volunteers is dropped before merging.
func declared(s shape.Shape, value map[string]any) map[string]any {
	out := make(map[string]any, len(value))
	for _, k := range s.Keys() {
		if v, ok := value[k]; ok {
			out[k] = v
		}
	}
	return out
}

func structuredShape(mode Mode) string {
	switch mode {
	case ModeSmallSchemaNoChunks:
		return shape.NameCore
	case ModeSmallSchemaInChunks:
		return "merged chunks"
	default:
		return shape.NameItem
	}
}

func validStrategy(s Strategy) bool {
	return slices.Contains(AllStrategies(), s)
}

func validMode(m Mode) bool {
	return slices.Contains(AllModes(), m)
}

package itemparse

import (
	"time"

	"github.com/KirkDiggler/rpg-item-parser/internal/entities/item"
	"github.com/KirkDiggler/rpg-item-parser/internal/entities/vtt"
)

// Strategy selects how the item is extracted
type Strategy string

// Strategies
const (
	// StrategyBasicItemExtraction asks for name and description first and
	// then for the stats, keeping the name from the first pass.
	StrategyBasicItemExtraction Strategy = "BASIC_ITEM_EXTRACTION"
	// StrategyDirectParsing asks for the stats straight away.
	StrategyDirectParsing Strategy = "DIRECT_PARSING"
)

// AllStrategies lists the strategies in display order
func AllStrategies() []Strategy {
	return []Strategy{StrategyBasicItemExtraction, StrategyDirectParsing}
}

// Mode selects how the stats request is split across completions
type Mode string

// Parsing modes
const (
	// ModeOneCall asks for the whole item in a single completion.
	ModeOneCall Mode = "ONE_CALL"
	// ModeSeparateItemsAndStats asks for the core fields and the stats in
	// two completions.
	ModeSeparateItemsAndStats Mode = "SEPARATE_ITEMS_AND_STATS"
	// ModeSmallSchemaNoChunks asks for the core fields only.
	ModeSmallSchemaNoChunks Mode = "SMALL_SCHEMA_NO_CHUNKS"
	// ModeSmallSchemaInChunks asks for the core fields and then each group
	// of optional fields in its own completion.
	ModeSmallSchemaInChunks Mode = "SMALL_SCHEMA_IN_CHUNKS"
)

// AllModes lists the parsing modes in display order
func AllModes() []Mode {
	return []Mode{ModeOneCall, ModeSeparateItemsAndStats, ModeSmallSchemaNoChunks, ModeSmallSchemaInChunks}
}

// ParseInput is the input for ParseAndFormat
type ParseInput struct {
	RawText string
	// Strategy defaults to the orchestrator's configured strategy
	Strategy Strategy
	// ParsingMode defaults to the orchestrator's configured mode
	ParsingMode Mode
	// Persist stores the result when a repository is configured
	Persist bool
}

// ParseOutput is the output of ParseAndFormat
type ParseOutput struct {
	ID       string
	Item     *vtt.Item
	Parsed   *item.Item
	// Enriched is set when reference weapon data filled in blanks
	Enriched bool
	// Calls is the number of extraction requests made
	Calls    int
	Duration time.Duration
}

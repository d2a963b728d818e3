// Package srd looks up reference weapons in the dnd5e api so parsed items can
// be completed with rules data the description left out.
package srd

//go:generate mockgen -destination=mock/mock_client.go -package=srdmock github.com/KirkDiggler/rpg-item-parser/internal/clients/srd Client

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"
	"github.com/fadedpez/dnd5e-api/entities"

	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	"github.com/KirkDiggler/rpg-item-parser/internal/normalize"
	"github.com/KirkDiggler/rpg-item-parser/internal/pkg/flight"
)

// WeaponCategory is the equipment category listing every weapon
const WeaponCategory = "weapon"

const indexKey = "weapon-index"

// Client looks up reference data
type Client interface {
	// LookupWeapon finds the reference weapon for a base item code or a
	// weapon name. Unknown weapons give a NotFound error.
	LookupWeapon(ctx context.Context, name string) (*Weapon, error)
}

// catalog is the part of the dnd5e api the client reads
type catalog interface {
	GetEquipmentCategory(key string) (*entities.EquipmentCategory, error)
	GetEquipment(key string) (dnd5e.EquipmentInterface, error)
}

// Config contains configuration options for the srd client.
type Config struct {
	// BaseURL for the D&D 5e API (optional, defaults to https://www.dnd5eapi.co/api/2014/)
	BaseURL string
	// HTTPTimeout for API requests (optional, defaults to 30 seconds)
	HTTPTimeout time.Duration
	// CacheTTL for the cached client and the weapon index (optional, defaults to 24 hours)
	CacheTTL time.Duration
}

// Validate validates the Config and sets defaults if not provided.
func (cfg *Config) Validate() error {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.dnd5eapi.co/api/2014/"
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 24 * time.Hour
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateDuration("http_timeout", cfg.HTTPTimeout, vb)
	errors.ValidateDuration("cache_ttl", cfg.CacheTTL, vb)
	return vb.Build()
}

type client struct {
	api   catalog
	index *flight.Group[map[string]string]
}

// New creates a new srd client with the given configuration.
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	baseClient, err := dnd5e.NewDND5eAPI(&dnd5e.DND5eAPIConfig{
		Client:  &http.Client{Timeout: cfg.HTTPTimeout},
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to create D&D 5e API client")
	}

	return newClient(dnd5e.NewCachedClient(baseClient, cfg.CacheTTL), cfg.CacheTTL), nil
}

func newClient(api catalog, ttl time.Duration) *client {
	return &client{
		api:   api,
		index: flight.New[map[string]string](&flight.Config{Grace: ttl}),
	}
}

func (c *client) LookupWeapon(ctx context.Context, name string) (*Weapon, error) {
	code := normalize.BaseItem("", name)
	if code == "" {
		return nil, errors.InvalidArgument("weapon name is required")
	}

	index, _, err := c.index.Do(ctx, indexKey, c.loadIndex)
	if err != nil {
		return nil, err
	}

	key, ok := index[code]
	if !ok {
		return nil, errors.NotFoundf("no reference weapon for %q", name)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeCanceled, "weapon lookup canceled")
	}

	slog.DebugContext(ctx, "Calling D&D 5e API to get weapon", "weapon", name, "api", key)
	equipment, err := c.api.GetEquipment(key)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to get weapon from D&D 5e API").
			WithMeta("api_key", key)
	}

	weapon, ok := equipment.(*entities.Weapon)
	if !ok || weapon == nil {
		return nil, errors.NotFoundf("%q is not a weapon", key)
	}
	return convertWeapon(weapon), nil
}

// loadIndex maps base item codes onto api keys
func (c *client) loadIndex(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeCanceled, "weapon index load canceled")
	}

	category, err := c.api.GetEquipmentCategory(WeaponCategory)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to get weapon category from D&D 5e API")
	}
	if category == nil {
		return nil, errors.NotFound("weapon category not found")
	}

	index := make(map[string]string, len(category.Equipment))
	for _, ref := range category.Equipment {
		if ref == nil || ref.Key == "" {
			continue
		}
		index[ref.Key] = ref.Key
		if w, ok := normalize.LookupBaseWeapon(readableName(ref.Name)); ok {
			if _, taken := index[w.Code]; !taken {
				index[w.Code] = ref.Key
			}
		}
	}

	slog.InfoContext(ctx, "Loaded reference weapon index", "weapons", len(category.Equipment), "entries", len(index))
	return index, nil
}

// readableName turns "Crossbow, hand" into "hand crossbow"
func readableName(name string) string {
	head, tail, ok := strings.Cut(name, ",")
	if !ok {
		return name
	}
	return strings.ToLower(strings.TrimSpace(tail) + " " + strings.TrimSpace(head))
}

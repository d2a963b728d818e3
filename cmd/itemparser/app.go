package main

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-item-parser/internal/batch"
	"github.com/KirkDiggler/rpg-item-parser/internal/clients/llm"
	"github.com/KirkDiggler/rpg-item-parser/internal/clients/srd"
	"github.com/KirkDiggler/rpg-item-parser/internal/config"
	"github.com/KirkDiggler/rpg-item-parser/internal/diagnosis"
	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	"github.com/KirkDiggler/rpg-item-parser/internal/extraction"
	"github.com/KirkDiggler/rpg-item-parser/internal/notify"
	"github.com/KirkDiggler/rpg-item-parser/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-item-parser/internal/orchestrators/itemparse"
	"github.com/KirkDiggler/rpg-item-parser/internal/ratelimit"
	redisclient "github.com/KirkDiggler/rpg-item-parser/internal/redis"
	"github.com/KirkDiggler/rpg-item-parser/internal/repositories/credentials"
	"github.com/KirkDiggler/rpg-item-parser/internal/repositories/items"
	"github.com/KirkDiggler/rpg-item-parser/internal/repositories/settings"
	"github.com/KirkDiggler/rpg-item-parser/internal/retry"
	"github.com/KirkDiggler/rpg-item-parser/internal/services/credential"
)

// app holds everything a command needs. The parse pipeline is only built
// by commands that talk to a model.
type app struct {
	cfg         *config.Config
	settings    settings.Repository
	credentials *credential.Service
	items       items.Repository
	dice        dice.Service

	parser  itemparse.Service
	batcher *batch.Coordinator

	closers []func()
}

// Close releases resources in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// openApp loads configuration and opens the stores. Precedence from lowest
// to highest is defaults, the config file, stored settings, the environment.
func openApp(ctx context.Context) (*app, error) {
	config.LoadDotEnv()

	base, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	base, err = config.FromEnv(base)
	if err != nil {
		return nil, errors.Wrap(err, "invalid environment override")
	}
	setupLogging(debug || base.Debug.Enabled)

	a := &app{}
	creds, err := a.openStores(ctx, base)
	if err != nil {
		a.Close()
		return nil, err
	}

	stored, err := a.settings.List(ctx)
	if err != nil {
		a.Close()
		return nil, errors.Wrap(err, "failed to read stored settings")
	}
	cfg, err := config.FromEnv(config.ApplyStored(base, stored.Values))
	if err != nil {
		a.Close()
		return nil, errors.Wrap(err, "invalid environment override")
	}
	a.cfg = cfg
	setupLogging(debug || cfg.Debug.Enabled)

	a.credentials, err = credential.New(&credential.Config{
		Credentials: creds,
		ModelFamily: cfg.Provider.ModelFamily,
	})
	if err != nil {
		a.Close()
		return nil, errors.Wrap(err, "failed to create credential service")
	}

	a.dice, err = dice.NewOrchestrator(&dice.Config{})
	if err != nil {
		a.Close()
		return nil, errors.Wrap(err, "failed to create dice orchestrator")
	}

	return a, nil
}

func (a *app) openStores(ctx context.Context, cfg *config.Config) (credentials.Repository, error) {
	if !cfg.Redis.Enabled {
		slog.DebugContext(ctx, "Redis disabled, using in-memory stores")
		a.settings = settings.NewInMemory()
		a.items = items.NewInMemory()
		return credentials.NewInMemory(), nil
	}

	client, err := redisclient.NewClient(cfg.Redis.Addr, &redisclient.Options{
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create redis client")
	}
	a.closers = append(a.closers, func() {
		_ = client.Close() // nolint:errcheck // safe to ignore in cleanup
	})
	if err := redisclient.Ping(ctx, client); err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "Connected to redis", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)

	a.settings, err = settings.NewRedis(&settings.RedisConfig{Client: client})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create settings repository")
	}
	a.items, err = items.NewRedis(&items.RedisConfig{Client: client})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create item repository")
	}
	creds, err := credentials.NewRedis(&credentials.RedisConfig{Client: client})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create credential repository")
	}
	return creds, nil
}

// startParser builds the model client, limiter, retry policy, extraction
// driver, batch coordinator and the parse orchestrator on top of them
func (a *app) startParser(ctx context.Context) error {
	if a.parser != nil {
		return nil
	}
	cfg := a.cfg

	apiKey := cfg.Provider.APIKey
	if apiKey == "" {
		stored, err := a.credentials.GetCredential(ctx, cfg.Provider.Name)
		if errors.IsNotFound(err) {
			return errors.InvalidArgumentf("no API key for %s: set %s or run 'itemparser credential set'",
				cfg.Provider.Name, providerEnvVar(cfg.Provider.Name))
		}
		if err != nil {
			return errors.Wrap(err, "failed to read stored credential")
		}
		apiKey = stored
	}

	client, err := llm.New(&llm.Config{
		Provider:  cfg.Provider.Name,
		APIKey:    apiKey,
		Model:     cfg.Provider.Model,
		BaseURL:   cfg.Provider.BaseURL,
		MaxTokens: cfg.Provider.MaxTokens,
		Timeout:   cfg.Provider.Timeout.Duration,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create model client")
	}

	limiter, err := ratelimit.New(&ratelimit.Config{
		Enabled:           cfg.RateLimit.Enabled,
		MaxConcurrent:     cfg.RateLimit.MaxConcurrent,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create rate limiter")
	}

	retrier, err := retry.New(&retry.Config{
		Enabled:           cfg.Retry.Enabled,
		MaxRetries:        cfg.Retry.MaxRetries,
		InitialDelay:      cfg.Retry.InitialDelay.Duration,
		MaxDelay:          cfg.Retry.MaxDelay.Duration,
		BackoffMultiplier: cfg.Retry.BackoffMultiplier,
		Observer:          logAttempt,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create retry coordinator")
	}

	reporter := diagnosis.NewReporter(&diagnosis.ReporterConfig{
		Notifier: notify.NewConsole(&notify.ConsoleConfig{}),
	})

	driver, err := extraction.New(&extraction.Config{
		Completer:  client,
		Limiter:    limiter,
		Retry:      retrier,
		Reporter:   reporter,
		LogPrompts: cfg.Debug.LogPrompts,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create extraction driver")
	}

	a.batcher, err = batch.New(&batch.Config{
		Asker:        driver,
		Enabled:      cfg.Batch.Enabled,
		MaxBatchSize: cfg.Batch.MaxSize,
		Timeout:      cfg.Batch.Timeout.Duration,
		Pacing:       cfg.Batch.Pacing.Duration,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create batch coordinator")
	}
	a.closers = append(a.closers, a.batcher.Close)

	var reference srd.Client
	if cfg.Parsing.Enrich {
		reference, err = srd.New(&srd.Config{
			BaseURL:  cfg.SRD.BaseURL,
			CacheTTL: cfg.SRD.CacheTTL.Duration,
		})
		if err != nil {
			return errors.Wrap(err, "failed to create reference client")
		}
	}

	a.parser, err = itemparse.NewOrchestrator(&itemparse.Config{
		Processor:       a.batcher,
		SRD:             reference,
		Items:           a.items,
		Reporter:        reporter,
		DefaultStrategy: itemparse.Strategy(cfg.Parsing.Strategy),
		DefaultMode:     itemparse.Mode(cfg.Parsing.DefaultMode),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create item parser")
	}

	slog.DebugContext(ctx, "Parser ready",
		"provider", client.Provider(),
		"batching", cfg.Batch.Enabled,
		"enrich", cfg.Parsing.Enrich)
	return nil
}

// setSetting validates and stores a setting, then applies it to the
// running app
func (a *app) setSetting(ctx context.Context, key, value string) error {
	next, err := config.Update(a.cfg, key, value)
	if err != nil {
		return err
	}
	stored, err := config.Get(next, key)
	if err != nil {
		return err
	}
	if _, err := a.settings.Set(ctx, &settings.SetInput{Key: key, Value: stored}); err != nil {
		return errors.Wrapf(err, "failed to store %s", key)
	}
	a.cfg = next

	if key == batchEnabledKey && a.batcher != nil {
		a.batcher.SetEnabled(next.Batch.Enabled)
	}
	return nil
}

const batchEnabledKey = "batch.enabled"

func logAttempt(ctx context.Context, attempt retry.Attempt) {
	if attempt.Exhausted || !attempt.Retryable {
		return
	}
	slog.DebugContext(ctx, "Retrying model call",
		"label", attempt.Label,
		"attempt", attempt.Number+1,
		"delay", attempt.Delay,
		"error", attempt.Err)
}

func providerEnvVar(provider string) string {
	if provider == llm.ProviderAnthropic {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENAI_API_KEY"
}

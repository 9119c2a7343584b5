package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonathan/career-recommender/internal/catalog"
	"github.com/jonathan/career-recommender/internal/config"
	"github.com/jonathan/career-recommender/internal/db"
	"github.com/jonathan/career-recommender/internal/embedding"
	"github.com/jonathan/career-recommender/internal/engine"
	"github.com/jonathan/career-recommender/internal/logger"
	"github.com/jonathan/career-recommender/internal/matching"
	"github.com/jonathan/career-recommender/internal/normalize"
	"github.com/jonathan/career-recommender/internal/roadmap"
)

// app holds everything a command needs once configuration is resolved
type app struct {
	cfg    config.Config
	log    *logger.Logger
	store  *catalog.Store
	cache  *embedding.CachedProvider
	engine *engine.Engine

	closers []func()
}

// loadConfig resolves configuration: config file, then environment, then defaults.
// The --catalog flag wins over all of them.
func loadConfig(getenv func(string) string) (config.Config, error) {
	var fileCfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		fileCfg = *loaded
	}
	if err := fileCfg.ApplyEnv(getenv); err != nil {
		return config.Config{}, err
	}

	cfg := fileCfg.MergeWithDefaults(config.Defaults())
	if catalogPath != "" {
		cfg.Catalog = catalogPath
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newApp builds the engine stack. progress receives pipeline events when non-nil.
func newApp(ctx context.Context, verbose bool, progress io.Writer) (*app, error) {
	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		return nil, err
	}

	logMode := cfg.LogMode
	if verbose {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log}
	a.closers = append(a.closers, log.Sync)

	a.store, err = catalog.Open(cfg.Catalog, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	provider, err := a.newProvider(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := engineOptions(cfg, log)
	if progress != nil {
		opts.OnProgress = func(event engine.ProgressEvent) {
			fmt.Fprintf(progress, "[%s] %s\n", event.Step, event.Message) //nolint:errcheck
		}
	}

	a.engine, err = engine.New(ctx, a.store, provider, opts, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func engineOptions(cfg config.Config, log *logger.Logger) engine.Options {
	return engine.Options{
		Matching: matching.Options{
			Threshold:        cfg.Threshold,
			LexicalThreshold: cfg.LexicalThreshold,
			LexicalFallback:  !cfg.DisableLexicalFallback,
			Log:              log,
		},
		TopK: cfg.TopK,
		Roadmap: roadmap.Options{
			ResourcesPerSkill: cfg.ResourcesPerSkill,
			DefaultHours:      cfg.DefaultHours,
			RelatedDiscount:   cfg.EffectiveRelatedDiscount(),
		},
	}
}

// newProvider selects the embedding provider and wraps it in the cache with
// whichever shared tiers are configured. It returns nil for ProviderNone.
func (a *app) newProvider(ctx context.Context) (embedding.Provider, error) {
	cfg := a.cfg

	var (
		base  embedding.Provider
		model string
	)
	switch cfg.EmbeddingProvider {
	case config.ProviderNone:
		a.log.Info("embeddings disabled, matching exactly and lexically")
		return nil, nil
	case config.ProviderGemini:
		gemini, err := embedding.NewGeminiProvider(ctx, cfg.APIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = gemini.Close() })
		base, model = gemini, gemini.Model()
	default:
		hashing := embedding.NewHashingProvider(cfg.EmbeddingDimension)
		base, model = hashing, fmt.Sprintf("hashing-%d", hashing.Dimension())
	}

	tiers := a.vectorStores(ctx)
	var store embedding.VectorStore
	if tiers.Len() > 0 {
		store = tiers
	}

	cached, err := embedding.NewCachedProvider(base, embedding.CacheOptions{
		Size:    cfg.CacheSize,
		Timeout: cfg.EmbedTimeoutDuration(),
		Store:   store,
		Model:   model,
		Log:     a.log,
	})
	if err != nil {
		return nil, err
	}
	a.cache = cached
	a.log.Info("embedding provider ready", "provider", cfg.EmbeddingProvider, "model", model, "shared_tiers", tiers.Len())
	return cached, nil
}

// vectorStores connects the configured shared tiers, Redis before PostgreSQL.
// An unreachable tier is logged and skipped.
func (a *app) vectorStores(ctx context.Context) *embedding.TieredStore {
	var tiers []embedding.VectorStore

	if a.cfg.RedisURL != "" {
		redisStore, err := embedding.NewRedisStore(ctx, a.cfg.RedisURL, a.cfg.RedisTTLDuration())
		if err != nil {
			a.log.Warn("redis embedding cache unavailable", "error", err)
		} else {
			a.closers = append(a.closers, func() { _ = redisStore.Close() })
			tiers = append(tiers, redisStore)
		}
	}

	if a.cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, a.cfg.DatabaseURL)
		if err == nil {
			err = database.EnsureSchema(ctx)
			if err != nil {
				database.Close()
			}
		}
		if err != nil {
			a.log.Warn("postgres embedding store unavailable", "error", err)
		} else {
			a.closers = append(a.closers, database.Close)
			tiers = append(tiers, db.NewEmbeddingStore(database))
		}
	}

	return embedding.NewTieredStore(tiers...)
}

// Close releases connections in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// readSkills collects raw skills from a comma separated flag value and an
// optional file with one skill per line (or comma separated).
func readSkills(flagValue, filePath string) ([]string, error) {
	skills := normalize.SplitManualInput(flagValue)
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read skills file: %w", err)
		}
		skills = append(skills, normalize.SplitManualInput(string(data))...)
	}
	return skills, nil
}

// writeOutput writes data to path, or to w when path is empty
func writeOutput(w io.Writer, path string, data []byte) error {
	if !strings.HasSuffix(string(data), "\n") {
		data = append(data, '\n')
	}
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Create temp config file
	content := `{
		"catalog": "data/catalog.yaml",
		"threshold": 0.8,
		"top_k": 3,
		"embedding_provider": "gemini",
		"embed_timeout": "2s",
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "data/catalog.yaml", cfg.Catalog)
	assert.Equal(t, 0.8, cfg.Threshold)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, ProviderGemini, cfg.EmbeddingProvider)
	assert.Equal(t, 2*time.Second, cfg.EmbedTimeoutDuration())
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate_Defaults(t *testing.T) {
	cfg := Defaults()
	cfg.Catalog = ""
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Ranges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"threshold above one", func(c *Config) { c.Threshold = 1.5 }, "'threshold'"},
		{"negative lexical threshold", func(c *Config) { c.LexicalThreshold = -0.1 }, "'lexical_threshold'"},
		{"discount above one", func(c *Config) { c.RelatedDiscount = 2 }, "'related_discount'"},
		{"negative top k", func(c *Config) { c.TopK = -1 }, "'top_k'"},
		{"negative resources", func(c *Config) { c.ResourcesPerSkill = -1 }, "'resources_per_skill'"},
		{"negative hours", func(c *Config) { c.DefaultHours = -5 }, "'default_hours'"},
		{"negative cache", func(c *Config) { c.CacheSize = -1 }, "'cache_size'"},
		{"port out of range", func(c *Config) { c.Port = 70000 }, "'port'"},
		{"unknown provider", func(c *Config) { c.EmbeddingProvider = "openai" }, "unknown embedding provider"},
		{"unknown log mode", func(c *Config) { c.LogMode = "loud" }, "'log_mode'"},
		{"bad timeout", func(c *Config) { c.EmbedTimeout = "soon" }, "'embed_timeout'"},
		{"negative ttl", func(c *Config) { c.RedisTTL = "-1h" }, "'redis_ttl'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Catalog = ""
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_CatalogNotFound(t *testing.T) {
	cfg := &Config{Catalog: "/nonexistent/catalog.yaml"}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "catalog file not found")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"CAREER_CATALOG":            "other.json",
		"CAREER_THRESHOLD":          "0.9",
		"CAREER_TOP_K":              "2",
		"CAREER_WATCH_CATALOG":      "true",
		"CAREER_EMBEDDING_PROVIDER": "none",
		"GEMINI_API_KEY":            "secret",
		"REDIS_URL":                 "redis://localhost:6379/0",
		"DATABASE_URL":              "postgres://localhost/career",
	}
	cfg := Defaults()

	err := cfg.ApplyEnv(func(k string) string { return env[k] })
	require.NoError(t, err)

	assert.Equal(t, "other.json", cfg.Catalog)
	assert.Equal(t, 0.9, cfg.Threshold)
	assert.Equal(t, 2, cfg.TopK)
	assert.True(t, cfg.WatchCatalog)
	assert.Equal(t, ProviderNone, cfg.EmbeddingProvider)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "postgres://localhost/career", cfg.DatabaseURL)

	// untouched values keep their defaults
	assert.Equal(t, 0.80, cfg.LexicalThreshold)
}

func TestApplyEnv_InvalidNumber(t *testing.T) {
	cfg := Defaults()
	err := cfg.ApplyEnv(func(k string) string {
		if k == "CAREER_TOP_K" {
			return "many"
		}
		return ""
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CAREER_TOP_K")
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{
		Catalog:   "mine.json",
		Threshold: 0.9,
	}

	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, "mine.json", merged.Catalog)
	assert.Equal(t, 0.9, merged.Threshold)
	assert.Equal(t, 0.80, merged.LexicalThreshold)
	assert.Equal(t, 5, merged.TopK)
	assert.Equal(t, 3, merged.ResourcesPerSkill)
	assert.Equal(t, 20.0, merged.DefaultHours)
	assert.Equal(t, 0.25, merged.RelatedDiscount)
	assert.Equal(t, 4096, merged.CacheSize)
	assert.Equal(t, ProviderHashing, merged.EmbeddingProvider)
	assert.Equal(t, 5*time.Second, merged.EmbedTimeoutDuration())
	assert.Equal(t, 8080, merged.Port)

	// the receiver is not modified
	assert.Equal(t, 0, cfg.TopK)
}

func TestEffectiveRelatedDiscount(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 0.25, cfg.EffectiveRelatedDiscount())

	cfg.DisableRelatedDiscount = true
	assert.Equal(t, 0.0, cfg.EffectiveRelatedDiscount())
}

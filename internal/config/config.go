// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Embedding provider names
const (
	ProviderGemini  = "gemini"
	ProviderHashing = "hashing"
	ProviderNone    = "none"
)

// Config represents the configuration that can be loaded from a JSON file and
// overridden by environment variables. All fields are optional; missing values
// use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	Catalog string `json:"catalog,omitempty"` // Path to the role/skill catalog (.json, .yaml)

	// Matching
	Threshold              float64 `json:"threshold,omitempty"`                // Minimum cosine similarity for an embedding match
	LexicalThreshold       float64 `json:"lexical_threshold,omitempty"`        // Minimum edit-distance ratio for a lexical match
	DisableLexicalFallback bool    `json:"disable_lexical_fallback,omitempty"` // Fail instead of matching lexically when embeddings are unavailable

	// Recommendation and roadmap
	TopK                   int     `json:"top_k,omitempty"`                    // Roles returned per recommendation
	ResourcesPerSkill      int     `json:"resources_per_skill,omitempty"`      // Resources listed per roadmap step
	DefaultHours           float64 `json:"default_hours,omitempty"`            // Hours for skills without any estimate
	RelatedDiscount        float64 `json:"related_discount,omitempty"`         // Hour discount for matched prerequisites (0.0-1.0)
	DisableRelatedDiscount bool    `json:"disable_related_discount,omitempty"` // Use flat estimates

	// Embeddings
	EmbeddingProvider  string `json:"embedding_provider,omitempty"`  // gemini, hashing or none
	APIKey             string `json:"api_key,omitempty"`             // Gemini API key
	EmbeddingModel     string `json:"embedding_model,omitempty"`     // Gemini embedding model
	EmbeddingDimension int    `json:"embedding_dimension,omitempty"` // Vector dimension
	CacheSize          int    `json:"cache_size,omitempty"`          // In-memory embedding cache entries
	EmbedTimeout       string `json:"embed_timeout,omitempty"`       // Per-call provider timeout, e.g. "5s"

	// Storage
	RedisURL    string `json:"redis_url,omitempty"`    // Shared embedding cache
	RedisTTL    string `json:"redis_ttl,omitempty"`    // Expiry of shared cache entries, e.g. "168h"
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL for persistent vectors

	// Behavior
	Port         int    `json:"port,omitempty"`          // HTTP port for serve
	LogMode      string `json:"log_mode,omitempty"`      // production or development
	WatchCatalog bool   `json:"watch_catalog,omitempty"` // Reload the catalog when the file changes
	Verbose      bool   `json:"verbose,omitempty"`       // Print detailed debug information
}

// Defaults returns the documented default configuration
func Defaults() Config {
	return Config{
		Catalog:            "data/catalog.yaml",
		Threshold:          0.75,
		LexicalThreshold:   0.80,
		TopK:               5,
		ResourcesPerSkill:  3,
		DefaultHours:       20,
		RelatedDiscount:    0.25,
		EmbeddingProvider:  ProviderHashing,
		EmbeddingModel:     "text-embedding-004",
		EmbeddingDimension: 768,
		CacheSize:          4096,
		EmbedTimeout:       "5s",
		RedisTTL:           "168h",
		Port:               8080,
		LogMode:            "production",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from environment variables read through getenv.
// Secrets come from GEMINI_API_KEY, REDIS_URL and DATABASE_URL; everything else
// uses the CAREER_ prefix.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	setFloat := func(key string, dst *float64) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config error: %s must be a number: %w", key, err)
		}
		*dst = f
		return nil
	}
	setInt := func(key string, dst *int) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: %s must be an integer: %w", key, err)
		}
		*dst = n
		return nil
	}
	setBool := func(key string, dst *bool) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config error: %s must be a boolean: %w", key, err)
		}
		*dst = b
		return nil
	}

	setString("CAREER_CATALOG", &c.Catalog)
	setString("CAREER_EMBEDDING_PROVIDER", &c.EmbeddingProvider)
	setString("CAREER_EMBEDDING_MODEL", &c.EmbeddingModel)
	setString("CAREER_EMBED_TIMEOUT", &c.EmbedTimeout)
	setString("CAREER_REDIS_TTL", &c.RedisTTL)
	setString("CAREER_LOG_MODE", &c.LogMode)
	setString("GEMINI_API_KEY", &c.APIKey)
	setString("REDIS_URL", &c.RedisURL)
	setString("DATABASE_URL", &c.DatabaseURL)

	for _, apply := range []func() error{
		func() error { return setFloat("CAREER_THRESHOLD", &c.Threshold) },
		func() error { return setFloat("CAREER_LEXICAL_THRESHOLD", &c.LexicalThreshold) },
		func() error { return setFloat("CAREER_DEFAULT_HOURS", &c.DefaultHours) },
		func() error { return setFloat("CAREER_RELATED_DISCOUNT", &c.RelatedDiscount) },
		func() error { return setInt("CAREER_TOP_K", &c.TopK) },
		func() error { return setInt("CAREER_RESOURCES_PER_SKILL", &c.ResourcesPerSkill) },
		func() error { return setInt("CAREER_CACHE_SIZE", &c.CacheSize) },
		func() error { return setInt("CAREER_PORT", &c.Port) },
		func() error { return setBool("CAREER_WATCH_CATALOG", &c.WatchCatalog) },
	} {
		if err := apply(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	// Validate numeric ranges
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("config error: 'threshold' must be between 0 and 1")
	}
	if c.LexicalThreshold < 0 || c.LexicalThreshold > 1 {
		return fmt.Errorf("config error: 'lexical_threshold' must be between 0 and 1")
	}
	if c.RelatedDiscount < 0 || c.RelatedDiscount > 1 {
		return fmt.Errorf("config error: 'related_discount' must be between 0 and 1")
	}
	if c.TopK < 0 {
		return fmt.Errorf("config error: 'top_k' must be non-negative")
	}
	if c.ResourcesPerSkill < 0 {
		return fmt.Errorf("config error: 'resources_per_skill' must be non-negative")
	}
	if c.DefaultHours < 0 {
		return fmt.Errorf("config error: 'default_hours' must be non-negative")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("config error: 'cache_size' must be non-negative")
	}
	if c.EmbeddingDimension < 0 {
		return fmt.Errorf("config error: 'embedding_dimension' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	switch c.EmbeddingProvider {
	case "", ProviderGemini, ProviderHashing, ProviderNone:
	default:
		return fmt.Errorf("config error: unknown embedding provider %q", c.EmbeddingProvider)
	}

	switch c.LogMode {
	case "", "production", "development":
	default:
		return fmt.Errorf("config error: 'log_mode' must be production or development")
	}

	if _, err := parseDuration(c.EmbedTimeout); err != nil {
		return fmt.Errorf("config error: 'embed_timeout': %w", err)
	}
	if _, err := parseDuration(c.RedisTTL); err != nil {
		return fmt.Errorf("config error: 'redis_ttl': %w", err)
	}

	// Validate file paths exist (if specified)
	if c.Catalog != "" {
		if _, err := os.Stat(c.Catalog); os.IsNotExist(err) {
			return fmt.Errorf("config error: catalog file not found: %s", c.Catalog)
		}
	}

	return nil
}

// EmbedTimeoutDuration returns the parsed embed timeout, or 0 if unset
func (c *Config) EmbedTimeoutDuration() time.Duration {
	d, _ := parseDuration(c.EmbedTimeout)
	return d
}

// RedisTTLDuration returns the parsed Redis entry expiry, or 0 for no expiry
func (c *Config) RedisTTLDuration() time.Duration {
	d, _ := parseDuration(c.RedisTTL)
	return d
}

// EffectiveRelatedDiscount returns the discount to apply, honoring DisableRelatedDiscount
func (c *Config) EffectiveRelatedDiscount() float64 {
	if c.DisableRelatedDiscount {
		return 0
	}
	return c.RelatedDiscount
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be non-negative")
	}
	return d, nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Catalog == "" {
		result.Catalog = defaults.Catalog
	}
	if result.EmbeddingProvider == "" {
		result.EmbeddingProvider = defaults.EmbeddingProvider
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.EmbeddingModel == "" {
		result.EmbeddingModel = defaults.EmbeddingModel
	}
	if result.EmbedTimeout == "" {
		result.EmbedTimeout = defaults.EmbedTimeout
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.RedisTTL == "" {
		result.RedisTTL = defaults.RedisTTL
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.LogMode == "" {
		result.LogMode = defaults.LogMode
	}

	// Int fields: use default if zero
	if result.TopK == 0 {
		result.TopK = defaults.TopK
	}
	if result.ResourcesPerSkill == 0 {
		result.ResourcesPerSkill = defaults.ResourcesPerSkill
	}
	if result.EmbeddingDimension == 0 {
		result.EmbeddingDimension = defaults.EmbeddingDimension
	}
	if result.CacheSize == 0 {
		result.CacheSize = defaults.CacheSize
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Float fields
	if result.Threshold == 0 {
		result.Threshold = defaults.Threshold
	}
	if result.LexicalThreshold == 0 {
		result.LexicalThreshold = defaults.LexicalThreshold
	}
	if result.DefaultHours == 0 {
		result.DefaultHours = defaults.DefaultHours
	}
	if result.RelatedDiscount == 0 {
		result.RelatedDiscount = defaults.RelatedDiscount
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

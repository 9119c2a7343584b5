package ratelimit

import (
	"strconv"
	"strings"
	"time"
)

// RouteLimit represents rate limiting configuration for a specific route.
type RouteLimit struct {
	Path   string        // Route path (a trailing "/" enables prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled       bool
	DefaultLimit  int
	DefaultWindow time.Duration
	// IdleTTL is how long an unused client bucket is kept
	IdleTTL    time.Duration
	MaxClients int
	Whitelist  map[string]bool
	Blacklist  map[string]bool
	Routes     []RouteLimit
}

// DefaultConfig returns the configuration used when no environment overrides are set.
func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  600,
		DefaultWindow: time.Minute,
		IdleTTL:       time.Hour,
		MaxClients:    10000,
		Whitelist:     make(map[string]bool),
		Blacklist:     make(map[string]bool),
		Routes:        DefaultRouteLimits(),
	}
}

// LoadConfig loads rate limiting configuration through getenv.
func LoadConfig(getenv func(string) string) *Config {
	cfg := DefaultConfig()
	cfg.Enabled = envBool(getenv, "RATE_LIMIT_ENABLED", cfg.Enabled)
	if !cfg.Enabled {
		return cfg
	}

	cfg.DefaultLimit = envInt(getenv, "RATE_LIMIT_DEFAULT_LIMIT", cfg.DefaultLimit)
	cfg.DefaultWindow = envDuration(getenv, "RATE_LIMIT_DEFAULT_WINDOW", cfg.DefaultWindow)
	cfg.IdleTTL = envDuration(getenv, "RATE_LIMIT_IDLE_TTL", cfg.IdleTTL)
	cfg.MaxClients = envInt(getenv, "RATE_LIMIT_MAX_CLIENTS", cfg.MaxClients)
	cfg.Whitelist = parseIPList(getenv("RATE_LIMIT_WHITELIST"))
	cfg.Blacklist = parseIPList(getenv("RATE_LIMIT_BLACKLIST"))
	return cfg
}

// DefaultRouteLimits returns the per-route limits of the recommender API.
func DefaultRouteLimits() []RouteLimit {
	return []RouteLimit{
		// Free-text analysis embeds many candidates per request
		{Path: "/analyze", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/roadmaps", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/recommendations", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
	}
}

func envInt(getenv func(string) string, key string, defaultValue int) int {
	if value := getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func envBool(getenv func(string) string, key string, defaultValue bool) bool {
	if value := getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func envDuration(getenv func(string) string, key string, defaultValue time.Duration) time.Duration {
	if value := getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}

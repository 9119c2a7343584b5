package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frozen returns a limiter whose clock only moves when advance is called
func frozen(cfg *Config) (*Limiter, func(time.Duration)) {
	l := NewLimiter(cfg)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	l.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	return l, func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.DefaultLimit = 10
	cfg.DefaultWindow = time.Minute
	cfg.Routes = []RouteLimit{
		{Path: "/analyze", Method: "POST", Limit: 2, Window: time.Minute, Burst: 2},
		{Path: "/roles/", Method: "GET", Limit: 3, Window: time.Minute},
	}
	return cfg
}

func TestLimiter_AllowsBurstThenDenies(t *testing.T) {
	l, _ := frozen(testConfig())

	for i := 0; i < 2; i++ {
		allowed, info := l.Allow("10.0.0.1", "/analyze", "POST")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 2, info.Limit)
	}

	allowed, info := l.Allow("10.0.0.1", "/analyze", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.InDelta(t, 30*time.Second, info.RetryAfter, float64(time.Second))
}

func TestLimiter_Refill(t *testing.T) {
	l, advance := frozen(testConfig())

	l.Allow("10.0.0.1", "/analyze", "POST")
	l.Allow("10.0.0.1", "/analyze", "POST")
	allowed, _ := l.Allow("10.0.0.1", "/analyze", "POST")
	require.False(t, allowed)

	advance(31 * time.Second)
	allowed, _ = l.Allow("10.0.0.1", "/analyze", "POST")
	assert.True(t, allowed)
}

func TestLimiter_RemainingAndReset(t *testing.T) {
	l, _ := frozen(testConfig())

	_, info := l.Allow("10.0.0.1", "/anything", "GET")
	assert.Equal(t, 9, info.Remaining)
	assert.True(t, info.ResetTime.After(l.now()))
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l, _ := frozen(testConfig())

	l.Allow("10.0.0.1", "/analyze", "POST")
	l.Allow("10.0.0.1", "/analyze", "POST")

	allowed, _ := l.Allow("10.0.0.2", "/analyze", "POST")
	assert.True(t, allowed)
	assert.Equal(t, 2, l.Len())
}

func TestLimiter_PrefixRoutesShareBucket(t *testing.T) {
	l, _ := frozen(testConfig())

	for _, id := range []string{"a", "b", "c"} {
		allowed, _ := l.Allow("10.0.0.1", "/roles/"+id, "GET")
		require.True(t, allowed)
	}
	allowed, _ := l.Allow("10.0.0.1", "/roles/d", "GET")
	assert.False(t, allowed)
}

func TestLimiter_HealthIsUnlimited(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultLimit = 1
	l, _ := frozen(cfg)

	for i := 0; i < 50; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/health", "GET")
		require.True(t, allowed)
	}
}

func TestLimiter_WhitelistBlacklistDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Whitelist = map[string]bool{"10.0.0.9": true}
	cfg.Blacklist = map[string]bool{"10.0.0.6": true}
	l, _ := frozen(cfg)

	for i := 0; i < 10; i++ {
		allowed, _ := l.Allow("10.0.0.9", "/analyze", "POST")
		require.True(t, allowed)
	}
	allowed, _ := l.Allow("10.0.0.6", "/health", "GET")
	assert.False(t, allowed)

	disabled := NewLimiter(&Config{Enabled: false})
	allowed, _ = disabled.Allow("10.0.0.6", "/analyze", "POST")
	assert.True(t, allowed)
}

func TestLimiter_IdleBucketsExpire(t *testing.T) {
	cfg := testConfig()
	cfg.IdleTTL = 20 * time.Millisecond
	l := NewLimiter(cfg)

	l.Allow("10.0.0.1", "/analyze", "POST")
	require.Equal(t, 1, l.Len())

	assert.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestLimiter_Concurrent(t *testing.T) {
	cfg := testConfig()
	cfg.Routes = []RouteLimit{{Path: "/analyze", Method: "POST", Limit: 50, Window: time.Hour, Burst: 50}}
	l, _ := frozen(cfg)

	var allowedCount atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("10.0.0.1", "/analyze", "POST"); ok {
				allowedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), allowedCount.Load())
}

func TestMatchRoute(t *testing.T) {
	routes := testConfig().Routes

	tests := []struct {
		path, method string
		want         string
	}{
		{"/analyze", "POST", "/analyze"},
		{"/analyze", "GET", ""},
		{"/roles/backend-dev", "GET", "/roles/"},
		{"/recommendations", "POST", ""},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.method, tt.path), func(t *testing.T) {
			got := MatchRoute(tt.path, tt.method, routes)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Path)
		})
	}

	health := MatchRoute("/health", "GET", routes)
	require.NotNil(t, health)
	assert.Equal(t, 0, health.Limit)
}

func TestLoadConfig(t *testing.T) {
	env := map[string]string{
		"RATE_LIMIT_DEFAULT_LIMIT":  "42",
		"RATE_LIMIT_DEFAULT_WINDOW": "30s",
		"RATE_LIMIT_WHITELIST":      " 10.0.0.1, ,10.0.0.2 ",
		"RATE_LIMIT_MAX_CLIENTS":    "not-a-number",
	}
	cfg := LoadConfig(func(k string) string { return env[k] })

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.DefaultWindow)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)
	assert.Equal(t, 10000, cfg.MaxClients)
	assert.Len(t, cfg.Routes, 3)

	off := LoadConfig(func(k string) string {
		if k == "RATE_LIMIT_ENABLED" {
			return "false"
		}
		return ""
	})
	assert.False(t, off.Enabled)
}

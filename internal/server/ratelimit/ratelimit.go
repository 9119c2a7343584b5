// Package ratelimit provides per-client request throttling for the HTTP API.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter keeps one token bucket per client and route. Buckets idle for longer
// than Config.IdleTTL are evicted.
type Limiter struct {
	config  *Config
	mu      sync.Mutex
	buckets *expirable.LRU[string, *rate.Limiter]
	now     func() time.Time
}

// NewLimiter creates a new rate limiter with the given configuration.
// A nil config uses DefaultConfig.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}
	size := config.MaxClients
	if size <= 0 {
		size = DefaultConfig().MaxClients
	}
	return &Limiter{
		config:  config,
		buckets: expirable.NewLRU[string, *rate.Limiter](size, nil, config.IdleTTL),
		now:     time.Now,
	}
}

// Allow reports whether a request from clientID to path is allowed and consumes
// a token when it is.
func (l *Limiter) Allow(clientID string, path string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{}
	}

	route := MatchRoute(path, method, l.config.Routes)
	if route == nil {
		route = &RouteLimit{
			Path:   path,
			Method: method,
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}
	if route.Limit <= 0 || route.Window <= 0 {
		return true, Info{Allowed: true}
	}

	bucket := l.bucket(clientID+":"+method+":"+route.Path, route)
	now := l.now()

	info := Info{Limit: route.Limit}
	reservation := bucket.ReserveN(now, 1)
	if delay := reservation.DelayFrom(now); !reservation.OK() || delay > 0 {
		reservation.CancelAt(now)
		info.RetryAfter = delay
	} else {
		info.Allowed = true
	}

	tokens := bucket.TokensAt(now)
	info.Remaining = max(0, int(math.Floor(tokens)))
	info.ResetTime = now
	if missing := float64(bucket.Burst()) - tokens; missing > 0 {
		seconds := missing / float64(bucket.Limit())
		info.ResetTime = now.Add(time.Duration(seconds * float64(time.Second)))
	}
	return info.Allowed, info
}

// Len returns the number of live client buckets
func (l *Limiter) Len() int {
	return l.buckets.Len()
}

func (l *Limiter) bucket(key string, route *RouteLimit) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if bucket, ok := l.buckets.Get(key); ok {
		return bucket
	}
	burst := route.Burst
	if burst <= 0 {
		burst = route.Limit
	}
	every := route.Window / time.Duration(route.Limit)
	bucket := rate.NewLimiter(rate.Every(every), burst)
	l.buckets.Add(key, bucket)
	return bucket
}

// Package ratelimit provides per-client request limiting backed by golang.org/x/time/rate.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleTTL is how long an unused limiter is kept before cleanup drops it.
const idleTTL = time.Hour

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

type entry struct {
	limiter    *rate.Limiter
	burst      int
	lastAccess time.Time
}

// Limiter keeps one token bucket per client, endpoint and method.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	config  *Config
	now     func() time.Time

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
			EndpointConfigs: DefaultEndpointConfigs(),
		}
	}

	l := &Limiter{
		entries: make(map[string]*entry),
		config:  config,
		now:     time.Now,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupTicker = time.NewTicker(config.CleanupInterval)
		l.cleanupStop = make(chan struct{})
		go l.cleanup()
	}
	return l
}

// Allow checks if a request from the given client is allowed for the
// endpoint and consumes a token when it is.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	cfg := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if cfg == nil {
		cfg = &EndpointConfig{
			Pattern: endpoint,
			Limit:   l.config.DefaultLimit,
			Window:  l.config.DefaultWindow,
			Burst:   l.config.DefaultLimit,
		}
	}
	if cfg.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	// Requests that hit the same tier share a bucket; a tier pattern
	// collapses /resumes/a/pdf and /resumes/b/pdf into one key.
	key := clientID + ":" + method + ":" + cfg.Pattern
	now := l.now()
	e := l.getEntry(key, cfg, now)

	allowed := e.limiter.AllowN(now, 1)
	tokens := e.limiter.TokensAt(now)
	remaining := int(math.Max(0, math.Floor(tokens)))

	perToken := time.Duration(float64(time.Second) / float64(e.limiter.Limit()))
	resetTime := now.Add(time.Duration((float64(e.burst) - tokens) * float64(perToken)))

	info := Info{
		Allowed:   allowed,
		Limit:     cfg.Limit,
		Remaining: remaining,
		ResetTime: resetTime,
	}
	if !allowed {
		info.RetryAfter = time.Duration((1 - tokens) * float64(perToken))
		if info.RetryAfter < 0 {
			info.RetryAfter = 0
		}
	}
	return allowed, info
}

func (l *Limiter) getEntry(key string, cfg *EndpointConfig, now time.Time) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[key]; ok {
		e.lastAccess = now
		return e
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.Limit
	}
	every := rate.Every(cfg.Window / time.Duration(cfg.Limit))
	e := &entry{limiter: rate.NewLimiter(every, burst), burst: burst, lastAccess: now}
	// rate.Limiter starts full relative to its own clock; pin it to ours.
	e.limiter.SetBurstAt(now, burst)
	l.entries[key] = e
	return e
}

func (l *Limiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.cleanupEntries()
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupEntries drops limiters idle for longer than idleTTL.
func (l *Limiter) cleanupEntries() {
	cutoff := l.now().Add(-idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.entries {
		if e.lastAccess.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}

// Stop stops the cleanup goroutine.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupTicker != nil {
			l.cleanupTicker.Stop()
		}
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}

package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(config *Config) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLimiter(config)
	l.now = clock.Now
	return l, clock
}

func TestLimiter_Allow(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	})
	defer limiter.Stop()

	clientID := "127.0.0.1"

	// Should allow requests up to limit
	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow(clientID, "/resumes", "GET")
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if info.Limit != 10 {
			t.Errorf("Expected limit 10, got %d", info.Limit)
		}
		if info.Remaining != 9-i {
			t.Errorf("Expected remaining %d, got %d", 9-i, info.Remaining)
		}
	}

	// 11th request should be denied
	allowed, info := limiter.Allow(clientID, "/resumes", "GET")
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if info.Remaining != 0 {
		t.Errorf("Expected remaining 0, got %d", info.Remaining)
	}
	if info.RetryAfter <= 0 {
		t.Error("Expected retry after to be positive")
	}
	if !info.ResetTime.After(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("Reset time should be in the future")
	}
}

func TestLimiter_Refill(t *testing.T) {
	limiter, clock := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  60,
		DefaultWindow: time.Minute, // one token per second
	})
	defer limiter.Stop()

	for i := 0; i < 60; i++ {
		limiter.Allow("c", "/x", "GET")
	}
	if allowed, _ := limiter.Allow("c", "/x", "GET"); allowed {
		t.Fatal("Expected bucket to be empty")
	}

	clock.Advance(1100 * time.Millisecond)

	if allowed, _ := limiter.Allow("c", "/x", "GET"); !allowed {
		t.Error("Expected request to be allowed after refill")
	}
	if allowed, _ := limiter.Allow("c", "/x", "GET"); allowed {
		t.Error("Expected request to be denied after consuming refilled token")
	}
}

func TestLimiter_Whitelist(t *testing.T) {
	limiter, _ := newTestLimiter(NewConfig(true, 1, time.Minute, []string{"127.0.0.1"}, nil))
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		if allowed, _ := limiter.Allow("127.0.0.1", "/resumes", "GET"); !allowed {
			t.Fatalf("Expected whitelisted request %d to be allowed", i+1)
		}
	}
}

func TestLimiter_Blacklist(t *testing.T) {
	limiter, _ := newTestLimiter(NewConfig(true, 1000, time.Minute, nil, []string{"10.0.0.9"}))
	defer limiter.Stop()

	if allowed, _ := limiter.Allow("10.0.0.9", "/resumes", "GET"); allowed {
		t.Error("Expected blacklisted IP to be denied")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: false, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		if allowed, _ := limiter.Allow("127.0.0.1", "/resumes", "GET"); !allowed {
			t.Fatal("Expected all requests to be allowed when disabled")
		}
	}
}

func TestLimiter_EndpointTierSharedAcrossIDs(t *testing.T) {
	limiter, _ := newTestLimiter(NewConfig(true, 1000, time.Minute, nil, nil))
	defer limiter.Stop()

	// The pdf tier has a burst of 3 regardless of which resume is rendered.
	for i := 0; i < 3; i++ {
		path := fmt.Sprintf("/resumes/r%d/pdf", i)
		if allowed, _ := limiter.Allow("c", path, "POST"); !allowed {
			t.Fatalf("Expected pdf request %d to be allowed", i+1)
		}
	}
	if allowed, info := limiter.Allow("c", "/resumes/other/pdf", "POST"); allowed {
		t.Error("Expected pdf tier to be exhausted")
	} else if info.Limit != 20 {
		t.Errorf("Expected tier limit 20, got %d", info.Limit)
	}

	// Reads are unaffected
	if allowed, _ := limiter.Allow("c", "/resumes/r0", "GET"); !allowed {
		t.Error("Expected GET to use the default limit")
	}
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	limiter, _ := newTestLimiter(NewConfig(true, 1, time.Minute, nil, nil))
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		if allowed, _ := limiter.Allow("c", "/health", "GET"); !allowed {
			t.Fatal("Expected health checks to be unlimited")
		}
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Hour})
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("c", "/resumes", "GET"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowedCount != 100 {
		t.Errorf("Expected exactly 100 allowed requests, got %d", allowedCount)
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	limiter, clock := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	limiter.Allow("old", "/resumes", "GET")
	clock.Advance(2 * time.Hour)
	limiter.Allow("new", "/resumes", "GET")

	limiter.cleanupEntries()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if len(limiter.entries) != 1 {
		t.Errorf("Expected 1 entry after cleanup, got %d", len(limiter.entries))
	}
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	if allowed, info := limiter.Allow("c", "/resumes", "GET"); !allowed || info.Limit != 1000 {
		t.Errorf("Expected default limit 1000, got allowed=%v limit=%d", allowed, info.Limit)
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		path    string
		method  string
		pattern string
	}{
		{"/resumes/abc/pdf", "POST", "/resumes/*/pdf"},
		{"/resumes/abc/latex", "POST", "/resumes/*/latex"},
		{"/sections/s1/items/order", "PUT", "/sections/*/items/order"},
		{"/resumes/import", "POST", "/resumes/import"},
		{"/resumes/abc/pdf", "GET", ""},
		{"/resumes//pdf", "POST", ""},
		{"/resumes/abc", "POST", ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.pattern == "" {
				if got != nil {
					t.Errorf("Expected no match, got %q", got.Pattern)
				}
				return
			}
			if got == nil || got.Pattern != tt.pattern {
				t.Errorf("Expected %q, got %+v", tt.pattern, got)
			}
		})
	}
}

func TestMatchPattern_PrefixSuffix(t *testing.T) {
	if !matchPattern("/files/", "/files/a/b") {
		t.Error("Expected trailing slash pattern to match any suffix")
	}
	if matchPattern("/files/", "/other/a") {
		t.Error("Expected different root not to match")
	}
}

package ratelimit

import (
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Pattern string        // Path pattern; "*" matches one segment, a trailing "/" matches any suffix
	Method  string        // HTTP method (GET, POST, etc.)
	Limit   int           // Maximum requests per window
	Window  time.Duration // Time window
	Burst   int           // Burst capacity (defaults to Limit if 0)
}

// NewConfig builds a limiter config from plain settings, using the default
// endpoint tiers.
func NewConfig(enabled bool, defaultLimit int, window time.Duration, whitelist, blacklist []string) *Config {
	return &Config{
		Enabled:         enabled,
		DefaultLimit:    defaultLimit,
		DefaultWindow:   window,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       toSet(whitelist),
		Blacklist:       toSet(blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: PDF rendering spawns the TeX engine (strictest limits)
		{Pattern: "/resumes/*/pdf", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},

		// Tier 2: CPU-bound compile and analysis
		{Pattern: "/resumes/*/latex", Method: "POST", Limit: 120, Window: time.Minute, Burst: 10},
		{Pattern: "/resumes/*/analyze", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Pattern: "/job-postings/*/analyze", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},

		// Tier 3: Structural writes
		{Pattern: "/resumes/*/sections/order", Method: "PUT", Limit: 300, Window: time.Minute, Burst: 30},
		{Pattern: "/sections/*/items/order", Method: "PUT", Limit: 300, Window: time.Minute, Burst: 30},
		{Pattern: "/items/*/subitems/order", Method: "PUT", Limit: 300, Window: time.Minute, Burst: 30},
		{Pattern: "/resumes/import", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},

		// Tier 4: Everything else uses the default limit
		// Tier 5: Health and metrics (unlimited) - handled by special case in matcher
	}
}

func toSet(list []string) map[string]bool {
	result := make(map[string]bool, len(list))
	for _, ip := range list {
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}

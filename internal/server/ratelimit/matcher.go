package ratelimit

import (
	"strings"
)

// unlimited is returned for probes that must never be throttled.
var unlimited = EndpointConfig{Limit: 0}

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Returns the matching EndpointConfig or nil if no match is found.
// Exact patterns win over wildcard and prefix patterns.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == "GET" && (path == "/health" || path == "/metrics") {
		cfg := unlimited
		cfg.Pattern = path
		return &cfg
	}

	for i := range configs {
		cfg := &configs[i]
		if cfg.Method == method && cfg.Pattern == path {
			return cfg
		}
	}

	for i := range configs {
		cfg := &configs[i]
		if cfg.Method == method && matchPattern(cfg.Pattern, path) {
			return cfg
		}
	}

	return nil
}

// matchPattern compares segment by segment; "*" matches exactly one
// non-empty segment and a trailing "/" in the pattern matches any suffix.
func matchPattern(pattern, path string) bool {
	prefix := strings.HasSuffix(pattern, "/")
	pSegs := strings.Split(strings.Trim(pattern, "/"), "/")
	segs := strings.Split(strings.Trim(path, "/"), "/")

	if prefix {
		if len(segs) < len(pSegs) {
			return false
		}
	} else if len(segs) != len(pSegs) {
		return false
	}

	for i, p := range pSegs {
		if p == "*" {
			if segs[i] == "" {
				return false
			}
			continue
		}
		if p != segs[i] {
			return false
		}
	}
	return true
}

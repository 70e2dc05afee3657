package ratelimit

import (
	"strings"
	"time"
)

// Rule limits one method and path. A Path ending in "/" matches by prefix.
type Rule struct {
	Method string
	Path   string
	Limit  int           // Requests per Window; 0 means unlimited
	Window time.Duration
	Burst  int // Defaults to Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	Rules           []Rule
	CleanupInterval time.Duration
	IdleTTL         time.Duration // Buckets unused for this long are dropped
}

// DefaultConfig limits the endpoints that reach the source or the browser.
// Everything else is unlimited.
func DefaultConfig(perMinute int) *Config {
	if perMinute <= 0 {
		perMinute = 10
	}
	return &Config{
		Enabled: true,
		Rules: []Rule{
			{Method: "POST", Path: "/reload", Limit: perMinute, Window: time.Minute, Burst: 2},
			{Method: "GET", Path: "/resume.pdf", Limit: perMinute, Window: time.Minute, Burst: 2},
		},
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
	}
}

// Match returns the rule for method and path, or nil when the request is
// unlimited. Exact paths win over prefixes.
func Match(method, path string, rules []Rule) *Rule {
	for i := range rules {
		if rules[i].Method == method && rules[i].Path == path {
			return &rules[i]
		}
	}
	for i := range rules {
		r := &rules[i]
		if r.Method == method && strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			return r
		}
	}
	return nil
}

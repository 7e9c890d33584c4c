package ratelimit

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Rule limits one route. Pattern has the server mux form "METHOD /path",
// where a "{name}" segment matches any single path segment.
type Rule struct {
	Pattern string
	Limit   int           // requests per Window; 0 means unlimited
	Window  time.Duration // defaults to one minute
	Burst   int           // bucket capacity; defaults to Limit
}

// DefaultRules returns the built-in per-route limits. Routes without a rule
// share the Config default.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "GET /health"},
		// Each export starts a headless browser.
		{Pattern: "POST /analyze/export", Limit: 10, Window: time.Minute, Burst: 2},
		{Pattern: "POST /analyze/report", Limit: 60, Window: time.Minute, Burst: 10},
		{Pattern: "POST /analyze", Limit: 60, Window: time.Minute, Burst: 10},
		{Pattern: "POST /admin/login", Limit: 10, Window: time.Minute, Burst: 3},
		{Pattern: "PUT /junk-exclusions", Limit: 30, Window: time.Minute, Burst: 5},
		{Pattern: "GET /runs/{id}", Limit: 120, Window: time.Minute, Burst: 20},
	}
}

// ParseRules parses a semicolon-separated list of rules in the form
// "METHOD /path=LIMIT/WINDOW[/BURST]", for example
// "POST /analyze=30/1m/5;GET /health=0/1m".
func ParseRules(s string) ([]Rule, error) {
	var rules []Rule
	for _, item := range strings.Split(s, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		pattern, limits, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("rate limit rule %q: missing '='", item)
		}
		rule := Rule{Pattern: strings.TrimSpace(pattern)}
		if _, _, err := splitPattern(rule.Pattern); err != nil {
			return nil, err
		}

		parts := strings.Split(strings.TrimSpace(limits), "/")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("rate limit rule %q: want LIMIT/WINDOW[/BURST]", item)
		}
		if _, err := fmt.Sscanf(parts[0], "%d", &rule.Limit); err != nil || rule.Limit < 0 {
			return nil, fmt.Errorf("rate limit rule %q: invalid limit %q", item, parts[0])
		}
		window, err := time.ParseDuration(parts[1])
		if err != nil || window <= 0 {
			return nil, fmt.Errorf("rate limit rule %q: invalid window %q", item, parts[1])
		}
		rule.Window = window
		if len(parts) == 3 {
			if _, err := fmt.Sscanf(parts[2], "%d", &rule.Burst); err != nil || rule.Burst < 0 {
				return nil, fmt.Errorf("rate limit rule %q: invalid burst %q", item, parts[2])
			}
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// MatchRule returns the first rule whose pattern matches the request.
func MatchRule(method, path string, rules []Rule) (*Rule, bool) {
	reqSegments := segments(path)
	for i := range rules {
		ruleMethod, ruleSegments, err := splitPattern(rules[i].Pattern)
		if err != nil || ruleMethod != method {
			continue
		}
		if segmentsMatch(ruleSegments, reqSegments) {
			return &rules[i], true
		}
	}
	return nil, false
}

func splitPattern(pattern string) (method string, segs []string, err error) {
	method, path, ok := strings.Cut(pattern, " ")
	if !ok || method == "" || !strings.HasPrefix(path, "/") {
		return "", nil, fmt.Errorf("invalid route pattern %q", pattern)
	}
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
	default:
		return "", nil, fmt.Errorf("invalid route pattern %q: unsupported method", pattern)
	}
	return method, segments(path), nil
}

func segments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func segmentsMatch(pattern, path []string) bool {
	if len(pattern) != len(path) {
		return false
	}
	for i, seg := range pattern {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if path[i] == "" {
				return false
			}
			continue
		}
		if seg != path[i] {
			return false
		}
	}
	return true
}

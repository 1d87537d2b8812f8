package ratelimit

import (
	"strings"
)

var unlimitedRule = EndpointConfig{Path: "/health", Method: "GET"}

// MatchEndpoint returns the rule for a request, or nil when only the default applies.
// Exact rules win over prefix rules; among prefix rules the longest prefix wins.
// GET /health is always unlimited.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if path == unlimitedRule.Path && method == unlimitedRule.Method {
		rule := unlimitedRule
		return &rule
	}

	for i := range configs {
		if configs[i].Method == method && configs[i].Path == path {
			return &configs[i]
		}
	}

	var best *EndpointConfig
	for i := range configs {
		config := &configs[i]
		if config.Method != method || !strings.HasSuffix(config.Path, "/") {
			continue
		}
		if strings.HasPrefix(path, config.Path) && (best == nil || len(config.Path) > len(best.Path)) {
			best = config
		}
	}
	return best
}

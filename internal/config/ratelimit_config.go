package config

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-agri-client/ratelimit"
)

type RateLimitConfig interface {
	GetRateLimitPolicies() map[string]ratelimit.Policy
}

type RateLimits struct{}

var _ RateLimitConfig = RateLimits{}

// GetRateLimitPolicies starts from the built in policies and applies
// RATE_LIMIT_<CATEGORY>_MAX and RATE_LIMIT_<CATEGORY>_WINDOW overrides.
func (RateLimits) GetRateLimitPolicies() map[string]ratelimit.Policy {
	policies := ratelimit.DefaultPolicies()
	for category, p := range policies {
		prefix := fmt.Sprintf("RATE_LIMIT_%s_", strings.ToUpper(category))
		p.MaxRequests = GetInt(prefix+"MAX", p.MaxRequests)
		p.Window = GetDuration(prefix+"WINDOW", p.Window)
		policies[category] = p
	}
	return policies
}

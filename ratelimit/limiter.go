// Package ratelimit throttles outgoing API requests on the client side using a
// fixed window counter per endpoint category. It protects the backend from
// accidental floods such as double submits; it is not an abuse control.
package ratelimit

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// Built in endpoint categories
const (
	CategoryAPI    = "api"
	CategoryAuth   = "auth"
	CategoryUpload = "upload"
)

// Policy is the window length and request budget of a category.
type Policy struct {
	Window      time.Duration
	MaxRequests int
}

// Result is the outcome of a Check. Message is set only when the request is denied.
type Result struct {
	Allowed    bool
	Message    string
	Count      int           // Requests counted in the current window, including this one
	RetryAfter time.Duration // Time until the window resets, meaningful only when denied
}

type window struct {
	start  time.Time
	count  int
	policy Policy
}

// Limiter counts requests per category in fixed windows. It is safe for
// concurrent use.
type Limiter struct {
	mu       sync.Mutex
	policies map[string]Policy
	windows  map[string]*window
	nowFunc  func() time.Time
}

type Option func(*Limiter)

// DefaultPolicies returns the built in category budgets.
func DefaultPolicies() map[string]Policy {
	return map[string]Policy{
		CategoryAPI:    {Window: time.Minute, MaxRequests: 100},
		CategoryAuth:   {Window: time.Minute, MaxRequests: 10},
		CategoryUpload: {Window: time.Minute, MaxRequests: 20},
	}
}

// WithPolicy sets or replaces the policy of a single category.
func WithPolicy(category string, policy Policy) Option {
	return func(l *Limiter) {
		l.policies[category] = policy
	}
}

// WithPolicies merges policies over the defaults.
func WithPolicies(policies map[string]Policy) Option {
	return func(l *Limiter) {
		for category, p := range policies {
			l.policies[category] = p
		}
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(l *Limiter) {
		l.nowFunc = now
	}
}

func New(options ...Option) *Limiter {
	l := &Limiter{
		policies: DefaultPolicies(),
		windows:  make(map[string]*window),
	}

	for _, opt := range options {
		opt(l)
	}

	if l.nowFunc == nil {
		l.nowFunc = time.Now
	}
	return l
}

// Check counts a request for category and reports whether it may proceed.
// The budget is shared by every key in the category; key only appears in the
// denial message. A denied request still consumes a slot so retry loops cannot
// keep a window open indefinitely.
func (l *Limiter) Check(key, category string) Result {
	if category == "" {
		category = CategoryAPI
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	w, ok := l.windows[category]
	if !ok {
		w = &window{start: now, policy: l.policyFor(category)}
		l.windows[category] = w
	}

	if now.Sub(w.start) >= w.policy.Window {
		w.start = now
		w.count = 0
	}

	w.count++
	if w.count > w.policy.MaxRequests {
		retryAfter := w.start.Add(w.policy.Window).Sub(now)
		return Result{
			Allowed:    false,
			Count:      w.count,
			RetryAfter: retryAfter,
			Message:    denialMessage(key, category, retryAfter),
		}
	}

	return Result{Allowed: true, Count: w.count}
}

// Reset drops the window of a category so the next Check starts fresh.
func (l *Limiter) Reset(category string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, category)
}

// Policy returns the policy applied to category.
func (l *Limiter) Policy(category string) Policy {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.policyFor(category)
}

// policyFor must be called with mu held. Unknown categories get the api
// budget in a window of their own.
func (l *Limiter) policyFor(category string) Policy {
	if p, ok := l.policies[category]; ok {
		return p
	}
	if p, ok := l.policies[CategoryAPI]; ok {
		return p
	}
	return DefaultPolicies()[CategoryAPI]
}

func denialMessage(key, category string, retryAfter time.Duration) string {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	if category == CategoryAuth {
		return fmt.Sprintf("Too many login attempts. Please wait %d seconds before trying again.", seconds)
	}
	if key == "" {
		return fmt.Sprintf("Too many requests. Please wait %d seconds before trying again.", seconds)
	}
	return fmt.Sprintf("Too many requests to %s. Please wait %d seconds before trying again.", key, seconds)
}

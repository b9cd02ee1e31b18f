// Package apiclient is the authenticated request pipeline every API call goes
// through: client side rate limiting, token expiry guard, header decoration,
// response classification and auth failure broadcasting.
package apiclient

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-agri-client/authevents"
	"github.com/jrsteele09/go-agri-client/ratelimit"
	"github.com/jrsteele09/go-agri-client/token"
	"github.com/rs/zerolog"
)

const (
	defaultTimeout = 30 * time.Second

	msgSessionExpired = "Session expired. Please log in again."
	msgUnauthorized   = "Unauthorized – please log in again."
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	store      *token.Store
	limiter    *ratelimit.Limiter
	events     *authevents.Broadcaster
	logger     zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

func WithBroadcaster(b *authevents.Broadcaster) Option {
	return func(c *Client) {
		c.events = b
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New builds a client for baseURL. The rate limiter and broadcaster should be
// shared with every other collaborator that needs them.
func New(baseURL string, store *token.Store, options ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("api base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("token store is required")
	}

	c := &Client{
		baseURL: baseURL,
		store:   store,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if c.limiter == nil {
		c.limiter = ratelimit.New()
	}
	if c.events == nil {
		c.events = authevents.New()
	}
	return c, nil
}

// URL resolves path against the base URL. Absolute URLs are returned as is.
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) BaseURL() string                 { return c.baseURL }
func (c *Client) Store() *token.Store             { return c.store }
func (c *Client) Limiter() *ratelimit.Limiter     { return c.limiter }
func (c *Client) Events() *authevents.Broadcaster { return c.events }
func (c *Client) HTTPClient() *http.Client        { return c.httpClient }

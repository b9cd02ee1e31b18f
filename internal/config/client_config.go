package config

import (
	"strings"
	"time"
)

const (
	apiBaseURLVar  = "API_BASE_URL"
	httpTimeoutVar = "HTTP_TIMEOUT"
)

type ClientConfig interface {
	GetAPIBaseURL() string
	GetHTTPTimeout() time.Duration
}

type Client struct{}

var _ ClientConfig = Client{}

// GetAPIBaseURL returns the backend origin without a trailing slash
// (e.g., "https://api.example.com").
func (Client) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiBaseURLVar, "http://localhost:8080"), "/")
}

func (Client) GetHTTPTimeout() time.Duration {
	return GetDuration(httpTimeoutVar, 30*time.Second)
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-agri-client/internal/config"
	"github.com/jrsteele09/go-agri-client/ratelimit"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, name := range []string{
		"APP_NAME", "ENV", "FOLDER", "LOG_LEVEL", "SENTRY_DSN", "API_BASE_URL", "HTTP_TIMEOUT",
		"TOKEN_STORE", "TOKEN_FILE", "TOKEN_ENCRYPTION_KEY", "REDIS_ADDR", "REDIS_KEY", "TOKEN_EXPIRY_BUFFER",
		"RATE_LIMIT_API_MAX", "RATE_LIMIT_API_WINDOW",
	} {
		t.Setenv(name, "")
	}

	c := config.New()
	require.Equal(t, "Agri Client", c.GetAppName())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "debug", c.GetLogLevel())
	require.Empty(t, c.GetSentryDSN())
	require.Equal(t, "http://localhost:8080", c.GetAPIBaseURL())
	require.Equal(t, 30*time.Second, c.GetHTTPTimeout())
	require.Equal(t, config.TokenStoreFile, c.GetTokenStore())
	require.Equal(t, filepath.Join("./data", "session.json"), c.GetTokenFile())
	require.Equal(t, "agri:session", c.GetRedisKey())
	require.Equal(t, 30*time.Second, c.GetExpiryBuffer())
	require.Equal(t, ratelimit.DefaultPolicies(), c.GetRateLimitPolicies())
}

func TestOverrides(t *testing.T) {
	t.Setenv("ENV", "PROD")
	t.Setenv("API_BASE_URL", "https://api.agri.test/")
	t.Setenv("HTTP_TIMEOUT", "5")
	t.Setenv("TOKEN_STORE", "REDIS")
	t.Setenv("FOLDER", "/var/lib/agri")
	t.Setenv("TOKEN_FILE", "")
	t.Setenv("TOKEN_EXPIRY_BUFFER", "1m")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("RATE_LIMIT_AUTH_MAX", "3")
	t.Setenv("RATE_LIMIT_AUTH_WINDOW", "2m")
	t.Setenv("RATE_LIMIT_UPLOAD_MAX", "not a number")

	c := config.New()
	require.Equal(t, "info", c.GetLogLevel())
	require.Equal(t, "https://api.agri.test", c.GetAPIBaseURL())
	require.Equal(t, 5*time.Second, c.GetHTTPTimeout())
	require.Equal(t, config.TokenStoreRedis, c.GetTokenStore())
	require.Equal(t, filepath.Join("/var/lib/agri", "session.json"), c.GetTokenFile())
	require.Equal(t, time.Minute, c.GetExpiryBuffer())

	policies := c.GetRateLimitPolicies()
	require.Equal(t, ratelimit.Policy{Window: 2 * time.Minute, MaxRequests: 3}, policies[ratelimit.CategoryAuth])
	require.Equal(t, ratelimit.DefaultPolicies()[ratelimit.CategoryUpload], policies[ratelimit.CategoryUpload])
}

func TestUnknownTokenStoreFallsBackToFile(t *testing.T) {
	t.Setenv("TOKEN_STORE", "sqlite")
	require.Equal(t, config.TokenStoreFile, config.New().GetTokenStore())
}

func TestGetDuration(t *testing.T) {
	for value, want := range map[string]time.Duration{
		"":      time.Second,
		"10":    10 * time.Second,
		"250ms": 250 * time.Millisecond,
		"-5":    time.Second,
		"0s":    time.Second,
		"soon":  time.Second,
	} {
		t.Setenv("AGRI_TEST_DURATION", value)
		require.Equal(t, want, config.GetDuration("AGRI_TEST_DURATION", time.Second), "value %q", value)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("API_BASE_URL=https://from-file.test\nAPP_NAME=Field App\n"), 0o600))

	t.Setenv("API_BASE_URL", "")
	t.Setenv("APP_NAME", "Already Set")
	os.Unsetenv("API_BASE_URL")

	c, err := config.Load(filepath.Join(dir, "missing.env"), envFile)
	require.NoError(t, err)
	require.Equal(t, "https://from-file.test", c.GetAPIBaseURL())
	require.Equal(t, "Already Set", c.GetAppName())
}

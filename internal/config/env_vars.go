package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	appNameVar   = "APP_NAME"
	folderEnvVar = "FOLDER"
	envVar       = "ENV"
	logLevelVar  = "LOG_LEVEL"
	sentryDSNVar = "SENTRY_DSN"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Agri Client")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv(envVar)
	if env == "" {
		return "DEV"
	}
	return env
}

// GetLogLevel returns a zerolog level name; "debug" in DEV, "info" elsewhere.
func (e EnvVars) GetLogLevel() string {
	def := "info"
	if strings.EqualFold(e.GetEnv(), "DEV") {
		def = "debug"
	}
	return strings.ToLower(GetEnv(logLevelVar, def))
}

// GetSentryDSN returns "" when error reporting is disabled.
func (EnvVars) GetSentryDSN() string {
	return GetEnv(sentryDSNVar, "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetDuration parses values such as "30s" or "2m". A bare integer is taken
// as seconds. Invalid or non positive values fall back to defaultValue.
func GetDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(envVar))
	if value == "" {
		return defaultValue
	}
	if n, err := strconv.Atoi(value); err == nil {
		if n <= 0 {
			return defaultValue
		}
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

// GetInt returns defaultValue when the variable is unset, invalid or not positive.
func GetInt(envVar string, defaultValue int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(envVar)))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

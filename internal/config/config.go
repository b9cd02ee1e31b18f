package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	ClientConfig
	SessionConfig
	RateLimitConfig
}

type EnvConfig interface {
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
	GetLogLevel() string
	GetSentryDSN() string
}

type mainConfig struct {
	EnvVars
	Client
	Session
	RateLimits
}

func New() Config {
	return mainConfig{}
}

// Load reads the given .env files into the process environment, then returns
// the config. Missing files are skipped; variables already set win.
func Load(files ...string) (Config, error) {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			var pathErr *os.PathError
			if !errors.As(err, &pathErr) {
				return nil, fmt.Errorf("load %s: %w", file, err)
			}
		}
	}
	return New(), nil
}

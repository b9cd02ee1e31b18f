package config

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	tokenStoreVar    = "TOKEN_STORE"
	tokenFileVar     = "TOKEN_FILE"
	tokenKeyVar      = "TOKEN_ENCRYPTION_KEY"
	redisAddrVar     = "REDIS_ADDR"
	redisKeyVar      = "REDIS_KEY"
	expiryBufferVar  = "TOKEN_EXPIRY_BUFFER"
	defaultRedisKey  = "agri:session"
	defaultTokenFile = "session.json"
)

// TokenStoreType selects the session backend.
type TokenStoreType string

const (
	TokenStoreFile   TokenStoreType = "file"
	TokenStoreRedis  TokenStoreType = "redis"
	TokenStoreMemory TokenStoreType = "memory"
)

type SessionConfig interface {
	GetTokenStore() TokenStoreType
	GetTokenFile() string
	GetTokenEncryptionKey() string
	GetRedisAddr() string
	GetRedisKey() string
	GetExpiryBuffer() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

// GetTokenStore falls back to file for unknown values.
func (Session) GetTokenStore() TokenStoreType {
	switch t := TokenStoreType(strings.ToLower(GetEnv(tokenStoreVar, string(TokenStoreFile)))); t {
	case TokenStoreFile, TokenStoreRedis, TokenStoreMemory:
		return t
	}
	return TokenStoreFile
}

func (Session) GetTokenFile() string {
	return GetEnv(tokenFileVar, filepath.Join(EnvVars{}.GetDataFolder(), defaultTokenFile))
}

// GetTokenEncryptionKey returns "" when the session file is stored in plain JSON.
func (Session) GetTokenEncryptionKey() string {
	return GetEnv(tokenKeyVar, "")
}

func (Session) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "")
}

func (Session) GetRedisKey() string {
	return GetEnv(redisKeyVar, defaultRedisKey)
}

func (Session) GetExpiryBuffer() time.Duration {
	return GetDuration(expiryBufferVar, 30*time.Second)
}

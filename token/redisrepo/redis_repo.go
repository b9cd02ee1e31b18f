// Package redisrepo keeps the session in Redis so several processes on one
// workstation share a login. The whole session is one JSON value under one
// key, so SET and DEL replace token and claims together.
package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-agri-client/internal/errors"
	"github.com/jrsteele09/go-agri-client/token"
	"github.com/redis/go-redis/v9"
)

const DefaultKey = "agri:session"

var _ token.Repo = (*Repo)(nil)

type Repo struct {
	client  redis.UniversalClient
	key     string
	nowFunc func() time.Time
}

type Option func(*Repo)

func WithKey(key string) Option {
	return func(r *Repo) {
		if key != "" {
			r.key = key
		}
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(r *Repo) {
		r.nowFunc = now
	}
}

func New(client redis.UniversalClient, options ...Option) *Repo {
	r := &Repo{client: client, key: DefaultKey}
	for _, opt := range options {
		opt(r)
	}
	if r.nowFunc == nil {
		r.nowFunc = time.Now
	}
	return r
}

func (r *Repo) Load(ctx context.Context) (*token.Session, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var session token.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "redis decode")
	}
	return &session, nil
}

// Save stores the session with a TTL matching the token expiry so Redis drops
// it once it is useless. Sessions without a known expiry never expire.
func (r *Repo) Save(ctx context.Context, session *token.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis encode: %w", err)
	}

	var ttl time.Duration
	if exp := session.Claims.ExpiresAt; !exp.IsZero() {
		ttl = exp.Sub(r.nowFunc())
		if ttl <= 0 {
			ttl = time.Second
		}
	}

	if err := r.client.Set(ctx, r.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *Repo) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Open connects to addr and verifies the connection with PING.
func Open(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

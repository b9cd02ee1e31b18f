package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/jrsteele09/go-agri-client/apiclient"
	"github.com/jrsteele09/go-agri-client/authevents"
	"github.com/jrsteele09/go-agri-client/internal/config"
	"github.com/jrsteele09/go-agri-client/ratelimit"
	"github.com/jrsteele09/go-agri-client/session"
	"github.com/jrsteele09/go-agri-client/surveys"
	"github.com/jrsteele09/go-agri-client/token"
	"github.com/jrsteele09/go-agri-client/token/filerepo"
	"github.com/jrsteele09/go-agri-client/token/redisrepo"
	tokenfakerepo "github.com/jrsteele09/go-agri-client/token/repofake"
	"github.com/rs/zerolog"
)

// app wires one pipeline per process: a single store, limiter and
// broadcaster shared by every collaborator.
type app struct {
	ctx     context.Context
	logger  zerolog.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	store   *token.Store
	client  *apiclient.Client
	session *session.Service
	guard   *session.Guard
	surveys *surveys.Client
	closers []func() error
}

func newApp(ctx context.Context, cfg config.Config, logger zerolog.Logger, stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	a := &app{ctx: ctx, logger: logger, stdin: stdin, stdout: stdout, stderr: stderr}

	repo, err := a.openRepo(cfg)
	if err != nil {
		return nil, err
	}
	a.store = token.NewStore(repo,
		token.WithExpiryBuffer(cfg.GetExpiryBuffer()),
		token.WithLogger(logger.With().Str("component", "token").Logger()),
	)

	events := authevents.New()
	client, err := apiclient.New(cfg.GetAPIBaseURL(), a.store,
		apiclient.WithHTTPClient(&http.Client{
			Timeout: cfg.GetHTTPTimeout(),
			Transport: apiclient.ChainTransport(nil,
				apiclient.UserAgent("agri-cli/"+version),
				apiclient.WireLogging(logger.With().Str("component", "http").Logger()),
			),
		}),
		apiclient.WithLimiter(ratelimit.New(ratelimit.WithPolicies(cfg.GetRateLimitPolicies()))),
		apiclient.WithBroadcaster(events),
		apiclient.WithLogger(logger.With().Str("component", "apiclient").Logger()),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.client = client

	a.guard = session.NewGuard(a.store, events, func(ev authevents.Event) {
		fmt.Fprintf(a.stderr, "session expired: %s\nRun \"agri login\" to sign in again.\n", ev.Message)
	}, session.WithGuardLogger(logger))
	a.closers = append(a.closers, func() error { a.guard.Close(); return nil })

	a.session = session.NewService(client, session.WithGuard(a.guard), session.WithLogger(logger))
	a.surveys = surveys.New(client)
	return a, nil
}

func (a *app) openRepo(cfg config.Config) (token.Repo, error) {
	switch cfg.GetTokenStore() {
	case config.TokenStoreMemory:
		return tokenfakerepo.NewFakeSessionRepo(), nil
	case config.TokenStoreRedis:
		rdb, err := redisrepo.Open(a.ctx, cfg.GetRedisAddr())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rdb.Close)
		return redisrepo.New(rdb, redisrepo.WithKey(cfg.GetRedisKey())), nil
	}
	return filerepo.New(cfg.GetTokenFile(), filerepo.WithPassphrase(cfg.GetTokenEncryptionKey()))
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}

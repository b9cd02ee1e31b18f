package session

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-agri-client/authevents"
	"github.com/jrsteele09/go-agri-client/token"
	"github.com/rs/zerolog"
)

// Guard turns auth error broadcasts into a single logout. The first event
// clears the session and calls redirect; later events are dropped until Reset.
type Guard struct {
	store    *token.Store
	events   *authevents.Broadcaster
	redirect func(authevents.Event)
	logger   zerolog.Logger

	fired atomic.Bool
	id    uuid.UUID
}

type GuardOption func(*Guard)

func WithGuardLogger(logger zerolog.Logger) GuardOption {
	return func(g *Guard) {
		g.logger = logger
	}
}

// NewGuard subscribes to events straight away. redirect may be nil.
func NewGuard(store *token.Store, events *authevents.Broadcaster, redirect func(authevents.Event), options ...GuardOption) *Guard {
	g := &Guard{
		store:    store,
		events:   events,
		redirect: redirect,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(g)
	}
	g.id = events.Subscribe(g.handle)
	return g
}

func (g *Guard) handle(ev authevents.Event) {
	if !g.fired.CompareAndSwap(false, true) {
		return
	}

	g.logger.Info().Int("status", ev.Status).Str("message", ev.Message).Msg("auth error received, ending session")
	if err := g.store.ClearSession(context.Background()); err != nil {
		g.logger.Error().Err(err).Msg("failed to clear session")
	}
	if g.redirect != nil {
		g.redirect(ev)
	}
}

// Fired reports whether the guard has acted since the last Reset.
func (g *Guard) Fired() bool {
	return g.fired.Load()
}

// Reset re-arms the guard, typically after a successful login.
func (g *Guard) Reset() {
	g.fired.Store(false)
}

// Close stops listening for events.
func (g *Guard) Close() {
	g.events.Unsubscribe(g.id)
}

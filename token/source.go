package token

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenSource adapts a Store to oauth2.TokenSource so any oauth2 aware HTTP
// client can reuse the logged in session. It does not refresh; an expired
// session surfaces as ErrSessionExpired.
type TokenSource struct {
	ctx   context.Context
	store *Store
}

var _ oauth2.TokenSource = (*TokenSource)(nil)

func NewTokenSource(ctx context.Context, store *Store) *TokenSource {
	return &TokenSource{ctx: ctx, store: store}
}

func (ts *TokenSource) Token() (*oauth2.Token, error) {
	return ts.store.OAuth2Token(ts.ctx)
}

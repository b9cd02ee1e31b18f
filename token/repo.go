package token

import (
	"context"
	"time"
)

// Session is the unit persisted by a Repo. The token and the claims derived
// from it are always written and erased together.
type Session struct {
	AccessToken string        `json:"access_token"`
	Claims      SessionClaims `json:"claims"`
	StoredAt    time.Time     `json:"stored_at"`
}

// Repo persists at most one Session. Load returns ErrTokenNotFound when empty.
type Repo interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Clear(ctx context.Context) error
}

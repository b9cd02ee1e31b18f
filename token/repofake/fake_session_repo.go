package tokenfakerepo

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/go-agri-client/internal/errors"
	"github.com/jrsteele09/go-agri-client/token"
)

var _ token.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo keeps the session in memory. It doubles as the backend for
// TOKEN_STORE=memory.
type FakeSessionRepo struct {
	session *token.Session
	lock    sync.RWMutex

	LoadErr error // Returned by Load when set
	SaveErr error // Returned by Save when set
	Loads   int
	Saves   int
	Clears  int
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{}
}

func (r *FakeSessionRepo) Load(_ context.Context) (*token.Session, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.Loads++
	if r.LoadErr != nil {
		return nil, r.LoadErr
	}
	if r.session == nil {
		return nil, apperrors.ErrTokenNotFound
	}
	s := *r.session
	return &s, nil
}

func (r *FakeSessionRepo) Save(_ context.Context, session *token.Session) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.Saves++
	if r.SaveErr != nil {
		return r.SaveErr
	}
	s := *session
	r.session = &s
	return nil
}

func (r *FakeSessionRepo) Clear(_ context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.Clears++
	r.session = nil
	return nil
}

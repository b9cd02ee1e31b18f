package token

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-agri-client/internal/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Store is the single owner of the access token. Every read goes to the
// backing Repo so concurrent processes sharing a backend see one session.
type Store struct {
	repo    Repo
	buffer  time.Duration
	nowFunc func() time.Time
	logger  zerolog.Logger
}

type StoreOption func(*Store)

func WithExpiryBuffer(buffer time.Duration) StoreOption {
	return func(s *Store) {
		s.buffer = buffer
	}
}

func WithNowFunc(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowFunc = now
	}
}

func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

func NewStore(repo Repo, options ...StoreOption) *Store {
	s := &Store{
		repo:   repo,
		buffer: DefaultExpiryBuffer,
		logger: zerolog.Nop(),
	}

	for _, opt := range options {
		opt(s)
	}

	if s.nowFunc == nil {
		s.nowFunc = time.Now
	}
	return s
}

// Token returns the persisted token verbatim, or "" when there is none.
// Backend failures are logged and read as "no token".
func (s *Store) Token(ctx context.Context) string {
	session, err := s.load(ctx)
	if err != nil {
		return ""
	}
	return session.AccessToken
}

// IsTokenExpired reports true when there is no token, the token cannot be
// decoded, or its exp claim falls within the expiry buffer. It never fails.
func (s *Store) IsTokenExpired(ctx context.Context) bool {
	return IsExpired(s.Token(ctx), s.nowFunc(), s.buffer)
}

// Claims returns the claims stored with the current token. Claims never
// outlive their token: an expired token yields ErrSessionExpired and a
// missing one ErrNoSession.
func (s *Store) Claims(ctx context.Context) (*SessionClaims, error) {
	session, err := s.load(ctx)
	if err != nil {
		return nil, apperrors.ErrNoSession
	}
	if IsExpired(session.AccessToken, s.nowFunc(), s.buffer) {
		return nil, apperrors.ErrSessionExpired
	}

	claims := session.Claims
	return &claims, nil
}

// SetSession replaces the current token and claims in one write.
func (s *Store) SetSession(ctx context.Context, accessToken string, claims SessionClaims) error {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return apperrors.Wrapf(apperrors.ErrTokenNotFound, "Store.SetSession")
	}

	if err := s.repo.Save(ctx, &Session{
		AccessToken: accessToken,
		Claims:      claims,
		StoredAt:    s.nowFunc(),
	}); err != nil {
		return apperrors.Wrapf(err, "Store.SetSession Save")
	}
	return nil
}

// ClearSession erases the token and claims together.
func (s *Store) ClearSession(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return apperrors.Wrapf(err, "Store.ClearSession Clear")
	}
	return nil
}

// AuthorizationHeader renders the Authorization value for the current token.
func (s *Store) AuthorizationHeader(ctx context.Context) (string, bool) {
	raw := s.Token(ctx)
	if raw == "" {
		return "", false
	}
	req := &http.Request{Header: http.Header{}}
	(&oauth2.Token{AccessToken: raw, TokenType: "Bearer"}).SetAuthHeader(req)
	return req.Header.Get("Authorization"), true
}

// OAuth2Token exposes the session as an oauth2.Token whose Expiry already
// includes the expiry buffer.
func (s *Store) OAuth2Token(ctx context.Context) (*oauth2.Token, error) {
	raw := s.Token(ctx)
	if raw == "" {
		return nil, apperrors.ErrNoSession
	}

	exp, err := ExpiresAt(raw)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrSessionExpired, "%s", err.Error())
	}
	if IsExpired(raw, s.nowFunc(), s.buffer) {
		return nil, apperrors.ErrSessionExpired
	}

	return &oauth2.Token{
		AccessToken: raw,
		TokenType:   "Bearer",
		Expiry:      exp.Add(-s.buffer),
	}, nil
}

func (s *Store) load(ctx context.Context) (*Session, error) {
	session, err := s.repo.Load(ctx)
	if err != nil {
		if !errors.Is(err, apperrors.ErrTokenNotFound) {
			s.logger.Warn().Err(err).Msg("token store read failed")
		}
		return nil, err
	}
	if session == nil || session.AccessToken == "" {
		return nil, apperrors.ErrTokenNotFound
	}
	return session, nil
}

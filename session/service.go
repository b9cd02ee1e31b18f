// Package session signs users in and out against the /jwt/login endpoint and
// reacts to auth failures the request pipeline broadcasts.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-agri-client/apiclient"
	apperrors "github.com/jrsteele09/go-agri-client/internal/errors"
	"github.com/jrsteele09/go-agri-client/ratelimit"
	"github.com/jrsteele09/go-agri-client/token"
	"github.com/jrsteele09/go-agri-client/users"
	"github.com/rs/zerolog"
)

const (
	loginPath        = "/jwt/login"
	maxLoginResponse = 1 << 20

	msgMissingCredentials = "Username and password are required"
	msgInvalidCredentials = "Invalid credentials"
	msgTokenNotFound      = "Login successful but token not found"
	msgMalformedToken     = "Login successful but the token could not be read"
)

// LoginError is returned by Login and LoginAs. Message is display ready; the
// wrapped error is one of the internal/errors sentinels.
type LoginError struct {
	Message string
	Status  int // HTTP status of the login answer, 0 when none was received
	Err     error
}

func (e *LoginError) Error() string {
	return e.Message
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

// LoginResult describes the session a successful login created.
type LoginResult struct {
	Role          users.RoleType
	DashboardPath string
	Claims        token.SessionClaims
}

// Service performs login and logout. It shares the store, limiter and HTTP
// client of the API client it is built from.
type Service struct {
	client *apiclient.Client
	guard  *Guard
	logger zerolog.Logger
}

type ServiceOption func(*Service)

// WithGuard makes Login and Logout re-arm g.
func WithGuard(g *Guard) ServiceOption {
	return func(s *Service) {
		s.guard = g
	}
}

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(client *apiclient.Client, options ...ServiceOption) *Service {
	s := &Service{
		client: client,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Login exchanges credentials for a token and persists the session. The call
// bypasses Fetch: a 401 here means bad credentials, not an expired session.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, &LoginError{Message: msgMissingCredentials, Err: apperrors.ErrMissingCredentials}
	}

	url := s.client.URL(loginPath)
	if res := s.client.Limiter().Check(url, ratelimit.CategoryAuth); !res.Allowed {
		s.logger.Warn().Int("count", res.Count).Msg("login blocked by rate limiter")
		return nil, &LoginError{Message: res.Message, Err: apperrors.ErrRateLimited}
	}

	payload, err := s.post(ctx, url, LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	raw := payload.GetToken()
	if raw == "" {
		return nil, &LoginError{Message: msgTokenNotFound, Status: http.StatusOK, Err: apperrors.ErrTokenNotInResponse}
	}

	claims, err := token.DecodeClaims(raw)
	if err != nil {
		return nil, &LoginError{Message: msgMalformedToken, Status: http.StatusOK, Err: err}
	}
	if claims.EmployeeCode == "" {
		claims.EmployeeCode = username
	}
	if claims.EmployeeName == "" {
		claims.EmployeeName = username
	}
	claims.UserEmail = username

	if err := s.client.Store().SetSession(ctx, raw, *claims); err != nil {
		return nil, apperrors.Wrapf(err, "Service.Login save session")
	}
	if s.guard != nil {
		s.guard.Reset()
	}

	s.logger.Info().Str("role", string(claims.Role)).Str("employee_code", claims.EmployeeCode).Msg("login succeeded")
	return &LoginResult{
		Role:          claims.Role,
		DashboardPath: users.DashboardPath(claims.Role),
		Claims:        *claims,
	}, nil
}

// LoginAs logs in and then requires the resulting role to be one of roles.
// A mismatching session is cleared before the error is returned.
func (s *Service) LoginAs(ctx context.Context, username, password string, roles ...users.RoleType) (*LoginResult, error) {
	result, err := s.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if users.HasRole(result.Role, roles...) {
		return result, nil
	}

	if err := s.client.Store().ClearSession(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear session after role mismatch")
	}
	label := "Required"
	if len(roles) > 0 {
		label = roleLabel(roles[0])
	}
	s.logger.Warn().Str("role", string(result.Role)).Msg("login rejected for role")
	return nil, &LoginError{
		Message: fmt.Sprintf("Access denied. %s credentials required.", label),
		Status:  http.StatusForbidden,
		Err:     apperrors.ErrAccessDenied,
	}
}

// Logout clears the stored session.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.client.Store().ClearSession(ctx); err != nil {
		return apperrors.Wrapf(err, "Service.Logout")
	}
	if s.guard != nil {
		s.guard.Reset()
	}
	s.logger.Info().Msg("logged out")
	return nil
}

func (s *Service) post(ctx context.Context, url string, body LoginRequest) (*LoginResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.HTTPClient().Do(req)
	if err != nil {
		return nil, &LoginError{
			Message: apperrors.UserMessage(err),
			Err:     apperrors.Join(apperrors.ErrNetwork, err),
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxLoginResponse))
	if err != nil {
		return nil, &LoginError{
			Message: apperrors.UserMessage(err),
			Status:  resp.StatusCode,
			Err:     apperrors.Join(apperrors.ErrNetwork, err),
		}
	}

	isJSON := strings.Contains(resp.Header.Get("Content-Type"), "application/json")
	payload := &LoginResponse{}
	if isJSON {
		// A field of an unexpected type leaves the rest of the payload decoded.
		var typeErr *json.UnmarshalTypeError
		if err := json.Unmarshal(raw, payload); err != nil && !apperrors.As(err, &typeErr) {
			payload = &LoginResponse{}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := payload.FailureMessage()
		if !isJSON {
			message = strings.TrimSpace(string(raw))
		}
		if message == "" {
			message = msgInvalidCredentials
		}
		s.logger.Warn().Int("status", resp.StatusCode).Msg("login rejected")
		return nil, &LoginError{Message: message, Status: resp.StatusCode, Err: apperrors.ErrInvalidCredentials}
	}
	return payload, nil
}

// roleLabel renders LAB_TECHNICIAN as "Lab technician".
func roleLabel(role users.RoleType) string {
	r := strings.ToLower(strings.ReplaceAll(string(users.NormalizeRole(string(role))), "_", " "))
	if r == "" {
		return "Required"
	}
	return strings.ToUpper(r[:1]) + r[1:]
}

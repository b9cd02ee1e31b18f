package token

import (
	"errors"
	"strconv"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-agri-client/internal/errors"
	"github.com/jrsteele09/go-agri-client/internal/utils"
	"github.com/jrsteele09/go-agri-client/users"
)

// DefaultExpiryBuffer is subtracted from a token's exp claim so requests stop
// slightly before the server would start rejecting it.
const DefaultExpiryBuffer = 30 * time.Second

// SessionClaims are the identity fields decoded from an access token payload.
// They are never verified; the server remains the authority on validity.
type SessionClaims struct {
	Role         users.RoleType `json:"role,omitempty"`          // Normalised first authority
	EmployeeCode string         `json:"employee_code,omitempty"` // Field employee code
	EmployeeName string         `json:"employee_name,omitempty"` // Display name
	UserID       string         `json:"user_id,omitempty"`       // Backend user identifier
	UserEmail    string         `json:"user_email,omitempty"`    // Login name as typed by the user
	Subject      string         `json:"sub,omitempty"`           // Token subject
	ExpiresAt    time.Time      `json:"expires_at,omitempty"`    // exp claim, zero when absent
}

// DecodeClaims reads the payload segment of a JWT without checking its
// signature. Any structural problem is reported as ErrMalformedToken.
func DecodeClaims(raw string) (*SessionClaims, error) {
	mapClaims, err := parsePayload(raw)
	if err != nil {
		return nil, err
	}

	claims := &SessionClaims{
		Role:         users.NormalizeRole(firstAuthority(mapClaims)),
		EmployeeCode: stringClaim(mapClaims, "employeeCode"),
		EmployeeName: stringClaim(mapClaims, "employeeName"),
		UserID:       stringClaim(mapClaims, "userId"),
		Subject:      stringClaim(mapClaims, "sub"),
	}

	exp, err := mapClaims.GetExpirationTime()
	if err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

// ExpiresAt returns the exp claim of raw, or an error when the token cannot
// be decoded or carries no numeric exp.
func ExpiresAt(raw string) (time.Time, error) {
	mapClaims, err := parsePayload(raw)
	if err != nil {
		return time.Time{}, err
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, apperrors.Wrapf(apperrors.ErrMalformedToken, "missing exp claim")
	}
	return exp.Time, nil
}

// IsExpired reports whether raw should be treated as expired at now. Missing,
// malformed and exp-less tokens are expired.
func IsExpired(raw string, now time.Time, buffer time.Duration) bool {
	if strings.TrimSpace(raw) == "" {
		return true
	}

	exp, err := ExpiresAt(raw)
	if err != nil {
		return true
	}
	return !now.Before(exp.Add(-buffer))
}

func parsePayload(raw string) (jwtlib.MapClaims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, apperrors.ErrTokenNotFound
	}

	mapClaims := jwtlib.MapClaims{}
	tok, _, err := jwtlib.NewParser().ParseUnverified(raw, mapClaims)
	if err != nil {
		// The alg header only matters for verification, which never happens here.
		if tok == nil || !errors.Is(err, jwtlib.ErrTokenUnverifiable) {
			return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "%s", err.Error())
		}
	}
	return mapClaims, nil
}

func firstAuthority(claims jwtlib.MapClaims) string {
	for _, name := range []string{"authorities", "roles", "role"} {
		switch v := claims[name].(type) {
		case string:
			if v != "" {
				return v
			}
		case []any:
			if roles := utils.ToStringSlice(v); len(roles) > 0 {
				return roles[0]
			}
		}
	}
	return ""
}

func stringClaim(claims jwtlib.MapClaims, name string) string {
	switch v := claims[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

package session

import "github.com/jrsteele09/go-agri-client/internal/utils"

// LoginRequest is the body posted to the /jwt/login endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents the JSON returned by the /jwt/login endpoint.
// Deployments disagree on where the token lives, so every known location is
// decoded and GetToken picks the first one present.
type LoginResponse struct {
	// Token is the access token on current deployments.
	// Example: {"token": "eyJhbGciOiJIUzI1NiJ9..."}
	Token *string `json:"token,omitempty"`

	// AccessToken is used by older deployments instead of Token.
	AccessToken *string `json:"accessToken,omitempty"`

	// Data wraps the token when the endpoint uses the standard API envelope.
	// Example: {"data": {"token": "..."}}
	Data *LoginResponseData `json:"data,omitempty"`

	// Message and Error carry the failure reason on a non 2xx answer.
	Message *string `json:"message,omitempty"`
	Error   *string `json:"error,omitempty"`
}

type LoginResponseData struct {
	Token       *string `json:"token,omitempty"`
	AccessToken *string `json:"accessToken,omitempty"`
}

// GetToken returns the first non empty token location, or "".
func (r *LoginResponse) GetToken() string {
	if r == nil {
		return ""
	}
	candidates := []*string{r.Token, r.AccessToken}
	if r.Data != nil {
		candidates = append(candidates, r.Data.Token, r.Data.AccessToken)
	}
	for _, c := range candidates {
		if v := utils.Value(c); v != "" {
			return v
		}
	}
	return ""
}

// FailureMessage returns message, then error, then "".
func (r *LoginResponse) FailureMessage() string {
	if r == nil {
		return ""
	}
	if m := utils.Value(r.Message); m != "" {
		return m
	}
	return utils.Value(r.Error)
}

package apiclient_test

import (
	"context"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-agri-client/apiclient"
	"github.com/jrsteele09/go-agri-client/token"
	tokenfakerepo "github.com/jrsteele09/go-agri-client/token/repofake"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()
	s, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub":         "emp042",
		"authorities": []string{"ROLE_EMPLOYEE"},
		"exp":         time.Now().Add(expiresIn).Unix(),
	}).SignedString([]byte("1234"))
	require.NoError(t, err)
	return s
}

func newStore(t *testing.T, raw string) *token.Store {
	t.Helper()
	store := token.NewStore(tokenfakerepo.NewFakeSessionRepo())
	if raw != "" {
		require.NoError(t, store.SetSession(context.Background(), raw, token.SessionClaims{}))
	}
	return store
}

func TestBuildHeaders(t *testing.T) {
	ctx := context.Background()
	raw := mintToken(t, time.Hour)
	c, err := apiclient.New("http://api.test", newStore(t, raw))
	require.NoError(t, err)

	t.Run("json request", func(t *testing.T) {
		h := c.BuildHeaders(ctx, false)
		require.Equal(t, map[string]string{
			"Authorization": "Bearer " + raw,
			"Content-Type":  "application/json",
		}, h)
	})

	t.Run("form data omits content type", func(t *testing.T) {
		h := c.BuildHeaders(ctx, true)
		require.Equal(t, "Bearer "+raw, h["Authorization"])
		_, ok := h["Content-Type"]
		require.False(t, ok)
	})

	t.Run("idempotent", func(t *testing.T) {
		require.Equal(t, c.BuildHeaders(ctx, false), c.BuildHeaders(ctx, false))
		require.Equal(t, c.BuildHeaders(ctx, true), c.BuildHeaders(ctx, true))
	})
}

func TestBuildHeaders_NoToken(t *testing.T) {
	c, err := apiclient.New("http://api.test", newStore(t, ""))
	require.NoError(t, err)

	require.Equal(t, map[string]string{"Content-Type": "application/json"}, c.BuildHeaders(context.Background(), false))
	require.Empty(t, c.BuildHeaders(context.Background(), true))
}

func TestNew_Validation(t *testing.T) {
	_, err := apiclient.New("", newStore(t, ""))
	require.Error(t, err)

	_, err = apiclient.New("http://api.test", nil)
	require.Error(t, err)
}

func TestClient_URL(t *testing.T) {
	c, err := apiclient.New("http://api.test/", newStore(t, ""))
	require.NoError(t, err)

	require.Equal(t, "http://api.test/api/v1/employeeFarmerSurveys/7", c.URL("/api/v1/employeeFarmerSurveys/7"))
	require.Equal(t, "http://api.test/jwt/login", c.URL("jwt/login"))
	require.Equal(t, "https://other.test/x", c.URL("https://other.test/x"))
}

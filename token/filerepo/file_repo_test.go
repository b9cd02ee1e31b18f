package filerepo_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-agri-client/internal/errors"
	"github.com/jrsteele09/go-agri-client/token"
	"github.com/jrsteele09/go-agri-client/token/filerepo"
	"github.com/jrsteele09/go-agri-client/users"
	"github.com/stretchr/testify/require"
)

func testSession() *token.Session {
	return &token.Session{
		AccessToken: "header.payload.signature",
		Claims: token.SessionClaims{
			Role:         users.RoleEmployee,
			EmployeeCode: "EMP-042",
			EmployeeName: "Asha Patil",
		},
		StoredAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRepo_PlainRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	repo, err := filerepo.New(path)
	require.NoError(t, err)

	_, err = repo.Load(ctx)
	require.ErrorIs(t, err, apperrors.ErrTokenNotFound)

	require.NoError(t, repo.Save(ctx, testSession()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, testSession(), got)

	require.NoError(t, repo.Clear(ctx))
	require.NoError(t, repo.Clear(ctx))
	_, err = repo.Load(ctx)
	require.ErrorIs(t, err, apperrors.ErrTokenNotFound)
}

func TestRepo_EncryptedRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	repo, err := filerepo.New(path, filerepo.WithPassphrase("correct horse"))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, testSession()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.False(t, strings.Contains(string(raw), "header.payload.signature"))
	require.False(t, strings.Contains(string(raw), "EMP-042"))

	// A fresh repo with the same passphrase reads the file back.
	reopened, err := filerepo.New(path, filerepo.WithPassphrase("correct horse"))
	require.NoError(t, err)
	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, testSession(), got)
}

func TestRepo_WrongPassphrase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	repo, err := filerepo.New(path, filerepo.WithPassphrase("one"))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, testSession()))

	other, err := filerepo.New(path, filerepo.WithPassphrase("two"))
	require.NoError(t, err)
	_, err = other.Load(ctx)
	require.ErrorIs(t, err, apperrors.ErrMalformedToken)

	plain, err := filerepo.New(path)
	require.NoError(t, err)
	_, err = plain.Load(ctx)
	require.Error(t, err)
}

func TestRepo_CorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	repo, err := filerepo.New(path)
	require.NoError(t, err)
	_, err = repo.Load(ctx)
	require.ErrorIs(t, err, apperrors.ErrMalformedToken)
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := filerepo.New("")
	require.Error(t, err)
}

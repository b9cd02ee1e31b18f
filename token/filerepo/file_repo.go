// Package filerepo persists the session to a single file. When a passphrase
// is configured the file is sealed with XChaCha20-Poly1305 under a key
// derived by scrypt; otherwise it is plain JSON readable only by the owner.
package filerepo

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/jrsteele09/go-agri-client/internal/errors"
	"github.com/jrsteele09/go-agri-client/token"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

const (
	fileVersion = 1
	saltSize    = 16

	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

var _ token.Repo = (*Repo)(nil)

// envelope is the on-disk format. Exactly one of Session or Sealed is set.
type envelope struct {
	Version int            `json:"version"`
	Session *token.Session `json:"session,omitempty"`
	Salt    []byte         `json:"salt,omitempty"`
	Nonce   []byte         `json:"nonce,omitempty"`
	Sealed  []byte         `json:"sealed,omitempty"`
}

type Repo struct {
	path       string
	passphrase []byte
	mu         sync.Mutex

	// last derived key, reused while the salt on disk is unchanged
	salt []byte
	key  []byte
}

type Option func(*Repo)

// WithPassphrase enables encryption at rest.
func WithPassphrase(passphrase string) Option {
	return func(r *Repo) {
		if passphrase != "" {
			r.passphrase = []byte(passphrase)
		}
	}
}

func New(path string, options ...Option) (*Repo, error) {
	if path == "" {
		return nil, errors.New("filerepo: path is required")
	}

	r := &Repo{path: path}
	for _, opt := range options {
		opt(r)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("filerepo: create folder: %w", err)
	}
	return r, nil
}

func (r *Repo) Load(_ context.Context) (*token.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, fmt.Errorf("filerepo: read: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "filerepo: decode")
	}

	if env.Sealed == nil {
		if env.Session == nil {
			return nil, apperrors.ErrTokenNotFound
		}
		return env.Session, nil
	}

	if r.passphrase == nil {
		return nil, errors.New("filerepo: session file is encrypted but no passphrase is configured")
	}

	key, err := r.keyFor(env.Salt)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("filerepo: cipher: %w", err)
	}
	plain, err := aead.Open(nil, env.Nonce, env.Sealed, nil)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "filerepo: open")
	}

	var session token.Session
	if err := json.Unmarshal(plain, &session); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "filerepo: decode session")
	}
	return &session, nil
}

func (r *Repo) Save(_ context.Context, session *token.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	env := envelope{Version: fileVersion}
	if r.passphrase == nil {
		env.Session = session
	} else {
		sealed, err := r.seal(session)
		if err != nil {
			return err
		}
		env = *sealed
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("filerepo: encode: %w", err)
	}
	return r.writeAtomic(data)
}

func (r *Repo) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("filerepo: remove: %w", err)
	}
	return nil
}

func (r *Repo) seal(session *token.Session) (*envelope, error) {
	plain, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("filerepo: encode session: %w", err)
	}

	salt := r.salt
	if salt == nil {
		salt = make([]byte, saltSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("filerepo: salt: %w", err)
		}
	}
	key, err := r.keyFor(salt)
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("filerepo: cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("filerepo: nonce: %w", err)
	}

	return &envelope{
		Version: fileVersion,
		Salt:    salt,
		Nonce:   nonce,
		Sealed:  aead.Seal(nil, nonce, plain, nil),
	}, nil
}

// keyFor must be called with mu held.
func (r *Repo) keyFor(salt []byte) ([]byte, error) {
	if r.key != nil && bytes.Equal(r.salt, salt) {
		return r.key, nil
	}

	key, err := scrypt.Key(r.passphrase, salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("filerepo: derive key: %w", err)
	}
	r.salt = append([]byte(nil), salt...)
	r.key = key
	return key, nil
}

// writeAtomic replaces the session file via rename so readers never observe
// a half written session.
func (r *Repo) writeAtomic(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".session-*")
	if err != nil {
		return fmt.Errorf("filerepo: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("filerepo: chmod: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("filerepo: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("filerepo: close: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("filerepo: rename: %w", err)
	}
	return nil
}

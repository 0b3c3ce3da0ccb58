package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/shoenig/go-conceal"
)

// CredentialStore persists the opaque access token between process runs.
// Load reports (token, present, error); a missing credential is not an
// error. Implementations must tolerate Clear when nothing is stored.
type CredentialStore interface {
	Load() (string, bool, error)
	Save(token string) error
	Clear() error
}

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	SavedAt     time.Time `json:"saved_at"`
}

// FileStore keeps the token in a JSON file under the user config
// directory, readable only by the owning user.
type FileStore struct {
	path string
}

// NewFileStore places the token file under os.UserConfigDir for the given
// application name, e.g. ~/.config/taskboard/token.json.
func NewFileStore(app string) (*FileStore, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("locate config dir: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, app, "token.json")}, nil
}

// NewFileStoreAt uses an explicit file path. Intended for tests and for
// callers that manage their own config layout.
func NewFileStoreAt(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (string, bool, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read token file: %w", err)
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		// A corrupt file is equivalent to no credential; the caller will
		// fall back to the login flow and overwrite it.
		return "", false, nil
	}
	if tf.AccessToken == "" {
		return "", false, nil
	}
	return tf.AccessToken, true, nil
}

func (s *FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	b, err := json.Marshal(tokenFile{AccessToken: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode token file: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// MemStore holds the token in memory only, concealed so it does not show
// up in accidental fmt/log output. Useful for tests and for environments
// without a writable config dir.
type MemStore struct {
	tok *conceal.Text
}

func NewMemStore() *MemStore { return &MemStore{} }

func (s *MemStore) Load() (string, bool, error) {
	if s.tok == nil {
		return "", false, nil
	}
	return s.tok.Unveil(), true, nil
}

func (s *MemStore) Save(token string) error {
	s.tok = conceal.New(token)
	return nil
}

func (s *MemStore) Clear() error {
	s.tok = nil
	return nil
}

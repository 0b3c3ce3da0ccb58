package session

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/shoenig/test/must"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskboard", "token.json")
	s := NewFileStoreAt(path)

	_, ok, err := s.Load()
	must.NoError(t, err)
	must.False(t, ok)

	must.NoError(t, s.Save("tok-A"))
	tok, ok, err := s.Load()
	must.NoError(t, err)
	must.True(t, ok)
	must.Eq(t, "tok-A", tok)

	must.NoError(t, s.Save("tok-B"))
	tok, _, _ = s.Load()
	must.Eq(t, "tok-B", tok)

	must.NoError(t, s.Clear())
	_, ok, err = s.Load()
	must.NoError(t, err)
	must.False(t, ok)
}

func TestFileStore_ClearWithoutFile(t *testing.T) {
	s := NewFileStoreAt(filepath.Join(t.TempDir(), "token.json"))
	must.NoError(t, s.Clear())
	must.NoError(t, s.Clear())
}

func TestFileStore_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}
	path := filepath.Join(t.TempDir(), "token.json")
	s := NewFileStoreAt(path)
	must.NoError(t, s.Save("tok-A"))

	info, err := os.Stat(path)
	must.NoError(t, err)
	must.Eq(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_CorruptFileTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	must.NoError(t, os.WriteFile(path, []byte("not json{"), 0o600))

	s := NewFileStoreAt(path)
	_, ok, err := s.Load()
	must.NoError(t, err)
	must.False(t, ok)
}

func TestMemStore_RoundTrip(t *testing.T) {
	s := NewMemStore()

	_, ok, err := s.Load()
	must.NoError(t, err)
	must.False(t, ok)

	must.NoError(t, s.Save("tok-A"))
	tok, ok, err := s.Load()
	must.NoError(t, err)
	must.True(t, ok)
	must.Eq(t, "tok-A", tok)

	must.NoError(t, s.Clear())
	_, ok, _ = s.Load()
	must.False(t, ok)
}

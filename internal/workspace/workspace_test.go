package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
)

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestManager_DerivePath_Client001(t *testing.T) {
	mgr := NewManager("", 0)

	path, err := mgr.DerivePath("client_001")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("clients", sha256Hex("client_001")[:16]), path)
	assert.Equal(t, filepath.Join("clients", "c18a9b5a35e73b07"), path)
}

func TestManager_Resolve_Deterministic(t *testing.T) {
	mgr := NewManager(t.TempDir(), DefaultDigestLength)

	first, err := mgr.Resolve("client_001")
	require.NoError(t, err)
	second, err := mgr.Resolve("client_001")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := mgr.Resolve("client_002")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)

	info, err := os.Stat(first)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestManager_Resolve_PreservesContents(t *testing.T) {
	mgr := NewManager(t.TempDir(), DefaultDigestLength)

	path, err := mgr.Resolve("acme")
	require.NoError(t, err)

	marker := filepath.Join(path, "index.html")
	require.NoError(t, os.WriteFile(marker, []byte("<html></html>"), 0o600))

	again, err := mgr.Resolve("acme")
	require.NoError(t, err)
	assert.Equal(t, path, again)

	data, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))
}

func TestManager_Resolve_EmptyClientID(t *testing.T) {
	mgr := NewManager(t.TempDir(), DefaultDigestLength)

	for _, id := range []string{"", "   ", "\t\n"} {
		_, err := mgr.Resolve(id)
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategoryValidation), "id %q: %v", id, err)
	}
	assert.Empty(t, mgr.Workspaces())
}

func TestManager_Resolve_StorageError(t *testing.T) {
	// A regular file where the root directory should be makes MkdirAll fail
	// regardless of the user running the test.
	root := filepath.Join(t.TempDir(), "clients")
	require.NoError(t, os.WriteFile(root, []byte("not a directory"), 0o600))

	mgr := NewManager(root, DefaultDigestLength)
	_, err := mgr.Resolve("client_001")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryStorage), "got %v", err)

	_, ok := mgr.Lookup("client_001")
	assert.False(t, ok, "failed resolutions must not be recorded")
}

func TestManager_Resolve_HostileIdentifiers(t *testing.T) {
	root := t.TempDir()
	mgr := NewManager(root, DefaultDigestLength)

	for _, id := range []string{"../../etc/passwd", "a/b/c", "C:\\windows", string(make([]byte, 4096))} {
		path, err := mgr.Resolve(id)
		require.NoError(t, err)
		assert.Equal(t, root, filepath.Dir(path), "workspace for %q escaped the root", id)
		assert.Len(t, filepath.Base(path), DefaultDigestLength)
	}
}

func TestManager_DigestLength(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 16},
		{-3, 16},
		{8, 16},
		{32, 32},
		{64, 64},
		{128, 64},
	}
	for _, tt := range tests {
		mgr := NewManager("clients", tt.in)
		name, err := mgr.DirName("client_001")
		require.NoError(t, err)
		assert.Equal(t, sha256Hex("client_001")[:tt.want], name, "digest length %d", tt.in)
	}
}

func TestManager_Resolve_Concurrent(t *testing.T) {
	mgr := NewManager(t.TempDir(), DefaultDigestLength)

	const workers = 16
	paths := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			paths[i], errs[i] = mgr.Resolve("same-client")
		}()
	}
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		assert.Equal(t, paths[0], paths[i])
	}
	assert.Len(t, mgr.Workspaces(), 1)
}

func TestManager_Workspaces_Sorted(t *testing.T) {
	mgr := NewManager(t.TempDir(), DefaultDigestLength)
	for _, id := range []string{"zeta", "alpha", "mid"} {
		_, err := mgr.Resolve(id)
		require.NoError(t, err)
	}

	entries := mgr.Workspaces()
	require.Len(t, entries, 3)
	assert.Equal(t, "alpha", entries[0].ClientID)
	assert.Equal(t, "mid", entries[1].ClientID)
	assert.Equal(t, "zeta", entries[2].ClientID)

	path, ok := mgr.Lookup("mid")
	assert.True(t, ok)
	assert.Equal(t, entries[1].Path, path)
}

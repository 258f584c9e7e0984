package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
	"git.home.luguber.info/inful/webforge/internal/logfields"
)

const (
	// DefaultRoot is the parent directory of all client workspaces.
	DefaultRoot = "clients"

	// DefaultDigestLength is the number of hex characters used for directory names.
	DefaultDigestLength = 16

	// MinDigestLength and MaxDigestLength bound the configurable digest prefix.
	MinDigestLength = 16
	MaxDigestLength = sha256.Size * 2

	dirPerm = 0o750
)

// ErrEmptyClientID is returned when a client identifier is empty or blank.
var ErrEmptyClientID = errors.ValidationError("client id must not be empty").Build()

// Entry is one provisioned workspace.
type Entry struct {
	ClientID string `json:"client_id"`
	Path     string `json:"path"`
}

// Manager derives and provisions client workspaces under a root directory.
type Manager struct {
	root      string
	digestLen int

	mu       sync.RWMutex
	resolved map[string]string
}

// NewManager creates a manager rooted at root. An empty root falls back to
// DefaultRoot; digestLen is clamped to [MinDigestLength, MaxDigestLength].
func NewManager(root string, digestLen int) *Manager {
	if strings.TrimSpace(root) == "" {
		root = DefaultRoot
	}
	switch {
	case digestLen <= 0:
		digestLen = DefaultDigestLength
	case digestLen < MinDigestLength:
		digestLen = MinDigestLength
	case digestLen > MaxDigestLength:
		digestLen = MaxDigestLength
	}
	return &Manager{
		root:      root,
		digestLen: digestLen,
		resolved:  make(map[string]string),
	}
}

// Root returns the directory all workspaces live under.
func (m *Manager) Root() string {
	return m.root
}

// DirName returns the hex directory name for clientID.
func (m *Manager) DirName(clientID string) (string, error) {
	if strings.TrimSpace(clientID) == "" {
		return "", ErrEmptyClientID
	}
	sum := sha256.Sum256([]byte(clientID))
	return hex.EncodeToString(sum[:])[:m.digestLen], nil
}

// DerivePath returns the workspace path for clientID without touching disk.
func (m *Manager) DerivePath(clientID string) (string, error) {
	name, err := m.DirName(clientID)
	if err != nil {
		return "", err
	}
	return filepath.Join(m.root, name), nil
}

// Resolve returns the workspace path for clientID, creating the directory and
// any missing parents first. Existing contents are left untouched.
func (m *Manager) Resolve(clientID string) (string, error) {
	path, err := m.DerivePath(clientID)
	if err != nil {
		return "", err
	}

	if err := ensureDir(path); err != nil {
		slog.Error("Failed to create client workspace",
			logfields.ClientTag(clientID), logfields.Path(path), logfields.Error(err))
		return "", errors.StorageError("failed to create client workspace").
			WithCause(err).
			WithContext("path", path).
			Build()
	}

	m.mu.Lock()
	_, seen := m.resolved[clientID]
	m.resolved[clientID] = path
	m.mu.Unlock()

	if !seen {
		slog.Info("Workspace ready", logfields.ClientTag(clientID), logfields.Workspace(path))
	}
	return path, nil
}

// Lookup returns the path previously resolved for clientID in this process.
func (m *Manager) Lookup(clientID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path, ok := m.resolved[clientID]
	return path, ok
}

// Workspaces returns the workspaces resolved by this manager, sorted by client id.
func (m *Manager) Workspaces() []Entry {
	m.mu.RLock()
	entries := make([]Entry, 0, len(m.resolved))
	for id, path := range m.resolved {
		entries = append(entries, Entry{ClientID: id, Path: path})
	}
	m.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].ClientID < entries[j].ClientID })
	return entries
}

// ensureDir creates path. A directory that appears concurrently counts as success.
func ensureDir(path string) error {
	err := os.MkdirAll(path, dirPerm)
	if err == nil {
		return nil
	}
	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		return nil
	}
	return err
}

package site

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
)

var fixedTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestGenerator() *HTMLGenerator {
	g := NewHTMLGenerator("", "")
	g.now = func() time.Time { return fixedTime }
	return g
}

func TestHTMLGenerator_Generate(t *testing.T) {
	ws := t.TempDir()
	g := newTestGenerator()

	art, err := g.Generate(t.Context(), Request{
		ClientID:       "client_001",
		Specifications: "Site vitrine pour restaurant",
		Workspace:      ws,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws, DefaultFilename), art.Path)
	assert.Equal(t, fixedTime, art.GeneratedAt)

	data, err := os.ReadFile(art.Path)
	require.NoError(t, err)
	assert.Len(t, data, art.Bytes)
	assert.Contains(t, string(data), "<p>Site vitrine pour restaurant</p>")

	sum, err := Inspect(art.Path)
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, sum.Title)
	assert.Equal(t, "Project for client_001", sum.Heading)
	assert.Equal(t, "2026-03-14T09:30:00Z", sum.Generated)

	entries, err := os.ReadDir(ws)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
}

func TestHTMLGenerator_Overwrites(t *testing.T) {
	ws := t.TempDir()
	g := newTestGenerator()

	_, err := g.Generate(t.Context(), Request{ClientID: "c", Specifications: "first", Workspace: ws})
	require.NoError(t, err)
	art, err := g.Generate(t.Context(), Request{ClientID: "c", Specifications: "second", Workspace: ws})
	require.NoError(t, err)

	data, err := os.ReadFile(art.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "second")
	assert.NotContains(t, string(data), "first")
}

func TestHTMLGenerator_RenderEscaping(t *testing.T) {
	g := newTestGenerator()

	out, err := g.Render(`<script>alert(1)</script>`, "**bold** and <script>alert(2)</script>", fixedTime)
	require.NoError(t, err)
	page := string(out)

	assert.Contains(t, page, "<strong>bold</strong>")
	assert.NotContains(t, page, "<script>")
	assert.Contains(t, page, "Project for &lt;script&gt;")
}

func TestHTMLGenerator_CustomSettings(t *testing.T) {
	ws := t.TempDir()
	g := NewHTMLGenerator("Bistro", "home.html")

	art, err := g.Generate(t.Context(), Request{ClientID: "c", Workspace: ws})
	require.NoError(t, err)
	assert.Equal(t, "home.html", filepath.Base(art.Path))
	assert.Equal(t, "home.html", g.Filename())

	sum, err := Inspect(art.Path)
	require.NoError(t, err)
	assert.Equal(t, "Bistro", sum.Title)
}

func TestHTMLGenerator_Errors(t *testing.T) {
	g := newTestGenerator()

	_, err := g.Generate(t.Context(), Request{ClientID: "c"})
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	_, err = g.Generate(t.Context(), Request{ClientID: "c", Workspace: filepath.Join(t.TempDir(), "missing")})
	assert.True(t, errors.HasCategory(err, errors.CategoryGeneration))
	assert.True(t, errors.CausedBy(err, errors.CategoryStorage), "write failures keep the storage cause")
	assert.Equal(t, http.StatusInternalServerError, errors.NewHTTPErrorAdapter(nil).StatusCodeFor(err))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = g.Generate(ctx, Request{ClientID: "c", Workspace: t.TempDir()})
	assert.True(t, errors.HasCategory(err, errors.CategoryGeneration))
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()

	_, err := Inspect(filepath.Join(dir, "nope.html"))
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))

	p := filepath.Join(dir, "bare.html")
	require.NoError(t, os.WriteFile(p, []byte("<p>no   title <b>here</b></p><h1>  Hello\n  <em>world</em> </h1><h1>second</h1>"), 0o600))
	sum, err := Inspect(p)
	require.NoError(t, err)
	assert.Empty(t, sum.Title)
	assert.Equal(t, "Hello world", sum.Heading)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out.txt")

	require.NoError(t, WriteFileAtomic(p, []byte("one"), 0o600))
	require.NoError(t, WriteFileAtomic(p, []byte("two"), 0o600))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	err = WriteFileAtomic(filepath.Join(dir, "missing", "out.txt"), []byte("x"), 0o600)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".webforge-tmp-"), e.Name())
	}
}

func TestIsPlainFilename(t *testing.T) {
	for _, name := range []string{"index.html", "home.htm", ".hidden.html"} {
		assert.True(t, IsPlainFilename(name), name)
	}
	for _, name := range []string{"", "  ", ".", "..", "../index.html", "pages/index.html", `a\b.html`} {
		assert.False(t, IsPlainFilename(name), name)
	}

	g := NewHTMLGenerator("", "..")
	assert.Equal(t, DefaultFilename, g.Filename())

	dir := t.TempDir()
	artifact, err := g.Generate(t.Context(), Request{ClientID: "c", Workspace: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultFilename), artifact.Path)
}

package site

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
	"git.home.luguber.info/inful/webforge/internal/logfields"
)

const (
	// DefaultTitle is the <title> of generated pages.
	DefaultTitle = "Site generated by WebForge AI"
	// DefaultFilename is the name of the page inside a workspace.
	DefaultFilename = "index.html"

	filePerm = 0o640
)

// Request describes one page to generate.
type Request struct {
	ClientID       string
	Specifications string
	// Workspace is the already provisioned client directory.
	Workspace string
}

// Artifact is the result of a successful generation.
type Artifact struct {
	Path        string    `json:"path"`
	Bytes       int       `json:"bytes"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Generator produces the deliverable for a client into its workspace.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Artifact, error)
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
</head>
<body>
    <h1>Project for {{.ClientID}}</h1>
    <section class="specifications">
{{.Specifications}}    </section>
    <p>Generated <time datetime="{{.Timestamp}}">{{.Timestamp}}</time></p>
</body>
</html>
`))

type pageData struct {
	Title          string
	ClientID       string
	Specifications template.HTML
	Timestamp      string
}

// HTMLGenerator writes a single static HTML page per client.
type HTMLGenerator struct {
	title    string
	filename string
	md       goldmark.Markdown
	now      func() time.Time
}

// NewHTMLGenerator returns a generator. Empty arguments fall back to
// DefaultTitle and DefaultFilename.
func NewHTMLGenerator(title, filename string) *HTMLGenerator {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	if !IsPlainFilename(filename) {
		filename = DefaultFilename
	}
	return &HTMLGenerator{
		title:    title,
		filename: filename,
		md:       goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough)),
		now:      time.Now,
	}
}

// IsPlainFilename reports whether name can be joined to a workspace path
// without leaving it: non-blank, no separators, not "." or "..".
func IsPlainFilename(name string) bool {
	if strings.TrimSpace(name) == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

// Filename returns the page name written into each workspace.
func (g *HTMLGenerator) Filename() string {
	return g.filename
}

// Render returns the page bytes without touching disk.
func (g *HTMLGenerator) Render(clientID, specifications string, at time.Time) ([]byte, error) {
	var specHTML bytes.Buffer
	if err := g.md.Convert([]byte(specifications), &specHTML); err != nil {
		return nil, errors.GenerationError("failed to render specifications").WithCause(err).Build()
	}

	var out bytes.Buffer
	err := pageTemplate.Execute(&out, pageData{
		Title:    g.title,
		ClientID: clientID,
		Specifications: template.HTML(specHTML.String()), //nolint:gosec // goldmark omits raw HTML without html.WithUnsafe
		Timestamp:      at.Format(time.RFC3339),
	})
	if err != nil {
		return nil, errors.GenerationError("failed to execute page template").WithCause(err).Build()
	}
	return out.Bytes(), nil
}

// Generate renders the page and stores it in req.Workspace.
func (g *HTMLGenerator) Generate(ctx context.Context, req Request) (*Artifact, error) {
	if req.Workspace == "" {
		return nil, errors.ValidationError("workspace is required").Build()
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.GenerationError("generation cancelled").WithCause(err).Build()
	}

	at := g.now()
	data, err := g.Render(req.ClientID, req.Specifications, at)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(req.Workspace, g.filename)
	if err := WriteFileAtomic(path, data, filePerm); err != nil {
		cause := errors.StorageError("page write failed").
			WithCause(err).
			WithContext("path", path).
			Build()
		return nil, errors.GenerationError("failed to write page").
			WithCause(cause).
			WithContext("path", path).
			Build()
	}

	slog.Debug("Page written", logfields.Path(path), slog.Int("bytes", len(data)))
	return &Artifact{Path: path, Bytes: len(data), GeneratedAt: at}, nil
}

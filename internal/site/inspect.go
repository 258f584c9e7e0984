package site

import (
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
)

// Summary is what Inspect extracts from a generated page.
type Summary struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Heading string `json:"heading"`
	// Generated is the datetime attribute of the first <time> element.
	Generated string `json:"generated,omitempty"`
}

// Inspect parses the page at path and returns its title, first h1 and
// generation timestamp.
func Inspect(path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundError("page not found").WithContext("path", path).Build()
		}
		return nil, errors.StorageError("failed to open page").WithCause(err).WithContext("path", path).Build()
	}
	defer func() { _ = f.Close() }()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, errors.StorageError("failed to parse page").WithCause(err).WithContext("path", path).Build()
	}

	s := &Summary{Path: path}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Title:
				if s.Title == "" {
					s.Title = textContent(n)
				}
			case atom.H1:
				if s.Heading == "" {
					s.Heading = textContent(n)
				}
			case atom.Time:
				if s.Generated == "" {
					s.Generated = attr(n, "datetime")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return s, nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

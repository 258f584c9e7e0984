// Package site renders the static page delivered into a client workspace.
//
// The page is produced from an html/template skeleton. Client specifications
// are treated as Markdown and rendered with goldmark; raw HTML in them is
// dropped. Files are written atomically so a concurrent reader never observes
// a half-written page.
package site

// Package render converts draft text to HTML for preview.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer turns Markdown drafts into HTML. Single line breaks are kept so
// the greeting, body and signature lines render as written.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a Renderer. Raw HTML inside a draft is escaped.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// HTML renders draft as an HTML fragment.
func (r *Renderer) HTML(draft string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(draft), &buf); err != nil {
		return "", fmt.Errorf("render draft: %w", err)
	}
	return buf.String(), nil
}

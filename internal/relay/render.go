// internal/relay/render.go
package relay

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer converts completion replies from markdown to HTML. Raw HTML in
// the input is escaped by default, so replies are safe to inject into the
// chat panel.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a GFM-flavored markdown renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// HTML renders markdown source to HTML.
func (r *Renderer) HTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

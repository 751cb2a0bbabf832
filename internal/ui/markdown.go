package ui

import (
	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders content for the terminal. Width 0 keeps glamour's
// default wrapping. On any renderer error the content is returned as is.
func RenderMarkdown(content string, width int) string {
	options := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		options = append(options, glamour.WithWordWrap(width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

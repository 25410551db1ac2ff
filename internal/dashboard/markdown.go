package dashboard

import (
	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders markdown through glamour using the theme's
// style. Any rendering failure falls back to the raw text, so callers
// always get something printable.
func RenderMarkdown(content string, theme Theme) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if content == "" {
		return content
	}

	var renderer *glamour.TermRenderer
	var err error
	if theme.IsDark {
		renderer, err = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
	} else {
		renderer, err = glamour.NewTermRenderer(
			glamour.WithStylePath("light"),
			glamour.WithWordWrap(80),
		)
	}
	if err != nil || renderer == nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/lectify/lectify/lecture"
)

// renderCodeBlock renders one code block through glamour so the overlay gets
// the same syntax highlighting a rendered document would.
func renderCodeBlock(block lecture.CodeBlock, width int, style string) (string, error) {
	if width < 20 {
		width = 20
	}

	opts := []glamour.TermRendererOption{
		glamour.WithWordWrap(width),
	}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStylePath(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("unable to create code renderer: %w", err)
	}

	source := strings.TrimRight(block.Source, "\n")
	md := fmt.Sprintf("```%s\n%s\n```", block.Language, source)
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("unable to render code block: %w", err)
	}
	return strings.Trim(out, "\n"), nil
}

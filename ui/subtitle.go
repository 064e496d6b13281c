package ui

import (
	"regexp"
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

var subtitleWordRe = regexp.MustCompile(`\S+`)

// renderSubtitle lays out one chunk's text with the spoken word marked and
// the words already behind it dimmed. wordIdx -1 renders with no highlight.
// Styling happens before wrapping; reflow's wrapper is ANSI-aware so the
// escape sequences don't distort line measurement.
func renderSubtitle(text string, wordIdx int, width int, st styles) string {
	if width < 10 {
		width = 10
	}

	rendered := text
	if wordIdx >= 0 {
		locs := subtitleWordRe.FindAllStringIndex(text, -1)
		if wordIdx < len(locs) {
			var b strings.Builder
			prev := 0
			for i, loc := range locs {
				if i > wordIdx {
					break
				}
				b.WriteString(text[prev:loc[0]])
				if i < wordIdx {
					b.WriteString(st.spoken.Render(text[loc[0]:loc[1]]))
				} else {
					b.WriteString(st.word.Render(text[loc[0]:loc[1]]))
				}
				prev = loc[1]
			}
			b.WriteString(text[prev:])
			rendered = b.String()
		}
	}

	return wordwrap.String(rendered, width)
}

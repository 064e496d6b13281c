package tts

// highlighter projects word positions onto the subtitle view. At most one
// word is highlighted at any time, and highlighting is suppressed while a
// code block covers the subtitle area.
type highlighter struct {
	lastIndex  int
	suppressed bool
	hooks      Hooks
}

func newHighlighter(hooks Hooks) *highlighter {
	return &highlighter{lastIndex: -1, hooks: hooks}
}

// highlight marks the word at idx within the chunk. Out-of-range indexes and
// repeats of the current index are no-ops. While suppressed, position
// tracking continues but no visual highlight is emitted.
func (h *highlighter) highlight(chunk Chunk, idx int) {
	if idx < 0 || idx >= len(chunk.Words) {
		return
	}
	if idx == h.lastIndex {
		return
	}
	if h.suppressed {
		return
	}
	h.lastIndex = idx
	h.hooks.wordHighlighted(idx)
}

// suppress toggles highlight suppression. Entering suppression clears any
// visible highlight so nothing flashes behind the code overlay.
func (h *highlighter) suppress(on bool) {
	if on && !h.suppressed {
		h.clear()
	}
	h.suppressed = on
}

// clear removes the current highlight, if any.
func (h *highlighter) clear() {
	if h.lastIndex >= 0 {
		h.lastIndex = -1
		h.hooks.wordHighlighted(-1)
	}
}

// resetChunk forgets the per-chunk position so the next chunk starts fresh.
func (h *highlighter) resetChunk() {
	h.lastIndex = -1
}

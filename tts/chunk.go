package tts

import (
	"regexp"

	"github.com/lectify/lectify/lecture"
)

// Chunk is one bounded span of text submitted to the speech engine as a
// single synthesis request.
type Chunk struct {
	StartWord int // inclusive global word index
	EndWord   int // exclusive global word index
	Text      string
	Words     []string
	Offsets   []WordSpan // character span of each word within Text
	CodeIndex int        // source segment's code block, -1 for prose chunks
}

// WordSpan is the character span of one word within its chunk's text.
type WordSpan struct {
	Start int
	End   int
}

var wordRe = regexp.MustCompile(`\S+`)

// BuildChunks regroups segments into synthesis chunks. Only segments with
// non-empty speech text produce chunks; code segments are skipped here and
// tracked through code events instead. Chunks partition the word stream:
// chunk[i].EndWord == chunk[i+1].StartWord with no gaps or overlaps.
func BuildChunks(segments []lecture.Segment) []Chunk {
	var chunks []Chunk
	cumulative := 0

	for _, seg := range segments {
		if seg.Kind != lecture.SegmentText || seg.SpeechText == "" {
			continue
		}

		locs := wordRe.FindAllStringIndex(seg.SpeechText, -1)
		if len(locs) == 0 {
			continue
		}

		words := make([]string, len(locs))
		offsets := make([]WordSpan, len(locs))
		for i, loc := range locs {
			words[i] = seg.SpeechText[loc[0]:loc[1]]
			offsets[i] = WordSpan{Start: loc[0], End: loc[1]}
		}

		chunks = append(chunks, Chunk{
			StartWord: cumulative,
			EndWord:   cumulative + len(words),
			Text:      seg.SpeechText,
			Words:     words,
			Offsets:   offsets,
			CodeIndex: -1,
		})
		cumulative += len(words)
	}

	return chunks
}

// WordAt maps a boundary event's character index to a word index: the first
// word whose span ends past the character, or the last word when the index
// runs off the end. Returns -1 for an empty chunk.
func (c Chunk) WordAt(charIndex int) int {
	if len(c.Offsets) == 0 {
		return -1
	}
	for i, span := range c.Offsets {
		if charIndex < span.End {
			return i
		}
	}
	return len(c.Offsets) - 1
}

// TotalWords returns the number of words across all chunks.
func TotalWords(chunks []Chunk) int {
	if len(chunks) == 0 {
		return 0
	}
	return chunks[len(chunks)-1].EndWord
}

package lecture

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// ErrNoContent is returned when a lecture document yields no content items.
var ErrNoContent = errors.New("lecture contains no content")

// SegmentKind discriminates segments.
type SegmentKind int

const (
	// SegmentText is a speakable run of prose.
	SegmentText SegmentKind = iota
	// SegmentCode marks the point where a code block is revealed.
	SegmentCode
)

// Segment is the atomic unit of segmented content: either speakable text or
// a code-block placeholder.
type Segment struct {
	Kind         SegmentKind
	SubtitleText string // text to display; for code segments, the marker token
	SpeechText   string // text to synthesize; empty for code segments
	CodeIndex    int    // code block ordinal for SegmentCode, -1 otherwise
}

// sentencesPerGroup is how many sentences are flushed together, keeping each
// flushed run around one synthesis request's worth of speech.
const sentencesPerGroup = 2

var codeMarkerRe = regexp.MustCompile(`\[CODE_BLOCK_(\d+)\]`)

// CodeMarker returns the placeholder token for the Nth code block.
func CodeMarker(index int) string {
	return fmt.Sprintf("[CODE_BLOCK_%d]", index)
}

// Segmenter turns ordered content items into an ordered sequence of text and
// code segments.
type Segmenter struct {
	groupSize int
}

// NewSegmenter creates a segmenter with the default sentence grouping.
func NewSegmenter() *Segmenter {
	return &Segmenter{groupSize: sentencesPerGroup}
}

// Segment flattens content items into segments. Consecutive text items are
// accumulated into one buffer with code markers interleaved at their original
// positions; the buffer is then split on sentence boundaries, grouped, and
// each group is flushed with its embedded markers broken out into their own
// code segments. Document order between text and code is preserved exactly.
func (s *Segmenter) Segment(items []ContentItem) []Segment {
	var buf strings.Builder
	for _, item := range items {
		switch item.Kind {
		case ItemText:
			txt := strings.TrimSpace(item.Content)
			if txt == "" {
				continue
			}
			if buf.Len() > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(txt)
		case ItemCode:
			if buf.Len() > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(CodeMarker(item.Index))
		}
	}

	sentences := splitSentences(buf.String())

	var segments []Segment
	var group []string
	flush := func() {
		if len(group) == 0 {
			return
		}
		segments = append(segments, splitMarkers(strings.Join(group, " "))...)
		group = group[:0]
	}

	for _, sentence := range sentences {
		group = append(group, sentence)
		if len(group) >= s.groupSize {
			flush()
		}
	}
	flush()

	return segments
}

// splitSentences splits text after runs of sentence punctuation, but only
// when the run is followed by whitespace and an uppercase letter, or ends the
// text. Tokens like console.log() never satisfy the rule, so code-like prose
// survives unsplit.
func splitSentences(s string) []string {
	runes := []rune(s)
	var sentences []string
	last := 0

	for i := 0; i < len(runes); i++ {
		if !isSentencePunct(runes[i]) {
			continue
		}

		// Swallow the full punctuation run ("?!", "...").
		end := i + 1
		for end < len(runes) && isSentencePunct(runes[end]) {
			end++
		}

		if sentenceBoundary(runes, end) {
			sentence := strings.TrimSpace(string(runes[last:end]))
			if sentence != "" {
				sentences = append(sentences, sentence)
			}
			last = end
		}
		i = end - 1
	}

	if last < len(runes) {
		if rest := strings.TrimSpace(string(runes[last:])); rest != "" {
			sentences = append(sentences, rest)
		}
	}

	if len(sentences) == 0 && strings.TrimSpace(s) != "" {
		sentences = append(sentences, strings.TrimSpace(s))
	}

	return sentences
}

func isSentencePunct(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// sentenceBoundary reports whether the position after a punctuation run ends
// a sentence: end of text (modulo trailing space), or whitespace followed by
// an uppercase letter. A code marker token also counts as a sentence opener
// so text flushes cleanly before a reveal.
func sentenceBoundary(runes []rune, pos int) bool {
	i := pos
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	if i == len(runes) {
		return true
	}
	if i == pos {
		// No whitespace after the punctuation: mid-token, e.g. "console.log".
		return false
	}
	return unicode.IsUpper(runes[i]) || runes[i] == '['
}

// splitMarkers breaks one flushed text run into interleaved text and code
// segments at each embedded code marker.
func splitMarkers(block string) []Segment {
	var segments []Segment
	last := 0

	for _, loc := range codeMarkerRe.FindAllStringSubmatchIndex(block, -1) {
		if before := block[last:loc[0]]; strings.TrimSpace(before) != "" {
			segments = append(segments, textSegment(before))
		}
		idx, _ := strconv.Atoi(block[loc[2]:loc[3]])
		segments = append(segments, Segment{
			Kind:         SegmentCode,
			SubtitleText: block[loc[0]:loc[1]],
			CodeIndex:    idx,
		})
		last = loc[1]
	}

	if after := block[last:]; strings.TrimSpace(after) != "" {
		segments = append(segments, textSegment(after))
	}

	return segments
}

var spaceRunRe = regexp.MustCompile(`\s+`)

func textSegment(text string) Segment {
	return Segment{
		Kind:         SegmentText,
		SubtitleText: strings.TrimSpace(text),
		SpeechText:   spaceRunRe.ReplaceAllString(strings.TrimSpace(text), " "),
		CodeIndex:    -1,
	}
}

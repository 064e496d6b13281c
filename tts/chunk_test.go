package tts

import (
	"testing"

	"github.com/lectify/lectify/lecture"
)

func TestBuildChunksPartitionsWordStream(t *testing.T) {
	segs := []lecture.Segment{
		textSegment("The quick brown fox."),
		codeSegment(0),
		textSegment("Jumps over the lazy dog."),
		textSegment("The end."),
	}

	chunks := BuildChunks(segs)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}

	wantWords := []int{4, 5, 2}
	cumulative := 0
	for i, c := range chunks {
		if len(c.Words) != wantWords[i] {
			t.Errorf("chunk[%d] words = %d, want %d", i, len(c.Words), wantWords[i])
		}
		if c.StartWord != cumulative {
			t.Errorf("chunk[%d] StartWord = %d, want %d", i, c.StartWord, cumulative)
		}
		if c.EndWord != c.StartWord+len(c.Words) {
			t.Errorf("chunk[%d] EndWord = %d, want %d", i, c.EndWord, c.StartWord+len(c.Words))
		}
		cumulative = c.EndWord
	}

	if got := TotalWords(chunks); got != 11 {
		t.Errorf("TotalWords = %d, want 11", got)
	}
}

func TestBuildChunksSkipsEmptyAndCodeSegments(t *testing.T) {
	segs := []lecture.Segment{
		codeSegment(0),
		{Kind: lecture.SegmentText, SpeechText: "", CodeIndex: -1},
		{Kind: lecture.SegmentText, SpeechText: "   ", CodeIndex: -1},
	}
	if chunks := BuildChunks(segs); len(chunks) != 0 {
		t.Errorf("chunks = %d, want 0", len(chunks))
	}
	if got := TotalWords(nil); got != 0 {
		t.Errorf("TotalWords(nil) = %d, want 0", got)
	}
}

func TestChunkOffsetsRoundTrip(t *testing.T) {
	chunks := BuildChunks([]lecture.Segment{textSegment("alpha beta gamma")})
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	c := chunks[0]

	for i, span := range c.Offsets {
		if got := c.Text[span.Start:span.End]; got != c.Words[i] {
			t.Errorf("offset[%d] slices %q, want %q", i, got, c.Words[i])
		}
		if got := c.WordAt(span.Start); got != i {
			t.Errorf("WordAt(%d) = %d, want %d", span.Start, got, i)
		}
	}
}

func TestChunkWordAt(t *testing.T) {
	c := BuildChunks([]lecture.Segment{textSegment("one two three")})[0]

	tt := []struct {
		name      string
		charIndex int
		want      int
	}{
		{"start of first word", 0, 0},
		{"inside first word", 2, 0},
		{"space before second word", 3, 1},
		{"start of second word", 4, 1},
		{"start of last word", 8, 2},
		{"past the end", 100, 2},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.WordAt(tc.charIndex); got != tc.want {
				t.Errorf("WordAt(%d) = %d, want %d", tc.charIndex, got, tc.want)
			}
		})
	}
}

func TestChunkWordAtEmpty(t *testing.T) {
	var c Chunk
	if got := c.WordAt(0); got != -1 {
		t.Errorf("WordAt on empty chunk = %d, want -1", got)
	}
}

package tts

import (
	"sort"

	"github.com/lectify/lectify/lecture"
)

// CodeEvent is a scheduled point in the word stream at which a code block
// must be revealed.
type CodeEvent struct {
	Position   int // global word index at which the block becomes due
	BlockIndex int
}

// BuildCodeEvents derives the code-reveal schedule from segmented content:
// each code segment's position is the number of speakable words preceding it.
func BuildCodeEvents(segments []lecture.Segment) []CodeEvent {
	var events []CodeEvent
	words := 0

	for _, seg := range segments {
		switch seg.Kind {
		case lecture.SegmentText:
			words += len(wordRe.FindAllString(seg.SpeechText, -1))
		case lecture.SegmentCode:
			events = append(events, CodeEvent{Position: words, BlockIndex: seg.CodeIndex})
		}
	}

	return events
}

// codeTrigger fires code reveal/hide transitions as the word position
// advances. Each event fires exactly once per playback session; at most one
// block is visible at a time.
type codeTrigger struct {
	events  []CodeEvent
	pointer int

	activeIndex  int // visible block, -1 when none
	lastPosition int // word position of the visible block's trigger

	hooks Hooks
}

func newCodeTrigger(events []CodeEvent, hooks Hooks) *codeTrigger {
	sorted := make([]CodeEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	return &codeTrigger{
		events:       sorted,
		activeIndex:  -1,
		lastPosition: -1,
		hooks:        hooks,
	}
}

// trigger shows every pending event due at or before the given global word
// index, then hides the visible block once the position has moved past its
// trigger point.
func (t *codeTrigger) trigger(globalWordIndex int) {
	for t.pointer < len(t.events) && t.events[t.pointer].Position <= globalWordIndex {
		evt := t.events[t.pointer]
		t.show(evt.Position, evt.BlockIndex)
		t.pointer++
	}
	if t.lastPosition >= 0 && globalWordIndex > t.lastPosition {
		t.hide()
	}
}

// active reports whether a code block is currently visible.
func (t *codeTrigger) active() bool { return t.activeIndex >= 0 }

func (t *codeTrigger) show(position, blockIndex int) {
	if blockIndex == t.activeIndex {
		t.lastPosition = position
		return
	}
	t.activeIndex = blockIndex
	t.lastPosition = position
	t.hooks.codeBlockShown(blockIndex)
}

// hide is idempotent: with no active block it is a no-op.
func (t *codeTrigger) hide() {
	if t.activeIndex < 0 {
		return
	}
	t.activeIndex = -1
	t.lastPosition = -1
	t.hooks.codeBlockHidden()
}

// reset rewinds the trigger for a fresh playback session.
func (t *codeTrigger) reset() {
	t.pointer = 0
	t.hide()
}

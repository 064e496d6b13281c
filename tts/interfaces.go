// Package tts implements the playback core of Lectify: it turns segmented
// lecture content into speech-synthesis requests, tracks word-level progress
// through boundary events (or timed fallback), and schedules code-block
// reveals at the right points in the word stream.
package tts

import (
	"context"
	"time"
)

// Synthesizer is the boundary to a speech-synthesis engine. One Speak call
// corresponds to one utterance; the returned channel delivers zero or more
// boundary events followed by exactly one end or error event, then closes.
type Synthesizer interface {
	// Voices returns the engine's available voices. Callers decide how long
	// they are willing to wait via ctx.
	Voices(ctx context.Context) ([]Voice, error)

	// Speak starts synthesizing the request and returns its event stream.
	Speak(req Request) (<-chan Event, error)

	// Pause suspends the in-flight utterance, if any.
	Pause() error

	// Resume continues a paused utterance.
	Resume() error

	// Cancel discards the in-flight utterance. Its event stream may close
	// without delivering an end event.
	Cancel() error

	// Close releases engine resources.
	Close() error
}

// Request describes one utterance.
type Request struct {
	Text   string
	Voice  *Voice  // nil means engine default
	Rate   float64 // 1.0 = normal speed
	Pitch  float64
	Volume float64
}

// EventKind discriminates synthesis events.
type EventKind int

const (
	// EventBoundary reports that synthesis reached a character offset.
	EventBoundary EventKind = iota
	// EventEnd reports that the utterance finished speaking.
	EventEnd
	// EventError reports that the utterance failed mid-speech.
	EventError
)

// Event is one occurrence on an utterance's event stream.
type Event struct {
	Kind      EventKind
	CharIndex int   // valid for EventBoundary
	Err       error // valid for EventError
}

// Voice identifies one synthesis voice.
type Voice struct {
	ID       string // Voice identifier
	Name     string // Human-readable name
	Language string // Language code (e.g., "en-US")
	Gender   string // Voice gender, if the engine reports one
}

// Prewarmer is an optional Synthesizer capability: engines that build audio
// ahead of playback (subprocess synthesis, network fetch) can prepare a
// request without speaking it, so the driver's lookahead hides their latency.
type Prewarmer interface {
	Prewarm(req Request)
}

// Hooks are the callbacks the Driver invokes as playback progresses. Any
// field may be nil. All hooks are called from the playback goroutine, in
// order: a chunk's highlight and code events always settle before the next
// chunk's OnChunkShown.
type Hooks struct {
	OnChunkShown      func(text string)
	OnWordHighlighted func(index int) // word index within the current chunk
	OnCodeBlockShown  func(index int)
	OnCodeBlockHidden func()
	OnProgress        func(fraction float64)
	OnTimeUpdate      func(elapsed, total time.Duration)
	OnPlaybackEnded   func()
}

func (h Hooks) chunkShown(text string) {
	if h.OnChunkShown != nil {
		h.OnChunkShown(text)
	}
}

func (h Hooks) wordHighlighted(index int) {
	if h.OnWordHighlighted != nil {
		h.OnWordHighlighted(index)
	}
}

func (h Hooks) codeBlockShown(index int) {
	if h.OnCodeBlockShown != nil {
		h.OnCodeBlockShown(index)
	}
}

func (h Hooks) codeBlockHidden() {
	if h.OnCodeBlockHidden != nil {
		h.OnCodeBlockHidden()
	}
}

func (h Hooks) progress(fraction float64) {
	if h.OnProgress != nil {
		h.OnProgress(fraction)
	}
}

func (h Hooks) timeUpdate(elapsed, total time.Duration) {
	if h.OnTimeUpdate != nil {
		h.OnTimeUpdate(elapsed, total)
	}
}

func (h Hooks) playbackEnded() {
	if h.OnPlaybackEnded != nil {
		h.OnPlaybackEnded()
	}
}

package ui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lectify/lectify/lecture"
	"github.com/lectify/lectify/tts"
)

// Playback messages, one per driver hook. The driver calls hooks from its
// playback goroutine; the relay forwards them into the Bubble Tea loop.
type (
	chunkShownMsg      string
	wordHighlightedMsg int
	codeBlockShownMsg  int
	codeBlockHiddenMsg struct{}
	progressMsg        float64
	playbackEndedMsg   struct{}

	timeUpdateMsg struct {
		elapsed time.Duration
		total   time.Duration
	}
)

// lectureReloadedMsg carries freshly parsed content after the watched file
// changed.
type lectureReloadedMsg struct {
	lec      *lecture.Lecture
	segments []lecture.Segment
}

type statusMessageTimeoutMsg struct{}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// relay buffers messages until the Bubble Tea program exists. The driver is
// built before the program (its hooks are constructor arguments), so early
// hook calls land in the backlog and flush on attach.
type relay struct {
	mu      sync.Mutex
	program *tea.Program
	backlog []tea.Msg
}

func (r *relay) attach(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	backlog := r.backlog
	r.backlog = nil
	r.mu.Unlock()

	for _, msg := range backlog {
		p.Send(msg)
	}
}

func (r *relay) send(msg tea.Msg) {
	r.mu.Lock()
	p := r.program
	if p == nil {
		r.backlog = append(r.backlog, msg)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	p.Send(msg)
}

// driverHooks bridges every playback hook onto the relay.
func driverHooks(r *relay) tts.Hooks {
	return tts.Hooks{
		OnChunkShown:      func(text string) { r.send(chunkShownMsg(text)) },
		OnWordHighlighted: func(index int) { r.send(wordHighlightedMsg(index)) },
		OnCodeBlockShown:  func(index int) { r.send(codeBlockShownMsg(index)) },
		OnCodeBlockHidden: func() { r.send(codeBlockHiddenMsg{}) },
		OnProgress:        func(fraction float64) { r.send(progressMsg(fraction)) },
		OnTimeUpdate: func(elapsed, total time.Duration) {
			r.send(timeUpdateMsg{elapsed: elapsed, total: total})
		},
		OnPlaybackEnded: func() { r.send(playbackEndedMsg{}) },
	}
}

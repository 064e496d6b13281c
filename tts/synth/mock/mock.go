// Package mock provides a scripted synthesizer with full boundary-event
// support and no audio. It backs the "mock" engine flag for demoing the
// player UI on machines with no speech stack installed, and tests that need
// deterministic utterances.
package mock

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/lectify/lectify/tts"
)

var wordRe = regexp.MustCompile(`\S+`)

// Engine simulates an engine that reports a boundary at every word.
type Engine struct {
	// WordDelay is the simulated speaking time per word.
	WordDelay time.Duration

	// SpeakErr, when set, makes every Speak call fail.
	SpeakErr error

	// VoicesErr, when set, makes Voices fail.
	VoicesErr error

	mu       sync.Mutex
	paused   bool
	cancel   context.CancelFunc
	closed   bool
	speakCnt int
}

// New creates a mock engine at a brisk default pace.
func New() *Engine {
	return &Engine{WordDelay: 150 * time.Millisecond}
}

// Voices returns a fixed voice set covering both gender preferences.
func (e *Engine) Voices(ctx context.Context) ([]tts.Voice, error) {
	if e.VoicesErr != nil {
		return nil, e.VoicesErr
	}
	return []tts.Voice{
		{ID: "mock-neutral", Name: "Mock Narrator", Language: "en-US", Gender: "neutral"},
		{ID: "mock-female", Name: "Mock Amy", Language: "en-US", Gender: "female"},
		{ID: "mock-male", Name: "Mock Brian", Language: "en-US", Gender: "male"},
	}, nil
}

// SpeakCount reports how many utterances were started.
func (e *Engine) SpeakCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speakCnt
}

// Speak emits one boundary per word on a timer, then an end event. The rate
// scales the per-word delay the way it would scale real speech.
func (e *Engine) Speak(req tts.Request) (<-chan tts.Event, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, tts.ErrEngineClosed
	}
	if e.SpeakErr != nil {
		e.mu.Unlock()
		return nil, e.SpeakErr
	}
	e.speakCnt++
	if e.cancel != nil {
		e.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.mu.Unlock()

	delay := e.WordDelay
	if req.Rate > 0 {
		delay = time.Duration(float64(delay) / req.Rate)
	}

	events := make(chan tts.Event, 8)
	go func() {
		defer close(events)
		for _, loc := range wordRe.FindAllStringIndex(req.Text, -1) {
			if !e.sleep(ctx, delay) {
				return
			}
			events <- tts.Event{Kind: tts.EventBoundary, CharIndex: loc[0]}
		}
		if ctx.Err() == nil {
			events <- tts.Event{Kind: tts.EventEnd}
		}
	}()

	return events, nil
}

// sleep waits out one word's delay, stretching while paused. Returns false
// when the utterance was canceled.
func (e *Engine) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			e.mu.Lock()
			paused := e.paused
			e.mu.Unlock()
			if !paused {
				return true
			}
			// Paused: poll until resumed.
			timer.Reset(10 * time.Millisecond)
		}
	}
}

// Pause suspends boundary emission.
func (e *Engine) Pause() error {
	e.mu.Lock()
	e.paused = true
	e.mu.Unlock()
	return nil
}

// Resume continues boundary emission.
func (e *Engine) Resume() error {
	e.mu.Lock()
	e.paused = false
	e.mu.Unlock()
	return nil
}

// Cancel discards the in-flight utterance.
func (e *Engine) Cancel() error {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.mu.Unlock()
	return nil
}

// Close cancels any utterance and rejects further Speak calls.
func (e *Engine) Close() error {
	_ = e.Cancel()
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	return nil
}

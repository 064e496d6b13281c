package synth

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/lectify/lectify/tts"
)

// procUtterance is one in-flight subprocess utterance. Pause and resume map
// to job-control signals; cancel kills the process and the event stream
// closes without an end event.
type procUtterance struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	events chan tts.Event
	stderr *bytes.Buffer
}

func startUtterance(ctx context.Context, name string, args ...string) (*procUtterance, error) {
	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("unable to start %s: %w", name, err)
	}

	u := &procUtterance{
		cmd:    cmd,
		cancel: cancel,
		events: make(chan tts.Event, 1),
		stderr: &stderr,
	}

	go func() {
		defer close(u.events)
		err := cmd.Wait()
		switch {
		case ctx.Err() != nil:
			// Canceled; the stream just closes.
		case err != nil:
			msg := strings.TrimSpace(stderr.String())
			if msg != "" {
				err = fmt.Errorf("%s: %w: %s", name, err, msg)
			} else {
				err = fmt.Errorf("%s: %w", name, err)
			}
			u.events <- tts.Event{Kind: tts.EventError, Err: err}
		default:
			u.events <- tts.Event{Kind: tts.EventEnd}
		}
	}()

	return u, nil
}

func (u *procUtterance) pause() error {
	return u.cmd.Process.Signal(syscall.SIGSTOP)
}

func (u *procUtterance) resume() error {
	return u.cmd.Process.Signal(syscall.SIGCONT)
}

func (u *procUtterance) stop() {
	u.cancel()
}

// procEngine holds the shared speak/pause/cancel plumbing of the subprocess
// engines. Concrete engines supply the command line.
type procEngine struct {
	mu      sync.Mutex
	current *procUtterance
	closed  bool
}

func (e *procEngine) speak(name string, args ...string) (<-chan tts.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, tts.ErrEngineClosed
	}
	// One utterance at a time; a straggler would talk over the new one.
	if e.current != nil {
		e.current.stop()
	}
	u, err := startUtterance(context.Background(), name, args...)
	if err != nil {
		return nil, err
	}
	e.current = u
	return u.events, nil
}

func (e *procEngine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return nil
	}
	return e.current.pause()
}

func (e *procEngine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return nil
	}
	return e.current.resume()
}

func (e *procEngine) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return nil
	}
	e.current.stop()
	e.current = nil
	return nil
}

func (e *procEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current != nil {
		e.current.stop()
		e.current = nil
	}
	e.closed = true
	return nil
}

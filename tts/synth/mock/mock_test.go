package mock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lectify/lectify/tts"
)

func fastEngine() *Engine {
	e := New()
	e.WordDelay = 2 * time.Millisecond
	return e
}

func collect(t *testing.T, ch <-chan tts.Event) []tts.Event {
	t.Helper()
	var events []tts.Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("event stream never closed; got %v", events)
		}
	}
}

func TestSpeakEmitsBoundaryPerWordThenEnd(t *testing.T) {
	e := fastEngine()
	defer e.Close()

	ch, err := e.Speak(tts.Request{Text: "alpha beta gamma", Rate: 1.0})
	if err != nil {
		t.Fatalf("Speak: %v", err)
	}
	events := collect(t, ch)

	if len(events) != 4 {
		t.Fatalf("events = %v, want 3 boundaries + end", events)
	}
	wantChars := []int{0, 6, 11}
	for i, want := range wantChars {
		if events[i].Kind != tts.EventBoundary || events[i].CharIndex != want {
			t.Errorf("event[%d] = %+v, want boundary at %d", i, events[i], want)
		}
	}
	if events[3].Kind != tts.EventEnd {
		t.Errorf("final event = %+v, want end", events[3])
	}
}

func TestCancelClosesStreamWithoutEnd(t *testing.T) {
	e := New()
	e.WordDelay = time.Hour // would never finish on its own
	defer e.Close()

	ch, err := e.Speak(tts.Request{Text: "unending words", Rate: 1.0})
	if err != nil {
		t.Fatalf("Speak: %v", err)
	}
	if err := e.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	for ev := range ch {
		if ev.Kind == tts.EventEnd {
			t.Error("canceled utterance delivered an end event")
		}
	}
}

func TestPauseHoldsBoundaries(t *testing.T) {
	e := fastEngine()
	defer e.Close()

	if err := e.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	ch, err := e.Speak(tts.Request{Text: "held words", Rate: 1.0})
	if err != nil {
		t.Fatalf("Speak: %v", err)
	}

	select {
	case ev := <-ch:
		t.Fatalf("got %+v while paused", ev)
	case <-time.After(40 * time.Millisecond):
	}

	if err := e.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	events := collect(t, ch)
	if len(events) != 3 {
		t.Errorf("events after resume = %v, want 2 boundaries + end", events)
	}
}

func TestSpeakErrKnob(t *testing.T) {
	e := fastEngine()
	defer e.Close()

	wantErr := errors.New("scripted failure")
	e.SpeakErr = wantErr
	if _, err := e.Speak(tts.Request{Text: "x"}); !errors.Is(err, wantErr) {
		t.Errorf("Speak err = %v, want scripted failure", err)
	}
}

func TestClosedEngineRejectsSpeak(t *testing.T) {
	e := fastEngine()
	e.Close()

	if _, err := e.Speak(tts.Request{Text: "x"}); !errors.Is(err, tts.ErrEngineClosed) {
		t.Errorf("Speak after Close = %v, want ErrEngineClosed", err)
	}
}

func TestVoicesCoverGenderPreferences(t *testing.T) {
	e := fastEngine()
	defer e.Close()

	voices, err := e.Voices(context.Background())
	if err != nil {
		t.Fatalf("Voices: %v", err)
	}

	if v := tts.ResolveVoice(voices, tts.VoiceFemale); v == nil || v.Gender != "female" {
		t.Errorf("female preference resolved %+v", v)
	}
	if v := tts.ResolveVoice(voices, tts.VoiceMale); v == nil || v.Gender != "male" {
		t.Errorf("male preference resolved %+v", v)
	}
}

func TestRateScalesDelay(t *testing.T) {
	e := New()
	e.WordDelay = 40 * time.Millisecond
	defer e.Close()

	start := time.Now()
	ch, err := e.Speak(tts.Request{Text: "one two", Rate: 2.0})
	if err != nil {
		t.Fatalf("Speak: %v", err)
	}
	collect(t, ch)

	// Two words at half the delay: well under the unscaled 80ms.
	if elapsed := time.Since(start); elapsed > 70*time.Millisecond {
		t.Errorf("elapsed = %v, rate did not shorten the delay", elapsed)
	}
}

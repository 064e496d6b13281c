package tts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lectify/lectify/lecture"
)

// scriptedSynth is a Synthesizer test double. Each Speak runs the script in
// a goroutine against a fresh event channel; the script decides what
// boundaries and terminal event the utterance produces.
type scriptedSynth struct {
	mu        sync.Mutex
	voices    []Voice
	voicesErr error
	speakErr  error
	script    func(req Request, ch chan<- Event, canceled <-chan struct{})

	requests  []Request
	prewarmed []Request
	pauses    int
	resumes   int
	cancels   int

	cancelOnce sync.Once
	canceled   chan struct{}
}

func newScriptedSynth(script func(req Request, ch chan<- Event, canceled <-chan struct{})) *scriptedSynth {
	return &scriptedSynth{script: script, canceled: make(chan struct{})}
}

func (s *scriptedSynth) Voices(ctx context.Context) ([]Voice, error) {
	return s.voices, s.voicesErr
}

func (s *scriptedSynth) Speak(req Request) (<-chan Event, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	if s.speakErr != nil {
		return nil, s.speakErr
	}
	ch := make(chan Event, 32)
	go func() {
		defer close(ch)
		s.script(req, ch, s.canceled)
	}()
	return ch, nil
}

func (s *scriptedSynth) Prewarm(req Request) {
	s.mu.Lock()
	s.prewarmed = append(s.prewarmed, req)
	s.mu.Unlock()
}

func (s *scriptedSynth) Pause() error  { s.mu.Lock(); s.pauses++; s.mu.Unlock(); return nil }
func (s *scriptedSynth) Resume() error { s.mu.Lock(); s.resumes++; s.mu.Unlock(); return nil }

func (s *scriptedSynth) Cancel() error {
	s.mu.Lock()
	s.cancels++
	s.mu.Unlock()
	s.cancelOnce.Do(func() { close(s.canceled) })
	return nil
}

func (s *scriptedSynth) Close() error {
	s.cancelOnce.Do(func() { close(s.canceled) })
	return nil
}

func (s *scriptedSynth) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// boundariesThenEnd emits one boundary at each word's start offset, then an
// end event, mimicking an engine with full boundary support.
func boundariesThenEnd(req Request, ch chan<- Event, _ <-chan struct{}) {
	for _, loc := range wordRe.FindAllStringIndex(req.Text, -1) {
		ch <- Event{Kind: EventBoundary, CharIndex: loc[0]}
	}
	ch <- Event{Kind: EventEnd}
}

// endOnly emits a single end event with no boundaries.
func endOnly(_ Request, ch chan<- Event, _ <-chan struct{}) {
	ch <- Event{Kind: EventEnd}
}

// neverEnds emits nothing until the utterance is canceled.
func neverEnds(_ Request, _ chan<- Event, canceled <-chan struct{}) {
	<-canceled
}

// hookRecorder captures driver callbacks in arrival order.
type hookRecorder struct {
	mu     sync.Mutex
	log    []string
	words  []int
	shown  []int
	hidden int

	endedOnce sync.Once
	ended     chan struct{}
}

func newHookRecorder() *hookRecorder {
	return &hookRecorder{ended: make(chan struct{})}
}

func (r *hookRecorder) hooks() Hooks {
	return Hooks{
		OnChunkShown: func(text string) {
			r.record("chunk:" + text)
		},
		OnWordHighlighted: func(index int) {
			// index -1 clears the highlight; track only real positions.
			if index >= 0 {
				r.mu.Lock()
				r.words = append(r.words, index)
				r.mu.Unlock()
			}
			r.record(fmt.Sprintf("word:%d", index))
		},
		OnCodeBlockShown: func(index int) {
			r.mu.Lock()
			r.shown = append(r.shown, index)
			r.mu.Unlock()
			r.record(fmt.Sprintf("show:%d", index))
		},
		OnCodeBlockHidden: func() {
			r.mu.Lock()
			r.hidden++
			r.mu.Unlock()
			r.record("hide")
		},
		OnPlaybackEnded: func() {
			r.record("ended")
			r.endedOnce.Do(func() { close(r.ended) })
		},
	}
}

func (r *hookRecorder) record(entry string) {
	r.mu.Lock()
	r.log = append(r.log, entry)
	r.mu.Unlock()
}

func (r *hookRecorder) entries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.log))
	copy(out, r.log)
	return out
}

func (r *hookRecorder) highlighted() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.words))
	copy(out, r.words)
	return out
}

func (r *hookRecorder) shownBlocks() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.shown))
	copy(out, r.shown)
	return out
}

func (r *hookRecorder) waitEnded(t *testing.T) {
	t.Helper()
	select {
	case <-r.ended:
	case <-time.After(5 * time.Second):
		t.Fatalf("playback did not end; log: %v", r.entries())
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.FallbackFloor = 2 * time.Millisecond
	cfg.FallbackBase = 4 * time.Millisecond
	cfg.VoiceListTimeout = 100 * time.Millisecond
	cfg.CodeDwell = 5 * time.Millisecond
	return cfg
}

func textSegment(text string) lecture.Segment {
	return lecture.Segment{
		Kind:         lecture.SegmentText,
		SubtitleText: text,
		SpeechText:   text,
		CodeIndex:    -1,
	}
}

func codeSegment(index int) lecture.Segment {
	return lecture.Segment{Kind: lecture.SegmentCode, CodeIndex: index}
}

func TestDriverHighlightsEveryWordFromBoundaries(t *testing.T) {
	synth := newScriptedSynth(boundariesThenEnd)
	rec := newHookRecorder()

	d := NewDriver(synth, testConfig(), rec.hooks())
	defer d.Close()

	if err := d.Load([]lecture.Segment{
		textSegment("The quick brown fox jumps."),
		textSegment("Over the lazy dog."),
	}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	rec.waitEnded(t)

	want := []int{0, 1, 2, 3, 4, 0, 1, 2, 3}
	got := rec.highlighted()
	if len(got) != len(want) {
		t.Fatalf("highlight count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("highlight[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	if d.Status() != StatusIdle {
		t.Errorf("status after end = %s, want idle", d.Status())
	}
	if p := d.Progress(); p != 1.0 {
		t.Errorf("progress after end = %v, want 1.0", p)
	}
}

func TestDriverChunksSpokenInOrder(t *testing.T) {
	synth := newScriptedSynth(endOnly)
	rec := newHookRecorder()

	d := NewDriver(synth, testConfig(), rec.hooks())
	defer d.Close()

	segs := []lecture.Segment{
		textSegment("First part."),
		textSegment("Second part."),
		textSegment("Third part."),
	}
	if err := d.Load(segs); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	rec.waitEnded(t)

	var order []string
	for _, e := range rec.entries() {
		if strings.HasPrefix(e, "chunk:") {
			order = append(order, strings.TrimPrefix(e, "chunk:"))
		}
	}
	want := []string{"First part.", "Second part.", "Third part."}
	if len(order) != len(want) {
		t.Fatalf("chunk order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("chunk[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestDriverForcesLastWordOnSilentEnd(t *testing.T) {
	// An utterance that ends without a single boundary must still light up
	// the final word so the subtitle doesn't finish unmarked.
	synth := newScriptedSynth(endOnly)
	rec := newHookRecorder()

	d := NewDriver(synth, testConfig(), rec.hooks())
	defer d.Close()

	if err := d.Load([]lecture.Segment{textSegment("alpha beta gamma")}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	rec.waitEnded(t)

	got := rec.highlighted()
	if len(got) == 0 || got[len(got)-1] != 2 {
		t.Fatalf("last highlight = %v, want final index 2", got)
	}
}

func TestDriverFallbackPacesSilentEngine(t *testing.T) {
	// No boundaries and no end: the fallback timer must walk every word and
	// the chunk must resolve without waiting for the engine.
	synth := newScriptedSynth(neverEnds)
	rec := newHookRecorder()

	d := NewDriver(synth, testConfig(), rec.hooks())
	defer d.Close()

	if err := d.Load([]lecture.Segment{textSegment("one two three four five")}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	rec.waitEnded(t)

	want := []int{0, 1, 2, 3, 4}
	got := rec.highlighted()
	if len(got) != len(want) {
		t.Fatalf("fallback highlights = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("highlight[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestDriverContinuesWithoutEngine(t *testing.T) {
	rec := newHookRecorder()

	d := NewDriver(nil, testConfig(), rec.hooks())
	defer d.Close()

	if err := d.Load([]lecture.Segment{textSegment("silent words still advance")}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	rec.waitEnded(t)

	if got := rec.highlighted(); len(got) != 4 {
		t.Fatalf("highlights without engine = %v, want 4 entries", got)
	}
}

func TestDriverSkipsChunkOnUtteranceError(t *testing.T) {
	var calls int
	var mu sync.Mutex
	synth := newScriptedSynth(func(req Request, ch chan<- Event, canceled <-chan struct{}) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			ch <- Event{Kind: EventError, Err: errors.New("synthesis blew up")}
			return
		}
		boundariesThenEnd(req, ch, canceled)
	})
	rec := newHookRecorder()

	d := NewDriver(synth, testConfig(), rec.hooks())
	defer d.Close()

	if err := d.Load([]lecture.Segment{
		textSegment("Broken chunk here."),
		textSegment("Healthy chunk follows."),
	}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	rec.waitEnded(t)

	if synth.requestCount() != 2 {
		t.Errorf("requests = %d, want 2 (bad chunk must not halt playback)", synth.requestCount())
	}
}

func TestDriverCodeEventsFireExactlyOnce(t *testing.T) {
	synth := newScriptedSynth(boundariesThenEnd)
	rec := newHookRecorder()

	d := NewDriver(synth, testConfig(), rec.hooks())
	defer d.Close()

	segs := []lecture.Segment{
		textSegment("Look at this example."),
		codeSegment(0),
		textSegment("And now another one."),
		codeSegment(1),
	}
	if err := d.Load(segs); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	rec.waitEnded(t)

	rec.mu.Lock()
	shown := append([]int(nil), rec.shown...)
	hidden := rec.hidden
	rec.mu.Unlock()

	if len(shown) != 2 || shown[0] != 0 || shown[1] != 1 {
		t.Fatalf("code blocks shown = %v, want [0 1]", shown)
	}
	if hidden != 2 {
		t.Errorf("code blocks hidden = %d, want 2", hidden)
	}

	// First block is revealed after the first chunk's words and before the
	// second chunk is shown.
	log := rec.entries()
	showIdx, nextChunkIdx := -1, -1
	for i, e := range log {
		if e == "show:0" && showIdx < 0 {
			showIdx = i
		}
		if e == "chunk:And now another one." && nextChunkIdx < 0 {
			nextChunkIdx = i
		}
	}
	if showIdx < 0 || nextChunkIdx < 0 || showIdx > nextChunkIdx {
		t.Errorf("block 0 not revealed between chunks; log: %v", log)
	}
}

func TestDriverEmptyContentEndsImmediately(t *testing.T) {
	rec := newHookRecorder()

	d := NewDriver(nil, testConfig(), rec.hooks())
	defer d.Close()

	if err := d.Load(nil); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	rec.waitEnded(t)

	if d.Status() != StatusIdle {
		t.Errorf("status = %s, want idle", d.Status())
	}
}

func TestDriverCodeOnlyContentStillReveals(t *testing.T) {
	rec := newHookRecorder()

	d := NewDriver(nil, testConfig(), rec.hooks())
	defer d.Close()

	if err := d.Load([]lecture.Segment{codeSegment(0)}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	rec.waitEnded(t)

	rec.mu.Lock()
	shown := append([]int(nil), rec.shown...)
	rec.mu.Unlock()
	if len(shown) != 1 || shown[0] != 0 {
		t.Fatalf("code blocks shown = %v, want [0]", shown)
	}
}

func TestDriverStopResetsCleanly(t *testing.T) {
	synth := newScriptedSynth(neverEnds)
	rec := newHookRecorder()

	cfg := testConfig()
	cfg.FallbackFloor = 50 * time.Millisecond
	cfg.FallbackBase = 50 * time.Millisecond

	d := NewDriver(synth, cfg, rec.hooks())
	defer d.Close()

	if err := d.Load([]lecture.Segment{
		textSegment("A long stretch of words that keeps playing."),
		textSegment("Never reached before the stop."),
	}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if err := d.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if d.Status() != StatusIdle {
		t.Errorf("status after stop = %s, want idle", d.Status())
	}
	if p := d.Progress(); p != 0 {
		t.Errorf("progress after stop = %v, want 0", p)
	}
	if e := d.Elapsed(); e != 0 {
		t.Errorf("elapsed after stop = %v, want 0", e)
	}
	synth.mu.Lock()
	cancels := synth.cancels
	synth.mu.Unlock()
	if cancels == 0 {
		t.Error("stop did not cancel the in-flight utterance")
	}

	// The subtitle resets to the first chunk's text.
	log := rec.entries()
	if len(log) == 0 {
		t.Fatal("no hook calls recorded")
	}
	var lastChunk string
	for _, e := range log {
		if strings.HasPrefix(e, "chunk:") {
			lastChunk = strings.TrimPrefix(e, "chunk:")
		}
	}
	if lastChunk != "A long stretch of words that keeps playing." {
		t.Errorf("subtitle after stop = %q, want first chunk", lastChunk)
	}
}

func TestDriverPauseAndResume(t *testing.T) {
	rec := newHookRecorder()

	cfg := testConfig()
	cfg.FallbackFloor = 10 * time.Millisecond
	cfg.FallbackBase = 10 * time.Millisecond

	d := NewDriver(nil, cfg, rec.hooks())
	defer d.Close()

	if err := d.Load([]lecture.Segment{textSegment("pause and resume keeps the position intact always")}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := d.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if !d.IsPaused() {
		t.Fatal("driver not paused after Pause")
	}

	before := len(rec.highlighted())
	time.Sleep(50 * time.Millisecond)
	if after := len(rec.highlighted()); after > before+1 {
		t.Errorf("highlights advanced while paused: %d -> %d", before, after)
	}

	if err := d.Play(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	rec.waitEnded(t)

	if got := rec.highlighted(); len(got) == 0 || got[len(got)-1] != 7 {
		t.Errorf("resume did not reach the final word: %v", got)
	}
}

func TestDriverPauseWhenIdleIsNoop(t *testing.T) {
	d := NewDriver(nil, testConfig(), Hooks{})
	defer d.Close()

	if err := d.Pause(); err != nil {
		t.Fatalf("Pause while idle: %v", err)
	}
	if d.Status() != StatusIdle {
		t.Errorf("status = %s, want idle", d.Status())
	}
}

func TestDriverReplayAfterStop(t *testing.T) {
	var utterances int32
	synth := newScriptedSynth(func(req Request, ch chan<- Event, canceled <-chan struct{}) {
		if atomic.AddInt32(&utterances, 1) == 1 {
			<-canceled
			return
		}
		boundariesThenEnd(req, ch, canceled)
	})
	rec := newHookRecorder()

	// Park the fallback timer: the first utterance hangs until Stop cancels
	// it, the replay completes through boundary events.
	cfg := testConfig()
	cfg.FallbackFloor = time.Hour
	cfg.FallbackBase = time.Hour

	d := NewDriver(synth, cfg, rec.hooks())
	defer d.Close()

	if err := d.Load([]lecture.Segment{
		textSegment("short run"),
		codeSegment(0),
	}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	waitFor(t, func() bool { return synth.requestCount() == 1 },
		"first playback never spoke")
	if err := d.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if err := d.Play(); err != nil {
		t.Fatalf("replay: %v", err)
	}
	rec.waitEnded(t)

	if got := synth.requestCount(); got != 2 {
		t.Errorf("requests = %d, want 2", got)
	}
	if got := rec.shownBlocks(); len(got) != 1 || got[0] != 0 {
		t.Errorf("shown blocks = %v, want [0]", got)
	}
}

// A session that runs to its natural end must leave the driver replayable:
// a fresh Play from idle speaks the chunks again and re-fires every code
// reveal, exactly as the first session did.
func TestDriverReplayAfterNaturalEnd(t *testing.T) {
	synth := newScriptedSynth(boundariesThenEnd)
	rec := newHookRecorder()

	d := NewDriver(synth, testConfig(), rec.hooks())
	defer d.Close()

	if err := d.Load([]lecture.Segment{
		textSegment("First part spoken aloud."),
		codeSegment(0),
		textSegment("Second part spoken aloud."),
	}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	rec.waitEnded(t)

	if got := rec.shownBlocks(); len(got) != 1 {
		t.Fatalf("first playback shown blocks = %v, want one reveal", got)
	}
	if got := d.Progress(); got != 1.0 {
		t.Fatalf("progress after natural end = %v, want 1.0", got)
	}

	firstRun := synth.requestCount()
	if err := d.Play(); err != nil {
		t.Fatalf("replay: %v", err)
	}
	waitFor(t, func() bool { return synth.requestCount() == 2*firstRun },
		"second playback did not speak every chunk")
	waitFor(t, func() bool { return len(rec.shownBlocks()) == 2 },
		"code block not revealed again after natural end")
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatalf("%s", msg)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestDriverPrefetchesLookaheadWithoutSpeaking(t *testing.T) {
	gate := make(chan struct{})
	synth := newScriptedSynth(func(req Request, ch chan<- Event, canceled <-chan struct{}) {
		select {
		case <-gate:
		case <-canceled:
			return
		}
		ch <- Event{Kind: EventEnd}
	})
	rec := newHookRecorder()

	cfg := testConfig()
	cfg.Lookahead = 2
	cfg.FallbackFloor = time.Second
	cfg.FallbackBase = time.Second

	d := NewDriver(synth, cfg, rec.hooks())
	defer d.Close()

	if err := d.Load([]lecture.Segment{
		textSegment("chunk one."),
		textSegment("chunk two."),
		textSegment("chunk three."),
		textSegment("chunk four."),
	}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		synth.mu.Lock()
		spoken, warmed := len(synth.requests), len(synth.prewarmed)
		synth.mu.Unlock()
		if warmed >= 2 {
			if spoken != 1 {
				t.Fatalf("spoke %d chunks while first still playing, want 1", spoken)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatalf("prefetch never ran; spoken=%d warmed=%d", spoken, warmed)
		case <-time.After(5 * time.Millisecond):
		}
	}

	close(gate)
	rec.waitEnded(t)
}

func TestDriverSpeaksWithResolvedVoice(t *testing.T) {
	synth := newScriptedSynth(endOnly)
	synth.voices = []Voice{
		{ID: "v1", Name: "David"},
		{ID: "v2", Name: "Samantha"},
	}
	rec := newHookRecorder()

	cfg := testConfig()
	cfg.Voice = VoiceFemale

	d := NewDriver(synth, cfg, rec.hooks())
	defer d.Close()

	if err := d.Load([]lecture.Segment{textSegment("hello there")}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	rec.waitEnded(t)

	synth.mu.Lock()
	defer synth.mu.Unlock()
	if len(synth.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(synth.requests))
	}
	if v := synth.requests[0].Voice; v == nil || v.ID != "v2" {
		t.Errorf("spoken voice = %+v, want Samantha (v2)", v)
	}
}

func TestDriverSpeakRequestsCarryRate(t *testing.T) {
	synth := newScriptedSynth(endOnly)
	rec := newHookRecorder()

	d := NewDriver(synth, testConfig(), rec.hooks())
	defer d.Close()

	if err := d.Load([]lecture.Segment{
		textSegment("first chunk."),
		textSegment("second chunk."),
	}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	d.SetRate(1.5)
	if err := d.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	rec.waitEnded(t)

	synth.mu.Lock()
	defer synth.mu.Unlock()
	for i, req := range synth.requests {
		if req.Rate != 1.5 {
			t.Errorf("request[%d].Rate = %v, want 1.5", i, req.Rate)
		}
	}
}

func TestDriverSetRateClamps(t *testing.T) {
	d := NewDriver(nil, testConfig(), Hooks{})
	defer d.Close()

	d.SetRate(10)
	if got := d.Rate(); got != 2.0 {
		t.Errorf("Rate after SetRate(10) = %v, want 2.0", got)
	}
	d.SetRate(0.1)
	if got := d.Rate(); got != 0.5 {
		t.Errorf("Rate after SetRate(0.1) = %v, want 0.5", got)
	}
}

func TestDriverTogglePlayPause(t *testing.T) {
	cfg := testConfig()
	cfg.FallbackFloor = 20 * time.Millisecond
	cfg.FallbackBase = 20 * time.Millisecond

	d := NewDriver(nil, cfg, Hooks{})
	defer d.Close()

	if err := d.Load([]lecture.Segment{textSegment("toggling between playing and paused states works")}); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := d.TogglePlayPause(); err != nil {
		t.Fatalf("toggle to play: %v", err)
	}
	if !d.IsPlaying() {
		t.Fatal("not playing after first toggle")
	}
	if err := d.TogglePlayPause(); err != nil {
		t.Fatalf("toggle to pause: %v", err)
	}
	if !d.IsPaused() {
		t.Fatal("not paused after second toggle")
	}
}

func TestDriverClosedRejectsPlay(t *testing.T) {
	d := NewDriver(nil, testConfig(), Hooks{})
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := d.Play(); !errors.Is(err, ErrDriverClosed) {
		t.Errorf("Play after Close = %v, want ErrDriverClosed", err)
	}
}

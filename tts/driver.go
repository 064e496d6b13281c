package tts

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lectify/lectify/lecture"
)

// Driver owns the playback lifecycle. It feeds chunks to the synthesizer
// strictly one at a time, maps boundary events (or fallback timer ticks) to
// word highlights, and fires code reveals at their scheduled positions.
//
// Only one utterance is ever in flight; speaking chunks out of order or
// concurrently would desynchronize subtitles from audio irrecoverably.
// Lookahead prefetching pre-builds upcoming utterances without speaking
// them.
type Driver struct {
	mu sync.Mutex

	synth   Synthesizer
	cfg     Config
	hooks   Hooks
	machine *stateMachine

	chunks     []Chunk
	totalWords int

	// viewMu serializes subtitle-facing mutations (code trigger and
	// highlighter) between the playback goroutine and Stop.
	viewMu  sync.Mutex
	trigger *codeTrigger
	hl      *highlighter

	voices       []Voice
	voicesLoaded bool

	generation int
	sess       *session

	currentChunk int
	currentWord  int

	startTime          time.Time
	elapsedBeforePause time.Duration
	totalEstimate      time.Duration

	closed bool
}

// session carries the cancellation scope of one playback run. A stale
// session's callbacks and timers are discarded by generation comparison.
type session struct {
	ctx      context.Context
	cancel   context.CancelFunc
	gen      int
	pauseCh  chan struct{}
	resumeCh chan struct{}
}

// NewDriver creates a playback driver. synth may be nil, in which case
// playback degrades to timer-driven subtitle and code-reveal progression
// with no audio.
func NewDriver(synth Synthesizer, cfg Config, hooks Hooks) *Driver {
	d := &Driver{
		synth:   synth,
		cfg:     cfg.normalized(),
		hooks:   hooks,
		machine: newStateMachine(),
	}
	d.hl = newHighlighter(hooks)
	d.trigger = newCodeTrigger(nil, d.triggerHooks())
	return d
}

// triggerHooks wraps the caller's code-block hooks so reveals also suppress
// word highlighting while a block covers the subtitle area.
func (d *Driver) triggerHooks() Hooks {
	return Hooks{
		OnCodeBlockShown: func(i int) {
			d.hl.suppress(true)
			d.hooks.codeBlockShown(i)
		},
		OnCodeBlockHidden: func() {
			d.hl.suppress(false)
			d.hooks.codeBlockHidden()
		},
	}
}

// Load replaces the driver's content with freshly segmented lecture
// material. Any playback in progress is stopped first.
func (d *Driver) Load(segments []lecture.Segment) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDriverClosed
	}
	active := d.machine.status() != StatusIdle
	d.mu.Unlock()

	if active {
		if err := d.Stop(); err != nil {
			return err
		}
	}

	chunks := BuildChunks(segments)
	events := BuildCodeEvents(segments)

	d.mu.Lock()
	d.chunks = chunks
	d.totalWords = TotalWords(chunks)
	d.currentChunk = 0
	d.currentWord = 0
	d.mu.Unlock()

	d.viewMu.Lock()
	d.trigger = newCodeTrigger(events, d.triggerHooks())
	d.hl = newHighlighter(d.hooks)
	d.viewMu.Unlock()

	return nil
}

// Play starts playback from the beginning, or resumes when paused. Calling
// Play while already playing is a no-op.
func (d *Driver) Play() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDriverClosed
	}

	switch d.machine.status() {
	case StatusPlaying:
		d.mu.Unlock()
		return nil

	case StatusStopping:
		d.mu.Unlock()
		return ErrInvalidState

	case StatusPaused:
		d.machine.transition(StatusPlaying)
		d.startTime = time.Now().Add(-d.elapsedBeforePause)
		s := d.sess
		d.mu.Unlock()

		if d.synth != nil {
			if err := d.synth.Resume(); err != nil {
				log.Warn("resume failed", "err", err)
			}
		}
		if s != nil {
			select {
			case s.resumeCh <- struct{}{}:
			default:
			}
		}
		return nil
	}

	// Fresh start from idle.
	d.machine.transition(StatusPlaying)
	d.generation++
	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		ctx:      ctx,
		cancel:   cancel,
		gen:      d.generation,
		pauseCh:  make(chan struct{}, 1),
		resumeCh: make(chan struct{}, 1),
	}
	d.sess = s
	d.currentChunk = 0
	d.currentWord = 0
	d.elapsedBeforePause = 0
	d.startTime = time.Now()
	d.totalEstimate = d.estimateTotal()
	d.mu.Unlock()

	// Code events fire once per session; a prior run that ended naturally
	// left the trigger exhausted. Re-arm it for the new session.
	d.viewMu.Lock()
	d.trigger.reset()
	d.hl.clear()
	d.viewMu.Unlock()

	go d.playbackLoop(s)
	return nil
}

// Pause suspends playback. No-op unless currently playing.
func (d *Driver) Pause() error {
	d.mu.Lock()
	if !d.machine.canPause() {
		d.mu.Unlock()
		return nil
	}
	d.machine.transition(StatusPaused)
	d.elapsedBeforePause = time.Since(d.startTime)
	s := d.sess
	d.mu.Unlock()

	if d.synth != nil {
		if err := d.synth.Pause(); err != nil {
			log.Warn("pause failed", "err", err)
		}
	}
	if s != nil {
		select {
		case s.pauseCh <- struct{}{}:
		default:
		}
	}
	return nil
}

// Stop cancels any in-flight utterance, resets position and elapsed time to
// zero, clears any displayed code block, and returns the driver to idle,
// ready for a fresh Play. Valid from any state.
func (d *Driver) Stop() error {
	d.mu.Lock()
	if d.machine.status() == StatusIdle {
		d.mu.Unlock()
		return nil
	}
	d.machine.transition(StatusStopping)
	s := d.sess
	d.sess = nil
	d.generation++ // callbacks from the old session are now stale
	d.currentChunk = 0
	d.currentWord = 0
	d.elapsedBeforePause = 0
	firstText := ""
	if len(d.chunks) > 0 {
		firstText = d.chunks[0].Text
	}
	total := d.totalEstimate
	d.machine.transition(StatusIdle)
	d.mu.Unlock()

	if s != nil {
		s.cancel()
	}
	if d.synth != nil {
		if err := d.synth.Cancel(); err != nil && err != ErrNotSpeaking {
			log.Warn("cancel failed", "err", err)
		}
	}

	d.viewMu.Lock()
	d.trigger.reset()
	d.hl.clear()
	d.viewMu.Unlock()

	if firstText != "" {
		d.hooks.chunkShown(firstText)
	}
	d.hooks.progress(0)
	d.hooks.timeUpdate(0, total)
	return nil
}

// TogglePlayPause dispatches to Play or Pause based on the current status.
func (d *Driver) TogglePlayPause() error {
	if d.IsPlaying() {
		return d.Pause()
	}
	return d.Play()
}

// IsPlaying reports whether chunks are actively being spoken.
func (d *Driver) IsPlaying() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.machine.status() == StatusPlaying
}

// IsPaused reports whether playback is suspended mid-lecture.
func (d *Driver) IsPaused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.machine.status() == StatusPaused
}

// Status returns the current playback status.
func (d *Driver) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.machine.status()
}

// Progress returns the fraction of the word stream consumed so far.
func (d *Driver) Progress() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.totalWords == 0 {
		return 0
	}
	return float64(d.currentWord) / float64(d.totalWords)
}

// Elapsed returns wall-clock playback time, excluding paused intervals.
func (d *Driver) Elapsed() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.machine.status() {
	case StatusPlaying:
		return time.Since(d.startTime)
	case StatusPaused:
		return d.elapsedBeforePause
	default:
		return 0
	}
}

// TotalEstimate returns the estimated duration of the full lecture at the
// current rate.
func (d *Driver) TotalEstimate() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.totalEstimate > 0 {
		return d.totalEstimate
	}
	return d.estimateTotal()
}

// SetRate updates the speech rate. The change applies starting at the next
// chunk boundary.
func (d *Driver) SetRate(rate float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if rate < 0.5 {
		rate = 0.5
	}
	if rate > 2.0 {
		rate = 2.0
	}
	d.cfg.Rate = rate
}

// Rate returns the configured speech rate.
func (d *Driver) Rate() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg.Rate
}

// SetVoicePreference updates the voice preference. The change applies
// starting at the next chunk boundary.
func (d *Driver) SetVoicePreference(pref VoicePreference) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cfg.Voice = pref
}

// Chunks exposes the built chunks, for views that pre-render subtitles.
func (d *Driver) Chunks() []Chunk {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.chunks
}

// Close stops playback and releases the synthesizer.
func (d *Driver) Close() error {
	if err := d.Stop(); err != nil {
		return err
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	if d.synth != nil {
		return d.synth.Close()
	}
	return nil
}

// estimateTotal sums per-chunk duration estimates at the words-per-minute
// baseline scaled by the configured rate. Callers hold d.mu.
func (d *Driver) estimateTotal() time.Duration {
	wpm := float64(d.cfg.WordsPerMinute) * d.cfg.Rate
	if wpm <= 0 {
		return 0
	}
	var total time.Duration
	for _, c := range d.chunks {
		seconds := float64(len(c.Words)) / wpm * 60.0
		total += time.Duration(seconds * float64(time.Second))
	}
	return total
}

// stale reports whether the session has been superseded by a stop or a
// fresh play. Engine events arriving for a stale session are discarded.
func (d *Driver) stale(s *session) bool {
	if s.ctx.Err() != nil {
		return true
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.generation != s.gen
}

// playbackLoop runs one playback session: chunks strictly in order, each
// fully settled (highlights, code events, dwell) before the next begins.
func (d *Driver) playbackLoop(s *session) {
	d.loadVoices(s.ctx)

	d.mu.Lock()
	chunks := d.chunks
	d.mu.Unlock()

	if len(chunks) == 0 {
		// Nothing speakable: reveal whatever code is scheduled, then finish.
		if !d.stale(s) {
			d.viewMu.Lock()
			d.trigger.trigger(0)
			d.viewMu.Unlock()
		}
		d.finish(s)
		return
	}

	for i := range chunks {
		if d.stale(s) {
			return
		}
		if !d.waitIfPaused(s) {
			return
		}
		d.mu.Lock()
		d.currentChunk = i
		d.mu.Unlock()

		if !d.playChunk(s, i) {
			return
		}

		d.hooks.progress(float64(chunks[i].EndWord) / float64(d.totalWords))
		d.hooks.timeUpdate(d.Elapsed(), d.TotalEstimate())
	}

	d.finish(s)
}

// loadVoices fetches the engine's voice list once, bounded by the configured
// timeout. Failure degrades to an empty list; voice resolution then returns
// nil and the engine default is used.
func (d *Driver) loadVoices(ctx context.Context) {
	d.mu.Lock()
	loaded := d.voicesLoaded
	timeout := d.cfg.VoiceListTimeout
	d.mu.Unlock()
	if loaded || d.synth == nil {
		return
	}

	vctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	voices, err := d.synth.Voices(vctx)
	if err != nil {
		log.Warn("voice list unavailable", "err", err)
		voices = nil
	}

	d.mu.Lock()
	d.voices = voices
	d.voicesLoaded = true
	d.mu.Unlock()
}

// waitIfPaused blocks between chunks while the driver is paused. Returns
// false when the session was canceled.
func (d *Driver) waitIfPaused(s *session) bool {
	for {
		d.mu.Lock()
		paused := d.machine.status() == StatusPaused
		d.mu.Unlock()
		if !paused {
			// Drop any pause token already consumed by the status check.
			select {
			case <-s.pauseCh:
			default:
			}
			return true
		}
		select {
		case <-s.ctx.Done():
			return false
		case <-s.resumeCh:
		}
	}
}

// playChunk speaks one chunk end to end. Returns false when the session was
// canceled; utterance errors are logged and the chunk treated as consumed so
// one bad chunk never halts the lecture.
func (d *Driver) playChunk(s *session, idx int) bool {
	d.mu.Lock()
	chunk := d.chunks[idx]
	voice := ResolveVoice(d.voices, d.cfg.Voice)
	rate := d.cfg.Rate
	volume := d.cfg.Volume
	lookahead := d.cfg.Lookahead
	wordDur := d.cfg.wordDuration(rate)
	d.mu.Unlock()

	d.viewMu.Lock()
	d.hl.resetChunk()
	d.viewMu.Unlock()

	d.hooks.chunkShown(chunk.Text)

	d.viewMu.Lock()
	d.trigger.trigger(chunk.StartWord)
	d.viewMu.Unlock()

	var events <-chan Event
	if d.synth != nil {
		ev, err := d.synth.Speak(Request{
			Text:   chunk.Text,
			Voice:  voice,
			Rate:   rate,
			Pitch:  1.0,
			Volume: volume,
		})
		if err != nil {
			log.Warn("speech synthesis unavailable, continuing silently", "chunk", idx, "err", err)
		} else {
			events = ev
		}
	}

	d.prefetch(idx+1, lookahead, rate, volume)

	// With a live utterance, give real boundary events a head start before
	// the fallback timer takes over. Without one, the timer drives from the
	// first word.
	initial := wordDur
	if events != nil {
		initial = 600 * time.Millisecond
		if wordDur > initial {
			initial = wordDur
		}
	}
	fallback := time.NewTimer(initial)
	defer fallback.Stop()

	boundarySeen := false
	fallbackIdx := 0

	stopFallback := func() {
		if !fallback.Stop() {
			select {
			case <-fallback.C:
			default:
			}
		}
	}

	for {
		select {
		case <-s.ctx.Done():
			return false

		case <-s.pauseCh:
			d.mu.Lock()
			paused := d.machine.status() == StatusPaused
			d.mu.Unlock()
			if !paused {
				continue
			}
			stopFallback()
			select {
			case <-s.ctx.Done():
				return false
			case <-s.resumeCh:
				fallback.Reset(wordDur)
			}

		case ev, ok := <-events:
			if !ok {
				// Stream closed without an end event: the utterance was
				// canceled underneath us. Treat the chunk as consumed.
				return !d.stale(s) && d.finishChunk(s, chunk)
			}
			if d.stale(s) {
				return false
			}
			switch ev.Kind {
			case EventBoundary:
				boundarySeen = true
				stopFallback()
				d.advance(chunk, chunk.WordAt(ev.CharIndex))

			case EventEnd:
				// Some engines end without a single boundary; make sure the
				// last word still lights up.
				if !boundarySeen && len(chunk.Words) > 0 {
					d.advance(chunk, len(chunk.Words)-1)
				}
				return d.finishChunk(s, chunk)

			case EventError:
				log.Warn("utterance failed, skipping chunk", "chunk", idx, "err", ev.Err)
				return d.finishChunk(s, chunk)
			}

		case <-fallback.C:
			if boundarySeen {
				continue
			}
			if d.stale(s) {
				return false
			}
			if fallbackIdx >= len(chunk.Words) {
				if events != nil {
					go drainEvents(events)
				}
				return d.finishChunk(s, chunk)
			}
			d.advance(chunk, fallbackIdx)
			fallbackIdx++
			fallback.Reset(wordDur)
		}
	}
}

// prefetch pre-builds up to lookahead upcoming utterances so engines that
// synthesize ahead of playback can hide their latency. Nothing is spoken
// early.
func (d *Driver) prefetch(from, lookahead int, rate, volume float64) {
	if lookahead <= 0 {
		return
	}
	pw, ok := d.synth.(Prewarmer)
	if !ok {
		return
	}

	d.mu.Lock()
	voice := ResolveVoice(d.voices, d.cfg.Voice)
	chunks := d.chunks
	d.mu.Unlock()

	for i := from; i < from+lookahead && i < len(chunks); i++ {
		pw.Prewarm(Request{
			Text:   chunks[i].Text,
			Voice:  voice,
			Rate:   rate,
			Pitch:  1.0,
			Volume: volume,
		})
	}
}

// advance moves the word position to idx within the chunk: code events due
// at the new global position fire first, then the word is highlighted
// (unless a code block suppresses it).
func (d *Driver) advance(chunk Chunk, idx int) {
	if idx < 0 {
		return
	}
	global := chunk.StartWord + idx

	d.viewMu.Lock()
	d.trigger.trigger(global)
	d.hl.highlight(chunk, idx)
	d.viewMu.Unlock()

	d.mu.Lock()
	if global+1 > d.currentWord {
		d.currentWord = global + 1
	}
	d.mu.Unlock()
}

// finishChunk settles a completed chunk: code events due at the boundary are
// revealed, held for the dwell interval, then cleared. Returns false when
// the session went stale while dwelling.
func (d *Driver) finishChunk(s *session, chunk Chunk) bool {
	if d.stale(s) {
		return false
	}

	d.viewMu.Lock()
	d.trigger.trigger(chunk.EndWord)
	dwell := d.trigger.active()
	d.viewMu.Unlock()

	if dwell && d.cfg.CodeDwell > 0 {
		select {
		case <-s.ctx.Done():
			return false
		case <-time.After(d.cfg.CodeDwell):
		}
		if d.stale(s) {
			return false
		}
	}

	d.viewMu.Lock()
	d.trigger.trigger(chunk.EndWord + 1)
	d.trigger.hide()
	d.viewMu.Unlock()

	d.mu.Lock()
	if chunk.EndWord > d.currentWord {
		d.currentWord = chunk.EndWord
	}
	d.mu.Unlock()

	return true
}

// finish completes a playback session that ran to its natural end.
func (d *Driver) finish(s *session) {
	if d.stale(s) {
		return
	}

	d.viewMu.Lock()
	d.trigger.trigger(d.totalWords + 1)
	d.trigger.hide()
	d.hl.clear()
	d.viewMu.Unlock()

	if d.totalWords > 0 {
		d.hooks.progress(1)
	}
	d.hooks.timeUpdate(d.Elapsed(), d.TotalEstimate())

	// The terminal position survives into idle so Progress still reads 1.0
	// after a natural end; the next fresh Play rewinds the counters.
	d.mu.Lock()
	if d.generation == s.gen {
		d.machine.transition(StatusStopping)
		d.machine.transition(StatusIdle)
	}
	d.mu.Unlock()

	d.hooks.playbackEnded()
}

func drainEvents(ch <-chan Event) {
	for range ch {
	}
}

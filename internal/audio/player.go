// Package audio plays raw PCM through the system's audio device. Engines
// that synthesize to PCM (piper, gtts) hand their output here; subprocess
// engines that speak directly (espeak, say) don't need it.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// ErrPlayerClosed is returned when using a player after Close.
var ErrPlayerClosed = errors.New("audio player is closed")

// Config describes the PCM format the player accepts. The oto context is
// created once per process with a fixed format, so every engine feeding one
// player must resample to it.
type Config struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// DefaultConfig returns the format the engines normalize to.
func DefaultConfig() Config {
	return Config{
		SampleRate: 44100,
		Channels:   1,
		BitDepth:   16,
	}
}

// bytesPerSecond of PCM in this format.
func (c Config) bytesPerSecond() int {
	return c.SampleRate * c.Channels * c.BitDepth / 8
}

// Duration estimates how long a PCM buffer plays for.
func (c Config) Duration(n int) time.Duration {
	bps := c.bytesPerSecond()
	if bps == 0 {
		return 0
	}
	return time.Duration(float64(n) / float64(bps) * float64(time.Second))
}

// Player wraps one oto context. At most one stream plays at a time;
// starting a new stream stops the previous one.
type Player struct {
	cfg Config

	mu      sync.Mutex
	context *oto.Context
	current *oto.Player
	// The backing buffer must outlive playback; oto reads from it
	// incrementally.
	currentData []byte
	done        chan struct{}
	paused      bool
	volume      float64
	closed      bool
}

// NewPlayer opens the audio device. The oto context initializes
// asynchronously; NewPlayer waits for it so the first Play doesn't race
// device setup.
func NewPlayer(cfg Config) (*Player, error) {
	if cfg.SampleRate == 0 {
		cfg = DefaultConfig()
	}
	if cfg.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth %d, want 16", cfg.BitDepth)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open audio device: %w", err)
	}
	<-ready

	return &Player{
		cfg:     cfg,
		context: ctx,
		volume:  1.0,
	}, nil
}

// Play starts a PCM buffer and returns a channel that closes when the
// buffer finishes (or the stream is stopped). Any stream already playing is
// stopped first.
func (p *Player) Play(pcm []byte) (<-chan struct{}, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPlayerClosed
	}

	p.stopLocked()

	player := p.context.NewPlayer(bytes.NewReader(pcm))
	player.SetVolume(p.volume)
	player.Play()

	done := make(chan struct{})
	p.current = player
	p.currentData = pcm
	p.done = done
	p.paused = false

	go p.watch(player, done)
	return done, nil
}

// watch closes done once the stream drains. Polling is the only completion
// signal oto offers; a stream that isn't playing and wasn't paused by us
// has finished.
func (p *Player) watch(player *oto.Player, done chan struct{}) {
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		p.mu.Lock()
		if p.current != player {
			// Superseded or stopped; Stop already closed done.
			p.mu.Unlock()
			return
		}
		if !player.IsPlaying() && !p.paused {
			p.current = nil
			p.currentData = nil
			p.done = nil
			p.mu.Unlock()
			_ = player.Close()
			close(done)
			return
		}
		p.mu.Unlock()
	}
}

// Pause suspends the current stream, if any.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil {
		p.paused = true
		p.current.Pause()
	}
}

// Resume continues a paused stream, if any.
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil {
		p.paused = false
		p.current.Play()
	}
}

// Stop discards the current stream. The stream's done channel closes.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.current == nil {
		return
	}
	_ = p.current.Close()
	close(p.done)
	p.current = nil
	p.currentData = nil
	p.done = nil
}

// SetVolume adjusts playback volume (0.0 to 1.0), applying to the current
// stream and all later ones.
func (p *Player) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = v
	if p.current != nil {
		p.current.SetVolume(v)
	}
}

// Close stops playback and marks the player unusable. The oto context
// itself cannot be torn down; it lives for the process.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.stopLocked()
	p.closed = true
	return nil
}

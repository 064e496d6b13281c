package synth

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lectify/lectify/internal/audio"
	"github.com/lectify/lectify/internal/cache"
	"github.com/lectify/lectify/tts"
)

// Piper models emit 22050 Hz 16-bit mono PCM.
const piperSampleRate = 22050

// Piper synthesizes locally with piper neural voices and plays the PCM
// through the shared audio device. Synthesized audio is cached, and
// Prewarm lets the driver's lookahead hide synthesis latency.
type Piper struct {
	binary  string
	model   string
	dataDir string

	player *audio.Player
	cache  *cache.Cache

	mu       sync.Mutex
	cancel   context.CancelFunc
	closed   bool
	inflight map[string]struct{}
}

// NewPiper creates the piper backend.
func NewPiper(cfg Config) (*Piper, error) {
	binary := cfg.Binary
	if binary == "" {
		binary = "piper"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("piper not installed: %w", tts.ErrEngineUnavailable)
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = defaultPiperDataDir()
	}

	model := cfg.Model
	if model == "" {
		model = "en_US-lessac-medium"
	}
	if !strings.HasSuffix(model, ".onnx") {
		model = filepath.Join(dataDir, model+".onnx")
	}

	player, err := audio.NewPlayer(audio.Config{
		SampleRate: piperSampleRate,
		Channels:   1,
		BitDepth:   16,
	})
	if err != nil {
		return nil, err
	}

	return &Piper{
		binary:   binary,
		model:    model,
		dataDir:  dataDir,
		player:   player,
		cache:    openCache(cfg.CacheDir),
		inflight: make(map[string]struct{}),
	}, nil
}

func defaultPiperDataDir() string {
	if runtime.GOOS == "darwin" {
		return filepath.Join("/usr", "local", "share", "piper")
	}
	return filepath.Join("/usr", "share", "piper")
}

// Voices lists the installed models. Each .onnx file in the data directory
// is one voice; its ID is the model path Speak loads.
func (p *Piper) Voices(ctx context.Context) ([]tts.Voice, error) {
	matches, err := filepath.Glob(filepath.Join(p.dataDir, "*.onnx"))
	if err != nil || len(matches) == 0 {
		// Fall back to the configured model.
		return []tts.Voice{p.modelVoice(p.model)}, nil
	}

	voices := make([]tts.Voice, 0, len(matches))
	for _, m := range matches {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		voices = append(voices, p.modelVoice(m))
	}
	return voices, nil
}

// modelVoice derives voice metadata from a model filename such as
// en_US-lessac-medium.onnx.
func (p *Piper) modelVoice(path string) tts.Voice {
	name := strings.TrimSuffix(filepath.Base(path), ".onnx")
	lang := name
	if i := strings.Index(name, "-"); i > 0 {
		lang = name[:i]
	}
	return tts.Voice{
		ID:       path,
		Name:     name,
		Language: strings.ReplaceAll(lang, "_", "-"),
	}
}

func (p *Piper) modelFor(req tts.Request) string {
	if req.Voice != nil && req.Voice.ID != "" {
		return req.Voice.ID
	}
	return p.model
}

// Speak synthesizes (or fetches from cache) and plays one utterance. Piper
// reports no word boundaries; the driver paces highlights on its own.
func (p *Piper) Speak(req tts.Request) (<-chan tts.Event, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, tts.ErrEngineClosed
	}
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.mu.Unlock()

	p.player.SetVolume(req.Volume)

	events := make(chan tts.Event, 1)
	go func() {
		defer close(events)

		data, err := p.synthesize(ctx, req.Text, p.modelFor(req), req.Rate)
		if err != nil {
			if ctx.Err() == nil {
				events <- tts.Event{Kind: tts.EventError, Err: err}
			}
			return
		}
		if ctx.Err() != nil {
			return
		}

		done, err := p.player.Play(data)
		if err != nil {
			events <- tts.Event{Kind: tts.EventError, Err: err}
			return
		}
		select {
		case <-done:
			if ctx.Err() == nil {
				events <- tts.Event{Kind: tts.EventEnd}
			}
		case <-ctx.Done():
		}
	}()

	return events, nil
}

// synthesize runs piper for one utterance, consulting the cache first.
func (p *Piper) synthesize(ctx context.Context, text, model string, speechRate float64) ([]byte, error) {
	key := cache.Key(text, model, speechRate)
	if p.cache != nil {
		if data, ok := p.cache.Get(key); ok {
			return data, nil
		}
	}

	// length-scale stretches audio, so it is the inverse of rate.
	lengthScale := 1.0
	if speechRate > 0 {
		lengthScale = 1.0 / speechRate
	}

	cmd := exec.CommandContext(ctx, p.binary,
		"--model", model,
		"--output-raw",
		"--length-scale", fmt.Sprintf("%.3f", lengthScale),
	)
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("piper synthesis failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	data := stdout.Bytes()
	if len(data) == 0 {
		return nil, fmt.Errorf("piper produced no audio: %w", tts.ErrUtteranceFailed)
	}

	if p.cache != nil {
		if err := p.cache.Put(key, data); err != nil {
			log.Debug("audio cache write failed", "err", err)
		}
	}
	return data, nil
}

// Prewarm synthesizes a request into the cache without playing it.
// Duplicate prewarms of the same utterance coalesce.
func (p *Piper) Prewarm(req tts.Request) {
	if p.cache == nil {
		return
	}
	model := p.modelFor(req)
	key := cache.Key(req.Text, model, req.Rate)
	if _, ok := p.cache.Get(key); ok {
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if _, busy := p.inflight[key]; busy {
		p.mu.Unlock()
		return
	}
	p.inflight[key] = struct{}{}
	p.mu.Unlock()

	go func() {
		defer func() {
			p.mu.Lock()
			delete(p.inflight, key)
			p.mu.Unlock()
		}()
		if _, err := p.synthesize(context.Background(), req.Text, model, req.Rate); err != nil {
			log.Debug("prewarm failed", "err", err)
		}
	}()
}

// Pause suspends playback of the current utterance.
func (p *Piper) Pause() error {
	p.player.Pause()
	return nil
}

// Resume continues a paused utterance.
func (p *Piper) Resume() error {
	p.player.Resume()
	return nil
}

// Cancel discards the in-flight utterance.
func (p *Piper) Cancel() error {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()
	p.player.Stop()
	return nil
}

// Close releases the audio device and the cache.
func (p *Piper) Close() error {
	_ = p.Cancel()
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	if p.cache != nil {
		_ = p.cache.Close()
	}
	return p.player.Close()
}

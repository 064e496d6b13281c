package synth

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/lectify/lectify/internal/audio"
	"github.com/lectify/lectify/internal/cache"
	"github.com/lectify/lectify/tts"
)

const (
	gttsSampleRate = 44100
	gttsTimeout    = 30 * time.Second

	// Google has an undocumented request length ceiling; refuse early
	// rather than fail mid-lecture.
	gttsMaxTextSize = 5000
)

// Lines look like "    af: Afrikaans".
var gttsLangRe = regexp.MustCompile(`^\s*([a-zA-Z-]+):\s+(.+)$`)

// GTTS synthesizes through Google Translate's TTS endpoint via gtts-cli,
// converting the MP3 to PCM with ffmpeg. Requests are rate limited so the
// endpoint doesn't block us, and the PCM is cached aggressively: network
// synthesis is by far the slowest backend.
type GTTS struct {
	language string
	tempDir  string

	limiter *rate.Limiter
	player  *audio.Player
	cache   *cache.Cache

	mu       sync.Mutex
	cancel   context.CancelFunc
	closed   bool
	inflight map[string]struct{}
}

// NewGTTS creates the gtts backend.
func NewGTTS(cfg Config) (*GTTS, error) {
	if !haveGTTS() {
		return nil, fmt.Errorf("gtts-cli or ffmpeg not installed: %w", tts.ErrEngineUnavailable)
	}

	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}
	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 50
	}

	player, err := audio.NewPlayer(audio.Config{
		SampleRate: gttsSampleRate,
		Channels:   1,
		BitDepth:   16,
	})
	if err != nil {
		return nil, err
	}

	return &GTTS{
		language: lang,
		tempDir:  tempDir,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		player:   player,
		cache:    openCache(cfg.CacheDir),
		inflight: make(map[string]struct{}),
	}, nil
}

// Voices lists gtts-cli's supported languages; each language is one voice.
func (g *GTTS) Voices(ctx context.Context) ([]tts.Voice, error) {
	out, err := exec.CommandContext(ctx, "gtts-cli", "--all").Output()
	if err != nil {
		return nil, fmt.Errorf("unable to list gtts languages: %w", err)
	}
	return parseGTTSLanguages(out)
}

func parseGTTSLanguages(out []byte) ([]tts.Voice, error) {
	var voices []tts.Voice
	for _, line := range strings.Split(string(out), "\n") {
		m := gttsLangRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		voices = append(voices, tts.Voice{
			ID:       m[1],
			Name:     m[2],
			Language: m[1],
		})
	}
	if len(voices) == 0 {
		return nil, tts.ErrNoVoices
	}
	return voices, nil
}

func (g *GTTS) languageFor(req tts.Request) string {
	if req.Voice != nil && req.Voice.ID != "" {
		return req.Voice.ID
	}
	return g.language
}

// Speak synthesizes (or fetches from cache) and plays one utterance.
func (g *GTTS) Speak(req tts.Request) (<-chan tts.Event, error) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil, tts.ErrEngineClosed
	}
	if g.cancel != nil {
		g.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	g.mu.Unlock()

	g.player.SetVolume(req.Volume)

	events := make(chan tts.Event, 1)
	go func() {
		defer close(events)

		data, err := g.synthesize(ctx, req.Text, g.languageFor(req), req.Rate)
		if err != nil {
			if ctx.Err() == nil {
				events <- tts.Event{Kind: tts.EventError, Err: err}
			}
			return
		}
		if ctx.Err() != nil {
			return
		}

		done, err := g.player.Play(data)
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

// synthesize fetches MP3 from the network and converts it to PCM,
// consulting the cache first.
func (g *GTTS) synthesize(ctx context.Context, text, lang string, speechRate float64) ([]byte, error) {
	if text == "" {
		return nil, tts.ErrUtteranceFailed
	}
	if len(text) > gttsMaxTextSize {
		return nil, fmt.Errorf("text too long for gtts: %d characters", len(text))
	}

	key := cache.Key(text, lang, speechRate)
	if g.cache != nil {
		if data, ok := g.cache.Get(key); ok {
			return data, nil
		}
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	ctx, cancelTimeout := context.WithTimeout(ctx, gttsTimeout)
	defer cancelTimeout()

	mp3, err := g.fetchMP3(ctx, text, lang)
	if err != nil {
		return nil, err
	}
	pcm, err := g.convertToPCM(ctx, mp3, speechRate)
	if err != nil {
		return nil, err
	}

	if g.cache != nil {
		if err := g.cache.Put(key, pcm); err != nil {
			log.Debug("audio cache write failed", "err", err)
		}
	}
	return pcm, nil
}

func (g *GTTS) fetchMP3(ctx context.Context, text, lang string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "gtts-cli", text, "-l", lang, "-o", "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("gtts-cli failed: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("gtts-cli produced no audio: %w", tts.ErrUtteranceFailed)
	}
	return out, nil
}

// convertToPCM shells out to ffmpeg. Speed is applied here with atempo,
// since Google's endpoint only knows normal and slow.
func (g *GTTS) convertToPCM(ctx context.Context, mp3 []byte, speechRate float64) ([]byte, error) {
	tmp, err := os.CreateTemp(g.tempDir, "lectify-*.mp3")
	if err != nil {
		return nil, fmt.Errorf("unable to create temp mp3: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.Write(mp3); err != nil {
		return nil, fmt.Errorf("unable to write temp mp3: %w", err)
	}

	args := []string{
		"-i", tmp.Name(),
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", gttsSampleRate),
		"-ac", "1",
	}
	if speechRate > 0 && speechRate != 1.0 {
		// atempo accepts 0.5 to 2.0, the same range the driver clamps to.
		args = append(args, "-filter:a", fmt.Sprintf("atempo=%.3f", speechRate))
	}
	args = append(args, "pipe:1")

	out, err := exec.CommandContext(ctx, "ffmpeg", args...).Output()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg conversion failed: %w", err)
	}
	return out, nil
}

// Prewarm fetches a request into the cache without playing it.
func (g *GTTS) Prewarm(req tts.Request) {
	if g.cache == nil {
		return
	}
	lang := g.languageFor(req)
	key := cache.Key(req.Text, lang, req.Rate)
	if _, ok := g.cache.Get(key); ok {
		return
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	if _, busy := g.inflight[key]; busy {
		g.mu.Unlock()
		return
	}
	g.inflight[key] = struct{}{}
	g.mu.Unlock()

	go func() {
		defer func() {
			g.mu.Lock()
			delete(g.inflight, key)
			g.mu.Unlock()
		}()
		if _, err := g.synthesize(context.Background(), req.Text, lang, req.Rate); err != nil {
			log.Debug("prewarm failed", "err", err)
		}
	}()
}

// Pause suspends playback of the current utterance. Synthesis in flight
// continues; only audible output pauses.
func (g *GTTS) Pause() error {
	g.player.Pause()
	return nil
}

// Resume continues a paused utterance.
func (g *GTTS) Resume() error {
	g.player.Resume()
	return nil
}

// Cancel discards the in-flight utterance.
func (g *GTTS) Cancel() error {
	g.mu.Lock()
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.mu.Unlock()
	g.player.Stop()
	return nil
}

// Close releases the audio device and the cache.
func (g *GTTS) Close() error {
	_ = g.Cancel()
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	if g.cache != nil {
		_ = g.cache.Close()
	}
	return g.player.Close()
}

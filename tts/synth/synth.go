// Package synth provides the speech-synthesis backends: espeak and say
// speak through their own subprocesses, piper and gtts synthesize PCM that
// plays through the shared audio device, and mock (in its own package)
// scripts utterances for tests and demos.
package synth

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/lectify/lectify/internal/cache"
	"github.com/lectify/lectify/tts"
	"github.com/lectify/lectify/tts/synth/mock"
)

// Config selects and tunes a backend. Engine "auto" probes the host for
// whatever is installed.
type Config struct {
	Engine   string
	Language string

	// Binary overrides the engine's executable path.
	Binary string

	// Piper model selection.
	Model   string
	DataDir string

	// CacheDir enables the on-disk audio cache for PCM engines. Empty
	// disables the disk tier; synthesis still caches in memory.
	CacheDir string

	// TempDir for intermediate files (gtts). Empty uses the system temp.
	TempDir string

	// RequestsPerMinute throttles network-backed synthesis (gtts).
	RequestsPerMinute int
}

// New builds the configured synthesizer.
func New(cfg Config) (tts.Synthesizer, error) {
	switch cfg.Engine {
	case "", "auto":
		return autodetect(cfg)
	case "espeak":
		return NewEspeak(cfg)
	case "say":
		return NewSay(cfg)
	case "piper":
		return NewPiper(cfg)
	case "gtts":
		return NewGTTS(cfg)
	case "mock":
		return mock.New(), nil
	case "off":
		// Subtitles and code reveals without audio.
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown tts engine %q", cfg.Engine)
	}
}

// autodetect probes for installed engines in preference order: native
// platform speech first, then local neural synthesis, then networked.
func autodetect(cfg Config) (tts.Synthesizer, error) {
	if runtime.GOOS == "darwin" {
		if _, err := exec.LookPath("say"); err == nil {
			log.Debug("autodetected tts engine", "engine", "say")
			return NewSay(cfg)
		}
	}
	if _, err := exec.LookPath("piper"); err == nil {
		log.Debug("autodetected tts engine", "engine", "piper")
		return NewPiper(cfg)
	}
	for _, bin := range []string{"espeak-ng", "espeak"} {
		if _, err := exec.LookPath(bin); err == nil {
			log.Debug("autodetected tts engine", "engine", bin)
			return NewEspeak(cfg)
		}
	}
	if haveGTTS() {
		log.Debug("autodetected tts engine", "engine", "gtts")
		return NewGTTS(cfg)
	}
	return nil, tts.ErrEngineUnavailable
}

func haveGTTS() bool {
	if _, err := exec.LookPath("gtts-cli"); err != nil {
		return false
	}
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// openCache builds the audio cache for PCM engines. Cache failures are not
// fatal; the engine just synthesizes every time.
func openCache(dir string) *cache.Cache {
	cfg := cache.DefaultConfig()
	cfg.Dir = dir
	c, err := cache.New(cfg)
	if err != nil {
		log.Warn("audio cache unavailable", "err", err)
		return nil
	}
	return c
}

package tts

import "time"

// Config holds playback tuning. The timing values are heuristics carried as
// configuration rather than constants: the words-per-minute baseline sizes
// the total-duration estimate, and the fallback interval paces word
// highlighting when the engine reports no boundaries.
type Config struct {
	// Engine names the synthesizer backend (informational here; the
	// synth package resolves it).
	Engine string `yaml:"engine" env:"LECTIFY_TTS_ENGINE" envDefault:"auto"`

	// Voice preference: default, female, or male.
	Voice VoicePreference `yaml:"voice" env:"LECTIFY_TTS_VOICE" envDefault:"default"`

	// Rate is the speech rate multiplier, clamped to [0.5, 2.0].
	Rate float64 `yaml:"rate" env:"LECTIFY_TTS_RATE" envDefault:"1.0"`

	// Volume level (0.0 to 1.0).
	Volume float64 `yaml:"volume" env:"LECTIFY_TTS_VOLUME" envDefault:"1.0"`

	// Lookahead is how many upcoming chunks are pre-built (never pre-spoken)
	// while the current one plays. 0 disables prefetch.
	Lookahead int `yaml:"lookahead" env:"LECTIFY_TTS_LOOKAHEAD" envDefault:"3"`

	// WordsPerMinute is the speaking-rate baseline used for duration
	// estimates.
	WordsPerMinute int `yaml:"words_per_minute" env:"LECTIFY_TTS_WPM" envDefault:"150"`

	// FallbackFloor and FallbackBase size the per-word fallback interval:
	// max(FallbackFloor, FallbackBase/rate).
	FallbackFloor time.Duration `yaml:"fallback_floor" env:"LECTIFY_TTS_FALLBACK_FLOOR" envDefault:"180ms"`
	FallbackBase  time.Duration `yaml:"fallback_base" env:"LECTIFY_TTS_FALLBACK_BASE" envDefault:"320ms"`

	// VoiceListTimeout caps the one-time wait for the engine's voice list;
	// on timeout the driver proceeds with an empty list.
	VoiceListTimeout time.Duration `yaml:"voice_list_timeout" env:"LECTIFY_TTS_VOICE_TIMEOUT" envDefault:"2s"`

	// CodeDwell is how long a code block revealed at a chunk boundary stays
	// on screen before playback moves on.
	CodeDwell time.Duration `yaml:"code_dwell" env:"LECTIFY_TTS_CODE_DWELL" envDefault:"800ms"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Engine:           "auto",
		Voice:            VoiceDefault,
		Rate:             1.0,
		Volume:           1.0,
		Lookahead:        3,
		WordsPerMinute:   150,
		FallbackFloor:    180 * time.Millisecond,
		FallbackBase:     320 * time.Millisecond,
		VoiceListTimeout: 2 * time.Second,
		CodeDwell:        800 * time.Millisecond,
	}
}

// normalized returns a copy with out-of-range values pulled back to defaults.
func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.Rate < 0.5 || c.Rate > 2.0 {
		c.Rate = d.Rate
	}
	if c.Volume < 0 || c.Volume > 1.0 {
		c.Volume = d.Volume
	}
	if c.Lookahead < 0 {
		c.Lookahead = 0
	}
	if c.WordsPerMinute <= 0 {
		c.WordsPerMinute = d.WordsPerMinute
	}
	if c.FallbackFloor <= 0 {
		c.FallbackFloor = d.FallbackFloor
	}
	if c.FallbackBase <= 0 {
		c.FallbackBase = d.FallbackBase
	}
	if c.VoiceListTimeout <= 0 {
		c.VoiceListTimeout = d.VoiceListTimeout
	}
	if c.CodeDwell < 0 {
		c.CodeDwell = 0
	}
	return c
}

// wordDuration returns the fallback highlight interval for a speech rate.
func (c Config) wordDuration(rate float64) time.Duration {
	if rate <= 0 {
		rate = 1.0
	}
	interval := time.Duration(float64(c.FallbackBase) / rate)
	if interval < c.FallbackFloor {
		return c.FallbackFloor
	}
	return interval
}

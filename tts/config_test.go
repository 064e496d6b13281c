package tts

import (
	"testing"
	"time"
)

func TestConfigNormalized(t *testing.T) {
	c := Config{
		Rate:      5.0,
		Volume:    -1,
		Lookahead: -2,
	}.normalized()

	if c.Rate != 1.0 {
		t.Errorf("Rate = %v, want default 1.0", c.Rate)
	}
	if c.Volume != 1.0 {
		t.Errorf("Volume = %v, want default 1.0", c.Volume)
	}
	if c.Lookahead != 0 {
		t.Errorf("Lookahead = %d, want 0", c.Lookahead)
	}
	if c.WordsPerMinute != 150 {
		t.Errorf("WordsPerMinute = %d, want 150", c.WordsPerMinute)
	}
	if c.VoiceListTimeout != 2*time.Second {
		t.Errorf("VoiceListTimeout = %v, want 2s", c.VoiceListTimeout)
	}
}

func TestWordDuration(t *testing.T) {
	cfg := DefaultConfig()

	tt := []struct {
		name string
		rate float64
		want time.Duration
	}{
		{"normal rate", 1.0, 320 * time.Millisecond},
		{"double rate hits the floor", 2.0, 180 * time.Millisecond},
		{"half rate stretches", 0.5, 640 * time.Millisecond},
		{"zero rate treated as normal", 0, 320 * time.Millisecond},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := cfg.wordDuration(tc.rate); got != tc.want {
				t.Errorf("wordDuration(%v) = %v, want %v", tc.rate, got, tc.want)
			}
		})
	}
}

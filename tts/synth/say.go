package synth

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/lectify/lectify/tts"
)

const sayBaseRate = 175 // words per minute

// Example line: "Samantha            en_US    # Hello, my name is Samantha."
var sayVoiceRe = regexp.MustCompile(`^(.+?)\s{2,}([a-zA-Z]{2}[_-][a-zA-Z]+)\s+#\s*(.*)$`)

// Say speaks through the macOS `say` command, one subprocess per utterance.
type Say struct {
	procEngine
	binary string
}

// NewSay creates the say backend.
func NewSay(cfg Config) (*Say, error) {
	binary := cfg.Binary
	if binary == "" {
		binary = "say"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("say not installed: %w", tts.ErrEngineUnavailable)
	}
	return &Say{binary: binary}, nil
}

// Voices parses `say -v ?` output. say doesn't report gender; the resolver
// falls back to its name heuristics.
func (s *Say) Voices(ctx context.Context) ([]tts.Voice, error) {
	out, err := exec.CommandContext(ctx, s.binary, "-v", "?").Output()
	if err != nil {
		return nil, fmt.Errorf("unable to list say voices: %w", err)
	}
	return parseSayVoices(out)
}

func parseSayVoices(out []byte) ([]tts.Voice, error) {
	var voices []tts.Voice
	for _, line := range strings.Split(strings.ReplaceAll(string(out), "\r\n", "\n"), "\n") {
		m := sayVoiceRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		voices = append(voices, tts.Voice{
			ID:       m[1],
			Name:     m[1],
			Language: m[2],
		})
	}
	if len(voices) == 0 {
		return nil, tts.ErrNoVoices
	}
	return voices, nil
}

// Speak runs one say process for the request.
func (s *Say) Speak(req tts.Request) (<-chan tts.Event, error) {
	args := []string{"-r", strconv.Itoa(scaled(sayBaseRate, req.Rate))}
	if req.Voice != nil {
		args = append(args, "-v", req.Voice.ID)
	}
	args = append(args, req.Text)
	return s.speak(s.binary, args...)
}

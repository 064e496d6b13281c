package synth

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/lectify/lectify/tts"
)

// espeak's defaults: 175 words per minute, amplitude 100, pitch 50.
const (
	espeakBaseRate  = 175
	espeakBaseAmp   = 100
	espeakBasePitch = 50
)

// Espeak speaks through espeak-ng (or classic espeak), one subprocess per
// utterance.
type Espeak struct {
	procEngine
	binary   string
	language string
}

// NewEspeak creates the espeak backend.
func NewEspeak(cfg Config) (*Espeak, error) {
	binary := cfg.Binary
	if binary == "" {
		for _, b := range []string{"espeak-ng", "espeak"} {
			if _, err := exec.LookPath(b); err == nil {
				binary = b
				break
			}
		}
	}
	if binary == "" {
		return nil, fmt.Errorf("espeak not installed: %w", tts.ErrEngineUnavailable)
	}

	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}
	return &Espeak{binary: binary, language: lang}, nil
}

// Voices parses `espeak --voices=LANG` output. Columns are priority,
// language, gender code, voice name, then the voice file used with -v.
func (e *Espeak) Voices(ctx context.Context) ([]tts.Voice, error) {
	out, err := exec.CommandContext(ctx, e.binary, "--voices="+e.language).Output()
	if err != nil {
		return nil, fmt.Errorf("unable to list espeak voices: %w", err)
	}
	return parseEspeakVoices(out)
}

func parseEspeakVoices(out []byte) ([]tts.Voice, error) {
	var voices []tts.Voice
	for i, line := range strings.Split(string(out), "\n") {
		if i == 0 { // header
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		voices = append(voices, tts.Voice{
			ID:       fields[4],
			Name:     fields[3],
			Language: fields[1],
			Gender:   espeakGender(fields[2]),
		})
	}
	if len(voices) == 0 {
		return nil, tts.ErrNoVoices
	}
	return voices, nil
}

func espeakGender(code string) string {
	switch code {
	case "M":
		return "male"
	case "F":
		return "female"
	default:
		return ""
	}
}

// Speak runs one espeak process for the request.
func (e *Espeak) Speak(req tts.Request) (<-chan tts.Event, error) {
	voice := e.language
	if req.Voice != nil {
		voice = req.Voice.ID
	}

	args := []string{
		"-v", voice,
		"-s", strconv.Itoa(scaled(espeakBaseRate, req.Rate)),
		"-a", strconv.Itoa(scaled(espeakBaseAmp, req.Volume)),
		"-p", strconv.Itoa(scaled(espeakBasePitch, req.Pitch)),
		req.Text,
	}
	return e.speak(e.binary, args...)
}

// scaled multiplies an engine default by a request factor, treating an
// unset factor as 1.0.
func scaled(base int, factor float64) int {
	if factor <= 0 {
		return base
	}
	return int(float64(base) * factor)
}

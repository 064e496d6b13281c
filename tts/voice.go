package tts

import "strings"

// VoicePreference selects which kind of voice to resolve.
type VoicePreference string

const (
	// VoiceDefault picks the engine's first voice.
	VoiceDefault VoicePreference = "default"
	// VoiceFemale prefers a female-sounding voice.
	VoiceFemale VoicePreference = "female"
	// VoiceMale prefers a male-sounding voice.
	VoiceMale VoicePreference = "male"
)

// Name tokens that suggest a voice's gender when the engine doesn't report
// one. Matching is case-insensitive on the voice name.
var (
	femaleTokens = []string{"female", "woman", "girl", "samantha", "victoria"}
	maleTokens   = []string{"male", "man", "boy", "david", "daniel", "alex"}
)

// ResolveVoice picks a voice from the available set for the given
// preference. It fails soft: nil on an empty list, first voice when no
// heuristic match is found. Callers treat a nil voice as "use engine
// default".
func ResolveVoice(voices []Voice, pref VoicePreference) *Voice {
	if len(voices) == 0 {
		return nil
	}
	if pref == VoiceDefault || pref == "" {
		return &voices[0]
	}

	tokens := femaleTokens
	gender := "female"
	if pref == VoiceMale {
		tokens = maleTokens
		gender = "male"
	}

	for i := range voices {
		if strings.EqualFold(voices[i].Gender, gender) {
			return &voices[i]
		}
	}
	for i := range voices {
		name := strings.ToLower(voices[i].Name)
		for _, tok := range tokens {
			if strings.Contains(name, tok) {
				return &voices[i]
			}
		}
	}

	return &voices[0]
}

package tts

import "errors"

// Common errors for the playback core.
var (
	// Engine errors
	ErrEngineUnavailable = errors.New("speech engine is not available")
	ErrEngineClosed      = errors.New("speech engine has been closed")
	ErrNoVoices          = errors.New("no voices available")
	ErrUtteranceFailed   = errors.New("utterance failed")
	ErrNotSpeaking       = errors.New("no utterance in flight")

	// Driver errors
	ErrDriverClosed = errors.New("playback driver has been closed")
	ErrInvalidState = errors.New("invalid state for operation")
)

package tts

// Status represents the playback lifecycle state.
type Status int

const (
	// StatusIdle indicates the driver has no playback in progress.
	StatusIdle Status = iota
	// StatusPlaying indicates chunks are being spoken.
	StatusPlaying
	// StatusPaused indicates playback is suspended mid-chunk.
	StatusPaused
	// StatusStopping indicates a stop is being processed; the driver
	// returns to StatusIdle once the in-flight utterance is torn down.
	StatusStopping
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// stateMachine guards playback status transitions. Stop is reachable from
// every state; a fresh Play is only reachable from idle.
type stateMachine struct {
	current     Status
	transitions map[Status][]Status
}

func newStateMachine() *stateMachine {
	return &stateMachine{
		current: StatusIdle,
		transitions: map[Status][]Status{
			StatusIdle:     {StatusPlaying, StatusStopping},
			StatusPlaying:  {StatusPaused, StatusStopping},
			StatusPaused:   {StatusPlaying, StatusStopping},
			StatusStopping: {StatusIdle},
		},
	}
}

// transition attempts to move to the given status, reporting whether the
// move was legal.
func (sm *stateMachine) transition(to Status) bool {
	for _, s := range sm.transitions[sm.current] {
		if s == to {
			sm.current = to
			return true
		}
	}
	return false
}

func (sm *stateMachine) status() Status { return sm.current }

// canPlay reports whether Play may start or resume playback.
func (sm *stateMachine) canPlay() bool {
	return sm.current == StatusIdle || sm.current == StatusPaused
}

// canPause reports whether Pause is meaningful right now.
func (sm *stateMachine) canPause() bool {
	return sm.current == StatusPlaying
}

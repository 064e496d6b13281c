package tts

import "testing"

func TestStateMachineTransitions(t *testing.T) {
	tt := []struct {
		name string
		from Status
		to   Status
		ok   bool
	}{
		{"idle to playing", StatusIdle, StatusPlaying, true},
		{"idle to stopping", StatusIdle, StatusStopping, true},
		{"idle to paused", StatusIdle, StatusPaused, false},
		{"playing to paused", StatusPlaying, StatusPaused, true},
		{"playing to stopping", StatusPlaying, StatusStopping, true},
		{"playing to idle", StatusPlaying, StatusIdle, false},
		{"paused to playing", StatusPaused, StatusPlaying, true},
		{"paused to stopping", StatusPaused, StatusStopping, true},
		{"stopping to idle", StatusStopping, StatusIdle, true},
		{"stopping to playing", StatusStopping, StatusPlaying, false},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			sm := newStateMachine()
			sm.current = tc.from
			if got := sm.transition(tc.to); got != tc.ok {
				t.Errorf("transition(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
			}
			if tc.ok && sm.status() != tc.to {
				t.Errorf("status = %s, want %s", sm.status(), tc.to)
			}
			if !tc.ok && sm.status() != tc.from {
				t.Errorf("illegal transition moved state to %s", sm.status())
			}
		})
	}
}

func TestStateMachineGuards(t *testing.T) {
	sm := newStateMachine()
	if !sm.canPlay() {
		t.Error("canPlay from idle = false, want true")
	}
	if sm.canPause() {
		t.Error("canPause from idle = true, want false")
	}

	sm.transition(StatusPlaying)
	if sm.canPlay() {
		t.Error("canPlay while playing = true, want false")
	}
	if !sm.canPause() {
		t.Error("canPause while playing = false, want true")
	}

	sm.transition(StatusPaused)
	if !sm.canPlay() {
		t.Error("canPlay while paused = false, want true")
	}
}

func TestStatusString(t *testing.T) {
	tt := []struct {
		status Status
		want   string
	}{
		{StatusIdle, "idle"},
		{StatusPlaying, "playing"},
		{StatusPaused, "paused"},
		{StatusStopping, "stopping"},
		{Status(99), "unknown"},
	}
	for _, tc := range tt {
		if got := tc.status.String(); got != tc.want {
			t.Errorf("Status(%d).String() = %q, want %q", tc.status, got, tc.want)
		}
	}
}

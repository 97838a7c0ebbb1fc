// Package recording implements the start/stop bookkeeping for the
// recording-in-progress flag named in spec.md §7's error table. It is
// adapted from original_source/src/app/state.rs's RecordingState, whose
// AlreadyRecording/NoRecordingInProgress misuse errors spec.md's
// distillation kept without a state machine to produce them. The actual
// encoder pipeline remains out of scope per spec.md §1's Non-goals; this
// package only guards the Start/Stop transitions.
package recording

import "github.com/cosmic-utils/camera-sub001/pipeline"

// State tracks whether a recording is in progress. The zero value is
// Idle.
type State struct {
	recording bool
}

// Start transitions Idle -> Recording. Calling it while already
// recording returns pipeline.ErrAlreadyRecording and leaves the state
// unchanged.
func (s *State) Start() error {
	if s.recording {
		return pipeline.ErrAlreadyRecording
	}
	s.recording = true
	return nil
}

// Stop transitions Recording -> Idle. Calling it while not recording
// returns pipeline.ErrNoRecordingInProgress and leaves the state
// unchanged.
func (s *State) Stop() error {
	if !s.recording {
		return pipeline.ErrNoRecordingInProgress
	}
	s.recording = false
	return nil
}

// Recording reports whether a recording is currently in progress.
func (s *State) Recording() bool { return s.recording }

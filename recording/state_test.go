package recording

import (
	"errors"
	"testing"

	"github.com/cosmic-utils/camera-sub001/pipeline"
)

func TestStartThenStopRoundTrips(t *testing.T) {
	var s State
	if s.Recording() {
		t.Fatalf("expected the zero value to be idle")
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !s.Recording() {
		t.Fatalf("expected Recording() to be true after Start")
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if s.Recording() {
		t.Fatalf("expected Recording() to be false after Stop")
	}
}

func TestStartWhileRecordingFails(t *testing.T) {
	var s State
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(); !errors.Is(err, pipeline.ErrAlreadyRecording) {
		t.Fatalf("expected ErrAlreadyRecording, got %v", err)
	}
}

func TestStopWithoutRecordingFails(t *testing.T) {
	var s State
	if err := s.Stop(); !errors.Is(err, pipeline.ErrNoRecordingInProgress) {
		t.Fatalf("expected ErrNoRecordingInProgress, got %v", err)
	}
}

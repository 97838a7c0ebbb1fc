package pipeline

import "errors"

// Sentinel errors for the error kinds named in §7's error table. Kinds
// whose "Local handling" column is a dash still get a sentinel here so
// callers can match on them with errors.Is even though this package
// does nothing with them beyond surfacing.
var (
	ErrDeviceNotFound      = errors.New("pipeline: device not found")
	ErrFormatNotSupported  = errors.New("pipeline: format not supported")
	ErrInitializationFailed = errors.New("pipeline: initialization failed")
	ErrReadbackFailed      = errors.New("pipeline: GPU readback failed")
	ErrBurstMergeFailed    = errors.New("pipeline: burst merge failed")
	ErrNoRecordingInProgress = errors.New("pipeline: no recording in progress")
	ErrAlreadyRecording    = errors.New("pipeline: already recording")

	// ErrStillCaptureTimeout is the sentinel for a still capture that
	// exceeds the 2s timeout named in §5. No code in this module
	// implements that timeout or returns this error.
	ErrStillCaptureTimeout = errors.New("pipeline: still capture timed out")
)

// Package camerabackend defines the core's only dependency on the
// outside hardware world (§6): an abstract camera device and format
// enumeration, frame-stream delivery, and lifecycle control. Concrete
// implementations (PipeWire, libcamera, V4L2, USB) live outside this
// module; this package only defines the contract and a fake used by
// pipeline's tests.
package camerabackend

import (
	"context"
	"time"

	"github.com/cosmic-utils/camera-sub001/frame"
)

// SensorType distinguishes color sensors from depth sensors, since
// depth devices surface a different Format/frame shape.
type SensorType int

const (
	SensorColor SensorType = iota
	SensorDepth
)

// Device identifies one enumerable camera device.
type Device struct {
	ID   string
	Name string
}

// Format describes one capture mode a Device supports.
type Format struct {
	Width       int
	Height      int
	FrameRate   float64 // 0 means unspecified
	PixelFormat frame.PixelFormat
	SensorType  SensorType
}

// Backend is the core's abstract camera backend interface (§6).
// Implementations must be safe for the call patterns pipeline.FramePipeline
// uses: initialize/switch/apply_format are called from the scheduler
// goroutine; PreviewReceiver's channel is read from a background worker.
type Backend interface {
	Enumerate(ctx context.Context) ([]Device, error)
	GetFormats(ctx context.Context, device Device, videoMode bool) ([]Format, error)

	Initialize(ctx context.Context, device Device, format Format) error
	Shutdown(ctx context.Context) error
	IsInitialized() bool

	SwitchCamera(ctx context.Context, device Device) error
	ApplyFormat(ctx context.Context, format Format) error

	// CaptureStill blocks for up to 2s per §5; callers should apply
	// their own timeout and fall back to the latest preview frame on
	// expiry rather than relying on the backend to do so.
	CaptureStill(ctx context.Context) (*frame.Frame, error)

	// PreviewReceiver returns the frame-stream channel. It is consumed
	// exactly once per Initialize; calling it again before a new
	// Initialize is undefined.
	PreviewReceiver() <-chan *frame.Frame

	// Recover attempts to bring the backend back from an error state
	// without a full re-initialize.
	Recover(ctx context.Context) error
}

// PollTimeout is how long FramePipeline waits on PreviewReceiver before
// re-checking cancellation (§4.1's 16ms ~60fps poll).
const PollTimeout = 16 * time.Millisecond

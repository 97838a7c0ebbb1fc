package camerabackend

import (
	"context"
	"sync"

	"github.com/cosmic-utils/camera-sub001/frame"
)

// Fake is an in-memory Backend used by pipeline tests. Emit pushes a
// frame onto the channel PreviewReceiver exposes; it never blocks
// indefinitely on a full channel, matching real backends that drop
// frames at their own layer rather than stalling the sensor.
type Fake struct {
	mu          sync.Mutex
	initialized bool
	devices     []Device
	formats     map[string][]Format
	frames      chan *frame.Frame
	stillFrame  *frame.Frame
	initErr     error
}

// NewFake creates a fake backend with the given enumerable devices.
func NewFake(devices ...Device) *Fake {
	return &Fake{
		devices: devices,
		formats: make(map[string][]Format),
		frames:  make(chan *frame.Frame, 4),
	}
}

// SetFormats registers the formats GetFormats returns for a device ID.
func (f *Fake) SetFormats(deviceID string, formats []Format) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.formats[deviceID] = formats
}

// SetInitError makes the next Initialize call fail with err, then clears
// the error so later calls (e.g. a retry) succeed.
func (f *Fake) SetInitError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initErr = err
}

func (f *Fake) Enumerate(ctx context.Context) ([]Device, error) {
	return f.devices, nil
}

func (f *Fake) GetFormats(ctx context.Context, device Device, videoMode bool) ([]Format, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.formats[device.ID], nil
}

func (f *Fake) Initialize(ctx context.Context, device Device, format Format) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.initErr != nil {
		err := f.initErr
		f.initErr = nil
		return err
	}
	f.initialized = true
	return nil
}

func (f *Fake) Shutdown(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initialized = false
	return nil
}

func (f *Fake) IsInitialized() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initialized
}

func (f *Fake) SwitchCamera(ctx context.Context, device Device) error { return nil }
func (f *Fake) ApplyFormat(ctx context.Context, format Format) error  { return nil }

func (f *Fake) CaptureStill(ctx context.Context) (*frame.Frame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stillFrame == nil {
		return nil, ErrNoStillFrame
	}
	return f.stillFrame, nil
}

// SetStillFrame configures the frame CaptureStill returns.
func (f *Fake) SetStillFrame(fr *frame.Frame) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stillFrame = fr
}

func (f *Fake) PreviewReceiver() <-chan *frame.Frame { return f.frames }

// Emit pushes fr onto the preview channel. It drops the frame instead of
// blocking if the channel is full, mirroring a real sensor that keeps
// capturing regardless of consumer speed.
func (f *Fake) Emit(fr *frame.Frame) {
	select {
	case f.frames <- fr:
	default:
	}
}

func (f *Fake) Recover(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initialized = true
	return nil
}

// ErrNoStillFrame is returned by CaptureStill when no still frame has
// been configured via SetStillFrame.
var ErrNoStillFrame = fakeErr("camerabackend: no still frame configured")

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

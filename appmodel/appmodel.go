// Package appmodel holds the passive state tying the camera pipeline
// together: configuration, the active device/format, and the
// transition state machine. It owns no goroutines and performs no I/O
// — per §9's "cyclic ownership to dissolve" redesign, the pipeline
// actor and the GPU processors are separate, independently owned
// pieces that this struct only references.
package appmodel

import (
	"sync"

	"github.com/cosmic-utils/camera-sub001/burst"
	"github.com/cosmic-utils/camera-sub001/camerabackend"
	"github.com/cosmic-utils/camera-sub001/filter"
	"github.com/cosmic-utils/camera-sub001/pipeline"
	"github.com/cosmic-utils/camera-sub001/preview"
)

// Model is the UI-observed, passive application state. The UI layer
// reads it; it does not own the pipeline or any GPU processor.
type Model struct {
	mu sync.RWMutex

	device camerabackend.Device
	format camerabackend.Format

	filterMode filter.Mode
	contentFit preview.ContentFit
	mirror     bool
	cornerRadiusPx float32

	burstConfig burst.Config

	transition pipeline.TransitionState
}

// New creates a Model with the original implementation's default
// filter, content fit, and burst tuning.
func New() *Model {
	return &Model{
		filterMode:  filter.Identity,
		contentFit:  preview.ContentFitCover,
		burstConfig: burst.DefaultConfig(),
	}
}

// Device returns the currently active camera device.
func (m *Model) Device() camerabackend.Device {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.device
}

// SetDevice updates the active device, e.g. after SwitchCamera.
func (m *Model) SetDevice(d camerabackend.Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.device = d
}

// Format returns the currently active capture format.
func (m *Model) Format() camerabackend.Format {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.format
}

// SetFormat updates the active capture format, e.g. after ApplyFormat.
func (m *Model) SetFormat(f camerabackend.Format) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.format = f
}

// FilterMode returns the currently selected preview filter.
func (m *Model) FilterMode() filter.Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterMode
}

// SetFilterMode updates the active preview filter.
func (m *Model) SetFilterMode(mode filter.Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filterMode = mode
}

// PreviewSettings is the snapshot of content-fit/mirror/corner-radius
// state the preview renderer needs for one frame.
type PreviewSettings struct {
	ContentFit     preview.ContentFit
	Mirror         bool
	CornerRadiusPx float32
}

// Preview returns the current preview placement settings.
func (m *Model) Preview() PreviewSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return PreviewSettings{ContentFit: m.contentFit, Mirror: m.mirror, CornerRadiusPx: m.cornerRadiusPx}
}

// SetPreview updates the preview placement settings.
func (m *Model) SetPreview(s PreviewSettings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contentFit = s.ContentFit
	m.mirror = s.Mirror
	m.cornerRadiusPx = s.CornerRadiusPx
}

// BurstConfig returns the current burst-capture tuning.
func (m *Model) BurstConfig() burst.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.burstConfig
}

// SetBurstConfig updates the burst-capture tuning.
func (m *Model) SetBurstConfig(c burst.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.burstConfig = c
}

// Transition exposes the transition state machine by pointer so the
// scheduler can mutate it directly; per §5's shared-state rule, it is
// "owned by the application model and mutated only on the scheduler",
// so Model performs no locking around it.
func (m *Model) Transition() *pipeline.TransitionState {
	return &m.transition
}

// Package gpubackend provides GPUAdapter implementations: a concrete
// wgpu-backed adapter for real hardware, and a software (CPU) adapter used
// whenever compute is unavailable or for deterministic testing — mirroring
// the teacher's CPU/GPU dual-path philosophy (accelerator.go's
// ErrFallbackToCPU, software.go's SoftwareRenderer).
package gpubackend

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cosmic-utils/camera-sub001/gpucore"
)

// SoftwareAdapter implements gpucore.GPUAdapter entirely in Go memory. It
// never reports compute support so callers naturally take their CPU
// reference path, but it still honors the full resource-lifecycle contract
// so code written against GPUAdapter can be exercised without real
// hardware in tests.
type SoftwareAdapter struct {
	mu sync.Mutex

	nextID  uint64
	buffers map[gpucore.BufferID][]byte
	textures map[gpucore.TextureID]*softTexture
	shaders map[gpucore.ShaderModuleID]struct{}
	bgLayouts map[gpucore.BindGroupLayoutID]*gpucore.BindGroupLayoutDesc
	plLayouts map[gpucore.PipelineLayoutID][]gpucore.BindGroupLayoutID
	pipelines map[gpucore.ComputePipelineID]*gpucore.ComputePipelineDesc
	bindGroups map[gpucore.BindGroupID][]gpucore.BindGroupEntry

	submits atomic.Uint64
}

type softTexture struct {
	width, height int
	format        gpucore.TextureFormat
	data          []byte
}

// NewSoftwareAdapter creates an empty software adapter.
func NewSoftwareAdapter() *SoftwareAdapter {
	return &SoftwareAdapter{
		buffers:    make(map[gpucore.BufferID][]byte),
		textures:   make(map[gpucore.TextureID]*softTexture),
		shaders:    make(map[gpucore.ShaderModuleID]struct{}),
		bgLayouts:  make(map[gpucore.BindGroupLayoutID]*gpucore.BindGroupLayoutDesc),
		plLayouts:  make(map[gpucore.PipelineLayoutID][]gpucore.BindGroupLayoutID),
		pipelines:  make(map[gpucore.ComputePipelineID]*gpucore.ComputePipelineDesc),
		bindGroups: make(map[gpucore.BindGroupID][]gpucore.BindGroupEntry),
	}
}

func (a *SoftwareAdapter) allocID() uint64 {
	a.nextID++
	return a.nextID
}

func (a *SoftwareAdapter) SupportsCompute() bool { return false }

func (a *SoftwareAdapter) MaxWorkgroupSize() [3]uint32 { return [3]uint32{256, 256, 64} }

func (a *SoftwareAdapter) CreateShaderModule(spirv []uint32, label string) (gpucore.ShaderModuleID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := gpucore.ShaderModuleID(a.allocID())
	a.shaders[id] = struct{}{}
	return id, nil
}

func (a *SoftwareAdapter) DestroyShaderModule(id gpucore.ShaderModuleID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.shaders, id)
}

func (a *SoftwareAdapter) CreateBuffer(size int, usage gpucore.BufferUsage) (gpucore.BufferID, error) {
	if size < 0 {
		return 0, fmt.Errorf("gpubackend: negative buffer size")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	id := gpucore.BufferID(a.allocID())
	a.buffers[id] = make([]byte, size)
	return id, nil
}

func (a *SoftwareAdapter) DestroyBuffer(id gpucore.BufferID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.buffers, id)
}

func (a *SoftwareAdapter) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	buf, ok := a.buffers[id]
	if !ok {
		return
	}
	end := offset + uint64(len(data))
	if end > uint64(len(buf)) {
		grown := make([]byte, end)
		copy(grown, buf)
		buf = grown
		a.buffers[id] = buf
	}
	copy(buf[offset:end], data)
}

func (a *SoftwareAdapter) ReadBuffer(id gpucore.BufferID, offset, size uint64) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	buf, ok := a.buffers[id]
	if !ok {
		return nil, fmt.Errorf("gpubackend: unknown buffer %d", id)
	}
	end := offset + size
	if end > uint64(len(buf)) {
		return nil, fmt.Errorf("gpubackend: read out of bounds")
	}
	out := make([]byte, size)
	copy(out, buf[offset:end])
	return out, nil
}

func (a *SoftwareAdapter) CreateTexture(width, height int, format gpucore.TextureFormat) (gpucore.TextureID, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("gpubackend: invalid texture dimensions %dx%d", width, height)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	id := gpucore.TextureID(a.allocID())
	a.textures[id] = &softTexture{width: width, height: height, format: format}
	return id, nil
}

func (a *SoftwareAdapter) DestroyTexture(id gpucore.TextureID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.textures, id)
}

func (a *SoftwareAdapter) WriteTexture(id gpucore.TextureID, data []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	tex, ok := a.textures[id]
	if !ok {
		return
	}
	tex.data = append([]byte(nil), data...)
}

func (a *SoftwareAdapter) ReadTexture(id gpucore.TextureID) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	tex, ok := a.textures[id]
	if !ok {
		return nil, fmt.Errorf("gpubackend: unknown texture %d", id)
	}
	return append([]byte(nil), tex.data...), nil
}

func (a *SoftwareAdapter) CreateBindGroupLayout(desc *gpucore.BindGroupLayoutDesc) (gpucore.BindGroupLayoutID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := gpucore.BindGroupLayoutID(a.allocID())
	a.bgLayouts[id] = desc
	return id, nil
}

func (a *SoftwareAdapter) DestroyBindGroupLayout(id gpucore.BindGroupLayoutID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.bgLayouts, id)
}

func (a *SoftwareAdapter) CreatePipelineLayout(layouts []gpucore.BindGroupLayoutID) (gpucore.PipelineLayoutID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := gpucore.PipelineLayoutID(a.allocID())
	a.plLayouts[id] = append([]gpucore.BindGroupLayoutID(nil), layouts...)
	return id, nil
}

func (a *SoftwareAdapter) DestroyPipelineLayout(id gpucore.PipelineLayoutID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.plLayouts, id)
}

func (a *SoftwareAdapter) CreateComputePipeline(desc *gpucore.ComputePipelineDesc) (gpucore.ComputePipelineID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := gpucore.ComputePipelineID(a.allocID())
	a.pipelines[id] = desc
	return id, nil
}

func (a *SoftwareAdapter) DestroyComputePipeline(id gpucore.ComputePipelineID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.pipelines, id)
}

func (a *SoftwareAdapter) CreateBindGroup(layout gpucore.BindGroupLayoutID, entries []gpucore.BindGroupEntry) (gpucore.BindGroupID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := gpucore.BindGroupID(a.allocID())
	a.bindGroups[id] = append([]gpucore.BindGroupEntry(nil), entries...)
	return id, nil
}

func (a *SoftwareAdapter) DestroyBindGroup(id gpucore.BindGroupID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.bindGroups, id)
}

// softEncoder is a no-op compute pass encoder: the software adapter never
// actually dispatches shader work, since CPU reference paths compute
// results directly.
type softEncoder struct{}

func (softEncoder) SetPipeline(gpucore.ComputePipelineID)     {}
func (softEncoder) SetBindGroup(uint32, gpucore.BindGroupID) {}
func (softEncoder) Dispatch(uint32, uint32, uint32)          {}
func (softEncoder) End()                                     {}

func (a *SoftwareAdapter) BeginComputePass() gpucore.ComputePassEncoder { return softEncoder{} }

func (a *SoftwareAdapter) Submit()            { a.submits.Add(1) }
func (a *SoftwareAdapter) SubmitLowPriority() { a.submits.Add(1) }
func (a *SoftwareAdapter) WaitIdle()          {}

// SubmitCount returns the number of Submit/SubmitLowPriority calls made so
// far; used by tests that assert on dispatch-group boundaries.
func (a *SoftwareAdapter) SubmitCount() uint64 { return a.submits.Load() }

var _ gpucore.GPUAdapter = (*SoftwareAdapter)(nil)

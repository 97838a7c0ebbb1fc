package filter

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/cosmic-utils/camera-sub001/gpu"
	"github.com/cosmic-utils/camera-sub001/gpucore"
	"github.com/cosmic-utils/camera-sub001/internal/shadercompile"
)

//go:embed shaders/filter.wgsl
var filterShaderWGSL string

// Dispatcher applies filters on the GPU, sharing one source texture per
// video_id across every filter mode requested for it (§4.3's key
// decision), and caching one bind group per (video_id, Mode) pair inside
// the underlying gpu.Processor.
type Dispatcher struct {
	mu        sync.Mutex
	proc      *gpu.Processor
	module    gpucore.ShaderModuleID
	layout    gpucore.BindGroupLayoutID
	plLayout  gpucore.PipelineLayoutID
	pipeline  gpucore.ComputePipelineID
	ready     bool
}

// NewDispatcher wraps proc, which must be a gpu.Processor created for
// gpucore.DomainFilter.
func NewDispatcher(proc *gpu.Processor) *Dispatcher {
	return &Dispatcher{proc: proc}
}

func (d *Dispatcher) ensurePipeline() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ready {
		return nil
	}
	adapter := d.proc.Adapter()
	if !adapter.SupportsCompute() {
		return fmt.Errorf("filter: adapter does not support compute")
	}

	spirv, err := shadercompile.ToSPIRV(filterShaderWGSL)
	if err != nil {
		return err
	}
	module, err := adapter.CreateShaderModule(spirv, "filter")
	if err != nil {
		return err
	}

	layout, err := adapter.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{
		Label: "filter-bind-layout",
		Entries: []gpucore.BindGroupLayoutEntry{
			{Binding: 0, Type: gpucore.BindingTypeSampledTexture},
			{Binding: 1, Type: gpucore.BindingTypeStorageTexture},
			{Binding: 2, Type: gpucore.BindingTypeUniformBuffer, MinBindingSize: 32},
		},
	})
	if err != nil {
		return err
	}
	plLayout, err := adapter.CreatePipelineLayout([]gpucore.BindGroupLayoutID{layout})
	if err != nil {
		return err
	}
	pipeline, err := adapter.CreateComputePipeline(&gpucore.ComputePipelineDesc{
		Label:        "filter-pipeline",
		Layout:       plLayout,
		ShaderModule: module,
		EntryPoint:   "main",
	})
	if err != nil {
		return err
	}

	d.module, d.layout, d.plLayout, d.pipeline = module, layout, plLayout, pipeline
	d.ready = true
	return nil
}

// Dispatch uploads rgba for videoID (skipped automatically by the
// processor's frame-dedupe when the pointer is unchanged from the last
// call for this video_id), then records and submits a compute pass
// applying mode. The rendered RGBA is read back and returned. The shader
// implements Monochrome and Sepia; for every other mode it copies the
// source pixels (mirrored when the uniform's mirror flag is set), and it
// applies neither content fit nor corner radius.
//
// Dispatch respects the GPU stall guard: if the previous upload on this
// processor exceeded the stall threshold, this call returns
// ErrFrameSkipped and does no GPU work.
func (d *Dispatcher) Dispatch(videoID string, rgba []byte, width, height int, u Uniform) ([]byte, error) {
	if err := d.ensurePipeline(); err != nil {
		return nil, err
	}
	adapter := d.proc.Adapter()

	rs, err := d.proc.EnsureResources(width, height, gpucore.TextureFormatRGBA8Unorm, width*height*4)
	if err != nil {
		return nil, err
	}

	if d.proc.ShouldUpload(videoID, rgba) {
		start, ok := d.proc.BeginUpload()
		if !ok {
			return nil, ErrFrameSkipped
		}
		adapter.WriteTexture(rs.texture, rgba)
		d.proc.EndUpload(start)
	}

	uniformBuf, err := adapter.CreateBuffer(32, gpucore.BufferUsageUniform|gpucore.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	defer adapter.DestroyBuffer(uniformBuf)
	adapter.WriteBuffer(uniformBuf, 0, u.Bytes())

	key := fmt.Sprintf("%s:%s", videoID, Mode(u.FilterMode))
	bg, err := d.proc.BindGroup(key, func() (gpucore.BindGroupID, error) {
		return adapter.CreateBindGroup(d.layout, []gpucore.BindGroupEntry{
			{Binding: 0, Texture: rs.texture},
			{Binding: 1, Texture: rs.texture},
			{Binding: 2, Buffer: uniformBuf, Size: 32},
		})
	})
	if err != nil {
		return nil, err
	}

	enc := adapter.BeginComputePass()
	enc.SetPipeline(d.pipeline)
	enc.SetBindGroup(0, bg)
	groupsX := (uint32(width) + 7) / 8
	groupsY := (uint32(height) + 7) / 8
	enc.Dispatch(groupsX, groupsY, 1)
	enc.End()
	adapter.Submit()

	return adapter.ReadTexture(rs.texture)
}

// ErrFrameSkipped is returned by Dispatch when the GPU stall guard drops
// this frame; callers should treat it the same as a normal dropped
// preview frame (§7: "recover silently from anything they won't
// notice").
var ErrFrameSkipped = fmt.Errorf("filter: frame skipped by GPU stall guard")

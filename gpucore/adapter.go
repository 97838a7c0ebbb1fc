package gpucore

// GPUAdapter abstracts over different GPU backend implementations. It is
// the core abstraction that lets every compute domain in §4.2 work against
// a real wgpu backend or a CPU reference implementation.
// Implementations must be safe for concurrent use.
//
// Resource lifecycle:
//   - Resources are created via Create* methods
//   - Resources must be explicitly destroyed via Destroy* methods
//   - IDs become invalid after destruction and must not be reused
type GPUAdapter interface {
	// SupportsCompute reports whether compute shaders are supported. If
	// false, callers fall back to the CPU reference implementation.
	SupportsCompute() bool

	// MaxWorkgroupSize returns the maximum workgroup size per dimension.
	MaxWorkgroupSize() [3]uint32

	// CreateShaderModule compiles SPIR-V bytecode into a shader module.
	CreateShaderModule(spirv []uint32, label string) (ShaderModuleID, error)
	DestroyShaderModule(id ShaderModuleID)

	// CreateBuffer allocates a GPU buffer of the given size and usage.
	CreateBuffer(size int, usage BufferUsage) (BufferID, error)
	DestroyBuffer(id BufferID)

	// WriteBuffer uploads data at the given byte offset.
	WriteBuffer(id BufferID, offset uint64, data []byte)

	// ReadBuffer reads back data; may stall for GPU-CPU sync.
	ReadBuffer(id BufferID, offset, size uint64) ([]byte, error)

	// CreateTexture allocates a GPU texture.
	CreateTexture(width, height int, format TextureFormat) (TextureID, error)
	DestroyTexture(id TextureID)

	// WriteTexture uploads pixel data matching the texture's format/size.
	WriteTexture(id TextureID, data []byte)

	// ReadTexture reads back texture data; may stall for GPU-CPU sync.
	ReadTexture(id TextureID) ([]byte, error)

	// CreateBindGroupLayout / CreatePipelineLayout / CreateComputePipeline
	// / CreateBindGroup mirror the teacher's pipeline-management surface.
	CreateBindGroupLayout(desc *BindGroupLayoutDesc) (BindGroupLayoutID, error)
	DestroyBindGroupLayout(id BindGroupLayoutID)

	CreatePipelineLayout(layouts []BindGroupLayoutID) (PipelineLayoutID, error)
	DestroyPipelineLayout(id PipelineLayoutID)

	CreateComputePipeline(desc *ComputePipelineDesc) (ComputePipelineID, error)
	DestroyComputePipeline(id ComputePipelineID)

	CreateBindGroup(layout BindGroupLayoutID, entries []BindGroupEntry) (BindGroupID, error)
	DestroyBindGroup(id BindGroupID)

	// BeginComputePass begins recording compute commands.
	BeginComputePass() ComputePassEncoder

	// Submit submits recorded commands. SubmitLowPriority submits to a
	// queue with reduced scheduling priority so the compositor preempts
	// it for display updates — see §4.2's "low-priority queue".
	Submit()
	SubmitLowPriority()

	// WaitIdle blocks until all submitted GPU work completes. Use
	// sparingly: this is a full GPU-CPU synchronization.
	WaitIdle()
}

// ComputePassEncoder records compute commands for a single dispatch group.
type ComputePassEncoder interface {
	SetPipeline(pipeline ComputePipelineID)
	SetBindGroup(index uint32, group BindGroupID)
	// Dispatch issues x*y*z workgroups.
	Dispatch(x, y, z uint32)
	End()
}

// AdapterCapabilities describes what an adapter supports, for diagnostics
// and capability-gated feature selection (e.g. falling back to CPU
// demosaic when compute is unavailable).
type AdapterCapabilities struct {
	SupportsCompute   bool
	MaxWorkgroupSizeX uint32
	MaxWorkgroupSizeY uint32
	MaxWorkgroupSizeZ uint32
	MaxBufferSize     uint64
}

// Package gpucore defines the opaque GPU resource vocabulary and the
// GPUAdapter contract shared by every compute domain in §4.2 (filter,
// depth, YUV convert, point cloud, mesh, burst). It is adapted from the
// teacher library's gpucore/types.go and internal/gpucore/adapter.go,
// generalized from path-rendering tiles to camera compute dispatches.
package gpucore

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// TextureID is an opaque handle to a GPU texture.
type TextureID uint64

// ShaderModuleID is an opaque handle to a compiled shader module.
type ShaderModuleID uint64

// ComputePipelineID is an opaque handle to a compute pipeline.
type ComputePipelineID uint64

// BindGroupLayoutID is an opaque handle to a bind group layout.
type BindGroupLayoutID uint64

// BindGroupID is an opaque handle to a bind group.
type BindGroupID uint64

// PipelineLayoutID is an opaque handle to a pipeline layout.
type PipelineLayoutID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// Domain identifies one of the independent per-domain compute devices
// described in §4.2. Each domain gets its own singleton device+queue so a
// long burst job never blocks the preview filter pipeline from acquiring
// its own queue submissions.
type Domain int

const (
	DomainFilter Domain = iota
	DomainDepth
	DomainYUVConvert
	DomainPointCloud
	DomainMesh
	DomainBurst
)

// String returns a human-readable domain name, used in log fields and
// resource labels.
func (d Domain) String() string {
	switch d {
	case DomainFilter:
		return "filter"
	case DomainDepth:
		return "depth"
	case DomainYUVConvert:
		return "yuv_convert"
	case DomainPointCloud:
		return "point_cloud"
	case DomainMesh:
		return "mesh"
	case DomainBurst:
		return "burst"
	default:
		return "unknown"
	}
}

// BufferUsage is a bitmask specifying how a buffer will be used.
type BufferUsage uint32

const (
	BufferUsageMapRead BufferUsage = 1 << iota
	BufferUsageMapWrite
	BufferUsageCopySrc
	BufferUsageCopyDst
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageIndirect
)

// TextureFormat specifies the format of texture data.
type TextureFormat uint32

const (
	TextureFormatRGBA8Unorm TextureFormat = iota + 1
	TextureFormatR8Unorm
	TextureFormatR16Uint // 16-bit depth storage (§4.4.2)
	TextureFormatR32Float
	TextureFormatRG32Float
	TextureFormatRGBA32Float
)

// TextureUsage is a bitmask specifying how a texture will be used.
type TextureUsage uint32

const (
	TextureUsageCopySrc TextureUsage = 1 << iota
	TextureUsageCopyDst
	TextureUsageTextureBinding
	TextureUsageStorageBinding
	TextureUsageRenderAttachment
)

// BindingType specifies the type of a shader binding.
type BindingType uint32

const (
	BindingTypeUniformBuffer BindingType = iota + 1
	BindingTypeStorageBuffer
	BindingTypeReadOnlyStorageBuffer
	BindingTypeSampler
	BindingTypeSampledTexture
	BindingTypeStorageTexture
)

// ComputePipelineDesc describes a compute pipeline.
type ComputePipelineDesc struct {
	Label        string
	Layout       PipelineLayoutID
	ShaderModule ShaderModuleID
	EntryPoint   string
}

// BindGroupLayoutEntry describes a single binding in a bind group layout.
type BindGroupLayoutEntry struct {
	Binding        uint32
	Type           BindingType
	MinBindingSize uint64
}

// BindGroupLayoutDesc describes a bind group layout.
type BindGroupLayoutDesc struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// BindGroupEntry describes a single binding in a bind group.
type BindGroupEntry struct {
	Binding uint32
	Buffer  BufferID
	Offset  uint64
	Size    uint64
	Texture TextureID
}

// BindGroupDesc describes a bind group.
type BindGroupDesc struct {
	Label   string
	Layout  BindGroupLayoutID
	Entries []BindGroupEntry
}

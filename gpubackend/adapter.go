package gpubackend

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/wgpu/core"
	"github.com/gogpu/wgpu/types"

	"github.com/cosmic-utils/camera-sub001/gpucore"
	"github.com/cosmic-utils/camera-sub001/internal/logging"
)

// WGPUAdapter implements gpucore.GPUAdapter against a real wgpu device for
// one compute domain. It owns its device and queue (one per domain, per
// §4.2) and keeps a map from the module's opaque resource IDs to the
// underlying core.* handles, the same bridging shape as the teacher's
// GoGPUAdapter in backend/gogpu/adapter.go.
type WGPUAdapter struct {
	mu sync.RWMutex

	domain   gpucore.Domain
	adapter  core.AdapterID
	device   core.DeviceID
	queue    core.QueueID
	nextID   atomic.Uint64
	hasGPU   bool

	buffers          map[gpucore.BufferID]core.BufferID
	textures         map[gpucore.TextureID]core.TextureID
	textureInfo      map[gpucore.TextureID]textureMeta
	shaders          map[gpucore.ShaderModuleID]core.ShaderModuleID
	bgLayouts        map[gpucore.BindGroupLayoutID]core.BindGroupLayoutID
	plLayouts        map[gpucore.PipelineLayoutID]core.PipelineLayoutID
	pipelines        map[gpucore.ComputePipelineID]core.ComputePipelineID
	bindGroups       map[gpucore.BindGroupID]core.BindGroupID
}

type textureMeta struct {
	width, height int
	format        gpucore.TextureFormat
}

// NewWGPUAdapter requests a logical device for domain from adapterID and
// wraps it as a gpucore.GPUAdapter. Each domain gets its own device so a
// long-running burst merge on DomainBurst cannot block queue submissions
// for DomainFilter's preview path.
func NewWGPUAdapter(adapterID core.AdapterID, domain gpucore.Domain) (*WGPUAdapter, error) {
	deviceID, err := createDevice(adapterID, domain.String())
	if err != nil {
		return nil, err
	}
	queueID, err := getDeviceQueue(deviceID)
	if err != nil {
		_ = releaseDevice(deviceID)
		return nil, err
	}
	logGPUInfo(domain.String(), adapterID)

	a := &WGPUAdapter{
		domain:      domain,
		adapter:     adapterID,
		device:      deviceID,
		queue:       queueID,
		hasGPU:      core.CheckComputeSupport(deviceID),
		buffers:     make(map[gpucore.BufferID]core.BufferID),
		textures:    make(map[gpucore.TextureID]core.TextureID),
		textureInfo: make(map[gpucore.TextureID]textureMeta),
		shaders:     make(map[gpucore.ShaderModuleID]core.ShaderModuleID),
		bgLayouts:   make(map[gpucore.BindGroupLayoutID]core.BindGroupLayoutID),
		plLayouts:   make(map[gpucore.PipelineLayoutID]core.PipelineLayoutID),
		pipelines:   make(map[gpucore.ComputePipelineID]core.ComputePipelineID),
		bindGroups:  make(map[gpucore.BindGroupID]core.BindGroupID),
	}
	a.nextID.Store(1)
	return a, nil
}

// Close releases the device and adapter owned by this domain.
func (a *WGPUAdapter) Close() error {
	if err := releaseDevice(a.device); err != nil {
		return err
	}
	return releaseAdapter(a.adapter)
}

func (a *WGPUAdapter) allocID() uint64 { return a.nextID.Add(1) - 1 }

func (a *WGPUAdapter) SupportsCompute() bool { return a.hasGPU }

func (a *WGPUAdapter) MaxWorkgroupSize() [3]uint32 {
	limits := core.GetDeviceLimits(a.device)
	return [3]uint32{limits.MaxComputeWorkgroupSizeX, limits.MaxComputeWorkgroupSizeY, limits.MaxComputeWorkgroupSizeZ}
}

func (a *WGPUAdapter) CreateShaderModule(spirv []uint32, label string) (gpucore.ShaderModuleID, error) {
	if len(spirv) == 0 {
		return gpucore.InvalidID, fmt.Errorf("gpubackend: empty SPIR-V module %q", label)
	}
	moduleID, err := core.CreateShaderModule(a.device, &types.ShaderModuleDescriptor{
		Label: label,
		Source: types.ShaderSourceSPIRV{
			Code: spirv,
		},
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("gpubackend: create shader module %q: %w", label, err)
	}
	id := gpucore.ShaderModuleID(a.allocID())
	a.mu.Lock()
	a.shaders[id] = moduleID
	a.mu.Unlock()
	return id, nil
}

func (a *WGPUAdapter) DestroyShaderModule(id gpucore.ShaderModuleID) {
	a.mu.Lock()
	moduleID, ok := a.shaders[id]
	delete(a.shaders, id)
	a.mu.Unlock()
	if ok {
		core.ShaderModuleDrop(moduleID)
	}
}

func (a *WGPUAdapter) CreateBuffer(size int, usage gpucore.BufferUsage) (gpucore.BufferID, error) {
	if size <= 0 {
		return gpucore.InvalidID, fmt.Errorf("gpubackend: buffer size must be positive, got %d", size)
	}
	bufID, err := core.CreateBuffer(a.device, &types.BufferDescriptor{
		Size:  uint64(size),
		Usage: convertBufferUsage(usage),
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("gpubackend: create buffer: %w", err)
	}
	id := gpucore.BufferID(a.allocID())
	a.mu.Lock()
	a.buffers[id] = bufID
	a.mu.Unlock()
	return id, nil
}

func (a *WGPUAdapter) DestroyBuffer(id gpucore.BufferID) {
	a.mu.Lock()
	bufID, ok := a.buffers[id]
	delete(a.buffers, id)
	a.mu.Unlock()
	if ok {
		core.BufferDrop(bufID)
	}
}

func (a *WGPUAdapter) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) {
	a.mu.RLock()
	bufID, ok := a.buffers[id]
	a.mu.RUnlock()
	if !ok || len(data) == 0 {
		return
	}
	core.QueueWriteBuffer(a.queue, bufID, offset, data)
}

func (a *WGPUAdapter) ReadBuffer(id gpucore.BufferID, offset, size uint64) ([]byte, error) {
	a.mu.RLock()
	bufID, ok := a.buffers[id]
	a.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("gpubackend: unknown buffer %d", id)
	}
	// Buffer readback forces a GPU-CPU synchronization point; callers on
	// the hot preview path should prefer staying on the GPU.
	data, err := core.MapBufferRead(a.device, bufID, offset, size)
	if err != nil {
		return nil, fmt.Errorf("gpubackend: read buffer: %w", err)
	}
	return data, nil
}

func (a *WGPUAdapter) CreateTexture(width, height int, format gpucore.TextureFormat) (gpucore.TextureID, error) {
	if width <= 0 || height <= 0 {
		return gpucore.InvalidID, fmt.Errorf("gpubackend: invalid texture dimensions %dx%d", width, height)
	}
	texID, err := core.CreateTexture(a.device, &types.TextureDescriptor{
		Size: types.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     types.TextureDimension2D,
		Format:        convertTextureFormat(format),
		Usage:         types.TextureUsageCopySrc | types.TextureUsageCopyDst | types.TextureUsageStorageBinding | types.TextureUsageTextureBinding,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("gpubackend: create texture: %w", err)
	}
	id := gpucore.TextureID(a.allocID())
	a.mu.Lock()
	a.textures[id] = texID
	a.textureInfo[id] = textureMeta{width: width, height: height, format: format}
	a.mu.Unlock()
	return id, nil
}

func (a *WGPUAdapter) DestroyTexture(id gpucore.TextureID) {
	a.mu.Lock()
	texID, ok := a.textures[id]
	delete(a.textures, id)
	delete(a.textureInfo, id)
	a.mu.Unlock()
	if ok {
		core.TextureDrop(texID)
	}
}

func (a *WGPUAdapter) WriteTexture(id gpucore.TextureID, data []byte) {
	a.mu.RLock()
	texID, ok := a.textures[id]
	info, hasInfo := a.textureInfo[id]
	a.mu.RUnlock()
	if !ok || !hasInfo || len(data) == 0 {
		return
	}
	bytesPerRow := uint32(info.width) * bytesPerPixel(info.format)
	core.QueueWriteTexture(a.queue,
		&types.ImageCopyTexture{Texture: texID, MipLevel: 0},
		data,
		&types.ImageDataLayout{BytesPerRow: bytesPerRow, RowsPerImage: uint32(info.height)},
		&types.Extent3D{Width: uint32(info.width), Height: uint32(info.height), DepthOrArrayLayers: 1},
	)
}

func (a *WGPUAdapter) ReadTexture(id gpucore.TextureID) ([]byte, error) {
	a.mu.RLock()
	texID, ok := a.textures[id]
	info, hasInfo := a.textureInfo[id]
	a.mu.RUnlock()
	if !ok || !hasInfo {
		return nil, fmt.Errorf("gpubackend: unknown texture %d", id)
	}
	data, err := core.MapTextureRead(a.device, texID, uint32(info.width), uint32(info.height))
	if err != nil {
		return nil, fmt.Errorf("gpubackend: read texture: %w", err)
	}
	return data, nil
}

func (a *WGPUAdapter) CreateBindGroupLayout(desc *gpucore.BindGroupLayoutDesc) (gpucore.BindGroupLayoutID, error) {
	entries := make([]types.BindGroupLayoutEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entries[i] = convertBindGroupLayoutEntry(e)
	}
	layoutID, err := core.CreateBindGroupLayout(a.device, &types.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("gpubackend: create bind group layout: %w", err)
	}
	id := gpucore.BindGroupLayoutID(a.allocID())
	a.mu.Lock()
	a.bgLayouts[id] = layoutID
	a.mu.Unlock()
	return id, nil
}

func (a *WGPUAdapter) DestroyBindGroupLayout(id gpucore.BindGroupLayoutID) {
	a.mu.Lock()
	layoutID, ok := a.bgLayouts[id]
	delete(a.bgLayouts, id)
	a.mu.Unlock()
	if ok {
		core.BindGroupLayoutDrop(layoutID)
	}
}

func (a *WGPUAdapter) CreatePipelineLayout(layouts []gpucore.BindGroupLayoutID) (gpucore.PipelineLayoutID, error) {
	a.mu.RLock()
	backendLayouts := make([]core.BindGroupLayoutID, len(layouts))
	for i, id := range layouts {
		layoutID, ok := a.bgLayouts[id]
		if !ok {
			a.mu.RUnlock()
			return gpucore.InvalidID, fmt.Errorf("gpubackend: bind group layout %d not found", id)
		}
		backendLayouts[i] = layoutID
	}
	a.mu.RUnlock()

	plID, err := core.CreatePipelineLayout(a.device, &types.PipelineLayoutDescriptor{
		BindGroupLayouts: backendLayouts,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("gpubackend: create pipeline layout: %w", err)
	}
	id := gpucore.PipelineLayoutID(a.allocID())
	a.mu.Lock()
	a.plLayouts[id] = plID
	a.mu.Unlock()
	return id, nil
}

func (a *WGPUAdapter) DestroyPipelineLayout(id gpucore.PipelineLayoutID) {
	a.mu.Lock()
	plID, ok := a.plLayouts[id]
	delete(a.plLayouts, id)
	a.mu.Unlock()
	if ok {
		core.PipelineLayoutDrop(plID)
	}
}

func (a *WGPUAdapter) CreateComputePipeline(desc *gpucore.ComputePipelineDesc) (gpucore.ComputePipelineID, error) {
	a.mu.RLock()
	plID, plOK := a.plLayouts[desc.Layout]
	moduleID, modOK := a.shaders[desc.ShaderModule]
	a.mu.RUnlock()
	if !plOK {
		return gpucore.InvalidID, fmt.Errorf("gpubackend: pipeline layout %d not found", desc.Layout)
	}
	if !modOK {
		return gpucore.InvalidID, fmt.Errorf("gpubackend: shader module %d not found", desc.ShaderModule)
	}
	pipelineID, err := core.CreateComputePipeline(a.device, &types.ComputePipelineDescriptor{
		Label:      desc.Label,
		Layout:     plID,
		Module:     moduleID,
		EntryPoint: desc.EntryPoint,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("gpubackend: create compute pipeline %q: %w", desc.Label, err)
	}
	id := gpucore.ComputePipelineID(a.allocID())
	a.mu.Lock()
	a.pipelines[id] = pipelineID
	a.mu.Unlock()
	return id, nil
}

func (a *WGPUAdapter) DestroyComputePipeline(id gpucore.ComputePipelineID) {
	a.mu.Lock()
	pipelineID, ok := a.pipelines[id]
	delete(a.pipelines, id)
	a.mu.Unlock()
	if ok {
		core.ComputePipelineDrop(pipelineID)
	}
}

func (a *WGPUAdapter) CreateBindGroup(layout gpucore.BindGroupLayoutID, entries []gpucore.BindGroupEntry) (gpucore.BindGroupID, error) {
	a.mu.RLock()
	layoutID, ok := a.bgLayouts[layout]
	if !ok {
		a.mu.RUnlock()
		return gpucore.InvalidID, fmt.Errorf("gpubackend: bind group layout %d not found", layout)
	}
	backendEntries := make([]types.BindGroupEntry, len(entries))
	for i, e := range entries {
		be, err := a.convertBindGroupEntryLocked(e)
		if err != nil {
			a.mu.RUnlock()
			return gpucore.InvalidID, err
		}
		backendEntries[i] = be
	}
	a.mu.RUnlock()

	bgID, err := core.CreateBindGroup(a.device, layoutID, backendEntries)
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("gpubackend: create bind group: %w", err)
	}
	id := gpucore.BindGroupID(a.allocID())
	a.mu.Lock()
	a.bindGroups[id] = bgID
	a.mu.Unlock()
	return id, nil
}

func (a *WGPUAdapter) DestroyBindGroup(id gpucore.BindGroupID) {
	a.mu.Lock()
	bgID, ok := a.bindGroups[id]
	delete(a.bindGroups, id)
	a.mu.Unlock()
	if ok {
		core.BindGroupDrop(bgID)
	}
}

// convertBindGroupEntryLocked must be called with a.mu held (any mode).
func (a *WGPUAdapter) convertBindGroupEntryLocked(e gpucore.BindGroupEntry) (types.BindGroupEntry, error) {
	out := types.BindGroupEntry{Binding: e.Binding}
	switch {
	case e.Buffer != gpucore.InvalidID:
		bufID, ok := a.buffers[e.Buffer]
		if !ok {
			return out, fmt.Errorf("gpubackend: buffer %d not found", e.Buffer)
		}
		out.Buffer = bufID
		out.Offset = e.Offset
		out.Size = e.Size
	case e.Texture != gpucore.InvalidID:
		texID, ok := a.textures[e.Texture]
		if !ok {
			return out, fmt.Errorf("gpubackend: texture %d not found", e.Texture)
		}
		out.TextureView = core.CreateTextureView(texID, nil)
	default:
		return out, fmt.Errorf("gpubackend: bind group entry %d has no resource", e.Binding)
	}
	return out, nil
}

func (a *WGPUAdapter) BeginComputePass() gpucore.ComputePassEncoder {
	encoderID, err := core.CreateCommandEncoder(a.device, nil)
	if err != nil {
		logging.For("gpubackend").Warn("create command encoder failed", "domain", a.domain, "error", err)
		return noopEncoder{}
	}
	passID, err := core.BeginComputePass(encoderID, nil)
	if err != nil {
		logging.For("gpubackend").Warn("begin compute pass failed", "domain", a.domain, "error", err)
		return noopEncoder{}
	}
	return &wgpuAdapterEncoder{adapter: a, encoder: encoderID, pass: passID}
}

// wgpuAdapterEncoder resolves opaque gpucore IDs to backend handles at
// record time, since the ComputePassEncoder interface only deals in the
// module's IDs.
type wgpuAdapterEncoder struct {
	adapter *WGPUAdapter
	encoder core.CommandEncoderID
	pass    core.ComputePassID
	finished bool
}

func (e *wgpuAdapterEncoder) SetPipeline(id gpucore.ComputePipelineID) {
	e.adapter.mu.RLock()
	pipelineID, ok := e.adapter.pipelines[id]
	e.adapter.mu.RUnlock()
	if !ok {
		return
	}
	core.SetComputePipeline(e.pass, pipelineID)
}

func (e *wgpuAdapterEncoder) SetBindGroup(index uint32, group gpucore.BindGroupID) {
	e.adapter.mu.RLock()
	bgID, ok := e.adapter.bindGroups[group]
	e.adapter.mu.RUnlock()
	if !ok {
		return
	}
	core.SetBindGroup(e.pass, index, bgID)
}

func (e *wgpuAdapterEncoder) Dispatch(x, y, z uint32) {
	core.DispatchWorkgroups(e.pass, x, y, z)
}

func (e *wgpuAdapterEncoder) End() {
	if e.finished {
		return
	}
	e.finished = true
	core.EndComputePass(e.pass)
	cmdBuf, err := core.FinishCommandEncoder(e.encoder)
	if err != nil {
		logging.For("gpubackend").Warn("finish command encoder failed", "error", err)
		return
	}
	core.QueueSubmit(e.adapter.queue, cmdBuf)
}

// noopEncoder is used when pass creation fails; it lets callers keep
// recording without a nil-pointer panic. The dropped dispatch is logged
// at creation time above.
type noopEncoder struct{}

func (noopEncoder) SetPipeline(gpucore.ComputePipelineID) {}
func (noopEncoder) SetBindGroup(uint32, gpucore.BindGroupID) {}
func (noopEncoder) Dispatch(uint32, uint32, uint32) {}
func (noopEncoder) End() {}

func (a *WGPUAdapter) Submit() {
	core.QueueSubmitPending(a.queue, types.QueuePriorityNormal)
}

// SubmitLowPriority submits to a reduced-priority queue so compositor
// frame presentation preempts burst/depth work — see §4.2.
func (a *WGPUAdapter) SubmitLowPriority() {
	core.QueueSubmitPending(a.queue, types.QueuePriorityLow)
}

func (a *WGPUAdapter) WaitIdle() {
	core.DevicePoll(a.device, true)
}

func convertBufferUsage(usage gpucore.BufferUsage) types.BufferUsage {
	var out types.BufferUsage
	if usage&gpucore.BufferUsageMapRead != 0 {
		out |= types.BufferUsageMapRead
	}
	if usage&gpucore.BufferUsageMapWrite != 0 {
		out |= types.BufferUsageMapWrite
	}
	if usage&gpucore.BufferUsageCopySrc != 0 {
		out |= types.BufferUsageCopySrc
	}
	if usage&gpucore.BufferUsageCopyDst != 0 {
		out |= types.BufferUsageCopyDst
	}
	if usage&gpucore.BufferUsageUniform != 0 {
		out |= types.BufferUsageUniform
	}
	if usage&gpucore.BufferUsageStorage != 0 {
		out |= types.BufferUsageStorage
	}
	if usage&gpucore.BufferUsageIndirect != 0 {
		out |= types.BufferUsageIndirect
	}
	return out
}

func convertTextureFormat(format gpucore.TextureFormat) types.TextureFormat {
	switch format {
	case gpucore.TextureFormatRGBA8Unorm:
		return types.TextureFormatRGBA8Unorm
	case gpucore.TextureFormatR8Unorm:
		return types.TextureFormatR8Unorm
	case gpucore.TextureFormatR16Uint:
		return types.TextureFormatR16Uint
	case gpucore.TextureFormatR32Float:
		return types.TextureFormatR32Float
	case gpucore.TextureFormatRG32Float:
		return types.TextureFormatRG32Float
	case gpucore.TextureFormatRGBA32Float:
		return types.TextureFormatRGBA32Float
	default:
		return types.TextureFormatRGBA8Unorm
	}
}

func bytesPerPixel(format gpucore.TextureFormat) uint32 {
	switch format {
	case gpucore.TextureFormatR8Unorm:
		return 1
	case gpucore.TextureFormatR16Uint:
		return 2
	case gpucore.TextureFormatR32Float:
		return 4
	case gpucore.TextureFormatRG32Float:
		return 8
	case gpucore.TextureFormatRGBA8Unorm:
		return 4
	case gpucore.TextureFormatRGBA32Float:
		return 16
	default:
		return 4
	}
}

func convertBindGroupLayoutEntry(e gpucore.BindGroupLayoutEntry) types.BindGroupLayoutEntry {
	out := types.BindGroupLayoutEntry{
		Binding:    e.Binding,
		Visibility: types.ShaderStageCompute,
	}
	switch e.Type {
	case gpucore.BindingTypeUniformBuffer:
		out.Buffer = &types.BufferBindingLayout{Type: types.BufferBindingTypeUniform, MinBindingSize: e.MinBindingSize}
	case gpucore.BindingTypeStorageBuffer:
		out.Buffer = &types.BufferBindingLayout{Type: types.BufferBindingTypeStorage, MinBindingSize: e.MinBindingSize}
	case gpucore.BindingTypeReadOnlyStorageBuffer:
		out.Buffer = &types.BufferBindingLayout{Type: types.BufferBindingTypeReadOnlyStorage, MinBindingSize: e.MinBindingSize}
	case gpucore.BindingTypeSampler:
		out.Sampler = &types.SamplerBindingLayout{Type: types.SamplerBindingTypeFiltering}
	case gpucore.BindingTypeSampledTexture:
		out.Texture = &types.TextureBindingLayout{SampleType: types.TextureSampleTypeFloat}
	case gpucore.BindingTypeStorageTexture:
		out.StorageTexture = &types.StorageTextureBindingLayout{Access: types.StorageTextureAccessReadWrite}
	}
	return out
}

var _ gpucore.GPUAdapter = (*WGPUAdapter)(nil)

package gpu

import (
	"sync"
	"time"
	"unsafe"

	"github.com/cosmic-utils/camera-sub001/cache"
	"github.com/cosmic-utils/camera-sub001/gpucore"
	"github.com/cosmic-utils/camera-sub001/internal/logging"
)

// bindGroupCacheCapacity bounds the per-shard bind-group cache: a camera
// session cycles through at most a few dozen (video_id, filter mode)
// pairs, far under the default capacity, so this just avoids unbounded
// growth if a caller churns through many ad hoc keys.
const bindGroupCacheCapacity = 64

// stallThreshold is the GPU stall guard threshold from §4.2: two 60 fps
// frame periods. An upload slower than this means the queue is backing
// up, so the next frame is dropped rather than piling on more work.
const stallThreshold = 32 * time.Millisecond

// dimensions identifies a resource by the (width, height) it was
// allocated for, per §4.2's "are cached dimensions == requested
// dimensions?" cache-invalidation rule.
type dimensions struct {
	width, height int
}

// resourceSet is the cached GPU resources for one dimensions key.
type resourceSet struct {
	texture gpucore.TextureID
	buffer  gpucore.BufferID
	staging gpucore.BufferID
	format  gpucore.TextureFormat
	// bindGroups is invalidated on format change without reallocating
	// texture/buffer, per §4.1: "format change invalidates the per-filter
	// bind groups but not the source texture."
	bindGroups *cache.ShardedCache[string, gpucore.BindGroupID]
}

// uploadKey identifies the last-uploaded source for frame-dedupe,
// keyed by video_id as named in §4.2.
type uploadKey struct {
	videoID string
}

// Processor owns the cached GPU resources for one compute domain: a
// dimension-keyed resource cache, frame-dedupe by source pointer, and the
// GPU stall guard. One Processor exists per domain behind the Registry.
type Processor struct {
	mu      sync.Mutex
	domain  gpucore.Domain
	adapter gpucore.GPUAdapter

	cached *resourceSet
	dims   dimensions

	lastUploadPtr map[uploadKey]uintptr
	lastUploadDur time.Duration
	skipNext      bool
}

// NewProcessor wraps adapter for one domain.
func NewProcessor(domain gpucore.Domain, adapter gpucore.GPUAdapter) *Processor {
	return &Processor{
		domain:        domain,
		adapter:       adapter,
		lastUploadPtr: make(map[uploadKey]uintptr),
	}
}

// Adapter returns the underlying adapter, for callers that need to issue
// dispatch-specific calls (shader modules, pipelines) the Processor does
// not abstract over.
func (p *Processor) Adapter() gpucore.GPUAdapter { return p.adapter }

// EnsureResources returns the cached resource set for (width, height,
// format), reallocating the texture/buffers if the dimensions changed and
// dropping just the bind-group cache if only the format changed.
func (p *Processor) EnsureResources(width, height int, format gpucore.TextureFormat, bufferSize int) (*resourceSet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	want := dimensions{width: width, height: height}
	if p.cached != nil && p.dims == want {
		if p.cached.format != format {
			p.invalidateBindGroupsLocked(format)
		}
		return p.cached, nil
	}

	if p.cached != nil {
		p.releaseLocked()
	}

	tex, err := p.adapter.CreateTexture(width, height, format)
	if err != nil {
		return nil, err
	}
	buf, err := p.adapter.CreateBuffer(bufferSize, gpucore.BufferUsageStorage|gpucore.BufferUsageCopyDst)
	if err != nil {
		p.adapter.DestroyTexture(tex)
		return nil, err
	}
	staging, err := p.adapter.CreateBuffer(bufferSize, gpucore.BufferUsageMapRead|gpucore.BufferUsageCopyDst)
	if err != nil {
		p.adapter.DestroyTexture(tex)
		p.adapter.DestroyBuffer(buf)
		return nil, err
	}

	p.cached = &resourceSet{
		texture:    tex,
		buffer:     buf,
		staging:    staging,
		format:     format,
		bindGroups: cache.NewSharded[string, gpucore.BindGroupID](bindGroupCacheCapacity, cache.StringHasher),
	}
	p.dims = want
	return p.cached, nil
}

func (p *Processor) invalidateBindGroupsLocked(format gpucore.TextureFormat) {
	for _, id := range p.cached.bindGroups.Values() {
		p.adapter.DestroyBindGroup(id)
	}
	p.cached.bindGroups.Clear()
	p.cached.format = format
}

func (p *Processor) releaseLocked() {
	p.adapter.DestroyTexture(p.cached.texture)
	p.adapter.DestroyBuffer(p.cached.buffer)
	p.adapter.DestroyBuffer(p.cached.staging)
	for _, id := range p.cached.bindGroups.Values() {
		p.adapter.DestroyBindGroup(id)
	}
	p.cached = nil
}

// Close releases any cached resources. Call once, when the owning domain
// is torn down.
func (p *Processor) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached != nil {
		p.releaseLocked()
	}
}

// BindGroup returns the cached bind group for key, or creates one via
// build and caches it. Callers pass a stable key (e.g. the filter mode
// name) so repeated calls for the same key reuse the bind group across
// frames until a format change invalidates it.
func (p *Processor) BindGroup(key string, build func() (gpucore.BindGroupID, error)) (gpucore.BindGroupID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached == nil {
		return gpucore.InvalidID, errNoResources
	}
	if id, ok := p.cached.bindGroups.Get(key); ok {
		return id, nil
	}
	id, err := build()
	if err != nil {
		return gpucore.InvalidID, err
	}
	p.cached.bindGroups.Set(key, id)
	return id, nil
}

// ShouldUpload reports whether data needs to be (re-)uploaded for
// videoID, implementing the frame-dedupe rule in §4.2: uploads are
// skipped when the source data pointer matches the last upload for that
// key. This is what lets the filter picker render one frame through N
// filters without N uploads.
func (p *Processor) ShouldUpload(videoID string, data []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(data) == 0 {
		return true
	}
	key := uploadKey{videoID: videoID}
	ptr := dataPtr(data)
	if last, ok := p.lastUploadPtr[key]; ok && last == ptr {
		return false
	}
	p.lastUploadPtr[key] = ptr
	return true
}

// dataPtr extracts the backing-array address for pointer-identity
// comparison. It does not dereference or retain the pointer.
func dataPtr(data []byte) uintptr {
	if len(data) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&data[0]))
}

// BeginUpload returns false if the stall guard says this frame should be
// skipped (the previous upload on this processor took longer than
// stallThreshold). Callers that get false must not upload and must not
// call EndUpload for this frame. On guard-triggered skip the duration
// counter is reset, matching §4.2: "the next frame is skipped and the
// duration counter reset."
func (p *Processor) BeginUpload() (start time.Time, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.skipNext {
		p.skipNext = false
		p.lastUploadDur = 0
		logging.For("gpu.processor").Debug("stall guard: skipping frame", "domain", p.domain)
		return time.Time{}, false
	}
	return time.Now(), true
}

// EndUpload records how long an upload (begun via BeginUpload with ok ==
// true) took, arming the stall guard for the next frame if it exceeded
// stallThreshold.
func (p *Processor) EndUpload(start time.Time) {
	dur := time.Since(start)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastUploadDur = dur
	if dur > stallThreshold {
		p.skipNext = true
		logging.For("gpu.processor").Warn("GPU upload exceeded stall threshold", "domain", p.domain, "duration", dur)
	}
}

var errNoResources = resourceErr("gpu: EnsureResources must be called before BindGroup")

type resourceErr string

func (e resourceErr) Error() string { return string(e) }

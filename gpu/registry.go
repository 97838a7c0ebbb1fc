// Package gpu manages the per-domain GPU devices and dimension-keyed
// resource caches described in §4.2. It sits between the compute packages
// (filter, convert, burst, depth3d) and gpucore.GPUAdapter, and is the only
// place that decides whether a dispatch runs on real hardware or falls
// back to a package's CPU reference path.
package gpu

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/cosmic-utils/camera-sub001/gpucore"
	"github.com/cosmic-utils/camera-sub001/internal/logging"
)

// AdapterFactory constructs the GPUAdapter for one domain, lazily, the
// first time that domain is requested. When it returns an error, the
// Registry uses the softFactory passed to NewRegistry instead.
type AdapterFactory func(domain gpucore.Domain) (gpucore.GPUAdapter, error)

// Registry is the lazy, async-mutex-guarded singleton pool described in
// §9's "Global GPU singletons": one device per compute domain, created on
// first use and torn down explicitly via Close. Construction is
// deduplicated per domain with singleflight, so concurrent first-use
// callers for the SAME domain share one device creation while callers for
// DIFFERENT domains never block each other — the "async mutex" guard named
// in §9, without serializing unrelated domains behind one lock.
type Registry struct {
	mu          sync.RWMutex
	sf          singleflight.Group
	factory     AdapterFactory
	adapters    map[gpucore.Domain]gpucore.GPUAdapter
	softFactory func() gpucore.GPUAdapter
}

// NewRegistry creates a registry that lazily builds real adapters with
// factory. softFactory is used instead whenever factory returns an error,
// so a missing GPU never prevents the camera pipeline from running.
func NewRegistry(factory AdapterFactory, softFactory func() gpucore.GPUAdapter) *Registry {
	return &Registry{
		factory:     factory,
		softFactory: softFactory,
		adapters:    make(map[gpucore.Domain]gpucore.GPUAdapter),
	}
}

// Adapter returns the singleton adapter for domain, creating it on first
// call.
func (r *Registry) Adapter(domain gpucore.Domain) gpucore.GPUAdapter {
	r.mu.RLock()
	a, ok := r.adapters[domain]
	r.mu.RUnlock()
	if ok {
		return a
	}

	key := fmt.Sprintf("%v", domain)
	v, _, _ := r.sf.Do(key, func() (any, error) {
		r.mu.RLock()
		a, ok := r.adapters[domain]
		r.mu.RUnlock()
		if ok {
			return a, nil
		}

		log := logging.For("gpu.registry")
		created, err := r.factory(domain)
		if err != nil {
			log.Warn("falling back to software adapter", "domain", domain, "error", err)
			created = r.softFactory()
		}

		r.mu.Lock()
		r.adapters[domain] = created
		r.mu.Unlock()
		return created, nil
	})
	return v.(gpucore.GPUAdapter)
}

// Close releases every adapter created so far. Adapters that implement
// io.Closer-like lifecycle (gpubackend.WGPUAdapter) have their device and
// adapter handles released; the software adapter has nothing to release.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for domain, a := range r.adapters {
		if closer, ok := a.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		delete(r.adapters, domain)
	}
	return firstErr
}

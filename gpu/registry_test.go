package gpu

import (
	"errors"
	"sync"
	"testing"

	"github.com/cosmic-utils/camera-sub001/gpubackend"
	"github.com/cosmic-utils/camera-sub001/gpucore"
)

func TestRegistryCachesPerDomain(t *testing.T) {
	var calls int
	reg := NewRegistry(func(d gpucore.Domain) (gpucore.GPUAdapter, error) {
		calls++
		return gpubackend.NewSoftwareAdapter(), nil
	}, func() gpucore.GPUAdapter { return gpubackend.NewSoftwareAdapter() })

	a1 := reg.Adapter(gpucore.DomainFilter)
	a2 := reg.Adapter(gpucore.DomainFilter)
	if a1 != a2 {
		t.Fatalf("expected the same adapter instance on repeated calls for one domain")
	}
	if calls != 1 {
		t.Fatalf("expected the factory to run exactly once, ran %d times", calls)
	}
}

func TestRegistryFallsBackToSoftwareOnFactoryError(t *testing.T) {
	reg := NewRegistry(func(d gpucore.Domain) (gpucore.GPUAdapter, error) {
		return nil, errors.New("no GPU")
	}, func() gpucore.GPUAdapter { return gpubackend.NewSoftwareAdapter() })

	a := reg.Adapter(gpucore.DomainBurst)
	if a == nil {
		t.Fatalf("expected a software fallback adapter, got nil")
	}
}

func TestRegistryDeduplicatesConcurrentCreation(t *testing.T) {
	var calls int
	var mu sync.Mutex
	reg := NewRegistry(func(d gpucore.Domain) (gpucore.GPUAdapter, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return gpubackend.NewSoftwareAdapter(), nil
	}, func() gpucore.GPUAdapter { return gpubackend.NewSoftwareAdapter() })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Adapter(gpucore.DomainFilter)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected singleflight to coalesce concurrent creation to 1 call, got %d", calls)
	}
}

func TestRegistryCloseReleasesAdapters(t *testing.T) {
	reg := NewRegistry(func(d gpucore.Domain) (gpucore.GPUAdapter, error) {
		return gpubackend.NewSoftwareAdapter(), nil
	}, func() gpucore.GPUAdapter { return gpubackend.NewSoftwareAdapter() })
	reg.Adapter(gpucore.DomainFilter)
	reg.Adapter(gpucore.DomainBurst)

	if err := reg.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

package frame

import (
	"math/rand"
	"testing"
	"time"
)

// TestRGBAInvariant checks: for any Frame with pixel_format=RGBA,
// data.len() == stride*h and stride >= 4w.
func TestRGBAInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		w := 1 + rng.Intn(200)
		h := 1 + rng.Intn(200)
		stride := w * 4
		if rng.Intn(2) == 0 {
			stride += rng.Intn(16) // padded rows
		}
		data := make([]byte, stride*h)

		f, err := New(w, h, RGBA, data, stride, time.Now())
		if err != nil {
			t.Fatalf("unexpected error for w=%d h=%d stride=%d: %v", w, h, stride, err)
		}
		if len(f.Data) != stride*h {
			t.Fatalf("data.len() != stride*h")
		}
		if stride < 4*w {
			t.Fatalf("stride < 4w")
		}
	}
}

func TestRejectsTooSmallBuffer(t *testing.T) {
	_, err := New(10, 10, RGBA, make([]byte, 10), 40, time.Now())
	if err != ErrBufferTooSmall {
		t.Fatalf("expected ErrBufferTooSmall, got %v", err)
	}
}

func TestRejectsInvalidDimensions(t *testing.T) {
	_, err := New(0, 10, RGBA, nil, 0, time.Now())
	if err != ErrInvalidDimensions {
		t.Fatalf("expected ErrInvalidDimensions, got %v", err)
	}
}

func TestPlanarRequiresPlanes(t *testing.T) {
	data := make([]byte, 100)
	_, err := New(10, 10, NV12, data, 10, time.Now())
	if err != ErrMissingPlanes {
		t.Fatalf("expected ErrMissingPlanes, got %v", err)
	}
}

func TestPlanarOutOfBounds(t *testing.T) {
	data := make([]byte, 150) // Y=100 + too little UV
	f, err := New(10, 10, NV12, data, 10, time.Now())
	if err != nil {
		t.Fatalf("unexpected base error: %v", err)
	}
	_, err = f.WithPlanes(YUVPlanes{YOffset: 0, YSize: 100, UVOffset: 100, UVSize: 100})
	if err != ErrPlaneOutOfBounds {
		t.Fatalf("expected ErrPlaneOutOfBounds, got %v", err)
	}
}

func TestImmutableDataNotCopiedOnWith(t *testing.T) {
	data := make([]byte, 400)
	f, err := New(10, 10, RGBA, data, 40, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	cp := f.WithDepth(DepthBuffer{Values: make([]uint16, 100), Width: 10, Height: 10})
	if &cp.Data[0] != &f.Data[0] {
		t.Fatalf("expected Data to be shared, not copied")
	}
}

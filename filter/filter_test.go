package filter

import (
	"bytes"
	"math/rand"
	"testing"
)

func solidFrame(width, height int, r, g, b, a byte) []byte {
	out := make([]byte, width*height*4)
	for i := 0; i < width*height; i++ {
		out[i*4] = r
		out[i*4+1] = g
		out[i*4+2] = b
		out[i*4+3] = a
	}
	return out
}

func TestIdentityReturnsInputUnchanged(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	data := make([]byte, 64*64*4)
	rng.Read(data)

	out, err := ApplyFilter(data, 64, 64, Identity)
	if err != nil {
		t.Fatalf("ApplyFilter: %v", err)
	}
	if &out[0] != &data[0] {
		t.Fatalf("expected Identity to return the same backing array, did GPU work instead")
	}
}

func TestAllModesPreserveDimensionsAndAlpha(t *testing.T) {
	width, height := 8, 8
	data := solidFrame(width, height, 120, 80, 200, 255)

	for m := Mode(0); m < modeCount; m++ {
		out, err := ApplyFilter(data, width, height, m)
		if err != nil {
			t.Fatalf("mode %v: %v", m, err)
		}
		if len(out) != len(data) {
			t.Fatalf("mode %v: output length %d != input length %d", m, len(out), len(data))
		}
		for i := 0; i < width*height; i++ {
			if out[i*4+3] != 255 {
				t.Fatalf("mode %v: alpha channel must be preserved, got %d", m, out[i*4+3])
			}
		}
	}
}

func TestNegativeInvertsChannels(t *testing.T) {
	data := solidFrame(2, 2, 10, 20, 30, 255)
	out, err := ApplyFilter(data, 2, 2, Negative)
	if err != nil {
		t.Fatalf("ApplyFilter: %v", err)
	}
	if out[0] != 245 || out[1] != 235 || out[2] != 225 {
		t.Fatalf("unexpected negative output: %v", out[:4])
	}
}

func TestMonochromeProducesGrayPixels(t *testing.T) {
	data := solidFrame(4, 4, 200, 50, 10, 255)
	out, err := ApplyFilter(data, 4, 4, Monochrome)
	if err != nil {
		t.Fatalf("ApplyFilter: %v", err)
	}
	for i := 0; i < 4*4; i++ {
		r, g, b := out[i*4], out[i*4+1], out[i*4+2]
		if r != g || g != b {
			t.Fatalf("expected monochrome pixel to have r==g==b, got %d,%d,%d", r, g, b)
		}
	}
}

func TestRejectsMismatchedDimensions(t *testing.T) {
	data := solidFrame(4, 4, 1, 2, 3, 255)
	if _, err := ApplyFilter(data, 8, 8, Sepia); err == nil {
		t.Fatalf("expected error for a buffer too small for the requested dimensions")
	}
}

func TestUnknownModeErrors(t *testing.T) {
	data := solidFrame(2, 2, 1, 2, 3, 255)
	if _, err := ApplyFilter(data, 2, 2, modeCount+5); err == nil {
		t.Fatalf("expected error for an unknown filter mode")
	}
}

func TestUniformBytesLayout(t *testing.T) {
	u := Uniform{
		ViewportWidth:    1920,
		ViewportHeight:   1080,
		ContentFitMode:   uint32(Cover),
		FilterMode:       uint32(Sepia),
		CornerRadiusPx:   12,
		MirrorHorizontal: 1,
	}
	b := u.Bytes()
	if len(b) != 32 {
		t.Fatalf("expected a 32-byte (16-byte-aligned) uniform buffer, got %d", len(b))
	}
	if !bytes.Equal(b[0:4], []byte{0x80, 0x07, 0, 0}) {
		t.Fatalf("unexpected little-endian viewport width encoding: %v", b[0:4])
	}
}

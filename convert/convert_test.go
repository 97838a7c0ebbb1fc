package convert

import (
	"math/rand"
	"testing"
)

func packGRBGGray(value byte, width, height int) []byte {
	out := make([]byte, width*height)
	for i := range out {
		out[i] = value
	}
	return out
}

func TestPackedToRGBAGray(t *testing.T) {
	// Y=128 (mid-gray), U=V=128 (no chroma) at every macro-pixel should
	// decode to a neutral gray RGB.
	width, height := 4, 2
	data := make([]byte, width*height*2)
	for i := 0; i < len(data); i += 4 {
		data[i], data[i+1], data[i+2], data[i+3] = 128, 128, 128, 128
	}
	out, err := PackedToRGBA(data, width, height, YUYV)
	if err != nil {
		t.Fatalf("PackedToRGBA: %v", err)
	}
	for i := 0; i < width*height; i++ {
		r, g, b, a := out[i*4], out[i*4+1], out[i*4+2], out[i*4+3]
		if r != 128 || g != 128 || b != 128 || a != 255 {
			t.Fatalf("pixel %d: got (%d,%d,%d,%d), want neutral gray opaque", i, r, g, b, a)
		}
	}
}

func TestPackedToRGBARejectsOddWidth(t *testing.T) {
	data := make([]byte, 30)
	if _, err := PackedToRGBA(data, 3, 2, YUYV); err == nil {
		t.Fatalf("expected error for odd width in a 4:2:2 packed format")
	}
}

func TestPackedToRGBARejectsShortBuffer(t *testing.T) {
	data := make([]byte, 4)
	if _, err := PackedToRGBA(data, 4, 4, YUYV); err == nil {
		t.Fatalf("expected error for a buffer too small for the requested dimensions")
	}
}

func TestSemiPlanarMatchesPlanarI420(t *testing.T) {
	width, height := 4, 4
	rng := rand.New(rand.NewSource(7))
	y := make([]byte, width*height)
	rng.Read(y)
	u := make([]byte, (width/2)*(height/2))
	v := make([]byte, (width/2)*(height/2))
	rng.Read(u)
	rng.Read(v)

	uv := make([]byte, len(u)*2)
	for i := range u {
		uv[i*2] = u[i]
		uv[i*2+1] = v[i]
	}

	planar, err := PlanarI420ToRGBA(y, u, v, width, height)
	if err != nil {
		t.Fatalf("PlanarI420ToRGBA: %v", err)
	}
	nv12, err := SemiPlanarToRGBA(y, uv, width, height, false)
	if err != nil {
		t.Fatalf("SemiPlanarToRGBA: %v", err)
	}
	for i := range planar {
		if planar[i] != nv12[i] {
			t.Fatalf("NV12 and I420 of the same samples diverged at byte %d: %d != %d", i, planar[i], nv12[i])
		}
	}
}

func TestUnpackY10BSentinelAndValue(t *testing.T) {
	width, height := 8, 8
	packed := make([]byte, bytesPerY10BRow(width)*height)

	// Write known 10-bit values at (3,3)=500 and (5,5)=1023 via packY10B,
	// the test-local inverse of UnpackY10B's bit layout.
	packY10BValue(packed, width, 3, 3, 500)
	packY10BValue(packed, width, 5, 5, 1023)

	depth, err := UnpackY10B(packed, width, height)
	if err != nil {
		t.Fatalf("UnpackY10B: %v", err)
	}
	if depth[3*width+3] != 500 {
		t.Fatalf("expected depth[3,3]=500, got %d", depth[3*width+3])
	}
	if depth[5*width+5] != 1023 {
		t.Fatalf("expected depth[5,5]=1023 sentinel, got %d", depth[5*width+5])
	}

	vis := DepthVisualization(depth, width, height, false)
	o := (5*width + 5) * 4
	if vis[o] != 0 || vis[o+1] != 0 || vis[o+2] != 0 {
		t.Fatalf("expected sentinel pixel to render black, got (%d,%d,%d)", vis[o], vis[o+1], vis[o+2])
	}
}

func TestUnpackY10BTruncatesShortInput(t *testing.T) {
	width, height := 4, 4
	short := make([]byte, 2) // far shorter than a full packed buffer
	depth, err := UnpackY10B(short, width, height)
	if err != nil {
		t.Fatalf("UnpackY10B should tolerate short input with a warning, got error: %v", err)
	}
	if len(depth) != width*height {
		t.Fatalf("expected a full-size depth buffer even with short input, got %d entries", len(depth))
	}
}

func TestDemosaicGRBGFlatField(t *testing.T) {
	width, height := 4, 4
	bayer := packGRBGGray(100, width, height)
	out, err := DemosaicGRBG(bayer, width, height)
	if err != nil {
		t.Fatalf("DemosaicGRBG: %v", err)
	}
	for i := 0; i < width*height; i++ {
		r, g, b := out[i*4], out[i*4+1], out[i*4+2]
		if r != 100 || g != 100 || b != 100 {
			t.Fatalf("pixel %d: expected a flat field to demosaic to uniform gray, got (%d,%d,%d)", i, r, g, b)
		}
	}
}

// packY10BValue writes a single 10-bit sample into a Y10B packed buffer
// using the same 4-per-5-bytes layout UnpackY10B decodes.
func packY10BValue(packed []byte, width, x, y int, v uint16) {
	rowBytes := bytesPerY10BRow(width)
	group := x / 4
	idx := x % 4
	gOff := y*rowBytes + group*5

	lo := byte(v & 0xFF)
	hiBits := byte((v >> 8) & 0x03)

	switch idx {
	case 0:
		packed[gOff] = lo
		packed[gOff+4] |= hiBits
	case 1:
		packed[gOff+1] = lo
		packed[gOff+4] |= hiBits << 2
	case 2:
		packed[gOff+2] = lo
		packed[gOff+4] |= hiBits << 4
	case 3:
		packed[gOff+3] = lo
		packed[gOff+4] |= hiBits << 6
	}
}

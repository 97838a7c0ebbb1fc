package preview

import "testing"

func solidFrame(w, h int, r, g, b, a byte) []byte {
	out := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		o := i * 4
		out[o], out[o+1], out[o+2], out[o+3] = r, g, b, a
	}
	return out
}

func TestRenderFrameContainLetterboxesWidescreenIntoSquare(t *testing.T) {
	src := solidFrame(16, 9, 255, 0, 0, 255)
	out := RenderFrame(src, 16, 9, 16, 16, ContentFitContain, false)

	// Top row should be letterboxed (transparent) under Contain.
	if out[3] != 0 {
		t.Fatalf("expected the top-left pixel to be letterboxed transparent under Contain")
	}
	mid := (8*16 + 8) * 4
	if out[mid+3] == 0 {
		t.Fatalf("expected the center pixel to be covered by content under Contain")
	}
}

func TestRenderFrameCoverFillsEntireViewport(t *testing.T) {
	src := solidFrame(16, 9, 255, 0, 0, 255)
	out := RenderFrame(src, 16, 9, 16, 16, ContentFitCover, false)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			o := (y*16 + x) * 4
			if out[o+3] == 0 {
				t.Fatalf("expected Cover to fill every viewport pixel, found transparent at (%d,%d)", x, y)
			}
		}
	}
}

func TestRenderFrameMirrorFlipsHorizontally(t *testing.T) {
	src := make([]byte, 4*1*4)
	for x := 0; x < 4; x++ {
		src[x*4] = byte(x * 60)
		src[x*4+3] = 255
	}
	out := RenderFrame(src, 4, 1, 4, 1, ContentFitContain, true)
	if out[0] != src[(3)*4] {
		t.Fatalf("expected mirrored output's leftmost pixel to match source's rightmost pixel")
	}
}

func TestApplyCornerRadiusClearsCorners(t *testing.T) {
	src := solidFrame(20, 20, 10, 20, 30, 255)
	out := ApplyCornerRadius(src, 20, 20, 6)
	if out[3] != 0 {
		t.Fatalf("expected the extreme corner pixel to be masked out")
	}
	mid := (10*20 + 10) * 4
	if out[mid+3] == 0 {
		t.Fatalf("expected the center pixel to remain opaque")
	}
}

func TestApplyCornerRadiusZeroIsNoop(t *testing.T) {
	src := solidFrame(8, 8, 1, 2, 3, 255)
	out := ApplyCornerRadius(src, 8, 8, 0)
	for i := range src {
		if out[i] != src[i] {
			t.Fatalf("expected a zero radius to leave the image unchanged")
		}
	}
}

func TestBlurPreviewPreservesDimensions(t *testing.T) {
	src := solidFrame(32, 18, 100, 150, 200, 255)
	out := BlurPreview(src, 32, 18, 24, 24, ContentFitCover, false, 4, 2.0)
	if len(out) != 24*24*4 {
		t.Fatalf("expected output length %d, got %d", 24*24*4, len(out))
	}
}

func TestBlurPreviewSmoothsASharpEdge(t *testing.T) {
	const w, h = 32, 32
	src := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := (y*w + x) * 4
			v := byte(0)
			if x >= w/2 {
				v = 255
			}
			src[o], src[o+1], src[o+2], src[o+3] = v, v, v, 255
		}
	}
	out := BlurPreview(src, w, h, w, h, ContentFitContain, false, 0, 3.0)
	boundary := (h/2*w + w/2) * 4
	if out[boundary] == 0 || out[boundary] == 255 {
		t.Fatalf("expected the blurred boundary pixel to be an intermediate value, got %d", out[boundary])
	}
}

func TestUniformBytesPacksMirrorAndRadius(t *testing.T) {
	u := Uniform{ViewportWidth: 1920, ViewportHeight: 1080, Fit: ContentFitCover, CornerRadiusPx: 12, Mirror: true}
	b := u.Bytes()
	if len(b) != 16 {
		t.Fatalf("expected a 16-byte uniform block, got %d", len(b))
	}
	if b[12] != 12 || b[13] != 0 || b[14] != 1 || b[15] != 0 {
		t.Fatalf("expected radius 12 in the low 16 bits and the mirror flag at bit 16, got % x", b[12:16])
	}
}

package burst

import (
	"context"
	"testing"
)

func solidFrame(width, height int, r, g, b byte) []byte {
	out := make([]byte, width*height*4)
	for i := 0; i < width*height; i++ {
		o := i * 4
		out[o], out[o+1], out[o+2], out[o+3] = r, g, b, 255
	}
	return out
}

func TestRunOnIdenticalFramesProducesSameSizedResult(t *testing.T) {
	const w, h = 32, 32
	frames := [][]byte{
		solidFrame(w, h, 120, 130, 110),
		solidFrame(w, h, 120, 130, 110),
		solidFrame(w, h, 120, 130, 110),
	}
	res, err := Run(context.Background(), frames, w, h, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Width != w || res.Height != h {
		t.Fatalf("expected result dims (%d,%d), got (%d,%d)", w, h, res.Width, res.Height)
	}
	if len(res.RGBA) != w*h*4 {
		t.Fatalf("expected RGBA length %d, got %d", w*h*4, len(res.RGBA))
	}
	if len(res.AlignQuality) != len(frames)-1 {
		t.Fatalf("expected %d alignment quality scores, got %d", len(frames)-1, len(res.AlignQuality))
	}
}

func TestRunRejectsEmptyFrameSet(t *testing.T) {
	if _, err := Run(context.Background(), nil, 32, 32, DefaultConfig(), nil); err == nil {
		t.Fatalf("expected an error for an empty frame set")
	}
}

func TestRunSelectsSharpestFrameAsReference(t *testing.T) {
	const w, h = 32, 32
	blurry := solidFrame(w, h, 100, 100, 100)
	sharp := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := (y*w + x) * 4
			v := byte(40)
			if (x/4+y/4)%2 == 0 {
				v = 220
			}
			sharp[o], sharp[o+1], sharp[o+2], sharp[o+3] = v, v, v, 255
		}
	}
	frames := [][]byte{blurry, sharp, blurry}
	res, err := Run(context.Background(), frames, w, h, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ReferenceIdx != 1 {
		t.Fatalf("expected the sharp frame (index 1) to be selected as reference, got %d", res.ReferenceIdx)
	}
}

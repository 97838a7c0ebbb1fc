package burst

import "testing"

func checkerboard(w, h, shiftX, shiftY int) []float32 {
	out := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := x-shiftX, y-shiftY
			v := float32(40)
			if ((sx/8)+(sy/8))%2 == 0 {
				v = 220
			}
			out[y*w+x] = v
		}
	}
	return out
}

func TestSearchTileFindsKnownShift(t *testing.T) {
	const w, h = 64, 64
	ref := Level{Width: w, Height: h, Luma: checkerboard(w, h, 0, 0)}
	cmp := Level{Width: w, Height: h, Luma: checkerboard(w, h, 1, -1)}

	p := levelParam{Tile: 32, Search: 2, Metric: MetricL1}
	off := searchTile(ref, cmp, 0, 0, p, 0, 0)
	if off.DX != 1 || off.DY != -1 {
		t.Fatalf("expected the search to recover shift (1,-1), got (%v,%v)", off.DX, off.DY)
	}
}

func TestAlignPyramidsZeroMotionYieldsZeroOffsets(t *testing.T) {
	const w, h = 64, 64
	luma := checkerboard(w, h, 0, 0)
	ref := BuildPyramid(append([]float32(nil), luma...), w, h)
	cmp := BuildPyramid(append([]float32(nil), luma...), w, h)

	fields := AlignPyramids(ref, cmp)
	for k, f := range fields {
		for i, off := range f.Tiles {
			if off.DX != 0 || off.DY != 0 {
				t.Fatalf("level %d tile %d: expected zero offset for identical frames, got (%v,%v)", k, i, off.DX, off.DY)
			}
		}
	}
}

func TestTileCountCoversDimensionWithOverlap(t *testing.T) {
	if n := tileCount(64, 32, 16); n < 2 {
		t.Fatalf("expected multiple overlapping tiles across 64px with a 32px tile, got %d", n)
	}
	if n := tileCount(16, 32, 16); n != 1 {
		t.Fatalf("expected a single tile when the dimension is smaller than the tile size, got %d", n)
	}
}

package burst

import "testing"

func TestMergeChannelFlatFieldStaysFlat(t *testing.T) {
	const w, h = 16, 16
	flat := make([]float64, w*h)
	for i := range flat {
		flat[i] = 100
	}
	aligned := [][]float64{
		append([]float64(nil), flat...),
		append([]float64(nil), flat...),
	}
	params := MergeParams{TileSize: 16, ReadNoise: 4, Robustness: 1}
	out := mergeChannel(flat, aligned, w, h, params, 0)

	for i, v := range out {
		if diff := v - 100; diff > 0.5 || diff < -0.5 {
			t.Fatalf("pixel %d: expected a flat field to merge to ~100, got %v", i, v)
		}
	}
}

func TestMergeChannelReducesNoiseVersusSingleFrame(t *testing.T) {
	const w, h = 16, 16
	ref := make([]float64, w*h)
	noisy1 := make([]float64, w*h)
	noisy2 := make([]float64, w*h)
	for i := range ref {
		ref[i] = 100
		if i%2 == 0 {
			noisy1[i] = 96
			noisy2[i] = 104
		} else {
			noisy1[i] = 104
			noisy2[i] = 96
		}
	}
	params := MergeParams{TileSize: 16, ReadNoise: 50, Robustness: 1}
	out := mergeChannel(ref, [][]float64{noisy1, noisy2}, w, h, params, 5)

	var maxDiff float64
	for _, v := range out {
		d := v - 100
		if d < 0 {
			d = -d
		}
		if d > maxDiff {
			maxDiff = d
		}
	}
	if maxDiff > 4 {
		t.Fatalf("expected merged output to stay close to the common mean, max deviation %v", maxDiff)
	}
}

func TestHighlightsScaleProtectsSaturatedTiles(t *testing.T) {
	if s := highlightsScale(100); s != 1 {
		t.Fatalf("expected no scaling below the saturation floor, got %v", s)
	}
	if s := highlightsScale(255); s != 0 {
		t.Fatalf("expected full scaling at full saturation, got %v", s)
	}
	mid := highlightsScale(245)
	if mid <= 0 || mid >= 1 {
		t.Fatalf("expected a partial scale between the floor and ceiling, got %v", mid)
	}
}

func TestDFTRoundTripRecoversTile(t *testing.T) {
	const T = 8
	tile := make([]float64, T*T)
	for i := range tile {
		tile[i] = float64(i%17) * 3.1
	}
	freq := dft2(tile, T)
	back := idft2(freq, T)
	for i := range tile {
		if diff := back[i] - tile[i]; diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("index %d: DFT round trip mismatch, got %v want %v", i, back[i], tile[i])
		}
	}
}

func TestWOLACoverageSumsToUnityAwayFromEdges(t *testing.T) {
	const w, h, tile = 64, 64, 16
	coverage := WOLACoverage(w, h, tile)
	for y := tile; y < h-tile; y++ {
		for x := tile; x < w-tile; x++ {
			v := coverage[y*w+x]
			if diff := v - 1; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("pixel (%d,%d): expected the 4-pass WOLA window to sum to 1, got %v", x, y, v)
			}
		}
	}
}

func TestWienerReadNoiseClampsNegativeRobustness(t *testing.T) {
	v := wienerReadNoise(10, -5)
	if v != v { // NaN check
		t.Fatalf("expected the robustness clamp to prevent NaN, got NaN")
	}
	if v <= 0 {
		t.Fatalf("expected a positive read-noise scale even at very low robustness, got %v", v)
	}
}

func TestEstimateNoiseSigmaZeroOnFlatField(t *testing.T) {
	const w, h = 16, 16
	flat := make([]float32, w*h)
	for i := range flat {
		flat[i] = 77
	}
	if sigma := EstimateNoiseSigma(flat, w, h); sigma != 0 {
		t.Fatalf("expected zero noise sigma on a flat field, got %v", sigma)
	}
}

package burst

import "testing"

func TestAdaptiveShadowBoostThresholds(t *testing.T) {
	if b := AdaptiveShadowBoost(0.2, 0.5); b != 0 {
		t.Fatalf("expected no shadow boost at avg luminance >= 0.4, got %v", b)
	}
	if b := AdaptiveShadowBoost(0.2, 0.1); b != 0.2 {
		t.Fatalf("expected full configured boost below 0.2, got %v", b)
	}
	mid := AdaptiveShadowBoost(0.2, 0.3)
	if mid <= 0 || mid >= 0.2 {
		t.Fatalf("expected a partial boost strictly between 0 and configured in the transition band, got %v", mid)
	}
}

func TestLocalLuminanceMapBlockCount(t *testing.T) {
	const w, h = 20, 18
	luma := make([]float32, w*h)
	_, bx, by := LocalLuminanceMap(luma, w, h)
	if bx != 3 || by != 3 {
		t.Fatalf("expected ceil(20/8)=3 and ceil(18/8)=3 blocks, got (%d,%d)", bx, by)
	}
}

func TestGlobalBrightnessOfMidGrayIsHalf(t *testing.T) {
	luma := make([]float32, 64)
	for i := range luma {
		luma[i] = 127.5
	}
	if got := GlobalBrightness(luma, 8, 8); got < 0.49 || got > 0.51 {
		t.Fatalf("expected average normalized brightness near 0.5, got %v", got)
	}
}

func TestApplyToneMapPreservesDimensionsAndOpaqueAlpha(t *testing.T) {
	const w, h = 16, 16
	merged := make([]float64, w*h*4)
	for i := 0; i < w*h; i++ {
		merged[i*4], merged[i*4+1], merged[i*4+2], merged[i*4+3] = 120, 130, 110, 255
	}
	out := ApplyToneMap(merged, w, h, ToneMapParams{ShadowBoost: 0.2, LocalContrast: 0.15})
	if len(out) != w*h*4 {
		t.Fatalf("expected output length %d, got %d", w*h*4, len(out))
	}
	for i := 0; i < w*h; i++ {
		if out[i*4+3] != 255 {
			t.Fatalf("pixel %d: expected opaque alpha, got %d", i, out[i*4+3])
		}
	}
}

func TestHighlightCompressLeavesLowValuesUnchanged(t *testing.T) {
	if v := highlightCompress(0.3); v != 0.3 {
		t.Fatalf("expected values below the knee to pass through unchanged, got %v", v)
	}
	if v := highlightCompress(1.0); v >= 1.0 {
		t.Fatalf("expected values above the knee to be compressed below their input, got %v", v)
	}
}

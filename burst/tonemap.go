package burst

import "math"

// toneMapGamma is the display gamma applied at the end of tone mapping.
const toneMapGamma = 2.2

// localLuminanceBlock is the side of the block used for the local
// luminance map (§4.8's "8x8 block average").
const localLuminanceBlock = 8

// ToneMapParams carries the subset of Config that drives tone mapping.
type ToneMapParams struct {
	ShadowBoost   float64
	LocalContrast float64
}

// LocalLuminanceMap computes the 8x8 block-average luminance map used
// both for adaptive shadow boost and local contrast.
func LocalLuminanceMap(luma []float32, width, height int) (map_ []float32, blocksX, blocksY int) {
	blocksX = (width + localLuminanceBlock - 1) / localLuminanceBlock
	blocksY = (height + localLuminanceBlock - 1) / localLuminanceBlock
	out := make([]float32, blocksX*blocksY)
	for by := 0; by < blocksY; by++ {
		y0 := by * localLuminanceBlock
		y1 := min(y0+localLuminanceBlock, height)
		for bx := 0; bx < blocksX; bx++ {
			x0 := bx * localLuminanceBlock
			x1 := min(x0+localLuminanceBlock, width)
			var sum float32
			var n int
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					sum += luma[y*width+x]
					n++
				}
			}
			if n > 0 {
				out[by*blocksX+bx] = sum / float32(n)
			}
		}
	}
	return out, blocksX, blocksY
}

// GlobalBrightness averages the luminance plane; the fixed-point atomic
// sum of the original GPU kernel reduces here to a plain sum since Go
// has no per-workgroup boundary to cross.
func GlobalBrightness(luma []float32, width, height int) float64 {
	var sum float64
	for _, v := range luma {
		sum += float64(v)
	}
	if len(luma) == 0 {
		return 0
	}
	return sum / float64(len(luma)) / 255
}

// AdaptiveShadowBoost returns the effective shadow-boost amount given
// the configured maximum and the image's average normalized luminance:
// zero at or above 0.4, linearly scaled between 0.2 and 0.4, and the
// full configured amount below 0.2.
func AdaptiveShadowBoost(configured, avgLuminance float64) float64 {
	switch {
	case avgLuminance >= 0.4:
		return 0
	case avgLuminance <= 0.2:
		return configured
	default:
		t := (0.4 - avgLuminance) / 0.2
		return configured * t
	}
}

// ApplyToneMap tone-maps a merged RGBA float64 image into a new 8-bit
// RGBA buffer, leaving merged unchanged: shadow
// boost from the local luminance map, local contrast, highlight
// compression, gamma, and ordered dither, per §4.8.
func ApplyToneMap(merged []float64, width, height int, params ToneMapParams) []byte {
	luma := make([]float32, width*height)
	for i := 0; i < width*height; i++ {
		o := i * 4
		luma[i] = float32(0.299*merged[o] + 0.587*merged[o+1] + 0.114*merged[o+2])
	}
	lumaMap, blocksX, _ := LocalLuminanceMap(luma, width, height)
	avg := GlobalBrightness(luma, width, height)
	shadowBoost := AdaptiveShadowBoost(params.ShadowBoost, avg)

	out := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		by := y / localLuminanceBlock
		for x := 0; x < width; x++ {
			bx := x / localLuminanceBlock
			localLum := float64(lumaMap[by*blocksX+bx]) / 255
			o := (y*width + x) * 4

			for ch := 0; ch < 3; ch++ {
				v := merged[o+ch] / 255

				if shadowBoost > 0 && localLum < 0.5 {
					lift := shadowBoost * (0.5 - localLum)
					v += lift * (1 - v)
				}

				if params.LocalContrast > 0 {
					v = v + params.LocalContrast*(v-localLum)
				}

				v = highlightCompress(v)
				v = math.Pow(clampFloat(v, 0, 1), 1/toneMapGamma)

				dither := ditherValue(x, y)
				v = clampFloat(v+dither, 0, 1)

				out[o+ch] = byte(v*255 + 0.5)
			}
			out[o+3] = 255
		}
	}
	return out
}

// highlightCompress softly rolls off values above 0.8 to avoid hard
// clipping of merged highlights.
func highlightCompress(v float64) float64 {
	const knee = 0.8
	if v <= knee {
		return v
	}
	excess := v - knee
	return knee + excess/(1+excess)
}

// ditherValue is a 4x4 ordered-dither pattern scaled to +/- 1/255,
// breaking up banding in the gamma-compressed output.
func ditherValue(x, y int) float64 {
	var bayer4 = [4][4]int{
		{0, 8, 2, 10},
		{12, 4, 14, 6},
		{3, 11, 1, 9},
		{15, 7, 13, 5},
	}
	v := bayer4[y%4][x%4]
	return (float64(v)/16 - 0.5) / 255 * 2
}

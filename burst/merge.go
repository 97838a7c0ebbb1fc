package burst

import "math"

// MergeParams configures the frequency-domain merge (§4.8).
type MergeParams struct {
	TileSize   int // T: 16, or 32 for very low light
	ReadNoise  float64
	Robustness float64
}

// TileSizeForLight returns the merge tile side: 32 in very low light,
// 16 otherwise.
func TileSizeForLight(lowLight bool) int {
	if lowLight {
		return 32
	}
	return 16
}

// wolaOffsets are the 4 half-tile-overlap pass offsets that together
// make the raised-cosine window cover every pixel.
func wolaOffsets(tile int) [4][2]int {
	half := tile / 2
	return [4][2]int{
		{-half, -half},
		{0, -half},
		{-half, 0},
		{0, 0},
	}
}

// WOLACoverage sums the raised-cosine window across all 4 WOLA passes
// over a width x height plane, used to verify the windows sum to unity
// at every (non-edge) pixel, per the design note requiring this check.
func WOLACoverage(width, height, tile int) []float64 {
	window := raisedCosineWindow2D(tile)
	offsets := wolaOffsets(tile)
	coverage := make([]float64, width*height)
	for _, off := range offsets {
		for y0 := off[1]; y0 < height; y0 += tile {
			for ty := 0; ty < tile; ty++ {
				y := y0 + ty
				if y < 0 || y >= height {
					continue
				}
				for x0 := off[0]; x0 < width; x0 += tile {
					for tx := 0; tx < tile; tx++ {
						x := x0 + tx
						if x < 0 || x >= width {
							continue
						}
						coverage[y*width+x] += window[ty*tile+tx]
					}
				}
			}
		}
	}
	return coverage
}

// raisedCosineWindow2D returns the separable raised-cosine window used
// by every WOLA pass.
func raisedCosineWindow2D(tile int) []float64 {
	w1 := make([]float64, tile)
	for i := 0; i < tile; i++ {
		w1[i] = 0.5 - 0.5*math.Cos(2*math.Pi*(float64(i)+0.5)/float64(tile))
	}
	out := make([]float64, tile*tile)
	for y := 0; y < tile; y++ {
		for x := 0; x < tile; x++ {
			out[y*tile+x] = w1[y] * w1[x]
		}
	}
	return out
}

// dft2 computes the forward 2D DFT of a real T x T tile.
func dft2(tile []float64, T int) []complex128 {
	out := make([]complex128, T*T)
	for v := 0; v < T; v++ {
		for u := 0; u < T; u++ {
			var sum complex128
			for y := 0; y < T; y++ {
				for x := 0; x < T; x++ {
					angle := -2 * math.Pi * (float64(u*x)/float64(T) + float64(v*y)/float64(T))
					sum += complex(tile[y*T+x], 0) * complex(math.Cos(angle), math.Sin(angle))
				}
			}
			out[v*T+u] = sum
		}
	}
	return out
}

// idft2 computes the inverse 2D DFT, returning a real T x T tile
// (imaginary residue from rounding is discarded).
func idft2(freq []complex128, T int) []float64 {
	out := make([]float64, T*T)
	n := float64(T * T)
	for y := 0; y < T; y++ {
		for x := 0; x < T; x++ {
			var sum complex128
			for v := 0; v < T; v++ {
				for u := 0; u < T; u++ {
					angle := 2 * math.Pi * (float64(u*x)/float64(T) + float64(v*y)/float64(T))
					sum += freq[v*T+u] * complex(math.Cos(angle), math.Sin(angle))
				}
			}
			out[y*T+x] = real(sum) / n
		}
	}
	return out
}

// extractWindowed reads a T x T window from a channel plane at
// (x0, y0), edge-clamped, multiplied by the supplied window function.
func extractWindowed(plane []float64, width, height, x0, y0, T int, window []float64) []float64 {
	out := make([]float64, T*T)
	for ty := 0; ty < T; ty++ {
		y := clampInt(y0+ty, 0, height-1)
		for tx := 0; tx < T; tx++ {
			x := clampInt(x0+tx, 0, width-1)
			out[ty*T+tx] = plane[y*width+x] * window[ty*T+tx]
		}
	}
	return out
}

// tileRMS returns the root-mean-square of a windowed tile, the
// per-tile reference signal level.
func tileRMS(tile []float64) float64 {
	var sum float64
	for _, v := range tile {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(tile)))
}

// tileSAD returns the tile-average sum-of-absolute-differences between
// two windowed tiles of equal size, the per-tile mismatch measure.
func tileSAD(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum / float64(len(a))
}

// highlightsScale reduces apparent mismatch for tiles near saturation,
// making the Wiener weight trust the reference more and so protect
// blown highlights from ghosting.
func highlightsScale(refAvg float64) float64 {
	const saturationFloor = 235.0
	const saturationCeil = 255.0
	if refAvg <= saturationFloor {
		return 1
	}
	scale := 1 - (refAvg-saturationFloor)/(saturationCeil-saturationFloor)
	return clampFloat(scale, 0, 1)
}

// wienerReadNoise scales a base read-noise figure by (2^x)^1.6 where x
// is the effective robustness. x is clamped to >= 0.01: at low
// robustness it can go negative, and a negative base raised to a
// fractional power is NaN.
func wienerReadNoise(base, robustness float64) float64 {
	x := math.Max(robustness, 0.01)
	return base * math.Pow(math.Pow(2, x), 1.6)
}

// mergeChannel runs the 4-pass WOLA Wiener merge for a single channel
// plane across the reference and its aligned frames, returning the
// merged plane already divided by the frame count N (§4.8's
// "reference added once ... divided by N after").
func mergeChannel(ref []float64, aligned [][]float64, width, height int, params MergeParams, sigma float64) []float64 {
	T := params.TileSize
	window := raisedCosineWindow2D(T)
	offsets := wolaOffsets(T)

	readNoise := wienerReadNoise(params.ReadNoise+sigma, params.Robustness)

	// accum holds the z=0 (reference) term once, unweighted; each
	// aligned frame then contributes its own windowed-and-normalized
	// reconstruction before the whole sum is divided by N.
	accum := append([]float64(nil), ref...)

	for _, alignedPlane := range aligned {
		frameAccum := make([]float64, width*height)
		frameWeight := make([]float64, width*height)

		for _, off := range offsets {
			for y0 := off[1]; y0 < height; y0 += T {
				for x0 := off[0]; x0 < width; x0 += T {
					refTile := extractWindowed(ref, width, height, x0, y0, T, window)
					refFreq := dft2(refTile, T)
					refAvg := tileMean(ref, width, height, x0, y0, T)
					hScale := highlightsScale(refAvg)

					cmpTile := extractWindowed(alignedPlane, width, height, x0, y0, T, window)
					mismatch := tileSAD(refTile, cmpTile) * hScale
					_ = tileRMS(refTile)

					cmpFreq := dft2(cmpTile, T)
					merged := make([]complex128, T*T)
					for i := range merged {
						d := refFreq[i] - cmpFreq[i]
						mag2 := real(d)*real(d) + imag(d)*imag(d)
						denom := mag2 + readNoise*math.Max(mismatch, 1)
						var a float64
						if denom > 0 {
							a = mag2 / denom
						}
						merged[i] = cmpFreq[i] + complex(a, 0)*d
					}
					spatial := idft2(merged, T)
					for ty := 0; ty < T; ty++ {
						y := y0 + ty
						if y < 0 || y >= height {
							continue
						}
						for tx := 0; tx < T; tx++ {
							x := x0 + tx
							if x < 0 || x >= width {
								continue
							}
							// spatial is already windowed once (idft2 of a
							// product built from window-multiplied tiles);
							// only the normalizer gets the extra window
							// power, matching the single-power COLA sum
							// verified by TestWOLACoverageSumsToUnityAwayFromEdges.
							w := window[ty*T+tx]
							frameAccum[y*width+x] += spatial[ty*T+tx]
							frameWeight[y*width+x] += w
						}
					}
				}
			}
		}

		for i := range accum {
			if frameWeight[i] > 0 {
				accum[i] += frameAccum[i] / frameWeight[i]
			} else {
				accum[i] += ref[i]
			}
		}
	}

	n := float64(1 + len(aligned))
	out := make([]float64, width*height)
	for i := range out {
		out[i] = accum[i] / n
	}
	return out
}

func tileMean(plane []float64, width, height, x0, y0, T int) float64 {
	var sum float64
	var n int
	for ty := 0; ty < T; ty++ {
		y := clampInt(y0+ty, 0, height-1)
		for tx := 0; tx < T; tx++ {
			x := clampInt(x0+tx, 0, width-1)
			sum += plane[y*width+x]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

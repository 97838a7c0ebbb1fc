package burst

import "sort"

// EstimateNoiseSigma computes a GPU-histogram-equivalent noise estimate:
// the median absolute deviation (MAD) of the absolute Laplacian
// response over a luminance plane, scaled to a Gaussian-equivalent
// sigma (§4.8's "GPU histogram of |Laplacian| followed by MAD -> σ").
func EstimateNoiseSigma(luma []float32, width, height int) float64 {
	if width < 3 || height < 3 {
		return 0
	}
	mags := make([]float64, 0, (width-2)*(height-2))
	get := func(x, y int) float32 { return luma[y*width+x] }
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			lap := get(x-1, y) + get(x+1, y) + get(x, y-1) + get(x, y+1) - 4*get(x, y)
			v := float64(lap)
			if v < 0 {
				v = -v
			}
			mags = append(mags, v)
		}
	}
	if len(mags) == 0 {
		return 0
	}
	median := medianOf(mags)
	devs := make([]float64, len(mags))
	for i, v := range mags {
		d := v - median
		if d < 0 {
			d = -d
		}
		devs[i] = d
	}
	mad := medianOf(devs)
	// 1.4826 converts MAD to a Gaussian-equivalent standard deviation.
	return mad * 1.4826
}

func medianOf(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

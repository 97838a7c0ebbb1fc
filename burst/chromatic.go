package burst

import "math"

// caRadiusBins is the number of radial bins accumulated when fitting
// the chromatic-aberration coefficients (§4.7).
const caRadiusBins = 16

// caEdgeThreshold is the minimum gradient magnitude (on a 0-255 scale)
// for a pixel to be treated as a strong, radially-aligned edge worth
// sampling for CA estimation.
const caEdgeThreshold = 24.0

// CACoefficients holds the fitted radial chromatic-aberration
// correction coefficients for the red and blue channels relative to
// green, applied during warp as `1 + coeff*(r/r_max)^2`.
type CACoefficients struct {
	Red, Blue float64
}

// EstimateCA measures the radial sub-pixel offset between R and G, and
// between B and G, at strong edges aligned with the radial direction,
// from the reference frame only, and fits a single coefficient per
// channel by accumulating into 16 radius bins.
func EstimateCA(rgba []byte, width, height int) CACoefficients {
	cx, cy := float64(width)/2, float64(height)/2
	rMax := math.Hypot(cx, cy)

	var redBinSum, redBinWeight [caRadiusBins]float64
	var blueBinSum, blueBinWeight [caRadiusBins]float64

	sample := func(x, y, ch int) float64 {
		return float64(rgba[(y*width+x)*4+ch])
	}

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			gx := sample(x+1, y, 1) - sample(x-1, y, 1)
			gy := sample(x, y+1, 1) - sample(x, y-1, 1)
			mag := math.Hypot(gx, gy)
			if mag < caEdgeThreshold {
				continue
			}
			dx, dy := float64(x)-cx, float64(y)-cy
			r := math.Hypot(dx, dy)
			if r < 1 {
				continue
			}
			ux, uy := dx/r, dy/r

			rg := radialOffset(rgba, width, height, x, y, 0, 1, ux, uy)
			bg := radialOffset(rgba, width, height, x, y, 2, 1, ux, uy)

			bin := clampInt(int(r/rMax*caRadiusBins), 0, caRadiusBins-1)
			redBinSum[bin] += rg * mag
			redBinWeight[bin] += mag
			blueBinSum[bin] += bg * mag
			blueBinWeight[bin] += mag
		}
	}

	return CACoefficients{
		Red:  fitRadialCoefficient(redBinSum[:], redBinWeight[:], rMax),
		Blue: fitRadialCoefficient(blueBinSum[:], blueBinWeight[:], rMax),
	}
}

// radialOffset estimates the sub-pixel displacement of channel a
// relative to channel b along the radial direction (ux,uy) at (x,y),
// via a parabolic fit of the 1-pixel radial neighborhood.
func radialOffset(rgba []byte, width, height, x, y, a, b int, ux, uy float64) float64 {
	at := func(ch int, ox, oy float64) float64 {
		xi := clampInt(int(float64(x)+ox+0.5), 0, width-1)
		yi := clampInt(int(float64(y)+oy+0.5), 0, height-1)
		return float64(rgba[(yi*width+xi)*4+ch])
	}
	diffAt := func(ox, oy float64) float64 {
		return at(a, ox, oy) - at(b, ox, oy)
	}
	c0 := diffAt(0, 0)
	cm := diffAt(-ux, -uy)
	cp := diffAt(ux, uy)
	denom := cm - 2*c0 + cp
	if math.Abs(denom) < 1e-6 {
		return 0
	}
	return 0.5 * (cm - cp) / denom
}

// fitRadialCoefficient converts weighted-average per-bin radial offsets
// into a single quadratic coefficient via least-squares over the
// normalized radius squared.
func fitRadialCoefficient(sum, weight []float64, rMax float64) float64 {
	var num, den float64
	for i := range sum {
		if weight[i] <= 0 {
			continue
		}
		avg := sum[i] / weight[i]
		rNorm := (float64(i) + 0.5) / float64(len(sum))
		x := rNorm * rNorm
		num += x * avg
		den += x * x
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// WarpChannel samples src at (x,y) displaced by the bilinearly
// interpolated tile offset field, applying the CA radial scale factor
// to u/v for non-green channels.
func WarpChannel(field *TileField, tile, step, width, height int, x, y int, ch int, coeff CACoefficients, rMax float64) (float64, float64) {
	dx, dy := interpolateOffset(field, tile, step, x, y)

	cx, cyc := float64(width)/2, float64(height)/2
	u, v := float64(x)+dx, float64(y)+dy
	if rMax > 0 {
		var c float64
		switch ch {
		case 0:
			c = coeff.Red
		case 2:
			c = coeff.Blue
		}
		if c != 0 {
			rdx, rdy := u-cx, v-cyc
			r := math.Hypot(rdx, rdy)
			scale := 1 + c*(r/rMax)*(r/rMax)
			u = cx + rdx*scale
			v = cyc + rdy*scale
		}
	}
	return u, v
}

// interpolateOffset bilinearly interpolates the per-tile offset field
// at pixel (x,y), given the tile size and step used to build it.
func interpolateOffset(field *TileField, tile, step, x, y int) (float64, float64) {
	fx := float64(x) / float64(step)
	fy := float64(y) / float64(step)
	tx0 := clampInt(int(fx), 0, field.TilesX-1)
	ty0 := clampInt(int(fy), 0, field.TilesY-1)
	tx1 := clampInt(tx0+1, 0, field.TilesX-1)
	ty1 := clampInt(ty0+1, 0, field.TilesY-1)

	wx := fx - float64(tx0)
	wy := fy - float64(ty0)
	if wx < 0 {
		wx = 0
	}
	if wy < 0 {
		wy = 0
	}

	o00 := field.at(tx0, ty0)
	o10 := field.at(tx1, ty0)
	o01 := field.at(tx0, ty1)
	o11 := field.at(tx1, ty1)

	dx := bilerp(o00.DX, o10.DX, o01.DX, o11.DX, wx, wy)
	dy := bilerp(o00.DY, o10.DY, o01.DY, o11.DY, wx, wy)
	return dx, dy
}

func bilerp(v00, v10, v01, v11, wx, wy float64) float64 {
	top := v00*(1-wx) + v10*wx
	bottom := v01*(1-wx) + v11*wx
	return top*(1-wy) + bottom*wy
}

// sampleBilinear reads an RGBA channel at a fractional position with
// edge clamping.
func sampleBilinear(rgba []byte, width, height int, ch int, u, v float64) float64 {
	u = clampFloat(u, 0, float64(width-1))
	v = clampFloat(v, 0, float64(height-1))
	x0, y0 := int(u), int(v)
	x1, y1 := clampInt(x0+1, 0, width-1), clampInt(y0+1, 0, height-1)
	wx, wy := u-float64(x0), v-float64(y0)

	at := func(x, y int) float64 { return float64(rgba[(y*width+x)*4+ch]) }
	return bilerp(at(x0, y0), at(x1, y0), at(x0, y1), at(x1, y1), wx, wy)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Warp produces an RGBA float32 AlignedFrame by sampling cmp through
// the finest-level offset field, per channel, with CA correction
// applied to R and B.
func Warp(cmp []byte, width, height int, field *TileField, coeff CACoefficients) []float32 {
	out := make([]float32, width*height*4)
	WarpRows(out, cmp, width, height, 0, height, field, coeff)
	return out
}

// WarpRows fills rows [y0, y1) of out, an already-allocated
// width*height*4 float32 buffer, with the warped, CA-corrected pixels
// for that row range. Callers chunk the dispatch across row ranges by
// calling this repeatedly, per §4.7's GPU-responsiveness requirement.
func WarpRows(out []float32, cmp []byte, width, height, y0, y1 int, field *TileField, coeff CACoefficients) {
	p := levelParams[0]
	step := p.Tile / 2
	if step < 1 {
		step = 1
	}
	cx, cy := float64(width)/2, float64(height)/2
	rMax := math.Hypot(cx, cy)

	for y := y0; y < y1; y++ {
		for x := 0; x < width; x++ {
			o := (y*width + x) * 4
			for ch := 0; ch < 3; ch++ {
				u, v := WarpChannel(field, p.Tile, step, width, height, x, y, ch, coeff, rMax)
				out[o+ch] = float32(sampleBilinear(cmp, width, height, ch, u, v))
			}
			out[o+3] = float32(cmp[o+3])
		}
	}
}

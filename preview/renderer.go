// Package preview renders a captured frame into the on-screen viewport:
// content-fit placement, optional mirroring, rounded corners, and the
// 3-pass Gaussian blur used while a camera transition is in progress
// (§4.5, §4.6). Every stage has a pure-Go CPU reference; GPU dispatch
// follows the same ping-pong-texture shape described by the uniform
// layout below.
package preview

import "math"

// ContentFit selects how a source frame is placed in the viewport.
type ContentFit int

const (
	ContentFitContain ContentFit = iota // letterbox: whole frame visible
	ContentFitCover                     // fill: frame cropped to the viewport
)

// Uniform is the 16-byte-aligned parameter block shared with the GPU
// preview shader: viewport size, content-fit mode, corner radius, and
// the mirror flag (§4.2's uniform layout convention, reused here).
type Uniform struct {
	ViewportWidth  uint32
	ViewportHeight uint32
	Fit            ContentFit
	CornerRadiusPx float32
	Mirror         bool
}

// Bytes packs Uniform into the 16-byte-aligned wire layout consumed by
// the preview shader.
func (u Uniform) Bytes() []byte {
	buf := make([]byte, 16)
	putU32(buf[0:4], u.ViewportWidth)
	putU32(buf[4:8], u.ViewportHeight)
	putU32(buf[8:12], uint32(u.Fit))
	var mirrorBit uint32
	if u.Mirror {
		mirrorBit = 1
	}
	packed := uint32(u.CornerRadiusPx) | mirrorBit<<16
	putU32(buf[12:16], packed)
	return buf
}

func putU32(dst []byte, v uint32) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 24)
}

// fitTransform computes the scale and top-left offset (in destination
// pixels) that places a srcW x srcH frame into a dstW x dstH viewport
// under the given ContentFit.
func fitTransform(srcW, srcH, dstW, dstH int, fit ContentFit) (scale, offX, offY float64) {
	sx := float64(dstW) / float64(srcW)
	sy := float64(dstH) / float64(srcH)
	switch fit {
	case ContentFitCover:
		scale = math.Max(sx, sy)
	default:
		scale = math.Min(sx, sy)
	}
	offX = (float64(dstW) - float64(srcW)*scale) / 2
	offY = (float64(dstH) - float64(srcH)*scale) / 2
	return
}

// RenderFrame places an RGBA source frame into a dstW x dstH viewport
// under the given content fit, with an optional horizontal mirror.
// Pixels outside the source's scaled footprint (letterboxing under
// Contain) are left fully transparent.
func RenderFrame(src []byte, srcW, srcH, dstW, dstH int, fit ContentFit, mirror bool) []byte {
	scale, offX, offY := fitTransform(srcW, srcH, dstW, dstH, fit)
	out := make([]byte, dstW*dstH*4)

	for dy := 0; dy < dstH; dy++ {
		sy := (float64(dy) - offY) / scale
		for dx := 0; dx < dstW; dx++ {
			sx := (float64(dx) - offX) / scale
			if sx < 0 || sx >= float64(srcW) || sy < 0 || sy >= float64(srcH) {
				continue
			}
			if mirror {
				sx = float64(srcW-1) - sx
			}
			o := (dy*dstW + dx) * 4
			for ch := 0; ch < 4; ch++ {
				out[o+ch] = byte(sampleBilinear(src, srcW, srcH, ch, sx, sy) + 0.5)
			}
		}
	}
	return out
}

func sampleBilinear(rgba []byte, width, height, ch int, u, v float64) float64 {
	u = clampFloat(u, 0, float64(width-1))
	v = clampFloat(v, 0, float64(height-1))
	x0, y0 := int(u), int(v)
	x1, y1 := min(x0+1, width-1), min(y0+1, height-1)
	wx, wy := u-float64(x0), v-float64(y0)

	at := func(x, y int) float64 { return float64(rgba[(y*width+x)*4+ch]) }
	top := at(x0, y0)*(1-wx) + at(x1, y0)*wx
	bottom := at(x0, y1)*(1-wx) + at(x1, y1)*wx
	return top*(1-wy) + bottom*wy
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

// ApplyCornerRadius zeroes the alpha of pixels outside a rounded-rect
// mask of the given corner radius, producing rounded preview
// thumbnails.
func ApplyCornerRadius(rgba []byte, width, height int, radiusPx float32) []byte {
	if radiusPx <= 0 {
		return rgba
	}
	r := float64(radiusPx)
	out := append([]byte(nil), rgba...)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if outsideRoundedRect(x, y, width, height, r) {
				o := (y*width + x) * 4
				out[o+3] = 0
			}
		}
	}
	return out
}

// outsideRoundedRect reports whether (x,y) falls outside a rectangle
// of the given corner radius, checked only near the four corners.
func outsideRoundedRect(x, y, width, height int, r float64) bool {
	cx, cy := cornerCenter(x, width, r), cornerCenter(y, height, r)
	if cx < 0 || cy < 0 {
		return false
	}
	dx, dy := float64(x)-cx, float64(y)-cy
	return dx*dx+dy*dy > r*r
}

// cornerCenter returns the nearest rounded-corner arc center's
// coordinate along one axis for a pixel coordinate v in [0,dim), or -1
// if v is not within a corner's radius of either edge.
func cornerCenter(v, dim int, r float64) float64 {
	fv := float64(v)
	if fv < r {
		return r
	}
	if fv >= float64(dim)-r {
		return float64(dim) - r
	}
	return -1
}

// BlurPreview runs the 3-pass Gaussian blur used for the transition
// state (§4.6): pass 1 composites the source with the requested fit
// and mirror; passes 2-3 blur horizontally then vertically over
// same-sized ping-pong intermediates; corner radius is applied last.
func BlurPreview(src []byte, srcW, srcH, viewportW, viewportH int, fit ContentFit, mirror bool, cornerRadiusPx float32, sigma float64) []byte {
	pass1 := RenderFrame(src, srcW, srcH, viewportW, viewportH, fit, mirror)
	passH := gaussianBlur1D(pass1, viewportW, viewportH, sigma, true)
	passV := gaussianBlur1D(passH, viewportW, viewportH, sigma, false)
	return ApplyCornerRadius(passV, viewportW, viewportH, cornerRadiusPx)
}

// gaussianBlur1D applies a separable Gaussian blur along one axis.
func gaussianBlur1D(rgba []byte, width, height int, sigma float64, horizontal bool) []byte {
	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2
	out := make([]byte, len(rgba))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum [4]float64
			var weightSum float64
			for k := -radius; k <= radius; k++ {
				sx, sy := x, y
				if horizontal {
					sx = clampInt(x+k, 0, width-1)
				} else {
					sy = clampInt(y+k, 0, height-1)
				}
				w := kernel[k+radius]
				o := (sy*width + sx) * 4
				for ch := 0; ch < 4; ch++ {
					sum[ch] += float64(rgba[o+ch]) * w
				}
				weightSum += w
			}
			o := (y*width + x) * 4
			for ch := 0; ch < 4; ch++ {
				out[o+ch] = byte(sum[ch]/weightSum + 0.5)
			}
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// gaussianKernel builds a normalized 1D Gaussian kernel spanning
// +/-3 sigma.
func gaussianKernel(sigma float64) []float64 {
	if sigma <= 0 {
		return []float64{1}
	}
	radius := int(3*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

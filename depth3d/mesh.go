package depth3d

import "math"

// DefaultDiscontinuityThreshold is §4.9's default 0.1m max pairwise
// depth difference across a mesh quad's four corners.
const DefaultDiscontinuityThreshold = 0.1

type meshCorner struct {
	vx, vy int
	z      float64
	meters float64
	rgba   [4]byte
	ok     bool
}

// RenderMesh triangulates each valid 2x2 depth quad into two
// triangles, rejecting quads with an invalid corner or whose max
// pairwise depth difference exceeds threshold, per §4.9. Same
// projection and Z-test as RenderPointCloud.
func RenderMesh(depth []uint16, width, height int, format DepthFormat, intr Intrinsics, mirrored bool, view ViewParams, color ColorSampler, threshold float64) *DepthBuffer {
	if threshold <= 0 {
		threshold = DefaultDiscontinuityThreshold
	}
	buf := NewDepthBuffer(view.Viewport.Width, view.Viewport.Height)

	project := func(x, y int) meshCorner {
		meters, ok := DecodeDepthMeters(depth[y*width+x], format, intr)
		if !ok {
			return meshCorner{}
		}
		point := Unproject(x, y, meters, intr, mirrored)
		vx, vy, z, ok := ProjectToViewport(point, view)
		if !ok {
			return meshCorner{}
		}
		rgba, ok := color(x, y)
		if !ok {
			return meshCorner{}
		}
		return meshCorner{vx: vx, vy: vy, z: z, meters: meters, rgba: rgba, ok: true}
	}

	for y := 0; y < height-1; y++ {
		for x := 0; x < width-1; x++ {
			c00 := project(x, y)
			c10 := project(x+1, y)
			c01 := project(x, y+1)
			c11 := project(x+1, y+1)
			if !c00.ok || !c10.ok || !c01.ok || !c11.ok {
				continue
			}
			if maxPairwiseDiff(c00.meters, c10.meters, c01.meters, c11.meters) > threshold {
				continue
			}

			rasterizeTriangle(buf, c00, c10, c01)
			rasterizeTriangle(buf, c10, c11, c01)
		}
	}
	return buf
}

func maxPairwiseDiff(vals ...float64) float64 {
	var max float64
	for i := range vals {
		for j := i + 1; j < len(vals); j++ {
			d := math.Abs(vals[i] - vals[j])
			if d > max {
				max = d
			}
		}
	}
	return max
}

// rasterizeTriangle fills a screen-space triangle using barycentric
// interpolation for Z and color, testing each covered pixel against
// the shared depth buffer.
func rasterizeTriangle(buf *DepthBuffer, a, b, c meshCorner) {
	minX := clampInt(minOf(a.vx, b.vx, c.vx), 0, buf.Width-1)
	maxX := clampInt(maxOf(a.vx, b.vx, c.vx), 0, buf.Width-1)
	minY := clampInt(minOf(a.vy, b.vy, c.vy), 0, buf.Height-1)
	maxY := clampInt(maxOf(a.vy, b.vy, c.vy), 0, buf.Height-1)

	area := edgeFn(a.vx, a.vy, b.vx, b.vy, c.vx, c.vy)
	if area == 0 {
		return
	}

	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			w0 := edgeFn(b.vx, b.vy, c.vx, c.vy, px, py)
			w1 := edgeFn(c.vx, c.vy, a.vx, a.vy, px, py)
			w2 := edgeFn(a.vx, a.vy, b.vx, b.vy, px, py)
			if (w0 < 0 || w1 < 0 || w2 < 0) && (w0 > 0 || w1 > 0 || w2 > 0) {
				continue
			}
			l0, l1, l2 := w0/area, w1/area, w2/area
			z := l0*a.z + l1*b.z + l2*c.z
			rgba := [4]byte{
				blend(l0, l1, l2, a.rgba[0], b.rgba[0], c.rgba[0]),
				blend(l0, l1, l2, a.rgba[1], b.rgba[1], c.rgba[1]),
				blend(l0, l1, l2, a.rgba[2], b.rgba[2], c.rgba[2]),
				255,
			}
			buf.TestAndWrite(px, py, z, rgba)
		}
	}
}

func edgeFn(ax, ay, bx, by, px, py int) float64 {
	return float64((bx-ax)*(py-ay) - (by-ay)*(px-ax))
}

func blend(l0, l1, l2 float64, v0, v1, v2 byte) byte {
	v := l0*float64(v0) + l1*float64(v1) + l2*float64(v2)
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return byte(v + 0.5)
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

func minOf(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

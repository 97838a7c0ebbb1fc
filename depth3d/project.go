package depth3d

import "math"

// ViewParams controls the camera-space-to-viewport projection shared
// by the point-cloud and mesh renderers.
type ViewParams struct {
	Pitch, Yaw float64 // radians
	Zoom       float64
	Viewport   struct{ Width, Height int }
}

// rotateYawPitch applies a yaw (around Y) then a pitch (around X)
// rotation to a camera-space point.
func rotateYawPitch(p Point3D, yaw, pitch float64) Point3D {
	cy, sy := math.Cos(yaw), math.Sin(yaw)
	x1 := p.X*cy + p.Z*sy
	z1 := -p.X*sy + p.Z*cy

	cp, sp := math.Cos(pitch), math.Sin(pitch)
	y2 := p.Y*cp - z1*sp
	z2 := p.Y*sp + z1*cp

	return Point3D{X: x1, Y: y2, Z: z2, Valid: p.Valid}
}

// ProjectToViewport rotates a camera-space point by view's yaw and pitch,
// then projects it to integer viewport coordinates using a simple
// perspective-scaled orthographic
// projection, returning the projected depth for the Z-test.
func ProjectToViewport(p Point3D, view ViewParams) (vx, vy int, z float64, ok bool) {
	if !p.Valid || p.Z <= 0 {
		return 0, 0, 0, false
	}
	rotated := rotateYawPitch(p, view.Yaw, view.Pitch)
	if rotated.Z <= 0 {
		return 0, 0, 0, false
	}

	scale := view.Zoom / rotated.Z
	px := rotated.X*scale + float64(view.Viewport.Width)/2
	py := -rotated.Y*scale + float64(view.Viewport.Height)/2

	vx, vy = int(px), int(py)
	if vx < 0 || vx >= view.Viewport.Width || vy < 0 || vy >= view.Viewport.Height {
		return 0, 0, 0, false
	}
	return vx, vy, rotated.Z, true
}

// DepthBuffer is a per-pixel minimum-Z test buffer for the point-cloud
// and mesh renderers, modeling the GPU's atomic-min depth test.
type DepthBuffer struct {
	Width, Height int
	Z             []float64
	RGBA          []byte
}

// NewDepthBuffer allocates a depth buffer with every Z initialized to
// +Inf (nothing written yet).
func NewDepthBuffer(width, height int) *DepthBuffer {
	z := make([]float64, width*height)
	for i := range z {
		z[i] = math.Inf(1)
	}
	return &DepthBuffer{Width: width, Height: height, Z: z, RGBA: make([]byte, width*height*4)}
}

// TestAndWrite performs the atomic-min Z test at (x,y): if z is closer
// than what's stored, it overwrites both the depth and RGBA texel and
// reports a win.
func (b *DepthBuffer) TestAndWrite(x, y int, z float64, rgba [4]byte) bool {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return false
	}
	i := y*b.Width + x
	if z >= b.Z[i] {
		return false
	}
	b.Z[i] = z
	o := i * 4
	copy(b.RGBA[o:o+4], rgba[:])
	return true
}

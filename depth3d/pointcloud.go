package depth3d

// ColorSampler returns the registered RGBA color for a depth pixel, or
// ok=false if no registered color is available.
type ColorSampler func(x, y int) (rgba [4]byte, ok bool)

// RenderPointCloud iterates every depth pixel, unprojects it, projects
// it into the viewport, and writes the winning color via the
// depth buffer's Z test (§4.9's point-cloud renderer).
func RenderPointCloud(depth []uint16, width, height int, format DepthFormat, intr Intrinsics, mirrored bool, view ViewParams, color ColorSampler) *DepthBuffer {
	buf := NewDepthBuffer(view.Viewport.Width, view.Viewport.Height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			meters, ok := DecodeDepthMeters(depth[y*width+x], format, intr)
			if !ok {
				continue
			}
			point := Unproject(x, y, meters, intr, mirrored)
			vx, vy, z, ok := ProjectToViewport(point, view)
			if !ok {
				continue
			}
			rgba, ok := color(x, y)
			if !ok {
				continue
			}
			buf.TestAndWrite(vx, vy, z, rgba)
		}
	}
	return buf
}

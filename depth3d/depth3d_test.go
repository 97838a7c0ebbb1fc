package depth3d

import "testing"

func TestDecodeDepthMetersMillimetersValidRange(t *testing.T) {
	if _, ok := DecodeDepthMeters(0, DepthFormatMillimeters, Intrinsics{}); ok {
		t.Fatalf("expected 0mm to be invalid")
	}
	if _, ok := DecodeDepthMeters(10000, DepthFormatMillimeters, Intrinsics{}); ok {
		t.Fatalf("expected 10000mm to be invalid (max valid is 9999)")
	}
	m, ok := DecodeDepthMeters(1500, DepthFormatMillimeters, Intrinsics{})
	if !ok || m != 1.5 {
		t.Fatalf("expected 1500mm to decode to 1.5m, got %v ok=%v", m, ok)
	}
}

func TestDecodeDepthMetersDisparityInvalidSentinel(t *testing.T) {
	intr := Intrinsics{DisparityA: 0.0001, DisparityB: 0.1}
	if _, ok := DecodeDepthMeters(65472, DepthFormatDisparity11Bit, intr); ok {
		t.Fatalf("expected raw >= 65472 to be invalid")
	}
	if _, ok := DecodeDepthMeters(65471, DepthFormatDisparity11Bit, intr); !ok {
		t.Fatalf("expected raw just below the sentinel to be valid")
	}
}

func TestUnprojectMirroredNegatesX(t *testing.T) {
	intr := Intrinsics{CX: 320, CY: 240, FX: 500, FY: 500}
	p := Unproject(420, 240, 2.0, intr, false)
	pm := Unproject(420, 240, 2.0, intr, true)
	if p.X != -pm.X {
		t.Fatalf("expected mirroring to negate X: %v vs %v", p.X, pm.X)
	}
	if p.Z != 2.0 {
		t.Fatalf("expected Z to equal depth, got %v", p.Z)
	}
}

func TestRegistrationOutOfBoundsDiscarded(t *testing.T) {
	tbl := &RegistrationTable{
		Width: 2, Height: 2,
		Table: []RegisteredPoint{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 0}},
	}
	if _, _, ok := tbl.Register(5, 5, 1000, 640, 480); ok {
		t.Fatalf("expected out-of-bounds depth pixel to fail registration")
	}
}

func TestRegistrationScalesForHighResRGB(t *testing.T) {
	tbl := &RegistrationTable{
		Width: 1, Height: 1,
		Table: []RegisteredPoint{{X: 256, Y: 100}},
	}
	x640, y640, ok := tbl.Register(0, 0, 1000, 640, 480)
	if !ok {
		t.Fatalf("expected registration at 640-wide RGB to succeed")
	}
	x1280, y1280, ok := tbl.Register(0, 0, 1000, 1280, 1024)
	if !ok {
		t.Fatalf("expected registration at 1280-wide RGB to succeed")
	}
	if x1280 != x640*2 || y1280 != y640*2 {
		t.Fatalf("expected coordinates to scale by the RGB:640 ratio: 640-wide (%d,%d) vs 1280-wide (%d,%d)", x640, y640, x1280, y1280)
	}
}

func TestProjectToViewportRejectsBehindCamera(t *testing.T) {
	view := ViewParams{Zoom: 100}
	view.Viewport.Width, view.Viewport.Height = 64, 64
	if _, _, _, ok := ProjectToViewport(Point3D{X: 0, Y: 0, Z: -1, Valid: true}, view); ok {
		t.Fatalf("expected a point behind the camera to be rejected")
	}
}

func TestDepthBufferZTestKeepsNearest(t *testing.T) {
	buf := NewDepthBuffer(4, 4)
	if !buf.TestAndWrite(1, 1, 2.0, [4]byte{1, 2, 3, 255}) {
		t.Fatalf("expected the first write to win")
	}
	if buf.TestAndWrite(1, 1, 3.0, [4]byte{9, 9, 9, 255}) {
		t.Fatalf("expected a farther write to lose the Z test")
	}
	if !buf.TestAndWrite(1, 1, 1.0, [4]byte{5, 5, 5, 255}) {
		t.Fatalf("expected a nearer write to win the Z test")
	}
}

func TestRenderPointCloudProducesSomeCoverage(t *testing.T) {
	const w, h = 8, 8
	depth := make([]uint16, w*h)
	for i := range depth {
		depth[i] = 1000
	}
	intr := Intrinsics{CX: 4, CY: 4, FX: 50, FY: 50}
	view := ViewParams{Zoom: 50}
	view.Viewport.Width, view.Viewport.Height = 64, 64
	color := func(x, y int) ([4]byte, bool) { return [4]byte{200, 200, 200, 255}, true }

	buf := RenderPointCloud(depth, w, h, DepthFormatMillimeters, intr, false, view, color)
	var written int
	for _, z := range buf.Z {
		if z < 1e9 {
			written++
		}
	}
	if written == 0 {
		t.Fatalf("expected at least one pixel to be written to the point cloud")
	}
}

func TestRenderMeshRejectsDiscontinuousQuads(t *testing.T) {
	const w, h = 2, 2
	depth := []uint16{1000, 1000, 1000, 5000} // one corner far off
	intr := Intrinsics{CX: 1, CY: 1, FX: 50, FY: 50}
	view := ViewParams{Zoom: 50}
	view.Viewport.Width, view.Viewport.Height = 32, 32
	color := func(x, y int) ([4]byte, bool) { return [4]byte{255, 255, 255, 255}, true }

	buf := RenderMesh(depth, w, h, DepthFormatMillimeters, intr, false, view, color, DefaultDiscontinuityThreshold)
	for _, z := range buf.Z {
		if z < 1e9 {
			t.Fatalf("expected the discontinuous quad to be rejected entirely")
		}
	}
}

package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNewPanZoomCamera(t *testing.T) {
	c := NewPanZoomCamera(2)
	if c.CenterX != 1 || c.CenterY != 1 || c.Zoom != 1 {
		t.Errorf("unexpected start %+v", c)
	}
	if !c.ViewMatrix(2).ApproxEqual(mgl32.Ident4()) {
		t.Error("a reset camera should not move the patch")
	}
}

func TestZoomByClamps(t *testing.T) {
	c := NewPanZoomCamera(1)
	c.ZoomBy(-3)
	if c.Zoom != c.MinZoom {
		t.Errorf("zoom = %v, want %v", c.Zoom, c.MinZoom)
	}
	c.ZoomBy(100)
	if c.Zoom != c.MaxZoom {
		t.Errorf("zoom = %v, want %v", c.Zoom, c.MaxZoom)
	}
	c.ZoomBy(-1)
	if c.Zoom >= c.MaxZoom {
		t.Error("zooming out should reduce the zoom")
	}
}

func TestViewMatrixKeepsCenter(t *testing.T) {
	const size = 1
	c := NewPanZoomCamera(size)
	c.ZoomBy(4)
	c.Pan(1, -2, size)

	// The camera center maps onto the patch center.
	got := c.ViewMatrix(size).Mul4x1(mgl32.Vec4{c.CenterX, c.CenterY, 0, 1})
	want := mgl32.Vec4{0.5, 0.5, 0, 1}
	if !got.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("center maps to %v, want %v", got, want)
	}
}

func TestPanStaysOnPatch(t *testing.T) {
	c := NewPanZoomCamera(1)
	c.Pan(-100, 100, 1)
	if c.CenterX != 0 || c.CenterY != 1 {
		t.Errorf("center = (%v, %v), want (0, 1)", c.CenterX, c.CenterY)
	}
	c.Reset(1)
	if c.CenterX != 0.5 || c.Zoom != 1 {
		t.Error("Reset should restore the full view")
	}
}

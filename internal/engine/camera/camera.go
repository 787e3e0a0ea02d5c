// Package camera provides the 2D camera used to inspect a patch.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// PanZoomCamera looks straight down at the patch plane.
type PanZoomCamera struct {
	// Point at the center of the view, in patch units
	CenterX, CenterY float32
	Zoom             float32

	// Constraints
	MinZoom float32
	MaxZoom float32

	// Sensitivity
	PanStep  float32 // fraction of the visible width per step
	ZoomStep float32 // multiplier per step
}

// NewPanZoomCamera creates a camera centered on a size×size patch.
func NewPanZoomCamera(size float32) *PanZoomCamera {
	c := &PanZoomCamera{
		MinZoom:  1.0,
		MaxZoom:  64.0,
		PanStep:  0.1,
		ZoomStep: 1.25,
	}
	c.Reset(size)
	return c
}

// Reset shows the whole patch again.
func (c *PanZoomCamera) Reset(size float32) {
	c.CenterX = size / 2
	c.CenterY = size / 2
	c.Zoom = 1.0
}

// Pan moves the view by steps in each axis, scaled so a step covers the
// same share of the screen at every zoom.
func (c *PanZoomCamera) Pan(stepsX, stepsY, size float32) {
	delta := c.PanStep * size / c.Zoom
	c.CenterX = mgl32.Clamp(c.CenterX+stepsX*delta, 0, size)
	c.CenterY = mgl32.Clamp(c.CenterY+stepsY*delta, 0, size)
}

// ZoomBy zooms in for positive steps and out for negative ones.
func (c *PanZoomCamera) ZoomBy(steps int) {
	z := c.Zoom
	for ; steps > 0; steps-- {
		z *= c.ZoomStep
	}
	for ; steps < 0; steps++ {
		z /= c.ZoomStep
	}
	c.Zoom = mgl32.Clamp(z, c.MinZoom, c.MaxZoom)
}

// ViewMatrix scales around the center so it lands where the patch center
// sits under the projection.
func (c *PanZoomCamera) ViewMatrix(size float32) mgl32.Mat4 {
	mid := size / 2
	return mgl32.Translate3D(mid, mid, 0).
		Mul4(mgl32.Scale3D(c.Zoom, c.Zoom, 1)).
		Mul4(mgl32.Translate3D(-c.CenterX, -c.CenterY, 0))
}

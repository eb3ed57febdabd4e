package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// camera maps simulation space (meters, y up) onto a w*h raster (y down).
// aspect scales the vertical axis for rasters with non-square cells.
type camera struct {
	center mgl64.Vec2
	zoom   float64 // raster units per meter
	aspect float64
}

// a camera showing radius meters around the origin on the short side of a
// w*h raster.
func newCamera(w, h int, radius, aspect float64) camera {
	short := math.Min(float64(w), float64(h)/aspect)
	return camera{zoom: short / 2 / radius, aspect: aspect}
}

// world to raster transform for a w*h raster.
func (c camera) matrix(w, h int) mgl64.Mat3 {
	return mgl64.Translate2D(float64(w)/2, float64(h)/2).
		Mul3(mgl64.Scale2D(c.zoom, -c.zoom*c.aspect)).
		Mul3(mgl64.Translate2D(-c.center[0], -c.center[1]))
}

// project p with a matrix from camera.matrix.
func project(m mgl64.Mat3, p mgl64.Vec2) (x, y int) {
	t := m.Mul3x1(p.Vec3(1))
	return int(math.Floor(t[0])), int(math.Floor(t[1]))
}

// pan moves the view by (dx, dy) raster units.
func (c *camera) pan(dx, dy float64) {
	c.center = c.center.Add(mgl64.Vec2{dx / c.zoom, -dy / (c.zoom * c.aspect)})
}

func (c *camera) zoomBy(factor float64) {
	c.zoom *= factor
}

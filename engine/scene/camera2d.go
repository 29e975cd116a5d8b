package scene

import "math"

// OrthoCamera2D looks at a surface-sized window of world space centered on
// (X, Y). One world unit is one surface pixel at zoom 1, so scenes keep
// their proportions when the surface they are bound to resizes.
type OrthoCamera2D struct {
	X, Y        float32
	RotationRad float32
	Zoom        float32 // 1 = no zoom

	w, h  float32
	vp    [16]float32
	dirty bool
}

func NewOrtho2D(width, height int) *OrthoCamera2D {
	c := &OrthoCamera2D{Zoom: 1}
	c.SetViewportPixels(width, height)
	return c
}

// SetViewportPixels sizes the visible window to a surface of w by h pixels.
func (c *OrthoCamera2D) SetViewportPixels(w, h int) {
	c.w, c.h = float32(max(w, 1)), float32(max(h, 1))
	c.dirty = true
}

// Width and Height are the visible world extent before zoom.
func (c *OrthoCamera2D) Width() float32  { return c.w }
func (c *OrthoCamera2D) Height() float32 { return c.h }

func (c *OrthoCamera2D) SetPosition(x, y float32) { c.X, c.Y = x, y; c.dirty = true }
func (c *OrthoCamera2D) Move(dx, dy float32)      { c.X += dx; c.Y += dy; c.dirty = true }
func (c *OrthoCamera2D) Rotate(dRad float32)      { c.RotationRad += dRad; c.dirty = true }

// SetZoom clamps z to 0.05.
func (c *OrthoCamera2D) SetZoom(z float32) {
	c.Zoom = max(z, 0.05)
	c.dirty = true
}

// VP returns the column-major view-projection matrix.
func (c *OrthoCamera2D) VP() [16]float32 {
	if c.dirty {
		c.vp = c.matrix()
		c.dirty = false
	}
	return c.vp
}

// matrix rotates world space by -RotationRad around the camera position and
// scales the visible window onto clip space.
func (c *OrthoCamera2D) matrix() [16]float32 {
	cos := float32(math.Cos(float64(c.RotationRad)))
	sin := float32(math.Sin(float64(c.RotationRad)))
	sx, sy := 2*c.Zoom/c.w, 2*c.Zoom/c.h

	a, b := sx*cos, sx*sin
	d, e := -sy*sin, sy*cos
	return [16]float32{
		a, d, 0, 0,
		b, e, 0, 0,
		0, 0, -1, 0,
		-(a*c.X + b*c.Y), -(d*c.X + e*c.Y), 0, 1,
	}
}

// ScreenOrtho maps pixel coordinates with a top-left origin and Y pointing
// down onto a w by h viewport.
func ScreenOrtho(w, h int) [16]float32 {
	fw, fh := float32(max(w, 1)), float32(max(h, 1))
	return [16]float32{
		2 / fw, 0, 0, 0,
		0, -2 / fh, 0, 0,
		0, 0, -1, 0,
		-1, 1, 0, 1,
	}
}

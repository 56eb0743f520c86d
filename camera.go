package bezray

import "math"

// Camera is a perspective pinhole camera.
type Camera struct {
	eye Vec3
	// Orthonormal basis: right, up, and back (towards the eye).
	right, up, back Vec3
	halfW, halfH    float64
}

// NewCamera creates a camera at eye looking at target.
//
// worldUp orients the image (it need not be orthogonal to the view
// direction), vfov is the vertical field of view in degrees, and aspect is
// the width/height ratio of the image.
func NewCamera(eye, target, worldUp Vec3, vfov, aspect float64) Camera {
	back := eye.Sub(target).Normalize()
	right := worldUp.Cross(back).Normalize()
	up := back.Cross(right)

	halfH := math.Tan(vfov * math.Pi / 360)
	return Camera{
		eye:   eye,
		right: right,
		up:    up,
		back:  back,
		halfW: halfH * aspect,
		halfH: halfH,
	}
}

// Eye returns the camera position.
func (c Camera) Eye() Vec3 {
	return c.eye
}

// Ray returns the primary ray through screen position (sx, sy), where both
// run over [0, 1] with the origin at the top-left corner, matching image
// pixel order. The ray direction is unit length.
func (c Camera) Ray(sx, sy float64) Ray {
	dir := c.back.Neg().
		Add(c.right.Mul((2*sx - 1) * c.halfW)).
		Add(c.up.Mul((1 - 2*sy) * c.halfH))
	return Ray{Origin: c.eye, Dir: dir.Normalize()}
}

package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a pinhole camera with an orthonormal basis.
type Camera struct {
	Eye     mgl32.Vec3
	Forward mgl32.Vec3
	Up      mgl32.Vec3
	Right   mgl32.Vec3
	FOV     float32 // radians
}

// NewCamera builds the basis from a forward and an approximate up vector.
// fovDeg is the full field of view in degrees.
func NewCamera(eye, forward, up mgl32.Vec3, fovDeg float32) Camera {
	f := forward.Normalize()
	r := f.Cross(up).Normalize()
	u := r.Cross(f)
	return Camera{
		Eye:     eye,
		Forward: f,
		Up:      u,
		Right:   r,
		FOV:     mgl32.DegToRad(fovDeg),
	}
}

// HalfCotHalfFOV is the distance of the image plane for a unit-wide film.
func (c Camera) HalfCotHalfFOV() float32 {
	return float32(0.5 / math.Tan(float64(c.FOV)/2))
}

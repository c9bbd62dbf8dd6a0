package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform places a mesh in the world. Matrix is applied first, then
// Scale, Rotate (degrees, Z*X*Y) and Translate.
type Transform struct {
	Matrix    mgl32.Mat4
	Scale     mgl32.Vec3
	Rotate    mgl32.Vec3
	Translate mgl32.Vec3
}

func NewTransform() *Transform {
	return &Transform{
		Matrix:    mgl32.Ident4(),
		Scale:     mgl32.Vec3{1, 1, 1},
		Rotate:    mgl32.Vec3{0, 0, 0},
		Translate: mgl32.Vec3{0, 0, 0},
	}
}

func (t *Transform) ObjectToWorld() mgl32.Mat4 {
	// M = T * Rz * Rx * Ry * S * Matrix
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	rx := mgl32.HomogRotate3DX(mgl32.DegToRad(t.Rotate.X()))
	ry := mgl32.HomogRotate3DY(mgl32.DegToRad(t.Rotate.Y()))
	rz := mgl32.HomogRotate3DZ(mgl32.DegToRad(t.Rotate.Z()))
	translate := mgl32.Translate3D(t.Translate.X(), t.Translate.Y(), t.Translate.Z())

	return translate.Mul4(rz).Mul4(rx).Mul4(ry).Mul4(scale).Mul4(t.Matrix)
}

// Invertible reports whether ObjectToWorld has a usable inverse.
func (t *Transform) Invertible() bool {
	det := t.ObjectToWorld().Det()
	return det > 1e-12 || det < -1e-12
}

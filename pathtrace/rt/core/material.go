package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Material struct {
	Albedo      mgl32.Vec3
	IOR         float32
	Roughness   float32
	Metallic    float32
	Translucent bool
}

// NewMaterial stores roughness squared, which is what the shading model consumes.
func NewMaterial(albedo mgl32.Vec3, ior, roughness, metallic float32, translucent bool) Material {
	return Material{
		Albedo:      albedo,
		IOR:         ior,
		Roughness:   roughness * roughness,
		Metallic:    metallic,
		Translucent: translucent,
	}
}

// Helper for default white
func DefaultMaterial() Material {
	return NewMaterial(mgl32.Vec3{1, 1, 1}, 1.0, 1.0, 0.0, false)
}

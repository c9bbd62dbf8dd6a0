package uniforms

import (
	"github.com/gekko3d/pathtracer/pathtrace/rt/core"
)

const (
	MaterialSize = 32
	LightSize    = 32
)

type Material struct {
	AlbedoIOR     [4]float32
	Roughness     float32
	Metallic      float32
	IsTranslucent int32
}

func NewMaterial(m core.Material) Material {
	translucent := int32(0)
	if m.Translucent {
		translucent = 1
	}
	return Material{
		AlbedoIOR:     vec4(m.Albedo, m.IOR),
		Roughness:     m.Roughness,
		Metallic:      m.Metallic,
		IsTranslucent: translucent,
	}
}

func (m Material) Put(buf []byte) {
	putVec4(buf, 0, m.AlbedoIOR)
	putF32(buf, 16, m.Roughness)
	putF32(buf, 20, m.Metallic)
	putI32(buf, 24, m.IsTranslucent)
	putU32(buf, 28, 0)
}

// Light: PosOrDir.w is 1 for point lights and 0 for directional ones.
type Light struct {
	PosOrDir [4]float32
	Strength [4]float32
}

func NewLight(l core.Light) Light {
	if l.Kind == core.LightDirectional {
		return Light{PosOrDir: vec4(l.Direction.Normalize(), 0), Strength: vec4(l.Strength, 1)}
	}
	return Light{PosOrDir: vec4(l.Position, 1), Strength: vec4(l.Strength, 1)}
}

func (l Light) Put(buf []byte) {
	putVec4(buf, 0, l.PosOrDir)
	putVec4(buf, 16, l.Strength)
}

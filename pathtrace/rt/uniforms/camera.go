package uniforms

import (
	"github.com/gekko3d/pathtracer/pathtrace/rt/core"
)

// Matches WGSL Camera
//
//	eye, forward, up, right : vec4<f32>  (64)
//	fov : f32                            (4)
//	half_cot_half_fov : f32              (4)
//	pad : vec2<f32>                      (8)
const CameraSize = 80

// VariableUniformSize is the per-frame uniform: camera, light index, padding.
const VariableUniformSize = 96

type Camera struct {
	Eye            [4]float32
	Forward        [4]float32
	Up             [4]float32
	Right          [4]float32
	FOV            float32
	HalfCotHalfFOV float32
}

func NewCamera(c core.Camera) Camera {
	return Camera{
		Eye:            vec4(c.Eye, 1),
		Forward:        vec4(c.Forward, 0),
		Up:             vec4(c.Up, 0),
		Right:          vec4(c.Right, 0),
		FOV:            c.FOV,
		HalfCotHalfFOV: c.HalfCotHalfFOV(),
	}
}

func (c Camera) Put(buf []byte) {
	putVec4(buf, 0, c.Eye)
	putVec4(buf, 16, c.Forward)
	putVec4(buf, 32, c.Up)
	putVec4(buf, 48, c.Right)
	putF32(buf, 64, c.FOV)
	putF32(buf, 68, c.HalfCotHalfFOV)
}

// VariableUniform changes between frames.
type VariableUniform struct {
	Camera         Camera
	CurrLightIndex uint32
}

func (v VariableUniform) ToBytes() []byte {
	buf := make([]byte, VariableUniformSize)
	v.Camera.Put(buf)
	putU32(buf, CameraSize, v.CurrLightIndex)
	return buf
}

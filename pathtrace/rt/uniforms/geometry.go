package uniforms

import (
	"github.com/gekko3d/pathtracer/pathtrace/rt/core"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	VertexSize      = 32
	TriangleSize    = 32
	SceneObjectSize = 128
)

// Vertex: position (w = 1) and normal (w = 0).
type Vertex struct {
	Position [4]float32
	Normal   [4]float32
}

func NewVertex(v core.MeshVertex) Vertex {
	return Vertex{Position: vec4(v.Position, 1), Normal: vec4(v.Normal, 0)}
}

func (v Vertex) Put(buf []byte) {
	putVec4(buf, 0, v.Position)
	putVec4(buf, 16, v.Normal)
}

// Triangle:
//
//	indices : vec4<u32>  (16)
//	material : u32       (4)
//	object : u32         (4)
//	pad : vec2<f32>      (8)
type Triangle struct {
	Indices  [4]uint32
	Material uint32
	Object   uint32
}

func NewTriangle(t core.Triangle) Triangle {
	g := t.GlobalIndices()
	return Triangle{
		Indices:  [4]uint32{g[0], g[1], g[2], 0},
		Material: t.Material,
		Object:   t.Object,
	}
}

func (t Triangle) Put(buf []byte) {
	for i, idx := range t.Indices {
		putU32(buf, i*4, idx)
	}
	putU32(buf, 16, t.Material)
	putU32(buf, 20, t.Object)
	putU32(buf, 24, 0)
	putU32(buf, 28, 0)
}

// SceneObject carries the model matrix and the matrix used for normals.
type SceneObject struct {
	Model   mgl32.Mat4
	ModelIT mgl32.Mat4
}

func NewSceneObject(model mgl32.Mat4) SceneObject {
	return SceneObject{Model: model, ModelIT: model.Transpose().Inv()}
}

func (o SceneObject) Put(buf []byte) {
	putMat4(buf, 0, o.Model)
	putMat4(buf, 64, o.ModelIT)
}

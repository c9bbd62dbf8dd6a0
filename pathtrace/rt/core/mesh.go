package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

type MeshVertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
}

// Mesh is an indexed triangle list in model space.
type Mesh struct {
	Name     string
	Vertices []MeshVertex
	Faces    [][3]uint32
}

func (m *Mesh) Bounds() BBox {
	if len(m.Vertices) == 0 {
		return EmptyBBox()
	}
	b := EmptyBBox()
	for _, v := range m.Vertices {
		b = b.Merge(BBox{Min: v.Position, Max: v.Position})
	}
	return b
}

// Triangle is the primitive the BVH is built over. Indices are local to the
// mesh; VertexOffset relocates them into the scene-wide vertex table.
type Triangle struct {
	Indices      [3]uint32
	VertexOffset uint32
	Material     uint32
	Object       uint32
	Box          BBox
}

// NewTriangle bounds face of mesh after placing it in the world with model.
func NewTriangle(mesh *Mesh, face int, model mgl32.Mat4, vertexOffset, material, object uint32) Triangle {
	idx := mesh.Faces[face]
	var pts [3]mgl32.Vec3
	for i, vi := range idx {
		p := mesh.Vertices[vi].Position
		pts[i] = model.Mul4x1(p.Vec4(1)).Vec3()
	}
	return Triangle{
		Indices:      idx,
		VertexOffset: vertexOffset,
		Material:     material,
		Object:       object,
		Box:          BBoxFromPoints(pts[:]...),
	}
}

func (t Triangle) BBox() BBox {
	return t.Box
}

// GlobalIndices returns the triangle's indices into the scene vertex table.
func (t Triangle) GlobalIndices() [3]uint32 {
	return [3]uint32{
		t.Indices[0] + t.VertexOffset,
		t.Indices[1] + t.VertexOffset,
		t.Indices[2] + t.VertexOffset,
	}
}

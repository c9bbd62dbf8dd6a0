package uniforms

import (
	"fmt"
)

// MaxSceneUniformBytes bounds the total size of the scene tables.
const MaxSceneUniformBytes = 128 * 1024 * 1024

// SceneParamsSize: lights_count u32, max_depth u32, pad vec2<u32>.
const SceneParamsSize = 16

// Capacity is the fixed number of slots in each scene table.
type Capacity struct {
	BVHNodes  int `yaml:"bvh_nodes"`
	Vertices  int `yaml:"vertices"`
	Triangles int `yaml:"triangles"`
	Objects   int `yaml:"objects"`
	Materials int `yaml:"materials"`
	Lights    int `yaml:"lights"`
}

func DefaultCapacity() Capacity {
	return Capacity{
		BVHNodes:  131072,
		Vertices:  131072,
		Triangles: 131072,
		Objects:   1024,
		Materials: 1024,
		Lights:    1024,
	}
}

// Bytes is the size of a scene uniform with these capacities.
func (c Capacity) Bytes() int {
	return c.BVHNodes*BVHNodeSize +
		c.Vertices*VertexSize +
		c.Triangles*TriangleSize +
		c.Objects*SceneObjectSize +
		c.Materials*MaterialSize +
		c.Lights*LightSize +
		SceneParamsSize
}

// CapacityError is the panic value raised when a table slot beyond capacity is written.
type CapacityError struct {
	Kind     string
	Index    int
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("too many %s: index %d exceeds capacity %d", e.Kind, e.Index, e.Capacity)
}

// Check panics with a *CapacityError when index does not fit in a table of the given capacity.
func Check(kind string, index, capacity int) {
	if index < 0 || index >= capacity {
		panic(&CapacityError{Kind: kind, Index: index, Capacity: capacity})
	}
}

// SceneUniform holds every scene table at its full, fixed length.
type SceneUniform struct {
	BVHNodes  []BVHNode
	Vertices  []Vertex
	Triangles []Triangle
	Objects   []SceneObject
	Materials []Material
	Lights    []Light

	LightsCount uint32
	MaxDepth    uint32
}

func NewSceneUniform(c Capacity) *SceneUniform {
	return &SceneUniform{
		BVHNodes:  make([]BVHNode, c.BVHNodes),
		Vertices:  make([]Vertex, c.Vertices),
		Triangles: make([]Triangle, c.Triangles),
		Objects:   make([]SceneObject, c.Objects),
		Materials: make([]Material, c.Materials),
		Lights:    make([]Light, c.Lights),
	}
}

func (s *SceneUniform) Capacity() Capacity {
	return Capacity{
		BVHNodes:  len(s.BVHNodes),
		Vertices:  len(s.Vertices),
		Triangles: len(s.Triangles),
		Objects:   len(s.Objects),
		Materials: len(s.Materials),
		Lights:    len(s.Lights),
	}
}

func (s *SceneUniform) Size() int {
	return s.Capacity().Bytes()
}

func (s *SceneUniform) SetVertex(i int, v Vertex) {
	Check("vertices", i, len(s.Vertices))
	s.Vertices[i] = v
}

func (s *SceneUniform) SetTriangle(i int, t Triangle) {
	Check("triangles", i, len(s.Triangles))
	s.Triangles[i] = t
}

func (s *SceneUniform) SetObject(i int, o SceneObject) {
	Check("objects", i, len(s.Objects))
	s.Objects[i] = o
}

func (s *SceneUniform) SetMaterial(i int, m Material) {
	Check("materials", i, len(s.Materials))
	s.Materials[i] = m
}

func (s *SceneUniform) SetLight(i int, l Light) {
	Check("lights", i, len(s.Lights))
	s.Lights[i] = l
}

func (s *SceneUniform) BVHNodeBytes() []byte { return encodeTable(s.BVHNodes, BVHNodeSize) }
func (s *SceneUniform) VertexBytes() []byte { return encodeTable(s.Vertices, VertexSize) }
func (s *SceneUniform) TriangleBytes() []byte { return encodeTable(s.Triangles, TriangleSize) }
func (s *SceneUniform) ObjectBytes() []byte { return encodeTable(s.Objects, SceneObjectSize) }
func (s *SceneUniform) MaterialBytes() []byte { return encodeTable(s.Materials, MaterialSize) }
func (s *SceneUniform) LightBytes() []byte { return encodeTable(s.Lights, LightSize) }

func (s *SceneUniform) ParamsBytes() []byte {
	buf := make([]byte, SceneParamsSize)
	putU32(buf, 0, s.LightsCount)
	putU32(buf, 4, s.MaxDepth)
	return buf
}

package uniforms

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gekko3d/pathtracer/pathtrace/rt/core"

	"github.com/go-gl/mathgl/mgl32"
)

func f32At(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4]))
}

func i32At(buf []byte, off int) int32 {
	return int32(binary.LittleEndian.Uint32(buf[off : off+4]))
}

func TestBVHNodeLayout(t *testing.T) {
	n := BVHNode{
		Left:      -1,
		Right:     -1,
		PrimStart: 3,
		PrimEnd:   7,
		Box:       NewBBox(core.BBox{Min: mgl32.Vec3{-1, -2, -3}, Max: mgl32.Vec3{4, 5, 6}}),
	}
	buf := n.ToBytes()
	if len(buf) != BVHNodeSize {
		t.Fatalf("expected %d bytes, got %d", BVHNodeSize, len(buf))
	}
	if i32At(buf, 0) != -1 || i32At(buf, 4) != -1 {
		t.Errorf("leaf children should be -1, got %d %d", i32At(buf, 0), i32At(buf, 4))
	}
	if i32At(buf, 8) != 3 || i32At(buf, 12) != 7 {
		t.Errorf("unexpected range [%d,%d)", i32At(buf, 8), i32At(buf, 12))
	}
	wantMin := []float32{-1, -2, -3, 1}
	wantMax := []float32{4, 5, 6, 1}
	for i := 0; i < 4; i++ {
		if got := f32At(buf, 16+i*4); got != wantMin[i] {
			t.Errorf("min[%d]: expected %f, got %f", i, wantMin[i], got)
		}
		if got := f32At(buf, 32+i*4); got != wantMax[i] {
			t.Errorf("max[%d]: expected %f, got %f", i, wantMax[i], got)
		}
	}
	if !n.IsLeaf() {
		t.Error("node with -1 children should be a leaf")
	}
}

func TestTriangleLayout(t *testing.T) {
	tri := NewTriangle(core.Triangle{Indices: [3]uint32{0, 1, 2}, VertexOffset: 10, Material: 4, Object: 9})
	buf := make([]byte, TriangleSize)
	tri.Put(buf)

	for i, want := range []uint32{10, 11, 12, 0, 4, 9} {
		if got := binary.LittleEndian.Uint32(buf[i*4:]); got != want {
			t.Errorf("word %d: expected %d, got %d", i, want, got)
		}
	}
}

func TestLightEncoding(t *testing.T) {
	point := NewLight(core.NewPointLight(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{5, 5, 5}))
	if point.PosOrDir != [4]float32{1, 2, 3, 1} {
		t.Errorf("point light should have w=1, got %v", point.PosOrDir)
	}

	dir := NewLight(core.NewDirectionalLight(mgl32.Vec3{0, -4, 0}, mgl32.Vec3{1, 1, 1}))
	if dir.PosOrDir != [4]float32{0, -1, 0, 0} {
		t.Errorf("directional light should be normalized with w=0, got %v", dir.PosOrDir)
	}
	if dir.Strength[3] != 1 {
		t.Errorf("strength w should be 1, got %f", dir.Strength[3])
	}
}

func TestMaterialLayout(t *testing.T) {
	m := NewMaterial(core.NewMaterial(mgl32.Vec3{0.5, 0.25, 1}, 1.33, 0.5, 0.1, true))
	buf := make([]byte, MaterialSize)
	m.Put(buf)

	if f32At(buf, 12) != 1.33 {
		t.Errorf("ior should be packed into albedo.w, got %f", f32At(buf, 12))
	}
	if f32At(buf, 16) != 0.25 {
		t.Errorf("expected squared roughness, got %f", f32At(buf, 16))
	}
	if i32At(buf, 24) != 1 {
		t.Errorf("expected translucent flag, got %d", i32At(buf, 24))
	}
}

func TestVariableUniformLayout(t *testing.T) {
	cam := core.NewCamera(mgl32.Vec3{0, 1, 2}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}, 90)
	v := VariableUniform{Camera: NewCamera(cam), CurrLightIndex: 5}
	buf := v.ToBytes()

	if len(buf) != VariableUniformSize {
		t.Fatalf("expected %d bytes, got %d", VariableUniformSize, len(buf))
	}
	if f32At(buf, 12) != 1 {
		t.Errorf("eye.w should be 1, got %f", f32At(buf, 12))
	}
	if f32At(buf, 48) != 1 {
		t.Errorf("right.x should be 1, got %f", f32At(buf, 48))
	}
	if math.Abs(float64(f32At(buf, 68))-0.5) > 1e-6 {
		t.Errorf("unexpected half_cot_half_fov %f", f32At(buf, 68))
	}
	if binary.LittleEndian.Uint32(buf[80:]) != 5 {
		t.Errorf("unexpected light index %d", binary.LittleEndian.Uint32(buf[80:]))
	}
}

func TestSceneObjectNormalMatrix(t *testing.T) {
	model := mgl32.Scale3D(2, 4, 8)
	o := NewSceneObject(model)
	want := mgl32.Scale3D(0.5, 0.25, 0.125)
	if !o.ModelIT.ApproxEqual(want) {
		t.Errorf("unexpected inverse transpose %v", o.ModelIT)
	}

	buf := make([]byte, SceneObjectSize)
	o.Put(buf)
	if f32At(buf, 0) != 2 || f32At(buf, 64) != 0.5 {
		t.Errorf("unexpected matrix encoding %f %f", f32At(buf, 0), f32At(buf, 64))
	}
}

func TestSceneUniformCapacity(t *testing.T) {
	c := Capacity{BVHNodes: 4, Vertices: 3, Triangles: 1, Objects: 1, Materials: 1, Lights: 2}
	s := NewSceneUniform(c)

	if s.Capacity() != c {
		t.Errorf("expected capacity %+v, got %+v", c, s.Capacity())
	}
	if got := len(s.BVHNodeBytes()); got != 4*BVHNodeSize {
		t.Errorf("node table should be encoded at full capacity, got %d bytes", got)
	}
	if s.Size() != c.Bytes() {
		t.Errorf("size mismatch %d vs %d", s.Size(), c.Bytes())
	}
	if DefaultCapacity().Bytes() >= MaxSceneUniformBytes {
		t.Errorf("default capacity should fit the scene uniform limit")
	}

	s.LightsCount = 2
	s.MaxDepth = 6
	p := s.ParamsBytes()
	if binary.LittleEndian.Uint32(p[0:]) != 2 || binary.LittleEndian.Uint32(p[4:]) != 6 {
		t.Errorf("unexpected params %v", p)
	}

	defer func() {
		r := recover()
		ce, ok := r.(*CapacityError)
		if !ok {
			t.Fatalf("expected *CapacityError panic, got %v", r)
		}
		if ce.Kind != "lights" || ce.Index != 2 || ce.Capacity != 2 {
			t.Errorf("unexpected capacity error %+v", ce)
		}
	}()
	s.SetLight(2, Light{})
}

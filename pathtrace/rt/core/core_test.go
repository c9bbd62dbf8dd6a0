package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestMaterialSquaresRoughness(t *testing.T) {
	m := NewMaterial(mgl32.Vec3{1, 0, 0}, 1.5, 0.5, 0.2, true)
	if m.Roughness != 0.25 {
		t.Errorf("expected squared roughness 0.25, got %f", m.Roughness)
	}
	if !m.Translucent || m.IOR != 1.5 {
		t.Errorf("unexpected material %+v", m)
	}
}

func TestCameraBasis(t *testing.T) {
	c := NewCamera(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -2}, mgl32.Vec3{0, 2, 0.1}, 90)

	if !c.Forward.ApproxEqual(mgl32.Vec3{0, 0, -1}) {
		t.Errorf("forward should be normalized, got %v", c.Forward)
	}
	if !c.Right.ApproxEqual(mgl32.Vec3{1, 0, 0}) {
		t.Errorf("unexpected right %v", c.Right)
	}
	if !c.Up.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-5) {
		t.Errorf("up should be re-orthogonalized, got %v", c.Up)
	}
	if math.Abs(float64(c.FOV)-math.Pi/2) > 1e-6 {
		t.Errorf("fov should be stored in radians, got %f", c.FOV)
	}
	if math.Abs(float64(c.HalfCotHalfFOV())-0.5) > 1e-6 {
		t.Errorf("half cot of 45 degrees should be 0.5, got %f", c.HalfCotHalfFOV())
	}
}

func TestTransformOrder(t *testing.T) {
	tr := NewTransform()
	tr.Scale = mgl32.Vec3{2, 2, 2}
	tr.Rotate = mgl32.Vec3{0, 0, 90}
	tr.Translate = mgl32.Vec3{10, 0, 0}

	// scale to (2,0,0), rotate about z to (0,2,0), then translate
	p := tr.ObjectToWorld().Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	if !p.ApproxEqualThreshold(mgl32.Vec3{10, 2, 0}, 1e-5) {
		t.Errorf("unexpected transformed point %v", p)
	}
	if !tr.Invertible() {
		t.Error("transform should be invertible")
	}

	tr.Scale = mgl32.Vec3{1, 0, 1}
	if tr.Invertible() {
		t.Error("zero scale should make the transform singular")
	}
}

func TestTriangleBoundsUseModelMatrix(t *testing.T) {
	mesh := &Mesh{
		Vertices: []MeshVertex{
			{Position: mgl32.Vec3{0, 0, 0}},
			{Position: mgl32.Vec3{1, 0, 0}},
			{Position: mgl32.Vec3{0, 1, 0}},
		},
		Faces: [][3]uint32{{0, 1, 2}},
	}
	model := mgl32.Translate3D(5, 0, -1)
	tri := NewTriangle(mesh, 0, model, 100, 3, 7)

	if tri.BBox().Min != (mgl32.Vec3{5, 0, -1}) || tri.BBox().Max != (mgl32.Vec3{6, 1, -1}) {
		t.Errorf("unexpected world box %v", tri.BBox())
	}
	if tri.GlobalIndices() != [3]uint32{100, 101, 102} {
		t.Errorf("unexpected global indices %v", tri.GlobalIndices())
	}
	if tri.Material != 3 || tri.Object != 7 {
		t.Errorf("unexpected material/object %d/%d", tri.Material, tri.Object)
	}
	if b := mesh.Bounds(); b.Max != (mgl32.Vec3{1, 1, 0}) {
		t.Errorf("unexpected mesh bounds %v", b)
	}
}

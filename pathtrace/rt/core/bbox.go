package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BBox is an axis-aligned bounding box. A box with Min > Max on any axis is empty.
type BBox struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyBBox returns the identity element of Merge.
func EmptyBBox() BBox {
	return BBox{
		Min: mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: mgl32.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// BBoxFromPoints returns the tightest box around points. It panics when points is empty.
func BBoxFromPoints(points ...mgl32.Vec3) BBox {
	if len(points) == 0 {
		panic("core: BBoxFromPoints called without points")
	}
	b := BBox{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min = minVec(b.Min, p)
		b.Max = maxVec(b.Max, p)
	}
	return b
}

func (b BBox) IsEmpty() bool {
	return b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() || b.Min.Z() > b.Max.Z()
}

// Merge returns the smallest box containing both b and o.
func (b BBox) Merge(o BBox) BBox {
	return BBox{Min: minVec(b.Min, o.Min), Max: maxVec(b.Max, o.Max)}
}

// CostMetric is the product of the three extents (box volume), 0 for an empty box.
func (b BBox) CostMetric() float32 {
	if b.IsEmpty() {
		return 0
	}
	d := b.Max.Sub(b.Min)
	return d.X() * d.Y() * d.Z()
}

func (b BBox) Centroid() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b BBox) Extent() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Contains reports whether o lies inside b. Empty boxes are contained in anything.
func (b BBox) Contains(o BBox) bool {
	if o.IsEmpty() {
		return true
	}
	for i := 0; i < 3; i++ {
		if o.Min[i] < b.Min[i] || o.Max[i] > b.Max[i] {
			return false
		}
	}
	return true
}

func minVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{min(a.X(), b.X()), min(a.Y(), b.Y()), min(a.Z(), b.Z())}
}

func maxVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{max(a.X(), b.X()), max(a.Y(), b.Y()), max(a.Z(), b.Z())}
}

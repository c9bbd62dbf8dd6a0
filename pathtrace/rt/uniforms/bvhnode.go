package uniforms

import (
	"github.com/gekko3d/pathtracer/pathtrace/rt/core"
)

// Matches WGSL BVHNode
// struct BVHNode {
//    left : i32;            (4)
//    right : i32;           (4)
//    prim_start : i32;      (4)
//    prim_end : i32;        (4)
//    bbox_min : vec4<f32>;  (16)
//    bbox_max : vec4<f32>;  (16)
// }; -> 48 bytes

const BVHNodeSize = 48

// BBox is the GPU form of core.BBox; w is always 1.
type BBox struct {
	Min [4]float32
	Max [4]float32
}

func NewBBox(b core.BBox) BBox {
	return BBox{Min: vec4(b.Min, 1), Max: vec4(b.Max, 1)}
}

// BVHNode is one slot of the flattened node table. Leaves have Left and Right
// set to -1 and cover primitives [PrimStart, PrimEnd).
type BVHNode struct {
	Left      int32
	Right     int32
	PrimStart int32
	PrimEnd   int32
	Box       BBox
}

func (n BVHNode) IsLeaf() bool {
	return n.Left == -1 && n.Right == -1
}

func (n BVHNode) Put(buf []byte) {
	putI32(buf, 0, n.Left)
	putI32(buf, 4, n.Right)
	putI32(buf, 8, n.PrimStart)
	putI32(buf, 12, n.PrimEnd)
	putVec4(buf, 16, n.Box.Min)
	putVec4(buf, 32, n.Box.Max)
}

func (n BVHNode) ToBytes() []byte {
	buf := make([]byte, BVHNodeSize)
	n.Put(buf)
	return buf
}

package bvh

import (
	"testing"

	"github.com/gekko3d/pathtracer/pathtrace/rt/uniforms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildLine(t *testing.T) *Tree {
	prims := make([]testPrim, 5)
	for i := range prims {
		prims[i] = segment(i, float32(i), float32(i)+0.5)
	}
	tree, err := Build(prims, Options{MaxLeafSize: 2, BucketCount: 4})
	require.NoError(t, err)
	return tree
}

func TestFlattenWritesByID(t *testing.T) {
	tree := buildLine(t)
	table := make([]uniforms.BVHNode, 8)
	tree.Flatten(table)

	root := table[0]
	assert.Equal(t, int32(1), root.Left)
	assert.Equal(t, int32(2), root.Right)
	assert.Equal(t, int32(0), root.PrimStart, "interior nodes leave the range zeroed")
	assert.Equal(t, int32(0), root.PrimEnd)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, root.Box.Min)
	assert.Equal(t, [4]float32{4.5, 0, 0, 1}, root.Box.Max)

	leaf := table[6]
	assert.True(t, leaf.IsLeaf())
	assert.Equal(t, int32(3), leaf.PrimStart)
	assert.Equal(t, int32(5), leaf.PrimEnd)

	for i := range tree.Nodes {
		n := tree.Nodes[i]
		assert.Equal(t, n.IsLeaf(), table[n.ID].IsLeaf(), "node %d", n.ID)
	}
	assert.Equal(t, uniforms.BVHNode{}, table[7], "slots past the last id stay untouched")
}

func TestFlattenIsIdempotent(t *testing.T) {
	tree := buildLine(t)
	a := make([]uniforms.BVHNode, 16)
	b := make([]uniforms.BVHNode, 16)
	tree.Flatten(a)
	tree.Flatten(b)
	tree.Flatten(b)
	assert.Equal(t, a, b)
}

func TestFlattenPanicsPastCapacity(t *testing.T) {
	tree := buildLine(t)
	table := make([]uniforms.BVHNode, 6)

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a capacity panic")
		ce, ok := r.(*uniforms.CapacityError)
		require.True(t, ok, "unexpected panic value %v", r)
		assert.Equal(t, 6, ce.Index)
		assert.Equal(t, 6, ce.Capacity)
	}()
	tree.Flatten(table)
}

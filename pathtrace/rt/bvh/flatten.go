package bvh

import (
	"github.com/gekko3d/pathtracer/pathtrace/rt/uniforms"
)

// Flatten writes every node into table[node.ID]. A nil tree writes nothing.
// It panics with *uniforms.CapacityError if an id does not fit in the table.
func (t *Tree) Flatten(table []uniforms.BVHNode) {
	if t == nil || len(t.Nodes) == 0 {
		return
	}

	stack := []int32{0}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		u := &t.Nodes[id]

		uniforms.Check("bvh nodes", int(u.ID), len(table))
		entry := uniforms.BVHNode{
			Left:  -1,
			Right: -1,
			Box:   uniforms.NewBBox(u.Box),
		}
		if u.IsLeaf() {
			entry.PrimStart = int32(u.Start)
			entry.PrimEnd = int32(u.End)
		} else {
			entry.Left = u.Left
			entry.Right = u.Right
			stack = append(stack, u.Right, u.Left)
		}
		table[u.ID] = entry
	}
}

type Stats struct {
	Nodes       int
	Leaves      int
	MaxDepth    int
	MaxLeafSize int
}

func (t *Tree) Stats() Stats {
	var s Stats
	if t == nil || len(t.Nodes) == 0 {
		return s
	}

	type item struct {
		id    int32
		depth int
	}
	stack := []item{{0, 1}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		u := &t.Nodes[it.id]

		s.Nodes++
		s.MaxDepth = max(s.MaxDepth, it.depth)
		if u.IsLeaf() {
			s.Leaves++
			s.MaxLeafSize = max(s.MaxLeafSize, u.Size())
			continue
		}
		stack = append(stack, item{u.Right, it.depth + 1}, item{u.Left, it.depth + 1})
	}
	return s
}

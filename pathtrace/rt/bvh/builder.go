package bvh

import (
	"github.com/gekko3d/pathtracer/pathtrace/rt/core"

	"github.com/pkg/errors"
)

var (
	ErrInvalidBucketCount = errors.New("bvh: bucket count must be at least 2")
	ErrInvalidLeafSize    = errors.New("bvh: max leaf size must be positive")
)

// Primitive is anything the builder can bin: it only needs a bounding box.
type Primitive interface {
	BBox() core.BBox
}

type Options struct {
	MaxLeafSize  int  `yaml:"max_leaf_size"`
	BucketCount  int  `yaml:"bucket_number"`
	ParallelAxes bool `yaml:"parallel_axes"`
}

func DefaultOptions() Options {
	return Options{
		MaxLeafSize: 4,
		BucketCount: 16,
	}
}

func (o Options) Validate() error {
	if o.BucketCount < 2 {
		return errors.Wrapf(ErrInvalidBucketCount, "got %d", o.BucketCount)
	}
	if o.MaxLeafSize <= 0 {
		return errors.Wrapf(ErrInvalidLeafSize, "got %d", o.MaxLeafSize)
	}
	return nil
}

// Node covers primitives [Start, End). Left and Right are child ids, -1 for a leaf.
type Node struct {
	ID    int32
	Left  int32
	Right int32
	Start int
	End   int
	Box   core.BBox
}

func (n *Node) IsLeaf() bool {
	return n.Left < 0
}

func (n *Node) Size() int {
	return n.End - n.Start
}

// Tree is an arena of nodes; Nodes[i].ID == i and the root is Nodes[0].
type Tree struct {
	Nodes []Node
}

func (t *Tree) Root() *Node {
	if t == nil || len(t.Nodes) == 0 {
		return nil
	}
	return &t.Nodes[0]
}

// Build constructs a binned-SAH BVH over prims, reordering prims in place so
// every node covers a contiguous range. It returns a nil tree for empty input.
func Build[P Primitive](prims []P, opts Options) (*Tree, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(prims) == 0 {
		return nil, nil
	}

	b := newBuilder(prims, opts)
	tree := &Tree{Nodes: make([]Node, 0, 2*len(prims)/opts.MaxLeafSize+1)}

	nextID := int32(0)
	tree.Nodes = append(tree.Nodes, b.newNode(&nextID, 0, len(prims)))

	stack := []int32{0}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		u := tree.Nodes[id]
		if u.Size() <= opts.MaxLeafSize {
			continue
		}

		axis, boundary := b.findSplit(u)
		mid := b.partition(u, axis, boundary)
		if mid == u.Start || mid == u.End {
			continue
		}

		left := b.newNode(&nextID, u.Start, mid)
		right := b.newNode(&nextID, mid, u.End)
		tree.Nodes[id].Left = left.ID
		tree.Nodes[id].Right = right.ID
		tree.Nodes = append(tree.Nodes, left, right)

		stack = append(stack, left.ID, right.ID)
	}
	return tree, nil
}

type builder[P Primitive] struct {
	prims   []P
	opts    Options
	buckets [3]axisBuckets
	inLeft  []bool
	inRight []bool
}

func newBuilder[P Primitive](prims []P, opts Options) *builder[P] {
	b := &builder[P]{
		prims:   prims,
		opts:    opts,
		inLeft:  make([]bool, len(prims)),
		inRight: make([]bool, len(prims)),
	}
	for a := range b.buckets {
		b.buckets[a] = newAxisBuckets(opts.BucketCount, len(prims))
	}
	return b
}

// newNode allocates the next id for [start, end) and bounds it.
func (b *builder[P]) newNode(nextID *int32, start, end int) Node {
	box := core.EmptyBBox()
	for i := start; i < end; i++ {
		box = box.Merge(b.prims[i].BBox())
	}
	n := Node{ID: *nextID, Left: -1, Right: -1, Start: start, End: end, Box: box}
	*nextID++
	return n
}

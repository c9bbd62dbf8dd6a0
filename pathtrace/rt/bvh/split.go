package bvh

import (
	"math"

	"github.com/gekko3d/pathtracer/pathtrace/rt/core"

	"golang.org/x/sync/errgroup"
)

// Axes whose bucket width is at or below splitEpsilon are never binned.
const splitEpsilon = 1e-4

// axisBuckets is the binning state of one axis for the node being split.
type axisBuckets struct {
	boxes  []core.BBox
	counts []int
	prefix []core.BBox
	suffix []core.BBox
	// bucketOf[i] is the bucket of the i-th primitive of the node, -1 when
	// it was not recorded on this axis.
	bucketOf []int

	cost     float32
	boundary int
}

func newAxisBuckets(bucketCount, primCount int) axisBuckets {
	return axisBuckets{
		boxes:    make([]core.BBox, bucketCount),
		counts:   make([]int, bucketCount),
		prefix:   make([]core.BBox, bucketCount),
		suffix:   make([]core.BBox, bucketCount),
		bucketOf: make([]int, primCount),
	}
}

// findSplit bins u along every axis and returns the cheapest axis and its
// bucket boundary. Ties go to x, then y, then z.
func (b *builder[P]) findSplit(u Node) (axis int, boundary int) {
	if b.opts.ParallelAxes {
		var g errgroup.Group
		for a := 0; a < 3; a++ {
			g.Go(func() error {
				b.binAxis(u, a)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for a := 0; a < 3; a++ {
			b.binAxis(u, a)
		}
	}

	x, y, z := b.buckets[0].cost, b.buckets[1].cost, b.buckets[2].cost
	switch {
	case x <= y && x <= z:
		axis = 0
	case y <= x && y <= z:
		axis = 1
	default:
		axis = 2
	}
	return axis, b.buckets[axis].boundary
}

func (b *builder[P]) binAxis(u Node, axis int) {
	ab := &b.buckets[axis]
	bucketCount := len(ab.boxes)
	for k := range ab.boxes {
		ab.boxes[k] = core.EmptyBBox()
		ab.counts[k] = 0
	}
	bucketOf := ab.bucketOf[:u.Size()]

	width := (u.Box.Max[axis] - u.Box.Min[axis]) / float32(bucketCount)
	if !(width > splitEpsilon) {
		for i := range bucketOf {
			bucketOf[i] = -1
		}
		ab.cost = float32(math.Inf(1))
		ab.boundary = bucketCount / 2
		return
	}

	for i := u.Start; i < u.End; i++ {
		box := b.prims[i].BBox()
		pos := (box.Centroid()[axis] - u.Box.Min[axis]) / width

		// A centroid on the upper face lands at pos == bucketCount and is
		// left out of every bucket.
		if pos >= 0 && pos < float32(bucketCount) {
			k := int(pos)
			ab.boxes[k] = ab.boxes[k].Merge(box)
			ab.counts[k]++
			bucketOf[i-u.Start] = k
		} else {
			bucketOf[i-u.Start] = -1
		}
	}
	ab.cost, ab.boundary = ab.bestBoundary(u.Size())
}

// bestBoundary sweeps the bucketCount-1 inner boundaries. Boundary k puts
// buckets [0, k) on the left.
func (ab *axisBuckets) bestBoundary(total int) (float32, int) {
	n := len(ab.boxes)

	ab.prefix[0] = ab.boxes[0]
	for k := 1; k < n; k++ {
		ab.prefix[k] = ab.prefix[k-1].Merge(ab.boxes[k])
	}
	ab.suffix[n-1] = ab.boxes[n-1]
	for k := n - 2; k >= 0; k-- {
		ab.suffix[k] = ab.suffix[k+1].Merge(ab.boxes[k])
	}

	bestCost := float32(math.Inf(1))
	bestSplit := 0
	leftCount := 0
	for k := 1; k < n; k++ {
		leftCount += ab.counts[k-1]
		lc := float32(leftCount)
		rc := float32(total) - lc
		cost := ab.prefix[k-1].CostMetric()*lc + ab.suffix[k].CostMetric()*rc
		if cost < bestCost {
			bestCost = cost
			bestSplit = k
		}
	}
	return bestCost, bestSplit
}

// partition moves the primitives binned below boundary on axis to the front
// of u's range and returns the first index of the right half.
func (b *builder[P]) partition(u Node, axis, boundary int) int {
	n := u.Size()
	bucketOf := b.buckets[axis].bucketOf[:n]
	inLeft := b.inLeft[:n]
	inRight := b.inRight[:n]

	leftCount := 0
	for i, k := range bucketOf {
		inLeft[i] = k >= 0 && k < boundary
		inRight[i] = k >= boundary
		if inLeft[i] {
			leftCount++
		}
	}

	// Membership is by position before any swap. Every slot of [start, mid)
	// that is not a left member pairs with a non-right slot of [mid, end),
	// so rp never drops below mid.
	mid := u.Start + leftCount
	rp := u.End - 1
	for lp := u.Start; lp < mid; lp++ {
		if inLeft[lp-u.Start] {
			continue
		}
		for inRight[rp-u.Start] {
			rp--
		}
		b.prims[lp], b.prims[rp] = b.prims[rp], b.prims[lp]
		rp--
	}
	return mid
}

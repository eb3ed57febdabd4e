package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// KDTree finds exact candidates with a k-d tree over body positions. Every
// collision involves a primary, so only primaries query the tree: each one
// collects the bodies whose centres are within reach of its surface.
type KDTree struct{}

func (KDTree) Name() string { return "kdtree" }

func (KDTree) Candidates(r *Registry) [][]*Body {
	bodies := r.Bodies()
	if len(bodies) < 2 || r.Len0() == 0 {
		return nil
	}

	points := make(bodyPoints, len(bodies))
	largest := 0.0
	for i, b := range bodies {
		points[i] = bodyPoint{body: b}
		largest = math.Max(largest, b.PhysicalRadius)
	}
	tree := kdtree.New(points, false)

	seen := make(map[ID]bool)
	var group []*Body
	add := func(b *Body) {
		if !seen[b.id] {
			seen[b.id] = true
			group = append(group, b)
		}
	}

	for _, p := range r.Primaries() {
		reach := p.PhysicalRadius + largest
		keep := kdtree.NewDistKeeper(reach * reach)
		tree.NearestSet(keep, bodyPoint{body: p})

		var near []*Body
		for _, c := range keep.Heap {
			if c.Comparable == nil {
				continue // sentinel
			}
			if b := c.Comparable.(bodyPoint).body; b.id != p.id {
				near = append(near, b)
			}
		}
		if len(near) == 0 {
			continue
		}
		add(p)
		for _, b := range near {
			add(b)
		}
	}

	if len(group) < 2 {
		return nil
	}
	return [][]*Body{group}
}

// bodyPoint is a body as a point of the plane.
type bodyPoint struct {
	body *Body
}

func (p bodyPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(bodyPoint)
	return p.body.pos[d] - q.body.pos[d]
}

func (p bodyPoint) Dims() int { return 2 }

// Distance is the squared euclidean distance.
func (p bodyPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(bodyPoint)
	return p.body.pos.Sub(q.body.pos).LenSqr()
}

type bodyPoints []bodyPoint

func (p bodyPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p bodyPoints) Len() int                      { return len(p) }
func (p bodyPoints) Pivot(d kdtree.Dim) int {
	return plane{bodyPoints: p, Dim: d}.Pivot()
}
func (p bodyPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane sorts points along one dimension.
type plane struct {
	kdtree.Dim
	bodyPoints
}

func (p plane) Less(i, j int) bool {
	return p.bodyPoints[i].body.pos[p.Dim] < p.bodyPoints[j].body.pos[p.Dim]
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.bodyPoints = p.bodyPoints[start:end]
	return p
}
func (p plane) Swap(i, j int) {
	p.bodyPoints[i], p.bodyPoints[j] = p.bodyPoints[j], p.bodyPoints[i]
}

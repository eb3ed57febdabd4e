package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

/*

spacial tree acceleration structure.
point quad-tree over body positions, in the style of a Barnes-Hut tree but
without mass aggregation: it only answers "who is near this point".

*/

type nodekind uint8

// node types
const (
	external nodekind = iota
	internal
)

type quadrant uint8

// child positions (quadrants)
// low bit is X axis, high bit is Y axis
// L (0) means < center, H (1) means >= center
const (
	LL quadrant = 0b00
	LH quadrant = 0b01
	HL quadrant = 0b10
	HH quadrant = 0b11
)

// leaves at this depth hold any number of bodies, which stops coincident
// bodies from splitting forever.
const maxDepth = 32

type nodebound struct {
	center mgl64.Vec2
	width  float64 // square
}

// does this bound contain point?
func (n nodebound) contains(point mgl64.Vec2) bool {
	half := n.width / 2
	return n.center[0]-half <= point[0] && point[0] <= n.center[0]+half &&
		n.center[1]-half <= point[1] && point[1] <= n.center[1]+half
}

// does this bound touch the circle at c with radius r?
func (n nodebound) touches(c mgl64.Vec2, r float64) bool {
	half := n.width / 2
	dx := math.Max(math.Abs(c[0]-n.center[0])-half, 0)
	dy := math.Max(math.Abs(c[1]-n.center[1])-half, 0)
	return dx*dx+dy*dy <= r*r
}

// generate the bounds for a quadrant of the parent's bounds.
func quadrantBound(parent nodebound, q quadrant) nodebound {
	// each quadrant is ±1/4 of the parent's width from the parent's center.
	tx := mgl64.Vec2{
		parent.width * 0.25 * (float64((q&LH)*2) - 1.0),
		parent.width * 0.25 * (float64(((q&HL)>>1)*2) - 1.0),
	}
	return nodebound{center: parent.center.Add(tx), width: parent.width / 2}
}

// determines which quadrant (relative to midpoint) in which point belongs.
func quadrantOf(midpoint, point mgl64.Vec2) (q quadrant) {
	if point[0] >= midpoint[0] {
		q |= LH
	}
	if point[1] >= midpoint[1] {
		q |= HL
	}
	return
}

type node struct {
	kind     nodekind
	depth    int
	children []*node
	bodies   []*Body
	bounds   nodebound
}

// create children nodes with appropriate bounds
func (n *node) split() {
	n.children = make([]*node, 4)
	for q := LL; q <= HH; q++ {
		n.children[q] = &node{bounds: quadrantBound(n.bounds, q), depth: n.depth + 1}
	}
}

// place a body in the tree rooted at this node.
// returns false if the body doesn't belong in this node.
func (n *node) push(b *Body) bool {
	if !n.bounds.contains(b.pos) {
		return false
	}

	switch n.kind {
	case external:
		// simple case: an empty leaf, or a leaf that can't split any more
		if len(n.bodies) == 0 || n.depth >= maxDepth {
			n.bodies = append(n.bodies, b)
			return true
		}

		// 'complex' case: this leaf already has a body
		//
		// 1) convert this node into an internal node by splitting it into
		// quadrants, and push the existing bodies into the children
		n.split()
		n.kind = internal
		for _, old := range n.bodies {
			n.children[quadrantOf(n.bounds.center, old.pos)].push(old)
		}
		n.bodies = nil

		// 2) process the incoming body, which is (conveniently)
		// exactly the same as for an internal node
		fallthrough

	case internal:
		n.children[quadrantOf(n.bounds.center, b.pos)].push(b)
	}

	return true
}

// walk the tree calling fn for every body whose centre is within r of c.
func (n *node) within(c mgl64.Vec2, r float64, fn func(b *Body)) {
	if !n.bounds.touches(c, r) {
		return
	}
	switch n.kind {
	case internal:
		for _, child := range n.children {
			child.within(c, r, fn)
		}
	case external:
		for _, b := range n.bodies {
			if b.pos.Sub(c).LenSqr() <= r*r {
				fn(b)
			}
		}
	}
}

// builds a tree just large enough for bodies.
func maketree(bodies []*Body) (root *node) {
	half := 0.0
	for _, b := range bodies {
		half = math.Max(half, math.Max(math.Abs(b.pos[0]), math.Abs(b.pos[1])))
	}
	root = &node{bounds: nodebound{width: 2*half + 1}}
	for _, b := range bodies {
		root.push(b)
	}
	return
}

// QuadTree finds exact candidates with a point quad-tree, querying around
// each primary the same way KDTree does.
type QuadTree struct{}

func (QuadTree) Name() string { return "quadtree" }

func (QuadTree) Candidates(r *Registry) [][]*Body {
	bodies := r.Bodies()
	if len(bodies) < 2 || r.Len0() == 0 {
		return nil
	}

	largest := 0.0
	for _, b := range bodies {
		largest = math.Max(largest, b.PhysicalRadius)
	}
	root := maketree(bodies)

	seen := make(map[ID]bool)
	var group []*Body
	for _, p := range r.Primaries() {
		var near []*Body
		root.within(p.pos, p.PhysicalRadius+largest, func(b *Body) {
			if b.id != p.id {
				near = append(near, b)
			}
		})
		if len(near) == 0 {
			continue
		}
		for _, b := range append(near, p) {
			if !seen[b.id] {
				seen[b.id] = true
				group = append(group, b)
			}
		}
	}

	if len(group) < 2 {
		return nil
	}
	return [][]*Body{group}
}

package physics

import "math"

// Detector gathers groups of bodies that may collide. Only bodies of the
// same group are tested against each other.
type Detector interface {
	Candidates(r *Registry) [][]*Body
	Name() string
}

// Binned puts every body closer than MaxDistance to the origin into a
// square grid of BinWidth cells and tests bodies of the same cell only.
//
// Bodies in neighbouring cells are never tested, so a collision across a
// cell border is missed. Use Exhaustive or KDTree when that matters.
type Binned struct {
	MaxDistance float64 // m
	BinWidth    float64 // m
}

// DefaultBinned covers a solar-system-sized scene.
func DefaultBinned() Binned {
	return Binned{MaxDistance: AU * 10, BinWidth: AU / 2}
}

func (Binned) Name() string { return "binned" }

func (d Binned) Candidates(r *Registry) [][]*Body { return d.Bins(r) }

// Bins is the grid, row by row. A grid has no cells when no body is in range.
func (d Binned) Bins(r *Registry) [][]*Body {
	inRange := func(b *Body) bool {
		return b.pos.Len() < d.MaxDistance
	}

	var selected []*Body
	halfwidth := 0.0
	r.Each(func(b *Body) {
		if !inRange(b) {
			return
		}
		selected = append(selected, b)
		halfwidth = math.Max(halfwidth, math.Max(math.Abs(b.pos[0]), math.Abs(b.pos[1])))
	})
	if len(selected) == 0 {
		return nil
	}

	width := halfwidth * 2
	count := int(width / d.BinWidth)
	if count < 1 {
		count = 1
	}

	bins := make([][]*Body, count*count)
	offset := width / 2
	for _, b := range selected {
		bx := cell(b.pos[0]+offset, d.BinWidth, count)
		by := cell(b.pos[1]+offset, d.BinWidth, count)
		i := bx + by*count
		bins[i] = append(bins[i], b)
	}
	return bins
}

// cell index of an offset coordinate, clamped into [0, count).
func cell(x, width float64, count int) int {
	c := int(math.Floor(x / width))
	if c < 0 {
		return 0
	}
	if c > count-1 {
		return count - 1
	}
	return c
}

// BinStats is the smallest, largest and mean occupancy of bins.
func BinStats(bins [][]*Body) (lo, hi, avg int) {
	if len(bins) == 0 {
		return 0, 0, 0
	}
	lo = len(bins[0])
	total := 0
	for _, bin := range bins {
		n := len(bin)
		if n < lo {
			lo = n
		}
		if n > hi {
			hi = n
		}
		total += n
	}
	return lo, hi, total / len(bins)
}

// Exhaustive tests every pair of bodies.
type Exhaustive struct{}

func (Exhaustive) Name() string { return "exhaustive" }

func (Exhaustive) Candidates(r *Registry) [][]*Body {
	return [][]*Body{r.Bodies()}
}

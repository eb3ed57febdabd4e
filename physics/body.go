package physics

import (
	"fmt"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
)

// MaxHistory is the number of past positions kept for a body's trail.
const MaxHistory = 1000

// ID identifies a body for the lifetime of a process. IDs are never reused.
type ID uint64

// Tier is the gravitational influence class of a body.
type Tier uint8

// body tiers
const (
	Primary   Tier = iota // pulls and is pulled by every primary
	Secondary             // pulled by primaries only
)

func (t Tier) String() string {
	switch t {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	}
	return fmt.Sprintf("tier(%d)", uint8(t))
}

// Body is a single simulated space body.
type Body struct {
	id   ID
	tier Tier
	pos  mgl64.Vec2 // m

	Mass           float64    // kg
	PhysicalRadius float64    // m, used for collisions and softening
	DrawRadius     float64    // px, presentation only
	Vel            mgl64.Vec2 // m/s
	Acc            mgl64.Vec2 // m/s²
	Fixed          bool       // never advanced, never absorbed
	Trail          bool       // record position history

	history History
}

// BodyParams are the construction parameters of a body.
type BodyParams struct {
	Tier           Tier
	Mass           float64
	Pos            mgl64.Vec2
	PhysicalRadius float64
	DrawRadius     float64
	Vel            mgl64.Vec2
	Acc            mgl64.Vec2
	Fixed          bool
	Trail          bool
}

// Factory hands out body identities. Every body of a run should come from
// the same factory.
type Factory struct {
	next atomic.Uint64
}

// New builds a body with the next free identity.
func (f *Factory) New(p BodyParams) *Body {
	b := &Body{
		id:             ID(f.next.Add(1) - 1),
		tier:           p.Tier,
		Mass:           p.Mass,
		PhysicalRadius: p.PhysicalRadius,
		DrawRadius:     p.DrawRadius,
		Vel:            p.Vel,
		Acc:            p.Acc,
		Fixed:          p.Fixed,
		Trail:          p.Trail,
	}
	b.SetPos(p.Pos)
	return b
}

func (b *Body) ID() ID { return b.id }

func (b *Body) Tier() Tier { return b.tier }

func (b *Body) Pos() mgl64.Vec2 { return b.pos }

// SetPos moves the body, recording the new position in its history when
// the body has a trail.
func (b *Body) SetPos(p mgl64.Vec2) {
	b.pos = p
	if b.Trail {
		b.history.push(p)
	}
}

// History is the recent trail of the body.
func (b *Body) History() *History { return &b.history }

// KineticEnergy is ½·m·|v|².
func (b *Body) KineticEnergy() float64 {
	return 0.5 * b.Mass * b.Vel.LenSqr()
}

func (b *Body) String() string {
	return fmt.Sprintf("#%d %s m: %.4g p: [%.4g, %.4g] v: [%.4g, %.4g]",
		b.id, b.tier, b.Mass, b.pos[0], b.pos[1], b.Vel[0], b.Vel[1])
}

// History is a bounded ring of positions. Once full, the oldest position is
// overwritten.
type History struct {
	points []mgl64.Vec2
	start  int
}

// storage grows up to MaxHistory, so bodies without long lives stay small.
func (h *History) push(p mgl64.Vec2) {
	if len(h.points) < MaxHistory {
		h.points = append(h.points, p)
		return
	}
	h.points[h.start] = p
	h.start = (h.start + 1) % MaxHistory
}

// Len is the number of recorded positions.
func (h *History) Len() int { return len(h.points) }

// Points returns a copy of the history, oldest first.
func (h *History) Points() []mgl64.Vec2 {
	out := make([]mgl64.Vec2, 0, len(h.points))
	out = append(out, h.points[h.start:]...)
	out = append(out, h.points[:h.start]...)
	return out
}

// Last returns the most recent position.
func (h *History) Last() (mgl64.Vec2, bool) {
	if len(h.points) == 0 {
		return mgl64.Vec2{}, false
	}
	i := h.start - 1
	if i < 0 {
		i = len(h.points) - 1
	}
	return h.points[i], true
}

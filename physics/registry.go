package physics

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Registry is the collection of bodies being simulated, split by tier.
//
// A Registry is not safe for concurrent mutation. Whoever drives the
// simulation owns it and hands it to one phase at a time.
type Registry struct {
	tier0 map[ID]*Body
	tier1 map[ID]*Body
}

// NewRegistry creates a registry holding bodies.
func NewRegistry(bodies ...*Body) *Registry {
	r := &Registry{
		tier0: make(map[ID]*Body),
		tier1: make(map[ID]*Body),
	}
	r.Add(bodies...)
	return r
}

// Add places each body into the partition of its tier.
func (r *Registry) Add(bodies ...*Body) {
	for _, b := range bodies {
		if b == nil {
			continue
		}
		r.partition(b.tier)[b.id] = b
	}
}

func (r *Registry) partition(t Tier) map[ID]*Body {
	if t == Primary {
		return r.tier0
	}
	return r.tier1
}

// Each calls fn for every primary, then every secondary. Order within a
// tier is unspecified.
func (r *Registry) Each(fn func(b *Body)) {
	for _, b := range r.tier0 {
		fn(b)
	}
	for _, b := range r.tier1 {
		fn(b)
	}
}

// Bodies returns every body, primaries first.
func (r *Registry) Bodies() []*Body {
	out := make([]*Body, 0, r.Len())
	r.Each(func(b *Body) { out = append(out, b) })
	return out
}

// Primaries returns the tier-0 bodies ordered by ID.
func (r *Registry) Primaries() []*Body { return sorted(r.tier0) }

// Secondaries returns the tier-1 bodies ordered by ID.
func (r *Registry) Secondaries() []*Body { return sorted(r.tier1) }

func sorted(m map[ID]*Body) []*Body {
	out := make([]*Body, 0, len(m))
	for _, b := range m {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Get looks a body up in both tiers.
func (r *Registry) Get(id ID) (*Body, bool) {
	if b, ok := r.tier0[id]; ok {
		return b, true
	}
	b, ok := r.tier1[id]
	return b, ok
}

// Mutate overwrites the mass and velocity of a body. It reports false if
// the body is not in the registry.
func (r *Registry) Mutate(id ID, mass float64, vel mgl64.Vec2) bool {
	b, ok := r.Get(id)
	if !ok {
		return false
	}
	b.Mass = mass
	b.Vel = vel
	return true
}

// Remove deletes a body. Removing an unknown ID does nothing.
func (r *Registry) Remove(id ID) {
	delete(r.tier0, id)
	delete(r.tier1, id)
}

func (r *Registry) Len() int  { return len(r.tier0) + len(r.tier1) }
func (r *Registry) Len0() int { return len(r.tier0) }
func (r *Registry) Len1() int { return len(r.tier1) }

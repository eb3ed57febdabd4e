package physics

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// OutcomeKind says what a collision outcome does to the registry.
type OutcomeKind uint8

// outcome kinds
const (
	Destroy OutcomeKind = iota // remove the body
	Merge                      // overwrite the body's mass and velocity
)

func (k OutcomeKind) String() string {
	if k == Merge {
		return "merge"
	}
	return "destroy"
}

// Outcome is one instruction produced by collision detection. Mass and Vel
// are only meaningful for a Merge.
type Outcome struct {
	Kind OutcomeKind
	ID   ID
	Mass float64
	Vel  mgl64.Vec2
}

// do the physical extents of a and b overlap?
func collides(a, b *Body) bool {
	_, d := Distance(a, b)
	return d <= a.PhysicalRadius+b.PhysicalRadius
}

// calculates the final velocity of a and b in a perfectly inelastic collision.
func inelasticCollision(ma float64, va mgl64.Vec2, mb float64, vb mgl64.Vec2) mgl64.Vec2 {
	return va.Mul(ma).Add(vb.Mul(mb)).Mul(1 / (ma + mb))
}

// merging state of a body while a group is settled.
type working struct {
	body *Body
	mass float64
	vel  mgl64.Vec2
	gone bool
}

// survivor of a collision between a and b: a fixed body, then the heavier
// one. Equal masses go to b.
func survivor(a, b *working) (winner, loser *working) {
	switch {
	case a.body.Fixed && !b.body.Fixed:
		return a, b
	case b.body.Fixed && !a.body.Fixed:
		return b, a
	case a.mass > b.mass:
		return a, b
	}
	return b, a
}

// settle tests every pair of a candidate group and returns the outcomes.
// Members are visited in ID order so the result doesn't depend on how the
// group was gathered. A survivor carries its merged mass and velocity into
// later pairs, and a destroyed body takes part in no later pair.
func settle(group []*Body) []Outcome {
	if len(group) < 2 {
		return nil
	}

	state := make([]working, len(group))
	for i, b := range group {
		state[i] = working{body: b, mass: b.Mass, vel: b.Vel}
	}
	sort.Slice(state, func(i, j int) bool { return state[i].body.id < state[j].body.id })

	var outcomes []Outcome
	for i := 0; i < len(state); i++ {
		for j := i + 1; j < len(state); j++ {
			a, b := &state[i], &state[j]
			if a.gone {
				break
			}
			if b.gone || a.body.id == b.body.id {
				continue
			}
			// secondaries never collide with each other
			if a.body.tier == Secondary && b.body.tier == Secondary {
				continue
			}
			if !collides(a.body, b.body) {
				continue
			}

			winner, loser := survivor(a, b)
			if !winner.body.Fixed {
				winner.vel = inelasticCollision(winner.mass, winner.vel, loser.mass, loser.vel)
			}
			winner.mass += loser.mass
			loser.gone = true

			outcomes = append(outcomes,
				Outcome{Kind: Destroy, ID: loser.body.id},
				Outcome{Kind: Merge, ID: winner.body.id, Mass: winner.mass, Vel: winner.vel},
			)
		}
	}
	return outcomes
}

// groupsPerWorker is the least number of candidate groups worth a goroutine.
const groupsPerWorker = 16

// Detect finds the collisions in r using d to gather candidates. Groups are
// settled concurrently, each into its own list; the lists are joined in
// group order.
func Detect(r *Registry, d Detector) []Outcome {
	groups := d.Candidates(r)
	results := make([][]Outcome, len(groups))
	inGroups(len(groups), groupsPerWorker, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			results[i] = settle(groups[i])
		}
	})

	var outcomes []Outcome
	for _, res := range results {
		outcomes = append(outcomes, res...)
	}
	return outcomes
}

// Apply carries out outcomes in order and returns how many bodies were
// destroyed. Outcomes naming a body that is no longer in the registry are
// skipped.
func Apply(r *Registry, outcomes []Outcome) int {
	destroyed := 0
	for _, o := range outcomes {
		switch o.Kind {
		case Destroy:
			if _, ok := r.Get(o.ID); ok {
				r.Remove(o.ID)
				destroyed++
			}
		case Merge:
			r.Mutate(o.ID, o.Mass, o.Vel)
		}
	}
	return destroyed
}

// HandleCollisions runs one collision pass over r, merging and removing
// bodies in place. It returns the number of bodies removed.
func HandleCollisions(r *Registry, d Detector) int {
	return Apply(r, Detect(r, d))
}

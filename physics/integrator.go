package physics

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Diagnostic is the energy of the system after a step.
type Diagnostic struct {
	Kinetic   float64
	Potential float64
}

// Total energy, kinetic + potential.
func (d Diagnostic) Total() float64 { return d.Kinetic + d.Potential }

// Drift of the total energy relative to reference.
func (d Diagnostic) Drift(reference Diagnostic) float64 {
	return (d.Total() - reference.Total()) / reference.Total()
}

// Integrator advances every non-fixed body by one time step. dt may be
// negative to run time backwards.
type Integrator interface {
	Step(r *Registry, dt float64) Diagnostic
	// Name is for display.
	Name() string
	// Key is a stable identifier.
	Key() string
}

// Integrators returns every integrator, in the order a driver cycles
// through them.
func Integrators() []Integrator {
	return []Integrator{Leapfrog{}, LeapfrogKDK{}, Euler{}}
}

// Lookup finds an integrator by key.
func Lookup(key string) (Integrator, bool) {
	for _, in := range Integrators() {
		if strings.EqualFold(in.Key(), key) {
			return in, true
		}
	}
	return nil, false
}

// Euler is the semi-implicit Euler method. First order; energy drifts.
//
//	v(n+1) = v(n) + a(n)·dt
//	r(n+1) = r(n) + v(n+1)·dt
type Euler struct{}

func (Euler) Name() string { return "Euler" }
func (Euler) Key() string  { return "euler" }

func (Euler) Step(r *Registry, dt float64) Diagnostic {
	_, pe := UpdateAcceleration(r)

	ke := 0.0
	r.Each(func(b *Body) {
		if b.Fixed {
			return
		}
		b.Vel = b.Vel.Add(b.Acc.Mul(dt))
		b.SetPos(b.pos.Add(b.Vel.Mul(dt)))
		ke += b.KineticEnergy()
	})

	return Diagnostic{Kinetic: ke, Potential: pe}
}

// Leapfrog in position (velocity Verlet) form. Second order and
// symplectic. Uses the acceleration left on each body by the previous step.
//
//	r(n+1) = r(n) + v(n)·dt + ½·a(n)·dt²
//	v(n+1) = v(n) + ½·(a(n) + a(n+1))·dt
type Leapfrog struct{}

func (Leapfrog) Name() string { return "Leapfrog" }
func (Leapfrog) Key() string  { return "leapfrog" }

func (Leapfrog) Step(r *Registry, dt float64) Diagnostic {
	previous := make(Accelerations, r.Len())
	r.Each(func(b *Body) {
		previous[b.id] = b.Acc
		if b.Fixed {
			return
		}
		drift := b.Vel.Mul(dt).Add(b.Acc.Mul(0.5 * dt * dt))
		b.SetPos(b.pos.Add(drift))
	})

	updated, pe := UpdateAcceleration(r)

	ke := 0.0
	r.Each(func(b *Body) {
		if b.Fixed {
			return
		}
		avg := previous[b.id].Add(updated[b.id])
		b.Vel = b.Vel.Add(avg.Mul(0.5 * dt))
		ke += b.KineticEnergy()
	})

	return Diagnostic{Kinetic: ke, Potential: pe}
}

// LeapfrogKDK is leapfrog in kick-drift-kick form. Equivalent to Leapfrog
// up to round-off, with the half-step velocity made explicit.
//
//	v(n+½) = v(n) + ½·a(n)·dt
//	r(n+1) = r(n) + v(n+½)·dt
//	v(n+1) = v(n+½) + ½·a(n+1)·dt
type LeapfrogKDK struct{}

func (LeapfrogKDK) Name() string { return "Leapfrog (KDK)" }
func (LeapfrogKDK) Key() string  { return "leapfrog-kdk" }

func (LeapfrogKDK) Step(r *Registry, dt float64) Diagnostic {
	half := make(map[ID]mgl64.Vec2, r.Len())
	r.Each(func(b *Body) {
		if b.Fixed {
			return
		}
		v := b.Vel.Add(b.Acc.Mul(0.5 * dt)) // kick
		b.SetPos(b.pos.Add(v.Mul(dt)))      // drift
		half[b.id] = v
	})

	updated, pe := UpdateAcceleration(r)

	ke := 0.0
	r.Each(func(b *Body) {
		if b.Fixed {
			return
		}
		b.Vel = half[b.id].Add(updated[b.id].Mul(0.5 * dt)) // kick
		ke += b.KineticEnergy()
	})

	return Diagnostic{Kinetic: ke, Potential: pe}
}

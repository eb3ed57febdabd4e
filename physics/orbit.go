package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// OrbitParameters describe an elliptical orbit.
type OrbitParameters struct {
	A     float64 // semi-major axis, m
	E     float64 // eccentricity, [0, 1)
	Theta float64 // true anomaly, rad
}

// SemiLatusRectum is a(1-e²).
func (o OrbitParameters) SemiLatusRectum() float64 {
	return o.A * (1 - o.E*o.E)
}

// Radius is the separation of the two bodies at the orbit's true anomaly.
func (o OrbitParameters) Radius() float64 {
	return o.SemiLatusRectum() / (1 + o.E*math.Cos(o.Theta))
}

// KeplerOrbit places orbiting on the orbit described by orb around
// reference, overwriting its position and velocity.
//
// Both masses must already be set and the reference body must already be in
// its final place: its position and velocity are read once. The reference
// body is not modified.
func KeplerOrbit(orb OrbitParameters, orbiting, reference *Body) {
	total := orbiting.Mass + reference.Mass
	mu := G * total
	p := orb.SemiLatusRectum()

	sin, cos := math.Sincos(orb.Theta)
	radius := p / (1 + orb.E*cos)
	rel := mgl64.Vec2{cos * radius, sin * radius}

	factor := math.Sqrt(mu / p)
	vel := mgl64.Vec2{-sin * factor, (cos + orb.E) * factor}

	// two-body solution about the barycentre, which sits on the reference
	// body when it dominates the mass
	fraction := reference.Mass / total
	orbiting.SetPos(reference.Pos().Add(rel.Mul(fraction)))
	orbiting.Vel = reference.Vel.Add(vel.Mul(fraction))
}

// Orient returns the point at radius and angle theta from pos.
func Orient(theta, radius float64, pos mgl64.Vec2) mgl64.Vec2 {
	sin, cos := math.Sincos(theta)
	return pos.Add(mgl64.Vec2{cos * radius, sin * radius})
}

package main

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/quillaja/orbits/physics"
	"golang.org/x/exp/rand"
)

type scenario struct {
	bodies []*physics.Body
	sun    *physics.Body
	names  map[physics.ID]string
}

// name of a body, or its id for anonymous belt rocks.
func (s *scenario) name(b *physics.Body) string {
	if n, ok := s.names[b.ID()]; ok {
		return n
	}
	return b.String()
}

type planet struct {
	name         string
	mass, radius float64
	draw         float64 // pixels
	pos, vel     mgl64.Vec2
}

// the sun sits at the origin. planets start on the +y axis moving along +x,
// the comet at perihelion on the +x axis.
var planets = []planet{
	{name: "Mars", mass: 6.4171e23, radius: 3.3895e6, draw: 4,
		pos: mgl64.Vec2{0, 2.279e11}, vel: mgl64.Vec2{24077, 0}},
	{name: "Earth", mass: 5.972e24, radius: 6.371e6, draw: 5,
		pos: mgl64.Vec2{0, physics.AU}, vel: mgl64.Vec2{29780, 0}},
	{name: "Moon", mass: 7.342e22, radius: 1.7374e6, draw: 2,
		pos: mgl64.Vec2{0, physics.AU + 3.844e8}, vel: mgl64.Vec2{29780 + 1022, 0}},
	{name: "Halley", mass: 2.2e14, radius: 5.5e3, draw: 2,
		pos: mgl64.Vec2{8.77e10, 0}, vel: mgl64.Vec2{0, 54550}},
}

// use physically realistic data to simulate the sun, a few inner bodies
// and a belt of count rocks around the sun.
func solarsystem(f *physics.Factory, fixSun bool, count int, seed uint64) *scenario {
	sun := f.New(physics.BodyParams{
		Tier:           physics.Primary,
		Mass:           1.989e30,
		PhysicalRadius: 6.957e8,
		DrawRadius:     10,
		Fixed:          fixSun,
	})
	s := &scenario{
		bodies: []*physics.Body{sun},
		sun:    sun,
		names:  map[physics.ID]string{sun.ID(): "Sun"},
	}

	for _, p := range planets {
		b := f.New(physics.BodyParams{
			Tier:           physics.Primary,
			Mass:           p.mass,
			PhysicalRadius: p.radius,
			DrawRadius:     p.draw,
			Pos:            p.pos,
			Vel:            p.vel,
			Trail:          true,
		})
		s.bodies = append(s.bodies, b)
		s.names[b.ID()] = p.name
	}

	if count > 0 {
		rnd := rand.New(rand.NewSource(seed))
		s.bodies = append(s.bodies, physics.Belt(f, sun, count, physics.AU, physics.DefaultBelt(), rnd)...)
	}
	return s
}

package physics

import (
	"math"

	"golang.org/x/exp/rand"
)

// BeltConfig bounds the random orbits and bodies of a belt. Every range is
// [low, high).
type BeltConfig struct {
	SemiMajorLow, SemiMajorHigh float64 // multiples of the average distance
	MaxEccentricity             float64
	MassLow, MassHigh           float64 // kg
	RadiusLow, RadiusHigh       float64 // m
}

// DefaultBelt resembles the main asteroid belt when the average distance
// is 1 AU.
func DefaultBelt() BeltConfig {
	return BeltConfig{
		SemiMajorLow:    2.1,
		SemiMajorHigh:   3.3,
		MaxEccentricity: 0.15,
		MassLow:         1e5,
		MassHigh:        1e18,
		RadiusLow:       5,
		RadiusHigh:      500e3,
	}
}

// Belt creates count secondary bodies on random Kepler orbits around ref.
// The bodies do not interact with each other at creation.
func Belt(f *Factory, ref *Body, count int, averageDistance float64, cfg BeltConfig, rnd *rand.Rand) []*Body {
	between := func(low, high float64) float64 {
		return rnd.Float64()*(high-low) + low
	}

	belt := make([]*Body, 0, count)
	for i := 0; i < count; i++ {
		orb := OrbitParameters{
			A:     between(cfg.SemiMajorLow, cfg.SemiMajorHigh) * averageDistance,
			E:     rnd.Float64() * cfg.MaxEccentricity,
			Theta: rnd.Float64() * 2 * math.Pi,
		}

		asteroid := f.New(BodyParams{
			Tier:           Secondary,
			Mass:           between(cfg.MassLow, cfg.MassHigh),
			PhysicalRadius: between(cfg.RadiusLow, cfg.RadiusHigh),
			DrawRadius:     1, // always 1px
		})
		KeplerOrbit(orb, asteroid, ref)

		belt = append(belt, asteroid)
	}
	return belt
}

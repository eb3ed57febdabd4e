package main

import (
	"log"
	"time"

	"github.com/quillaja/orbits/physics"
)

// simulation owns the registry and the knobs the live view can turn.
// every phase of a tick runs to completion before the next one starts.
type simulation struct {
	reg         *physics.Registry
	integrators []physics.Integrator
	current     int
	detector    physics.Detector

	dt         float64 // seconds per tick before speedup
	speedup    float64
	reverse    bool
	paused     bool
	collisions bool
	debug      bool

	frame     int
	reference physics.Diagnostic
	last      physics.Diagnostic
	started   bool
	destroyed int // total
	compute   time.Duration
}

func newSimulation(reg *physics.Registry, in physics.Integrator, d physics.Detector, dt float64) *simulation {
	s := &simulation{
		reg:         reg,
		integrators: physics.Integrators(),
		detector:    d,
		dt:          dt,
		speedup:     1,
		collisions:  true,
	}
	for i, known := range s.integrators {
		if known.Key() == in.Key() {
			s.current = i
		}
	}
	// leapfrog needs the accelerations of the current positions
	physics.UpdateAcceleration(reg)
	return s
}

func (s *simulation) integrator() physics.Integrator { return s.integrators[s.current] }

// cycle to the next integrator.
func (s *simulation) cycle() {
	s.current = (s.current + 1) % len(s.integrators)
}

// seconds the next tick will advance, negative when running backwards.
func (s *simulation) step() float64 {
	step := s.dt * s.speedup
	if s.reverse {
		step = -step
	}
	return step
}

// relative energy drift since the first tick.
func (s *simulation) drift() float64 {
	if !s.started {
		return 0
	}
	return s.last.Drift(s.reference)
}

// tick advances the simulation once and returns the number of bodies
// destroyed by collisions.
func (s *simulation) tick() int {
	if s.paused {
		return 0
	}
	start := time.Now()

	s.last = s.integrator().Step(s.reg, s.step())
	if !s.started {
		s.reference = s.last
		s.started = true
	}

	destroyed := 0
	if s.collisions {
		if s.debug {
			if b, ok := s.detector.(physics.Binned); ok {
				lo, hi, avg := physics.BinStats(b.Bins(s.reg))
				log.Printf("frame %d bins: min %d, max %d, avg %d", s.frame, lo, hi, avg)
			}
		}
		destroyed = physics.HandleCollisions(s.reg, s.detector)
		s.destroyed += destroyed
	}

	s.compute = time.Since(start)
	s.frame++
	if s.debug {
		log.Printf("frame %d: %s, %d bodies, %d destroyed, drift %.3e, %s",
			s.frame, s.integrator().Key(), s.reg.Len(), destroyed, s.drift(), s.compute)
	}
	return destroyed
}

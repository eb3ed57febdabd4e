package physics

import (
	"math"
	"runtime"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// G = 6.6674 × 10-11 m3 kg-1 s-2
//   = 6.6674e-11 m³/(kg·s²)
const G = 6.6674e-11

// AU is the mean Earth-Sun distance, m.
const AU = 1.496e11

// bodiesPerWorker keeps small populations on one goroutine.
const bodiesPerWorker = 256

// Accelerations maps each body to the acceleration computed for it.
type Accelerations map[ID]mgl64.Vec2

// Distance between two bodies, returned as (d², d).
func Distance(a, b *Body) (float64, float64) {
	d2 := a.pos.Sub(b.pos).LenSqr()
	return d2, math.Sqrt(d2)
}

// softening length between two bodies. Scales with the mass ratio and the
// bodies' sizes so close passes don't slingshot.
func softening(a, b *Body) float64 {
	lo, hi := math.Min(a.Mass, b.Mass), math.Max(a.Mass, b.Mass)
	ratio := 1.0
	if hi > 0 {
		ratio = math.Min(0.7*math.Sqrt(lo/hi), 1)
	}
	return ratio * (a.PhysicalRadius + b.PhysicalRadius)
}

// acceleration of pullee due to pulling.
func pairwiseAcceleration(pullee, pulling *Body) mgl64.Vec2 {
	d2, _ := Distance(pullee, pulling)
	s := softening(pullee, pulling)
	denom := math.Pow(d2+s*s, 1.5)
	if denom == 0 {
		return mgl64.Vec2{} // coincident point masses
	}
	return pullee.pos.Sub(pulling.pos).Mul(-G * pulling.Mass / denom)
}

// potential energy of a pair of bodies.
func potential(a, b *Body) float64 {
	_, d := Distance(a, b)
	if d == 0 {
		return 0
	}
	return -G * a.Mass * b.Mass / d
}

// UpdateAcceleration recomputes the acceleration of every body from the
// current positions and writes it into Body.Acc. It also returns the
// potential energy of the system.
//
// Primaries are pulled by every other primary. Secondaries are pulled by
// primaries only and pull nothing, which keeps large belts at O(n·primaries).
// Every acceleration is computed before any is written back.
func UpdateAcceleration(r *Registry) (Accelerations, float64) {
	primaries := r.Primaries()
	secondaries := r.Secondaries()

	acc0 := make([]mgl64.Vec2, len(primaries))
	for i, pullee := range primaries {
		if pullee.Fixed {
			continue
		}
		for _, pulling := range primaries {
			if pulling.id == pullee.id {
				continue
			}
			acc0[i] = acc0[i].Add(pairwiseAcceleration(pullee, pulling))
		}
	}

	acc1 := make([]mgl64.Vec2, len(secondaries))
	inGroups(len(secondaries), bodiesPerWorker, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			pullee := secondaries[i]
			if pullee.Fixed {
				continue
			}
			for _, pulling := range primaries {
				acc1[i] = acc1[i].Add(pairwiseAcceleration(pullee, pulling))
			}
		}
	})

	pe := 0.0
	for i := 0; i < len(primaries); i++ {
		for j := i + 1; j < len(primaries); j++ {
			if primaries[i].Fixed || primaries[j].Fixed {
				continue
			}
			pe += potential(primaries[i], primaries[j])
		}
	}
	for _, p := range primaries {
		if p.Fixed {
			continue
		}
		for _, s := range secondaries {
			if s.Fixed {
				continue
			}
			pe += potential(p, s)
		}
	}

	out := make(Accelerations, len(primaries)+len(secondaries))
	for i, b := range primaries {
		b.Acc = acc0[i]
		out[b.id] = acc0[i]
	}
	for i, b := range secondaries {
		b.Acc = acc1[i]
		out[b.id] = acc1[i]
	}
	return out, pe
}

// inGroups splits [0, n) into contiguous ranges of at least chunk items and
// runs work on each range in its own goroutine, waiting for all of them.
func inGroups(n, chunk int, work func(lo, hi int)) {
	groups := runtime.GOMAXPROCS(0)
	if most := n / chunk; most < groups {
		groups = most
	}
	if groups <= 1 {
		work(0, n)
		return
	}

	size := (n + groups - 1) / groups
	wg := sync.WaitGroup{}
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			work(lo, hi)
			wg.Done()
		}(lo, hi)
	}
	wg.Wait()
}

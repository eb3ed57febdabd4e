// simulates the sun, a few inner bodies and an asteroid belt in 2D.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/quillaja/orbits/physics"
)

// a copy of the simulation state handed to output workers.
type frameJob struct {
	Frame      int
	Time       float64 // simulated seconds
	Integrator string
	Energy     physics.Diagnostic
	Drift      float64
	Bodies     []frameBody
}

type frameBody struct {
	ID           uint64
	Tier         uint8
	X, Y         float64
	Vx, Vy       float64
	Mass, Radius float64
	DrawRadius   float64
	Fixed        bool
	Trail        []mgl64.Vec2
}

// copies the registry, primaries first, each tier in id order.
func snapshot(r *physics.Registry) []frameBody {
	bodies := make([]frameBody, 0, r.Len())
	for _, tier := range [][]*physics.Body{r.Primaries(), r.Secondaries()} {
		for _, b := range tier {
			fb := frameBody{
				ID:         uint64(b.ID()),
				Tier:       uint8(b.Tier()),
				X:          b.Pos()[0],
				Y:          b.Pos()[1],
				Vx:         b.Vel[0],
				Vy:         b.Vel[1],
				Mass:       b.Mass,
				Radius:     b.PhysicalRadius,
				DrawRadius: b.DrawRadius,
				Fixed:      b.Fixed,
			}
			if b.Trail {
				fb.Trail = b.History().Points()
			}
			bodies = append(bodies, fb)
		}
	}
	return bodies
}

func (s *simulation) job(elapsed float64) *frameJob {
	return &frameJob{
		Frame:      s.frame,
		Time:       elapsed,
		Integrator: s.integrator().Key(),
		Energy:     s.last,
		Drift:      s.drift(),
		Bodies:     snapshot(s.reg),
	}
}

// picks a collision detector by name.
func detector(name string, binWidth, maxDistance float64) (physics.Detector, error) {
	switch strings.ToLower(name) {
	case "binned":
		return physics.Binned{MaxDistance: maxDistance * physics.AU, BinWidth: binWidth * physics.AU}, nil
	case "exhaustive":
		return physics.Exhaustive{}, nil
	case "kdtree":
		return physics.KDTree{}, nil
	case "quadtree":
		return physics.QuadTree{}, nil
	}
	return nil, errors.Errorf("unknown collider %q", name)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "%v\n", err)
	os.Exit(1)
}

func main() {
	numbodies := flag.Int("n", 10000, "number of belt bodies")
	years := flag.Float64("y", 1, "number of years to simulate")
	dt := flag.Float64("dt", 43200, "seconds per simulation step")
	integrator := flag.String("integrator", "leapfrog", "integrator: leapfrog, leapfrog-kdk or euler")
	collider := flag.String("collider", "binned", "collision detector: binned, exhaustive, kdtree or quadtree")
	nocollision := flag.Bool("nocollision", false, "do not perform collision testing")
	binWidth := flag.Float64("bin", physics.DefaultBinned().BinWidth/physics.AU, "collision bin width in AU")
	maxDistance := flag.Float64("maxdist", physics.DefaultBinned().MaxDistance/physics.AU, "ignore collisions beyond this distance in AU")
	seed := flag.Uint64("seed", 1, "belt random seed")
	fixSun := flag.Bool("fixsun", false, "pin the sun in place")
	live := flag.Bool("live", false, "show the simulation in the terminal")
	sound := flag.Bool("sound", false, "ping on collisions in the live view")
	pngDir := flag.String("png", "", "directory for png frames")
	every := flag.Int("every", 1, "steps between recorded frames")
	sqliteFile := flag.String("sqlite", "", "sqlite database to record frames into")
	chunkDir := flag.String("chunks", "", "directory for compressed frame chunks")
	debug := flag.Bool("debug", false, "write a debug log to logs/")
	flag.Parse()

	if logFile := setupLogging(*debug); logFile != nil {
		defer logFile.Close()
	}

	in, ok := physics.Lookup(*integrator)
	if !ok {
		fatal(errors.Errorf("unknown integrator %q", *integrator))
	}
	det, err := detector(*collider, *binWidth, *maxDistance)
	if err != nil {
		fatal(err)
	}
	if *every < 1 {
		*every = 1
	}

	var f physics.Factory
	scene := solarsystem(&f, *fixSun, *numbodies, *seed)
	sim := newSimulation(physics.NewRegistry(scene.bodies...), in, det, *dt)
	sim.collisions = !*nocollision
	sim.debug = *debug

	if *live {
		if err := runLive(sim, scene, *sound); err != nil {
			fatal(err)
		}
		return
	}

	steps := int(*years * 365 * 24 * 60 * 60 / *dt)
	if err := runBatch(sim, steps, *every, outputs{png: *pngDir, sqlite: *sqliteFile, chunks: *chunkDir}); err != nil {
		fatal(err)
	}
}

// where to record frames. empty fields are skipped.
type outputs struct {
	png, sqlite, chunks string
}

// runs steps ticks without a display, fanning recorded frames out to the
// output workers.
func runBatch(sim *simulation, steps, every int, out outputs) error {
	var sinks []chan *frameJob
	wg := sync.WaitGroup{}

	if out.png != "" {
		if err := os.MkdirAll(out.png, 0755); err != nil {
			return errors.Wrap(err, "png output")
		}
		ch := make(chan *frameJob, 32)
		sinks = append(sinks, ch)
		const workers = 2
		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go frameToImages(out.png, &wg, ch)
		}
	}

	var db *database
	if out.sqlite != "" {
		var err error
		if db, err = opendb(out.sqlite); err != nil {
			return err
		}
		ch := make(chan *frameJob, 32)
		sinks = append(sinks, ch)
		wg.Add(1)
		go frameToSqlite(db, &wg, ch)
	}

	if out.chunks != "" {
		store, err := newChunkStore(out.chunks, 48)
		if err != nil {
			return err
		}
		ch := make(chan *frameJob, 32)
		sinks = append(sinks, ch)
		wg.Add(1)
		go frameToMemory(store, &wg, ch)
	}

	// print parameters
	fmt.Printf("integrator: %s\ncollisions: %t (%s)\nbodies: %d\nstep: %.0f sec\nsteps: %d\nsimulation time: %.1f days\n",
		sim.integrator().Name(),
		sim.collisions,
		sim.detector.Name(),
		sim.reg.Len(),
		sim.dt,
		steps,
		sim.dt*float64(steps)/(24*60*60))

	start := time.Now()
	elapsed := 0.0
	for step := 0; step <= steps; step++ {
		if len(sinks) > 0 && step%every == 0 {
			job := sim.job(elapsed)
			for _, ch := range sinks {
				ch <- job
			}
		}
		if step == steps {
			break
		}

		sim.tick()
		elapsed += sim.step()

		// progress
		avgTimePerStep := time.Since(start) / time.Duration(step+1)
		estTimeLeft := avgTimePerStep * time.Duration(steps-step-1)
		fmt.Printf("%.1f%%, %d bodies, %d destroyed, drift %.2e, %s/step, %s remaining, %s elapsed          \r",
			100*float64(step+1)/float64(steps),
			sim.reg.Len(),
			sim.destroyed,
			sim.drift(),
			avgTimePerStep.Truncate(time.Microsecond),
			estTimeLeft.Truncate(time.Second),
			time.Since(start).Truncate(time.Second),
		)
	}
	for _, ch := range sinks {
		close(ch)
	}
	wg.Wait()

	if db != nil {
		if err := db.close(); err != nil {
			return err
		}
	}
	fmt.Printf("\nDone. Took %s\n", time.Since(start).Truncate(time.Second))
	return nil
}

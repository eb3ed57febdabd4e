package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/quillaja/orbits/physics"
)

const (
	frameInterval = 16 * time.Millisecond // ~60 FPS
	cellAspect    = 0.5                   // cells are about twice as tall as wide
	panCells      = 4
	zoomStep      = 1.25
	speedStep     = 0.1
)

// liveView shows the simulation in the terminal and turns key presses into
// simulation and camera changes.
type liveView struct {
	screen tcell.Screen
	sim    *simulation
	scene  *scenario
	pinger *pinger

	cam       camera
	following bool
	follow    physics.ID
}

func newLiveView(screen tcell.Screen, sim *simulation, scene *scenario, p *pinger) *liveView {
	w, h := screen.Size()
	lv := &liveView{
		screen:    screen,
		sim:       sim,
		scene:     scene,
		pinger:    p,
		cam:       newCamera(w, h-1, viewRadius, cellAspect),
		following: true,
		follow:    scene.sun.ID(),
	}
	lv.track()
	return lv
}

// runLive takes over the terminal until the user quits.
func runLive(sim *simulation, scene *scenario, sound bool) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "terminal")
	}
	if err := screen.Init(); err != nil {
		return errors.Wrap(err, "terminal")
	}
	defer screen.Fini()

	var p *pinger
	if sound {
		// non-fatal, the view can run without sound
		if p, err = newPinger(); err != nil {
			log.Printf("Audio initialization failed: %v", err)
		}
	}

	newLiveView(screen, sim, scene, p).run()
	return nil
}

func (lv *liveView) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- lv.screen.PollEvent()
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !lv.handleKey(ev.Key(), ev.Rune()) {
					return
				}
			case *tcell.EventResize:
				lv.screen.Sync()
			}

		case <-ticker.C:
			if destroyed := lv.sim.tick(); destroyed > 0 {
				lv.pinger.ping(destroyed)
			}
			lv.track()
			lv.draw()
		}
	}
}

// handleKey applies a key press. returns false when the view should close.
func (lv *liveView) handleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		lv.pan(0, -panCells)
	case tcell.KeyDown:
		lv.pan(0, panCells)
	case tcell.KeyLeft:
		lv.pan(-panCells, 0)
	case tcell.KeyRight:
		lv.pan(panCells, 0)
	case tcell.KeyRune:
		switch r {
		case 'q':
			return false
		case 'k':
			lv.sim.cycle()
		case 'c':
			lv.sim.collisions = !lv.sim.collisions
		case 'p':
			lv.sim.paused = !lv.sim.paused
		case 'r':
			lv.sim.reverse = !lv.sim.reverse
		case '+', '=':
			lv.sim.speedup += speedStep
		case '-':
			// speedup stays positive, p pauses and r reverses
			if lv.sim.speedup > speedStep*1.5 {
				lv.sim.speedup -= speedStep
			}
		case 'z':
			lv.cam.zoomBy(zoomStep)
		case 'x':
			lv.cam.zoomBy(1 / zoomStep)
		case 'f':
			lv.followNext()
		}
	}
	return true
}

// panning frees the camera from the body it follows.
func (lv *liveView) pan(dx, dy float64) {
	lv.following = false
	lv.cam.pan(dx, dy)
}

// follow the primary after the current one, in id order.
func (lv *liveView) followNext() {
	primaries := lv.sim.reg.Primaries()
	if len(primaries) == 0 {
		lv.following = false
		return
	}
	next := primaries[0]
	if lv.following {
		for _, b := range primaries {
			if b.ID() > lv.follow {
				next = b
				break
			}
		}
	}
	lv.following = true
	lv.follow = next.ID()
	lv.track()
}

// keeps the camera on the followed body. a body lost to a collision sends
// the camera back to the origin.
func (lv *liveView) track() {
	if !lv.following {
		return
	}
	if b, ok := lv.sim.reg.Get(lv.follow); ok {
		lv.cam.center = b.Pos()
		return
	}
	lv.following = false
	lv.cam.center = mgl64.Vec2{}
}

func (lv *liveView) hud() string {
	state := "running"
	switch {
	case lv.sim.paused:
		state = "paused"
	case lv.sim.reverse:
		state = "reversed"
	}
	collisions := "off"
	if lv.sim.collisions {
		collisions = "on"
	}
	following := "free"
	if lv.following {
		if b, ok := lv.sim.reg.Get(lv.follow); ok {
			following = lv.scene.name(b)
		}
	}
	return fmt.Sprintf("%s | %d bodies | collisions %s | %s x%.1f | drift %+.2e | %s | %s",
		lv.sim.integrator().Name(),
		lv.sim.reg.Len(),
		collisions,
		state,
		lv.sim.speedup,
		lv.sim.drift(),
		lv.sim.compute.Truncate(time.Microsecond),
		following)
}

var (
	hudStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	trailStyle = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	rockStyle  = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// draw renders the registry below a one line hud.
func (lv *liveView) draw() {
	lv.screen.Clear()
	w, h := lv.screen.Size()
	vp := lv.cam.matrix(w, h-1)

	put := func(p mgl64.Vec2, r rune, style tcell.Style) {
		x, y := project(vp, p)
		if x >= 0 && x < w && y >= 0 && y < h-1 {
			lv.screen.SetContent(x, y+1, r, nil, style)
		}
	}

	for _, b := range lv.sim.reg.Secondaries() {
		put(b.Pos(), '.', rockStyle)
	}
	primaries := lv.sim.reg.Primaries()
	for _, b := range primaries {
		for _, p := range b.History().Points() {
			put(p, '·', trailStyle)
		}
	}
	for _, b := range primaries {
		r := 'o'
		if b.DrawRadius >= 8 {
			r = '@'
		}
		put(b.Pos(), r, tcell.StyleDefault.Foreground(cellColor(b.Mass)))
	}

	for i, r := range []rune(lv.hud()) {
		if i >= w {
			break
		}
		lv.screen.SetContent(i, 0, r, nil, hudStyle)
	}
	lv.screen.Show()
}

// the png mass ramp as a terminal colour.
func cellColor(m float64) tcell.Color {
	r, g, b, _ := c(m).RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}

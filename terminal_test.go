package main

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/quillaja/orbits/physics"
)

func newTestView(t *testing.T) *liveView {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)

	var f physics.Factory
	scene := solarsystem(&f, true, 100, 1)
	sim := newSimulation(physics.NewRegistry(scene.bodies...), physics.Leapfrog{}, physics.DefaultBinned(), 43200)
	return newLiveView(screen, sim, scene, nil)
}

func TestLiveView_SimulationKeys(t *testing.T) {
	lv := newTestView(t)

	keys := []struct {
		r     rune
		check func() bool
	}{
		{'k', func() bool { return lv.sim.integrator().Key() == "leapfrog-kdk" }},
		{'k', func() bool { return lv.sim.integrator().Key() == "euler" }},
		{'k', func() bool { return lv.sim.integrator().Key() == "leapfrog" }},
		{'c', func() bool { return !lv.sim.collisions }},
		{'c', func() bool { return lv.sim.collisions }},
		{'p', func() bool { return lv.sim.paused }},
		{'p', func() bool { return !lv.sim.paused }},
		{'r', func() bool { return lv.sim.reverse && lv.sim.step() < 0 }},
		{'r', func() bool { return !lv.sim.reverse && lv.sim.step() > 0 }},
		{'+', func() bool { return near(lv.sim.speedup, 1.1) }},
		{'-', func() bool { return near(lv.sim.speedup, 1.0) }},
	}
	for i, k := range keys {
		if !lv.handleKey(tcell.KeyRune, k.r) {
			t.Fatalf("%d: expected %q to keep the view open", i, k.r)
		}
		if !k.check() {
			t.Errorf("%d: unexpected state after %q", i, k.r)
		}
	}

	for i := 0; i < 20; i++ {
		lv.handleKey(tcell.KeyRune, '-')
	}
	if lv.sim.speedup <= 0 {
		t.Errorf("Expected speedup to stay positive, got %g", lv.sim.speedup)
	}
}

func TestLiveView_Quit(t *testing.T) {
	lv := newTestView(t)
	if lv.handleKey(tcell.KeyRune, 'q') {
		t.Error("Expected q to close the view")
	}
	if lv.handleKey(tcell.KeyEscape, 0) {
		t.Error("Expected Esc to close the view")
	}
}

func TestLiveView_Camera(t *testing.T) {
	lv := newTestView(t)
	if !lv.following || lv.follow != lv.scene.sun.ID() {
		t.Fatal("Expected the view to start on the sun")
	}

	zoom := lv.cam.zoom
	lv.handleKey(tcell.KeyRune, 'z')
	lv.handleKey(tcell.KeyRune, 'z')
	lv.handleKey(tcell.KeyRune, 'x')
	if !near(lv.cam.zoom/zoom, zoomStep) {
		t.Errorf("Expected zoom %g, got %g", zoom*zoomStep, lv.cam.zoom)
	}

	lv.handleKey(tcell.KeyRight, 0)
	if lv.following || lv.cam.center[0] <= 0 {
		t.Errorf("Expected panning right to free the camera, got %v", lv.cam.center)
	}

	// f walks the primaries in id order and wraps around
	primaries := lv.sim.reg.Primaries()
	lv.handleKey(tcell.KeyRune, 'f')
	if lv.follow != primaries[0].ID() {
		t.Errorf("Expected to follow %d, got %d", primaries[0].ID(), lv.follow)
	}
	for i := 1; i <= len(primaries); i++ {
		lv.handleKey(tcell.KeyRune, 'f')
		want := primaries[i%len(primaries)]
		if lv.follow != want.ID() || lv.cam.center != want.Pos() {
			t.Errorf("Expected to follow %d, got %d", want.ID(), lv.follow)
		}
	}
}

func TestLiveView_FollowedBodyDestroyed(t *testing.T) {
	lv := newTestView(t)
	earth := lv.sim.reg.Primaries()[2]
	lv.follow = earth.ID()
	lv.track()
	if lv.cam.center != earth.Pos() {
		t.Fatalf("Expected the camera on earth, got %v", lv.cam.center)
	}

	lv.sim.reg.Remove(earth.ID())
	lv.track()
	if lv.following || lv.cam.center != (mgl64.Vec2{}) {
		t.Errorf("Expected the camera back at the origin, got %v", lv.cam.center)
	}
}

func TestLiveView_Draw(t *testing.T) {
	lv := newTestView(t)
	lv.sim.tick()
	lv.track()
	lv.draw()

	hud := lv.hud()
	for _, want := range []string{"Leapfrog", "106 bodies", "collisions on", "running", "Sun"} {
		if !strings.Contains(hud, want) {
			t.Errorf("Expected %q in the hud %q", want, hud)
		}
	}

	lv.handleKey(tcell.KeyRune, 'p')
	lv.handleKey(tcell.KeyRune, 'c')
	if hud := lv.hud(); !strings.Contains(hud, "paused") || !strings.Contains(hud, "collisions off") {
		t.Errorf("Expected paused without collisions, got %q", hud)
	}
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

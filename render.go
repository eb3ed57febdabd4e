package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/quillaja/orbits/physics"
)

/*

image output section

*/

const (
	imageWidth  = 1920
	imageHeight = 1080
	viewRadius  = 2.5 * physics.AU // distance from the sun to the short edge
)

func frameToImages(dir string, wg *sync.WaitGroup, ch chan *frameJob) {
	cam := newCamera(imageWidth, imageHeight, viewRadius, 1)
	for job := range ch {
		film := renderFrame(job, cam, imageWidth, imageHeight)

		file, err := os.Create(filepath.Join(dir, fmt.Sprintf("%010d.png", job.Frame)))
		if err != nil {
			panic(err)
		}
		if err := png.Encode(file, film); err != nil {
			file.Close()
			panic(err)
		}
		file.Close()
	}
	wg.Done()
}

// renderFrame draws trails under bodies, light bodies first so "important"
// bodies end up on top.
func renderFrame(job *frameJob, cam camera, width, height int) *image.RGBA {
	film := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(film, film.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	vp := cam.matrix(width, height)

	// the job is shared with other workers, so sort a copy
	bodies := make([]frameBody, len(job.Bodies))
	copy(bodies, job.Bodies)
	sort.Slice(bodies, func(i, j int) bool {
		return bodies[i].Mass < bodies[j].Mass
	})

	for i := range bodies {
		if len(bodies[i].Trail) > 1 {
			plottrail(film, vdarkgray, vp, bodies[i].Trail)
		}
	}

	for i := range bodies {
		b := &bodies[i]
		x, y := project(vp, mgl64.Vec2{b.X, b.Y})
		col := c(b.Mass)
		switch {
		case b.Tier != uint8(physics.Primary):
			film.Set(x, y, col)
		case b.DrawRadius > 1:
			plotcirclefilled(film, col, x, y, int(b.DrawRadius))
		default:
			film.Set(x, y, col)
		}
		if b.Fixed {
			plotcircle(film, gray, x, y, int(b.DrawRadius)+3)
		}
	}
	return film
}

// plottrail connects the recorded positions of a body, oldest first.
func plottrail(img draw.Image, c color.Color, vp mgl64.Mat3, trail []mgl64.Vec2) {
	x0, y0 := project(vp, trail[0])
	for _, p := range trail[1:] {
		x1, y1 := project(vp, p)
		if onscreen(img, x0, y0) || onscreen(img, x1, y1) {
			plotline(img, c, x0, y0, x1, y1)
		}
		x0, y0 = x1, y1
	}
}

func onscreen(img draw.Image, x, y int) bool {
	return image.Pt(x, y).In(img.Bounds())
}

// lerp x to [0,1]
func lerp(x, min, max float64) float64 {
	return (x - min) / (max - min)
}

var (
	gray      = color.RGBA{128, 128, 128, 255}
	vdarkgray = color.RGBA{32, 32, 32, 255}

	// mass ramp, light rocks to stars
	light = colorful.Color{R: 0.55, G: 0.55, B: 0.6}
	heavy = colorful.Color{R: 1, G: 0.85, B: 0.2}
)

// c colours a body by the log of its mass, from belt rocks (1e5 kg) to the
// sun (2e30 kg).
func c(m float64) color.Color {
	t := lerp(math.Log10(math.Max(m, 1)), 5, 30.3)
	t = math.Max(0, math.Min(1, t))
	return light.BlendHcl(heavy, t).Clamped()
}

// plotline draws a simple line on img from (x0,y0) to (x1,y1).
//
// This is basically a copy of a version of Bresenham's line algorithm
// from https://en.wikipedia.org/wiki/Bresenham%27s_line_algorithm.
func plotline(img draw.Image, c color.Color, x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// abs cuz no integer abs function in the Go standard library.
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// plotcirclefilled draws a filled circle at (x0,y0) of radius r.
func plotcirclefilled(img draw.Image, c color.Color, x0, y0, r int) {
	rsqr := float64(r * r)
	for y := r; y >= 0; y-- {
		xright := int(math.Sqrt(rsqr - float64(y*y)))
		for x := -xright; x <= xright; x++ {
			img.Set(x0+x, y0+y, c)
			img.Set(x0+x, y0-y, c)
		}
	}
}

// plotcircle draws an unfilled circle at (x0,y0) of radius r.
func plotcircle(img draw.Image, c color.Color, x0, y0, r int) {
	x := r
	for y := 0; y <= x; y++ {
		img.Set(x0+x, y0+y, c)
		img.Set(x0+x, y0-y, c)
		img.Set(x0-x, y0+y, c)
		img.Set(x0-x, y0-y, c)

		img.Set(x0+y, y0+x, c)
		img.Set(x0+y, y0-x, c)
		img.Set(x0-y, y0+x, c)
		img.Set(x0-y, y0-x, c)
		d := 2*(x*x+y*y-r*r+2*y+1) + 1 - 2*x
		if d > 0 {
			x--
		}
	}
}

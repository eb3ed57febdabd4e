package main

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/pkg/errors"
)

const (
	sampleRate = beep.SampleRate(44100)
	pingLength = 40 * time.Millisecond
	pingFreq   = 660.0
	maxPings   = 4 // per tick
)

// pinger plays a short tone per collision. a nil pinger is silent.
type pinger struct {
	mixer *beep.Mixer
}

func newPinger() (*pinger, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, errors.Wrap(err, "speaker")
	}
	p := &pinger{mixer: &beep.Mixer{}}
	speaker.Play(p.mixer)
	return p, nil
}

// queues up to maxPings rising tones for n collisions.
func (p *pinger) ping(n int) {
	if p == nil || n <= 0 {
		return
	}
	for i := 0; i < n && i < maxPings; i++ {
		tone, err := generators.SineTone(sampleRate, pingFreq*(1+0.25*float64(i)))
		if err != nil {
			return
		}
		speaker.Lock()
		p.mixer.Add(beep.Seq(
			beep.Silence(sampleRate.N(pingLength*time.Duration(i))),
			beep.Take(sampleRate.N(pingLength), tone)))
		speaker.Unlock()
	}
}

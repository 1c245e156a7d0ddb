// Package notify plays short audible cues.
package notify

import (
	"context"
	"math"
	"time"

	"github.com/faiface/beep"

	"twin/internal/audio"
)

const (
	cueFreq     = 880.0
	cueLength   = 120 * time.Millisecond
	cueVolume   = 0.25
	defaultRate = beep.SampleRate(44100)
)

// Cue plays a short tone through p, marking the start of a recording.
func Cue(ctx context.Context, p *audio.Player) error {
	rate, err := p.Rate(defaultRate)
	if err != nil {
		return err
	}
	return p.Play(ctx, Tone(rate, cueFreq, cueLength), rate)
}

// Tone is a sine wave with a linear fade-out so it does not click.
func Tone(rate beep.SampleRate, freq float64, d time.Duration) beep.Streamer {
	total := rate.N(d)
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := 0
		for i := range samples {
			if pos >= total {
				break
			}
			env := 1 - float64(pos)/float64(total)
			v := cueVolume * env * math.Sin(2*math.Pi*freq*float64(pos)/float64(rate))
			samples[i] = [2]float64{v, v}
			pos++
			n++
		}
		return n, true
	})
}

package audio

import (
	"context"
	"fmt"
	log "log/slog"
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

const (
	duckFactor = 0.3
	duckFade   = 300 * time.Millisecond
)

// Player renders audio on the default output device. The speaker is opened
// once at the rate of the first stream; later streams are resampled to it.
type Player struct {
	mu    sync.Mutex
	rate  beep.SampleRate
	ready bool

	ducker *Ducker
}

// NewPlayer returns a player. A non-nil ducker lowers other applications while
// playing.
func NewPlayer(ducker *Ducker) *Player {
	return &Player{ducker: ducker}
}

// PlayFile decodes a WAV file and blocks until it has been played.
func (p *Player) PlayFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	streamer, format, err := wav.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	defer streamer.Close()

	if p.ducker != nil {
		if err := p.ducker.DuckOthers(ctx, duckFactor, duckFade); err != nil {
			log.Warn("Failed to duck other streams", "err", err)
		}
		defer func() {
			if err := p.ducker.UnduckOthers(context.Background(), duckFade); err != nil {
				log.Warn("Failed to restore other streams", "err", err)
			}
		}()
	}

	return p.Play(ctx, streamer, format.SampleRate)
}

// Play blocks until s is drained or ctx is done.
func (p *Player) Play(ctx context.Context, s beep.Streamer, rate beep.SampleRate) error {
	target, err := p.init(rate)
	if err != nil {
		return err
	}
	if rate != target {
		s = beep.Resample(4, rate, target, s)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(s, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}

// Rate is the speaker rate, initializing the device at fallback if needed.
func (p *Player) Rate(fallback beep.SampleRate) (beep.SampleRate, error) {
	return p.init(fallback)
}

func (p *Player) init(rate beep.SampleRate) (beep.SampleRate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready {
		return p.rate, nil
	}
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return 0, fmt.Errorf("open speaker: %w", err)
	}
	p.rate = rate
	p.ready = true
	return rate, nil
}

package voice

import (
	"context"
	"time"
)

type Recorder interface {
	RecordUntil(stop <-chan struct{}, maxDur time.Duration) ([]float32, error)
	Close()
}

type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
	Close() error
}

type Synthesizer interface {
	// Synthesize returns mono samples in [-1, 1] and their sample rate.
	Synthesize(text, voice string, rate int) ([]float32, int, error)
	Close()
}

type Player interface {
	PlayFile(ctx context.Context, path string) error
	Cue(ctx context.Context) error
}

// Engines constructs the native backends. A nil constructor means the
// backend is not available in this build.
type Engines struct {
	Recorder    func(sampleRate, channels int) (Recorder, error)
	Transcriber func(modelPath string) (Transcriber, error)
	Synthesizer func() (Synthesizer, error)
	Player      func(duck bool) (Player, error)
}

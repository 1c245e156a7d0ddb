package audio

import (
	"time"

	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

// Recorder captures from the default input device.
type Recorder struct {
	SampleRate int
	Channels   int

	ready bool
}

func NewRecorder(sampleRate, channels int) *Recorder {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	if channels <= 0 {
		channels = 1
	}
	return &Recorder{SampleRate: sampleRate, Channels: channels}
}

func (r *Recorder) Init() error {
	if r.ready {
		return nil
	}
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	r.ready = true
	return nil
}

func (r *Recorder) Close() {
	if !r.ready {
		return
	}
	portaudio.Terminate()
	r.ready = false
}

// RecordUntil reads interleaved frames until stop is closed or maxDur
// elapses. Whatever was captured up to that point is returned, possibly
// nothing.
func (r *Recorder) RecordUntil(stop <-chan struct{}, maxDur time.Duration) ([]float32, error) {
	if err := r.Init(); err != nil {
		return nil, err
	}

	buf := make([]float32, framesPerBuffer*r.Channels)

	stream, err := portaudio.OpenDefaultStream(
		r.Channels, // in
		0,          // no out
		float64(r.SampleRate),
		framesPerBuffer,
		buf,
	)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	var deadline time.Time
	if maxDur > 0 {
		deadline = time.Now().Add(maxDur)
	}
	out := make([]float32, 0, r.SampleRate*r.Channels*10)

	for deadline.IsZero() || time.Now().Before(deadline) {
		select {
		case <-stop:
			return out, nil
		default:
		}

		if err := stream.Read(); err != nil {
			if len(out) > 0 {
				// overflow mid-recording; keep what we have
				return out, nil
			}
			return nil, err
		}

		out = append(out, buf...)
	}

	return out, nil
}

// Package native binds the voice engines to portaudio, whisper.cpp,
// espeak-ng and the system speaker.
package native

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"twin/internal/audio"
	"twin/internal/notify"
	"twin/internal/tts"
	"twin/internal/voice"
	"twin/pkg/stt"
)

const duckMinVolume = 10

func Engines() voice.Engines {
	return voice.Engines{
		Recorder:    newRecorder,
		Transcriber: newTranscriber,
		Synthesizer: newSynthesizer,
		Player:      newPlayer,
	}
}

func newRecorder(sampleRate, channels int) (voice.Recorder, error) {
	r := audio.NewRecorder(sampleRate, channels)
	if err := r.Init(); err != nil {
		return nil, err
	}
	return r, nil
}

type transcriber struct {
	*stt.Transcriber
}

func (t transcriber) Transcribe(ctx context.Context, path string) (string, error) {
	res, err := t.TranscribeFile(ctx, path, stt.Options{Language: "auto"})
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

func newTranscriber(modelPath string) (voice.Transcriber, error) {
	t, err := stt.NewTranscriber(modelPath)
	if err != nil {
		return nil, err
	}
	return transcriber{t}, nil
}

func newSynthesizer() (voice.Synthesizer, error) {
	e := &tts.Engine{}
	if err := e.Init(); err != nil {
		if errors.Is(err, tts.ErrUnavailable) {
			return nil, fmt.Errorf("%w: %w", voice.ErrMissingDependency, err)
		}
		return nil, err
	}
	return e, nil
}

type player struct {
	*audio.Player
}

func (p player) Cue(ctx context.Context) error {
	return notify.Cue(ctx, p.Player)
}

func newPlayer(duck bool) (voice.Player, error) {
	var d *audio.Ducker
	if duck {
		d = audio.NewDucker([]string{filepath.Base(os.Args[0])}, duckMinVolume)
	}
	return player{audio.NewPlayer(d)}, nil
}

// Package voice captures, transcribes, synthesizes and plays speech. The
// native engines are created lazily on first use, so a session that only
// transcribes never opens an audio device.
package voice

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"twin/pkg/wavfile"
)

const (
	DefaultSTTModel   = "base"
	DefaultSampleRate = 16000
	DefaultChannels   = 1
)

type Config struct {
	STTModel  string
	ModelsDir string

	SampleRate int
	Channels   int
	// MaxRecording caps one take. Zero records until Enter or Ctrl-C.
	MaxRecording time.Duration

	TTSVoice string
	TTSRate  int
	Duck     bool

	In  io.Reader
	Out io.Writer
}

func (c *Config) defaults() {
	if c.STTModel == "" {
		c.STTModel = DefaultSTTModel
	}
	if c.SampleRate <= 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.Channels <= 0 {
		c.Channels = DefaultChannels
	}
	if c.In == nil {
		c.In = os.Stdin
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
}

type IO struct {
	cfg Config
	eng Engines

	recorder    Recorder
	transcriber Transcriber
	synth       Synthesizer
	player      Player

	lines   <-chan string
	signals func() (<-chan os.Signal, func())
}

func New(cfg Config, eng Engines) *IO {
	cfg.defaults()
	return &IO{
		cfg:     cfg,
		eng:     eng,
		signals: interrupts,
	}
}

func interrupts() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	return ch, func() { signal.Stop(ch) }
}

func (v *IO) say(msg string) {
	fmt.Fprintln(v.cfg.Out, msg)
}

// CaptureAudio records one utterance between two Enter presses and writes it
// to out, or to a temporary WAV file when out is empty.
func (v *IO) CaptureAudio(ctx context.Context, out string) (string, error) {
	v.say("Press Enter to start recording...")
	if err := v.waitLine(ctx); err != nil {
		return "", err
	}

	rec, err := v.recorderHandle()
	if err != nil {
		return "", err
	}

	if p, err := v.playerHandle(); err == nil {
		if err := p.Cue(ctx); err != nil {
			log.Debug("Cue failed", "err", err)
		}
	}

	v.say("Recording... press Enter to stop.")

	stop := make(chan struct{})
	abort := make(chan struct{})
	stopped := make(chan struct{})
	sig, release := v.signals()
	defer release()

	go func() {
		defer close(stopped)
		defer close(stop)

		select {
		case <-v.lines:
		case <-sig:
			v.say("\nRecording interrupted by user.")
		case <-ctx.Done():
		case <-abort:
		}
	}()

	samples, err := rec.RecordUntil(stop, v.cfg.MaxRecording)
	switch {
	case err != nil:
		close(abort)
	case !isClosed(stop):
		// The take hit MaxRecording. The stop press is still owed and must
		// not be mistaken for the next start.
		v.say("Recording limit reached. Press Enter to continue.")
	}
	<-stopped

	if err != nil {
		return "", fmt.Errorf("could not access microphone: %w", err)
	}
	if len(samples) == 0 {
		return "", ErrNoAudio
	}

	out, err = writeWAV(out, "twin-input-", samples, v.cfg.SampleRate, v.cfg.Channels)
	if err != nil {
		return "", err
	}

	log.Debug("Captured audio", "path", out, "samples", len(samples))
	return out, nil
}

// CaptureAndTranscribe records and transcribes one utterance. The audio path
// is returned whenever a file was written, even if transcription failed, so
// the caller can clean it up.
func (v *IO) CaptureAndTranscribe(ctx context.Context) (string, string, error) {
	path, err := v.CaptureAudio(ctx, "")
	if err != nil {
		return "", "", err
	}
	text, err := v.TranscribeFile(ctx, path)
	return text, path, err
}

func (v *IO) TranscribeFile(ctx context.Context, path string) (string, error) {
	t, err := v.transcriberHandle()
	if err != nil {
		return "", err
	}
	text, err := t.Transcribe(ctx, path)
	if err != nil {
		return "", fmt.Errorf("transcribe %s: %w", path, err)
	}
	return strings.TrimSpace(text), nil
}

// SynthesizeSpeech renders text to a WAV file at out, or to a temporary file
// when out is empty, and returns its path.
func (v *IO) SynthesizeSpeech(ctx context.Context, text, out string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s, err := v.synthHandle()
	if err != nil {
		return "", err
	}

	samples, rate, err := s.Synthesize(text, v.cfg.TTSVoice, v.cfg.TTSRate)
	if err != nil {
		return "", err
	}

	return writeWAV(out, "twin-response-", samples, rate, 1)
}

// writeWAV writes samples to out, or to a new temp file named after prefix
// when out is empty. A temp file is removed again if writing fails.
func writeWAV(out, prefix string, samples []float32, rate, channels int) (string, error) {
	temp := out == ""
	if temp {
		var err error
		if out, err = wavfile.Temp(prefix); err != nil {
			return "", err
		}
	}
	if err := wavfile.Write(out, samples, rate, channels); err != nil {
		if temp {
			os.Remove(out)
		}
		return "", err
	}
	return out, nil
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// Speak synthesizes text and plays it. Blank text is a no-op.
func (v *IO) Speak(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	path, err := v.SynthesizeSpeech(ctx, text, "")
	if err != nil {
		return err
	}
	defer os.Remove(path)

	return v.PlayAudio(ctx, path)
}

func (v *IO) PlayAudio(ctx context.Context, path string) error {
	p, err := v.playerHandle()
	if err != nil {
		return err
	}
	return p.PlayFile(ctx, path)
}

// Close releases the engines that were initialized.
func (v *IO) Close() {
	if v.recorder != nil {
		v.recorder.Close()
		v.recorder = nil
	}
	if v.transcriber != nil {
		if err := v.transcriber.Close(); err != nil {
			log.Warn("Failed to close whisper model", "err", err)
		}
		v.transcriber = nil
	}
	if v.synth != nil {
		v.synth.Close()
		v.synth = nil
	}
	v.player = nil
}

func (v *IO) waitLine(ctx context.Context) error {
	if v.lines == nil {
		v.lines = readLines(v.cfg.In)
	}
	select {
	case _, ok := <-v.lines:
		if !ok {
			return ErrInputClosed
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func readLines(r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			ch <- sc.Text()
		}
	}()
	return ch
}

func (v *IO) recorderHandle() (Recorder, error) {
	if v.recorder != nil {
		return v.recorder, nil
	}
	if v.eng.Recorder == nil {
		return nil, fmt.Errorf("%w: audio capture is not available", ErrMissingDependency)
	}
	r, err := v.eng.Recorder(v.cfg.SampleRate, v.cfg.Channels)
	if err != nil {
		return nil, fmt.Errorf("could not access microphone: %w", err)
	}
	v.recorder = r
	return r, nil
}

func (v *IO) transcriberHandle() (Transcriber, error) {
	if v.transcriber != nil {
		return v.transcriber, nil
	}
	if v.eng.Transcriber == nil {
		return nil, fmt.Errorf("%w: speech-to-text is not available", ErrMissingDependency)
	}
	path, err := ResolveModel(v.cfg.STTModel, v.cfg.ModelsDir)
	if err != nil {
		return nil, err
	}
	t, err := v.eng.Transcriber(path)
	if err != nil {
		if errors.Is(err, ErrMissingDependency) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load Whisper model '%s': %w", v.cfg.STTModel, err)
	}
	log.Debug("Loaded whisper", "model", path)
	v.transcriber = t
	return t, nil
}

func (v *IO) synthHandle() (Synthesizer, error) {
	if v.synth != nil {
		return v.synth, nil
	}
	if v.eng.Synthesizer == nil {
		return nil, fmt.Errorf("%w: text-to-speech is not available", ErrMissingDependency)
	}
	s, err := v.eng.Synthesizer()
	if err != nil {
		return nil, err
	}
	v.synth = s
	return s, nil
}

func (v *IO) playerHandle() (Player, error) {
	if v.player != nil {
		return v.player, nil
	}
	if v.eng.Player == nil {
		return nil, fmt.Errorf("%w: audio playback is not available", ErrMissingDependency)
	}
	p, err := v.eng.Player(v.cfg.Duck)
	if err != nil {
		return nil, err
	}
	v.player = p
	return p, nil
}

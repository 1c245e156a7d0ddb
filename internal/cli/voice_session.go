package cli

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"os"
	"strings"

	"twin/internal/agent"
	"twin/internal/voice"
)

var exitWords = map[string]bool{
	"exit": true,
	"quit": true,
	"stop": true,
}

// voiceSession records, summarizes and speaks until the user says an exit
// word, stdin closes or a dependency turns out to be missing.
func (s *session) voiceSession(ctx context.Context, a *agent.Agent, v Voice) {
	fmt.Fprintln(s.Stdout, "Voice session ready.")
	fmt.Fprintln(s.Stdout, "Say your meeting notes after the prompt. Say 'exit' to leave.")
	fmt.Fprintln(s.Stdout)

	for ctx.Err() == nil {
		transcript, inputPath, err := v.CaptureAndTranscribe(ctx)
		if err != nil {
			switch {
			case errors.Is(err, voice.ErrMissingDependency):
				s.removeRecording(inputPath)
				s.errorf("Missing dependency: %v", err)
				return
			case errors.Is(err, voice.ErrInputClosed), errors.Is(err, context.Canceled):
				return
			}
			s.removeRecording(inputPath)
			s.errorf("Recorder error: %v", err)
			continue
		}

		transcript = strings.TrimSpace(transcript)

		if transcript == "" {
			fmt.Fprintln(s.Stdout, "No speech detected. Please try again.")
			s.removeRecording(inputPath)
			continue
		}

		if exitWords[strings.ToLower(transcript)] {
			fmt.Fprintln(s.Stdout, "Ending voice session.")
			if s.opts.KeepRecordings {
				fmt.Fprintf(s.Stdout, "[saved] Input audio: %s\n", inputPath)
			} else {
				s.removeRecording(inputPath)
			}
			return
		}

		fmt.Fprintln(s.Stdout, "\nTranscription:")
		fmt.Fprintln(s.Stdout, transcript)

		summary, err := s.runner.Run(ctx, agent.Summary(a, transcript))
		if err != nil {
			s.errorf("Error: %v", err)
			s.removeRecording(inputPath)
			continue
		}
		fmt.Fprintln(s.Stdout, "\nAgent response:")
		fmt.Fprintln(s.Stdout, summary)

		responsePath := s.respond(ctx, v, summary)

		switch {
		case s.opts.KeepRecordings:
			fmt.Fprintf(s.Stdout, "[saved] Input audio: %s\n", inputPath)
			if responsePath != "" {
				fmt.Fprintf(s.Stdout, "[saved] Response audio: %s\n", responsePath)
			}
		default:
			s.removeRecording(inputPath)
			if responsePath == "" {
				break
			}
			if s.opts.ResponseAudio == "" {
				s.removeRecording(responsePath)
			} else {
				fmt.Fprintf(s.Stdout, "[saved] Response audio: %s\n", responsePath)
			}
		}

		fmt.Fprintln(s.Stdout, "\n---")
		fmt.Fprintln(s.Stdout)
	}
}

// respond synthesizes the summary and plays it. It returns the path of the
// written audio, or "" when synthesis failed.
func (s *session) respond(ctx context.Context, v Voice, summary string) string {
	path, err := v.SynthesizeSpeech(ctx, summary, s.opts.ResponseAudio)
	if err != nil {
		s.reportTTS(err)
		return ""
	}
	if !s.opts.NoPlayback {
		if err := v.PlayAudio(ctx, path); err != nil {
			s.reportTTS(err)
		}
	}
	return path
}

func (s *session) reportTTS(err error) {
	if errors.Is(err, voice.ErrMissingDependency) {
		s.errorf("Missing dependency for TTS: %v", err)
		return
	}
	s.errorf("TTS error: %v", err)
}

// removeRecording deletes a session audio file unless the user asked to keep
// recordings.
func (s *session) removeRecording(path string) {
	if path == "" || s.opts.KeepRecordings {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("Failed to remove audio file", "path", path, "err", err)
	}
}

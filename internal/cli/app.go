// Package cli is the twin command line: flag validation, source dispatch and
// the interactive voice loop.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"net/http"
	"os"
	"strings"

	"twin/internal/agent"
	"twin/internal/config"
	"twin/internal/llm"
	"twin/internal/proxy"
	"twin/internal/sources"
	"twin/internal/voice"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitUsage       = 2
	ExitUnreadable  = 3
	ExitTranscribe  = 4
	ExitEmptySpeech = 5
)

type TaskRunner interface {
	Run(ctx context.Context, task *agent.Task) (string, error)
}

// Voice is the subset of voice.IO the controller drives.
type Voice interface {
	CaptureAndTranscribe(ctx context.Context) (string, string, error)
	TranscribeFile(ctx context.Context, path string) (string, error)
	SynthesizeSpeech(ctx context.Context, text, out string) (string, error)
	PlayAudio(ctx context.Context, path string) error
	Close()
}

type App struct {
	Stdout io.Writer
	Stderr io.Writer
	Getenv config.Getenv

	// NewRunner connects to the language model. It is only called once the
	// credential check has passed.
	NewRunner func(cfg config.LLM, client *http.Client) TaskRunner
	NewVoice  func(cfg voice.Config) Voice
}

func NewApp() *App {
	return &App{
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Getenv:    os.Getenv,
		NewRunner: DefaultRunner,
	}
}

// DefaultRunner submits tasks through the OpenAI-compatible client.
func DefaultRunner(cfg config.LLM, client *http.Client) TaskRunner {
	return agent.NewRunner(llm.New(llm.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		HTTPClient: client,
	}))
}

// session is the state of one invocation.
type session struct {
	*App
	opts   Options
	runner TaskRunner
	fetch  *http.Client
}

func (a *App) errorf(format string, args ...any) {
	fmt.Fprintf(a.Stderr, format+"\n", args...)
}

// Run executes one invocation and returns the process exit code.
func (a *App) Run(ctx context.Context, opts Options) int {
	cfg := config.LoadLLM(a.Getenv)
	if opts.Proxy != "" {
		cfg.Proxy = opts.Proxy
	}
	if err := cfg.Validate(); err != nil {
		a.errorf("Error: %s.", err)
		return ExitError
	}

	fetch, err := proxy.NewClient(cfg.Proxy, sources.DefaultTimeout)
	if err != nil {
		a.errorf("Error: proxy %s: %v", cfg.Proxy, err)
		return ExitError
	}
	// The model call has no timeout of its own; only ctx bounds it.
	model, err := proxy.NewClient(cfg.Proxy, 0)
	if err != nil {
		a.errorf("Error: proxy %s: %v", cfg.Proxy, err)
		return ExitError
	}

	s := &session{
		App:    a,
		opts:   opts,
		runner: a.NewRunner(cfg, model),
		fetch:  fetch,
	}

	log.Debug("Starting", "mode", opts.Mode, "model", cfg.Model)

	switch opts.Mode {
	case ModeCoding:
		return s.coding(ctx)
	case ModeMeeting:
		return s.meeting(ctx)
	default:
		a.errorf("Error: Unknown mode '%s'.", opts.Mode)
		return ExitError
	}
}

func (s *session) coding(ctx context.Context) int {
	if s.opts.voiceRequested() {
		s.errorf("Voice features are currently available for meeting mode only.")
		return ExitError
	}

	var code string
	switch {
	case s.opts.Code != "":
		code = s.opts.Code
	case s.opts.CodeFile != "":
		data, err := os.ReadFile(s.opts.CodeFile)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				s.errorf("Error: File %s not found.", s.opts.CodeFile)
			} else {
				s.errorf("Error: %v", err)
			}
			return ExitError
		}
		code = string(data)
	default:
		s.errorf("Error: --code or --code-file is required for coding mode.")
		return ExitError
	}

	paste := sources.Paste{}
	a := agent.CodingAgent(sources.CodeAnalysis{}, sources.NewWebSearch(s.fetch), paste)

	analysis, err := s.runner.Run(ctx, agent.CodeAnalysis(a, code))
	if err != nil {
		s.errorf("Error: %v", err)
		return ExitError
	}
	explanation, err := s.runner.Run(ctx, agent.CodeExplanation(a, code))
	if err != nil {
		s.errorf("Error: %v", err)
		return ExitError
	}

	fmt.Fprintf(s.Stdout, "## Analysis\n\n%s\n\n## Explanation\n\n%s\n", analysis, explanation)
	return ExitOK
}

func (s *session) meeting(ctx context.Context) int {
	set := sources.NewSet(s.fetch)
	a := agent.MeetingAgent(set.URL, set.PDF, set.Paste)

	if s.opts.Voice {
		v := s.openVoice()
		defer v.Close()
		s.voiceSession(ctx, a, v)
		return ExitOK
	}

	if s.opts.InputAudio != "" {
		v := s.openVoice()
		defer v.Close()

		transcript, err := v.TranscribeFile(ctx, s.opts.InputAudio)
		if err != nil {
			if errors.Is(err, voice.ErrMissingDependency) {
				s.errorf("Missing dependency for transcription: %v", err)
			} else {
				s.errorf("Transcription error: %v", err)
			}
			return ExitTranscribe
		}
		if strings.TrimSpace(transcript) == "" {
			s.errorf("Error: Transcription produced empty text.")
			return ExitEmptySpeech
		}

		fmt.Fprintln(s.Stdout, "Transcribed audio input:")
		fmt.Fprintln(s.Stdout, transcript)
		s.opts.Text = transcript
	}

	// No source at all is the introduction path, checked before arity.
	if s.opts.sourceCount() == 0 {
		intro, err := s.runner.Run(ctx, agent.Introduction(a))
		if err != nil {
			s.errorf("Error: %v", err)
			return ExitError
		}
		fmt.Fprintln(s.Stdout, intro)
		fmt.Fprintln(s.Stdout)
		fmt.Fprintln(s.Stdout, agent.DigestTemplate)
		return ExitOK
	}

	if s.opts.Weekly {
		task, ok := agent.Weekly(a, s.gather(ctx, set))
		if !ok {
			fmt.Fprintln(s.Stdout, agent.WeeklyHint)
			return ExitOK
		}
		return s.print(ctx, task)
	}

	if s.opts.sourceCount() != 1 {
		s.errorf("Error: Provide exactly one of --url, --pdf, or --text (or use --weekly).")
		return ExitUsage
	}

	texts := s.gather(ctx, set)
	if len(texts) == 0 {
		s.errorf("Error: Source could not be read.")
		return ExitUnreadable
	}

	return s.print(ctx, agent.Summary(a, texts[0]))
}

// gather extracts every provided source in url, pdf, text order and drops
// the ones that came back empty.
func (s *session) gather(ctx context.Context, set *sources.Set) []string {
	inputs := []struct {
		kind    sources.Kind
		locator string
	}{
		{sources.KindURL, s.opts.URL},
		{sources.KindPDF, s.opts.PDF},
		{sources.KindPaste, s.opts.Text},
	}

	var out []string
	for _, in := range inputs {
		if in.locator == "" {
			continue
		}
		text := set.Extract(ctx, in.kind, in.locator)
		if text.Empty() {
			log.Warn("Source produced no text", "kind", in.kind, "locator", in.locator)
			continue
		}
		out = append(out, text.Content)
	}
	return out
}

func (s *session) print(ctx context.Context, task *agent.Task) int {
	out, err := s.runner.Run(ctx, task)
	if err != nil {
		s.errorf("Error: %v", err)
		return ExitError
	}
	fmt.Fprintln(s.Stdout, out)
	return ExitOK
}

func (s *session) openVoice() Voice {
	cfg := voice.Config{
		STTModel:  s.opts.STTModel,
		ModelsDir: config.ModelsDir(s.Getenv),
		TTSVoice:  s.opts.TTSVoice,
		TTSRate:   s.opts.TTSRate,
		Duck:      s.opts.Duck,
		Out:       s.Stdout,
	}
	if s.NewVoice == nil {
		return voice.New(cfg, voice.Engines{})
	}
	return s.NewVoice(cfg)
}

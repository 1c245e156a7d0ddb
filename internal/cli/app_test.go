package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twin/internal/agent"
	"twin/internal/config"
	"twin/internal/voice"
)

type fakeRunner struct {
	tasks   []*agent.Task
	replies []string
	err     error
}

func (r *fakeRunner) Run(ctx context.Context, task *agent.Task) (string, error) {
	r.tasks = append(r.tasks, task)
	if r.err != nil {
		return "", r.err
	}
	if len(r.replies) == 0 {
		return fmt.Sprintf("reply %d", len(r.tasks)), nil
	}
	out := r.replies[0]
	r.replies = r.replies[1:]
	return out, nil
}

type harness struct {
	app    *App
	runner *fakeRunner
	voice  *fakeVoice
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	env    map[string]string
}

func newHarness() *harness {
	h := &harness{
		runner: &fakeRunner{},
		voice:  &fakeVoice{},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		env:    map[string]string{config.APIKeyEnv: "sk-test"},
	}
	h.app = &App{
		Stdout:    h.stdout,
		Stderr:    h.stderr,
		Getenv:    func(k string) string { return h.env[k] },
		NewRunner: func(config.LLM, *http.Client) TaskRunner { return h.runner },
		NewVoice:  func(voice.Config) Voice { return h.voice },
	}
	return h
}

func (h *harness) run(t *testing.T, args ...string) int {
	t.Helper()
	opts, err := ParseArgs(args, io.Discard)
	require.NoError(t, err)
	return h.app.Run(context.Background(), opts)
}

func TestMissingCredential(t *testing.T) {
	h := newHarness()
	delete(h.env, config.APIKeyEnv)

	code := h.run(t, "--text", "notes")
	assert.Equal(t, ExitError, code)
	assert.Equal(t, "Error: ANTHROPIC_API_KEY is not set.\n", h.stderr.String())
	assert.Empty(t, h.runner.tasks)
}

func TestUnknownMode(t *testing.T) {
	h := newHarness()

	code := h.run(t, "--mode", "poetry")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, h.stderr.String(), "Error: Unknown mode 'poetry'.")
	assert.Empty(t, h.runner.tasks)
}

func TestIntroductionWhenNoSource(t *testing.T) {
	h := newHarness()
	h.runner.replies = []string{"Hi, I am your twin."}

	code := h.run(t)
	assert.Equal(t, ExitOK, code)
	require.Len(t, h.runner.tasks, 1)
	assert.Contains(t, h.runner.tasks[0].Description, "Introduce yourself")
	assert.Equal(t, "Hi, I am your twin.\n\n"+agent.DigestTemplate+"\n", h.stdout.String())
}

func TestSingleTextSummary(t *testing.T) {
	h := newHarness()
	h.runner.replies = []string{"1) TL;DR:\n- a"}

	code := h.run(t, "--text", "  Sprint review notes...  ")
	assert.Equal(t, ExitOK, code)
	require.Len(t, h.runner.tasks, 1)

	desc := h.runner.tasks[0].Description
	assert.Contains(t, desc, "SOURCE TEXT:\nSprint review notes...\n")
	for _, section := range []string{"TL;DR", "Decisions", "Risks/Blockers", "Next Steps"} {
		assert.Contains(t, desc, section)
	}
	assert.Equal(t, "1) TL;DR:\n- a\n", h.stdout.String())
}

func TestSourceArity(t *testing.T) {
	h := newHarness()

	code := h.run(t, "--text", "a", "--pdf", "b.pdf")
	assert.Equal(t, ExitUsage, code)
	assert.Equal(t, "Error: Provide exactly one of --url, --pdf, or --text (or use --weekly).\n", h.stderr.String())
	assert.Empty(t, h.runner.tasks)
}

func TestUnreadableSource(t *testing.T) {
	h := newHarness()

	code := h.run(t, "--pdf", filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Equal(t, ExitUnreadable, code)
	assert.Equal(t, "Error: Source could not be read.\n", h.stderr.String())
	assert.Empty(t, h.runner.tasks)
}

func TestURLSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><p>Decided to ship on Friday.</p></body></html>")
	}))
	defer srv.Close()

	h := newHarness()
	code := h.run(t, "--url", srv.URL)
	assert.Equal(t, ExitOK, code)
	require.Len(t, h.runner.tasks, 1)
	assert.Contains(t, h.runner.tasks[0].Description, "Decided to ship on Friday.")
}

func TestWeeklyNeedsTwoSources(t *testing.T) {
	h := newHarness()

	code := h.run(t, "--weekly", "--text", "only one", "--pdf", filepath.Join(t.TempDir(), "gone.pdf"))
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, agent.WeeklyHint+"\n", h.stdout.String())
	assert.Empty(t, h.runner.tasks)
}

func TestWeeklyRollup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><p>Standup on Monday.</p></body></html>")
	}))
	defer srv.Close()

	h := newHarness()
	code := h.run(t, "--weekly", "--text", "Retro on Thursday.", "--url", srv.URL)
	assert.Equal(t, ExitOK, code)
	require.Len(t, h.runner.tasks, 1)

	desc := h.runner.tasks[0].Description
	assert.Contains(t, desc, "Given the following 2 sources")
	assert.Contains(t, desc, "SOURCE 1:\nStandup on Monday.")
	assert.Contains(t, desc, "SOURCE 2:\nRetro on Thursday.")
}

func TestLLMFailure(t *testing.T) {
	h := newHarness()
	h.runner.err = errors.New("rate limited")

	code := h.run(t, "--text", "notes")
	assert.Equal(t, ExitError, code)
	assert.Equal(t, "Error: rate limited\n", h.stderr.String())
}

func TestCodingMode(t *testing.T) {
	h := newHarness()
	h.runner.replies = []string{"looks fine", "it prints"}

	code := h.run(t, "--mode", "coding", "--code", "print('hi')")
	assert.Equal(t, ExitOK, code)
	require.Len(t, h.runner.tasks, 2)
	assert.Contains(t, h.runner.tasks[0].Description, "Analyze the following code")
	assert.Contains(t, h.runner.tasks[1].Description, "Explain what the following code does")
	assert.Equal(t, "## Analysis\n\nlooks fine\n\n## Explanation\n\nit prints\n", h.stdout.String())
}

func TestCodingModeFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0o644))

	h := newHarness()
	code := h.run(t, "--mode", "coding", "--code-file", path)
	assert.Equal(t, ExitOK, code)
	require.Len(t, h.runner.tasks, 2)
	assert.Contains(t, h.runner.tasks[0].Description, "package main")
}

func TestCodingModeErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{
			name: "no code",
			args: []string{"--mode", "coding"},
			msg:  "Error: --code or --code-file is required for coding mode.\n",
		},
		{
			name: "missing file",
			args: []string{"--mode", "coding", "--code-file", "missing.py"},
			msg:  "Error: File missing.py not found.\n",
		},
		{
			name: "voice",
			args: []string{"--mode", "coding", "--code", "x", "--voice"},
			msg:  "Voice features are currently available for meeting mode only.\n",
		},
		{
			name: "input audio",
			args: []string{"--mode", "coding", "--code", "x", "--input-audio", "a.wav"},
			msg:  "Voice features are currently available for meeting mode only.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			code := h.run(t, tt.args...)
			assert.Equal(t, ExitError, code)
			assert.Equal(t, tt.msg, h.stderr.String())
			assert.Empty(t, h.runner.tasks)
		})
	}
}

func TestInputAudio(t *testing.T) {
	h := newHarness()
	h.voice.transcript = "We agreed to freeze the API."

	code := h.run(t, "--input-audio", "meeting.wav")
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, []string{"meeting.wav"}, h.voice.transcribed)
	assert.True(t, h.voice.closed)
	require.Len(t, h.runner.tasks, 1)
	assert.Contains(t, h.runner.tasks[0].Description, "We agreed to freeze the API.")
	assert.True(t, strings.HasPrefix(h.stdout.String(), "Transcribed audio input:\nWe agreed to freeze the API.\n"))
}

func TestInputAudioFailures(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		err        error
		code       int
		msg        string
	}{
		{
			name: "missing model",
			err:  fmt.Errorf("%w: whisper model", voice.ErrMissingDependency),
			code: ExitTranscribe,
			msg:  "Missing dependency for transcription:",
		},
		{
			name: "runtime",
			err:  errors.New("decode failed"),
			code: ExitTranscribe,
			msg:  "Transcription error: decode failed",
		},
		{
			name:       "empty",
			transcript: "   ",
			code:       ExitEmptySpeech,
			msg:        "Error: Transcription produced empty text.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.voice.transcript = tt.transcript
			h.voice.transcribeErr = tt.err

			code := h.run(t, "--input-audio", "a.wav")
			assert.Equal(t, tt.code, code)
			assert.Contains(t, h.stderr.String(), tt.msg)
			assert.Empty(t, h.runner.tasks)
		})
	}
}

func TestParseArgsRejectsUnknownFlag(t *testing.T) {
	var stderr bytes.Buffer
	_, err := ParseArgs([]string{"--nope"}, &stderr)
	assert.Error(t, err)
	assert.Contains(t, stderr.String(), "unknown flag: --nope")
}

func TestParseArgsDefaults(t *testing.T) {
	opts, err := ParseArgs(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, ModeMeeting, opts.Mode)
	assert.Equal(t, "base", opts.STTModel)
	assert.Equal(t, ".env", opts.EnvFile)
	assert.Zero(t, opts.sourceCount())
}

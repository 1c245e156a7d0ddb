package cli

import (
	"io"

	flag "github.com/spf13/pflag"
)

const (
	ModeMeeting = "meeting"
	ModeCoding  = "coding"
)

// Options are the parsed command line.
type Options struct {
	Mode   string
	URL    string
	PDF    string
	Text   string
	Weekly bool

	Code     string
	CodeFile string

	Voice          bool
	InputAudio     string
	ResponseAudio  string
	STTModel       string
	TTSVoice       string
	TTSRate        int
	NoPlayback     bool
	KeepRecordings bool
	Duck           bool

	EnvFile  string
	LogLevel string
	Proxy    string
}

// ParseArgs parses args (without the program name). Usage and parse errors
// are written to stderr.
func ParseArgs(args []string, stderr io.Writer) (Options, error) {
	var o Options

	fs := flag.NewFlagSet("twin", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false

	fs.StringVar(&o.Mode, "mode", ModeMeeting, "Agent mode: meeting (notes) or coding")
	fs.StringVar(&o.URL, "url", "", "Exact URL to fetch")
	fs.StringVar(&o.PDF, "pdf", "", "Local PDF path")
	fs.StringVar(&o.Text, "text", "", "Raw pasted text")
	fs.BoolVar(&o.Weekly, "weekly", false, "Combine multiple sources into one digest")

	fs.StringVar(&o.Code, "code", "", "Code to analyze in coding mode")
	fs.StringVar(&o.CodeFile, "code-file", "", "File containing code to analyze")

	fs.BoolVar(&o.Voice, "voice", false, "Interactive voice loop: record, summarize, speak the answer")
	fs.StringVar(&o.InputAudio, "input-audio", "", "Pre-recorded audio file to transcribe and use as --text")
	fs.StringVar(&o.ResponseAudio, "response-audio", "", "Save synthesized responses to this WAV path")
	fs.StringVar(&o.STTModel, "stt-model", "base", "Whisper model name or path")
	fs.StringVar(&o.TTSVoice, "tts-voice", "", "espeak-ng voice name")
	fs.IntVar(&o.TTSRate, "tts-rate", 0, "Speech rate in words per minute")
	fs.BoolVar(&o.NoPlayback, "no-playback", false, "Synthesize responses without playing them")
	fs.BoolVar(&o.KeepRecordings, "keep-recordings", false, "Keep recorded and synthesized audio files")
	fs.BoolVar(&o.Duck, "duck", false, "Lower other PulseAudio streams while speaking")

	fs.StringVarP(&o.EnvFile, "env", "e", ".env", "Env file path")
	fs.StringVarP(&o.LogLevel, "log", "l", "warn", "Log level")
	fs.StringVarP(&o.Proxy, "proxy", "p", "", "SOCKS5 proxy address")

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}
	return o, nil
}

func (o Options) voiceRequested() bool {
	return o.Voice || o.InputAudio != ""
}

// sourceCount is how many of --url, --pdf and --text are set.
func (o Options) sourceCount() int {
	n := 0
	for _, s := range []string{o.URL, o.PDF, o.Text} {
		if s != "" {
			n++
		}
	}
	return n
}

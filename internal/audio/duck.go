package audio

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	maxVolume    = 150
	fadeStepTime = 10 * time.Millisecond
)

var percentRe = regexp.MustCompile(`(\d+)\s*%`)

// sinkInput is one PulseAudio playback stream.
type sinkInput struct {
	ID      int
	Volume  int
	AppName string
}

type fade struct {
	id       int
	from, to int
}

// CommandRunner runs an external command and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Ducker lowers the volume of other applications while the twin is speaking
// and restores it afterwards. Streams whose application.name is listed in
// self are left alone.
type Ducker struct {
	mu        sync.Mutex
	ducked    map[int]int // sink input id -> volume before ducking
	self      map[string]bool
	minVolume int
	run       CommandRunner
}

func NewDucker(self []string, minVolume int) *Ducker {
	d := &Ducker{
		self:      make(map[string]bool, len(self)),
		minVolume: clampVolume(minVolume),
		run:       execRunner,
	}
	for _, name := range self {
		d.self[name] = true
	}
	return d
}

// DuckOthers fades every foreign stream to factor times its volume, never
// below the configured floor. Calling it twice without UnduckOthers is a no-op.
func (d *Ducker) DuckOthers(ctx context.Context, factor float64, duration time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ducked != nil {
		return nil
	}

	streams, err := d.streams(ctx)
	if err != nil {
		return err
	}

	ducked := make(map[int]int)
	var fades []fade
	for _, s := range streams {
		to := clampVolume(int(math.Round(float64(s.Volume) * factor)))
		if to < d.minVolume {
			to = d.minVolume
		}
		ducked[s.ID] = s.Volume
		fades = append(fades, fade{id: s.ID, from: s.Volume, to: to})
	}

	if err := d.fade(ctx, fades, duration); err != nil {
		return err
	}
	d.ducked = ducked
	return nil
}

// UnduckOthers fades ducked streams back. Streams that appeared after ducking
// are not touched.
func (d *Ducker) UnduckOthers(ctx context.Context, duration time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ducked == nil {
		return nil
	}

	streams, err := d.streams(ctx)
	if err != nil {
		return err
	}

	var fades []fade
	for _, s := range streams {
		if orig, ok := d.ducked[s.ID]; ok {
			fades = append(fades, fade{id: s.ID, from: s.Volume, to: orig})
		}
	}

	if err := d.fade(ctx, fades, duration); err != nil {
		return err
	}
	d.ducked = nil
	return nil
}

func (d *Ducker) streams(ctx context.Context) ([]sinkInput, error) {
	out, err := d.run(ctx, "pactl", "list", "sink-inputs")
	if err != nil {
		return nil, fmt.Errorf("pactl list sink-inputs: %w", err)
	}

	var foreign []sinkInput
	for _, s := range parseSinkInputs(string(out)) {
		if !d.self[s.AppName] {
			foreign = append(foreign, s)
		}
	}
	return foreign, nil
}

// fade steps all targets linearly from their start to end volume.
func (d *Ducker) fade(ctx context.Context, fades []fade, duration time.Duration) error {
	if len(fades) == 0 {
		return nil
	}

	steps := int(duration / fadeStepTime)
	if steps < 1 {
		steps = 1
	}
	pause := duration / time.Duration(steps)

	for i := 1; i <= steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		frac := float64(i) / float64(steps)
		for _, f := range fades {
			v := f.from + int(math.Round(float64(f.to-f.from)*frac))
			if err := d.setVolume(ctx, f.id, v); err != nil {
				return err
			}
		}

		if i < steps && pause > 0 {
			time.Sleep(pause)
		}
	}
	return nil
}

func (d *Ducker) setVolume(ctx context.Context, id, percent int) error {
	arg := fmt.Sprintf("%d%%", clampVolume(percent))
	if _, err := d.run(ctx, "pactl", "set-sink-input-volume", strconv.Itoa(id), arg); err != nil {
		return fmt.Errorf("set volume id=%d: %w", id, err)
	}
	return nil
}

// parseSinkInputs reads the output of `pactl list sink-inputs`.
func parseSinkInputs(text string) []sinkInput {
	blocks := strings.Split(text, "Sink Input #")
	if len(blocks) <= 1 {
		return nil
	}

	var res []sinkInput
	for _, block := range blocks[1:] {
		header, body, ok := strings.Cut(block, "\n")
		if !ok {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(header))
		if err != nil {
			continue
		}

		s := sinkInput{ID: id}
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)

			switch {
			case strings.HasPrefix(line, "Volume:") && s.Volume == 0:
				if m := percentRe.FindStringSubmatch(line); len(m) == 2 {
					s.Volume, _ = strconv.Atoi(m[1])
				}
			case strings.HasPrefix(line, "application.name =") && s.AppName == "":
				_, rest, _ := strings.Cut(line, "=")
				s.AppName = strings.Trim(strings.TrimSpace(rest), `"`)
			}
		}

		if s.Volume == 0 && s.AppName == "" {
			continue
		}
		res = append(res, s)
	}
	return res
}

func clampVolume(v int) int {
	return max(0, min(maxVolume, v))
}

package audio

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pactlOutput = `Sink Input #41
	Driver: PipeWire
	Volume: front-left: 52428 /  80% / -5.81 dB,   front-right: 52428 /  80% / -5.81 dB
	Properties:
		application.name = "Firefox"
Sink Input #42
	Volume: front-left: 65536 / 100% / 0.00 dB
	Properties:
		application.name = "twin"
Sink Input #bogus
	Volume: 10%
`

func TestParseSinkInputs(t *testing.T) {
	got := parseSinkInputs(pactlOutput)
	assert.Equal(t, []sinkInput{
		{ID: 41, Volume: 80, AppName: "Firefox"},
		{ID: 42, Volume: 100, AppName: "twin"},
	}, got)
	assert.Nil(t, parseSinkInputs("no streams"))
}

type fakePactl struct {
	calls [][]string
}

func (f *fakePactl) run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if len(args) > 0 && args[0] == "list" {
		return []byte(pactlOutput), nil
	}
	return nil, nil
}

func (f *fakePactl) volumeCalls() []string {
	var out []string
	for _, c := range f.calls {
		if c[1] == "set-sink-input-volume" {
			out = append(out, strings.Join(c[2:], " "))
		}
	}
	return out
}

func TestDuckerSkipsSelfAndRestores(t *testing.T) {
	fake := &fakePactl{}
	d := NewDucker([]string{"twin"}, 10)
	d.run = fake.run

	require.NoError(t, d.DuckOthers(context.Background(), 0.25, 0))
	assert.Equal(t, []string{"41 20%"}, fake.volumeCalls())

	// second duck is a no-op
	require.NoError(t, d.DuckOthers(context.Background(), 0.25, 0))
	assert.Len(t, fake.volumeCalls(), 1)

	require.NoError(t, d.UnduckOthers(context.Background(), 0))
	assert.Equal(t, []string{"41 20%", "41 80%"}, fake.volumeCalls())
}

func TestDuckerRespectsFloor(t *testing.T) {
	fake := &fakePactl{}
	d := NewDucker([]string{"twin"}, 50)
	d.run = fake.run

	require.NoError(t, d.DuckOthers(context.Background(), 0.1, 0))
	assert.Equal(t, []string{"41 50%"}, fake.volumeCalls())
}

func TestClampVolume(t *testing.T) {
	assert.Equal(t, 0, clampVolume(-5))
	assert.Equal(t, 150, clampVolume(400))
	assert.Equal(t, 70, clampVolume(70))
}

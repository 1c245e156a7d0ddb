// Package tts synthesizes speech with espeak-ng.
package tts

/*
#cgo LDFLAGS: -lespeak-ng
#include <stdlib.h>
#include <string.h>
#include <espeak-ng/speak_lib.h>

static short *twin_buf = NULL;
static int twin_len = 0;
static int twin_cap = 0;

static int
twin_collect(short *wav, int numsamples, espeak_EVENT *events)
{
	(void)events;
	if (wav == NULL || numsamples <= 0)
	{ return 0; }

	if (twin_len + numsamples > twin_cap)
	{
		int cap = twin_cap ? twin_cap : 16384;
		while (cap < twin_len + numsamples)
		{ cap *= 2; }

		short *grown = realloc(twin_buf, (size_t)cap * sizeof(short));
		if (!grown)
		{ return 1; }

		twin_buf = grown;
		twin_cap = cap;
	}

	memcpy(twin_buf + twin_len, wav, (size_t)numsamples * sizeof(short));
	twin_len += numsamples;
	return 0;
}

static int
twin_init(void)
{
	int rate = espeak_Initialize(AUDIO_OUTPUT_SYNCHRONOUS, 500, NULL, 0);
	if (rate > 0)
	{ espeak_SetSynthCallback(twin_collect); }
	return rate;
}

static int
twin_synth(const char *text, const char *voice, int rate)
{
	twin_len = 0;

	if (voice && *voice)
	{ espeak_SetVoiceByName(voice); }
	if (rate > 0)
	{ espeak_SetParameter(espeakRATE, rate, 0); }

	if (espeak_Synth(text, strlen(text) + 1, 0, POS_CHARACTER, 0, espeakCHARS_AUTO, NULL, NULL) != EE_OK)
	{ return -1; }

	espeak_Synchronize();
	return twin_len;
}

static short *
twin_samples(void)
{
	return twin_buf;
}

static void
twin_terminate(void)
{
	espeak_Terminate();
	free(twin_buf);
	twin_buf = NULL;
	twin_len = 0;
	twin_cap = 0;
}
*/
import "C"

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unsafe"
)

var (
	ErrUnavailable = errors.New("espeak-ng is not available")
	ErrEmptyText   = errors.New("cannot synthesize empty text")
)

// espeak keeps global state, so every Engine shares one lock.
var espeakMu sync.Mutex

// Engine is a handle on the espeak-ng library. The zero value is ready to
// use; the library is initialized on the first synthesis.
type Engine struct {
	rate  int
	ready bool
}

func (e *Engine) init() error {
	if e.ready {
		return nil
	}
	rate := int(C.twin_init())
	if rate <= 0 {
		return fmt.Errorf("%w: espeak_Initialize returned %d", ErrUnavailable, rate)
	}
	e.rate = rate
	e.ready = true
	return nil
}

// Init loads espeak-ng data. Synthesize calls it implicitly.
func (e *Engine) Init() error {
	espeakMu.Lock()
	defer espeakMu.Unlock()
	return e.init()
}

// Synthesize renders text to mono samples in [-1, 1] and returns them with
// their sample rate. An unknown voice keeps the current one; rate <= 0 keeps
// the default speed.
func (e *Engine) Synthesize(text, voice string, rate int) ([]float32, int, error) {
	if strings.TrimSpace(text) == "" {
		return nil, 0, ErrEmptyText
	}

	espeakMu.Lock()
	defer espeakMu.Unlock()

	if err := e.init(); err != nil {
		return nil, 0, err
	}

	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))

	var cvoice *C.char
	if voice != "" {
		cvoice = C.CString(voice)
		defer C.free(unsafe.Pointer(cvoice))
	}

	n := int(C.twin_synth(ctext, cvoice, C.int(rate)))
	if n < 0 {
		return nil, 0, errors.New("espeak_Synth failed")
	}
	if n == 0 {
		return nil, 0, errors.New("espeak produced no audio")
	}

	raw := unsafe.Slice((*int16)(unsafe.Pointer(C.twin_samples())), n)
	out := make([]float32, n)
	for i, s := range raw {
		out[i] = float32(s) / 32768
	}

	return out, e.rate, nil
}

func (e *Engine) Close() {
	espeakMu.Lock()
	defer espeakMu.Unlock()

	if !e.ready {
		return
	}
	C.twin_terminate()
	e.ready = false
}

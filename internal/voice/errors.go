package voice

import "errors"

var (
	// ErrMissingDependency marks failures no retry can fix within a session:
	// an absent model file, speech engine or audio backend.
	ErrMissingDependency = errors.New("missing dependency")

	ErrInputClosed = errors.New("input closed")
	ErrEmptyText   = errors.New("cannot synthesize empty text")
	ErrNoAudio     = errors.New("no audio captured; try speaking closer to the microphone")
)

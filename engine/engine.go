// Package engine wraps the pocket-tts synthesis engine behind a
// cancellable streaming contract: text in, PCM chunks out.
package engine

import (
	"context"
	"errors"
	"fmt"

	"pockettray/voice"
)

// PCM format produced by the engine: signed 16-bit little-endian mono.
const (
	SampleRate = 24000
	Channels   = 1
)

// ErrUnknownVoice is returned before any synthesis work starts.
var ErrUnknownVoice = errors.New("unknown voice")

// Chunk is one slice of synthesized audio. A chunk carrying a non-nil
// Err is terminal: the stream closes right after it.
type Chunk struct {
	PCM []byte
	Err error
}

// Engine produces speech as a stream of chunks. Cancelling the context
// tears the stream down within a bounded number of chunks and releases
// all engine resources.
type Engine interface {
	Synthesize(ctx context.Context, text, voice string) (<-chan Chunk, error)
}

func validateVoice(id string) error {
	if !voice.Valid(id) {
		return fmt.Errorf("%w: %q", ErrUnknownVoice, id)
	}
	return nil
}

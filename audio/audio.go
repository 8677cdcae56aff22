// Package audio plays PCM audio through the system output. Platform
// backends share one small surface: a context that owns the device
// connection and a sink that plays one stream at a time.
package audio

import "errors"

// Config fixes the PCM format for a sink: signed 16-bit little-endian
// samples.
type Config struct {
	SampleRate uint32
	Channels   uint32
}

var (
	// ErrBusy means Start was called while a session is active. The
	// caller's single-flight discipline makes this a bug, not a normal
	// runtime condition, so it fails loudly instead of queueing.
	ErrBusy = errors.New("audio: playback session already active")

	// ErrNoSession means Write or Drain was called outside a session.
	ErrNoSession = errors.New("audio: no active playback session")

	// ErrStopped means the session was stopped while the call raced it.
	ErrStopped = errors.New("audio: playback stopped")
)

// Context owns the connection to the audio system.
type Context interface {
	NewSink(config Config) (Sink, error)
	Close()
}

// Sink plays one PCM stream at a time. A session runs from Start until
// Drain or Stop; sound begins with the first Write, not when the stream
// completes. Drain blocks until every queued chunk has been played;
// Stop discards whatever is queued and silences output at once.
type Sink interface {
	Start() error
	Write(pcm []byte) error
	Drain() error
	Stop()
	Close()
}

package engine

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"time"
)

// Fake synthesizes deterministic sine beeps, for tests and the headless
// harness. Chunk sends are unbuffered so cancellation tests can count
// exactly how far a stream got.
type Fake struct {
	Chunks  int           // chunks per utterance
	ChunkMS int           // audio milliseconds per chunk
	Delay   time.Duration // wall-clock pause before each chunk
	FailAt  int           // emit an error instead of chunk N (1-based); 0 = never
	FailErr error         // error for FailAt; nil picks a generic one

	mu       sync.Mutex
	requests []Request
}

// Request records one Synthesize call.
type Request struct {
	Text  string
	Voice string
}

func NewFake() *Fake {
	return &Fake{Chunks: 4, ChunkMS: 40}
}

// Requests returns a copy of every accepted synthesis request.
func (f *Fake) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

func (f *Fake) RequestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *Fake) Synthesize(ctx context.Context, text, voiceID string) (<-chan Chunk, error) {
	if err := validateVoice(voiceID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.requests = append(f.requests, Request{Text: text, Voice: voiceID})
	f.mu.Unlock()

	out := make(chan Chunk)
	go func() {
		defer close(out)
		for i := 1; i <= f.Chunks; i++ {
			if f.Delay > 0 {
				select {
				case <-time.After(f.Delay):
				case <-ctx.Done():
					return
				}
			}
			if i == f.FailAt {
				err := f.FailErr
				if err == nil {
					err = errors.New("synthetic engine failure")
				}
				select {
				case out <- Chunk{Err: err}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case out <- Chunk{PCM: beep(f.ChunkMS)}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// beep renders ms milliseconds of a 440 Hz tone as s16le PCM.
func beep(ms int) []byte {
	n := SampleRate * ms / 1000
	buf := make([]byte, n*2)
	for i := 0; i < n; i++ {
		v := int16(3000 * math.Sin(2*math.Pi*440*float64(i)/SampleRate))
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
	}
	return buf
}

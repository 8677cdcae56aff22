//go:build linux

package audio

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

type pulseContext struct {
	client *pulse.Client
}

func NewContext() (Context, error) {
	c, err := pulse.NewClient()
	if err != nil {
		return nil, fmt.Errorf("pulse: %w", err)
	}
	return &pulseContext{client: c}, nil
}

func (p *pulseContext) NewSink(config Config) (Sink, error) {
	s := &pulseSink{
		client: p.client,
		config: config,
	}
	s.cond = sync.NewCond(&s.mu)
	return s, nil
}

func (p *pulseContext) Close() {
	p.client.Close()
}

type pulseSink struct {
	client *pulse.Client
	config Config

	mu      sync.Mutex
	cond    *sync.Cond
	stream  *pulse.PlaybackStream
	active  bool
	stopped bool
	eof     bool
	pending []byte
}

func (s *pulseSink) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return ErrBusy
	}

	opts := []pulse.PlaybackOption{
		pulse.PlaybackSampleRate(int(s.config.SampleRate)),
		pulse.PlaybackLatency(0.1),
		pulse.PlaybackRawOption(func(p *proto.CreatePlaybackStream) {
			vols := make(proto.ChannelVolumes, s.config.Channels)
			for i := range vols {
				vols[i] = uint32(proto.VolumeNorm)
			}
			p.ChannelVolumes = vols
		}),
	}
	if s.config.Channels == 1 {
		opts = append(opts, pulse.PlaybackMono)
	} else {
		opts = append(opts, pulse.PlaybackStereo)
	}

	stream, err := s.client.NewPlayback(pulse.Int16Reader(s.read), opts...)
	if err != nil {
		return fmt.Errorf("pulse playback: %w", err)
	}
	s.stream = stream
	s.active = true
	s.stopped = false
	s.eof = false
	s.pending = nil
	stream.Start()
	return nil
}

// read feeds the pulse stream. It blocks until data arrives, the stream
// ends, or the session stops, so the server never underruns mid-stream.
func (s *pulseSink) read(buf []int16) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if s.stopped {
			return 0, pulse.EndOfData
		}
		if len(s.pending) >= 2 {
			n := len(s.pending) / 2
			if n > len(buf) {
				n = len(buf)
			}
			for i := 0; i < n; i++ {
				buf[i] = int16(binary.LittleEndian.Uint16(s.pending[i*2:]))
			}
			s.pending = s.pending[n*2:]
			if len(s.pending) < 2 {
				s.cond.Broadcast() // wake a waiting Drain
			}
			return n, nil
		}
		if s.eof {
			return 0, pulse.EndOfData
		}
		s.cond.Wait()
	}
}

func (s *pulseSink) Write(pcm []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return ErrNoSession
	}
	if s.stopped {
		return ErrStopped
	}
	s.pending = append(s.pending, pcm...)
	s.cond.Broadcast()
	return nil
}

func (s *pulseSink) Drain() error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return ErrNoSession
	}
	s.eof = true
	s.cond.Broadcast()
	for len(s.pending) >= 2 && !s.stopped {
		s.cond.Wait()
	}
	if s.stopped {
		// Stop tore the stream down while we waited.
		s.mu.Unlock()
		return nil
	}
	stream := s.stream
	s.mu.Unlock()

	stream.Drain()

	s.mu.Lock()
	if !s.stopped && s.stream != nil {
		s.stream.Stop()
		s.stream.Close()
		s.stream = nil
	}
	s.active = false
	s.pending = nil
	s.mu.Unlock()
	return nil
}

func (s *pulseSink) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.active = false
	s.pending = nil
	stream := s.stream
	s.stream = nil
	s.cond.Broadcast()
	s.mu.Unlock()

	if stream != nil {
		stream.Stop()
		stream.Close()
	}
}

func (s *pulseSink) Close() {
	s.Stop()
}

//go:build !linux

package audio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

type malgoContext struct {
	ctx *malgo.AllocatedContext
}

func NewContext() (Context, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, err
	}
	return &malgoContext{ctx: ctx}, nil
}

func (m *malgoContext) NewSink(config Config) (Sink, error) {
	s := &malgoSink{}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = config.Channels
	deviceConfig.SampleRate = config.SampleRate

	callbacks := malgo.DeviceCallbacks{
		Data: s.fill,
	}
	dev, err := malgo.InitDevice(m.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, fmt.Errorf("malgo playback: %w", err)
	}
	s.device = dev
	return s, nil
}

func (m *malgoContext) Close() {
	m.ctx.Uninit()
	m.ctx.Free()
}

type malgoSink struct {
	device *malgo.Device

	mu      sync.Mutex
	active  bool
	stopped bool
	eof     bool
	pending []byte
	drained chan struct{}
}

// fill is the device pull callback. Underruns play silence; once the
// stream has ended and the queue is empty it signals Drain.
func (s *malgoSink) fill(out, _ []byte, frameCount uint32) {
	s.mu.Lock()
	n := copy(out, s.pending)
	s.pending = s.pending[n:]
	var drained chan struct{}
	if s.eof && len(s.pending) == 0 {
		drained = s.drained
		s.drained = nil
	}
	s.mu.Unlock()

	for i := n; i < len(out); i++ {
		out[i] = 0
	}
	if drained != nil {
		close(drained)
	}
}

func (s *malgoSink) Start() error {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return ErrBusy
	}
	s.active = true
	s.stopped = false
	s.eof = false
	s.pending = nil
	s.drained = make(chan struct{})
	s.mu.Unlock()

	if err := s.device.Start(); err != nil {
		s.mu.Lock()
		s.active = false
		s.drained = nil
		s.mu.Unlock()
		return fmt.Errorf("start playback: %w", err)
	}
	return nil
}

func (s *malgoSink) Write(pcm []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return ErrNoSession
	}
	if s.stopped {
		return ErrStopped
	}
	s.pending = append(s.pending, pcm...)
	return nil
}

func (s *malgoSink) Drain() error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return ErrNoSession
	}
	s.eof = true
	drained := s.drained
	s.mu.Unlock()

	if drained != nil {
		<-drained
	}
	s.device.Stop()

	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
	return nil
}

func (s *malgoSink) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.active = false
	s.pending = nil
	drained := s.drained
	s.drained = nil
	s.mu.Unlock()

	s.device.Stop()
	if drained != nil {
		close(drained)
	}
}

func (s *malgoSink) Close() {
	s.Stop()
	s.device.Uninit()
}

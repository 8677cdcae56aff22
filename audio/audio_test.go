package audio

import (
	"errors"
	"testing"
)

func TestFakeSinkSessionLifecycle(t *testing.T) {
	s := NewFakeSink()

	if err := s.Write([]byte{1, 2}); !errors.Is(err, ErrNoSession) {
		t.Errorf("Write before Start: got %v, want ErrNoSession", err)
	}
	if err := s.Drain(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Drain before Start: got %v, want ErrNoSession", err)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(); !errors.Is(err, ErrBusy) {
		t.Errorf("second Start: got %v, want ErrBusy", err)
	}

	if err := s.Write([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Drain(); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if s.Sessions() != 1 || s.Writes() != 1 || s.Bytes() != 4 || s.Drains() != 1 {
		t.Errorf("sessions=%d writes=%d bytes=%d drains=%d", s.Sessions(), s.Writes(), s.Bytes(), s.Drains())
	}
}

func TestFakeSinkStopDiscardsSession(t *testing.T) {
	s := NewFakeSink()
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Write([]byte{1, 2}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	s.Stop()
	s.Stop() // idempotent

	if err := s.Write([]byte{3, 4}); err == nil {
		t.Errorf("Write after Stop succeeded")
	}
	if s.Stops() != 1 {
		t.Errorf("stops = %d, want 1", s.Stops())
	}
	if s.Writes() != 1 {
		t.Errorf("writes = %d, want 1", s.Writes())
	}

	// A new session starts cleanly after a stop.
	if err := s.Start(); err != nil {
		t.Fatalf("Start after Stop: %v", err)
	}
	if err := s.Write([]byte{5, 6}); err != nil {
		t.Errorf("Write in new session: %v", err)
	}
	if err := s.Drain(); err != nil {
		t.Errorf("Drain in new session: %v", err)
	}
	if s.Sessions() != 2 {
		t.Errorf("sessions = %d, want 2", s.Sessions())
	}
}

func TestFakeContextHandsOutSinks(t *testing.T) {
	ctx := NewFakeContext()
	defer ctx.Close()
	sink, err := ctx.NewSink(Config{SampleRate: 24000, Channels: 1})
	if err != nil {
		t.Fatalf("NewSink: %v", err)
	}
	if err := sink.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sink.Stop()
}

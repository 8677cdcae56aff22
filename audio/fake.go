package audio

import "sync"

// FakeContext hands out fake sinks, for tests and the headless harness.
type FakeContext struct{}

func NewFakeContext() *FakeContext { return &FakeContext{} }

func (f *FakeContext) NewSink(Config) (Sink, error) { return NewFakeSink(), nil }
func (f *FakeContext) Close()                       {}

// FakeSink records everything written to it while enforcing the same
// session rules as the real backends.
type FakeSink struct {
	mu       sync.Mutex
	active   bool
	stopped  bool
	sessions int
	stops    int
	drains   int
	writes   int
	bytes    int
}

func NewFakeSink() *FakeSink { return &FakeSink{} }

func (f *FakeSink) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active {
		return ErrBusy
	}
	f.active = true
	f.stopped = false
	f.sessions++
	return nil
}

func (f *FakeSink) Write(pcm []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.active {
		return ErrNoSession
	}
	if f.stopped {
		return ErrStopped
	}
	f.writes++
	f.bytes += len(pcm)
	return nil
}

func (f *FakeSink) Drain() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.active {
		return ErrNoSession
	}
	f.active = false
	f.drains++
	return nil
}

func (f *FakeSink) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.active {
		return
	}
	f.active = false
	f.stopped = true
	f.stops++
}

func (f *FakeSink) Close() {
	f.Stop()
}

// Sessions counts how many times a playback session was started.
func (f *FakeSink) Sessions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions
}

// Writes counts successful Write calls across all sessions.
func (f *FakeSink) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

// Bytes totals the PCM accepted across all sessions.
func (f *FakeSink) Bytes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bytes
}

// Stops counts sessions ended by Stop rather than Drain.
func (f *FakeSink) Stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

// Drains counts sessions that played to completion.
func (f *FakeSink) Drains() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.drains
}

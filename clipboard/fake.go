package clipboard

import "sync"

// FakeSource is a settable clipboard for tests and the headless
// harness.
type FakeSource struct {
	mu    sync.Mutex
	text  string
	err   error
	reads int
}

func NewFakeSource(text string) *FakeSource {
	return &FakeSource{text: text}
}

func (f *FakeSource) Read() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// Set replaces the clipboard content and clears any injected failure.
func (f *FakeSource) Set(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
	f.err = nil
}

// Fail makes every following Read return err until the next Set.
func (f *FakeSource) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *FakeSource) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

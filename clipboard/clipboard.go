// Package clipboard reads system clipboard text and watches it for
// changes worth speaking. The app never writes the clipboard on its
// own; Write exists for diagnostics only.
package clipboard

import cb "github.com/atotto/clipboard"

// Source yields the current clipboard text. Reads fail transiently when
// the clipboard holds non-text content or another app holds it locked;
// callers should skip the tick and try again.
type Source interface {
	Read() (string, error)
}

// System reads the real OS clipboard.
type System struct{}

func (System) Read() (string, error) {
	return cb.ReadAll()
}

// Write replaces the clipboard text.
func Write(text string) error {
	return cb.WriteAll(text)
}

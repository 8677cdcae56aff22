// Package voice defines the fixed set of speaker identities shipped with
// the synthesis model.
package voice

import "strings"

// names is ordered; the first entry is the default voice and the tray
// menu lists them in this order.
var names = []string{
	"alba",
	"azelma",
	"cosette",
	"eponine",
	"fantine",
	"javert",
	"jean",
	"marius",
}

// Known returns all voice ids in menu order.
func Known() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Default returns the voice used when settings carry no usable value.
func Default() string {
	return names[0]
}

// Valid reports whether id names a shipped voice.
func Valid(id string) bool {
	for _, n := range names {
		if n == id {
			return true
		}
	}
	return false
}

// Label returns the menu label for a voice id ("alba" -> "Alba").
func Label(id string) string {
	if id == "" {
		return ""
	}
	return strings.ToUpper(id[:1]) + id[1:]
}

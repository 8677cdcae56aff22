package clipboard

import (
	"strings"
	"time"

	"pockettray/log"
)

// MaxTextLen caps what one copy may submit for speech, in bytes. Longer
// copies still update the change snapshot so they never retrigger.
const MaxTextLen = 10000

// Prefs is the slice of settings the watcher consults on every change.
type Prefs interface {
	Monitoring() bool
	Voice() string
}

// Watcher polls a clipboard source and submits new text for speech.
// Content present before the watcher starts is recorded silently and
// never spoken.
type Watcher struct {
	src      Source
	prefs    Prefs
	speak    func(text, voice string)
	interval time.Duration

	last   string
	seeded bool
}

func NewWatcher(src Source, prefs Prefs, interval time.Duration, speak func(text, voice string)) *Watcher {
	return &Watcher{src: src, prefs: prefs, interval: interval, speak: speak}
}

// Run seeds the snapshot and polls until stop closes. It owns all
// watcher state; nothing else may call seed or poll concurrently.
func (w *Watcher) Run(stop <-chan struct{}) {
	w.seed()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

// seed records whatever is already on the clipboard without speaking
// it. On failure the first successful poll seeds instead, still
// silently.
func (w *Watcher) seed() {
	text, err := w.src.Read()
	if err != nil {
		return
	}
	w.last = strings.TrimSpace(text)
	w.seeded = true
	log.Infof("clipboard snapshot seeded (%d chars)", len(w.last))
}

// poll is one tick: read, detect change, decide whether to speak. The
// snapshot updates on every observed change, even for content that is
// skipped, so re-enabling monitoring never replays old text.
func (w *Watcher) poll() {
	text, err := w.src.Read()
	if err != nil {
		return
	}
	text = strings.TrimSpace(text)
	if !w.seeded {
		w.last = text
		w.seeded = true
		return
	}
	if text == w.last {
		return
	}
	w.last = text
	if text == "" {
		return
	}
	if len(text) > MaxTextLen {
		log.Warnf("clipboard text too long (%d bytes), skipping", len(text))
		return
	}
	if !w.prefs.Monitoring() {
		return
	}
	log.Infof("new clipboard text (%d bytes)", len(text))
	w.speak(text, w.prefs.Voice())
}

package icon

import (
	"sync"
	"time"
)

// Animator drives the tray icon: the static glyph while idle, the bar
// cycle while speaking. It owns the frame timer, so icon cadence stays
// steady even when synthesis stalls; it follows playback state only,
// never individual audio chunks.
type Animator struct {
	interval time.Duration
	set      func(frame []byte)

	mu       sync.Mutex
	speaking bool
	frame    int
}

// NewAnimator creates an animator that pushes frames through set. The
// static frame is pushed immediately so the tray never sits empty.
func NewAnimator(interval time.Duration, set func([]byte)) *Animator {
	a := &Animator{interval: interval, set: set}
	a.set(Static())
	return a
}

// SetSpeaking turns the animation on or off. Turning it off pushes the
// static frame at once; the mutex guarantees no cycle frame can land
// after it.
func (a *Animator) SetSpeaking(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if on == a.speaking {
		return
	}
	a.speaking = on
	if on {
		a.frame = 0
		a.set(cycleFrames[0])
	} else {
		a.set(Static())
	}
}

// advance pushes the next cycle frame; a no-op while idle.
func (a *Animator) advance() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.speaking {
		return
	}
	a.frame = (a.frame + 1) % FrameCount
	a.set(cycleFrames[a.frame])
}

// Run advances the cycle on a fixed timer until stop closes.
func (a *Animator) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			a.advance()
		}
	}
}

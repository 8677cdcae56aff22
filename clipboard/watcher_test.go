package clipboard

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakePrefs struct {
	mu    sync.Mutex
	mon   bool
	voice string
}

func (p *fakePrefs) Monitoring() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mon
}

func (p *fakePrefs) Voice() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.voice
}

func (p *fakePrefs) setMonitoring(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mon = on
}

func (p *fakePrefs) setVoice(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.voice = id
}

type spokenRecorder struct {
	mu     sync.Mutex
	texts  []string
	voices []string
}

func (r *spokenRecorder) speak(text, voice string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	r.voices = append(r.voices, voice)
}

func (r *spokenRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.texts)
}

func (r *spokenRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

func newTestWatcher(initial string) (*Watcher, *FakeSource, *fakePrefs, *spokenRecorder) {
	src := NewFakeSource(initial)
	prefs := &fakePrefs{mon: true, voice: "alba"}
	rec := &spokenRecorder{}
	w := NewWatcher(src, prefs, time.Millisecond, rec.speak)
	return w, src, prefs, rec
}

func TestPreexistingContentNeverSpoken(t *testing.T) {
	w, src, _, rec := newTestWatcher("stale content")
	w.seed()
	for i := 0; i < 3; i++ {
		w.poll()
	}
	if rec.count() != 0 {
		t.Fatalf("startup content was spoken: %v", rec.all())
	}

	src.Set("fresh content")
	w.poll()
	if got := rec.all(); len(got) != 1 || got[0] != "fresh content" {
		t.Errorf("spoken = %v, want [fresh content]", got)
	}
}

func TestSeedRetriesOnFirstSuccessfulPoll(t *testing.T) {
	w, src, _, rec := newTestWatcher("locked")
	src.Fail(errors.New("clipboard busy"))
	w.seed()

	// Clipboard becomes readable: this content is the seed, not speech.
	src.Set("was here all along")
	w.poll()
	if rec.count() != 0 {
		t.Fatalf("late seed was spoken: %v", rec.all())
	}

	src.Set("genuinely new")
	w.poll()
	if got := rec.all(); len(got) != 1 || got[0] != "genuinely new" {
		t.Errorf("spoken = %v", got)
	}
}

func TestSameContentSpokenOnce(t *testing.T) {
	w, src, _, rec := newTestWatcher("")
	w.seed()
	src.Set("hello")
	for i := 0; i < 5; i++ {
		w.poll()
	}
	if rec.count() != 1 {
		t.Errorf("same content spoken %d times", rec.count())
	}
}

func TestWhitespaceAndEmptySkipped(t *testing.T) {
	w, src, _, rec := newTestWatcher("something")
	w.seed()

	src.Set("   \n\t  ")
	w.poll()
	if rec.count() != 0 {
		t.Fatalf("whitespace was spoken")
	}

	// Whitespace still cleared the snapshot; real text speaks next.
	src.Set("real text")
	w.poll()
	if got := rec.all(); len(got) != 1 || got[0] != "real text" {
		t.Errorf("spoken = %v", got)
	}
}

func TestSpokenTextIsTrimmed(t *testing.T) {
	w, src, _, rec := newTestWatcher("")
	w.seed()
	src.Set("  padded  \n")
	w.poll()
	if got := rec.all(); len(got) != 1 || got[0] != "padded" {
		t.Errorf("spoken = %q", got)
	}
}

func TestOversizeTextSkippedButSnapshotted(t *testing.T) {
	w, src, _, rec := newTestWatcher("")
	w.seed()

	huge := strings.Repeat("x", MaxTextLen+1)
	src.Set(huge)
	w.poll()
	w.poll()
	if rec.count() != 0 {
		t.Fatalf("oversize text was spoken")
	}

	src.Set("short again")
	w.poll()
	if got := rec.all(); len(got) != 1 || got[0] != "short again" {
		t.Errorf("spoken = %v", got)
	}
}

func TestExactLimitStillSpoken(t *testing.T) {
	w, src, _, rec := newTestWatcher("")
	w.seed()
	src.Set(strings.Repeat("y", MaxTextLen))
	w.poll()
	if rec.count() != 1 {
		t.Errorf("text at the byte limit was skipped")
	}
}

func TestDisabledMonitoringStillTracksChanges(t *testing.T) {
	w, src, prefs, rec := newTestWatcher("")
	w.seed()

	prefs.setMonitoring(false)
	src.Set("copied while off")
	w.poll()
	if rec.count() != 0 {
		t.Fatalf("spoke while monitoring disabled")
	}

	// Re-enabling must not replay the text copied while disabled.
	prefs.setMonitoring(true)
	w.poll()
	if rec.count() != 0 {
		t.Fatalf("re-enable replayed old clipboard text")
	}

	src.Set("copied while on")
	w.poll()
	if got := rec.all(); len(got) != 1 || got[0] != "copied while on" {
		t.Errorf("spoken = %v", got)
	}
}

func TestTransientReadFailureSkipsTick(t *testing.T) {
	w, src, _, rec := newTestWatcher("")
	w.seed()

	src.Fail(errors.New("no text available"))
	w.poll()
	if rec.count() != 0 {
		t.Fatalf("failed read was spoken")
	}

	src.Set("after recovery")
	w.poll()
	if got := rec.all(); len(got) != 1 || got[0] != "after recovery" {
		t.Errorf("spoken = %v", got)
	}
}

func TestVoiceFollowsPrefs(t *testing.T) {
	w, src, prefs, rec := newTestWatcher("")
	w.seed()

	src.Set("first")
	w.poll()
	prefs.setVoice("javert")
	src.Set("second")
	w.poll()

	rec.mu.Lock()
	voices := append([]string(nil), rec.voices...)
	rec.mu.Unlock()
	if len(voices) != 2 || voices[0] != "alba" || voices[1] != "javert" {
		t.Errorf("voices = %v", voices)
	}
}

func TestRunPollsAndStops(t *testing.T) {
	w, src, _, rec := newTestWatcher("preexisting")
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		w.Run(stop)
		close(done)
	}()

	// Wait for Run's seed to snapshot the preexisting content so the
	// text set below is observed as a change rather than the seed.
	seedDeadline := time.Now().Add(time.Second)
	for src.Reads() == 0 && time.Now().Before(seedDeadline) {
		time.Sleep(time.Millisecond)
	}

	src.Set("picked up by the loop")
	deadline := time.Now().Add(time.Second)
	for rec.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if rec.count() == 0 {
		t.Fatalf("run loop never spoke the new text")
	}

	close(stop)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after stop")
	}
}

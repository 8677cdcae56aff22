package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"pockettray/audio"
	"pockettray/clipboard"
	"pockettray/engine"
	"pockettray/log"
	"pockettray/player"
	"pockettray/settings"
)

// stateTracker consumes the player's event stream and lets the stdin
// driver block until a target state is reached. It is the stream's only
// consumer in test mode.
type stateTracker struct {
	mu      sync.Mutex
	cond    *sync.Cond
	current player.State
}

func newStateTracker(events <-chan player.Transition) *stateTracker {
	t := &stateTracker{}
	t.cond = sync.NewCond(&t.mu)
	go func() {
		for tr := range events {
			t.mu.Lock()
			t.current = tr.To
			t.cond.Broadcast()
			t.mu.Unlock()
		}
	}()
	return t
}

func (t *stateTracker) wait(s player.State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for t.current != s {
		t.cond.Wait()
	}
}

// runTestMode drives the full pipeline with a fake engine, sink, and
// clipboard, scripted over stdin. Commands, one per line:
//
//	PRESET <text>   set clipboard content before the watcher starts
//	START           start the clipboard watcher
//	COPY <text>     replace the clipboard content
//	SPEAK <text>    submit text directly, bypassing the clipboard
//	STOP            cut the active utterance
//	TOGGLE          flip clipboard monitoring
//	VOICE <id>      switch the active voice
//	WAIT_SPEAKING   block until playback starts
//	WAIT_IDLE       block until the player returns to idle
//	SLEEP <ms>      pause the script
//	QUIT            end the session
func runTestMode(pollInterval time.Duration) {
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	st := settings.Open(filepath.Join(log.Dir(), settings.FileName))
	log.SessionStart("fake", st.Voice(), "(none)")

	eng := engine.NewFake()
	eng.Chunks = 25
	eng.Delay = 10 * time.Millisecond
	sink := audio.NewFakeSink()

	pl := player.New(eng, sink)
	pl.Start()
	tracker := newStateTracker(pl.Events())

	src := clipboard.NewFakeSource("")
	watcher := clipboard.NewWatcher(src, st, pollInterval, pl.Speak)
	watcherStop := make(chan struct{})
	watcherStarted := false
	startWatcher := func() {
		if !watcherStarted {
			watcherStarted = true
			go watcher.Run(watcherStop)
		}
	}
	shutdown := func() {
		if watcherStarted {
			close(watcherStop)
		}
		pl.Shutdown()
		log.SessionEnd(pl.Spoken())
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		switch cmd {
		case "PRESET", "COPY":
			src.Set(arg)
		case "START":
			startWatcher()
		case "SPEAK":
			pl.Speak(arg, st.Voice())
		case "STOP":
			pl.Stop()
		case "TOGGLE":
			if err := st.SetMonitoring(!st.Monitoring()); err != nil {
				log.Errorf("toggle monitoring: %v", err)
			}
		case "VOICE":
			if err := st.SetVoice(arg); err != nil {
				log.Errorf("set voice: %v", err)
			}
		case "WAIT_SPEAKING":
			tracker.wait(player.Speaking)
		case "WAIT_IDLE":
			tracker.wait(player.Idle)
		case "SLEEP":
			if ms, err := strconv.Atoi(arg); err == nil {
				time.Sleep(time.Duration(ms) * time.Millisecond)
			}
		case "QUIT":
			shutdown()
			return
		}
	}
	shutdown()
}

// Package player owns the speak/stop lifecycle: one utterance at a
// time, streamed from the engine into the audio sink, with every state
// change published on an ordered events channel.
package player

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"pockettray/audio"
	"pockettray/engine"
	"pockettray/log"
)

// State is the playback lifecycle position. All transitions happen on
// the run loop, so the events channel sees them in true order.
type State int

const (
	Idle State = iota
	Speaking
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Speaking:
		return "speaking"
	case Stopping:
		return "stopping"
	}
	return "unknown"
}

// Utterance is one text+voice unit submitted for speech.
type Utterance struct {
	ID          string
	Text        string
	Voice       string
	SubmittedAt time.Time
}

// Transition is one state change. Err is non-nil only on a return to
// Idle caused by an engine or sink failure.
type Transition struct {
	From      State
	To        State
	Utterance Utterance
	Err       error
}

type cmdKind int

const (
	cmdSpeak cmdKind = iota
	cmdStop
)

type command struct {
	kind cmdKind
	utt  Utterance
}

type playbackResult struct {
	utt      Utterance
	err      error
	stopped  bool
	chunks   int
	pcmBytes int
	started  time.Time
}

// Player serializes all playback through a single run loop. Speak and
// Stop are safe from any goroutine and never block on audio work.
type Player struct {
	eng  engine.Engine
	sink audio.Sink

	cmds   chan command
	done   chan playbackResult
	events chan Transition
	quit   chan struct{}

	closeOnce sync.Once
	wg        sync.WaitGroup

	// Run-loop state. Nothing outside the loop touches these.
	state  State
	active *Utterance
	cancel context.CancelFunc
	spoken int
}

func New(eng engine.Engine, sink audio.Sink) *Player {
	return &Player{
		eng:    eng,
		sink:   sink,
		cmds:   make(chan command, 16),
		done:   make(chan playbackResult, 1),
		events: make(chan Transition, 64),
		quit:   make(chan struct{}),
	}
}

// Start launches the run loop. The events channel carries every state
// change from here on; the consumer must keep reading it.
func (p *Player) Start() {
	p.wg.Add(1)
	go p.run()
}

// Events is the ordered stream of state transitions. It closes after
// Shutdown, once the final transition is out.
func (p *Player) Events() <-chan Transition { return p.events }

// Speak submits text for playback and returns immediately. The request
// is dropped unless the player is idle; nothing queues behind an
// in-flight utterance.
func (p *Player) Speak(text, voiceID string) {
	utt := Utterance{
		ID:          uuid.New().String(),
		Text:        text,
		Voice:       voiceID,
		SubmittedAt: time.Now(),
	}
	select {
	case p.cmds <- command{kind: cmdSpeak, utt: utt}:
	case <-p.quit:
	}
}

// Stop cancels the active utterance, if any. Safe to call in any state.
func (p *Player) Stop() {
	select {
	case p.cmds <- command{kind: cmdStop}:
	case <-p.quit:
	}
}

// Shutdown cancels any active playback and waits for the run loop to
// exit. Idempotent.
func (p *Player) Shutdown() {
	p.closeOnce.Do(func() { close(p.quit) })
	p.wg.Wait()
}

// Spoken reports how many utterances played to natural completion.
// Valid after Shutdown returns.
func (p *Player) Spoken() int { return p.spoken }

func (p *Player) run() {
	defer p.wg.Done()
	defer close(p.events)
	for {
		select {
		case cmd := <-p.cmds:
			switch cmd.kind {
			case cmdSpeak:
				p.handleSpeak(cmd.utt)
			case cmdStop:
				p.handleStop()
			}
		case res := <-p.done:
			p.finish(res)
		case <-p.quit:
			if p.state == Idle {
				return
			}
			if p.cancel != nil {
				p.cancel()
			}
			p.finish(<-p.done)
			return
		}
	}
}

func (p *Player) transition(to State, err error) {
	from := p.state
	p.state = to
	var utt Utterance
	if p.active != nil {
		utt = *p.active
	}
	log.Transition(from.String(), to.String())
	p.events <- Transition{From: from, To: to, Utterance: utt, Err: err}
}

func (p *Player) handleSpeak(utt Utterance) {
	if p.state != Idle {
		log.Infof("speak dropped while %s (%d chars)", p.state, len(utt.Text))
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.active = &utt
	p.transition(Speaking, nil)
	go p.playback(ctx, cancel, utt)
}

func (p *Player) handleStop() {
	if p.state != Speaking {
		return
	}
	p.transition(Stopping, nil)
	p.cancel()
}

// playback shovels one utterance from the engine into the sink. It runs
// off the loop so Speak/Stop stay responsive, and always reports back
// on the done channel.
func (p *Player) playback(ctx context.Context, cancel context.CancelFunc, utt Utterance) {
	defer cancel()
	res := playbackResult{utt: utt, started: time.Now()}
	res.err = p.stream(ctx, utt, &res)
	p.done <- res
}

func (p *Player) stream(ctx context.Context, utt Utterance, res *playbackResult) error {
	chunks, err := p.eng.Synthesize(ctx, utt.Text, utt.Voice)
	if err != nil {
		return err
	}
	if err := p.sink.Start(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			p.sink.Stop()
			res.stopped = true
			return nil
		case c, ok := <-chunks:
			if !ok {
				return p.drain(ctx, res)
			}
			if c.Err != nil {
				p.sink.Stop()
				return c.Err
			}
			if err := p.sink.Write(c.PCM); err != nil {
				p.sink.Stop()
				return err
			}
			res.chunks++
			res.pcmBytes += len(c.PCM)
		}
	}
}

// drain waits for queued audio to finish playing, still honoring a stop
// that lands after synthesis completed but before playback has.
func (p *Player) drain(ctx context.Context, res *playbackResult) error {
	drained := make(chan error, 1)
	go func() { drained <- p.sink.Drain() }()
	select {
	case err := <-drained:
		return err
	case <-ctx.Done():
		p.sink.Stop()
		res.stopped = true
		<-drained
		return nil
	}
}

func (p *Player) finish(res playbackResult) {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	log.Utterance(log.UtteranceMetrics{
		ID:      res.utt.ID,
		Voice:   res.utt.Voice,
		Chars:   len(res.utt.Text),
		Chunks:  res.chunks,
		PCMKB:   float64(res.pcmBytes) / 1024,
		TotalMs: float64(time.Since(res.started).Microseconds()) / 1000,
		Stopped: res.stopped,
	})
	switch {
	case res.err != nil:
		log.Errorf("utterance %s failed: %v", res.utt.ID, res.err)
	case !res.stopped:
		log.SpokenText(res.utt.Text)
		p.spoken++
	}
	p.transition(Idle, res.err)
	p.active = nil
}

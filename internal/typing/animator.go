package typing

import (
	"sync"
	"time"
)

// Timer is a pending callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Clock schedules delayed callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock schedules callbacks with time.AfterFunc.
var RealClock Clock = realClock{}

// Params are the inputs of a reveal. Changing any of them restarts it.
type Params struct {
	Text  string
	Speed time.Duration
	Delay time.Duration
}

// Option configures an Animator.
type Option func(*Animator)

// WithClock replaces the real clock, mostly for tests.
func WithClock(c Clock) Option {
	return func(a *Animator) { a.clock = c }
}

// OnChange registers fn to observe every state change. fn runs while the
// animator is locked and must not call back into it.
func OnChange(fn func(State)) Option {
	return func(a *Animator) { a.onChange = fn }
}

// Animator owns one reveal schedule. At most one timer is pending at a
// time; Cancel stops it and turns any late callback into a no-op.
type Animator struct {
	mu       sync.Mutex
	clock    Clock
	params   Params
	state    State
	timer    Timer
	gen      uint64
	running  bool
	disposed bool
	done     chan struct{}
	onChange func(State)
	next     func()
}

// New builds an idle animator for text. Call Start to begin revealing.
func New(text string, speed, delay time.Duration, opts ...Option) *Animator {
	a := &Animator{
		clock:  RealClock,
		params: Params{Text: text, Speed: clampDuration(speed), Delay: clampDuration(delay)},
		state:  State{Source: text},
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func clampDuration(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// Start schedules the reveal. Calling Start on a running or disposed
// animator does nothing.
func (a *Animator) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running || a.disposed {
		return
	}
	a.running = true
	a.schedule(a.params.Delay, a.gen)
}

// SetParams changes the reveal inputs. Identical params are ignored; any
// change cancels the pending tick and restarts from empty text.
func (a *Animator) SetParams(p Params) {
	p.Speed = clampDuration(p.Speed)
	p.Delay = clampDuration(p.Delay)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed || p == a.params {
		return
	}
	a.stopTimer()
	a.gen++
	a.params = p
	a.done = make(chan struct{})
	a.apply(Event{Kind: EventRestart, Text: p.Text})
	if a.running {
		a.schedule(p.Delay, a.gen)
	}
}

// Cancel disposes the animator. No state change is observable afterwards.
func (a *Animator) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return
	}
	a.disposed = true
	a.stopTimer()
	a.gen++
	a.next = nil
}

// State returns a snapshot of the reveal.
func (a *Animator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Revealed returns the currently visible prefix.
func (a *Animator) Revealed() string {
	return a.State().Revealed
}

// Complete reports whether the whole text has been revealed.
func (a *Animator) Complete() bool {
	return a.State().Complete
}

// Params returns the current reveal inputs.
func (a *Animator) Params() Params {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.params
}

// Done is closed when the current reveal completes. A restart replaces it.
func (a *Animator) Done() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.done
}

func (a *Animator) schedule(d time.Duration, gen uint64) {
	a.timer = a.clock.AfterFunc(d, func() { a.fire(gen) })
}

func (a *Animator) stopTimer() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Animator) fire(gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed || gen != a.gen {
		return
	}
	a.timer = nil

	if a.params.Speed == 0 {
		a.apply(Event{Kind: EventFlush})
	} else {
		a.apply(Event{Kind: EventTick})
	}

	if !a.state.Complete {
		a.schedule(a.params.Speed, gen)
		return
	}
	close(a.done)
	if a.next != nil {
		next := a.next
		a.next = nil
		next()
	}
}

func (a *Animator) apply(ev Event) {
	prev := a.state
	a.state = Reduce(a.state, ev)
	if a.onChange != nil && a.state != prev {
		a.onChange(a.state)
	}
}

// Package visibility tracks whether a page region is within the viewport.
package visibility

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrThreshold is returned for thresholds outside [0, 1].
	ErrThreshold = errors.New("visibility: threshold must be within [0, 1]")
	// ErrAlreadyAttached is returned when Attach is called twice without Detach.
	ErrAlreadyAttached = errors.New("visibility: detector already attached")
	// ErrClosed is returned by Attach after Close.
	ErrClosed = errors.New("visibility: detector closed")
)

// Region is an opaque handle naming a renderable area.
type Region string

// Subscription is a live observation. Unsubscribe releases it and may be
// called more than once.
type Subscription interface {
	Unsubscribe()
}

// Observer is a push-based intersection mechanism. fn receives the
// fraction of region inside the viewport whenever it changes.
type Observer interface {
	Observe(region Region, fn func(ratio float64)) (Subscription, error)
}

// State is the detector's observable state.
type State struct {
	Region    Region
	Threshold float64
	Attached  bool
	Visible   bool
}

// Reduce records an intersection ratio. Only the latest ratio matters.
func Reduce(s State, ratio float64) State {
	if !s.Attached {
		return s
	}
	s.Visible = ratio >= s.Threshold
	return s
}

// Detector gates entrance animations on a single region.
type Detector struct {
	mu       sync.Mutex
	observer Observer
	state    State
	sub      Subscription
	gen      uint64
	closed   bool
	onChange func(visible bool)
}

// Option configures a Detector.
type Option func(*Detector)

// OnChange registers fn to run whenever Visible flips. fn runs with the
// detector locked and must not call back into it.
func OnChange(fn func(visible bool)) Option {
	return func(d *Detector) { d.onChange = fn }
}

// NewDetector returns a detector that reports a region visible once at
// least threshold of it intersects the viewport.
func NewDetector(observer Observer, threshold float64, opts ...Option) (*Detector, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrThreshold, threshold)
	}
	d := &Detector{
		observer: observer,
		state:    State{Threshold: threshold},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Attach starts observing region.
func (d *Detector) Attach(region Region) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if d.state.Attached {
		return ErrAlreadyAttached
	}

	d.gen++
	gen := d.gen
	d.state.Region = region
	d.state.Attached = true

	// The observer may deliver the first ratio synchronously, so the lock
	// is released around Observe.
	d.mu.Unlock()
	sub, err := d.observer.Observe(region, func(ratio float64) { d.deliver(gen, ratio) })
	d.mu.Lock()

	if err != nil {
		if d.gen == gen {
			d.state.Attached = false
		}
		return fmt.Errorf("observe %s: %w", region, err)
	}
	if d.gen != gen || d.closed {
		sub.Unsubscribe()
		return nil
	}
	d.sub = sub
	return nil
}

// Detach stops observing. Visible keeps its last value.
func (d *Detector) Detach() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.release()
}

// Close detaches and prevents further use.
func (d *Detector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.release()
	d.closed = true
}

// Visible reports the last delivered result.
func (d *Detector) Visible() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.Visible
}

// State returns a snapshot.
func (d *Detector) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Detector) release() {
	d.gen++
	d.state.Attached = false
	if d.sub != nil {
		d.sub.Unsubscribe()
		d.sub = nil
	}
}

func (d *Detector) deliver(gen uint64, ratio float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || gen != d.gen {
		return
	}
	prev := d.state.Visible
	d.state = Reduce(d.state, ratio)
	if d.onChange != nil && d.state.Visible != prev {
		d.onChange(d.state.Visible)
	}
}

package contact

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

var (
	// ErrUnknownField is returned by SetField for names outside Fields.
	ErrUnknownField = errors.New("contact: unknown field")
	// ErrNotSubmitted is returned by Reset outside the submitted state.
	ErrNotSubmitted = errors.New("contact: form has not been submitted")
	// ErrClosed is returned by Reset after Close.
	ErrClosed = errors.New("contact: form closed")
)

// Submitter delivers a validated message.
type Submitter interface {
	Submit(ctx context.Context, v Values) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, v Values) error

func (f SubmitterFunc) Submit(ctx context.Context, v Values) error {
	return f(ctx, v)
}

// Outcome describes what a Submit call did.
type Outcome int

const (
	// OutcomeInvalid means validation failed and nothing was sent.
	OutcomeInvalid Outcome = iota
	// OutcomeIgnored means another submission was in flight, or the form
	// was already submitted.
	OutcomeIgnored
	// OutcomeSent means the submitter succeeded.
	OutcomeSent
	// OutcomeFailed means the submitter failed; the fields were kept.
	OutcomeFailed
	// OutcomeClosed means the controller was disposed.
	OutcomeClosed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInvalid:
		return "invalid"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeSent:
		return "sent"
	case OutcomeFailed:
		return "failed"
	case OutcomeClosed:
		return "closed"
	}
	return "unknown"
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets where submission failures are logged.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// OnChange registers fn to observe every state change. fn runs with the
// controller locked and must not call back into it.
func OnChange(fn func(FormState)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// Controller owns one contact form. The Submitting status doubles as the
// guard that keeps a single submission in flight.
type Controller struct {
	mu        sync.Mutex
	state     FormState
	submitter Submitter
	logger    *log.Logger
	closed    bool
	onChange  func(FormState)
}

// NewController returns an idle, empty form that sends through s.
func NewController(s Submitter, opts ...Option) *Controller {
	c := &Controller{
		submitter: s,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetField updates one field and clears its error, if any.
func (c *Controller) SetField(f Field, value string) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.apply(Event{Kind: EventFieldChanged, Field: f, Value: value})
	return nil
}

// Validate replaces the errors with a fresh validation of the fields and
// reports whether the form is valid. A closed form is only checked.
func (c *Controller) Validate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return len(Validate(c.state.Values)) == 0
	}
	return c.validate()
}

func (c *Controller) validate() bool {
	errs := Validate(c.state.Values)
	c.apply(Event{Kind: EventValidated, Errors: errs})
	return len(errs) == 0
}

// Submit validates the form and, if valid, sends it. It blocks until the
// submitter returns. The returned error is the submitter's, and is only
// set with OutcomeFailed.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return OutcomeClosed, nil
	}
	if c.state.Status != StatusIdle {
		c.mu.Unlock()
		return OutcomeIgnored, nil
	}
	if !c.validate() {
		c.mu.Unlock()
		return OutcomeInvalid, nil
	}
	c.apply(Event{Kind: EventSubmitStarted})
	values := c.state.Values
	c.mu.Unlock()

	err := c.submitter.Submit(ctx, values)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return OutcomeClosed, nil
	}
	if err != nil {
		c.logger.Printf("Form submission error: %v", err)
		c.apply(Event{Kind: EventSubmitFailed})
		return OutcomeFailed, err
	}
	c.apply(Event{Kind: EventSubmitSucceeded})
	return OutcomeSent, nil
}

// Reset returns a submitted form to an empty idle one.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.state.Status != StatusSubmitted {
		return ErrNotSubmitted
	}
	c.apply(Event{Kind: EventReset})
	return nil
}

// State returns a snapshot safe to keep.
func (c *Controller) State() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Errors = s.Errors.clone()
	return s
}

// Close disposes the controller. A submission still in flight completes
// without touching the state.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *Controller) apply(ev Event) {
	c.state = Reduce(c.state, ev)
	if c.onChange != nil {
		s := c.state
		s.Errors = s.Errors.clone()
		c.onChange(s)
	}
}

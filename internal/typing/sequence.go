package typing

import "sync"

// Sequence runs animators one after another: each starts only once the
// previous one has completed.
type Sequence struct {
	mu      sync.Mutex
	steps   []*Animator
	started bool
}

// NewSequence chains steps in order. The animators must not have been
// started yet.
func NewSequence(steps ...*Animator) *Sequence {
	for i := 0; i+1 < len(steps); i++ {
		next := steps[i+1]
		steps[i].mu.Lock()
		steps[i].next = next.Start
		steps[i].mu.Unlock()
	}
	return &Sequence{steps: steps}
}

// Start begins the first animator.
func (s *Sequence) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || len(s.steps) == 0 {
		return
	}
	s.started = true
	s.steps[0].Start()
}

// Cancel disposes every animator in the sequence.
func (s *Sequence) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.steps {
		a.Cancel()
	}
}

// Step returns the i-th animator.
func (s *Sequence) Step(i int) *Animator {
	return s.steps[i]
}

// Len returns the number of animators.
func (s *Sequence) Len() int {
	return len(s.steps)
}

// Done is closed when the last animator completes.
func (s *Sequence) Done() <-chan struct{} {
	if len(s.steps) == 0 {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return s.steps[len(s.steps)-1].Done()
}

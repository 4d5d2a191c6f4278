package typing

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// fakeClock fires callbacks synchronously from Advance, in deadline order.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()
	for {
		c.mu.Lock()
		var due *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at > target {
				continue
			}
			if due == nil || t.at < due.at {
				due = t
			}
		}
		if due == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = due.at
		due.fired = true
		c.mu.Unlock()
		due.fn()
	}
}

func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (c *fakeClock) last() *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timers[len(c.timers)-1]
}

func TestAnimatorRevealsOneRunePerTick(t *testing.T) {
	clock := &fakeClock{}
	var seen []string
	a := New("héllo", 10*time.Millisecond, 50*time.Millisecond,
		WithClock(clock),
		OnChange(func(s State) { seen = append(seen, s.Revealed) }),
	)
	a.Start()

	clock.Advance(49 * time.Millisecond)
	if got := a.Revealed(); got != "" {
		t.Fatalf("revealed before delay: %q", got)
	}

	clock.Advance(1 * time.Millisecond)
	if got := a.Revealed(); got != "h" {
		t.Fatalf("after delay: got %q, want %q", got, "h")
	}

	// last rune shows at delay + speed*(len-1); completion one tick later
	clock.Advance(40 * time.Millisecond)
	if got := a.State(); got.Revealed != "héllo" || got.Complete {
		t.Fatalf("at last rune: got %+v", got)
	}
	clock.Advance(10 * time.Millisecond)
	if !a.Complete() {
		t.Fatalf("expected complete after delay + speed*len")
	}

	want := []string{"h", "hé", "hél", "héll", "héllo", "héllo"}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Fatalf("reveal sequence mismatch (-want +got):\n%s", diff)
	}
	if n := clock.Pending(); n != 0 {
		t.Fatalf("expected no pending timers after completion, got %d", n)
	}
	select {
	case <-a.Done():
	default:
		t.Fatalf("done channel not closed")
	}
}

func TestAnimatorEmptyTextCompletesAfterDelay(t *testing.T) {
	clock := &fakeClock{}
	a := New("", 10*time.Millisecond, 30*time.Millisecond, WithClock(clock))
	a.Start()

	clock.Advance(29 * time.Millisecond)
	if a.Complete() {
		t.Fatalf("completed before delay")
	}
	clock.Advance(1 * time.Millisecond)
	if got := a.State(); !got.Complete || got.Revealed != "" {
		t.Fatalf("unexpected state %+v", got)
	}
}

func TestAnimatorZeroSpeedRevealsInOneStep(t *testing.T) {
	clock := &fakeClock{}
	changes := 0
	a := New("portfolio", 0, 20*time.Millisecond, WithClock(clock), OnChange(func(State) { changes++ }))
	a.Start()

	clock.Advance(20 * time.Millisecond)
	if got := a.State(); !got.Complete || got.Revealed != "portfolio" {
		t.Fatalf("unexpected state %+v", got)
	}
	if changes != 1 {
		t.Fatalf("expected a single state change, got %d", changes)
	}
}

func TestAnimatorCancelStopsMutation(t *testing.T) {
	clock := &fakeClock{}
	a := New("abcdef", 10*time.Millisecond, 0, WithClock(clock))
	a.Start()
	clock.Advance(25 * time.Millisecond)

	before := a.State()
	if before.Revealed != "abc" {
		t.Fatalf("setup: got %q", before.Revealed)
	}
	pending := clock.last()

	a.Cancel()
	clock.Advance(time.Second)
	// a callback that raced past Stop must still be ignored
	pending.fn()

	if diff := cmp.Diff(before, a.State()); diff != "" {
		t.Fatalf("state changed after cancel (-before +after):\n%s", diff)
	}
	a.Start()
	clock.Advance(time.Second)
	if got := a.Revealed(); got != "abc" {
		t.Fatalf("disposed animator restarted: %q", got)
	}
}

func TestAnimatorSetParamsRestartsFromEmpty(t *testing.T) {
	clock := &fakeClock{}
	a := New("first", 10*time.Millisecond, 0, WithClock(clock))
	a.Start()
	clock.Advance(15 * time.Millisecond)
	if got := a.Revealed(); got != "fi" {
		t.Fatalf("setup: got %q", got)
	}

	a.SetParams(Params{Text: "second", Speed: 5 * time.Millisecond, Delay: 100 * time.Millisecond})
	if got := a.State(); got.Revealed != "" || got.Source != "second" {
		t.Fatalf("expected restart from empty, got %+v", got)
	}

	clock.Advance(99 * time.Millisecond)
	if got := a.Revealed(); got != "" {
		t.Fatalf("old schedule leaked: %q", got)
	}
	clock.Advance(1 * time.Millisecond)
	if got := a.Revealed(); got != "s" {
		t.Fatalf("new schedule: got %q", got)
	}
	clock.Advance(time.Second)
	if got := a.State(); !got.Complete || got.Revealed != "second" {
		t.Fatalf("unexpected final state %+v", got)
	}
}

func TestAnimatorSetParamsSameValuesIsNoop(t *testing.T) {
	clock := &fakeClock{}
	a := New("steady", 10*time.Millisecond, 0, WithClock(clock))
	a.Start()
	clock.Advance(15 * time.Millisecond)

	a.SetParams(a.Params())
	if got := a.Revealed(); got != "st" {
		t.Fatalf("identical params restarted the reveal: %q", got)
	}
}

func TestAnimatorEventuallyCompletes(t *testing.T) {
	texts := []string{"", "a", "Frontend Developer & Creative Problem Solver", strings.Repeat("ж", 40)}
	for _, text := range texts {
		clock := &fakeClock{}
		a := New(text, 3*time.Millisecond, 7*time.Millisecond, WithClock(clock))
		a.Start()

		n := len([]rune(text))
		total := 7*time.Millisecond + time.Duration(n)*3*time.Millisecond
		clock.Advance(total - time.Millisecond)
		if a.Complete() {
			t.Fatalf("%q completed early", text)
		}
		clock.Advance(time.Millisecond)
		if got := a.State(); !got.Complete || got.Revealed != text {
			t.Fatalf("%q: unexpected state %+v", text, got)
		}
	}
}

func TestSequenceStartsNextOnlyAfterCompletion(t *testing.T) {
	clock := &fakeClock{}
	title := New("ab", 10*time.Millisecond, 5*time.Millisecond, WithClock(clock))
	subtitle := New("xyz", 10*time.Millisecond, 100*time.Millisecond, WithClock(clock))
	seq := NewSequence(title, subtitle)
	seq.Start()

	// title: "a" at 5, "ab" at 15, complete at 25
	clock.Advance(24 * time.Millisecond)
	if title.Complete() {
		t.Fatalf("title completed early")
	}
	clock.Advance(1 * time.Millisecond)
	if !title.Complete() {
		t.Fatalf("title should be complete")
	}

	clock.Advance(99 * time.Millisecond)
	if got := subtitle.Revealed(); got != "" {
		t.Fatalf("subtitle started before its delay: %q", got)
	}
	clock.Advance(1 * time.Millisecond)
	if got := subtitle.Revealed(); got != "x" {
		t.Fatalf("subtitle: got %q", got)
	}

	clock.Advance(time.Second)
	select {
	case <-seq.Done():
	default:
		t.Fatalf("sequence not done")
	}
}

func TestSequenceCancelHaltsPendingSteps(t *testing.T) {
	clock := &fakeClock{}
	title := New("ab", 10*time.Millisecond, 0, WithClock(clock))
	subtitle := New("xyz", 10*time.Millisecond, 0, WithClock(clock))
	seq := NewSequence(title, subtitle)
	seq.Start()
	clock.Advance(5 * time.Millisecond)

	seq.Cancel()
	clock.Advance(time.Second)

	if got := title.Revealed(); got != "a" {
		t.Fatalf("title mutated after cancel: %q", got)
	}
	if got := subtitle.Revealed(); got != "" {
		t.Fatalf("subtitle started after cancel: %q", got)
	}
}

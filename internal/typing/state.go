// Package typing reveals a string rune by rune on a timer.
package typing

import "unicode/utf8"

// State is the observable progress of one reveal.
type State struct {
	Source   string
	Revealed string
	Complete bool
}

// EventKind identifies a transition of State.
type EventKind int

const (
	// EventRestart discards progress and starts over with Event.Text.
	EventRestart EventKind = iota
	// EventTick reveals the next rune, or marks the reveal complete when
	// nothing is left.
	EventTick
	// EventFlush reveals everything and completes in one step.
	EventFlush
)

// Event is an input to Reduce.
type Event struct {
	Kind EventKind
	Text string
}

// Reduce applies ev to s. It never mutates s and never shrinks Revealed
// except on EventRestart.
func Reduce(s State, ev Event) State {
	switch ev.Kind {
	case EventRestart:
		return State{Source: ev.Text}
	case EventTick:
		if s.Complete {
			return s
		}
		if len(s.Revealed) >= len(s.Source) {
			s.Complete = true
			return s
		}
		_, size := utf8.DecodeRuneInString(s.Source[len(s.Revealed):])
		s.Revealed = s.Source[:len(s.Revealed)+size]
		return s
	case EventFlush:
		s.Revealed = s.Source
		s.Complete = true
		return s
	}
	return s
}

// Remaining reports how many runes are still hidden.
func (s State) Remaining() int {
	return utf8.RuneCountInString(s.Source) - utf8.RuneCountInString(s.Revealed)
}

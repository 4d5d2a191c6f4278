package contact

// FormState is everything the contact section renders from.
type FormState struct {
	Values Values
	Errors Errors
	Status Status
}

// EventKind identifies a form transition.
type EventKind int

const (
	EventFieldChanged EventKind = iota
	EventValidated
	EventSubmitStarted
	EventSubmitSucceeded
	EventSubmitFailed
	EventReset
)

// Event is an input to Reduce.
type Event struct {
	Kind   EventKind
	Field  Field
	Value  string
	Errors Errors
}

// Reduce applies ev to s and returns the next state. Events that are not
// legal in the current status leave s unchanged. s is never mutated.
func Reduce(s FormState, ev Event) FormState {
	s.Errors = s.Errors.clone()

	switch ev.Kind {
	case EventFieldChanged:
		if s.Status != StatusIdle || !ev.Field.Valid() {
			return s
		}
		s.Values = s.Values.With(ev.Field, ev.Value)
		if _, ok := s.Errors[ev.Field]; ok {
			delete(s.Errors, ev.Field)
			if len(s.Errors) == 0 {
				s.Errors = nil
			}
		}
	case EventValidated:
		if s.Status != StatusIdle {
			return s
		}
		s.Errors = ev.Errors.clone()
	case EventSubmitStarted:
		if s.Status != StatusIdle || len(s.Errors) > 0 {
			return s
		}
		s.Status = StatusSubmitting
	case EventSubmitSucceeded:
		if s.Status != StatusSubmitting {
			return s
		}
		s.Status = StatusSubmitted
		s.Values = Values{}
		s.Errors = nil
	case EventSubmitFailed:
		if s.Status != StatusSubmitting {
			return s
		}
		s.Status = StatusIdle
	case EventReset:
		if s.Status != StatusSubmitted {
			return s
		}
		s = FormState{Status: StatusIdle}
	}
	return s
}

// Package contact holds the contact form state machine.
package contact

import (
	"regexp"
	"strings"
)

// Field names a form input.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldMessage Field = "message"
)

// Fields lists the inputs in display order.
var Fields = []Field{FieldName, FieldEmail, FieldMessage}

// Valid reports whether f is a known field.
func (f Field) Valid() bool {
	switch f {
	case FieldName, FieldEmail, FieldMessage:
		return true
	}
	return false
}

// Values are the user-entered form fields.
type Values struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Get returns the value of f.
func (v Values) Get(f Field) string {
	switch f {
	case FieldName:
		return v.Name
	case FieldEmail:
		return v.Email
	case FieldMessage:
		return v.Message
	}
	return ""
}

// With returns a copy of v with f set to value.
func (v Values) With(f Field, value string) Values {
	switch f {
	case FieldName:
		v.Name = value
	case FieldEmail:
		v.Email = value
	case FieldMessage:
		v.Message = value
	}
	return v
}

// Errors maps a field to its validation message.
type Errors map[Field]string

func (e Errors) clone() Errors {
	if len(e) == 0 {
		return nil
	}
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Status is the submission lifecycle.
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSubmitted
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	case StatusSubmitted:
		return "submitted"
	}
	return "unknown"
}

// Validation messages.
const (
	MsgNameRequired    = "Name is required"
	MsgEmailRequired   = "Email is required"
	MsgEmailInvalid    = "Please enter a valid email address"
	MsgMessageRequired = "Message is required"
)

// emailPattern is deliberately loose: it accepts things like consecutive
// dots in the domain.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like local@domain.tld.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Validate checks v and returns one message per failing field, or nil.
func Validate(v Values) Errors {
	errs := Errors{}
	if strings.TrimSpace(v.Name) == "" {
		errs[FieldName] = MsgNameRequired
	}
	if strings.TrimSpace(v.Email) == "" {
		errs[FieldEmail] = MsgEmailRequired
	} else if !ValidEmail(v.Email) {
		errs[FieldEmail] = MsgEmailInvalid
	}
	if strings.TrimSpace(v.Message) == "" {
		errs[FieldMessage] = MsgMessageRequired
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

package grammar

import (
	"errors"
	"fmt"
)

// ErrDefinition is the cause of every DefinitionError; use errors.Is to check
// for it.
var ErrDefinition = errors.New("invalid grammar definition")

// DefinitionError is returned when a grammar violates one of its construction
// invariants. It indicates a programming mistake in the rule table, not bad
// input text.
type DefinitionError struct {
	// State is the state containing the offending rule. It is empty for
	// problems not tied to a single state.
	State string

	// Rule is the index of the offending rule within State, or -1.
	Rule int

	msg  string
	wrap error
}

func (e *DefinitionError) Error() string {
	loc := ""
	if e.State != "" {
		loc = fmt.Sprintf("state %q", e.State)
		if e.Rule >= 0 {
			loc += fmt.Sprintf(" rule %d", e.Rule)
		}
		loc += ": "
	}

	if e.wrap != nil {
		return loc + e.msg + ": " + e.wrap.Error()
	}
	return loc + e.msg
}

// Unwrap gives the underlying error, if any.
func (e *DefinitionError) Unwrap() error {
	return e.wrap
}

// Is returns whether target is ErrDefinition.
func (e *DefinitionError) Is(target error) bool {
	return target == ErrDefinition
}

func defErrorf(state string, rule int, format string, a ...interface{}) *DefinitionError {
	return &DefinitionError{
		State: state,
		Rule:  rule,
		msg:   fmt.Sprintf(format, a...),
	}
}

func wrapDefError(err error, state string, rule int, msg string) *DefinitionError {
	return &DefinitionError{
		State: state,
		Rule:  rule,
		msg:   msg,
		wrap:  err,
	}
}

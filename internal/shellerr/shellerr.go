// Package shellerr holds errors for input an interactive session could not
// carry out. They are shown to the user and the session goes on.
package shellerr

import (
	"errors"
	"fmt"
)

// commandError is an error caused by a command the user typed. Either the
// command could not be understood or its arguments are not valid.
//
// It includes a human-readable message to show to the user as well as a more
// technical "error message" style message.
type commandError struct {
	msg   string
	human string
}

func (e *commandError) Error() string {
	return e.msg
}

// UserMessage gives the message that should be shown to the user.
func (e *commandError) UserMessage() string {
	return e.human
}

// Command returns a new error that has both the message to show the user and
// the technical description of the error.
func Command(user, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("command rejected: %s", user)
	}
	return &commandError{
		msg:   technical,
		human: user,
	}
}

// Commandf returns a new error whose message to show the user is built from
// a format string and its arguments.
func Commandf(userFormat string, a ...interface{}) error {
	return Command(fmt.Sprintf(userFormat, a...), "")
}

// IsCommand returns whether err is or wraps an error made by this package.
func IsCommand(err error) bool {
	var cmdErr *commandError
	return errors.As(err, &cmdErr)
}

// UserMessage gets the message to display to the user for the given error.
// If it is or wraps one of the errors made by this package, its message for
// the user is returned. Otherwise, err.Error() is returned.
func UserMessage(err error) string {
	var cmdErr *commandError
	if errors.As(err, &cmdErr) {
		return cmdErr.UserMessage()
	}
	return err.Error()
}

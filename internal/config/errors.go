package config

import "fmt"

// Error is returned when configuration cannot be loaded or is invalid.
type Error struct {
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := "config error: "
	if e.Field != "" {
		msg += fmt.Sprintf("'%s' ", e.Field)
	}
	msg += e.Message
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

package pdf

import "fmt"

// Error is returned when the browser cannot produce a PDF.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pdf export failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("pdf export failed: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Package view renders a parsed résumé as HTML and owns the transient
// expand/collapse state of its detail sections.
package view

import "fmt"

// RenderError represents a failure to render a résumé.
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("render error: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

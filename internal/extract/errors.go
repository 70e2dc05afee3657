// Package extract turns résumé XML into the typed view model.
package extract

import "fmt"

// MalformedDocumentError reports input that is not well-formed XML.
// No partial document is ever returned alongside it.
type MalformedDocumentError struct {
	Message string
	Line    int // 1-based line reported by the decoder, 0 if unknown
	Cause   error
}

func (e *MalformedDocumentError) Error() string {
	msg := e.Message
	if e.Line > 0 {
		msg = fmt.Sprintf("%s (line %d)", msg, e.Line)
	}
	if e.Cause != nil {
		return fmt.Sprintf("malformed document: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("malformed document: %s", msg)
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Cause
}

// Package server serves a résumé document as an interactive HTML page and JSON.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jonathan/resume-viewer/internal/extract"
	"github.com/jonathan/resume-viewer/internal/fetch"
	"github.com/jonathan/resume-viewer/internal/pdf"
)

// ErrNoSource indicates the server was started without a document location
var ErrNoSource = errors.New("no document source configured")

// ErrNotReady indicates no load has completed yet
var ErrNotReady = errors.New("document is still loading")

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		malformed *extract.MalformedDocumentError
		fetchErr  *fetch.Error
		pdfErr    *pdf.Error
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotReady), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &malformed):
		return http.StatusUnprocessableEntity
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.As(err, &pdfErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Package fetch retrieves raw résumé documents from a local path or an
// http(s) URL.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// DefaultTimeout is the default request timeout for remote documents.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ResumeViewer/1.0)"

// DefaultMaxBytes caps the size of a loaded document.
const DefaultMaxBytes = 4 << 20

// Result holds the raw document text and where it came from.
type Result struct {
	Location    string
	Content     string
	ContentType string
	StatusCode  int // 0 for local files
	Remote      bool
}

// Error represents a failure to retrieve a document.
type Error struct {
	Location string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.Location, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.Location, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	MaxBytes  int64
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		MaxBytes:  DefaultMaxBytes,
	}
}

// Loader retrieves a document by location.
type Loader interface {
	Load(ctx context.Context, location string) (*Result, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, location string) (*Result, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, location string) (*Result, error) {
	return f(ctx, location)
}

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load retrieves the document at location, dispatching on its form.
func Load(ctx context.Context, location string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if strings.TrimSpace(location) == "" {
		return nil, &Error{Location: location, Message: "empty location"}
	}
	if IsRemote(location) {
		return URL(ctx, location, opts)
	}
	return File(ctx, location, opts)
}

// File reads a local document.
func File(ctx context.Context, path string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := ctx.Err(); err != nil {
		return nil, &Error{Location: path, Message: "canceled", Cause: err}
	}

	f, err := os.Open(path)
	if err != nil {
		msg := "failed to open file"
		if errors.Is(err, os.ErrNotExist) {
			msg = "file not found"
		}
		return nil, &Error{Location: path, Message: msg, Cause: err}
	}
	defer func() { _ = f.Close() }()

	content, err := readLimited(f, opts.MaxBytes)
	if err != nil {
		return nil, &Error{Location: path, Message: "failed to read file", Cause: err}
	}

	return &Result{
		Location:    path,
		Content:     content,
		ContentType: "application/xml",
	}, nil
}

// URL retrieves a remote document.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	// Validate URL
	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			Location: urlStr,
			Message:  "invalid URL",
			Cause:    err,
		}
	}

	client := &http.Client{
		Timeout: opts.Timeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{
			Location: urlStr,
			Message:  "failed to create request",
			Cause:    err,
		}
	}

	req.Header.Set("User-Agent", opts.UserAgent)
	req.Header.Set("Accept", "application/xml, text/xml;q=0.9, */*;q=0.1")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{
			Location: urlStr,
			Message:  "HTTP request failed",
			Cause:    err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	content, err := readLimited(resp.Body, opts.MaxBytes)
	if err != nil {
		return nil, &Error{
			Location: urlStr,
			Message:  "failed to read response body",
			Cause:    err,
		}
	}

	result := &Result{
		Location:    urlStr,
		Content:     content,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
		Remote:      true,
	}

	// Check for non-success status
	if resp.StatusCode != http.StatusOK {
		return result, &Error{
			Location: urlStr,
			Message:  fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	return result, nil
}

// readLimited reads r fully, failing when it exceeds maxBytes (0 = no limit).
func readLimited(r io.Reader, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		data, err := io.ReadAll(r)
		return string(data), err
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("document exceeds %d bytes", maxBytes)
	}
	return string(data), nil
}

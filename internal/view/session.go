package view

import (
	"context"
	"sync"
	"time"

	"github.com/jonathan/resume-viewer/internal/extract"
	"github.com/jonathan/resume-viewer/internal/fetch"
	"github.com/jonathan/resume-viewer/internal/types"
)

// Status is the lifecycle phase of a Session.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusFailed
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent copy of a Session's state.
type Snapshot struct {
	Status     Status
	Document   *types.ResumeDocument
	Err        error
	Location   string
	Generation uint64
	LoadedAt   time.Time
}

// Session runs the fetch-then-parse flow for one view. A result is committed
// only while it is still relevant: the session is open, the caller's context
// is live, and no newer Load has started. Anything else is discarded.
type Session struct {
	mu         sync.Mutex
	opts       extract.Options
	generation uint64
	closed     bool
	state      Snapshot
	now        func() time.Time
}

// NewSession creates a session in the loading state.
func NewSession(opts extract.Options) *Session {
	return &Session{
		opts:  opts,
		state: Snapshot{Status: StatusLoading},
		now:   time.Now,
	}
}

// Load fetches location and extracts it. It reports whether the outcome was
// committed; err is the load or parse failure regardless of that.
func (s *Session) Load(ctx context.Context, loader fetch.Loader, location string) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, nil
	}
	s.generation++
	gen := s.generation
	if s.state.Document == nil {
		s.state.Status = StatusLoading
	}
	s.mu.Unlock()

	var doc *types.ResumeDocument
	result, err := loader.Load(ctx, location)
	if err == nil {
		doc, err = extract.ExtractWithOptions(result.Content, s.opts)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.generation || ctx.Err() != nil {
		return false, err
	}

	s.state = Snapshot{
		Location:   location,
		Generation: gen,
		LoadedAt:   s.now(),
	}
	if err != nil {
		s.state.Status = StatusFailed
		s.state.Err = err
		return true, err
	}
	s.state.Status = StatusReady
	s.state.Document = doc
	return true, nil
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close tears the session down. Loads still in flight are discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.state = Snapshot{Status: StatusClosed, Generation: s.generation}
}

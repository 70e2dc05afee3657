package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jonathan/resume-viewer/internal/extract"
	"github.com/jonathan/resume-viewer/internal/fetch"
	"github.com/jonathan/resume-viewer/internal/pdf"
	"github.com/jonathan/resume-viewer/internal/server/middleware"
	"github.com/jonathan/resume-viewer/internal/server/ratelimit"
	"github.com/jonathan/resume-viewer/internal/view"
	"github.com/jonathan/resume-viewer/internal/watch"
)

// keepAliveInterval spaces comment lines on idle event streams.
const keepAliveInterval = 30 * time.Second

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	source     string
	watch      bool

	loader    *fetch.CachedLoader
	cacheTTL  time.Duration
	session   *view.Session
	renderer  *view.Renderer
	events    *broker
	limiter   *ratelimit.Limiter
	expand    []view.ToggleID
	expandAll bool

	pdfOptions pdf.Options
	renderPDF  func(ctx context.Context, html string, opts *pdf.Options) ([]byte, error)

	mu      sync.Mutex
	watcher *watch.FileWatcher

	// closed on shutdown so open event streams end instead of holding it up
	streamsDone chan struct{}
	streamsOnce sync.Once
}

// Config holds server configuration
type Config struct {
	Port          int
	Source        string
	Watch         bool
	Extract       extract.Options
	Loader        *fetch.CachedLoaderConfig
	DefaultExpand []view.ToggleID
	ExpandAll     bool
	RateLimit     *ratelimit.Config
	PDF           *pdf.Options
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Source == "" {
		return nil, ErrNoSource
	}
	if cfg.Watch && fetch.IsRemote(cfg.Source) {
		return nil, fmt.Errorf("cannot watch remote source %s", cfg.Source)
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	loaderCfg := cfg.Loader
	if loaderCfg == nil {
		loaderCfg = fetch.DefaultCachedLoaderConfig()
	}
	pdfOptions := pdf.DefaultOptions()
	if cfg.PDF != nil {
		pdfOptions = cfg.PDF
	}

	s := &Server{
		source:     cfg.Source,
		watch:      cfg.Watch,
		loader:     fetch.NewCachedLoader(loaderCfg),
		cacheTTL:   loaderCfg.CacheTTL,
		session:    view.NewSession(cfg.Extract),
		renderer:   renderer,
		events:     newBroker(),
		limiter:    ratelimit.NewLimiter(cfg.RateLimit),
		expand:     cfg.DefaultExpand,
		expandAll:  cfg.ExpandAll,
		pdfOptions: *pdfOptions,
		renderPDF:  pdf.RenderHTML,

		streamsDone: make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /resume.json", s.handleDocument)
	mux.HandleFunc("GET /resume.pdf", s.handlePDF)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("POST /reload", s.handleReload)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           middleware.RequestID(s.withLogging(s.withRateLimit(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.httpServer.RegisterOnShutdown(s.endStreams)

	return s, nil
}

// Handler returns the root handler with all middleware applied
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is done. The first load and the optional file
// watcher run in the background.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.Close()

	if err := s.startBackground(ctx); err != nil {
		_ = ln.Close()
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[serve] listening on %s, source %s", ln.Addr(), s.source)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("[serve] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Println("[serve] stopped")
	return nil
}

// endStreams tells every open /events handler to return
func (s *Server) endStreams() {
	s.streamsOnce.Do(func() { close(s.streamsDone) })
}

// Close releases the session, the rate limiter and the watcher
func (s *Server) Close() {
	s.endStreams()
	s.session.Close()
	s.limiter.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			log.Printf("[watch] stop failed: %v", err)
		}
		s.watcher = nil
	}
}

func (s *Server) startBackground(ctx context.Context) error {
	go func() {
		if _, err := s.refresh(ctx, false); err != nil {
			log.Printf("[loader] initial load of %s failed: %v", s.source, err)
		}
	}()

	if !s.watch {
		return nil
	}

	fw, err := watch.NewFileWatcher(s.source, watch.DefaultDebounce)
	if err != nil {
		return fmt.Errorf("failed to watch source: %w", err)
	}
	err = fw.Start(ctx, func(path string) {
		log.Printf("[watch] %s changed, reloading", path)
		if _, err := s.refresh(ctx, true); err != nil {
			log.Printf("[watch] reload failed: %v", err)
		}
	})
	if err != nil {
		_ = fw.Stop()
		return fmt.Errorf("failed to watch source: %w", err)
	}

	s.mu.Lock()
	s.watcher = fw
	s.mu.Unlock()
	return nil
}

// refresh loads the source into the session. Committed outcomes are
// published to event streams.
func (s *Server) refresh(ctx context.Context, invalidate bool) (view.Snapshot, error) {
	if invalidate {
		s.loader.Invalidate(s.source)
	}
	committed, err := s.session.Load(ctx, s.loader, s.source)
	snap := s.session.Snapshot()
	if committed {
		s.events.publish(newDocumentEvent(snap))
	}
	return snap, err
}

// current returns the session state, reloading once it is older than the
// cache TTL or has never loaded.
func (s *Server) current(ctx context.Context) view.Snapshot {
	snap := s.session.Snapshot()
	fresh := snap.Status == view.StatusReady || snap.Status == view.StatusFailed
	if fresh && time.Since(snap.LoadedAt) < s.cacheTTL {
		return snap
	}
	latest, _ := s.refresh(ctx, false)
	return latest
}

// snapshotErr is the error a handler should report for snap, if any.
func snapshotErr(snap view.Snapshot) error {
	switch snap.Status {
	case view.StatusReady:
		return nil
	case view.StatusFailed:
		return snap.Err
	default:
		return ErrNotReady
	}
}

// toggleState builds the expansion state from ?expand=. "all" opens every
// section; otherwise the listed IDs are added to the configured defaults.
func (s *Server) toggleState(r *http.Request, snap view.Snapshot) *view.ToggleState {
	param := r.URL.Query().Get("expand")
	state := view.NewToggleState(s.expand...)
	if s.expandAll || param == "all" {
		state.ExpandAll(snap.Document)
		return state
	}
	state.Expand(view.ParseToggleList(param)...)
	return state
}

// handleIndex renders the résumé page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.current(r.Context())

	status := HTTPStatus(snapshotErr(snap))
	if snap.Status == view.StatusLoading {
		w.Header().Set("Retry-After", "1")
	}

	var buf bytes.Buffer
	if err := s.renderer.RenderSnapshot(&buf, snap, s.toggleState(r, snap)); err != nil {
		log.Printf("[serve] render failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[serve] write failed: %v", err)
	}
}

// handleDocument returns the extracted document as JSON
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	snap := s.current(r.Context())
	if err := snapshotErr(snap); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, snap.Document)
}

// handlePDF prints the fully expanded page
func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	snap := s.current(r.Context())
	if err := snapshotErr(snap); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	html, err := pdf.ExpandedHTML(s.renderer, snap.Document)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	opts := s.pdfOptions
	out, err := s.renderPDF(r.Context(), html, &opts)
	if err != nil {
		log.Printf("[serve] pdf export failed: %v", err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="resume.pdf"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out); err != nil {
		log.Printf("[serve] write failed: %v", err)
	}
}

// handleReload drops the cached source and loads it again
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	snap, err := s.refresh(r.Context(), true)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, newDocumentEvent(snap))
}

// handleEvents streams a "document" event for the current state and for
// every committed load after it
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	ch := s.events.subscribe()
	defer s.events.unsubscribe(ch)

	if err := sse.WriteEvent("document", newDocumentEvent(s.session.Snapshot())); err != nil {
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.streamsDone:
			return
		case ev := <-ch:
			if err := sse.WriteEvent("document", ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := sse.WriteComment("keep-alive"); err != nil {
				return
			}
		}
	}
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	snap := s.session.Snapshot()
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"document":   snap.Status.String(),
		"generation": snap.Generation,
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := middleware.GetRequestID(r)
		log.Printf("[%s] %s %s %s", r.Method, r.URL.Path, r.RemoteAddr, id)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s %s completed in %v", r.Method, r.URL.Path, id, time.Since(start))
	})
}

// withRateLimit throttles the endpoints that reach the source or the browser
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.limiter.Allow(clientID(r), r.Method, r.URL.Path)
		if !allowed {
			retry := int(info.RetryAfter.Seconds()) + 1
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retry))
			log.Printf("[rate-limit] %s %s denied for %s", r.Method, r.URL.Path, clientID(r))
			s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
				"error":       "rate_limit_exceeded",
				"limit":       info.Limit,
				"retry_after": retry,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientID is the remote IP without the port
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

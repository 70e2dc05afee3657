// Package pdf prints rendered résumé pages to PDF with headless Chrome.
package pdf

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/jonathan/resume-viewer/internal/types"
	"github.com/jonathan/resume-viewer/internal/view"
)

// DefaultTimeout bounds browser start-up plus printing.
const DefaultTimeout = 60 * time.Second

// A4 in inches.
const (
	A4Width  = 8.27
	A4Height = 11.69
)

// Options configures the headless browser and the page size.
type Options struct {
	ChromePath  string // Falls back to $CHROME_PATH, then chromedp's lookup
	Timeout     time.Duration
	PaperWidth  float64
	PaperHeight float64
	Verbose     bool
}

// DefaultOptions returns A4 output with the default timeout.
func DefaultOptions() *Options {
	return &Options{
		Timeout:     DefaultTimeout,
		PaperWidth:  A4Width,
		PaperHeight: A4Height,
	}
}

func (o *Options) chromePath() string {
	if o.ChromePath != "" {
		return o.ChromePath
	}
	return os.Getenv("CHROME_PATH")
}

// allocatorOptions builds the exec allocator flags.
func allocatorOptions(opts *Options) []chromedp.ExecAllocatorOption {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if p := opts.chromePath(); p != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(p))
	}
	return allocOpts
}

// RenderHTML prints a self-contained HTML page to PDF bytes.
func RenderHTML(ctx context.Context, html string, opts *Options) ([]byte, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PaperWidth <= 0 || opts.PaperHeight <= 0 {
		opts.PaperWidth, opts.PaperHeight = A4Width, A4Height
	}

	tmpDir, err := os.MkdirTemp("", "resume-pdf-")
	if err != nil {
		return nil, &Error{Message: "failed to create temp dir", Cause: err}
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return nil, &Error{Message: "failed to write page", Cause: err}
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocatorOptions(opts)...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, opts.Timeout)
	defer cancel()

	if opts.Verbose {
		log.Printf("[pdf] printing %d bytes of HTML", len(html))
	}

	var buf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(opts.PaperWidth).
				WithPaperHeight(opts.PaperHeight).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, &Error{Message: "browser rendering failed", Cause: err}
	}

	if opts.Verbose {
		log.Printf("[pdf] produced %d bytes", len(buf))
	}
	return buf, nil
}

// RenderDocument renders doc with every toggle expanded and prints it.
func RenderDocument(ctx context.Context, renderer *view.Renderer, doc *types.ResumeDocument, opts *Options) ([]byte, error) {
	html, err := ExpandedHTML(renderer, doc)
	if err != nil {
		return nil, err
	}
	return RenderHTML(ctx, html, opts)
}

// ExpandedHTML renders doc with all collapsible blocks open, which is what a
// printed copy needs.
func ExpandedHTML(renderer *view.Renderer, doc *types.ResumeDocument) (string, error) {
	state := view.NewToggleState()
	state.ExpandAll(doc)
	return renderer.RenderString(doc, state)
}

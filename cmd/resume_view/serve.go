package main

import (
	"fmt"
	"log"

	"github.com/jonathan/resume-viewer/internal/config"
	"github.com/jonathan/resume-viewer/internal/pdf"
	"github.com/jonathan/resume-viewer/internal/server"
	"github.com/jonathan/resume-viewer/internal/server/ratelimit"
	"github.com/jonathan/resume-viewer/internal/view"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the résumé as an interactive web page",
	Long: `Start an HTTP server that renders the résumé at /, exposes the extracted
document at /resume.json and a PDF at /resume.pdf, and streams reload events at /events.`,
	RunE: runServe,
}

var serveRateLimit int

func init() {
	addSourceFlags(serveCmd.Flags())
	addToggleFlags(serveCmd.Flags())
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().Bool("watch", false, "Reload when the local source file changes")
	serveCmd.Flags().String("chrome-path", "", "Chrome binary for /resume.pdf (default $CHROME_PATH or auto-detect)")
	serveCmd.Flags().IntVar(&serveRateLimit, "rate-limit", 10, "Requests per minute per client for /reload and /resume.pdf (0 disables)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	srv, err := server.New(serverConfig(cfg, serveRateLimit))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if cfg.Verbose {
		log.Printf("[serve] port=%d source=%s watch=%t more-mode=%s", cfg.Port, cfg.Source, cfg.Watch, cfg.MoreHistoryMode)
	}
	return srv.Start()
}

// serverConfig maps the CLI config onto server settings.
func serverConfig(cfg *config.Config, perMinute int) server.Config {
	var expand []view.ToggleID
	for _, item := range cfg.Expand {
		expand = append(expand, view.ParseToggleList(item)...)
	}

	rateLimit := ratelimit.DefaultConfig(perMinute)
	if perMinute <= 0 {
		rateLimit.Enabled = false
	}

	pdfOptions := pdf.DefaultOptions()
	pdfOptions.ChromePath = cfg.ChromePath
	pdfOptions.Verbose = cfg.Verbose

	return server.Config{
		Port:          cfg.Port,
		Source:        cfg.Source,
		Watch:         cfg.Watch,
		Extract:       extractOptions(cfg),
		Loader:        cfg.CachedLoaderConfig(),
		DefaultExpand: expand,
		ExpandAll:     cfg.ExpandAll,
		RateLimit:     rateLimit,
		PDF:           pdfOptions,
	}
}

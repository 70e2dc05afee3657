package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jonathan/resume-viewer/internal/config"
	"github.com/jonathan/resume-viewer/internal/extract"
	"github.com/jonathan/resume-viewer/internal/fetch"
	"github.com/jonathan/resume-viewer/internal/types"
	"github.com/jonathan/resume-viewer/internal/view"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// errNoSource is returned when no flag, config file or env var names a document.
var errNoSource = errors.New("a source is required (--in, config 'source' or RESUME_SOURCE)")

// addSourceFlags registers the flags every document-reading command shares.
func addSourceFlags(flags *pflag.FlagSet) {
	flags.StringP("in", "i", "", "Path or http(s) URL of the résumé XML")
	flags.String("more-mode", "", "How to read work-history-more companies: full or header-only")
	flags.Duration("timeout", 0, "Timeout for remote sources")
}

// addToggleFlags registers the expand/collapse flags of rendering commands.
func addToggleFlags(flags *pflag.FlagSet) {
	flags.StringSlice("expand", nil, "Toggle IDs to expand, e.g. more-history,skill:lang")
	flags.Bool("expand-all", false, "Expand every collapsible section")
}

// resolveConfig loads the config file and environment, then applies every
// flag the user set explicitly. Flags always win.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("in") {
		cfg.Source, _ = flags.GetString("in")
	}
	if flags.Changed("more-mode") {
		cfg.MoreHistoryMode, _ = flags.GetString("more-mode")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("expand") {
		cfg.Expand, _ = flags.GetStringSlice("expand")
	}
	if flags.Changed("expand-all") {
		cfg.ExpandAll, _ = flags.GetBool("expand-all")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("watch") {
		cfg.Watch, _ = flags.GetBool("watch")
	}
	if flags.Changed("chrome-path") {
		cfg.ChromePath, _ = flags.GetString("chrome-path")
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}

	merged := cfg.MergeWithDefaults(config.Default())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	if merged.Source == "" {
		return nil, errNoSource
	}
	return &merged, nil
}

// extractOptions maps the config onto extraction options.
func extractOptions(cfg *config.Config) extract.Options {
	opts := extract.DefaultOptions()
	opts.MoreHistoryMode = extract.ParseCompanyMode(cfg.MoreHistoryMode)
	return opts
}

// loadDocument fetches and extracts the configured source.
func loadDocument(ctx context.Context, cfg *config.Config) (*types.ResumeDocument, error) {
	start := time.Now()
	result, err := fetch.Load(ctx, cfg.Source, cfg.FetchOptions())
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		log.Printf("[loader] read %d bytes from %s in %v", len(result.Content), cfg.Source, time.Since(start))
	}

	doc, err := extract.ExtractWithOptions(result.Content, extractOptions(cfg))
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// toggleState builds the initial expansion state from the config.
func toggleState(cfg *config.Config, doc *types.ResumeDocument) *view.ToggleState {
	state := view.NewToggleState()
	if cfg.ExpandAll {
		state.ExpandAll(doc)
		return state
	}
	for _, item := range cfg.Expand {
		state.Expand(view.ParseToggleList(item)...)
	}
	return state
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

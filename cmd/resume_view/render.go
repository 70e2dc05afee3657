package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jonathan/resume-viewer/internal/config"
	"github.com/jonathan/resume-viewer/internal/types"
	"github.com/jonathan/resume-viewer/internal/view"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a résumé XML document as a standalone HTML page",
	Long:  "Renders the résumé as one HTML file with collapsible sections. Use --expand or --expand-all to choose which sections start open.",
	RunE:  runRender,
}

var renderOutput string

func init() {
	addSourceFlags(renderCmd.Flags())
	addToggleFlags(renderCmd.Flags())
	renderCmd.Flags().StringVarP(&renderOutput, "out", "o", "", "Path to output HTML file (default stdout)")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	doc, loadErr := loadDocument(cmd.Context(), cfg)
	html, err := renderPage(renderer, cfg, doc, loadErr)
	if err != nil {
		return err
	}
	if err := writeOutput(renderOutput, html); err != nil {
		return err
	}
	if loadErr != nil {
		return fmt.Errorf("failed to load document: %w", loadErr)
	}
	if renderOutput != "" {
		_, _ = fmt.Fprintf(os.Stdout, "Rendered %s to %s\n", cfg.Source, renderOutput)
	}
	return nil
}

// renderPage renders doc, or the error page when loading failed.
func renderPage(renderer *view.Renderer, cfg *config.Config, doc *types.ResumeDocument, loadErr error) ([]byte, error) {
	var buf bytes.Buffer
	if loadErr != nil {
		if err := renderer.RenderError(&buf, loadErr); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	if err := renderer.Render(&buf, doc, toggleState(cfg, doc)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package main

import (
	"fmt"
	"os"

	"github.com/jonathan/resume-viewer/internal/pdf"
	"github.com/jonathan/resume-viewer/internal/view"
	"github.com/spf13/cobra"
)

var pdfCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Export a résumé XML document to PDF",
	Long:  "Renders the résumé with every section expanded and prints it to PDF with headless Chrome. Requires Chrome or Chromium.",
	RunE:  runPDF,
}

var pdfOutput string

func init() {
	addSourceFlags(pdfCmd.Flags())
	pdfCmd.Flags().StringVarP(&pdfOutput, "out", "o", "", "Path to output PDF file (required)")
	pdfCmd.Flags().String("chrome-path", "", "Chrome binary (default $CHROME_PATH or auto-detect)")

	if err := pdfCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(pdfCmd)
}

func runPDF(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	doc, err := loadDocument(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	opts := pdf.DefaultOptions()
	opts.ChromePath = cfg.ChromePath
	opts.Verbose = cfg.Verbose

	out, err := pdf.RenderDocument(cmd.Context(), renderer, doc, opts)
	if err != nil {
		return err
	}

	if err := writeOutput(pdfOutput, out); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stdout, "Wrote %d bytes to %s\n", len(out), pdfOutput)
	return nil
}

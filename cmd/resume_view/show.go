package main

import (
	"fmt"
	"os"

	"github.com/jonathan/resume-viewer/internal/observability"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a résumé summary to the terminal",
	RunE:  runShow,
}

var showAll bool

func init() {
	addSourceFlags(showCmd.Flags())
	showCmd.Flags().BoolVar(&showAll, "all", false, "Show every list item instead of the first few")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	doc, err := loadDocument(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	printer := observability.NewPrinter(os.Stdout)
	if showAll {
		printer.WithAllItems()
	}
	printer.PrintResume(doc)
	return nil
}

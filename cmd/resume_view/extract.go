package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/resume-viewer/internal/schemas"
	"github.com/jonathan/resume-viewer/internal/types"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a résumé XML document into JSON",
	Long:  "Parses a résumé XML document and writes the extracted view model as JSON, optionally checking it against the document schema.",
	RunE:  runExtract,
}

var (
	extractOutput string
	extractCheck  bool
)

func init() {
	addSourceFlags(extractCmd.Flags())
	extractCmd.Flags().StringVarP(&extractOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	extractCmd.Flags().BoolVar(&extractCheck, "check", false, "Validate the output against the document schema")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	doc, err := loadDocument(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to extract document: %w", err)
	}

	data, err := marshalDocument(doc, extractCheck)
	if err != nil {
		return err
	}

	if err := writeOutput(extractOutput, data); err != nil {
		return err
	}
	if extractOutput != "" {
		_, _ = fmt.Fprintf(os.Stdout, "Extracted %d skills, %d companies to %s\n",
			len(doc.Skills), len(doc.Work.Main)+len(doc.Work.More), extractOutput)
	}
	return nil
}

// marshalDocument encodes doc as indented JSON, validating it first when
// check is set.
func marshalDocument(doc *types.ResumeDocument, check bool) ([]byte, error) {
	if check {
		if err := schemas.ValidateDocument(doc); err != nil {
			return nil, fmt.Errorf("document failed schema check: %w", err)
		}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return append(data, '\n'), nil
}

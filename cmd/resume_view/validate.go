package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/resume-viewer/internal/schemas"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an extracted JSON document against a schema",
	Long:  "Checks a JSON file written by 'extract' against the built-in document schema, or against the schema given with --schema.",
	RunE:  runValidate,
}

var (
	validateInput  string
	validateSchema string
)

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "in", "i", "", "Path to JSON document (required)")
	validateCmd.Flags().StringVarP(&validateSchema, "schema", "s", "", "Path to JSON Schema file (default built-in)")

	if err := validateCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, _ []string) error {
	if err := validateFile(validateInput, validateSchema); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Errorf("%s is invalid: %w", validateInput, err)
		}
		return fmt.Errorf("failed to validate %s: %w", validateInput, err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "%s is valid\n", validateInput)
	return nil
}

// validateFile checks jsonPath against schemaPath, or against the built-in
// schema when schemaPath is empty.
func validateFile(jsonPath, schemaPath string) error {
	if schemaPath == "" {
		return schemas.ValidateFileAgainstDocumentSchema(jsonPath)
	}
	return schemas.ValidateJSON(schemaPath, jsonPath)
}

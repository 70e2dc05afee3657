package schemas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/resume-viewer/internal/extract"
	"github.com/jonathan/resume-viewer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXML = `<resume name="Jane" email="jane" domain="example.org">
  <contact-list><contact type="web" value="https://jane.dev"/></contact-list>
  <skill-list>
    <skill><type>Languages</type><value>Go</value><skill-details><value>Since 2014</value></skill-details></skill>
  </skill-list>
  <work-history>
    <company name="Acme" url="acme.io">
      <assignment name="Mesh"><assignment-details><detail>one</detail></assignment-details></assignment>
    </company>
  </work-history>
  <work-history-more><company name="Globex"/></work-history-more>
  <education><degree school="State U" award="MSc" year="2014"/></education>
</resume>`

func TestDocumentSchema_IsValidJSON(t *testing.T) {
	var v map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(DocumentSchema()), &v))
	assert.Equal(t, "ResumeDocument", v["title"])
}

func TestValidateDocument_ExtractedDocument(t *testing.T) {
	doc, err := extract.Extract(sampleXML)
	require.NoError(t, err)

	assert.NoError(t, ValidateDocument(doc))
}

func TestValidateDocument_EmptyDocument(t *testing.T) {
	doc, err := extract.Extract("<resume/>")
	require.NoError(t, err)

	assert.NoError(t, ValidateDocument(doc))
}

func TestValidateDocument_NilSlicesRejected(t *testing.T) {
	err := ValidateDocument(&types.ResumeDocument{Name: "Jane"})
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NotEmpty(t, validationErr.Errors)
}

func TestValidateDocument_Nil(t *testing.T) {
	err := ValidateDocument(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document is nil")
}

func TestValidateDocument_EmptyIDRejected(t *testing.T) {
	doc, err := extract.Extract(sampleXML)
	require.NoError(t, err)
	doc.Skills[0].ID = ""

	err = ValidateDocument(doc)
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Error(), "skills.0.id")
}

func TestValidateFileAgainstDocumentSchema(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		wantError bool
	}{
		{name: "valid", file: "document_schema_valid.json"},
		{name: "missing work", file: "document_schema_missing_work.json", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileAgainstDocumentSchema(filepath.Join("testdata", tt.file))
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateFileAgainstDocumentSchema_MissingFile(t *testing.T) {
	err := ValidateFileAgainstDocumentSchema(filepath.Join("testdata", "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read JSON file")
}

func TestValidateJSON_ValidJSON(t *testing.T) {
	err := ValidateJSON(filepath.Join("testdata", "simple_schema.json"), filepath.Join("testdata", "document_schema_valid.json"))
	assert.NoError(t, err)
}

func TestValidateJSON_MissingField(t *testing.T) {
	tmpDir := t.TempDir()
	jsonPath := filepath.Join(tmpDir, "doc.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"title": "x"}`), 0644))

	err := ValidateJSON(filepath.Join("testdata", "simple_schema.json"), jsonPath)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidateJSON_NonExistentSchema(t *testing.T) {
	err := ValidateJSON("testdata/nonexistent_schema.json", filepath.Join("testdata", "document_schema_valid.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSON_NonExistentJSON(t *testing.T) {
	err := ValidateJSON(filepath.Join("testdata", "simple_schema.json"), "testdata/nonexistent_json.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSONString_InvalidSchema(t *testing.T) {
	err := ValidateJSONString(`{ not json`, `{}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "(string schema)", loadErr.Path)
}

func TestValidationError_Format(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{{Field: "name", Message: "is required"}}}
	assert.Contains(t, err.Error(), "1. name: is required")
}

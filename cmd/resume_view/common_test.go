package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/resume-viewer/internal/config"
	"github.com/jonathan/resume-viewer/internal/extract"
	"github.com/jonathan/resume-viewer/internal/fetch"
	"github.com/jonathan/resume-viewer/internal/schemas"
	"github.com/jonathan/resume-viewer/internal/view"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXML = `<resume name="Jane Doe" title="Engineer">
  <skill-list>
    <skill id="lang"><type>Languages</type><value>Go</value><skill-details><value>Since 2014</value></skill-details></skill>
  </skill-list>
  <work-history>
    <company id="acme" name="Acme">
      <assignment id="mesh" name="Mesh"><assignment-details><detail>one</detail></assignment-details></assignment>
    </company>
  </work-history>
  <work-history-more>
    <company id="globex" name="Globex"><assignment id="intern" name="Intern"/></company>
  </work-history-more>
</resume>`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// newFlagCommand builds a throwaway command carrying the shared flags.
func newFlagCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addSourceFlags(cmd.Flags())
	addToggleFlags(cmd.Flags())
	cmd.Flags().Int("port", 8080, "")
	cmd.Flags().Bool("watch", false, "")
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestResolveConfig_FlagsOverride(t *testing.T) {
	source := writeTemp(t, "resume.xml", sampleXML)
	cmd := newFlagCommand(t, "--in", source, "--more-mode", "header-only", "--expand", "skill:lang,more-history", "--port", "9000", "--timeout", "3s")

	cfg, err := resolveConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, source, cfg.Source)
	assert.Equal(t, "header-only", cfg.MoreHistoryMode)
	assert.Equal(t, []string{"skill:lang", "more-history"}, cfg.Expand)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
}

func TestResolveConfig_EnvSource(t *testing.T) {
	t.Setenv("RESUME_SOURCE", "https://example.com/resume.xml")

	cfg, err := resolveConfig(newFlagCommand(t))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/resume.xml", cfg.Source)
	assert.Equal(t, "full", cfg.MoreHistoryMode)
}

func TestResolveConfig_MissingSource(t *testing.T) {
	t.Setenv("RESUME_SOURCE", "")

	_, err := resolveConfig(newFlagCommand(t))
	assert.ErrorIs(t, err, errNoSource)
}

func TestResolveConfig_InvalidMoreMode(t *testing.T) {
	cmd := newFlagCommand(t, "--in", "https://example.com/r.xml", "--more-mode", "partial")

	_, err := resolveConfig(cmd)
	require.Error(t, err)

	var cfgErr *config.Error
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoadDocument(t *testing.T) {
	cfg := &config.Config{Source: writeTemp(t, "resume.xml", sampleXML), MoreHistoryMode: "full"}

	doc, err := loadDocument(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", doc.Name)
	require.Len(t, doc.Work.More, 1)
	assert.Len(t, doc.Work.More[0].Assignments, 1)
}

func TestLoadDocument_HeaderOnly(t *testing.T) {
	cfg := &config.Config{Source: writeTemp(t, "resume.xml", sampleXML), MoreHistoryMode: "header-only"}

	doc, err := loadDocument(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, doc.Work.More, 1)
	assert.Empty(t, doc.Work.More[0].Assignments)
	assert.Len(t, doc.Work.Main[0].Assignments, 1)
}

func TestLoadDocument_Errors(t *testing.T) {
	_, err := loadDocument(context.Background(), &config.Config{Source: filepath.Join(t.TempDir(), "missing.xml")})
	var fetchErr *fetch.Error
	assert.ErrorAs(t, err, &fetchErr)

	_, err = loadDocument(context.Background(), &config.Config{Source: writeTemp(t, "bad.xml", "<resume>")})
	var malformed *extract.MalformedDocumentError
	assert.ErrorAs(t, err, &malformed)
}

func TestToggleState(t *testing.T) {
	doc, err := extract.Extract(sampleXML)
	require.NoError(t, err)

	state := toggleState(&config.Config{Expand: []string{"skill:lang", "more-history"}}, doc)
	assert.True(t, state.Expanded(view.SkillDetailsToggle("lang")))
	assert.True(t, state.Expanded(view.MoreHistoryToggle))
	assert.False(t, state.Expanded(view.AssignmentDetailsToggle("mesh")))

	all := toggleState(&config.Config{ExpandAll: true}, doc)
	for _, id := range view.AllToggles(doc) {
		assert.True(t, all.Expanded(id), "%s should be expanded", id)
	}
}

func TestMarshalDocument(t *testing.T) {
	doc, err := extract.Extract(sampleXML)
	require.NoError(t, err)

	data, err := marshalDocument(doc, true)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Jane Doe", decoded["name"])

	doc.Skills[0].ID = ""
	_, err = marshalDocument(doc, true)
	var validationErr *schemas.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, err = marshalDocument(doc, false)
	assert.NoError(t, err)
}

func TestRenderPage(t *testing.T) {
	renderer, err := view.NewRenderer()
	require.NoError(t, err)
	doc, err := extract.Extract(sampleXML)
	require.NoError(t, err)

	html, err := renderPage(renderer, &config.Config{Expand: []string{"more-history"}}, doc, nil)
	require.NoError(t, err)
	page, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", page.Find("h1").Text())
	assert.Equal(t, 1, page.Find("details[open]").Length())

	html, err = renderPage(renderer, &config.Config{}, nil, errors.New("boom"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "Error: boom")
}

func TestValidateFile(t *testing.T) {
	doc, err := extract.Extract(sampleXML)
	require.NoError(t, err)
	data, err := marshalDocument(doc, false)
	require.NoError(t, err)
	jsonPath := writeTemp(t, "doc.json", string(data))

	assert.NoError(t, validateFile(jsonPath, ""))

	schemaPath := writeTemp(t, "schema.json", `{"type": "object", "required": ["missing"]}`)
	err = validateFile(jsonPath, schemaPath)
	var validationErr *schemas.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestServerConfig(t *testing.T) {
	cfg := &config.Config{
		Source:          "https://example.com/r.xml",
		Port:            9000,
		MoreHistoryMode: "header-only",
		Expand:          []string{"skill:lang,more-history"},
		CacheTTL:        time.Hour,
		ChromePath:      "/opt/chrome",
	}

	sc := serverConfig(cfg, 5)
	assert.Equal(t, 9000, sc.Port)
	assert.Equal(t, extract.CompanyHeaderOnly, sc.Extract.MoreHistoryMode)
	assert.Equal(t, []view.ToggleID{"skill:lang", view.MoreHistoryToggle}, sc.DefaultExpand)
	assert.Equal(t, time.Hour, sc.Loader.CacheTTL)
	assert.True(t, sc.RateLimit.Enabled)
	assert.Equal(t, 5, sc.RateLimit.Rules[0].Limit)
	assert.Equal(t, "/opt/chrome", sc.PDF.ChromePath)

	assert.False(t, serverConfig(cfg, 0).RateLimit.Enabled)
}

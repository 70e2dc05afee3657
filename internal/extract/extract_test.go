package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/resume-viewer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "resume.xml"))
	require.NoError(t, err)
	return string(data)
}

func TestExtract_MinimalExample(t *testing.T) {
	raw := `<resume name="A" title="T"><contact-list><contact type="Phone" value="555"/></contact-list><profile><entry>Builder</entry></profile></resume>`

	doc, err := Extract(raw)
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, "A", doc.Name)
	assert.Equal(t, "T", doc.Title)
	require.Len(t, doc.Contacts, 1)
	assert.Equal(t, "Phone", doc.Contacts[0].Type)
	assert.Equal(t, "555", doc.Contacts[0].Value)
	assert.Nil(t, doc.Contacts[0].URL)
	assert.Equal(t, []string{"Builder"}, doc.Profile)
	assert.Empty(t, doc.Skills)
	assert.Empty(t, doc.Work.Main)
	assert.Empty(t, doc.Work.More)
	assert.Empty(t, doc.Education)
}

func TestExtract_EmptyRootUsesDefaults(t *testing.T) {
	doc, err := Extract(`<resume/>`)
	require.NoError(t, err)

	assert.Equal(t, "", doc.Name)
	assert.Equal(t, "", doc.Title)
	assert.Equal(t, "", doc.EmailUser)
	assert.Equal(t, "", doc.EmailDomain)
	assert.Equal(t, "", doc.LastUpdated)
	assert.NotNil(t, doc.Contacts)
	assert.NotNil(t, doc.Profile)
	assert.NotNil(t, doc.Skills)
	assert.NotNil(t, doc.Work.Main)
	assert.NotNil(t, doc.Work.More)
	assert.NotNil(t, doc.Education)
	assert.True(t, doc.Work.IsEmpty())
}

func TestExtract_RootAttributes(t *testing.T) {
	doc, err := Extract(loadFixture(t))
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", doc.Name)
	assert.Equal(t, "Platform Engineer", doc.Title)
	assert.Equal(t, "jane", doc.EmailUser)
	assert.Equal(t, "example.org", doc.EmailDomain)
	assert.Equal(t, "2026-09", doc.LastUpdated)
	assert.Equal(t, "jane@example.org", doc.Email())
}

func TestExtract_Contacts(t *testing.T) {
	doc, err := Extract(loadFixture(t))
	require.NoError(t, err)
	require.Len(t, doc.Contacts, 3)

	assert.Equal(t, "+1 555 0100", doc.Contacts[0].Value)
	assert.Nil(t, doc.Contacts[0].URL)

	require.NotNil(t, doc.Contacts[1].URL)
	assert.Equal(t, "https://jane.example.org", *doc.Contacts[1].URL)

	// value falls back to text content when the attribute is missing
	assert.Equal(t, "GitHub", doc.Contacts[2].Type)
	assert.Equal(t, "http://github.com/janedoe", doc.Contacts[2].Value)
	require.NotNil(t, doc.Contacts[2].URL)
	assert.Equal(t, "http://github.com/janedoe", *doc.Contacts[2].URL)
}

func TestExtract_ContactEmptyValueAttributeFallsBackToText(t *testing.T) {
	doc, err := Extract(`<resume><contact-list><contact type="Mail" value="">me@example.org</contact></contact-list></resume>`)
	require.NoError(t, err)
	require.Len(t, doc.Contacts, 1)
	assert.Equal(t, "me@example.org", doc.Contacts[0].Value)
	assert.Nil(t, doc.Contacts[0].URL)
}

func TestExtract_ContactsOnlyDirectChildren(t *testing.T) {
	raw := `<resume><contact-list><group><contact type="Nested" value="x"/></group><contact type="Direct" value="y"/></contact-list></resume>`
	doc, err := Extract(raw)
	require.NoError(t, err)
	require.Len(t, doc.Contacts, 1)
	assert.Equal(t, "Direct", doc.Contacts[0].Type)
}

func TestExtract_Profile(t *testing.T) {
	doc, err := Extract(loadFixture(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"Builds distributed systems.", "Mentors backend teams."}, doc.Profile)
}

func TestExtract_SkillFragments(t *testing.T) {
	doc, err := Extract(loadFixture(t))
	require.NoError(t, err)
	require.Len(t, doc.Skills, 3)

	lang := doc.Skills[0]
	assert.Equal(t, "lang", lang.ID)
	assert.Equal(t, "Languages", lang.Type)

	require.Len(t, lang.MainDetails, 1)
	assert.Equal(t, "Daily", lang.MainDetails[0].Description)
	assert.Equal(t, types.TrustedHTML("Go, <b>SQL</b>"), lang.MainDetails[0].Body)

	assert.Equal(t, []types.Fragment{
		{Description: "expert", Body: "Go"},
		{Description: "", Body: "Python"},
	}, lang.Values)

	assert.Equal(t, []types.Fragment{
		{Description: "years", Body: "Go since 2014"},
		{Description: "", Body: "Python &amp; tooling"},
	}, lang.NestedDetails)
	assert.True(t, lang.HasNestedDetails())
}

func TestExtract_SkillValuePartitionByParentage(t *testing.T) {
	raw := `<resume><skill-list><skill id="s">
		<value>top</value>
		<skill-details><value>nested</value><deeper><skill-details><value>deepest</value></skill-details></deeper></skill-details>
		<other><value>stray</value></other>
	</skill></skill-list></resume>`

	doc, err := Extract(raw)
	require.NoError(t, err)
	require.Len(t, doc.Skills, 1)

	skill := doc.Skills[0]
	require.Len(t, skill.Values, 1)
	assert.Equal(t, types.TrustedHTML("top"), skill.Values[0].Body)

	bodies := make([]string, 0, len(skill.NestedDetails))
	for _, f := range skill.NestedDetails {
		bodies = append(bodies, f.Body.String())
	}
	assert.Equal(t, []string{"nested", "deepest"}, bodies)

	for _, v := range skill.Values {
		assert.NotEqual(t, "nested", v.Body.String())
		assert.NotEqual(t, "stray", v.Body.String())
	}
}

func TestExtract_SkillIDFallbacks(t *testing.T) {
	doc, err := Extract(loadFixture(t))
	require.NoError(t, err)

	// derived from the type label
	assert.Equal(t, "Infrastructure", doc.Skills[1].ID)

	// generated when neither id nor type exists
	assert.True(t, strings.HasPrefix(doc.Skills[2].ID, "skill-"), doc.Skills[2].ID)
	assert.Equal(t, "", doc.Skills[2].Type)
	assert.Empty(t, doc.Skills[2].MainDetails)
	assert.Empty(t, doc.Skills[2].NestedDetails)
}

func TestExtract_WorkHistoryMain(t *testing.T) {
	doc, err := Extract(loadFixture(t))
	require.NoError(t, err)
	require.Len(t, doc.Work.Main, 2)

	acme := doc.Work.Main[0]
	assert.Equal(t, "acme", acme.ID)
	assert.Equal(t, "Acme", acme.Name)
	assert.Equal(t, types.TrustedHTML(`<a href="http://acme.example.com" target="_blank">Acme</a>, Platform`), acme.Header)
	assert.Equal(t, "Staff Engineer", acme.Position)
	assert.Equal(t, "2020-01", acme.StartDate)
	assert.Equal(t, "present", acme.EndDate)
	require.Len(t, acme.Assignments, 2)

	mesh := acme.Assignments[0]
	assert.Equal(t, "mesh", mesh.ID)
	assert.Equal(t, types.TrustedHTML(`<a href="https://mesh.example.com" target="_blank">Service Mesh</a>`), mesh.Header)
	assert.Equal(t, "Kubernetes, Envoy", mesh.Environment)
	assert.Equal(t, "Go, Terraform", mesh.Tools)
	assert.Equal(t, types.TrustedHTML(`Rolled out <a href="https://envoyproxy.io">Envoy</a> fleet-wide.`), mesh.Description)
	assert.Equal(t, []types.TrustedHTML{"Cut p99 latency by <b>40%</b>.", "Wrote the runbook."}, mesh.Details)

	billing := acme.Assignments[1]
	assert.True(t, strings.HasPrefix(billing.ID, "assignment-"))
	assert.Equal(t, types.TrustedHTML("Billing"), billing.Header)
	assert.Equal(t, "", billing.Environment)
	assert.Equal(t, "", billing.Tools)
	assert.Empty(t, billing.Details)

	initech := doc.Work.Main[1]
	assert.True(t, strings.HasPrefix(initech.ID, "company-"))
	assert.Equal(t, types.TrustedHTML("Initech"), initech.Header)
	assert.Empty(t, initech.Assignments)
}

func TestExtract_WorkHistoryMore(t *testing.T) {
	doc, err := Extract(loadFixture(t))
	require.NoError(t, err)
	require.Len(t, doc.Work.More, 1)

	globex := doc.Work.More[0]
	assert.Equal(t, "old", globex.ID)
	assert.Equal(t, types.TrustedHTML(`<a href="http://globex.example.com" target="_blank">Globex</a>`), globex.Header)
	require.Len(t, globex.Assignments, 1)
	assert.Equal(t, "Perl", globex.Assignments[0].Tools)
}

func TestExtract_WorkHistoryMoreHeaderOnly(t *testing.T) {
	doc, err := ExtractWithOptions(loadFixture(t), Options{MoreHistoryMode: CompanyHeaderOnly})
	require.NoError(t, err)
	require.Len(t, doc.Work.More, 1)

	globex := doc.Work.More[0]
	assert.Equal(t, "Intern", globex.Position)
	assert.Empty(t, globex.Assignments)

	// the main tier is unaffected
	require.Len(t, doc.Work.Main[0].Assignments, 2)
}

func TestExtract_Education(t *testing.T) {
	doc, err := Extract(loadFixture(t))
	require.NoError(t, err)
	require.Len(t, doc.Education, 2)

	msc := doc.Education[0]
	assert.Equal(t, "msc", msc.ID)
	assert.Equal(t, "State University", msc.School)
	require.NotNil(t, msc.URL)
	assert.Equal(t, "http://state.example.edu", *msc.URL)
	assert.Equal(t, "MSc Computer Science", msc.Award)
	assert.Equal(t, "2014", msc.Year)
	assert.Equal(t, "Thesis on consensus protocols.", msc.Description)

	cc := doc.Education[1]
	assert.True(t, strings.HasPrefix(cc.ID, "degree-"))
	assert.Nil(t, cc.URL)
	assert.Equal(t, "", cc.Year)
	assert.Equal(t, "", cc.Description)
}

func TestExtract_IdentifiersStableAcrossParses(t *testing.T) {
	raw := loadFixture(t)

	first, err := Extract(raw)
	require.NoError(t, err)
	second, err := Extract(raw)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first.Skills[2].ID, second.Skills[2].ID)
	assert.Equal(t, first.Work.Main[1].ID, second.Work.Main[1].ID)
	assert.Equal(t, first.Work.Main[0].Assignments[1].ID, second.Work.Main[0].Assignments[1].ID)
	assert.Equal(t, first.Education[1].ID, second.Education[1].ID)
}

func TestExtract_GeneratedIdentifiersDistinguishSiblings(t *testing.T) {
	raw := `<resume><work-history><company name="Same"/><company name="Same"/></work-history></resume>`
	doc, err := Extract(raw)
	require.NoError(t, err)
	require.Len(t, doc.Work.Main, 2)
	assert.NotEqual(t, doc.Work.Main[0].ID, doc.Work.Main[1].ID)
}

func TestExtract_RepeatedSkillTypesGetDistinctIDs(t *testing.T) {
	raw := `<resume><skill-list>
  <skill><type>Go</type><value>stdlib</value></skill>
  <skill><type>Go</type><value>generics</value></skill>
  <skill id="Rust"><type>Systems</type></skill>
  <skill><type>Rust</type></skill>
</skill-list></resume>`

	doc, err := Extract(raw)
	require.NoError(t, err)
	require.Len(t, doc.Skills, 4)

	assert.Equal(t, "Go", doc.Skills[0].ID)
	assert.True(t, strings.HasPrefix(doc.Skills[1].ID, "skill-"), doc.Skills[1].ID)
	assert.Equal(t, "Go", doc.Skills[1].Type)
	assert.Equal(t, "Rust", doc.Skills[2].ID)
	assert.True(t, strings.HasPrefix(doc.Skills[3].ID, "skill-"), doc.Skills[3].ID)

	seen := map[string]bool{}
	for _, skill := range doc.Skills {
		assert.False(t, seen[skill.ID], "duplicate id %q", skill.ID)
		seen[skill.ID] = true
	}

	again, err := Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, doc.Skills[1].ID, again.Skills[1].ID)
}

func TestExtract_InternalEntities(t *testing.T) {
	raw := `<!DOCTYPE resume [<!ENTITY co "Acme">]>
<resume name="Jane">
  <work-history><company name="&co;"><assignment name="Mesh"><assignment-description>Built for &co;</assignment-description></assignment></company></work-history>
</resume>`

	doc, err := Extract(raw)
	require.NoError(t, err)
	require.Len(t, doc.Work.Main, 1)
	assert.Equal(t, "Acme", doc.Work.Main[0].Name)
	assert.Equal(t, types.TrustedHTML("Acme"), doc.Work.Main[0].Header)
	require.Len(t, doc.Work.Main[0].Assignments, 1)
	assert.Equal(t, types.TrustedHTML("Built for Acme"), doc.Work.Main[0].Assignments[0].Description)
}

func TestExtract_MalformedDocuments(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty input", ""},
		{"whitespace only", "   \n"},
		{"plain text", "not xml at all"},
		{"unclosed element", `<resume name="A"><profile>`},
		{"mismatched tags", `<resume><profile></entry></resume>`},
		{"two roots", `<resume/><resume/>`},
		{"trailing text", `<resume/> trailing`},
		{"bad attribute", `<resume name=A/>`},
		{"undefined entity", `<resume>&nbsp;</resume>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Extract(tt.raw)
			require.Error(t, err)
			assert.Nil(t, doc)

			var malformedErr *MalformedDocumentError
			assert.ErrorAs(t, err, &malformedErr)
			assert.Contains(t, err.Error(), "malformed document")
		})
	}
}

func TestExtract_MalformedReportsLine(t *testing.T) {
	_, err := Extract("<resume>\n<profile>\n</resume>")
	require.Error(t, err)

	var malformedErr *MalformedDocumentError
	require.ErrorAs(t, err, &malformedErr)
	assert.Greater(t, malformedErr.Line, 0)
}

func TestExtract_IgnoresPrologAndComments(t *testing.T) {
	raw := `<?xml version="1.0"?>
<!-- generated -->
<resume name="A"><!-- inline --><profile><entry><![CDATA[a < b]]></entry></profile></resume>
<!-- trailing comment -->`

	doc, err := Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, "A", doc.Name)
	assert.Equal(t, []string{"a < b"}, doc.Profile)
}

func TestParseCompanyMode(t *testing.T) {
	assert.Equal(t, CompanyHeaderOnly, ParseCompanyMode("header-only"))
	assert.Equal(t, CompanyHeaderOnly, ParseCompanyMode(" Header-Only "))
	assert.Equal(t, CompanyFull, ParseCompanyMode("full"))
	assert.Equal(t, CompanyFull, ParseCompanyMode(""))
	assert.Equal(t, "header-only", CompanyHeaderOnly.String())
	assert.Equal(t, "full", CompanyFull.String())
}

package extract

import (
	"strings"

	"github.com/jonathan/resume-viewer/internal/types"
)

// CompanyMode selects how much of a company element is read.
type CompanyMode int

const (
	// CompanyFull reads the header fields and every assignment.
	CompanyFull CompanyMode = iota
	// CompanyHeaderOnly reads the header fields and skips assignments.
	CompanyHeaderOnly
)

// String returns the mode name used in configuration.
func (m CompanyMode) String() string {
	if m == CompanyHeaderOnly {
		return "header-only"
	}
	return "full"
}

// ParseCompanyMode maps a configuration value to a mode. Unknown values
// fall back to CompanyFull.
func ParseCompanyMode(s string) CompanyMode {
	if strings.EqualFold(strings.TrimSpace(s), "header-only") {
		return CompanyHeaderOnly
	}
	return CompanyFull
}

// Options tunes extraction.
type Options struct {
	// MoreHistoryMode controls how companies under work-history-more are read.
	MoreHistoryMode CompanyMode
}

// DefaultOptions reads both history tiers in full.
func DefaultOptions() Options {
	return Options{MoreHistoryMode: CompanyFull}
}

// Extract parses raw résumé XML with default options.
func Extract(raw string) (*types.ResumeDocument, error) {
	return ExtractWithOptions(raw, DefaultOptions())
}

// ExtractWithOptions parses raw résumé XML. It fails only when raw is not
// well-formed XML; every absent attribute or element resolves to its empty
// default.
func ExtractWithOptions(raw string, opts Options) (*types.ResumeDocument, error) {
	root, err := parseTree(raw)
	if err != nil {
		return nil, err
	}

	doc := &types.ResumeDocument{
		Name:        firstOf(root, fromAttr("name")),
		Title:       firstOf(root, fromAttr("title")),
		EmailUser:   firstOf(root, fromAttr("email")),
		EmailDomain: firstOf(root, fromAttr("domain")),
		LastUpdated: firstOf(root, fromAttr("updated")),
		Contacts:    parseContacts(root),
		Profile:     parseProfile(root),
		Skills:      parseSkills(root),
		Work: types.WorkHistory{
			Main: parseCompanies(selectChildren(root, "work-history", "company"), CompanyFull),
			More: parseCompanies(selectChildren(root, "work-history-more", "company"), opts.MoreHistoryMode),
		},
		Education: parseEducation(root),
	}

	return doc, nil
}

func parseContacts(root *node) []types.Contact {
	elems := selectChildren(root, "contact-list", "contact")
	contacts := make([]types.Contact, 0, len(elems))
	for _, c := range elems {
		contact := types.Contact{
			Type:  firstOf(c, fromAttr("type")),
			Value: firstOf(c, fromAttr("value"), fromText()),
		}
		if isAbsoluteHTTP(contact.Value) {
			u := strings.TrimSpace(contact.Value)
			contact.URL = &u
		}
		contacts = append(contacts, contact)
	}
	return contacts
}

func parseProfile(root *node) []string {
	elems := selectChildren(root, "profile", "entry")
	profile := make([]string, 0, len(elems))
	for _, e := range elems {
		profile = append(profile, strings.TrimSpace(e.text()))
	}
	return profile
}

func parseSkills(root *node) []types.Skill {
	elems := selectChildren(root, "skill-list", "skill")

	// Explicit ids are reserved first so a label derived from <type> never
	// shadows one, and a repeated label falls back to a generated id.
	used := make(map[string]bool, len(elems))
	for _, s := range elems {
		if id := firstOf(s, fromAttr("id")); id != "" {
			used[id] = true
		}
	}

	skills := make([]types.Skill, 0, len(elems))
	for _, s := range elems {
		skill := parseSkill(s)
		if firstOf(s, fromAttr("id")) == "" {
			if used[skill.ID] {
				skill.ID = fallbackID("skill", s)
			}
			used[skill.ID] = true
		}
		skills = append(skills, skill)
	}
	return skills
}

// parseSkill partitions values by parentage: direct children are top-level
// values, anything under a skill-details element is a nested detail, and a
// value elsewhere in the subtree belongs to neither group.
func parseSkill(s *node) types.Skill {
	skill := types.Skill{
		ID:            firstOf(s, fromAttr("id"), fromChildText("type"), generatedID("skill")),
		Type:          firstOf(s, fromChildText("type")),
		MainDetails:   []types.Fragment{},
		Values:        []types.Fragment{},
		NestedDetails: []types.Fragment{},
	}

	for _, md := range s.descendants("main-detail") {
		skill.MainDetails = append(skill.MainDetails, fragment(md))
	}

	for _, v := range s.descendants("value") {
		switch {
		case v.parent == s:
			skill.Values = append(skill.Values, fragment(v))
		case v.hasAncestor("skill-details", s):
			skill.NestedDetails = append(skill.NestedDetails, fragment(v))
		}
	}

	return skill
}

func parseCompanies(elems []*node, mode CompanyMode) []types.Company {
	companies := make([]types.Company, 0, len(elems))
	for _, c := range elems {
		companies = append(companies, parseCompany(c, mode))
	}
	return companies
}

// parseCompany is the single per-company parser for both history tiers.
func parseCompany(c *node, mode CompanyMode) types.Company {
	company := types.Company{
		ID:          firstOf(c, fromAttr("id"), generatedID("company")),
		Name:        firstOf(c, fromAttr("name")),
		Header:      headerOf(c),
		Position:    firstOf(c, fromAttr("position")),
		StartDate:   firstOf(c, fromAttr("startDate")),
		EndDate:     firstOf(c, fromAttr("endDate")),
		Assignments: []types.Assignment{},
	}

	if mode == CompanyHeaderOnly {
		return company
	}

	for _, a := range c.descendants("assignment") {
		company.Assignments = append(company.Assignments, parseAssignment(a))
	}
	return company
}

func parseAssignment(a *node) types.Assignment {
	assignment := types.Assignment{
		ID:          firstOf(a, fromAttr("id"), generatedID("assignment")),
		Name:        firstOf(a, fromAttr("name")),
		Header:      headerOf(a),
		Environment: firstOf(a, fromChildText("assignment-environment")),
		Tools:       firstOf(a, fromChildText("assignment-tools")),
		Description: markup(a.first("assignment-description")),
		Details:     []types.TrustedHTML{},
	}

	for _, d := range selectChildren(a, "assignment-details", "detail") {
		assignment.Details = append(assignment.Details, markup(d))
	}
	return assignment
}

func headerOf(n *node) types.TrustedHTML {
	return FormatHeader(
		firstOf(n, fromAttr("url")),
		firstOf(n, fromAttr("name")),
		firstOf(n, fromAttr("department")),
	)
}

func parseEducation(root *node) []types.Education {
	elems := selectChildren(root, "education", "degree")
	education := make([]types.Education, 0, len(elems))
	for _, d := range elems {
		entry := types.Education{
			ID:          firstOf(d, fromAttr("id"), generatedID("degree")),
			School:      firstOf(d, fromAttr("school")),
			Award:       firstOf(d, fromAttr("award")),
			Year:        firstOf(d, fromAttr("year")),
			Description: strings.TrimSpace(d.text()),
		}
		if u := EnsureScheme(firstOf(d, fromAttr("url"))); u != "" {
			entry.URL = &u
		}
		education = append(education, entry)
	}
	return education
}

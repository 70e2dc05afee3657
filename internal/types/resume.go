// Package types provides type definitions for structured data used throughout the resume-viewer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// TrustedHTML is a markup fragment taken verbatim from the author-controlled
// résumé document. Renderers insert it without escaping; plain strings are
// always escaped.
type TrustedHTML string

// String returns the raw markup.
func (h TrustedHTML) String() string {
	return string(h)
}

// IsEmpty reports whether the fragment has no markup.
func (h TrustedHTML) IsEmpty() bool {
	return h == ""
}

// ResumeDocument is the root of a parsed résumé. It is built once per
// successful parse and never mutated afterwards.
type ResumeDocument struct {
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	EmailUser   string      `json:"email_user"`
	EmailDomain string      `json:"email_domain"`
	LastUpdated string      `json:"last_updated"`
	Contacts    []Contact   `json:"contacts"`
	Profile     []string    `json:"profile"`
	Skills      []Skill     `json:"skills"`
	Work        WorkHistory `json:"work"`
	Education   []Education `json:"education"`
}

// Email joins the user and domain parts. Returns "" unless both are present.
func (d *ResumeDocument) Email() string {
	if d.EmailUser == "" || d.EmailDomain == "" {
		return ""
	}
	return d.EmailUser + "@" + d.EmailDomain
}

// Contact is one entry of the contact list.
type Contact struct {
	Type  string  `json:"type"`
	Value string  `json:"value"`
	URL   *string `json:"url"` // set only when Value is an absolute http(s) URL
}

// Fragment is a labelled piece of inline markup.
type Fragment struct {
	Description string      `json:"description"`
	Body        TrustedHTML `json:"body"`
}

// Skill groups the fragments of one skill category.
type Skill struct {
	ID            string     `json:"id"`
	Type          string     `json:"type"`
	MainDetails   []Fragment `json:"main_details"`
	Values        []Fragment `json:"values"`         // direct children of the skill only
	NestedDetails []Fragment `json:"nested_details"` // values under skill-details, flattened
}

// HasNestedDetails reports whether the skill has a collapsible detail block.
func (s Skill) HasNestedDetails() bool {
	return len(s.NestedDetails) > 0
}

// WorkHistory splits companies into the always-shown Main list and the
// on-demand More list.
type WorkHistory struct {
	Main []Company `json:"main"`
	More []Company `json:"more"`
}

// IsEmpty reports whether both lists are empty.
func (w WorkHistory) IsEmpty() bool {
	return len(w.Main) == 0 && len(w.More) == 0
}

// Company is one employer entry.
type Company struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Header      TrustedHTML  `json:"header"`
	Position    string       `json:"position"`
	StartDate   string       `json:"start_date"`
	EndDate     string       `json:"end_date"`
	Assignments []Assignment `json:"assignments"`
}

// Assignment is a project or engagement within a company.
type Assignment struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Header      TrustedHTML   `json:"header"`
	Environment string        `json:"environment"`
	Tools       string        `json:"tools"`
	Description TrustedHTML   `json:"description"`
	Details     []TrustedHTML `json:"details"`
}

// Education is one degree entry.
type Education struct {
	ID          string  `json:"id"`
	School      string  `json:"school"`
	URL         *string `json:"url"`
	Award       string  `json:"award"`
	Year        string  `json:"year"`
	Description string  `json:"description"`
}

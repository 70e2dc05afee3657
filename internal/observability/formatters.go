// Package observability provides formatted terminal output for parsed résumés.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/resume-viewer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the show command
type Printer struct {
	out      io.Writer
	maxItems int
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, maxItems: maxItemsToShow}
}

// WithAllItems disables list truncation.
func (p *Printer) WithAllItems() *Printer {
	p.maxItems = 0
	return p
}

// FragmentText flattens a trusted fragment to plain text.
func FragmentText(h types.TrustedHTML) string {
	if h.IsEmpty() {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + h.String() + "</body>"))
	if err != nil {
		return h.String()
	}
	return strings.Join(strings.Fields(doc.Find("body").Text()), " ")
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// limit returns how many of n items to show.
func (p *Printer) limit(n int) int {
	if p.maxItems <= 0 {
		return n
	}
	return min(n, p.maxItems)
}

func (p *Printer) writeMore(sb *strings.Builder, total int, noun string) {
	if shown := p.limit(total); total > shown {
		sb.WriteString(fmt.Sprintf("  ... and %d more %s\n", total-shown, noun))
	}
}

// PrintResume outputs every section of the document.
func (p *Printer) PrintResume(doc *types.ResumeDocument) {
	if doc == nil {
		return
	}
	p.PrintHeader(doc)
	p.PrintSkills(doc.Skills)
	p.PrintWorkHistory(doc.Work)
	p.PrintEducation(doc.Education)
}

// PrintHeader outputs the name, title, contacts and profile.
func (p *Printer) PrintHeader(doc *types.ResumeDocument) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", doc.Name))
	sb.WriteString(fmt.Sprintf("Title:    %s\n", doc.Title))
	if email := doc.Email(); email != "" {
		sb.WriteString(fmt.Sprintf("Email:    %s\n", email))
	}
	if doc.LastUpdated != "" {
		sb.WriteString(fmt.Sprintf("Updated:  %s\n", doc.LastUpdated))
	}

	if len(doc.Contacts) > 0 {
		sb.WriteString("\nContacts:\n")
		for _, c := range doc.Contacts {
			sb.WriteString(fmt.Sprintf("  • %s: %s\n", c.Type, c.Value))
		}
	}

	if len(doc.Profile) > 0 {
		sb.WriteString("\nProfile:\n")
		count := p.limit(len(doc.Profile))
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", doc.Profile[i]))
		}
		p.writeMore(&sb, len(doc.Profile), "entries")
	}

	p.printBox("RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSkills outputs each skill with its values.
func (p *Printer) PrintSkills(skills []types.Skill) {
	if len(skills) == 0 {
		return
	}

	var sb strings.Builder
	for i, skill := range skills {
		label := skill.Type
		if label == "" {
			label = skill.ID
		}
		sb.WriteString(label + "\n")
		for _, md := range skill.MainDetails {
			sb.WriteString(fmt.Sprintf("  %s\n", describe(md)))
		}

		values := make([]string, 0, len(skill.Values))
		for _, v := range skill.Values {
			values = append(values, describe(v))
		}
		if len(values) > 0 {
			sb.WriteString(fmt.Sprintf("  Values: %s\n", strings.Join(values, ", ")))
		}
		if skill.HasNestedDetails() {
			sb.WriteString(fmt.Sprintf("  (+%d details)\n", len(skill.NestedDetails)))
		}
		if i < len(skills)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("SKILLS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintWorkHistory outputs the main history and a count of the more tier.
func (p *Printer) PrintWorkHistory(work types.WorkHistory) {
	if work.IsEmpty() {
		return
	}

	var sb strings.Builder
	count := p.limit(len(work.Main))
	for i := 0; i < count; i++ {
		c := work.Main[i]
		sb.WriteString(FragmentText(c.Header))
		if c.Position != "" {
			sb.WriteString(fmt.Sprintf(" - %s", c.Position))
		}
		sb.WriteString("\n")
		if c.StartDate != "" || c.EndDate != "" {
			sb.WriteString(fmt.Sprintf("  %s - %s\n", c.StartDate, c.EndDate))
		}
		for _, a := range c.Assignments {
			sb.WriteString(fmt.Sprintf("  • %s\n", FragmentText(a.Header)))
			if a.Environment != "" {
				sb.WriteString(fmt.Sprintf("    Environment: %s\n", a.Environment))
			}
			if a.Tools != "" {
				sb.WriteString(fmt.Sprintf("    Tools: %s\n", a.Tools))
			}
			if len(a.Details) > 0 {
				sb.WriteString(fmt.Sprintf("    (+%d details)\n", len(a.Details)))
			}
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	p.writeMore(&sb, len(work.Main), "companies")

	if len(work.More) > 0 {
		sb.WriteString(fmt.Sprintf("\n+%d earlier positions\n", len(work.More)))
	}

	p.printBox("WORK HISTORY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEducation outputs the degree list.
func (p *Printer) PrintEducation(education []types.Education) {
	if len(education) == 0 {
		return
	}

	var sb strings.Builder
	for _, e := range education {
		sb.WriteString(fmt.Sprintf("• %s", e.Award))
		if e.School != "" {
			sb.WriteString(fmt.Sprintf(", %s", e.School))
		}
		if e.Year != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", e.Year))
		}
		sb.WriteString("\n")
	}

	p.printBox("EDUCATION", strings.TrimSuffix(sb.String(), "\n"))
}

func describe(f types.Fragment) string {
	text := FragmentText(f.Body)
	if f.Description != "" {
		return fmt.Sprintf("%s (%s)", text, f.Description)
	}
	return text
}

// truncate shortens s to at most width runes.
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

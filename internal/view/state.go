package view

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/resume-viewer/internal/types"
)

// ToggleID names one collapsible section.
type ToggleID string

// MoreHistoryToggle controls the "more work history" tail.
const MoreHistoryToggle ToggleID = "more-history"

// SkillDetailsToggle controls a skill's nested details.
func SkillDetailsToggle(skillID string) ToggleID {
	return ToggleID("skill:" + skillID)
}

// AssignmentDetailsToggle controls an assignment's detail list.
func AssignmentDetailsToggle(assignmentID string) ToggleID {
	return ToggleID("assignment:" + assignmentID)
}

// AssignmentDetailToggle controls a single detail of an assignment.
func AssignmentDetailToggle(assignmentID string, index int) ToggleID {
	return ToggleID(fmt.Sprintf("assignment:%s:detail:%d", assignmentID, index))
}

// ToggleState holds per-section visibility. Every section starts collapsed.
// It belongs to one view and is never shared with the document it renders.
// The zero value is ready to use. A nil *ToggleState reports everything
// collapsed and ignores changes.
type ToggleState struct {
	expanded map[ToggleID]bool
}

// NewToggleState returns a state with the given sections expanded.
func NewToggleState(expanded ...ToggleID) *ToggleState {
	s := &ToggleState{expanded: make(map[ToggleID]bool)}
	s.Expand(expanded...)
	return s
}

// Expanded reports whether id is open.
func (s *ToggleState) Expanded(id ToggleID) bool {
	if s == nil {
		return false
	}
	return s.expanded[id]
}

// Toggle flips id and returns its new visibility.
func (s *ToggleState) Toggle(id ToggleID) bool {
	if s == nil {
		return false
	}
	if s.expanded[id] {
		delete(s.expanded, id)
		return false
	}
	s.Expand(id)
	return s.expanded[id]
}

// Expand opens the given sections.
func (s *ToggleState) Expand(ids ...ToggleID) {
	if s == nil {
		return
	}
	for _, id := range ids {
		if id == "" {
			continue
		}
		if s.expanded == nil {
			s.expanded = make(map[ToggleID]bool)
		}
		s.expanded[id] = true
	}
}

// Collapse closes the given sections.
func (s *ToggleState) Collapse(ids ...ToggleID) {
	if s == nil {
		return
	}
	for _, id := range ids {
		delete(s.expanded, id)
	}
}

// ExpandAll opens every section doc can show.
func (s *ToggleState) ExpandAll(doc *types.ResumeDocument) {
	s.Expand(AllToggles(doc)...)
}

// IDs returns the open sections in sorted order.
func (s *ToggleState) IDs() []ToggleID {
	if s == nil {
		return nil
	}
	ids := make([]ToggleID, 0, len(s.expanded))
	for id := range s.expanded {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// String encodes the open sections as a comma separated list, the form
// accepted by ParseToggleList.
func (s *ToggleState) String() string {
	ids := s.IDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}

// ParseToggleList splits a comma separated list of toggle IDs.
func ParseToggleList(list string) []ToggleID {
	var ids []ToggleID
	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, ToggleID(part))
		}
	}
	return ids
}

// AllToggles lists every section doc can show, in document order.
func AllToggles(doc *types.ResumeDocument) []ToggleID {
	if doc == nil {
		return nil
	}
	var ids []ToggleID
	for _, skill := range doc.Skills {
		if skill.HasNestedDetails() {
			ids = append(ids, SkillDetailsToggle(skill.ID))
		}
	}
	for _, companies := range [][]types.Company{doc.Work.Main, doc.Work.More} {
		for _, company := range companies {
			for _, a := range company.Assignments {
				if len(a.Details) == 0 {
					continue
				}
				ids = append(ids, AssignmentDetailsToggle(a.ID))
				for i := range a.Details {
					ids = append(ids, AssignmentDetailToggle(a.ID, i))
				}
			}
		}
	}
	if len(doc.Work.More) > 0 {
		ids = append(ids, MoreHistoryToggle)
	}
	return ids
}

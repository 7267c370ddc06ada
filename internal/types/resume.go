// Package types provides type definitions for structured data used throughout the resume-builder system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SectionType classifies a section. The set is fixed.
type SectionType string

// Section types, in taxonomy order
const (
	SectionPersonal       SectionType = "personal"
	SectionSummary        SectionType = "summary"
	SectionExperience     SectionType = "experience"
	SectionEducation      SectionType = "education"
	SectionSkills         SectionType = "skills"
	SectionProjects       SectionType = "projects"
	SectionCertifications SectionType = "certifications"
	SectionCustom         SectionType = "custom"
)

// AllSectionTypes returns the fixed section taxonomy in display order.
func AllSectionTypes() []SectionType {
	return []SectionType{
		SectionPersonal,
		SectionSummary,
		SectionExperience,
		SectionEducation,
		SectionSkills,
		SectionProjects,
		SectionCertifications,
		SectionCustom,
	}
}

// ParseSectionType converts a raw value into a SectionType.
// An empty value maps to SectionCustom.
func ParseSectionType(raw string) (SectionType, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return SectionCustom, nil
	}
	for _, t := range AllSectionTypes() {
		if string(t) == raw {
			return t, nil
		}
	}
	return "", &ValidationError{Field: "section_type", Message: "unknown section type " + raw}
}

// Resume is the top-level document a user edits
type Resume struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Sections  []Section `json:"sections"`
}

// Section is an ordered, toggle-able block of a resume (Experience, Skills, ...)
type Section struct {
	ID          uuid.UUID   `json:"id"`
	ResumeID    uuid.UUID   `json:"resume_id"`
	Title       string      `json:"title"`
	SectionType SectionType `json:"section_type"`
	VariantName string      `json:"variant_name,omitempty"`
	Order       int         `json:"order"`
	IsEnabled   bool        `json:"is_enabled"`
	Items       []Item      `json:"items"`
}

// Item is an entry within a section: a job, a degree, a project
type Item struct {
	ID         uuid.UUID `json:"id"`
	SectionID  uuid.UUID `json:"section_id"`
	Content    string    `json:"content"`
	Subtitle   string    `json:"subtitle,omitempty"`
	DateRange  string    `json:"date_range,omitempty"`
	Location   string    `json:"location,omitempty"`
	Order      int       `json:"order"`
	IsIncluded bool      `json:"is_included"`
	SubItems   []SubItem `json:"subitems"`
}

// SubItem is a single bullet under an item. ItemID is a lookup field only.
type SubItem struct {
	ID         uuid.UUID `json:"id"`
	ItemID     uuid.UUID `json:"item_id"`
	Content    string    `json:"content"`
	Order      int       `json:"order"`
	IsIncluded bool      `json:"is_included"`
}

// Clone returns a deep copy of the resume tree.
func (r *Resume) Clone() *Resume {
	if r == nil {
		return nil
	}
	out := *r
	out.Sections = make([]Section, len(r.Sections))
	for i, s := range r.Sections {
		out.Sections[i] = s.clone()
	}
	return &out
}

func (s Section) clone() Section {
	items := make([]Item, len(s.Items))
	for i, it := range s.Items {
		items[i] = it.clone()
	}
	s.Items = items
	return s
}

func (it Item) clone() Item {
	subs := make([]SubItem, len(it.SubItems))
	copy(subs, it.SubItems)
	it.SubItems = subs
	return it
}

// Sorted returns a deep copy with children at every level ordered by Order,
// ties broken by ID.
func (r *Resume) Sorted() *Resume {
	out := r.Clone()
	if out == nil {
		return nil
	}
	sort.SliceStable(out.Sections, func(i, j int) bool {
		return lessByOrder(out.Sections[i].Order, out.Sections[i].ID, out.Sections[j].Order, out.Sections[j].ID)
	})
	for si := range out.Sections {
		items := out.Sections[si].Items
		sort.SliceStable(items, func(i, j int) bool {
			return lessByOrder(items[i].Order, items[i].ID, items[j].Order, items[j].ID)
		})
		for ii := range items {
			subs := items[ii].SubItems
			sort.SliceStable(subs, func(i, j int) bool {
				return lessByOrder(subs[i].Order, subs[i].ID, subs[j].Order, subs[j].ID)
			})
		}
	}
	return out
}

// Filtered returns the sorted tree restricted to enabled sections, included
// items and included sub-items.
func (r *Resume) Filtered() *Resume {
	sorted := r.Sorted()
	if sorted == nil {
		return nil
	}
	sections := make([]Section, 0, len(sorted.Sections))
	for _, s := range sorted.Sections {
		if !s.IsEnabled {
			continue
		}
		items := make([]Item, 0, len(s.Items))
		for _, it := range s.Items {
			if !it.IsIncluded {
				continue
			}
			subs := make([]SubItem, 0, len(it.SubItems))
			for _, sub := range it.SubItems {
				if sub.IsIncluded {
					subs = append(subs, sub)
				}
			}
			it.SubItems = subs
			items = append(items, it)
		}
		s.Items = items
		sections = append(sections, s)
	}
	sorted.Sections = sections
	return sorted
}

// PlainText flattens the included content of the resume into newline separated text.
func (r *Resume) PlainText() string {
	filtered := r.Filtered()
	if filtered == nil {
		return ""
	}

	var sb strings.Builder
	write := func(parts ...string) {
		for _, p := range parts {
			if strings.TrimSpace(p) == "" {
				continue
			}
			sb.WriteString(p)
			sb.WriteString("\n")
		}
	}

	write(filtered.Title)
	for _, s := range filtered.Sections {
		write(s.Title)
		for _, it := range s.Items {
			write(it.Subtitle, it.DateRange, it.Location, it.Content)
			for _, sub := range it.SubItems {
				write(sub.Content)
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// PresentSections returns the section types that are enabled and have at least
// one included item, in taxonomy order.
func (r *Resume) PresentSections() []SectionType {
	if r == nil {
		return nil
	}
	seen := make(map[SectionType]bool)
	for _, s := range r.Sections {
		if !s.IsEnabled {
			continue
		}
		for _, it := range s.Items {
			if it.IsIncluded {
				seen[s.SectionType] = true
				break
			}
		}
	}
	present := make([]SectionType, 0, len(seen))
	for _, t := range AllSectionTypes() {
		if seen[t] {
			present = append(present, t)
		}
	}
	return present
}

func lessByOrder(oi int, idi uuid.UUID, oj int, idj uuid.UUID) bool {
	if oi != oj {
		return oi < oj
	}
	return idi.String() < idj.String()
}

//nolint:revive // types is a standard Go package name pattern
package types

// ResumeImport is a complete resume tree supplied as one JSON document.
// Child order is the array order.
type ResumeImport struct {
	CreateResumeRequest
	Sections []SectionImport `json:"sections"`
}

// SectionImport is one section of a ResumeImport.
type SectionImport struct {
	CreateSectionRequest
	Items []ItemImport `json:"items"`
}

// ItemImport is one item of a SectionImport.
type ItemImport struct {
	CreateItemRequest
	SubItems []CreateSubItemRequest `json:"subitems"`
}

// CountNodes returns the number of sections, items and sub-items.
func (r *ResumeImport) CountNodes() (sections, items, subItems int) {
	for _, s := range r.Sections {
		sections++
		for _, it := range s.Items {
			items++
			subItems += len(it.SubItems)
		}
	}
	return sections, items, subItems
}

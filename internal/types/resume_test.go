//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedID(n byte) uuid.UUID {
	var id uuid.UUID
	id[15] = n
	return id
}

func sampleResume() *Resume {
	return &Resume{
		ID:    fixedID(1),
		Title: "Jane Doe",
		Sections: []Section{
			{
				ID: fixedID(20), Title: "Skills", SectionType: SectionSkills, Order: 1, IsEnabled: true,
				Items: []Item{{ID: fixedID(30), Content: "Go, Python", Order: 0, IsIncluded: true}},
			},
			{
				ID: fixedID(10), Title: "Experience", SectionType: SectionExperience, Order: 0, IsEnabled: true,
				Items: []Item{
					{
						ID: fixedID(41), Content: "Second job", Order: 1, IsIncluded: true,
					},
					{
						ID: fixedID(40), Content: "First job", Subtitle: "Engineer", Order: 0, IsIncluded: true,
						SubItems: []SubItem{
							{ID: fixedID(51), Content: "hidden bullet", Order: 0, IsIncluded: false},
							{ID: fixedID(50), Content: "kept bullet", Order: 1, IsIncluded: true},
						},
					},
					{
						ID: fixedID(42), Content: "Excluded job", Order: 2, IsIncluded: false,
					},
				},
			},
			{
				ID: fixedID(60), Title: "Hobbies", SectionType: SectionCustom, Order: 2, IsEnabled: false,
				Items: []Item{{ID: fixedID(61), Content: "Chess", IsIncluded: true}},
			},
		},
	}
}

func TestSorted_OrdersEveryLevel(t *testing.T) {
	sorted := sampleResume().Sorted()

	require.Len(t, sorted.Sections, 3)
	assert.Equal(t, "Experience", sorted.Sections[0].Title)
	assert.Equal(t, "Skills", sorted.Sections[1].Title)
	assert.Equal(t, "First job", sorted.Sections[0].Items[0].Content)
	assert.Equal(t, "Second job", sorted.Sections[0].Items[1].Content)
	assert.Equal(t, "hidden bullet", sorted.Sections[0].Items[0].SubItems[0].Content)
}

func TestSorted_TiesBrokenByID(t *testing.T) {
	r := &Resume{Sections: []Section{
		{ID: fixedID(9), Title: "B", Order: 0},
		{ID: fixedID(3), Title: "A", Order: 0},
	}}

	sorted := r.Sorted()
	assert.Equal(t, "A", sorted.Sections[0].Title)
	assert.Equal(t, "B", sorted.Sections[1].Title)
}

func TestSorted_DoesNotMutateInput(t *testing.T) {
	r := sampleResume()
	_ = r.Sorted()
	assert.Equal(t, "Skills", r.Sections[0].Title)
}

func TestFiltered_DropsDisabledAndExcluded(t *testing.T) {
	filtered := sampleResume().Filtered()

	require.Len(t, filtered.Sections, 2)
	for _, s := range filtered.Sections {
		assert.NotEqual(t, "Hobbies", s.Title)
	}
	exp := filtered.Sections[0]
	require.Len(t, exp.Items, 2)
	for _, it := range exp.Items {
		assert.NotEqual(t, "Excluded job", it.Content)
	}
	require.Len(t, exp.Items[0].SubItems, 1)
	assert.Equal(t, "kept bullet", exp.Items[0].SubItems[0].Content)
}

func TestPlainText_IncludedOnly(t *testing.T) {
	text := sampleResume().PlainText()

	assert.Contains(t, text, "First job")
	assert.Contains(t, text, "kept bullet")
	assert.Contains(t, text, "Engineer")
	assert.NotContains(t, text, "hidden bullet")
	assert.NotContains(t, text, "Excluded job")
	assert.NotContains(t, text, "Chess")
}

func TestPlainText_NilResume(t *testing.T) {
	var r *Resume
	assert.Equal(t, "", r.PlainText())
}

func TestPresentSections(t *testing.T) {
	r := sampleResume()
	r.Sections = append(r.Sections, Section{
		ID: fixedID(70), Title: "Projects", SectionType: SectionProjects, IsEnabled: true,
		Items: []Item{{ID: fixedID(71), Content: "x", IsIncluded: false}},
	})

	assert.Equal(t, []SectionType{SectionExperience, SectionSkills}, r.PresentSections())
}

func TestClone_IsDeep(t *testing.T) {
	r := sampleResume()
	c := r.Clone()
	c.Sections[1].Items[1].SubItems[0].Content = "changed"

	assert.Equal(t, "hidden bullet", r.Sections[1].Items[1].SubItems[0].Content)
}

func TestParseSectionType(t *testing.T) {
	st, err := ParseSectionType("")
	require.NoError(t, err)
	assert.Equal(t, SectionCustom, st)

	st, err = ParseSectionType(" Experience ")
	require.NoError(t, err)
	assert.Equal(t, SectionExperience, st)

	_, err = ParseSectionType("hobbies")
	assert.True(t, IsValidation(err))
}

func TestJobPostingText(t *testing.T) {
	p := &JobPosting{Description: "desc"}
	assert.Equal(t, "desc", p.Text())

	p.Requirements = "reqs"
	assert.Equal(t, "desc\nreqs", p.Text())
}

//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreateResumeRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request CreateResumeRequest
		field   string
	}{
		{name: "valid", request: CreateResumeRequest{Title: "Backend resume"}},
		{name: "empty title", request: CreateResumeRequest{Title: ""}, field: "title"},
		{name: "blank title", request: CreateResumeRequest{Title: "   "}, field: "title"},
		{name: "title too long", request: CreateResumeRequest{Title: strings.Repeat("a", 201)}, field: "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestCreateSectionRequest_Validate(t *testing.T) {
	req := CreateSectionRequest{Title: "Experience", SectionType: "Experience"}
	require.NoError(t, req.Validate())
	assert.Equal(t, "experience", req.SectionType)

	req = CreateSectionRequest{Title: "Misc", SectionType: "hobbies"}
	err := req.Validate()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "section_type", ve.Field)
	assert.Contains(t, ve.Message, "must be one of")
}

func TestCreateItemRequest_Validate(t *testing.T) {
	req := CreateItemRequest{Content: "  "}
	assert.True(t, IsValidation(req.Validate()))

	req = CreateItemRequest{Content: "Built things", DateRange: strings.Repeat("9", 101)}
	var ve *ValidationError
	require.ErrorAs(t, req.Validate(), &ve)
	assert.Equal(t, "date_range", ve.Field)

	req = CreateItemRequest{Content: "Built things", DateRange: "2020 - 2022"}
	assert.NoError(t, req.Validate())
}

func TestCreateSubItemRequest_Validate(t *testing.T) {
	assert.Error(t, (&CreateSubItemRequest{}).Validate())
	assert.NoError(t, (&CreateSubItemRequest{Content: "Shipped v2"}).Validate())
}

func TestSectionPatch_ValidateAndApply(t *testing.T) {
	patch := SectionPatch{Title: strPtr(" ")}
	assert.True(t, IsValidation(patch.Validate()))

	disabled := false
	patch = SectionPatch{Title: strPtr(" Work "), IsEnabled: &disabled}
	require.NoError(t, patch.Validate())

	s := Section{Title: "Experience", SectionType: SectionExperience, Order: 3, IsEnabled: true}
	patch.Apply(&s)
	assert.Equal(t, "Work", s.Title)
	assert.False(t, s.IsEnabled)
	assert.Equal(t, SectionExperience, s.SectionType)
	assert.Equal(t, 3, s.Order, "order is not patchable")
}

func TestItemPatch_Apply_KeepsUnsetFields(t *testing.T) {
	it := Item{Content: "old", Subtitle: "Engineer", Location: "Berlin", Order: 2, IsIncluded: true}
	patch := ItemPatch{Content: strPtr("new")}
	require.NoError(t, patch.Validate())
	patch.Apply(&it)

	assert.Equal(t, "new", it.Content)
	assert.Equal(t, "Engineer", it.Subtitle)
	assert.Equal(t, "Berlin", it.Location)
	assert.Equal(t, 2, it.Order)
	assert.True(t, it.IsIncluded)
}

func TestJobPostingPatch_Validate(t *testing.T) {
	assert.Error(t, (&JobPostingPatch{Title: strPtr("")}).Validate())
	assert.NoError(t, (&JobPostingPatch{Description: strPtr("")}).Validate())
}

func TestBoolOr(t *testing.T) {
	f := false
	assert.True(t, BoolOr(nil, true))
	assert.False(t, BoolOr(&f, true))
}

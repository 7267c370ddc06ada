//nolint:revive // types is a standard Go package name pattern
package types

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// validatorInstance returns the shared validator, reporting fields by their JSON name.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// CreateResumeRequest is the payload for creating a resume
type CreateResumeRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// Validate trims and validates the request.
func (r *CreateResumeRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	return fromValidator(validatorInstance().Struct(r))
}

// CreateSectionRequest is the payload for appending a section to a resume
type CreateSectionRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	SectionType string `json:"section_type" validate:"omitempty,oneof=personal summary experience education skills projects certifications custom"`
	VariantName string `json:"variant_name,omitempty" validate:"max=100"`
	IsEnabled   *bool  `json:"is_enabled,omitempty"`
}

// Validate trims and validates the request.
func (r *CreateSectionRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.SectionType = strings.ToLower(strings.TrimSpace(r.SectionType))
	return fromValidator(validatorInstance().Struct(r))
}

// CreateItemRequest is the payload for appending an item to a section
type CreateItemRequest struct {
	Content    string `json:"content" validate:"required"`
	Subtitle   string `json:"subtitle,omitempty" validate:"max=200"`
	DateRange  string `json:"date_range,omitempty" validate:"max=100"`
	Location   string `json:"location,omitempty" validate:"max=200"`
	IsIncluded *bool  `json:"is_included,omitempty"`
}

// Validate validates the request. Content keeps its whitespace; only a blank
// value is rejected.
func (r *CreateItemRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return &ValidationError{Field: "content", Message: "is required"}
	}
	return fromValidator(validatorInstance().Struct(r))
}

// CreateSubItemRequest is the payload for appending a sub-item to an item
type CreateSubItemRequest struct {
	Content    string `json:"content" validate:"required"`
	IsIncluded *bool  `json:"is_included,omitempty"`
}

// Validate validates the request.
func (r *CreateSubItemRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return &ValidationError{Field: "content", Message: "is required"}
	}
	return fromValidator(validatorInstance().Struct(r))
}

// CreateJobPostingRequest is the payload for storing a job posting
type CreateJobPostingRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Company      string `json:"company" validate:"max=200"`
	Description  string `json:"description"`
	Requirements string `json:"requirements,omitempty"`
}

// Validate trims and validates the request.
func (r *CreateJobPostingRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Company = strings.TrimSpace(r.Company)
	return fromValidator(validatorInstance().Struct(r))
}

// ResumePatch is a partial update. Nil fields keep their current value.
type ResumePatch struct {
	Title    *string `json:"title,omitempty" validate:"omitnil,max=200"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// Validate validates the patch.
func (p *ResumePatch) Validate() error {
	if err := requireNonBlank("title", p.Title); err != nil {
		return err
	}
	return fromValidator(validatorInstance().Struct(p))
}

// Apply merges the patch into r.
func (p *ResumePatch) Apply(r *Resume) {
	if p.Title != nil {
		r.Title = strings.TrimSpace(*p.Title)
	}
	if p.IsActive != nil {
		r.IsActive = *p.IsActive
	}
}

// SectionPatch is a partial update of a section's scalar fields
type SectionPatch struct {
	Title       *string `json:"title,omitempty" validate:"omitnil,max=200"`
	SectionType *string `json:"section_type,omitempty" validate:"omitnil,oneof=personal summary experience education skills projects certifications custom"`
	VariantName *string `json:"variant_name,omitempty" validate:"omitnil,max=100"`
	IsEnabled   *bool   `json:"is_enabled,omitempty"`
}

// Validate validates the patch.
func (p *SectionPatch) Validate() error {
	if err := requireNonBlank("title", p.Title); err != nil {
		return err
	}
	return fromValidator(validatorInstance().Struct(p))
}

// Apply merges the patch into s.
func (p *SectionPatch) Apply(s *Section) {
	if p.Title != nil {
		s.Title = strings.TrimSpace(*p.Title)
	}
	if p.SectionType != nil {
		s.SectionType = SectionType(*p.SectionType)
	}
	if p.VariantName != nil {
		s.VariantName = *p.VariantName
	}
	if p.IsEnabled != nil {
		s.IsEnabled = *p.IsEnabled
	}
}

// ItemPatch is a partial update of an item's scalar fields
type ItemPatch struct {
	Content    *string `json:"content,omitempty"`
	Subtitle   *string `json:"subtitle,omitempty" validate:"omitnil,max=200"`
	DateRange  *string `json:"date_range,omitempty" validate:"omitnil,max=100"`
	Location   *string `json:"location,omitempty" validate:"omitnil,max=200"`
	IsIncluded *bool   `json:"is_included,omitempty"`
}

// Validate validates the patch.
func (p *ItemPatch) Validate() error {
	if err := requireNonBlank("content", p.Content); err != nil {
		return err
	}
	return fromValidator(validatorInstance().Struct(p))
}

// Apply merges the patch into it.
func (p *ItemPatch) Apply(it *Item) {
	if p.Content != nil {
		it.Content = *p.Content
	}
	if p.Subtitle != nil {
		it.Subtitle = *p.Subtitle
	}
	if p.DateRange != nil {
		it.DateRange = *p.DateRange
	}
	if p.Location != nil {
		it.Location = *p.Location
	}
	if p.IsIncluded != nil {
		it.IsIncluded = *p.IsIncluded
	}
}

// SubItemPatch is a partial update of a sub-item
type SubItemPatch struct {
	Content    *string `json:"content,omitempty"`
	IsIncluded *bool   `json:"is_included,omitempty"`
}

// Validate validates the patch.
func (p *SubItemPatch) Validate() error {
	return requireNonBlank("content", p.Content)
}

// Apply merges the patch into sub.
func (p *SubItemPatch) Apply(sub *SubItem) {
	if p.Content != nil {
		sub.Content = *p.Content
	}
	if p.IsIncluded != nil {
		sub.IsIncluded = *p.IsIncluded
	}
}

// JobPostingPatch is a partial update of a job posting
type JobPostingPatch struct {
	Title        *string `json:"title,omitempty" validate:"omitnil,max=200"`
	Company      *string `json:"company,omitempty" validate:"omitnil,max=200"`
	Description  *string `json:"description,omitempty"`
	Requirements *string `json:"requirements,omitempty"`
}

// Validate validates the patch.
func (p *JobPostingPatch) Validate() error {
	if err := requireNonBlank("title", p.Title); err != nil {
		return err
	}
	return fromValidator(validatorInstance().Struct(p))
}

// Apply merges the patch into jp.
func (p *JobPostingPatch) Apply(jp *JobPosting) {
	if p.Title != nil {
		jp.Title = strings.TrimSpace(*p.Title)
	}
	if p.Company != nil {
		jp.Company = strings.TrimSpace(*p.Company)
	}
	if p.Description != nil {
		jp.Description = *p.Description
	}
	if p.Requirements != nil {
		jp.Requirements = *p.Requirements
	}
}

func requireNonBlank(field string, value *string) error {
	if value != nil && strings.TrimSpace(*value) == "" {
		return &ValidationError{Field: field, Message: "must not be empty"}
	}
	return nil
}

// BoolOr dereferences b, returning def when b is nil.
func BoolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

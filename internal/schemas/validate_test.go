package schemas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateResumeJSON_Sample(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "schemas", "testdata", "resume.json"))
	require.NoError(t, err)

	assert.NoError(t, ValidateResumeJSON(data))
}

func TestValidateResumeJSON_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{
			name:  "missing title",
			doc:   `{"sections": []}`,
			field: "(root)",
		},
		{
			name:  "unknown section type",
			doc:   `{"title": "R", "sections": [{"title": "S", "section_type": "hobbies"}]}`,
			field: "sections.0.section_type",
		},
		{
			name:  "empty item content",
			doc:   `{"title": "R", "sections": [{"title": "S", "items": [{"content": ""}]}]}`,
			field: "sections.0.items.0.content",
		},
		{
			name:  "wrong type",
			doc:   `{"title": "R", "is_active": "yes"}`,
			field: "is_active",
		},
		{
			name:  "order is not importable",
			doc:   `{"title": "R", "sections": [{"title": "S", "order": 3}]}`,
			field: "sections.0",
		},
		{
			name:  "malformed json",
			doc:   `{ invalid json }`,
			field: "(root)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResumeJSON([]byte(tt.doc))
			require.Error(t, err)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.NotEmpty(t, validationErr.Errors)

			fields := make([]string, 0, len(validationErr.Errors))
			for _, fe := range validationErr.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "1. name: is required")
	assert.Contains(t, errorMsg, "2. age: must be a number")
}

func TestSchemaLoadError_Unwrap(t *testing.T) {
	cause := assert.AnError
	err := &SchemaLoadError{Path: "x.json", Message: "bad", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "x.json")
}

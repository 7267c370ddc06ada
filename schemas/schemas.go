// Package schemas holds the JSON Schemas shipped with the binary.
package schemas

import _ "embed"

// Resume is the schema for resume import documents.
//
//go:embed resume.schema.json
var Resume []byte

// Package rendering compiles resume trees into LaTeX source and renders that
// source into PDF through an external TeX engine.
package rendering

import (
	"errors"
	"fmt"
)

// TemplateError represents an error parsing or executing a LaTeX template
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// Code identifies the class of a render failure. Values are stable and are
// returned to API clients.
type Code string

// Render failure codes
const (
	CodeEngineNotFound Code = "engine_not_found"
	CodeEngineFailed   Code = "engine_failed"
	CodeEngineTimeout  Code = "engine_timeout"
	CodeIO             Code = "io_error"
)

// RenderError reports a failure of the typesetting engine. Log holds the
// engine's combined output verbatim when the engine ran.
type RenderError struct {
	Code    Code
	Message string
	Log     string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error (%s): %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("render error (%s): %s", e.Code, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// ErrorCode returns the RenderError code carried by err, or "error" when err
// is not a render failure.
func ErrorCode(err error) string {
	var re *RenderError
	if errors.As(err, &re) {
		return string(re.Code)
	}
	return "error"
}

// EscapeInvariantError means escaped text still contains a reserved
// character outside an escape sequence. It indicates a bug in the escaper,
// never bad user input.
type EscapeInvariantError struct {
	Field    string
	Position int
	Char     rune
}

func (e *EscapeInvariantError) Error() string {
	return fmt.Sprintf("unescaped %q at byte %d of %s", e.Char, e.Position, e.Field)
}

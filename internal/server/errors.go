package server

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string              `json:"error"`
	Code    string              `json:"code,omitempty"`
	Field   string              `json:"field,omitempty"`
	Log     string              `json:"log,omitempty"`
	Details []schemas.FieldError `json:"details,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		ve  *types.ValidationError
		sve *schemas.ValidationError
		re  *rendering.RenderError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &sve):
		return http.StatusBadRequest
	case store.IsNotFound(err):
		return http.StatusNotFound
	case store.IsConflict(err):
		return http.StatusConflict
	case errors.As(err, &re):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status and body. Internal failures are logged
// with their cause and answered with a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	body := errorBody{Error: err.Error()}

	var (
		ve  *types.ValidationError
		sve *schemas.ValidationError
		re  *rendering.RenderError
		ei  *rendering.EscapeInvariantError
	)
	switch {
	case errors.As(err, &ve):
		body.Error = ve.Message
		body.Field = ve.Field
	case errors.As(err, &sve):
		body.Error = "document does not match the resume schema"
		body.Details = sve.Errors
	case errors.As(err, &re):
		body.Error = re.Message
		body.Code = string(re.Code)
		body.Log = re.Log
	case errors.As(err, &ei):
		body.Error = "internal error"
		body.Code = "escape_invariant"
	case status == http.StatusInternalServerError:
		body.Error = "internal error"
	}

	if status >= http.StatusInternalServerError {
		s.log.WithFields(logrus.Fields{
			"request_id": middleware.GetRequestID(r.Context()),
			"status":     status,
		}).WithError(err).Error("request failed")
	}
	s.jsonResponse(w, status, body)
}

// errorResponse writes an error JSON response with a fixed message.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, errorBody{Error: message})
}

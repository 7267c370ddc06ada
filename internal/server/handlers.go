package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/types"
)

// maxBodyBytes bounds request bodies; imports are the largest payload.
const maxBodyBytes = 2 << 20

// pinger is implemented by stores backed by a remote database.
type pinger interface {
	Ping(ctx context.Context) error
}

// handleHealth reports liveness and, for database stores, connectivity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.content.Store().(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			s.log.WithError(err).Warn("health check: database unreachable")
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.WithError(err).Warn("error encoding JSON response")
	}
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &types.ValidationError{Message: "request body is required"}
		}
		return &types.ValidationError{Message: "invalid request body: " + err.Error()}
	}
	if dec.More() {
		return &types.ValidationError{Message: "request body must contain a single JSON object"}
	}
	return nil
}

// pathID parses the {name} path value as a UUID.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.PathValue(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &types.ValidationError{Field: name, Message: fmt.Sprintf("invalid id %q", raw)}
	}
	return id, nil
}

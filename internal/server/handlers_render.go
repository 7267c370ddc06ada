package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-builder/internal/server/middleware"
)

// LatexResponse is returned by POST /resumes/{id}/latex.
type LatexResponse struct {
	ResumeID uuid.UUID `json:"resume_id"`
	Latex    string    `json:"latex"`
}

// compile snapshots the tree and compiles it, recording compile metrics.
func (s *Server) compile(ctx context.Context, resumeID uuid.UUID) (string, error) {
	tree, err := s.content.Tree(ctx, resumeID)
	if err != nil {
		return "", err
	}
	start := time.Now()
	source, err := s.compiler.Compile(tree)
	s.metrics.ObserveCompile(time.Since(start), err)
	return source, err
}

func (s *Server) handleLatex(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	source, err := s.compile(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, LatexResponse{ResumeID: id, Latex: source})
}

// handlePDF compiles and renders the resume; the renderer may serve the
// bytes from cache.
func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	source, err := s.compile(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	start := time.Now()
	pdf, err := s.renderer.Render(r.Context(), source)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.WithFields(logrus.Fields{
		"request_id": middleware.GetRequestID(r.Context()),
		"resume_id":  id,
		"bytes":      len(pdf),
		"elapsed_ms": time.Since(start).Milliseconds(),
	}).Info("pdf rendered")

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="resume-`+id.String()+`.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		s.log.WithError(err).Warn("failed to write pdf response")
	}
}

package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/matching"
	"github.com/jonathan/resume-builder/internal/types"
)

// AnalysisResponse pairs an analysis with the posting it was computed for.
type AnalysisResponse struct {
	JobPostingID uuid.UUID `json:"job_posting_id"`
	types.Analysis
}

func (s *Server) handleListJobPostings(w http.ResponseWriter, r *http.Request) {
	postings, err := s.content.ListJobPostings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if postings == nil {
		postings = []types.JobPosting{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"job_postings": postings, "count": len(postings)})
}

func (s *Server) handleCreateJobPosting(w http.ResponseWriter, r *http.Request) {
	var req types.CreateJobPostingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	posting, err := s.content.CreateJobPosting(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, posting)
}

func (s *Server) handleGetJobPosting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	posting, err := s.content.GetJobPosting(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, posting)
}

func (s *Server) handleUpdateJobPosting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var patch types.JobPostingPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	posting, err := s.content.UpdateJobPosting(r.Context(), id, &patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, posting)
}

func (s *Server) handleDeleteJobPosting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.content.DeleteJobPosting(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAnalyzePosting scores one resume (?resume_id=) against one posting
// and persists the result as the pair's Match.
func (s *Server) handleAnalyzePosting(w http.ResponseWriter, r *http.Request) {
	postingID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rawResume := r.URL.Query().Get("resume_id")
	resumeID, err := uuid.Parse(rawResume)
	if err != nil {
		s.writeError(w, r, &types.ValidationError{Field: "resume_id", Message: "a valid resume_id query parameter is required"})
		return
	}

	posting, err := s.content.GetJobPosting(r.Context(), postingID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tree, err := s.content.Tree(r.Context(), resumeID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	analysis := matching.AnalyzeResume(tree, posting)
	s.metrics.ObserveMatch(analysis.MatchScore)
	if _, err := s.content.RecordMatch(r.Context(), resumeID, postingID, analysis); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, AnalysisResponse{JobPostingID: postingID, Analysis: analysis})
}

// handleAnalyzeResume scores a resume against every stored posting. Results
// are advisory and not persisted.
func (s *Server) handleAnalyzeResume(w http.ResponseWriter, r *http.Request) {
	resumeID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tree, err := s.content.Tree(r.Context(), resumeID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	postings, err := s.content.ListJobPostings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ptrs := make([]*types.JobPosting, len(postings))
	for i := range postings {
		ptrs[i] = &postings[i]
	}
	analyses, err := matching.AnalyzeAll(r.Context(), tree, ptrs, s.matchConcurrency)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	results := make([]AnalysisResponse, len(analyses))
	for i, a := range analyses {
		s.metrics.ObserveMatch(a.MatchScore)
		results[i] = AnalysisResponse{JobPostingID: postings[i].ID, Analysis: a}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"resume_id": resumeID, "results": results})
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	resumeID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	matches, err := s.content.ListMatches(r.Context(), resumeID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if matches == nil {
		matches = []types.Match{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"matches": matches, "count": len(matches)})
}

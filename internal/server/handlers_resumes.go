package server

import (
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
)

// ReorderRequest is the body of the order endpoints: the complete child id
// list in the desired order.
type ReorderRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	resumes, err := s.content.ListResumes(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if resumes == nil {
		resumes = []types.Resume{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"resumes": resumes, "count": len(resumes)})
}

func (s *Server) handleCreateResume(w http.ResponseWriter, r *http.Request) {
	var req types.CreateResumeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resume, err := s.content.CreateResume(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, resume)
}

// handleImportResume creates a whole tree from a schema-checked document.
func (s *Server) handleImportResume(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, &types.ValidationError{Message: "failed to read request body: " + err.Error()})
		return
	}
	resume, err := s.content.ImportResume(r.Context(), data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, resume)
}

// handleGetResume returns the full tree, children sorted by order.
func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resume, err := s.content.Tree(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resume)
}

func (s *Server) handleUpdateResume(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var patch types.ResumePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	resume, err := s.content.UpdateResume(r.Context(), id, &patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resume)
}

func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.content.DeleteResume(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateSection(w http.ResponseWriter, r *http.Request) {
	resumeID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req types.CreateSectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	section, err := s.content.AddSection(r.Context(), resumeID, &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, section)
}

func (s *Server) handleUpdateSection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var patch types.SectionPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	section, err := s.content.UpdateSection(r.Context(), id, &patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, section)
}

func (s *Server) handleToggleSection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	section, err := s.content.ToggleSection(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, section)
}

func (s *Server) handleDeleteSection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.content.DeleteSection(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	sectionID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req types.CreateItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	item, err := s.content.AddItem(r.Context(), sectionID, &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var patch types.ItemPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	item, err := s.content.UpdateItem(r.Context(), id, &patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, item)
}

func (s *Server) handleToggleItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	item, err := s.content.ToggleItem(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.content.DeleteItem(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateSubItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req types.CreateSubItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sub, err := s.content.AddSubItem(r.Context(), itemID, &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, sub)
}

func (s *Server) handleUpdateSubItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var patch types.SubItemPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	sub, err := s.content.UpdateSubItem(r.Context(), id, &patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sub)
}

func (s *Server) handleToggleSubItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sub, err := s.content.ToggleSubItem(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sub)
}

func (s *Server) handleDeleteSubItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.content.DeleteSubItem(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReorder returns the order handler for children of the given parent
// kind. A successful reorder answers 204; the batch is all-or-nothing.
func (s *Server) handleReorder(parent store.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID, err := pathID(r, "id")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		var req ReorderRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if req.IDs == nil {
			s.writeError(w, r, &types.ValidationError{Field: "ids", Message: "is required"})
			return
		}
		if err := s.ordering.Reorder(r.Context(), parent, parentID, req.IDs); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/parsing"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
)

// resumeBody is the wire form of create and update requests. Content stays raw
// so it goes through the same parser as pasted JSON.
type resumeBody struct {
	Title   *string         `json:"title"`
	Content json.RawMessage `json:"content"`
}

// documentErrorResponse is the 400 body for a rejected resume document.
type documentErrorResponse struct {
	Error    string                 `json:"error"`
	Kind     parsing.Kind           `json:"kind"`
	Field    string                 `json:"field,omitempty"`
	Problems []parsing.FieldProblem `json:"problems,omitempty"`
}

// documentError writes a parse failure with its kind and field, or falls back to serviceError.
func (s *Server) documentError(w http.ResponseWriter, action string, err error) {
	var invalid *parsing.ValidationError
	if errors.As(err, &invalid) {
		s.jsonResponse(w, http.StatusBadRequest, documentErrorResponse{
			Error:    invalid.Message,
			Kind:     invalid.Kind,
			Field:    invalid.Field,
			Problems: invalid.Problems,
		})
		return
	}
	s.serviceError(w, action, err)
}

func (s *Server) resumeID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid resume ID")
		return uuid.Nil, false
	}
	return id, true
}

func hasContent(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// handleListResumes lists the user's resumes, most recently updated first.
func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	resumes, err := s.db.ListResumes(r.Context(), userID)
	if err != nil {
		s.serviceError(w, "list resumes", err)
		return
	}
	if resumes == nil {
		resumes = []types.ResumeSummary{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"resumes": resumes,
		"count":   len(resumes),
	})
}

// handleCreateResume stores a new resume.
func (s *Server) handleCreateResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	var body resumeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !hasContent(body.Content) {
		s.errorResponse(w, http.StatusBadRequest, "validation error: Content - required")
		return
	}

	doc, err := parsing.ParseBytes(body.Content)
	if err != nil {
		s.documentError(w, "create resume", err)
		return
	}

	req := types.CreateResumeRequest{Content: doc}
	if body.Title != nil {
		req.Title = *body.Title
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	resume, err := s.db.CreateResume(r.Context(), userID, req.Title, req.Content)
	if err != nil {
		s.serviceError(w, "create resume", err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, resume.Record())
}

// handleGetResume returns one stored resume.
func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := s.resumeID(w, r)
	if !ok {
		return
	}

	resume, err := s.db.GetResume(r.Context(), userID, id)
	if err != nil {
		s.serviceError(w, "get resume", err)
		return
	}
	if resume == nil {
		s.serviceError(w, "get resume", &ErrResumeNotFound{ResumeID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, resume.Record())
}

// handleUpdateResume applies a partial update. Absent fields are left unchanged.
func (s *Server) handleUpdateResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := s.resumeID(w, r)
	if !ok {
		return
	}

	var body resumeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req := types.UpdateResumeRequest{Title: body.Title}
	if hasContent(body.Content) {
		doc, err := parsing.ParseBytes(body.Content)
		if err != nil {
			s.documentError(w, "update resume", err)
			return
		}
		req.Content = doc
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	resume, err := s.db.UpdateResume(r.Context(), userID, id, req.Title, req.Content)
	if err != nil {
		s.serviceError(w, "update resume", err)
		return
	}
	if resume == nil {
		s.serviceError(w, "update resume", &ErrResumeNotFound{ResumeID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, resume.Record())
}

// handleDeleteResume removes a stored resume.
func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := s.resumeID(w, r)
	if !ok {
		return
	}

	deleted, err := s.db.DeleteResume(r.Context(), userID, id)
	if err != nil {
		s.serviceError(w, "delete resume", err)
		return
	}
	if !deleted {
		s.serviceError(w, "delete resume", &ErrResumeNotFound{ResumeID: id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleResumePreview renders a stored resume.
func (s *Server) handleResumePreview(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := s.resumeID(w, r)
	if !ok {
		return
	}

	resume, err := s.db.GetResume(r.Context(), userID, id)
	if err != nil {
		s.serviceError(w, "preview resume", err)
		return
	}
	if resume == nil {
		s.serviceError(w, "preview resume", &ErrResumeNotFound{ResumeID: id})
		return
	}
	s.writeSheet(w, r, rendering.Render(resume.Content))
}

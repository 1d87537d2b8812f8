package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/types"
)

// requireUserID reads the authenticated user from the request context, writing a 401 when absent.
func (s *Server) requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, middleware.UnauthorizedMessage)
		return uuid.Nil, false
	}
	return userID, true
}

// serviceError writes the status HTTPStatus maps err to. Internal errors are logged, not echoed.
func (s *Server) serviceError(w http.ResponseWriter, action string, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[server] %s failed: %v", action, err)
		s.errorResponse(w, status, "Internal server error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// handleGetMe returns the authenticated user's profile.
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	user, err := s.userService.GetProfile(r.Context(), userID)
	if err != nil {
		s.serviceError(w, "get profile", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, user)
}

// handleUpdateMe updates the authenticated user's name and phone.
func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	var req types.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	user, err := s.userService.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		s.serviceError(w, "update profile", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, user)
}

// handleDeleteMe deletes the authenticated user and, by cascade, their resumes.
func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	if err := s.userService.DeleteAccount(r.Context(), userID); err != nil {
		s.serviceError(w, "delete account", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

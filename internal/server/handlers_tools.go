package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/parsing"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
)

// readBody reads the whole request body, writing 413 or 400 on failure.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, false
		}
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	return data, true
}

// writeSheet writes the sheet as JSON, or as a standalone page with format=html.
func (s *Server) writeSheet(w http.ResponseWriter, r *http.Request, sheet *rendering.Sheet) {
	if r.URL.Query().Get("format") != "html" {
		s.jsonResponse(w, http.StatusOK, sheet)
		return
	}

	page, err := rendering.Page(sheet)
	if err != nil {
		s.serviceError(w, "render preview", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, page)
}

// handleParse validates pasted resume JSON. The body is the document itself.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}

	doc, err := parsing.ParseBytes(data)
	if err != nil {
		s.documentError(w, "parse resume", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"document": doc})
}

// handlePreview renders the posted document.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}

	doc, err := parsing.ParseBytes(data)
	if err != nil {
		s.documentError(w, "preview", err)
		return
	}
	s.writeSheet(w, r, rendering.Render(doc))
}

// handlePreviewQuery renders the document carried in the data query parameter.
func (s *Server) handlePreviewQuery(w http.ResponseWriter, r *http.Request) {
	doc, err := parsing.FromQuery(r.URL.Query())
	if err != nil {
		s.documentError(w, "preview", err)
		return
	}
	s.writeSheet(w, r, rendering.Render(doc))
}

// handleImprove rewrites one field's text.
func (s *Server) handleImprove(w http.ResponseWriter, r *http.Request) {
	if s.improver == nil {
		s.serviceError(w, "improve", &ErrNotConfigured{Feature: "field improvement"})
		return
	}

	var req types.ImproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	resp, err := s.improver.Improve(r.Context(), req)
	if err != nil {
		s.serviceError(w, "improve", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleExportPrint returns the print document, or with output=pdf the document printed by Chrome.
func (s *Server) handleExportPrint(w http.ResponseWriter, r *http.Request) {
	exporter := s.htmlExporter
	if r.URL.Query().Get("output") == "pdf" {
		exporter = s.printExporter
	}
	s.export(w, r, "print export", exporter)
}

// handleExportPDF returns the rasterized multi-page PDF.
func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "PDF export", s.pdfExporter)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request, feature string, exporter export.Exporter) {
	if exporter == nil {
		s.serviceError(w, "export", &ErrNotConfigured{Feature: feature})
		return
	}

	var req types.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	artifact, err := exporter.Export(r.Context(), export.Snapshot{HTML: req.HTML, FullName: req.FullName})
	if err != nil {
		var renderErr *export.RenderingError
		if errors.As(err, &renderErr) {
			s.errorResponse(w, HTTPStatus(err), renderErr.Error())
			return
		}
		s.serviceError(w, "export", err)
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	if artifact.Pages > 0 {
		w.Header().Set("X-Page-Count", strconv.Itoa(artifact.Pages))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
}

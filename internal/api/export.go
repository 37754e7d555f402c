package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"syllabus-content-service/internal/models"
	"syllabus-content-service/internal/pipeline"
	"syllabus-content-service/internal/render"
	"syllabus-content-service/internal/store"
)

type templatesResponse struct {
	Templates []models.Template `json:"templates"`
	Total     int               `json:"total"`
}

type exportsResponse struct {
	Exports []pipeline.ExportListItem `json:"exports"`
	pageInfo
}

type formatEntry struct {
	Value              string   `json:"value"`
	Label              string   `json:"label"`
	Description        string   `json:"description"`
	Extensions         []string `json:"extensions"`
	SupportsImages     bool     `json:"supports_images"`
	SupportsFormatting bool     `json:"supports_formatting"`
	Available          bool     `json:"available"`
}

var formats = []formatEntry{
	{models.FormatPDF, "PDF", "Portable Document Format - ideal para impresión y distribución", []string{".pdf"}, true, true, false},
	{models.FormatDOCX, "Microsoft Word", "Documento Word editable", []string{".docx"}, true, true, false},
	{models.FormatLaTeX, "LaTeX", "Código LaTeX para compilación académica", []string{".tex"}, true, true, false},
	{models.FormatHTML, "HTML", "Página web estática", []string{".html"}, true, true, false},
	{models.FormatMarkdown, "Markdown", "Texto plano con formato Markdown", []string{".md"}, false, true, false},
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.store.ListTemplates(r.Context(), r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, templatesResponse{Templates: templates, Total: len(templates)})
}

func (s *Server) handleExportIndividual(w http.ResponseWriter, r *http.Request) {
	var req pipeline.IndividualRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	ticket, err := s.exporter.Individual(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ticket)
}

func (s *Server) handleExportCombined(w http.ResponseWriter, r *http.Request) {
	var req pipeline.CombinedRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	ticket, err := s.exporter.Combined(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ticket)
}

func (s *Server) handleExportStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.exporter.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	d, err := s.exporter.Download(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer d.Body.Close()

	w.Header().Set("Content-Type", d.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.Filename))
	if d.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(d.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, d.Body); err != nil {
		s.log.Warn("download interrupted",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("filename", d.Filename),
			zap.Error(err))
	}
}

func (s *Server) handleListExports(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParams(r, 10, 50)
	if !ok {
		badRequest(w, "invalid page or limit")
		return
	}
	q := r.URL.Query()
	items, total, err := s.exporter.List(r.Context(), store.ExportFilter{
		Page:   page,
		Status: q.Get("status"),
		Format: q.Get("format"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exportsResponse{Exports: items, pageInfo: newPageInfo(page, total)})
}

// handleFormats lists the catalogue; available marks the formats an export can render.
func (s *Server) handleFormats(w http.ResponseWriter, _ *http.Request) {
	out := make([]formatEntry, len(formats))
	for i, f := range formats {
		f.Available = render.Supported(f.Value)
		out[i] = f
	}
	writeJSON(w, http.StatusOK, map[string]any{"formats": out})
}

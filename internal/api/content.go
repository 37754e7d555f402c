package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"syllabus-content-service/internal/models"
	"syllabus-content-service/internal/pipeline"
	"syllabus-content-service/internal/provider"
	"syllabus-content-service/internal/store"
)

var validate = validator.New()

type contentsResponse struct {
	Contents []models.Content `json:"contents"`
	pageInfo
}

type providersResponse struct {
	Providers []provider.Info `json:"providers"`
}

type catalogEntry struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

var contentTypes = []catalogEntry{
	{models.ContentTypeClassSession, "Sesión de Clase", "Sesión completa de clase con objetivos, desarrollo y evaluación"},
	{models.ContentTypeStudyGuide, "Guía de Estudio", "Material de estudio con resúmenes, ejercicios y autoevaluación"},
	{models.ContentTypePresentation, "Presentación", "Contenido estructurado para diapositivas"},
	{models.ContentTypeWorksheet, "Hoja de Trabajo", "Ejercicios prácticos y actividades"},
	{models.ContentTypeAssessment, "Evaluación", "Exámenes, quizzes y rúbricas"},
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req := pipeline.GenerateRequest{Configuration: models.DefaultGenerationConfig()}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	ticket, err := s.generator.Create(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ticket)
}

func (s *Server) handleGenerationStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.generator.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleListContents(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParams(r, 10, 100)
	if !ok {
		badRequest(w, "invalid page or limit")
		return
	}
	q := r.URL.Query()
	contents, total, err := s.store.ListContents(r.Context(), store.ContentFilter{
		Page:        page,
		DocumentID:  q.Get("document_id"),
		ContentType: q.Get("content_type"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contentsResponse{Contents: contents, pageInfo: newPageInfo(page, total)})
}

func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetContent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleUpdateContent applies a partial edit and bumps the content version.
func (s *Server) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	var patch models.ContentPatch
	if err := decodeJSON(r, &patch); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if err := validate.Struct(patch); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", pipeline.ErrValidation, err))
		return
	}
	c, err := s.store.UpdateContent(r.Context(), chi.URLParam(r, "id"), patch, time.Now().UTC())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeactivateContent(r.Context(), id, time.Now().UTC()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Contenido eliminado", "content_id": id})
}

func (s *Server) handleContentTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"content_types": contentTypes})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, providersResponse{Providers: s.providers.List(r.Context())})
}

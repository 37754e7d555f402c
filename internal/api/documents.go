package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"syllabus-content-service/internal/models"
)

type documentMetadata struct {
	EducationalLevel string `json:"educational_level"`
	Subject          string `json:"subject"`
	CourseCode       string `json:"course_code"`
}

type createDocumentRequest struct {
	Filename    string `json:"filename"`
	TextContent string `json:"text_content"`
	documentMetadata
}

type documentsResponse struct {
	Documents []models.Document `json:"documents"`
	pageInfo
}

// textExtensions are the uploads whose bytes are used as the document text.
var textExtensions = map[string]bool{".txt": true, ".md": true, ".markdown": true, "": true}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	var req createDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		if tooLarge(err) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "document too large"})
			return
		}
		badRequest(w, "invalid json")
		return
	}
	if strings.TrimSpace(req.TextContent) == "" {
		badRequest(w, "text_content is required")
		return
	}
	if req.Filename == "" {
		req.Filename = "syllabus.txt"
	}
	s.saveDocument(w, r, req.Filename, "text/plain", []byte(req.TextContent), req.documentMetadata)
}

// handleUploadDocument accepts a multipart "file" with an optional JSON "metadata" field.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		badRequest(w, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "file is required")
		return
	}
	defer file.Close()

	var meta documentMetadata
	if raw := r.FormValue("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			badRequest(w, "invalid metadata: "+err.Error())
			return
		}
	}
	if !textExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
		badRequest(w, "only text documents are supported")
		return
	}
	body, err := io.ReadAll(file)
	if err != nil {
		if tooLarge(err) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "file too large"})
			return
		}
		s.writeError(w, r, err)
		return
	}
	if !utf8.Valid(body) {
		badRequest(w, "document is not valid UTF-8 text")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = "text/plain"
	}
	s.saveDocument(w, r, header.Filename, contentType, body, meta)
}

func (s *Server) saveDocument(w http.ResponseWriter, r *http.Request, original, contentType string, body []byte, meta documentMetadata) {
	doc, err := s.store.CreateDocument(r.Context(), models.Document{
		Filename:         uuid.NewString() + filepath.Ext(original),
		OriginalFilename: original,
		ContentType:      contentType,
		FileSize:         int64(len(body)),
		TextContent:      string(body),
		Status:           models.DocumentProcessed,
		EducationalLevel: meta.EducationalLevel,
		Subject:          meta.Subject,
		CourseCode:       meta.CourseCode,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParams(r, 10, 100)
	if !ok {
		badRequest(w, "invalid page or limit")
		return
	}
	docs, total, err := s.store.ListDocuments(r.Context(), page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	for i := range docs {
		docs[i].TextContent = ""
	}
	writeJSON(w, http.StatusOK, documentsResponse{Documents: docs, pageInfo: newPageInfo(page, total)})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteDocument(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Documento eliminado", "document_id": id})
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

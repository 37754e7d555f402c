package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"syllabus-content-service/internal/config"
	"syllabus-content-service/internal/logging"
	"syllabus-content-service/internal/pipeline"
	"syllabus-content-service/internal/provider"
	"syllabus-content-service/internal/ratelimit"
	"syllabus-content-service/internal/store"
	"syllabus-content-service/internal/telemetry"
	"syllabus-content-service/internal/worker"
)

// ProviderLister reports the registered AI providers.
type ProviderLister interface {
	List(ctx context.Context) []provider.Info
}

// Server wires HTTP handlers for the content API.
type Server struct {
	cfg       config.Config
	store     store.Store
	generator *pipeline.Generator
	exporter  *pipeline.Exporter
	providers ProviderLister
	limiter   ratelimit.Limiter
	log       *zap.Logger
}

// New constructs the API server. limiter may be nil to disable rate limiting.
func New(cfg config.Config, st store.Store, gen *pipeline.Generator, exp *pipeline.Exporter, providers ProviderLister, limiter ratelimit.Limiter, log *zap.Logger) *Server {
	if log == nil {
		log = zap.L()
	}
	return &Server{
		cfg:       cfg,
		store:     st,
		generator: gen,
		exporter:  exp,
		providers: providers,
		limiter:   limiter,
		log:       log,
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logging.RequestLogger(s.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/metrics", telemetry.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/documents", s.handleCreateDocument)
		r.Post("/documents/upload", s.handleUploadDocument)
		r.Get("/documents", s.handleListDocuments)
		r.Get("/documents/{id}", s.handleGetDocument)
		r.Delete("/documents/{id}", s.handleDeleteDocument)

		r.With(s.rateLimit("generate")).Post("/content/generate", s.handleGenerate)
		r.Get("/content/generation/{id}", s.handleGenerationStatus)
		r.Get("/content/types", s.handleContentTypes)
		r.Get("/content", s.handleListContents)
		r.Get("/content/{id}", s.handleGetContent)
		r.Put("/content/{id}", s.handleUpdateContent)
		r.Delete("/content/{id}", s.handleDeleteContent)
		r.Get("/ai/providers", s.handleProviders)

		r.Get("/templates", s.handleListTemplates)
		r.With(s.rateLimit("export")).Post("/export/individual", s.handleExportIndividual)
		r.With(s.rateLimit("export")).Post("/export/combined", s.handleExportCombined)
		r.Get("/export/{id}", s.handleExportStatus)
		r.Get("/export/{id}/download", s.handleDownload)
		r.Get("/exports", s.handleListExports)
		r.Get("/formats", s.handleFormats)
	})
	return r
}

func (s *Server) rateLimit(scope string) func(http.Handler) http.Handler {
	return ratelimit.Middleware(s.limiter, scope, s.log)
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrNotFound), errors.Is(err, pipeline.ErrArtifactMissing):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrValidation), errors.Is(err, pipeline.ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrExpired):
		return http.StatusGone
	case errors.Is(err, worker.ErrQueueFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		msg = "internal error"
	}
	writeJSON(w, code, errorResponse{Error: msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}

// pageParams reads page and limit, clamping limit to maxLimit.
func pageParams(r *http.Request, defLimit, maxLimit int) (store.Page, bool) {
	page, limit := 1, defLimit
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return store.Page{}, false
		}
		page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			return store.Page{}, false
		}
		limit = n
	}
	return store.Page{Page: page, Limit: limit}, true
}

type pageInfo struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

func newPageInfo(p store.Page, total int) pageInfo {
	return pageInfo{
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
		Pages: (total + p.Limit - 1) / p.Limit,
	}
}

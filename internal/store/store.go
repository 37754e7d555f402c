package store

import (
	"context"
	"errors"
	"time"

	"syllabus-content-service/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist (or is soft-deleted).
	ErrNotFound = errors.New("record not found")
	// ErrTerminal is returned when a write targets a job that already completed or failed.
	ErrTerminal = errors.New("job already in terminal state")
)

// Store is the job record store shared by the API and the pipelines.
// Every job write is a single field-set update; checkpoint writes come from one worker per job.
type Store interface {
	CreateDocument(ctx context.Context, doc models.Document) (models.Document, error)
	GetDocument(ctx context.Context, id string) (models.Document, error)
	ListDocuments(ctx context.Context, page Page) ([]models.Document, int, error)
	DeleteDocument(ctx context.Context, id string) error

	CreateGeneration(ctx context.Context, p CreateGenerationParams) (models.Generation, error)
	GetGeneration(ctx context.Context, id string) (models.Generation, error)
	StartGeneration(ctx context.Context, id string, progress int, at time.Time) error
	SetGenerationProgress(ctx context.Context, id string, progress int) error
	CompleteGeneration(ctx context.Context, id string, content models.Content, at time.Time) (models.Content, error)
	FailGeneration(ctx context.Context, id string, message string, at time.Time) error

	GetContent(ctx context.Context, id string) (models.Content, error)
	GetContents(ctx context.Context, ids []string) ([]models.Content, error)
	ListContents(ctx context.Context, f ContentFilter) ([]models.Content, int, error)
	ListGenerationContents(ctx context.Context, generationID string) ([]models.Content, error)
	UpdateContent(ctx context.Context, id string, patch models.ContentPatch, at time.Time) (models.Content, error)
	DeactivateContent(ctx context.Context, id string, at time.Time) error

	CreateExport(ctx context.Context, p CreateExportParams) (models.Export, error)
	GetExport(ctx context.Context, id string) (models.Export, error)
	StartExport(ctx context.Context, id string, progress int, at time.Time) error
	SetExportProgress(ctx context.Context, id string, progress int) error
	CompleteExport(ctx context.Context, id string, artifact models.Artifact, at time.Time) error
	FailExport(ctx context.Context, id string, message string, at time.Time) error
	ListExports(ctx context.Context, f ExportFilter) ([]models.Export, int, error)

	GetTemplate(ctx context.Context, id string) (models.Template, error)
	ListTemplates(ctx context.Context, format string) ([]models.Template, error)

	Close()
}

// Page selects a 1-based page of a listing.
type Page struct {
	Page  int
	Limit int
}

func (p Page) normalized() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	return p
}

func (p Page) offset() int {
	n := p.normalized()
	return (n.Page - 1) * n.Limit
}

// ContentFilter narrows content listings. Only active contents are ever listed.
type ContentFilter struct {
	Page
	DocumentID  string
	ContentType string
}

// ExportFilter narrows export listings.
type ExportFilter struct {
	Page
	Status string
	Format string
}

// CreateGenerationParams collects inputs required to insert a generation job.
type CreateGenerationParams struct {
	DocumentID          string
	ContentType         string
	Scope               string
	TargetUnit          *string
	TargetSession       *string
	AIProvider          string
	AIModel             string
	Configuration       models.GenerationConfig
	EstimatedCompletion time.Time
	CreatedAt           time.Time
}

// CreateExportParams collects inputs required to insert an export job.
type CreateExportParams struct {
	ExportType          string
	TemplateID          *string
	ContentIDs          []string
	Format              string
	Title               string
	Settings            models.ExportSettings
	EstimatedCompletion time.Time
	CreatedAt           time.Time
	ExpiresAt           time.Time
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"syllabus-content-service/internal/artifact"
	"syllabus-content-service/internal/models"
	"syllabus-content-service/internal/render"
	"syllabus-content-service/internal/store"
	"syllabus-content-service/internal/telemetry"
	"syllabus-content-service/internal/worker"
)

const (
	individualETA = 2 * time.Minute
	combinedETA   = 3 * time.Minute
	stampLayout   = "20060102_150405"
)

// DownloadURL is the retrieval handle of an export.
func DownloadURL(exportID string) string {
	return fmt.Sprintf("/api/v1/export/%s/download", exportID)
}

// IndividualRequest exports one content item.
type IndividualRequest struct {
	ContentID  string                 `json:"content_id" validate:"required"`
	Format     string                 `json:"format" validate:"required"`
	TemplateID *string                `json:"template_id,omitempty"`
	Settings   *models.ExportSettings `json:"export_settings,omitempty"`
}

// CombinedRequest exports several contents, in the given order, as one document.
type CombinedRequest struct {
	ContentIDs []string               `json:"content_ids" validate:"required,min=1,dive,required"`
	Format     string                 `json:"format" validate:"required"`
	TemplateID *string                `json:"template_id,omitempty"`
	Settings   *models.ExportSettings `json:"export_settings,omitempty"`
	Title      string                 `json:"title,omitempty" validate:"max=500"`
}

// ExportTicket is returned when an export job is accepted.
type ExportTicket struct {
	ExportID            string    `json:"export_id"`
	Status              string    `json:"status"`
	EstimatedCompletion time.Time `json:"estimated_completion"`
}

// ExportStatus is the pollable view of an export job.
type ExportStatus struct {
	ExportID     string     `json:"export_id"`
	Status       string     `json:"status"`
	Progress     int        `json:"progress"`
	DownloadURL  *string    `json:"download_url,omitempty"`
	Filename     *string    `json:"filename,omitempty"`
	FileSize     *int64     `json:"file_size,omitempty"`
	ExpiresAt    time.Time  `json:"expires_at"`
	ErrorMessage *string    `json:"error_message"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at"`
}

// ExportListItem is one row of the export listing.
type ExportListItem struct {
	ExportID   string    `json:"export_id"`
	ExportType string    `json:"export_type"`
	Format     string    `json:"format"`
	Status     string    `json:"status"`
	Filename   *string   `json:"filename,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Download is an opened artifact ready to stream.
type Download struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
	Size        int64
}

// Exporter runs the export state machine:
// started -> in_progress (10, 30, 60) -> completed (100) | failed.
type Exporter struct {
	store   store.Store
	storage artifact.Storage
	pool    *worker.Pool
	now     func() time.Time
	log     *zap.SugaredLogger
}

// NewExporter wires an exporter and registers its job handler on pool.
func NewExporter(st store.Store, storage artifact.Storage, pool *worker.Pool, opts ...Option) *Exporter {
	o := buildOptions(opts)
	e := &Exporter{
		store:   st,
		storage: storage,
		pool:    pool,
		now:     o.now,
		log:     o.log.Named("export").Sugar(),
	}
	pool.RegisterHandler(KindExport, e.run)
	return e
}

// Individual validates the content and template, records the job, and submits it.
func (e *Exporter) Individual(ctx context.Context, req IndividualRequest) (ExportTicket, error) {
	if err := validateRequest(req); err != nil {
		return ExportTicket{}, err
	}
	if _, err := e.store.GetContent(ctx, req.ContentID); err != nil {
		return ExportTicket{}, err
	}
	settings, err := e.resolveSettings(ctx, req.TemplateID, req.Settings)
	if err != nil {
		return ExportTicket{}, err
	}
	return e.create(ctx, store.CreateExportParams{
		ExportType: models.ExportIndividual,
		TemplateID: req.TemplateID,
		ContentIDs: []string{req.ContentID},
		Format:     req.Format,
		Settings:   settings,
	}, individualETA)
}

// Combined checks every id resolves to a distinct active content before recording the job.
func (e *Exporter) Combined(ctx context.Context, req CombinedRequest) (ExportTicket, error) {
	if err := validateRequest(req); err != nil {
		return ExportTicket{}, err
	}
	found, err := e.store.GetContents(ctx, req.ContentIDs)
	if err != nil {
		return ExportTicket{}, err
	}
	if len(found) != len(req.ContentIDs) {
		return ExportTicket{}, fmt.Errorf("%d of %d contents found: %w", len(found), len(req.ContentIDs), ErrNotFound)
	}
	settings, err := e.resolveSettings(ctx, req.TemplateID, req.Settings)
	if err != nil {
		return ExportTicket{}, err
	}
	return e.create(ctx, store.CreateExportParams{
		ExportType: models.ExportCombined,
		TemplateID: req.TemplateID,
		ContentIDs: req.ContentIDs,
		Format:     req.Format,
		Title:      req.Title,
		Settings:   settings,
	}, combinedETA)
}

// resolveSettings layers explicit settings over the template defaults.
func (e *Exporter) resolveSettings(ctx context.Context, templateID *string, explicit *models.ExportSettings) (models.ExportSettings, error) {
	var s models.ExportSettings
	if explicit != nil {
		s = *explicit
	}
	if templateID == nil || *templateID == "" {
		return s, nil
	}
	tpl, err := e.store.GetTemplate(ctx, *templateID)
	if err != nil {
		return models.ExportSettings{}, err
	}
	return s.MergeUnder(tpl.DefaultSettings), nil
}

func (e *Exporter) create(ctx context.Context, p store.CreateExportParams, eta time.Duration) (ExportTicket, error) {
	slot, err := e.pool.Reserve()
	if err != nil {
		return ExportTicket{}, err
	}
	now := e.now().UTC()
	p.CreatedAt = now
	p.EstimatedCompletion = now.Add(eta)
	p.ExpiresAt = now.Add(models.ArtifactTTL)
	if p.TemplateID != nil && *p.TemplateID == "" {
		p.TemplateID = nil
	}

	exp, err := e.store.CreateExport(ctx, p)
	if err != nil {
		slot.Release()
		return ExportTicket{}, fmt.Errorf("create export: %w", err)
	}
	if err := slot.Submit(KindExport, exp.ID); err != nil {
		return ExportTicket{}, fmt.Errorf("submit export: %w", err)
	}
	return ExportTicket{
		ExportID:            exp.ID,
		Status:              exp.Status,
		EstimatedCompletion: *exp.EstimatedCompletion,
	}, nil
}

// Status reports an export job.
func (e *Exporter) Status(ctx context.Context, id string) (ExportStatus, error) {
	exp, err := e.store.GetExport(ctx, id)
	if err != nil {
		return ExportStatus{}, err
	}
	return ExportStatus{
		ExportID:     exp.ID,
		Status:       exp.Status,
		Progress:     exp.Progress,
		DownloadURL:  exp.DownloadURL,
		Filename:     exp.Filename,
		FileSize:     exp.FileSize,
		ExpiresAt:    exp.ExpiresAt,
		ErrorMessage: exp.ErrorMessage,
		CreatedAt:    exp.CreatedAt,
		CompletedAt:  exp.CompletedAt,
	}, nil
}

// List pages through exports, newest first.
func (e *Exporter) List(ctx context.Context, f store.ExportFilter) ([]ExportListItem, int, error) {
	exports, total, err := e.store.ListExports(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ExportListItem, 0, len(exports))
	for _, x := range exports {
		out = append(out, ExportListItem{
			ExportID:   x.ID,
			ExportType: x.ExportType,
			Format:     x.Format,
			Status:     x.Status,
			Filename:   x.Filename,
			CreatedAt:  x.CreatedAt,
		})
	}
	return out, total, nil
}

// FilePath returns the stored artifact location of a downloadable export.
// Checks run in order: job exists, job completed, not expired, file present.
func (e *Exporter) FilePath(ctx context.Context, id string) (string, models.Export, error) {
	exp, err := e.store.GetExport(ctx, id)
	if err != nil {
		return "", models.Export{}, err
	}
	if exp.Status != models.StatusCompleted {
		return "", exp, fmt.Errorf("export %s is %s: %w", id, exp.Status, ErrInvalidState)
	}
	if !e.now().Before(exp.ExpiresAt) {
		return "", exp, fmt.Errorf("export %s expired at %s: %w", id, exp.ExpiresAt.Format(time.RFC3339), ErrExpired)
	}
	if exp.FilePath == nil || *exp.FilePath == "" {
		return "", exp, fmt.Errorf("export %s has no file: %w", id, ErrArtifactMissing)
	}
	ok, err := e.storage.Exists(ctx, *exp.FilePath)
	if err != nil {
		return "", exp, fmt.Errorf("check artifact: %w", err)
	}
	if !ok {
		return "", exp, fmt.Errorf("export %s file missing: %w", id, ErrArtifactMissing)
	}
	return *exp.FilePath, exp, nil
}

// Download runs the retrieval guard and opens the artifact.
func (e *Exporter) Download(ctx context.Context, id string) (Download, error) {
	path, exp, err := e.FilePath(ctx, id)
	if err != nil {
		return Download{}, err
	}
	body, err := e.storage.Open(ctx, path)
	if errors.Is(err, artifact.ErrNotFound) {
		return Download{}, fmt.Errorf("export %s file missing: %w", id, ErrArtifactMissing)
	}
	if err != nil {
		return Download{}, err
	}
	d := Download{Body: body}
	if exp.Filename != nil {
		d.Filename = *exp.Filename
	}
	if exp.FileSize != nil {
		d.Size = *exp.FileSize
	}
	d.ContentType = render.MIMEType(d.Filename)
	return d, nil
}

func (e *Exporter) run(ctx context.Context, id string) error {
	exp, err := e.store.GetExport(ctx, id)
	if err != nil {
		return err
	}
	if err := e.store.StartExport(ctx, id, 10, e.now().UTC()); err != nil {
		return err
	}

	if err := e.process(ctx, exp); err != nil {
		telemetry.JobsFailed.WithLabelValues(KindExport).Inc()
		if ferr := e.store.FailExport(ctx, id, err.Error(), e.now().UTC()); ferr != nil {
			e.log.Errorw("record export failure", "id", id, "error", ferr)
		}
		return err
	}
	telemetry.JobsCompleted.WithLabelValues(KindExport).Inc()
	e.log.Infow("export completed", "id", id, "format", exp.Format, "contents", len(exp.ContentIDs))
	return nil
}

func (e *Exporter) process(ctx context.Context, exp models.Export) error {
	contents, err := e.loadContents(ctx, exp)
	if err != nil {
		return err
	}
	if err := e.store.SetExportProgress(ctx, exp.ID, 30); err != nil {
		return err
	}

	stamp := e.now().Format(stampLayout)
	var filename string
	if exp.ExportType == models.ExportCombined {
		filename = fmt.Sprintf("combined_%s.%s", stamp, exp.Format)
	} else {
		filename = fmt.Sprintf("content_%s_%s.%s", exp.ContentIDs[0], stamp, exp.Format)
	}
	if err := e.store.SetExportProgress(ctx, exp.ID, 60); err != nil {
		return err
	}

	var body []byte
	if exp.ExportType == models.ExportCombined {
		body, err = render.Combined(exp.Format, exp.Title, contents, exp.Settings)
	} else {
		body, err = render.Individual(exp.Format, contents[0], exp.Settings)
	}
	if err != nil {
		return err
	}

	path, size, err := e.storage.Put(ctx, filename, body, render.MIMEType(filename))
	if err != nil {
		return fmt.Errorf("store artifact: %w", err)
	}
	return e.store.CompleteExport(ctx, exp.ID, models.Artifact{
		Filename:    filename,
		FilePath:    path,
		FileSize:    size,
		DownloadURL: DownloadURL(exp.ID),
	}, e.now().UTC())
}

// loadContents returns the export's contents in the order they were requested.
func (e *Exporter) loadContents(ctx context.Context, exp models.Export) ([]models.Content, error) {
	if len(exp.ContentIDs) == 0 {
		return nil, fmt.Errorf("export %s has no contents: %w", exp.ID, ErrValidation)
	}
	if exp.ExportType != models.ExportCombined {
		c, err := e.store.GetContent(ctx, exp.ContentIDs[0])
		if err != nil {
			return nil, err
		}
		return []models.Content{c}, nil
	}

	found, err := e.store.GetContents(ctx, exp.ContentIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Content, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	out := make([]models.Content, 0, len(exp.ContentIDs))
	for _, id := range exp.ContentIDs {
		c, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("content %s: %w", id, ErrNotFound)
		}
		out = append(out, c)
	}
	return out, nil
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"syllabus-content-service/internal/models"
)

// Postgres wraps pgxpool for durable persistence.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// NewPostgres creates a pooled connection to Postgres.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (s *Postgres) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Postgres) CreateDocument(ctx context.Context, doc models.Document) (models.Document, error) {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.Status == "" {
		doc.Status = models.DocumentProcessed
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	doc.UpdatedAt = doc.CreatedAt
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (id, filename, original_filename, content_type, file_size, text_content, status,
			educational_level, subject, course_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
	`, doc.ID, doc.Filename, doc.OriginalFilename, doc.ContentType, doc.FileSize, doc.TextContent, doc.Status,
		doc.EducationalLevel, doc.Subject, doc.CourseCode, doc.CreatedAt)
	if err != nil {
		return models.Document{}, fmt.Errorf("insert document: %w", err)
	}
	return doc, nil
}

const documentColumns = `id, filename, original_filename, content_type, file_size, COALESCE(text_content, ''), status,
	COALESCE(educational_level, ''), COALESCE(subject, ''), COALESCE(course_code, ''), created_at, updated_at`

func scanDocument(row pgx.Row) (models.Document, error) {
	var d models.Document
	err := row.Scan(&d.ID, &d.Filename, &d.OriginalFilename, &d.ContentType, &d.FileSize, &d.TextContent, &d.Status,
		&d.EducationalLevel, &d.Subject, &d.CourseCode, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (s *Postgres) GetDocument(ctx context.Context, id string) (models.Document, error) {
	d, err := scanDocument(s.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
	if err != nil {
		return models.Document{}, notFound("document", id, err)
	}
	return d, nil
}

func (s *Postgres) ListDocuments(ctx context.Context, page Page) ([]models.Document, int, error) {
	page = page.normalized()
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}
	rows, err := s.pool.Query(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		page.Limit, page.offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()
	out := make([]models.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

func (s *Postgres) DeleteDocument(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Postgres) CreateGeneration(ctx context.Context, p CreateGenerationParams) (models.Generation, error) {
	cfgJSON, err := json.Marshal(p.Configuration)
	if err != nil {
		return models.Generation{}, fmt.Errorf("marshal configuration: %w", err)
	}
	id := uuid.New().String()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO generations (id, document_id, content_type, scope, target_unit, target_session, ai_provider, ai_model,
			configuration, status, progress, estimated_completion, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, $11, $12)
	`, id, p.DocumentID, p.ContentType, p.Scope, p.TargetUnit, p.TargetSession, p.AIProvider, p.AIModel,
		cfgJSON, models.StatusStarted, p.EstimatedCompletion, p.CreatedAt)
	if err != nil {
		return models.Generation{}, fmt.Errorf("insert generation: %w", err)
	}
	est := p.EstimatedCompletion
	return models.Generation{
		ID:                  id,
		DocumentID:          p.DocumentID,
		ContentType:         p.ContentType,
		Scope:               p.Scope,
		TargetUnit:          p.TargetUnit,
		TargetSession:       p.TargetSession,
		AIProvider:          p.AIProvider,
		AIModel:             p.AIModel,
		Configuration:       p.Configuration,
		Status:              models.StatusStarted,
		EstimatedCompletion: &est,
		CreatedAt:           p.CreatedAt,
	}, nil
}

func (s *Postgres) GetGeneration(ctx context.Context, id string) (models.Generation, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, document_id, content_type, scope, target_unit, target_session, ai_provider, ai_model, configuration,
			status, progress, error_message, estimated_completion, created_at, started_at, completed_at
		FROM generations WHERE id = $1
	`, id)

	var g models.Generation
	var cfgJSON []byte
	var unit, session, lastErr pgtype.Text
	if err := row.Scan(&g.ID, &g.DocumentID, &g.ContentType, &g.Scope, &unit, &session, &g.AIProvider, &g.AIModel, &cfgJSON,
		&g.Status, &g.Progress, &lastErr, &g.EstimatedCompletion, &g.CreatedAt, &g.StartedAt, &g.CompletedAt); err != nil {
		return models.Generation{}, notFound("generation", id, err)
	}
	if err := json.Unmarshal(cfgJSON, &g.Configuration); err != nil {
		return models.Generation{}, fmt.Errorf("unmarshal configuration: %w", err)
	}
	g.TargetUnit = textPtr(unit)
	g.TargetSession = textPtr(session)
	g.ErrorMessage = textPtr(lastErr)
	return g, nil
}

// guardJob turns a zero-row UPDATE into ErrNotFound or ErrTerminal.
func (s *Postgres) guardJob(ctx context.Context, table, id string, affected int64) error {
	if affected > 0 {
		return nil
	}
	var status string
	err := s.pool.QueryRow(ctx, `SELECT status FROM `+table+` WHERE id = $1`, id).Scan(&status)
	if err != nil {
		return notFound(table, id, err)
	}
	return fmt.Errorf("%s %s: %w", table, id, ErrTerminal)
}

func (s *Postgres) StartGeneration(ctx context.Context, id string, progress int, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE generations SET status = $2, progress = GREATEST(progress, $3), started_at = $4
		WHERE id = $1 AND status NOT IN ($5, $6)
	`, id, models.StatusInProgress, progress, at, models.StatusCompleted, models.StatusFailed)
	if err != nil {
		return fmt.Errorf("start generation: %w", err)
	}
	return s.guardJob(ctx, "generations", id, tag.RowsAffected())
}

func (s *Postgres) SetGenerationProgress(ctx context.Context, id string, progress int) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE generations SET progress = GREATEST(progress, $2)
		WHERE id = $1 AND status NOT IN ($3, $4)
	`, id, progress, models.StatusCompleted, models.StatusFailed)
	if err != nil {
		return fmt.Errorf("update generation progress: %w", err)
	}
	return s.guardJob(ctx, "generations", id, tag.RowsAffected())
}

// CompleteGeneration inserts the content row and closes the job in one transaction.
func (s *Postgres) CompleteGeneration(ctx context.Context, id string, c models.Content, at time.Time) (models.Content, error) {
	sectionsJSON, err := json.Marshal(c.Sections)
	if err != nil {
		return models.Content{}, fmt.Errorf("marshal sections: %w", err)
	}
	metaJSON, err := json.Marshal(c.Metadata)
	if err != nil {
		return models.Content{}, fmt.Errorf("marshal metadata: %w", err)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Content{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	tag, err := tx.Exec(ctx, `
		UPDATE generations SET status = $2, progress = 100, completed_at = $3
		WHERE id = $1 AND status NOT IN ($2, $4)
	`, id, models.StatusCompleted, at, models.StatusFailed)
	if err != nil {
		return models.Content{}, fmt.Errorf("complete generation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.Content{}, s.guardJob(ctx, "generations", id, 0)
	}

	c.ID = uuid.New().String()
	c.GenerationID = id
	c.Version = 1
	c.IsActive = true
	c.CreatedAt = at
	c.UpdatedAt = at
	_, err = tx.Exec(ctx, `
		INSERT INTO contents (id, generation_id, document_id, title, content_type, markdown_content, sections,
			content_metadata, version, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, TRUE, $9, $9)
	`, c.ID, c.GenerationID, c.DocumentID, c.Title, c.ContentType, c.MarkdownContent, sectionsJSON, metaJSON, at)
	if err != nil {
		return models.Content{}, fmt.Errorf("insert content: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Content{}, fmt.Errorf("commit: %w", err)
	}
	return c, nil
}

func (s *Postgres) FailGeneration(ctx context.Context, id string, message string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE generations SET status = $2, error_message = $3, completed_at = $4
		WHERE id = $1 AND status NOT IN ($5, $2)
	`, id, models.StatusFailed, message, at, models.StatusCompleted)
	if err != nil {
		return fmt.Errorf("fail generation: %w", err)
	}
	return s.guardJob(ctx, "generations", id, tag.RowsAffected())
}

const contentColumns = `id, generation_id, document_id, title, content_type, markdown_content, sections,
	content_metadata, version, is_active, created_at, updated_at`

func scanContent(row pgx.Row) (models.Content, error) {
	var c models.Content
	var sectionsJSON, metaJSON []byte
	if err := row.Scan(&c.ID, &c.GenerationID, &c.DocumentID, &c.Title, &c.ContentType, &c.MarkdownContent,
		&sectionsJSON, &metaJSON, &c.Version, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return models.Content{}, err
	}
	if err := json.Unmarshal(sectionsJSON, &c.Sections); err != nil {
		return models.Content{}, fmt.Errorf("unmarshal sections: %w", err)
	}
	if err := json.Unmarshal(metaJSON, &c.Metadata); err != nil {
		return models.Content{}, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return c, nil
}

func collectContents(rows pgx.Rows) ([]models.Content, error) {
	defer rows.Close()
	out := make([]models.Content, 0)
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Postgres) GetContent(ctx context.Context, id string) (models.Content, error) {
	c, err := scanContent(s.pool.QueryRow(ctx, `SELECT `+contentColumns+` FROM contents WHERE id = $1 AND is_active`, id))
	if err != nil {
		return models.Content{}, notFound("content", id, err)
	}
	return c, nil
}

func (s *Postgres) GetContents(ctx context.Context, ids []string) ([]models.Content, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+contentColumns+` FROM contents WHERE id = ANY($1) AND is_active`, ids)
	if err != nil {
		return nil, fmt.Errorf("query contents: %w", err)
	}
	return collectContents(rows)
}

func (s *Postgres) ListContents(ctx context.Context, f ContentFilter) ([]models.Content, int, error) {
	page := f.Page.normalized()
	where := `WHERE is_active AND ($1 = '' OR document_id = $1) AND ($2 = '' OR content_type = $2)`
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contents `+where, f.DocumentID, f.ContentType).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contents: %w", err)
	}
	rows, err := s.pool.Query(ctx, `SELECT `+contentColumns+` FROM contents `+where+` ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		f.DocumentID, f.ContentType, page.Limit, page.offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query contents: %w", err)
	}
	out, err := collectContents(rows)
	return out, total, err
}

func (s *Postgres) ListGenerationContents(ctx context.Context, generationID string) ([]models.Content, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+contentColumns+` FROM contents WHERE generation_id = $1 ORDER BY created_at`, generationID)
	if err != nil {
		return nil, fmt.Errorf("query generation contents: %w", err)
	}
	return collectContents(rows)
}

func (s *Postgres) UpdateContent(ctx context.Context, id string, patch models.ContentPatch, at time.Time) (models.Content, error) {
	var sectionsJSON []byte
	if patch.Sections != nil {
		raw, err := json.Marshal(patch.Sections)
		if err != nil {
			return models.Content{}, fmt.Errorf("marshal sections: %w", err)
		}
		sectionsJSON = raw
	}
	c, err := scanContent(s.pool.QueryRow(ctx, `
		UPDATE contents SET
			title = COALESCE($2, title),
			markdown_content = COALESCE($3, markdown_content),
			sections = COALESCE($4::jsonb, sections),
			version = version + 1,
			updated_at = $5
		WHERE id = $1 AND is_active
		RETURNING `+contentColumns, id, patch.Title, patch.MarkdownContent, sectionsJSON, at))
	if err != nil {
		return models.Content{}, notFound("content", id, err)
	}
	return c, nil
}

func (s *Postgres) DeactivateContent(ctx context.Context, id string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `UPDATE contents SET is_active = FALSE, updated_at = $2 WHERE id = $1 AND is_active`, id, at)
	if err != nil {
		return fmt.Errorf("deactivate content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("content %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Postgres) CreateExport(ctx context.Context, p CreateExportParams) (models.Export, error) {
	idsJSON, err := json.Marshal(p.ContentIDs)
	if err != nil {
		return models.Export{}, fmt.Errorf("marshal content ids: %w", err)
	}
	settingsJSON, err := json.Marshal(p.Settings)
	if err != nil {
		return models.Export{}, fmt.Errorf("marshal export settings: %w", err)
	}
	id := uuid.New().String()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO exports (id, export_type, template_id, content_ids, format, title, export_settings, status, progress,
			expires_at, estimated_completion, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $10, $11)
	`, id, p.ExportType, p.TemplateID, idsJSON, p.Format, p.Title, settingsJSON, models.StatusStarted,
		p.ExpiresAt, p.EstimatedCompletion, p.CreatedAt)
	if err != nil {
		return models.Export{}, fmt.Errorf("insert export: %w", err)
	}
	est := p.EstimatedCompletion
	return models.Export{
		ID:                  id,
		ExportType:          p.ExportType,
		TemplateID:          p.TemplateID,
		ContentIDs:          p.ContentIDs,
		Format:              p.Format,
		Title:               p.Title,
		Settings:            p.Settings,
		Status:              models.StatusStarted,
		ExpiresAt:           p.ExpiresAt,
		EstimatedCompletion: &est,
		CreatedAt:           p.CreatedAt,
	}, nil
}

const exportColumns = `id, export_type, template_id, content_ids, format, title, export_settings, status, progress,
	filename, file_path, file_size, download_url, expires_at, error_message, estimated_completion, created_at,
	started_at, completed_at`

func scanExport(row pgx.Row) (models.Export, error) {
	var e models.Export
	var idsJSON, settingsJSON []byte
	var templateID, filename, filePath, downloadURL, lastErr pgtype.Text
	var fileSize pgtype.Int8
	if err := row.Scan(&e.ID, &e.ExportType, &templateID, &idsJSON, &e.Format, &e.Title, &settingsJSON, &e.Status, &e.Progress,
		&filename, &filePath, &fileSize, &downloadURL, &e.ExpiresAt, &lastErr, &e.EstimatedCompletion, &e.CreatedAt,
		&e.StartedAt, &e.CompletedAt); err != nil {
		return models.Export{}, err
	}
	if err := json.Unmarshal(idsJSON, &e.ContentIDs); err != nil {
		return models.Export{}, fmt.Errorf("unmarshal content ids: %w", err)
	}
	if err := json.Unmarshal(settingsJSON, &e.Settings); err != nil {
		return models.Export{}, fmt.Errorf("unmarshal export settings: %w", err)
	}
	e.TemplateID = textPtr(templateID)
	e.Filename = textPtr(filename)
	e.FilePath = textPtr(filePath)
	e.DownloadURL = textPtr(downloadURL)
	e.ErrorMessage = textPtr(lastErr)
	if fileSize.Valid {
		e.FileSize = &fileSize.Int64
	}
	return e, nil
}

func (s *Postgres) GetExport(ctx context.Context, id string) (models.Export, error) {
	e, err := scanExport(s.pool.QueryRow(ctx, `SELECT `+exportColumns+` FROM exports WHERE id = $1`, id))
	if err != nil {
		return models.Export{}, notFound("export", id, err)
	}
	return e, nil
}

func (s *Postgres) StartExport(ctx context.Context, id string, progress int, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE exports SET status = $2, progress = GREATEST(progress, $3), started_at = $4
		WHERE id = $1 AND status NOT IN ($5, $6)
	`, id, models.StatusInProgress, progress, at, models.StatusCompleted, models.StatusFailed)
	if err != nil {
		return fmt.Errorf("start export: %w", err)
	}
	return s.guardJob(ctx, "exports", id, tag.RowsAffected())
}

func (s *Postgres) SetExportProgress(ctx context.Context, id string, progress int) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE exports SET progress = GREATEST(progress, $2)
		WHERE id = $1 AND status NOT IN ($3, $4)
	`, id, progress, models.StatusCompleted, models.StatusFailed)
	if err != nil {
		return fmt.Errorf("update export progress: %w", err)
	}
	return s.guardJob(ctx, "exports", id, tag.RowsAffected())
}

func (s *Postgres) CompleteExport(ctx context.Context, id string, a models.Artifact, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE exports SET filename = $2, file_path = $3, file_size = $4, download_url = $5,
			status = $6, progress = 100, completed_at = $7
		WHERE id = $1 AND status NOT IN ($6, $8)
	`, id, a.Filename, a.FilePath, a.FileSize, a.DownloadURL, models.StatusCompleted, at, models.StatusFailed)
	if err != nil {
		return fmt.Errorf("complete export: %w", err)
	}
	return s.guardJob(ctx, "exports", id, tag.RowsAffected())
}

func (s *Postgres) FailExport(ctx context.Context, id string, message string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE exports SET status = $2, error_message = $3, completed_at = $4
		WHERE id = $1 AND status NOT IN ($5, $2)
	`, id, models.StatusFailed, message, at, models.StatusCompleted)
	if err != nil {
		return fmt.Errorf("fail export: %w", err)
	}
	return s.guardJob(ctx, "exports", id, tag.RowsAffected())
}

func (s *Postgres) ListExports(ctx context.Context, f ExportFilter) ([]models.Export, int, error) {
	page := f.Page.normalized()
	where := `WHERE ($1 = '' OR status = $1) AND ($2 = '' OR format = $2)`
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM exports `+where, f.Status, f.Format).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count exports: %w", err)
	}
	rows, err := s.pool.Query(ctx, `SELECT `+exportColumns+` FROM exports `+where+` ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		f.Status, f.Format, page.Limit, page.offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query exports: %w", err)
	}
	defer rows.Close()
	out := make([]models.Export, 0)
	for rows.Next() {
		e, err := scanExport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan export: %w", err)
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

const templateColumns = `id, name, COALESCE(description, ''), format, template_content, preview_image, default_settings,
	is_active, is_default, version, COALESCE(author, ''), tags, created_at, updated_at`

func scanTemplate(row pgx.Row) (models.Template, error) {
	var t models.Template
	var preview pgtype.Text
	var settingsJSON, tagsJSON []byte
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Format, &t.TemplateContent, &preview, &settingsJSON,
		&t.IsActive, &t.IsDefault, &t.Version, &t.Author, &tagsJSON, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return models.Template{}, err
	}
	if err := json.Unmarshal(settingsJSON, &t.DefaultSettings); err != nil {
		return models.Template{}, fmt.Errorf("unmarshal default settings: %w", err)
	}
	if err := json.Unmarshal(tagsJSON, &t.Tags); err != nil {
		return models.Template{}, fmt.Errorf("unmarshal tags: %w", err)
	}
	t.PreviewImage = textPtr(preview)
	return t, nil
}

func (s *Postgres) GetTemplate(ctx context.Context, id string) (models.Template, error) {
	t, err := scanTemplate(s.pool.QueryRow(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = $1 AND is_active`, id))
	if err != nil {
		return models.Template{}, notFound("template", id, err)
	}
	return t, nil
}

func (s *Postgres) ListTemplates(ctx context.Context, format string) ([]models.Template, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+templateColumns+` FROM templates WHERE is_active AND ($1 = '' OR format = $1) ORDER BY name`, format)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()
	out := make([]models.Template, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func notFound(kind, id string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("scan %s: %w", kind, err)
}

func textPtr(t pgtype.Text) *string {
	if t.Valid {
		return &t.String
	}
	return nil
}

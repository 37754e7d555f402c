package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"syllabus-content-service/internal/models"
)

// Memory is a process-local Store. Records are copied on the way in and out
// so callers never share mutable state with the store.
type Memory struct {
	mu          sync.RWMutex
	documents   map[string]models.Document
	generations map[string]models.Generation
	contents    map[string]models.Content
	exports     map[string]models.Export
	templates   map[string]models.Template
}

var _ Store = (*Memory)(nil)

// NewMemory builds an empty store seeded with the default templates.
func NewMemory() *Memory {
	m := &Memory{
		documents:   make(map[string]models.Document),
		generations: make(map[string]models.Generation),
		contents:    make(map[string]models.Content),
		exports:     make(map[string]models.Export),
		templates:   make(map[string]models.Template),
	}
	for _, t := range DefaultTemplates(time.Now().UTC()) {
		m.templates[t.ID] = t
	}
	return m
}

func (m *Memory) Close() {}

// PutTemplate inserts or replaces a template.
func (m *Memory) PutTemplate(t models.Template) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[t.ID] = t
}

func (m *Memory) CreateDocument(_ context.Context, doc models.Document) (models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.Status == "" {
		doc.Status = models.DocumentProcessed
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = doc.CreatedAt
	m.documents[doc.ID] = doc
	return doc, nil
}

func (m *Memory) GetDocument(_ context.Context, id string) (models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[id]
	if !ok {
		return models.Document{}, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return doc, nil
}

func (m *Memory) ListDocuments(_ context.Context, page Page) ([]models.Document, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Document, 0, len(m.documents))
	for _, d := range m.documents {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, page), len(out), nil
}

func (m *Memory) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[id]; !ok {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	delete(m.documents, id)
	return nil
}

func (m *Memory) CreateGeneration(_ context.Context, p CreateGenerationParams) (models.Generation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	est := p.EstimatedCompletion
	g := models.Generation{
		ID:                  uuid.New().String(),
		DocumentID:          p.DocumentID,
		ContentType:         p.ContentType,
		Scope:               p.Scope,
		TargetUnit:          p.TargetUnit,
		TargetSession:       p.TargetSession,
		AIProvider:          p.AIProvider,
		AIModel:             p.AIModel,
		Configuration:       p.Configuration,
		Status:              models.StatusStarted,
		Progress:            0,
		EstimatedCompletion: &est,
		CreatedAt:           p.CreatedAt,
	}
	m.generations[g.ID] = g
	return g, nil
}

func (m *Memory) GetGeneration(_ context.Context, id string) (models.Generation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.generations[id]
	if !ok {
		return models.Generation{}, fmt.Errorf("generation %s: %w", id, ErrNotFound)
	}
	return g, nil
}

// updateGeneration applies fn to a non-terminal generation under the write lock.
func (m *Memory) updateGeneration(id string, fn func(g *models.Generation)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.generations[id]
	if !ok {
		return fmt.Errorf("generation %s: %w", id, ErrNotFound)
	}
	if models.IsTerminal(g.Status) {
		return fmt.Errorf("generation %s: %w", id, ErrTerminal)
	}
	fn(&g)
	m.generations[id] = g
	return nil
}

func (m *Memory) StartGeneration(_ context.Context, id string, progress int, at time.Time) error {
	return m.updateGeneration(id, func(g *models.Generation) {
		g.Status = models.StatusInProgress
		g.StartedAt = &at
		g.Progress = max(g.Progress, progress)
	})
}

func (m *Memory) SetGenerationProgress(_ context.Context, id string, progress int) error {
	return m.updateGeneration(id, func(g *models.Generation) {
		g.Progress = max(g.Progress, progress)
	})
}

func (m *Memory) CompleteGeneration(_ context.Context, id string, c models.Content, at time.Time) (models.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.generations[id]
	if !ok {
		return models.Content{}, fmt.Errorf("generation %s: %w", id, ErrNotFound)
	}
	if models.IsTerminal(g.Status) {
		return models.Content{}, fmt.Errorf("generation %s: %w", id, ErrTerminal)
	}
	c.ID = uuid.New().String()
	c.GenerationID = id
	c.Version = 1
	c.IsActive = true
	c.CreatedAt = at
	c.UpdatedAt = at
	m.contents[c.ID] = c

	g.Status = models.StatusCompleted
	g.Progress = 100
	g.CompletedAt = &at
	m.generations[id] = g
	return c, nil
}

func (m *Memory) FailGeneration(_ context.Context, id string, message string, at time.Time) error {
	return m.updateGeneration(id, func(g *models.Generation) {
		g.Status = models.StatusFailed
		g.ErrorMessage = &message
		g.CompletedAt = &at
	})
}

func (m *Memory) GetContent(_ context.Context, id string) (models.Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.contents[id]
	if !ok || !c.IsActive {
		return models.Content{}, fmt.Errorf("content %s: %w", id, ErrNotFound)
	}
	return c, nil
}

func (m *Memory) GetContents(_ context.Context, ids []string) ([]models.Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool, len(ids))
	out := make([]models.Content, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if c, ok := m.contents[id]; ok && c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) ListContents(_ context.Context, f ContentFilter) ([]models.Content, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Content, 0)
	for _, c := range m.contents {
		if !c.IsActive {
			continue
		}
		if f.DocumentID != "" && c.DocumentID != f.DocumentID {
			continue
		}
		if f.ContentType != "" && c.ContentType != f.ContentType {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, f.Page), len(out), nil
}

func (m *Memory) ListGenerationContents(_ context.Context, generationID string) ([]models.Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Content, 0, 1)
	for _, c := range m.contents {
		if c.GenerationID == generationID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateContent(_ context.Context, id string, patch models.ContentPatch, at time.Time) (models.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contents[id]
	if !ok || !c.IsActive {
		return models.Content{}, fmt.Errorf("content %s: %w", id, ErrNotFound)
	}
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.MarkdownContent != nil {
		c.MarkdownContent = *patch.MarkdownContent
	}
	if patch.Sections != nil {
		c.Sections = *patch.Sections
	}
	c.Version++
	c.UpdatedAt = at
	m.contents[id] = c
	return c, nil
}

func (m *Memory) DeactivateContent(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contents[id]
	if !ok || !c.IsActive {
		return fmt.Errorf("content %s: %w", id, ErrNotFound)
	}
	c.IsActive = false
	c.UpdatedAt = at
	m.contents[id] = c
	return nil
}

func (m *Memory) CreateExport(_ context.Context, p CreateExportParams) (models.Export, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	est := p.EstimatedCompletion
	e := models.Export{
		ID:                  uuid.New().String(),
		ExportType:          p.ExportType,
		TemplateID:          p.TemplateID,
		ContentIDs:          append([]string(nil), p.ContentIDs...),
		Format:              p.Format,
		Title:               p.Title,
		Settings:            p.Settings,
		Status:              models.StatusStarted,
		ExpiresAt:           p.ExpiresAt,
		EstimatedCompletion: &est,
		CreatedAt:           p.CreatedAt,
	}
	m.exports[e.ID] = e
	return e, nil
}

func (m *Memory) GetExport(_ context.Context, id string) (models.Export, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exports[id]
	if !ok {
		return models.Export{}, fmt.Errorf("export %s: %w", id, ErrNotFound)
	}
	e.ContentIDs = append([]string(nil), e.ContentIDs...)
	return e, nil
}

func (m *Memory) updateExport(id string, fn func(e *models.Export)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.exports[id]
	if !ok {
		return fmt.Errorf("export %s: %w", id, ErrNotFound)
	}
	if models.IsTerminal(e.Status) {
		return fmt.Errorf("export %s: %w", id, ErrTerminal)
	}
	fn(&e)
	m.exports[id] = e
	return nil
}

func (m *Memory) StartExport(_ context.Context, id string, progress int, at time.Time) error {
	return m.updateExport(id, func(e *models.Export) {
		e.Status = models.StatusInProgress
		e.StartedAt = &at
		e.Progress = max(e.Progress, progress)
	})
}

func (m *Memory) SetExportProgress(_ context.Context, id string, progress int) error {
	return m.updateExport(id, func(e *models.Export) {
		e.Progress = max(e.Progress, progress)
	})
}

func (m *Memory) CompleteExport(_ context.Context, id string, a models.Artifact, at time.Time) error {
	return m.updateExport(id, func(e *models.Export) {
		e.Filename = &a.Filename
		e.FilePath = &a.FilePath
		e.FileSize = &a.FileSize
		e.DownloadURL = &a.DownloadURL
		e.Status = models.StatusCompleted
		e.Progress = 100
		e.CompletedAt = &at
	})
}

func (m *Memory) FailExport(_ context.Context, id string, message string, at time.Time) error {
	return m.updateExport(id, func(e *models.Export) {
		e.Status = models.StatusFailed
		e.ErrorMessage = &message
		e.CompletedAt = &at
	})
}

func (m *Memory) ListExports(_ context.Context, f ExportFilter) ([]models.Export, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Export, 0)
	for _, e := range m.exports {
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if f.Format != "" && e.Format != f.Format {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, f.Page), len(out), nil
}

func (m *Memory) GetTemplate(_ context.Context, id string) (models.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.templates[id]
	if !ok || !t.IsActive {
		return models.Template{}, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	return t, nil
}

func (m *Memory) ListTemplates(_ context.Context, format string) ([]models.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Template, 0, len(m.templates))
	for _, t := range m.templates {
		if !t.IsActive {
			continue
		}
		if format != "" && t.Format != format {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func paginate[T any](items []T, p Page) []T {
	p = p.normalized()
	start := p.offset()
	if start >= len(items) {
		return []T{}
	}
	end := min(start+p.Limit, len(items))
	return items[start:end]
}

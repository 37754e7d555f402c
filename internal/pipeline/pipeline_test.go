package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"syllabus-content-service/internal/artifact"
	"syllabus-content-service/internal/models"
	"syllabus-content-service/internal/provider"
	"syllabus-content-service/internal/store"
	"syllabus-content-service/internal/worker"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// recordingStore remembers every progress value written for a job.
type recordingStore struct {
	*store.Memory
	mu       sync.Mutex
	progress map[string][]int
	created  int
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Memory: store.NewMemory(), progress: map[string][]int{}}
}

func (s *recordingStore) record(id string, p int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[id] = append(s.progress[id], p)
}

func (s *recordingStore) seen(id string) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.progress[id]...)
}

func (s *recordingStore) CreateGeneration(ctx context.Context, p store.CreateGenerationParams) (models.Generation, error) {
	s.mu.Lock()
	s.created++
	s.mu.Unlock()
	return s.Memory.CreateGeneration(ctx, p)
}

func (s *recordingStore) StartGeneration(ctx context.Context, id string, p int, at time.Time) error {
	s.record(id, p)
	return s.Memory.StartGeneration(ctx, id, p, at)
}

func (s *recordingStore) SetGenerationProgress(ctx context.Context, id string, p int) error {
	s.record(id, p)
	return s.Memory.SetGenerationProgress(ctx, id, p)
}

func (s *recordingStore) CompleteGeneration(ctx context.Context, id string, c models.Content, at time.Time) (models.Content, error) {
	s.record(id, 100)
	return s.Memory.CompleteGeneration(ctx, id, c, at)
}

func (s *recordingStore) StartExport(ctx context.Context, id string, p int, at time.Time) error {
	s.record(id, p)
	return s.Memory.StartExport(ctx, id, p, at)
}

func (s *recordingStore) SetExportProgress(ctx context.Context, id string, p int) error {
	s.record(id, p)
	return s.Memory.SetExportProgress(ctx, id, p)
}

type failingDispatcher struct{ err error }

func (f failingDispatcher) Dispatch(context.Context, string, string, provider.GenerateOptions) (string, error) {
	return "", f.err
}

type harness struct {
	store    *recordingStore
	pool     *worker.Pool
	gen      *Generator
	exp      *Exporter
	storage  *artifact.Local
	clock    *fakeClock
	registry *provider.Registry
}

func newHarness(t *testing.T, d Dispatcher) *harness {
	t.Helper()
	h := &harness{
		store:   newRecordingStore(),
		pool:    worker.NewPool(0, 0, zap.NewNop()),
		storage: artifact.NewLocal(t.TempDir()),
		clock:   &fakeClock{t: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)},
	}
	if d == nil {
		h.registry = provider.NewRegistry(zap.NewNop())
		h.registry.Register(models.ProviderGroq, provider.NewStub(""), true)
		d = h.registry
	}
	opts := []Option{WithClock(h.clock.Now), WithLogger(zap.NewNop())}
	h.gen = NewGenerator(h.store, d, h.pool, opts...)
	h.exp = NewExporter(h.store, h.storage, h.pool, opts...)
	return h
}

func (h *harness) document(t *testing.T, text string) models.Document {
	t.Helper()
	doc, err := h.store.CreateDocument(context.Background(), models.Document{
		Filename:    "syllabus.txt",
		ContentType: "text/plain",
		TextContent: text,
	})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	return doc
}

func (h *harness) generate(t *testing.T, doc models.Document, contentType string) GenerationTicket {
	t.Helper()
	cfg := models.DefaultGenerationConfig()
	cfg.EducationalLevel = "universitario"
	cfg.AIModel = "mixtral-8x7b-32768"
	ticket, err := h.gen.Create(context.Background(), GenerateRequest{
		DocumentID:    doc.ID,
		ContentType:   contentType,
		Scope:         models.ScopeSpecificSession,
		AIProvider:    models.ProviderGroq,
		Configuration: cfg,
	})
	if err != nil {
		t.Fatalf("create generation: %v", err)
	}
	h.pool.Wait()
	return ticket
}

func (h *harness) content(t *testing.T, title, body string) models.Content {
	t.Helper()
	ctx := context.Background()
	g, err := h.store.CreateGeneration(ctx, store.CreateGenerationParams{DocumentID: "doc", CreatedAt: h.clock.Now()})
	if err != nil {
		t.Fatalf("create generation: %v", err)
	}
	c, err := h.store.CompleteGeneration(ctx, g.ID, models.Content{Title: title, MarkdownContent: body}, h.clock.Now())
	if err != nil {
		t.Fatalf("complete generation: %v", err)
	}
	return c
}

func nonDecreasing(vals []int) bool {
	for i := 1; i < len(vals); i++ {
		if vals[i] < vals[i-1] {
			return false
		}
	}
	return true
}

func TestGenerationCompletesWithCheckpoints(t *testing.T) {
	h := newHarness(t, nil)
	doc := h.document(t, strings.Repeat("x", 500))
	ticket := h.generate(t, doc, models.ContentTypeStudyGuide)

	if ticket.Status != models.StatusStarted {
		t.Fatalf("expected started ticket got %q", ticket.Status)
	}
	if !ticket.EstimatedCompletion.Equal(h.clock.Now().Add(5 * time.Minute)) {
		t.Fatalf("unexpected eta %s", ticket.EstimatedCompletion)
	}

	got := h.store.seen(ticket.GenerationID)
	want := []int{10, 30, 70, 100}
	if len(got) != len(want) {
		t.Fatalf("expected checkpoints %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected checkpoints %v got %v", want, got)
		}
	}

	status, err := h.gen.Status(context.Background(), ticket.GenerationID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Status != models.StatusCompleted || status.Progress != 100 || status.CompletedAt == nil {
		t.Fatalf("unexpected status %+v", status)
	}
	if len(status.Results) != 1 {
		t.Fatalf("expected one result got %d", len(status.Results))
	}

	c, err := h.store.GetContent(context.Background(), status.Results[0].ContentID)
	if err != nil {
		t.Fatalf("get content: %v", err)
	}
	if c.Version != 1 || !c.IsActive {
		t.Fatalf("expected fresh active content, got version=%d active=%v", c.Version, c.IsActive)
	}
	if c.Metadata["ai_provider"] != models.ProviderGroq {
		t.Fatalf("expected ai_provider groq in metadata, got %v", c.Metadata["ai_provider"])
	}
	if c.Title != "Sesión de Clase Generada por IA" {
		t.Fatalf("unexpected title %q", c.Title)
	}
	if c.Sections.Introduction == "" || c.Sections.Conclusion == "" {
		t.Fatalf("expected sections to be split, got %+v", c.Sections)
	}
}

func TestGenerationFailureFreezesProgress(t *testing.T) {
	h := newHarness(t, failingDispatcher{err: errors.New("provider exploded")})
	doc := h.document(t, "short")
	ticket := h.generate(t, doc, models.ContentTypeClassSession)

	status, _ := h.gen.Status(context.Background(), ticket.GenerationID)
	if status.Status != models.StatusFailed {
		t.Fatalf("expected failed got %q", status.Status)
	}
	if status.ErrorMessage == nil || *status.ErrorMessage != "provider exploded" {
		t.Fatalf("expected verbatim error message, got %v", status.ErrorMessage)
	}
	if status.Progress != 30 || status.CompletedAt == nil {
		t.Fatalf("expected progress frozen at 30 with completed_at, got %+v", status)
	}
	if !nonDecreasing(h.store.seen(ticket.GenerationID)) {
		t.Fatalf("progress went backwards: %v", h.store.seen(ticket.GenerationID))
	}

	ctx := context.Background()
	if err := h.store.SetGenerationProgress(ctx, ticket.GenerationID, 90); !errors.Is(err, store.ErrTerminal) {
		t.Fatalf("expected terminal guard, got %v", err)
	}
	after, _ := h.gen.Status(ctx, ticket.GenerationID)
	if after.Status != models.StatusFailed || after.Progress != 30 {
		t.Fatalf("terminal job changed: %+v", after)
	}
}

func TestGenerationRejectsMissingDocumentAndBadInput(t *testing.T) {
	h := newHarness(t, nil)
	cfg := models.DefaultGenerationConfig()
	cfg.EducationalLevel = "secundaria"
	cfg.AIModel = "m"

	_, err := h.gen.Create(context.Background(), GenerateRequest{
		DocumentID:    "missing",
		ContentType:   models.ContentTypeClassSession,
		Scope:         models.ScopeCompleteUnit,
		Configuration: cfg,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}

	doc := h.document(t, "text")
	_, err = h.gen.Create(context.Background(), GenerateRequest{
		DocumentID:    doc.ID,
		ContentType:   "poem",
		Scope:         models.ScopeCompleteUnit,
		Configuration: cfg,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown content type got %v", err)
	}

	cfg.ContentLength = 21
	_, err = h.gen.Create(context.Background(), GenerateRequest{
		DocumentID:    doc.ID,
		ContentType:   models.ContentTypeClassSession,
		Scope:         models.ScopeCompleteUnit,
		Configuration: cfg,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for content_length 21 got %v", err)
	}
}

func TestGenerationQueueFullWritesNoRecord(t *testing.T) {
	st := newRecordingStore()
	pool := worker.NewPool(1, 0, zap.NewNop())
	block := make(chan struct{})
	pool.RegisterHandler("blocker", func(ctx context.Context, id string) error {
		<-block
		return nil
	})
	reg := provider.NewRegistry(zap.NewNop())
	g := NewGenerator(st, reg, pool, WithLogger(zap.NewNop()))

	if err := pool.Submit("blocker", "x"); err != nil {
		t.Fatalf("submit blocker: %v", err)
	}
	doc, _ := st.CreateDocument(context.Background(), models.Document{TextContent: "t"})
	cfg := models.DefaultGenerationConfig()
	cfg.EducationalLevel = "x"
	cfg.AIModel = "m"
	_, err := g.Create(context.Background(), GenerateRequest{
		DocumentID:    doc.ID,
		ContentType:   models.ContentTypeClassSession,
		Scope:         models.ScopeCompleteUnit,
		Configuration: cfg,
	})
	if !errors.Is(err, worker.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull got %v", err)
	}
	if st.created != 0 {
		t.Fatalf("expected no generation record, got %d", st.created)
	}
	close(block)
	pool.Wait()
}

func TestIndividualExportLifecycle(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.content(t, "Unidad 1", "cuerpo")

	ticket, err := h.exp.Individual(ctx, IndividualRequest{ContentID: c.ID, Format: models.FormatPDF})
	if err != nil {
		t.Fatalf("individual: %v", err)
	}
	h.pool.Wait()

	if got := h.store.seen(ticket.ExportID); !nonDecreasing(got) || got[len(got)-1] != 60 {
		t.Fatalf("unexpected export checkpoints %v", got)
	}

	status, _ := h.exp.Status(ctx, ticket.ExportID)
	if status.Status != models.StatusCompleted || status.Progress != 100 {
		t.Fatalf("unexpected status %+v", status)
	}
	wantName := "content_" + c.ID + "_20240301_093000.pdf"
	if status.Filename == nil || *status.Filename != wantName {
		t.Fatalf("expected filename %q got %v", wantName, status.Filename)
	}
	if status.DownloadURL == nil || *status.DownloadURL != "/api/v1/export/"+ticket.ExportID+"/download" {
		t.Fatalf("unexpected download url %v", status.DownloadURL)
	}
	if !status.ExpiresAt.Equal(h.clock.Now().Add(24 * time.Hour)) {
		t.Fatalf("expected expiry 24h after creation, got %s", status.ExpiresAt)
	}

	d, err := h.exp.Download(ctx, ticket.ExportID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer d.Body.Close()
	body, _ := io.ReadAll(d.Body)
	if d.ContentType != "application/pdf" || !strings.Contains(string(body), `\title{Unidad 1}`) {
		t.Fatalf("unexpected download %q %s", d.ContentType, body)
	}
	if status.FileSize == nil || *status.FileSize != int64(len(body)) {
		t.Fatalf("file size %v does not match body length %d", status.FileSize, len(body))
	}
}

func TestIndividualExportMissingContentCreatesNoJob(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, err := h.exp.Individual(ctx, IndividualRequest{ContentID: "nope", Format: models.FormatPDF})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
	_, total, _ := h.store.ListExports(ctx, store.ExportFilter{})
	if total != 0 {
		t.Fatalf("expected no export rows, got %d", total)
	}
}

func TestExportMissingTemplate(t *testing.T) {
	h := newHarness(t, nil)
	c := h.content(t, "A", "a")
	tpl := "missing-template"
	_, err := h.exp.Individual(context.Background(), IndividualRequest{ContentID: c.ID, Format: models.FormatPDF, TemplateID: &tpl})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestTemplateDefaultsMergeUnderExplicitSettings(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.content(t, "A", "a")
	tpl := store.TemplateAcademicPDF
	font := "14pt"

	ticket, err := h.exp.Individual(ctx, IndividualRequest{
		ContentID:  c.ID,
		Format:     models.FormatLaTeX,
		TemplateID: &tpl,
		Settings:   &models.ExportSettings{FontSize: &font},
	})
	if err != nil {
		t.Fatalf("individual: %v", err)
	}
	h.pool.Wait()

	exp, _ := h.store.GetExport(ctx, ticket.ExportID)
	if *exp.Settings.FontSize != "14pt" || *exp.Settings.PaperSize != "a4paper" {
		t.Fatalf("unexpected merged settings %+v", exp.Settings)
	}
}

func TestCombinedExportPreservesOrder(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	a := h.content(t, "Alpha", "first body")
	b := h.content(t, "Beta", "second body")

	ticket, err := h.exp.Combined(ctx, CombinedRequest{ContentIDs: []string{b.ID, a.ID}, Format: models.FormatLaTeX})
	if err != nil {
		t.Fatalf("combined: %v", err)
	}
	h.pool.Wait()

	d, err := h.exp.Download(ctx, ticket.ExportID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer d.Body.Close()
	body, _ := io.ReadAll(d.Body)
	doc := string(body)
	if strings.Index(doc, `\section{Beta}`) > strings.Index(doc, `\section{Alpha}`) {
		t.Fatalf("expected Beta before Alpha:\n%s", doc)
	}
	if !strings.HasPrefix(d.Filename, "combined_20240301_093000") {
		t.Fatalf("unexpected filename %q", d.Filename)
	}
}

func TestCombinedExportValidation(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	a := h.content(t, "Alpha", "a")

	if _, err := h.exp.Combined(ctx, CombinedRequest{Format: models.FormatPDF}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty list got %v", err)
	}
	if _, err := h.exp.Combined(ctx, CombinedRequest{ContentIDs: []string{a.ID, "missing"}, Format: models.FormatPDF}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id got %v", err)
	}
	if _, err := h.exp.Combined(ctx, CombinedRequest{ContentIDs: []string{a.ID, a.ID}, Format: models.FormatPDF}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for duplicate ids got %v", err)
	}
}

func TestUnsupportedFormatFailsJob(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.content(t, "A", "a")

	ticket, err := h.exp.Individual(ctx, IndividualRequest{ContentID: c.ID, Format: "odt"})
	if err != nil {
		t.Fatalf("individual: %v", err)
	}
	h.pool.Wait()

	status, _ := h.exp.Status(ctx, ticket.ExportID)
	if status.Status != models.StatusFailed || status.ErrorMessage == nil || !strings.Contains(*status.ErrorMessage, "unsupported format") {
		t.Fatalf("expected unsupported format failure, got %+v", status)
	}
	if status.Filename != nil || status.FileSize != nil || status.DownloadURL != nil {
		t.Fatalf("artifact fields must stay unset on failure: %+v", status)
	}
	if _, _, err := h.exp.FilePath(ctx, ticket.ExportID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState got %v", err)
	}
}

func TestRetrievalGuardOrder(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	if _, _, err := h.exp.FilePath(ctx, "unknown"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}

	c := h.content(t, "A", "a")
	pending, err := h.store.CreateExport(ctx, store.CreateExportParams{
		ExportType: models.ExportIndividual,
		ContentIDs: []string{c.ID},
		Format:     models.FormatPDF,
		CreatedAt:  h.clock.Now(),
		ExpiresAt:  h.clock.Now().Add(models.ArtifactTTL),
	})
	if err != nil {
		t.Fatalf("create export: %v", err)
	}
	if _, _, err := h.exp.FilePath(ctx, pending.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for pending export got %v", err)
	}

	ticket, _ := h.exp.Individual(ctx, IndividualRequest{ContentID: c.ID, Format: models.FormatDOCX})
	h.pool.Wait()
	path, _, err := h.exp.FilePath(ctx, ticket.ExportID)
	if err != nil {
		t.Fatalf("expected retrievable artifact, got %v", err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove artifact: %v", err)
	}
	if _, _, err := h.exp.FilePath(ctx, ticket.ExportID); !errors.Is(err, ErrArtifactMissing) {
		t.Fatalf("expected ErrArtifactMissing got %v", err)
	}

	h.clock.Advance(25 * time.Hour)
	if _, _, err := h.exp.FilePath(ctx, ticket.ExportID); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired to win over missing file, got %v", err)
	}
}

func TestExpiredExportAfter25Hours(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.content(t, "A", "a")

	ticket, _ := h.exp.Individual(ctx, IndividualRequest{ContentID: c.ID, Format: models.FormatPDF})
	h.pool.Wait()

	h.clock.Advance(25 * time.Hour)
	status, _ := h.exp.Status(ctx, ticket.ExportID)
	if status.Status != models.StatusCompleted {
		t.Fatalf("expected completed export got %q", status.Status)
	}
	if _, err := h.exp.Download(ctx, ticket.ExportID); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired got %v", err)
	}
}

func TestExportExpiresExactlyAtTTL(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.content(t, "A", "a")

	ticket, err := h.exp.Individual(ctx, IndividualRequest{ContentID: c.ID, Format: models.FormatPDF})
	if err != nil {
		t.Fatalf("individual: %v", err)
	}
	h.pool.Wait()

	h.clock.Advance(models.ArtifactTTL - time.Nanosecond)
	if _, _, err := h.exp.FilePath(ctx, ticket.ExportID); err != nil {
		t.Fatalf("expected artifact just before expiry, got %v", err)
	}
	h.clock.Advance(time.Nanosecond)
	if _, _, err := h.exp.FilePath(ctx, ticket.ExportID); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired at expires_at got %v", err)
	}
}

func TestStatusEncodesUnsetFieldsAsNull(t *testing.T) {
	for name, v := range map[string]any{
		"generation": GenerationStatus{GenerationID: "g", Status: models.StatusStarted},
		"export":     ExportStatus{ExportID: "e", Status: models.StatusStarted},
	} {
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("%s: marshal: %v", name, err)
		}
		for _, field := range []string{`"error_message":null`, `"completed_at":null`} {
			if !strings.Contains(string(raw), field) {
				t.Fatalf("%s: expected %s in %s", name, field, raw)
			}
		}
	}
}

func TestDeactivatedContentIsNotExportable(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.content(t, "A", "a")
	if err := h.store.DeactivateContent(ctx, c.ID, h.clock.Now()); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := h.exp.Individual(ctx, IndividualRequest{ContentID: c.ID, Format: models.FormatPDF}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestListExports(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.content(t, "A", "a")
	_, _ = h.exp.Individual(ctx, IndividualRequest{ContentID: c.ID, Format: models.FormatPDF})
	_, _ = h.exp.Individual(ctx, IndividualRequest{ContentID: c.ID, Format: models.FormatDOCX})
	h.pool.Wait()

	items, total, err := h.exp.List(ctx, store.ExportFilter{Format: models.FormatDOCX})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Format != models.FormatDOCX || items[0].Status != models.StatusCompleted {
		t.Fatalf("unexpected listing %+v", items)
	}
}

package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"syllabus-content-service/internal/content"
	"syllabus-content-service/internal/models"
	"syllabus-content-service/internal/provider"
	"syllabus-content-service/internal/store"
	"syllabus-content-service/internal/telemetry"
	"syllabus-content-service/internal/worker"
)

const generationETA = 5 * time.Minute

// Dispatcher sends a prompt to a text generation provider.
type Dispatcher interface {
	Dispatch(ctx context.Context, prompt, explicit string, opts provider.GenerateOptions) (string, error)
}

// GenerateRequest asks for content derived from a registered document.
type GenerateRequest struct {
	DocumentID    string                  `json:"document_id" validate:"required"`
	ContentType   string                  `json:"content_type" validate:"required,oneof=class_session study_guide presentation worksheet assessment"`
	Scope         string                  `json:"scope" validate:"required,oneof=specific_session complete_unit complete_syllabus"`
	TargetUnit    *string                 `json:"target_unit,omitempty"`
	TargetSession *string                 `json:"target_session,omitempty"`
	AIProvider    string                  `json:"ai_provider" validate:"omitempty,oneof=openai claude gemini groq cohere ollama xai"`
	Configuration models.GenerationConfig `json:"configuration"`
}

// GenerationTicket is returned when a generation job is accepted.
type GenerationTicket struct {
	GenerationID        string    `json:"generation_id"`
	Status              string    `json:"status"`
	EstimatedCompletion time.Time `json:"estimated_completion"`
	Message             string    `json:"message"`
}

// ContentSummary lists one content produced by a generation.
type ContentSummary struct {
	ContentID       string         `json:"content_id"`
	Title           string         `json:"title"`
	ContentType     string         `json:"content_type"`
	ContentMetadata map[string]any `json:"content_metadata,omitempty"`
}

// GenerationStatus is the pollable view of a generation job.
type GenerationStatus struct {
	GenerationID string           `json:"generation_id"`
	Status       string           `json:"status"`
	Progress     int              `json:"progress"`
	Results      []ContentSummary `json:"results"`
	ErrorMessage *string          `json:"error_message"`
	CreatedAt    time.Time        `json:"created_at"`
	CompletedAt  *time.Time       `json:"completed_at"`
}

// Generator runs the generation state machine:
// started -> in_progress (10, 30, 70) -> completed (100) | failed.
type Generator struct {
	store      store.Store
	dispatcher Dispatcher
	pool       *worker.Pool
	now        func() time.Time
	log        *zap.SugaredLogger
}

// NewGenerator wires a generator and registers its job handler on pool.
func NewGenerator(st store.Store, d Dispatcher, pool *worker.Pool, opts ...Option) *Generator {
	o := buildOptions(opts)
	g := &Generator{
		store:      st,
		dispatcher: d,
		pool:       pool,
		now:        o.now,
		log:        o.log.Named("generation").Sugar(),
	}
	pool.RegisterHandler(KindGeneration, g.run)
	return g
}

// Create records a generation job and hands it to the worker pool.
func (g *Generator) Create(ctx context.Context, req GenerateRequest) (GenerationTicket, error) {
	if req.AIProvider == "" {
		req.AIProvider = models.ProviderGroq
	}
	if err := validateRequest(req); err != nil {
		return GenerationTicket{}, err
	}
	cfg := req.Configuration.WithDefaults()
	if _, err := g.store.GetDocument(ctx, req.DocumentID); err != nil {
		return GenerationTicket{}, err
	}

	slot, err := g.pool.Reserve()
	if err != nil {
		return GenerationTicket{}, err
	}
	now := g.now().UTC()
	gen, err := g.store.CreateGeneration(ctx, store.CreateGenerationParams{
		DocumentID:          req.DocumentID,
		ContentType:         req.ContentType,
		Scope:               req.Scope,
		TargetUnit:          req.TargetUnit,
		TargetSession:       req.TargetSession,
		AIProvider:          req.AIProvider,
		AIModel:             cfg.AIModel,
		Configuration:       cfg,
		EstimatedCompletion: now.Add(generationETA),
		CreatedAt:           now,
	})
	if err != nil {
		slot.Release()
		return GenerationTicket{}, fmt.Errorf("create generation: %w", err)
	}
	if err := slot.Submit(KindGeneration, gen.ID); err != nil {
		return GenerationTicket{}, fmt.Errorf("submit generation: %w", err)
	}

	return GenerationTicket{
		GenerationID:        gen.ID,
		Status:              gen.Status,
		EstimatedCompletion: *gen.EstimatedCompletion,
		Message:             fmt.Sprintf("Generación iniciada. Use GET /api/v1/content/generation/%s para monitorear el progreso.", gen.ID),
	}, nil
}

// Status reports a generation and the contents it produced.
func (g *Generator) Status(ctx context.Context, id string) (GenerationStatus, error) {
	gen, err := g.store.GetGeneration(ctx, id)
	if err != nil {
		return GenerationStatus{}, err
	}
	contents, err := g.store.ListGenerationContents(ctx, id)
	if err != nil {
		return GenerationStatus{}, err
	}
	results := make([]ContentSummary, 0, len(contents))
	for _, c := range contents {
		results = append(results, ContentSummary{
			ContentID:       c.ID,
			Title:           c.Title,
			ContentType:     c.ContentType,
			ContentMetadata: c.Metadata,
		})
	}
	return GenerationStatus{
		GenerationID: gen.ID,
		Status:       gen.Status,
		Progress:     gen.Progress,
		Results:      results,
		ErrorMessage: gen.ErrorMessage,
		CreatedAt:    gen.CreatedAt,
		CompletedAt:  gen.CompletedAt,
	}, nil
}

func (g *Generator) run(ctx context.Context, id string) error {
	gen, err := g.store.GetGeneration(ctx, id)
	if err != nil {
		return err
	}
	if err := g.store.StartGeneration(ctx, id, 10, g.now().UTC()); err != nil {
		return err
	}

	if err := g.process(ctx, gen); err != nil {
		telemetry.JobsFailed.WithLabelValues(KindGeneration).Inc()
		if ferr := g.store.FailGeneration(ctx, id, err.Error(), g.now().UTC()); ferr != nil {
			g.log.Errorw("record generation failure", "id", id, "error", ferr)
		}
		return err
	}
	telemetry.JobsCompleted.WithLabelValues(KindGeneration).Inc()
	g.log.Infow("generation completed", "id", id, "document_id", gen.DocumentID)
	return nil
}

func (g *Generator) process(ctx context.Context, gen models.Generation) error {
	doc, err := g.store.GetDocument(ctx, gen.DocumentID)
	if err != nil {
		return err
	}

	prompt := content.UserPrompt(doc, gen)
	opts := provider.GenerateOptions{
		SystemPrompt: content.SystemPrompt(gen.ContentType),
		MaxTokens:    content.MaxTokens(gen.Configuration),
		Temperature:  content.Temperature,
	}
	if err := g.store.SetGenerationProgress(ctx, gen.ID, 30); err != nil {
		return err
	}

	text, err := g.dispatcher.Dispatch(ctx, prompt, gen.AIProvider, opts)
	if err != nil {
		return err
	}
	if err := g.store.SetGenerationProgress(ctx, gen.ID, 70); err != nil {
		return err
	}

	structured := content.Structure(text)
	_, err = g.store.CompleteGeneration(ctx, gen.ID, models.Content{
		DocumentID:      gen.DocumentID,
		Title:           structured.Title,
		ContentType:     gen.ContentType,
		MarkdownContent: structured.Markdown,
		Sections:        structured.Sections,
		Metadata: map[string]any{
			"ai_provider":       gen.AIProvider,
			"ai_model":          gen.AIModel,
			"generation_config": gen.Configuration,
		},
	}, g.now().UTC())
	return err
}

package models

import "time"

// Content types a generation can request.
const (
	ContentTypeClassSession = "class_session"
	ContentTypeStudyGuide   = "study_guide"
	ContentTypePresentation = "presentation"
	ContentTypeWorksheet    = "worksheet"
	ContentTypeAssessment   = "assessment"
)

// Generation scopes.
const (
	ScopeSpecificSession  = "specific_session"
	ScopeCompleteUnit     = "complete_unit"
	ScopeCompleteSyllabus = "complete_syllabus"
)

// AI providers known to the registry.
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
	ProviderCohere = "cohere"
	ProviderOllama = "ollama"
	ProviderXAI    = "xai"
)

// GenerationConfig carries the free-form knobs of a generation request.
type GenerationConfig struct {
	EducationalLevel       string `json:"educational_level" validate:"required"`
	PedagogicalApproach    string `json:"pedagogical_approach"`
	AIModel                string `json:"ai_model" validate:"required"`
	ContentLength          int    `json:"content_length" validate:"omitempty,min=1,max=20"`
	IncludeWebContent      bool   `json:"include_web_content"`
	IncludeImages          bool   `json:"include_images"`
	IncludeRichContent     bool   `json:"include_rich_content"`
	Language               string `json:"language"`
	AdditionalInstructions string `json:"additional_instructions,omitempty"`
}

// DefaultGenerationConfig is the starting point requests are decoded onto,
// so omitted fields keep these values.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		PedagogicalApproach: "Competency-based",
		ContentLength:       5,
		IncludeWebContent:   true,
		IncludeImages:       true,
		IncludeRichContent:  true,
		Language:            "es",
	}
}

// WithDefaults fills the optional fields the way the request schema defaults them.
func (c GenerationConfig) WithDefaults() GenerationConfig {
	if c.PedagogicalApproach == "" {
		c.PedagogicalApproach = "Competency-based"
	}
	if c.ContentLength == 0 {
		c.ContentLength = 5
	}
	if c.Language == "" {
		c.Language = "es"
	}
	return c
}

// Generation tracks one asynchronous content generation job.
type Generation struct {
	ID                  string           `json:"id"`
	DocumentID          string           `json:"document_id"`
	ContentType         string           `json:"content_type"`
	Scope               string           `json:"scope"`
	TargetUnit          *string          `json:"target_unit,omitempty"`
	TargetSession       *string          `json:"target_session,omitempty"`
	AIProvider          string           `json:"ai_provider"`
	AIModel             string           `json:"ai_model"`
	Configuration       GenerationConfig `json:"configuration"`
	Status              string           `json:"status"`
	Progress            int              `json:"progress"`
	ErrorMessage        *string          `json:"error_message,omitempty"`
	EstimatedCompletion *time.Time       `json:"estimated_completion,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	StartedAt           *time.Time       `json:"started_at,omitempty"`
	CompletedAt         *time.Time       `json:"completed_at,omitempty"`
}

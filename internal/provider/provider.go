package provider

import (
	"context"
	"strings"
)

// GenerateOptions tune a single completion request.
type GenerateOptions struct {
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
}

// Provider is one text generation backend.
type Provider interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	Models() []string
	Probe(ctx context.Context) bool
}

// Spec describes a provider to register.
type Spec struct {
	ID       string
	APIKey   string
	Model    string
	Endpoint string
	Primary  bool
}

// DefaultModels are used when a spec leaves the model empty.
var DefaultModels = map[string]string{
	"openai": "gpt-4",
	"claude": "claude-3-sonnet-20240229",
	"gemini": "gemini-pro",
	"groq":   "mixtral-8x7b-32768",
	"cohere": "command",
}

// NewBackend builds the backend for a spec. Specs with an endpoint talk to an
// OpenAI compatible chat completions API; the rest answer with canned text.
func NewBackend(s Spec) Provider {
	model := s.Model
	if model == "" {
		model = DefaultModels[strings.ToLower(s.ID)]
	}
	if model == "" {
		model = StubModel
	}
	if s.Endpoint != "" {
		return NewChatClient(s.Endpoint, s.APIKey, model)
	}
	return NewStub(model)
}

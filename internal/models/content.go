package models

import "time"

// Section slots of a structured content body.
const (
	SectionIntroduction = "introduction"
	SectionObjectives   = "objectives"
	SectionDevelopment  = "development"
	SectionConclusion   = "conclusion"
)

// Sections is the fixed four-slot breakdown of generated text.
type Sections struct {
	Introduction string `json:"introduction"`
	Objectives   string `json:"objectives"`
	Development  string `json:"development"`
	Conclusion   string `json:"conclusion"`
}

// Content is a generated, editable document derived from a syllabus.
type Content struct {
	ID              string         `json:"id"`
	GenerationID    string         `json:"generation_id"`
	DocumentID      string         `json:"document_id"`
	Title           string         `json:"title"`
	ContentType     string         `json:"content_type"`
	MarkdownContent string         `json:"markdown_content"`
	Sections        Sections       `json:"sections"`
	Metadata        map[string]any `json:"content_metadata"`
	Version         int            `json:"version"`
	IsActive        bool           `json:"is_active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ContentPatch lists the editable fields of a content record; nil means unchanged.
type ContentPatch struct {
	Title           *string   `json:"title,omitempty" validate:"omitempty,max=500"`
	MarkdownContent *string   `json:"markdown_content,omitempty"`
	Sections        *Sections `json:"sections,omitempty"`
}

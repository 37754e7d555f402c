package models

import "time"

// Document lifecycle states.
const (
	DocumentUploaded   = "uploaded"
	DocumentProcessing = "processing"
	DocumentProcessed  = "processed"
	DocumentError      = "error"
)

// Document is an uploaded syllabus with its extracted plain text.
type Document struct {
	ID               string    `json:"id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	ContentType      string    `json:"content_type"`
	FileSize         int64     `json:"file_size"`
	TextContent      string    `json:"text_content,omitempty"`
	Status           string    `json:"status"`
	EducationalLevel string    `json:"educational_level,omitempty"`
	Subject          string    `json:"subject,omitempty"`
	CourseCode       string    `json:"course_code,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

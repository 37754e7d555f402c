package models

import "time"

// Export kinds.
const (
	ExportIndividual = "individual"
	ExportCombined   = "combined"
)

// Export formats the renderer understands.
const (
	FormatPDF      = "pdf"
	FormatDOCX     = "docx"
	FormatLaTeX    = "latex"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// ArtifactTTL is how long an exported file stays downloadable.
const ArtifactTTL = 24 * time.Hour

// ExportSettings tune the rendered document. Pointers distinguish "not given"
// from zero values so template defaults can be merged underneath.
type ExportSettings struct {
	IncludeMetadata *bool   `json:"include_metadata,omitempty"`
	IncludeImages   *bool   `json:"include_images,omitempty"`
	PaperSize       *string `json:"paper_size,omitempty"`
	FontSize        *string `json:"font_size,omitempty"`
	Margins         *string `json:"margins,omitempty"`
	HeaderFooter    *bool   `json:"header_footer,omitempty"`
	PageNumbers     *bool   `json:"page_numbers,omitempty"`
	TableOfContents *bool   `json:"table_of_contents,omitempty"`
}

// MergeUnder returns s with every unset field taken from defaults.
// Values already present in s always win.
func (s ExportSettings) MergeUnder(defaults ExportSettings) ExportSettings {
	if s.IncludeMetadata == nil {
		s.IncludeMetadata = defaults.IncludeMetadata
	}
	if s.IncludeImages == nil {
		s.IncludeImages = defaults.IncludeImages
	}
	if s.PaperSize == nil {
		s.PaperSize = defaults.PaperSize
	}
	if s.FontSize == nil {
		s.FontSize = defaults.FontSize
	}
	if s.Margins == nil {
		s.Margins = defaults.Margins
	}
	if s.HeaderFooter == nil {
		s.HeaderFooter = defaults.HeaderFooter
	}
	if s.PageNumbers == nil {
		s.PageNumbers = defaults.PageNumbers
	}
	if s.TableOfContents == nil {
		s.TableOfContents = defaults.TableOfContents
	}
	return s
}

// Export tracks one asynchronous render of one or more contents.
type Export struct {
	ID                  string         `json:"id"`
	ExportType          string         `json:"export_type"`
	TemplateID          *string        `json:"template_id,omitempty"`
	ContentIDs          []string       `json:"content_ids"`
	Format              string         `json:"format"`
	Title               string         `json:"title,omitempty"`
	Settings            ExportSettings `json:"export_settings"`
	Status              string         `json:"status"`
	Progress            int            `json:"progress"`
	Filename            *string        `json:"filename,omitempty"`
	FilePath            *string        `json:"file_path,omitempty"`
	FileSize            *int64         `json:"file_size,omitempty"`
	DownloadURL         *string        `json:"download_url,omitempty"`
	ExpiresAt           time.Time      `json:"expires_at"`
	ErrorMessage        *string        `json:"error_message,omitempty"`
	EstimatedCompletion *time.Time     `json:"estimated_completion,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	StartedAt           *time.Time     `json:"started_at,omitempty"`
	CompletedAt         *time.Time     `json:"completed_at,omitempty"`
}

// Artifact is the produced file of a completed export. All fields are set together.
type Artifact struct {
	Filename    string
	FilePath    string
	FileSize    int64
	DownloadURL string
}

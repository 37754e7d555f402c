package store

import (
	"time"

	"syllabus-content-service/internal/models"
)

// Fixed ids of the seeded templates; the SQL migration inserts the same rows.
const (
	TemplateAcademicPDF = "6a1f5b8e-3c2d-4e7f-9a0b-1c2d3e4f5a01"
	TemplateModernDOCX  = "6a1f5b8e-3c2d-4e7f-9a0b-1c2d3e4f5a02"
	TemplateLaTeXPlain  = "6a1f5b8e-3c2d-4e7f-9a0b-1c2d3e4f5a03"
)

func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool { return &v }

// DefaultTemplates returns the templates every fresh store starts with.
func DefaultTemplates(now time.Time) []models.Template {
	return []models.Template{
		{
			ID:          TemplateAcademicPDF,
			Name:        "Academic",
			Description: "Formal A4 layout with table of contents",
			Format:      models.FormatPDF,
			DefaultSettings: models.ExportSettings{
				PaperSize:       strPtr("a4paper"),
				FontSize:        strPtr("12pt"),
				TableOfContents: boolPtr(true),
				PageNumbers:     boolPtr(true),
			},
			IsActive:  true,
			IsDefault: true,
			Version:   "1.0",
			Tags:      []string{"academic", "formal"},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          TemplateModernDOCX,
			Name:        "Modern",
			Description: "Editable document with larger type",
			Format:      models.FormatDOCX,
			DefaultSettings: models.ExportSettings{
				FontSize:     strPtr("11pt"),
				HeaderFooter: boolPtr(true),
			},
			IsActive:  true,
			IsDefault: true,
			Version:   "1.0",
			Tags:      []string{"modern"},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          TemplateLaTeXPlain,
			Name:        "Plain LaTeX",
			Description: "Letter paper LaTeX source",
			Format:      models.FormatLaTeX,
			DefaultSettings: models.ExportSettings{
				PaperSize: strPtr("letterpaper"),
				FontSize:  strPtr("10pt"),
			},
			IsActive:  true,
			IsDefault: true,
			Version:   "1.0",
			Tags:      []string{"academic"},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

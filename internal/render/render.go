package render

import (
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"strings"

	"syllabus-content-service/internal/models"
)

// ErrUnsupportedFormat is returned for formats without a renderer.
var ErrUnsupportedFormat = errors.New("unsupported format")

// CombinedTitle is the heading of a combined export without its own title.
const CombinedTitle = "Documento Combinado"

const (
	defaultFontSize  = "12pt"
	defaultPaperSize = "a4paper"
)

// Supported reports whether format has a renderer.
func Supported(format string) bool {
	switch format {
	case models.FormatPDF, models.FormatLaTeX, models.FormatDOCX:
		return true
	}
	return false
}

// Individual renders one content item.
func Individual(format string, c models.Content, s models.ExportSettings) ([]byte, error) {
	switch format {
	case models.FormatPDF, models.FormatLaTeX:
		return []byte(latexDocument(c.Title, c.MarkdownContent, s, false)), nil
	case models.FormatDOCX:
		return []byte(htmlDocument(c.Title, c.MarkdownContent, s)), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// Combined renders contents in the given order under one title.
func Combined(format, title string, contents []models.Content, s models.ExportSettings) ([]byte, error) {
	if title == "" {
		title = CombinedTitle
	}
	switch format {
	case models.FormatPDF, models.FormatLaTeX:
		return []byte(latexDocument(title, joinSections(contents), s, true)), nil
	case models.FormatDOCX:
		var b strings.Builder
		b.WriteString("<html><body><h1>")
		b.WriteString(html.EscapeString(title))
		b.WriteString("</h1>")
		b.WriteString(joinSections(contents))
		b.WriteString("</body></html>")
		return []byte(b.String()), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

func joinSections(contents []models.Content) string {
	var b strings.Builder
	for _, c := range contents {
		fmt.Fprintf(&b, "\\section{%s}\n", c.Title)
		b.WriteString(c.MarkdownContent)
		b.WriteString("\n\n")
	}
	return b.String()
}

func latexDocument(title, body string, s models.ExportSettings, toc bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\\documentclass[%s]{article}\n", orDefault(s.FontSize, defaultFontSize))
	b.WriteString("\\usepackage[utf8]{inputenc}\n")
	b.WriteString("\\usepackage[spanish]{babel}\n")
	fmt.Fprintf(&b, "\\usepackage[%s]{geometry}\n\n", orDefault(s.PaperSize, defaultPaperSize))
	fmt.Fprintf(&b, "\\title{%s}\n", title)
	b.WriteString("\\date{\\today}\n\n")
	b.WriteString("\\begin{document}\n")
	b.WriteString("\\maketitle\n")
	if toc {
		b.WriteString("\\tableofcontents\n")
		b.WriteString("\\newpage\n")
	}
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n\n\\end{document}\n")
	return b.String()
}

func htmlDocument(title, body string, s models.ExportSettings) string {
	t := html.EscapeString(title)
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString("    <meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "    <title>%s</title>\n", t)
	fmt.Fprintf(&b, "    <style>\n        body { font-size: %s; }\n    </style>\n", orDefault(s.FontSize, defaultFontSize))
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "    <h1>%s</h1>\n", t)
	fmt.Fprintf(&b, "    <div>%s</div>\n", body)
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func orDefault(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}

var mimeTypes = map[string]string{
	"pdf":   "application/pdf",
	"docx":  "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"latex": "text/plain",
	"html":  "text/html",
	"txt":   "text/plain",
}

// MIMEType picks the response content type from a file name extension.
func MIMEType(filename string) string {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		ext = "txt"
	}
	if m, ok := mimeTypes[strings.ToLower(ext)]; ok {
		return m
	}
	return "application/octet-stream"
}

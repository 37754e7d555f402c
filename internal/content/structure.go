package content

import (
	"strings"

	"syllabus-content-service/internal/models"
)

// DefaultTitle is used when the text carries no "# " heading.
const DefaultTitle = "Contenido Generado"

// Structured is generated text split into a title and the four section slots.
type Structured struct {
	Title    string
	Markdown string
	Sections models.Sections
}

type sectionRule struct {
	section  string
	keywords []string
}

// Rules are checked in order and the first hit wins. "objetivo" sits in the
// introduction group, so Spanish objective headings land in introduction.
var sectionRules = []sectionRule{
	{models.SectionIntroduction, []string{"introducción", "introduction", "objetivo"}},
	{models.SectionObjectives, []string{"objetivo", "objective"}},
	{models.SectionConclusion, []string{"conclusión", "conclusion", "resumen"}},
}

// Structure extracts a title and splits text into sections by keyword.
// Lines before the first keyword belong to development. The line that
// triggered a switch is kept as the first line of its new section.
func Structure(text string) Structured {
	lines := strings.Split(text, "\n")

	out := Structured{Title: DefaultTitle, Markdown: text}
	for _, line := range lines {
		if strings.HasPrefix(line, "# ") {
			out.Title = strings.TrimSpace(line[2:])
			break
		}
	}

	slots := map[string]string{}
	current := models.SectionDevelopment
	var buf []string
	for _, line := range lines {
		if next, ok := classify(line); ok {
			if len(buf) > 0 {
				slots[current] = strings.Join(buf, "\n")
				buf = nil
			}
			current = next
		}
		buf = append(buf, line)
	}
	if len(buf) > 0 {
		slots[current] = strings.Join(buf, "\n")
	}

	out.Sections = models.Sections{
		Introduction: slots[models.SectionIntroduction],
		Objectives:   slots[models.SectionObjectives],
		Development:  slots[models.SectionDevelopment],
		Conclusion:   slots[models.SectionConclusion],
	}
	return out
}

func classify(line string) (string, bool) {
	lower := strings.ToLower(line)
	for _, r := range sectionRules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.section, true
			}
		}
	}
	return "", false
}

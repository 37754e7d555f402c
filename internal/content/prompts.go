package content

import (
	"fmt"

	"syllabus-content-service/internal/models"
)

const (
	// SyllabusExcerptLimit caps how many characters of the document go into a prompt.
	SyllabusExcerptLimit = 3000
	// TokensPerSection scales the provider token budget by requested sections.
	TokensPerSection = 400
	// Temperature is the sampling temperature for every generation.
	Temperature = 0.7
)

var systemPrompts = map[string]string{
	models.ContentTypeClassSession: `Eres un experto en diseño instruccional. Genera una sesión de clase completa que incluya:
1. Introducción y objetivos claros
2. Desarrollo del tema con actividades
3. Conclusiones y evaluación
4. Recursos y materiales necesarios
Usa formato markdown y estructura pedagógica sólida.`,

	models.ContentTypeStudyGuide: `Eres un especialista en materiales educativos. Crea una guía de estudio que incluya:
1. Resumen de conceptos clave
2. Ejercicios prácticos
3. Preguntas de autoevaluación
4. Referencias adicionales
Usa formato markdown y enfoque didáctico.`,

	models.ContentTypePresentation: `Eres un diseñador de presentaciones educativas. Crea contenido para diapositivas que incluya:
1. Diapositivas de título y agenda
2. Contenido principal con puntos clave
3. Diapositivas de actividades interactivas
4. Diapositiva de conclusiones
Usa formato markdown optimizado para presentaciones.`,
}

// SystemPrompt returns the instruction template for a content type.
// Types without their own template use the class session one.
func SystemPrompt(contentType string) string {
	if p, ok := systemPrompts[contentType]; ok {
		return p
	}
	return systemPrompts[models.ContentTypeClassSession]
}

// UserPrompt builds the request text from the syllabus and the job configuration.
func UserPrompt(doc models.Document, gen models.Generation) string {
	cfg := gen.Configuration

	level := cfg.EducationalLevel
	if level == "" {
		level = "universitario"
	}
	approach := cfg.PedagogicalApproach
	if approach == "" {
		approach = "Basado en competencias"
	}
	sections := cfg.ContentLength
	if sections == 0 {
		sections = 5
	}
	language := cfg.Language
	if language == "" {
		language = "español"
	}
	extra := cfg.AdditionalInstructions
	if extra == "" {
		extra = "Ninguna"
	}

	return fmt.Sprintf(`Basándote en el siguiente contenido del sílabo, genera %s
para el nivel %s.

Contenido del sílabo:
%s

Configuración:
- Enfoque pedagógico: %s
- Longitud de contenido: %d secciones
- Idioma: %s

Instrucciones adicionales:
%s

Genera contenido educativo estructurado, práctico y aplicable.`,
		gen.ContentType, level, Excerpt(doc.TextContent, SyllabusExcerptLimit), approach, sections, language, extra)
}

// Excerpt returns at most n characters (runes) of s.
func Excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// MaxTokens is the provider token budget for a configuration.
func MaxTokens(cfg models.GenerationConfig) int {
	sections := cfg.ContentLength
	if sections == 0 {
		sections = 5
	}
	return sections * TokensPerSection
}

package provider

import (
	"context"
	"fmt"
)

// StubModel is the default model of the canned backend.
const StubModel = "mixtral-8x7b-32768"

// Stub returns a fixed class session body without calling any service.
type Stub struct {
	model string
}

var _ Provider = (*Stub)(nil)

func NewStub(model string) *Stub {
	if model == "" {
		model = StubModel
	}
	return &Stub{model: model}
}

func (s *Stub) Generate(_ context.Context, _ string, _ GenerateOptions) (string, error) {
	return fmt.Sprintf(stubBody, s.model), nil
}

func (s *Stub) Models() []string {
	return []string{"mixtral-8x7b-32768", "llama2-70b-4096", "gemma-7b-it"}
}

func (s *Stub) Probe(context.Context) bool { return true }

const stubBody = `# Sesión de Clase Generada por IA

## Introducción
Esta es una sesión de clase generada automáticamente basada en el contenido del sílabo proporcionado.

## Objetivos
- Comprender los conceptos fundamentales del tema
- Aplicar los conocimientos en ejercicios prácticos
- Desarrollar habilidades de análisis crítico

## Desarrollo del Tema

### Conceptos Clave
- Concepto 1: Definición y características principales
- Concepto 2: Aplicaciones prácticas
- Concepto 3: Relación con otros temas

### Actividades
1. **Actividad Introductoria** (10 minutos)
   - Lluvia de ideas sobre conocimientos previos
   - Presentación de casos reales

2. **Desarrollo Teórico** (20 minutos)
   - Explicación de conceptos fundamentales
   - Ejemplos ilustrativos

3. **Práctica Guiada** (15 minutos)
   - Ejercicios en grupo
   - Resolución de problemas típicos

## Conclusiones
- Resumen de puntos clave
- Conexión con la siguiente sesión
- Tareas para casa

## Recursos Necesarios
- Presentación digital
- Material impreso
- Acceso a internet
- Pizarra o proyector

## Evaluación
- Participación en clase: 40%%
- Ejercicios prácticos: 60%%

*Contenido generado por IA - Proveedor: %s*
`

// DemoText is returned when no provider is registered or every provider failed.
const DemoText = `# Contenido Demo

Este es contenido de demostración generado porque no hay proveedores de IA configurados.

## Para configurar un proveedor:
1. Obtén una API key del proveedor (ej: Groq)
2. Agrega la key al archivo de configuración
3. Reinicia el servicio

## Proveedores soportados:
- Groq (gratuito)
- OpenAI (pago)
- Claude (pago)
- Gemini (gratuito con límites)
`

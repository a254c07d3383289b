// Package planner returns the canned multi-step plan associated with a
// life-area category. Plan content is static, loaded once, never mutated.
package planner

import (
	"fmt"
	"strings"

	"github.com/souldream/backend/internal/classifier"
)

// plans maps each category to its ordered step sequence. Every category the
// classifier can produce must have an entry here; TestPlanCompleteness
// enforces the invariant.
var plans = map[classifier.Category][]string{
	classifier.CategoryDevelopment: {
		"Objetivo: Desarrollar una carrera profesional exitosa",
		"Investigar oportunidades y tendencias del mercado",
		"Crear un plan de desarrollo profesional detallado",
		"Establecer metas a corto y largo plazo",
		"Identificar habilidades clave a desarrollar",
		"Buscar mentores y networking",
		"Actualizar CV y perfil profesional",
		"Participar en proyectos relevantes",
	},
	classifier.CategoryHealth: {
		"Objetivo: Mejorar la salud y bienestar general",
		"Realizar chequeo médico general",
		"Establecer rutina de ejercicios",
		"Planificar alimentación saludable",
		"Establecer horarios de descanso",
		"Practicar técnicas de manejo del estrés",
		"Mantener registro de progreso",
		"Consultar con profesionales de la salud",
	},
	classifier.CategoryEducation: {
		"Objetivo: Ampliar conocimientos y habilidades",
		"Identificar áreas de aprendizaje prioritarias",
		"Investigar recursos educativos disponibles",
		"Crear calendario de estudio",
		"Establecer objetivos de aprendizaje medibles",
		"Participar en cursos o programas",
		"Practicar habilidades nuevas",
		"Evaluar progreso regularmente",
	},
	classifier.CategoryFinance: {
		"Objetivo: Mejorar situación financiera",
		"Analizar ingresos y gastos actuales",
		"Crear presupuesto detallado",
		"Establecer metas financieras",
		"Identificar oportunidades de ahorro",
		"Investigar opciones de inversión",
		"Desarrollar fuentes adicionales de ingreso",
		"Revisar y ajustar estrategias",
	},
	classifier.CategoryHobby: {
		"Objetivo: Desarrollar nuevas habilidades recreativas",
		"Investigar sobre el hobby elegido",
		"Adquirir materiales o equipos necesarios",
		"Establecer tiempo regular de práctica",
		"Conectar con comunidades afines",
		"Participar en eventos o grupos",
		"Documentar progreso y experiencias",
		"Compartir y celebrar logros",
	},
}

// Steps returns the ordered plan steps for the given category. Unknown
// values fall back to the default category's plan instead of failing.
func Steps(cat classifier.Category) []string {
	steps, ok := plans[cat]
	if !ok {
		steps = plans[classifier.DefaultCategory]
	}
	out := make([]string, len(steps))
	copy(out, steps)
	return out
}

// Render joins the plan steps into the numbered text block the API returns.
func Render(cat classifier.Category) string {
	steps := Steps(cat)
	var b strings.Builder
	for i, step := range steps {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, step)
	}
	return b.String()
}

// Package classifier buckets free-text goals into a fixed set of life-area
// categories using keyword-frequency scoring. The keyword table is static
// and read-only after load, safe for unlimited concurrent readers.
package classifier

import "strings"

// Category is one value from the fixed life-area vocabulary.
type Category string

const (
	CategoryDevelopment Category = "desarrollo"
	CategoryHealth      Category = "salud"
	CategoryEducation   Category = "educacion"
	CategoryFinance     Category = "finanzas"
	CategoryHobby       Category = "hobby"
)

// DefaultCategory is returned when no keyword from any category matches.
var DefaultCategory = CategoryDevelopment

// Categories returns the closed vocabulary in declaration order. The order
// is load-bearing: ties during classification resolve to the earliest entry.
func Categories() []Category {
	return []Category{
		CategoryDevelopment,
		CategoryHealth,
		CategoryEducation,
		CategoryFinance,
		CategoryHobby,
	}
}

// Valid reports whether c is part of the closed vocabulary.
func Valid(c Category) bool {
	switch c {
	case CategoryDevelopment, CategoryHealth, CategoryEducation, CategoryFinance, CategoryHobby:
		return true
	}
	return false
}

// keywords maps each category to its case-insensitive substring patterns.
// Each keyword contributes at most one point per classification regardless
// of how often it repeats in the input.
var keywords = map[Category][]string{
	CategoryDevelopment: {
		"programación", "código", "desarrollo", "software", "web", "app",
		"aplicación", "tecnología", "programar", "carrera", "profesional",
		"proyecto", "trabajo",
	},
	CategoryHealth: {
		"ejercicio", "dieta", "nutrición", "peso", "gimnasio", "salud",
		"bienestar", "deporte", "entrenamiento",
	},
	CategoryEducation: {
		"estudiar", "aprender", "curso", "certificación", "universidad",
		"educación", "conocimiento",
	},
	CategoryFinance: {
		"dinero", "inversión", "ahorro", "finanzas", "presupuesto",
		"gastos", "ingresos",
	},
	CategoryHobby: {
		"hobby", "pasatiempo", "música", "arte", "pintura", "fotografía",
		"jardinería", "lectura", "colección",
	},
}

// Result is the chosen category plus the winning match count.
type Result struct {
	Category Category
	Matches  int
}

// Classify returns the single best-matching category for the given text.
// Scoring counts how many of a category's keywords occur as substrings of
// the lower-cased input. The first category (in declaration order) reaching
// the maximum score wins; zero matches everywhere yields DefaultCategory.
// Pure function, never errors.
func Classify(text string) Result {
	lowered := strings.ToLower(text)

	best := Result{Category: DefaultCategory, Matches: 0}
	for _, cat := range Categories() {
		count := 0
		for _, kw := range keywords[cat] {
			if strings.Contains(lowered, kw) {
				count++
			}
		}
		if count > best.Matches {
			best = Result{Category: cat, Matches: count}
		}
	}
	return best
}

// Package foods holds the static Indian food reference table.
package foods

import (
	"strings"

	"indian-meal-log/internal/models"
)

// DefaultSearchLimit is the number of entries an empty search returns.
const DefaultSearchLimit = 10

type NutritionalInfo struct {
	CaloriesPer100g float64 `json:"calories_per_100g"`
	ProteinPer100g  float64 `json:"protein_per_100g"`
	CarbsPer100g    float64 `json:"carbs_per_100g"`
	FatPer100g      float64 `json:"fat_per_100g"`
	FiberPer100g    float64 `json:"fiber_per_100g"`
}

// Macros returns the per-100g values as a Macros value.
func (n NutritionalInfo) Macros() models.Macros {
	return models.Macros{
		Calories: n.CaloriesPer100g,
		Protein:  n.ProteinPer100g,
		Carbs:    n.CarbsPer100g,
		Fat:      n.FatPer100g,
		Fiber:    n.FiberPer100g,
	}
}

type ReferenceFood struct {
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Region          string          `json:"region"`
	NutritionalInfo NutritionalInfo `json:"nutritional_info"`
}

// Table is an immutable, ordered list of reference foods. The zero value is
// an empty table.
type Table struct {
	foods []ReferenceFood
}

// NewTable copies foods into a new Table, preserving order.
func NewTable(foods []ReferenceFood) *Table {
	cp := make([]ReferenceFood, len(foods))
	copy(cp, foods)
	return &Table{foods: cp}
}

// Default returns the built-in Indian food table.
func Default() *Table {
	return NewTable(indianFoods)
}

func (t *Table) Len() int {
	return len(t.foods)
}

// All returns a copy of every entry in table order.
func (t *Table) All() []ReferenceFood {
	out := make([]ReferenceFood, len(t.foods))
	copy(out, t.foods)
	return out
}

// First returns the first entry of the table. ok is false for an empty table.
func (t *Table) First() (ReferenceFood, bool) {
	if len(t.foods) == 0 {
		return ReferenceFood{}, false
	}
	return t.foods[0], true
}

// Lookup finds the first entry whose name contains label, or is contained in
// label, ignoring case.
func (t *Table) Lookup(label string) (ReferenceFood, bool) {
	l := strings.ToLower(label)
	for _, f := range t.foods {
		name := strings.ToLower(f.Name)
		if strings.Contains(name, l) || strings.Contains(l, name) {
			return f, true
		}
	}
	return ReferenceFood{}, false
}

// Search matches query against name, category and region. An empty query
// returns the first DefaultSearchLimit entries.
func (t *Table) Search(query string) []ReferenceFood {
	if query == "" {
		n := min(DefaultSearchLimit, len(t.foods))
		out := make([]ReferenceFood, n)
		copy(out, t.foods[:n])
		return out
	}

	q := strings.ToLower(query)
	matches := []ReferenceFood{}
	for _, f := range t.foods {
		if strings.Contains(strings.ToLower(f.Name), q) ||
			strings.Contains(strings.ToLower(f.Category), q) ||
			strings.Contains(strings.ToLower(f.Region), q) {
			matches = append(matches, f)
		}
	}
	return matches
}

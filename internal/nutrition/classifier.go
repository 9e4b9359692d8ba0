// Package nutrition turns free-text food analysis into structured macros.
package nutrition

import (
	"strings"

	"indian-meal-log/internal/models"
)

const (
	// NotIndianMarker is emitted by the analyzer when the photo is not Indian food.
	NotIndianMarker = "NOT_INDIAN_FOOD"

	NonIndianLabel = "Non-Indian Food Detected"
	GenericLabel   = "Indian meal"

	GenericQuantity = 150.0

	ConfidenceMatched = 8
	ConfidenceFailed  = 1
)

// Rule maps a set of keywords to a display label and default portion.
type Rule struct {
	Keywords []string
	Label    string
	Quantity float64
}

// Matches reports whether any keyword occurs in the lowercased text.
func (r Rule) Matches(lower string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// DefaultRules is evaluated in order; the first matching rule wins.
var DefaultRules = []Rule{
	{Keywords: []string{"rice", "biryani", "pulao"}, Label: "Rice-based Indian dish", Quantity: 200},
	{Keywords: []string{"dal", "lentil", "sambar", "rasam"}, Label: "Dal/Lentil curry", Quantity: 150},
	{Keywords: []string{"roti", "chapati", "naan", "paratha"}, Label: "Indian bread", Quantity: 80},
	{Keywords: []string{"curry", "sabzi", "vegetable"}, Label: "Indian vegetable curry", Quantity: 120},
	{Keywords: []string{"chicken", "mutton", "meat"}, Label: "Indian meat curry", Quantity: 150},
	{Keywords: []string{"paneer"}, Label: "Paneer dish", Quantity: 130},
	{Keywords: []string{"idli", "dosa", "uttapam"}, Label: "South Indian breakfast", Quantity: 120},
	{Keywords: []string{"samosa", "pakoda", "chaat"}, Label: "Indian snack", Quantity: 100},
}

type Classifier struct {
	rules []Rule
}

// NewClassifier uses DefaultRules when rules is empty.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

// Classify reads the analyzer's text. It never fails: text without a known
// dish falls back to a generic Indian meal.
func (c *Classifier) Classify(text string) models.Classification {
	if strings.Contains(strings.ToUpper(text), NotIndianMarker) {
		return models.Classification{
			FoodName:     NonIndianLabel,
			IsIndianFood: false,
			Confidence:   ConfidenceFailed,
			AIAnalysis:   text,
		}
	}

	label, qty := GenericLabel, GenericQuantity
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		if r.Matches(lower) {
			label, qty = r.Label, r.Quantity
			break
		}
	}

	return models.Classification{
		FoodName:          label,
		EstimatedQuantity: &qty,
		IsIndianFood:      true,
		Confidence:        ConfidenceMatched,
		AIAnalysis:        text,
	}
}

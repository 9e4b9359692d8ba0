package nutrition

import (
	"errors"
	"fmt"
	"math"

	"indian-meal-log/internal/foods"
	"indian-meal-log/internal/models"
)

// ErrInvalidQuantity is returned for non-positive or non-finite quantities.
var ErrInvalidQuantity = errors.New("quantity must be a positive number of grams")

// Fallback ratios per gram, used when there is no label to look up.
const (
	fallbackCaloriesPerGram = 1.5
	fallbackProteinRatio    = 0.06
	fallbackCarbsRatio      = 0.25
	fallbackFatRatio        = 0.04
	fallbackFiberRatio      = 0.02
)

type Estimator struct {
	table *foods.Table
}

func NewEstimator(table *foods.Table) *Estimator {
	return &Estimator{table: table}
}

// Estimate computes macros for quantity grams of label. A label that matches
// no reference food is estimated as the table's first entry. An empty label,
// or an empty table, uses the fixed-ratio fallback.
func (e *Estimator) Estimate(label string, quantity float64) (models.Macros, error) {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return models.Macros{}, fmt.Errorf("%w: %v", ErrInvalidQuantity, quantity)
	}

	if label == "" {
		return Fallback(quantity), nil
	}

	food, ok := e.table.Lookup(label)
	if !ok {
		food, ok = e.table.First()
		if !ok {
			return Fallback(quantity), nil
		}
	}

	return Scale(food, quantity), nil
}

// Scale multiplies the food's per-100g macros by quantity/100.
func Scale(food foods.ReferenceFood, quantity float64) models.Macros {
	return food.NutritionalInfo.Macros().Scale(quantity / 100.0)
}

// Fallback estimates a mixed Indian meal from fixed ratios, rounded to one decimal.
func Fallback(quantity float64) models.Macros {
	return models.Macros{
		Calories: models.RoundTo(quantity*fallbackCaloriesPerGram, 1),
		Protein:  models.RoundTo(quantity*fallbackProteinRatio, 1),
		Carbs:    models.RoundTo(quantity*fallbackCarbsRatio, 1),
		Fat:      models.RoundTo(quantity*fallbackFatRatio, 1),
		Fiber:    models.RoundTo(quantity*fallbackFiberRatio, 1),
	}
}

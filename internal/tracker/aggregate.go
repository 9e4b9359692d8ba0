package tracker

import (
	"context"
	"fmt"
	"time"

	"indian-meal-log/internal/models"
)

// RecommendedDailyProtein is 0.8 g per kg for a 70 kg adult.
const RecommendedDailyProtein = 56.0

// MaxSummaryDays bounds the summary window so its start stays within the
// range of stored nanosecond timestamps.
const MaxSummaryDays = 36500

var highProteinFoods = []string{
	"Paneer (18g protein per 100g)",
	"Dal/Lentils (22g protein per 100g)",
	"Chicken (25g protein per 100g)",
	"Chickpeas (19g protein per 100g)",
	"Greek Yogurt (10g protein per 100g)",
}

// Suggestion tiers, chosen by the remaining protein deficit.
var (
	suggestionsLarge = []string{
		"Add a bowl of dal or lentils (15-20g protein)",
		"Include paneer in your next meal (15-18g protein)",
		"Have a protein smoothie with yogurt and nuts",
	}
	suggestionsMedium = []string{
		"Add some nuts or seeds to your meal",
		"Include a small portion of paneer or dal",
		"Have a glass of buttermilk or lassi",
	}
	suggestionsSmall = []string{
		"You're close to your target! Add some nuts as snack",
		"A small bowl of yogurt will complete your protein needs",
	}
	suggestionsMet = []string{
		"Great job! You've met your protein target for today",
		"Maintain this balanced approach to nutrition",
	}
)

// MealReader is the read side of the meal store used for aggregation.
type MealReader interface {
	ListSince(ctx context.Context, userID string, since time.Time) ([]*models.Meal, error)
}

type Aggregator struct {
	meals MealReader
	now   func() time.Time
}

func NewAggregator(meals MealReader, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{meals: meals, now: now}
}

// Summarize totals the user's macros over the last days and averages them
// per day of the window.
func (a *Aggregator) Summarize(ctx context.Context, userID string, days int) (*models.NutritionSummary, error) {
	if days < 1 || days > MaxSummaryDays {
		return nil, invalid("days", fmt.Sprintf("must be between 1 and %d", MaxSummaryDays))
	}

	since := a.now().UTC().AddDate(0, 0, -days)
	meals, err := a.meals.ListSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load meals: %w", err)
	}

	var total models.Macros
	for _, m := range meals {
		total = total.Add(m.Macros())
	}

	return &models.NutritionSummary{
		PeriodDays:    days,
		TotalMeals:    len(meals),
		TotalCalories: models.RoundTo(total.Calories, 2),
		TotalProtein:  models.RoundTo(total.Protein, 2),
		TotalCarbs:    models.RoundTo(total.Carbs, 2),
		TotalFat:      models.RoundTo(total.Fat, 2),
		TotalFiber:    models.RoundTo(total.Fiber, 2),
		DailyAverage:  total.Scale(1 / float64(days)).Round(2),
	}, nil
}

// ProteinRecommendation compares today's protein (since UTC midnight) with
// the recommended daily intake.
func (a *Aggregator) ProteinRecommendation(ctx context.Context, userID string) (*models.ProteinRecommendation, error) {
	now := a.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	meals, err := a.meals.ListSince(ctx, userID, midnight)
	if err != nil {
		return nil, fmt.Errorf("failed to load meals: %w", err)
	}

	var current float64
	for _, m := range meals {
		current += m.Protein
	}

	deficit := max(0, RecommendedDailyProtein-current)

	return &models.ProteinRecommendation{
		RecommendedDailyProtein: RecommendedDailyProtein,
		CurrentProtein:          models.RoundTo(current, 2),
		Deficit:                 models.RoundTo(deficit, 2),
		PercentageComplete:      models.RoundTo(current/RecommendedDailyProtein*100, 1),
		HighProteinFoods:        append([]string(nil), highProteinFoods...),
		MealSuggestions:         append([]string(nil), suggestionsFor(deficit)...),
	}, nil
}

func suggestionsFor(deficit float64) []string {
	switch {
	case deficit > 20:
		return suggestionsLarge
	case deficit > 10:
		return suggestionsMedium
	case deficit > 0:
		return suggestionsSmall
	default:
		return suggestionsMet
	}
}

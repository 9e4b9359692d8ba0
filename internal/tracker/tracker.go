// Package tracker implements the meal log operations on top of the analyzer,
// the nutrition heuristics and the meal store.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"indian-meal-log/internal/foods"
	"indian-meal-log/internal/models"
	"indian-meal-log/internal/nutrition"
)

// DefaultRecentLimit is used when a recent-meals query gives no limit.
const DefaultRecentLimit = 14

const (
	unableToAnalyzeLabel = "Unable to analyze image"
	unableToAnalyzeText  = "Could not analyze the image. Please try again with a clearer photo."
)

var analysesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "meal_log_analyses_total",
		Help: "Meal photo analyses by outcome.",
	},
	[]string{"outcome"},
)

// Analyzer describes a food photo in free text.
type Analyzer interface {
	Analyze(ctx context.Context, imageBase64, description string) (string, error)
}

type MealStore interface {
	MealReader
	Append(ctx context.Context, meal *models.Meal) error
	ListRecent(ctx context.Context, userID string, limit int) ([]*models.Meal, error)
	Delete(ctx context.Context, mealID string) error
}

type Options struct {
	// TrustClientNutrition stores caller-supplied macros on log instead of
	// recomputing them from food name and quantity.
	TrustClientNutrition bool
	Rules                []nutrition.Rule
	Now                  func() time.Time
	Logger               *slog.Logger
}

type Tracker struct {
	*Aggregator

	analyzer   Analyzer
	store      MealStore
	table      *foods.Table
	classifier *nutrition.Classifier
	estimator  *nutrition.Estimator
	logger     *slog.Logger
	trust      bool
}

func New(analyzer Analyzer, store MealStore, table *foods.Table, opts Options) *Tracker {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		Aggregator: NewAggregator(store, opts.Now),
		analyzer:   analyzer,
		store:      store,
		table:      table,
		classifier: nutrition.NewClassifier(opts.Rules...),
		estimator:  nutrition.NewEstimator(table),
		logger:     logger,
		trust:      opts.TrustClientNutrition,
	}
}

// AnalyzeMeal asks the analyzer about the photo and estimates nutrition from
// its answer. Analyzer failures produce a low-confidence result, not an error.
func (t *Tracker) AnalyzeMeal(ctx context.Context, req models.MealAnalysisRequest) (*models.MealAnalysis, error) {
	if strings.TrimSpace(req.ImageBase64) == "" {
		return nil, invalid("image_base64", "is required")
	}

	text, err := t.analyzer.Analyze(ctx, req.ImageBase64, req.Description)
	if err != nil {
		t.logger.Error("Error analyzing food image", slog.String("error", err.Error()))
		analysesTotal.WithLabelValues("failed").Inc()
		return &models.MealAnalysis{
			Classification: models.Classification{
				FoodName:   unableToAnalyzeLabel,
				Confidence: nutrition.ConfidenceFailed,
				AIAnalysis: unableToAnalyzeText,
			},
		}, nil
	}

	c := t.classifier.Classify(text)
	if !c.IsIndianFood {
		analysesTotal.WithLabelValues("not_indian").Inc()
		return &models.MealAnalysis{Classification: c}, nil
	}

	macros, err := t.estimator.Estimate(c.FoodName, *c.EstimatedQuantity)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate nutrition: %w", err)
	}
	analysesTotal.WithLabelValues("indian").Inc()

	return &models.MealAnalysis{
		Classification: c,
		Nutrition:      models.NewNullableMacros(macros.Round(2)),
	}, nil
}

// LogMeal validates and stores a meal, returning the new meal id.
func (t *Tracker) LogMeal(ctx context.Context, req models.LogMealRequest) (string, error) {
	if strings.TrimSpace(req.FoodName) == "" {
		return "", invalid("food_name", "is required")
	}
	if req.EstimatedQuantity == nil {
		return "", invalid("estimated_quantity", "is required")
	}
	qty := *req.EstimatedQuantity
	if math.IsNaN(qty) || math.IsInf(qty, 0) || qty <= 0 {
		return "", invalid("estimated_quantity", "must be a positive number of grams")
	}
	mealType := req.MealType
	if mealType == "" {
		mealType = models.MealGeneral
	}
	if !mealType.Valid() {
		return "", invalid("meal_type", fmt.Sprintf("unknown meal type %q", mealType))
	}

	macros, err := t.mealMacros(req, qty)
	if err != nil {
		return "", err
	}

	userID := req.UserID
	if userID == "" {
		userID = models.DefaultUserID
	}

	meal := &models.Meal{
		UserID:            userID,
		FoodName:          req.FoodName,
		EstimatedQuantity: qty,
		ImageBase64:       req.ImageBase64,
		AIAnalysis:        req.AIAnalysis,
		MealType:          mealType,
	}
	meal.SetMacros(macros.Round(2))

	if err := t.store.Append(ctx, meal); err != nil {
		return "", fmt.Errorf("failed to save meal: %w", err)
	}
	return meal.ID, nil
}

func (t *Tracker) mealMacros(req models.LogMealRequest, qty float64) (models.Macros, error) {
	if t.trust && req.Nutrition != nil {
		n := *req.Nutrition
		for _, v := range []float64{n.Calories, n.Protein, n.Carbs, n.Fat, n.Fiber} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return models.Macros{}, invalid("nutrition", "values must be non-negative numbers")
			}
		}
		return n, nil
	}

	if req.Nutrition != nil {
		t.logger.Debug("Ignoring client-supplied nutrition", slog.String("food_name", req.FoodName))
	}
	macros, err := t.estimator.Estimate(req.FoodName, qty)
	if err != nil {
		return models.Macros{}, invalid("estimated_quantity", err.Error())
	}
	return macros, nil
}

// RecentMeals returns the user's newest meals. A non-positive limit means
// DefaultRecentLimit.
func (t *Tracker) RecentMeals(ctx context.Context, userID string, limit int) ([]*models.Meal, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	meals, err := t.store.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch meals: %w", err)
	}
	return meals, nil
}

func (t *Tracker) DeleteMeal(ctx context.Context, mealID string) error {
	if strings.TrimSpace(mealID) == "" {
		return invalid("meal_id", "is required")
	}
	if err := t.store.Delete(ctx, mealID); err != nil {
		return fmt.Errorf("failed to delete meal: %w", err)
	}
	return nil
}

func (t *Tracker) SearchFoods(query string) []foods.ReferenceFood {
	return t.table.Search(query)
}

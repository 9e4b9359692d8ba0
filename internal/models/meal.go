// internal/models/meal.go
package models

import (
	"encoding/json"
	"time"
)

// DefaultUserID is used when a caller does not identify the user.
const DefaultUserID = "default_user"

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
	MealGeneral   MealType = "general"
	MealTest      MealType = "test"
)

// Valid reports whether t is one of the known meal types.
func (t MealType) Valid() bool {
	switch t {
	case MealBreakfast, MealLunch, MealDinner, MealSnack, MealGeneral, MealTest:
		return true
	}
	return false
}

// Macros holds the five tracked nutrition values.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

// Add returns the element-wise sum of m and o.
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
		Fiber:    m.Fiber + o.Fiber,
	}
}

// Scale multiplies every macro by f.
func (m Macros) Scale(f float64) Macros {
	return Macros{
		Calories: m.Calories * f,
		Protein:  m.Protein * f,
		Carbs:    m.Carbs * f,
		Fat:      m.Fat * f,
		Fiber:    m.Fiber * f,
	}
}

// Round rounds every macro to the given number of decimals.
func (m Macros) Round(decimals int) Macros {
	return Macros{
		Calories: RoundTo(m.Calories, decimals),
		Protein:  RoundTo(m.Protein, decimals),
		Carbs:    RoundTo(m.Carbs, decimals),
		Fat:      RoundTo(m.Fat, decimals),
		Fiber:    RoundTo(m.Fiber, decimals),
	}
}

type Meal struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	FoodName          string    `json:"food_name"`
	EstimatedQuantity float64   `json:"estimated_quantity"`
	Calories          float64   `json:"calories"`
	Protein           float64   `json:"protein"`
	Carbs             float64   `json:"carbs"`
	Fat               float64   `json:"fat"`
	Fiber             float64   `json:"fiber"`
	ImageBase64       *string   `json:"image_base64,omitempty"`
	AIAnalysis        *string   `json:"ai_analysis,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
	MealType          MealType  `json:"meal_type"`
}

// MarshalJSON adds the id under "_id" as well, the key the mobile client
// reads meal ids from.
func (m Meal) MarshalJSON() ([]byte, error) {
	type meal Meal
	return json.Marshal(struct {
		LegacyID string `json:"_id"`
		meal
	}{LegacyID: m.ID, meal: meal(m)})
}

// Macros returns the nutrition values stored on the meal.
func (m *Meal) Macros() Macros {
	return Macros{
		Calories: m.Calories,
		Protein:  m.Protein,
		Carbs:    m.Carbs,
		Fat:      m.Fat,
		Fiber:    m.Fiber,
	}
}

// SetMacros copies n onto the meal's nutrition fields.
func (m *Meal) SetMacros(n Macros) {
	m.Calories = n.Calories
	m.Protein = n.Protein
	m.Carbs = n.Carbs
	m.Fat = n.Fat
	m.Fiber = n.Fiber
}

// Classification is the structured reading of a free-text AI analysis.
type Classification struct {
	FoodName          string   `json:"food_name"`
	EstimatedQuantity *float64 `json:"estimated_quantity"`
	IsIndianFood      bool     `json:"is_indian_food"`
	Confidence        int      `json:"confidence"`
	AIAnalysis        string   `json:"ai_analysis"`
}

// NullableMacros mirrors Macros but renders every field as null when absent.
type NullableMacros struct {
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fat      *float64 `json:"fat"`
	Fiber    *float64 `json:"fiber"`
}

// NewNullableMacros wraps m so that every field is present.
func NewNullableMacros(m Macros) NullableMacros {
	return NullableMacros{
		Calories: &m.Calories,
		Protein:  &m.Protein,
		Carbs:    &m.Carbs,
		Fat:      &m.Fat,
		Fiber:    &m.Fiber,
	}
}

// MealAnalysis is the response of analyzing a meal photo.
type MealAnalysis struct {
	Classification
	Nutrition NullableMacros `json:"nutrition"`
}

type MealAnalysisRequest struct {
	ImageBase64 string `json:"image_base64"`
	Description string `json:"description,omitempty"`
}

// LogMealRequest carries the fields a caller may supply when logging a meal.
// Nutrition is ignored unless the service runs in client-trust mode.
type LogMealRequest struct {
	UserID            string   `json:"user_id,omitempty"`
	FoodName          string   `json:"food_name"`
	EstimatedQuantity *float64 `json:"estimated_quantity"`
	Nutrition         *Macros  `json:"nutrition,omitempty"`
	ImageBase64       *string  `json:"image_base64,omitempty"`
	AIAnalysis        *string  `json:"ai_analysis,omitempty"`
	MealType          MealType `json:"meal_type,omitempty"`
}

type NutritionSummary struct {
	PeriodDays    int     `json:"period_days"`
	TotalMeals    int     `json:"total_meals"`
	TotalCalories float64 `json:"total_calories"`
	TotalProtein  float64 `json:"total_protein"`
	TotalCarbs    float64 `json:"total_carbs"`
	TotalFat      float64 `json:"total_fat"`
	TotalFiber    float64 `json:"total_fiber"`
	DailyAverage  Macros  `json:"daily_average"`
}

type ProteinRecommendation struct {
	RecommendedDailyProtein float64  `json:"recommended_daily_protein"`
	CurrentProtein          float64  `json:"current_protein"`
	Deficit                 float64  `json:"deficit"`
	PercentageComplete      float64  `json:"percentage_complete"`
	HighProteinFoods        []string `json:"high_protein_foods"`
	MealSuggestions         []string `json:"meal_suggestions"`
}

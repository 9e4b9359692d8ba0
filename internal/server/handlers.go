package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"indian-meal-log/internal/config"
	"indian-meal-log/internal/foods"
	"indian-meal-log/internal/models"
)

type logMealResponse struct {
	Success bool   `json:"success"`
	MealID  string `json:"meal_id"`
	Message string `json:"message"`
}

type recentMealsResponse struct {
	Meals []*models.Meal `json:"meals"`
	Total int            `json:"total"`
}

type deleteMealResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type searchFoodsResponse struct {
	Foods []foods.ReferenceFood `json:"foods"`
}

func (s *MealLogServer) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Indian Calorie Tracker API",
		"version": config.Version,
	})
}

func (s *MealLogServer) handleAnalyzeMeal(w http.ResponseWriter, r *http.Request) {
	var req models.MealAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationError, "invalid JSON body")
		return
	}

	result, err := s.meals.AnalyzeMeal(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, "analyze meal", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *MealLogServer) handleLogMeal(w http.ResponseWriter, r *http.Request) {
	var req models.LogMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationError, "invalid JSON body")
		return
	}

	id, err := s.meals.LogMeal(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, "log meal", err)
		return
	}
	writeJSON(w, http.StatusOK, logMealResponse{
		Success: true,
		MealID:  id,
		Message: "Meal logged successfully",
	})
}

func (s *MealLogServer) handleRecentMeals(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit", 0)
	if !ok {
		return
	}

	meals, err := s.meals.RecentMeals(r.Context(), chi.URLParam(r, "userID"), limit)
	if err != nil {
		s.writeServiceError(w, "fetch meals", err)
		return
	}
	writeJSON(w, http.StatusOK, recentMealsResponse{Meals: meals, Total: len(meals)})
}

func (s *MealLogServer) handleNutritionSummary(w http.ResponseWriter, r *http.Request) {
	days, ok := queryInt(w, r, "days", 1)
	if !ok {
		return
	}

	summary, err := s.meals.Summarize(r.Context(), chi.URLParam(r, "userID"), days)
	if err != nil {
		s.writeServiceError(w, "get nutrition summary", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *MealLogServer) handleProteinRecommendations(w http.ResponseWriter, r *http.Request) {
	rec, err := s.meals.ProteinRecommendation(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeServiceError(w, "get protein recommendations", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *MealLogServer) handleDeleteMeal(w http.ResponseWriter, r *http.Request) {
	if err := s.meals.DeleteMeal(r.Context(), chi.URLParam(r, "mealID")); err != nil {
		s.writeServiceError(w, "delete meal", err)
		return
	}
	writeJSON(w, http.StatusOK, deleteMealResponse{Success: true, Message: "Meal deleted successfully"})
}

func (s *MealLogServer) handleSearchFoods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, searchFoodsResponse{
		Foods: s.meals.SearchFoods(r.URL.Query().Get("query")),
	})
}

// queryInt parses an optional integer query parameter, writing a 400 when it
// is malformed.
func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationError, "invalid "+name+": must be an integer")
		return 0, false
	}
	return n, true
}

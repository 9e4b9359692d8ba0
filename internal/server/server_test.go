package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"indian-meal-log/internal/config"
	"indian-meal-log/internal/foods"
	"indian-meal-log/internal/models"
	"indian-meal-log/internal/storage"
	"indian-meal-log/internal/tracker"
)

type stubAnalyzer struct {
	text string
	err  error
}

func (a stubAnalyzer) Analyze(context.Context, string, string) (string, error) {
	return a.text, a.err
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("disk gone") }

type testEnv struct {
	handler http.Handler
	store   *storage.SQLiteStorage
}

func newTestEnv(t *testing.T, analyzer tracker.Analyzer, trust bool) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "meals.db"), storage.WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	svc := tracker.New(analyzer, store, foods.Default(), tracker.Options{
		TrustClientNutrition: trust,
		Logger:               logger,
	})
	cfg := &config.Config{Host: "127.0.0.1", Port: 0}
	srv := NewMealLogServer(cfg, svc, store, logger)
	return &testEnv{handler: srv.Handler(), store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func logMeal(t *testing.T, e *testEnv, body map[string]interface{}) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/log-meal", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("log-meal status = %d body = %s", rec.Code, rec.Body.String())
	}
	var resp logMealResponse
	decode(t, rec, &resp)
	if !resp.Success || resp.MealID == "" {
		t.Fatalf("log-meal response = %+v", resp)
	}
	return resp.MealID
}

func TestRoot(t *testing.T) {
	e := newTestEnv(t, stubAnalyzer{}, false)
	rec := e.do(t, http.MethodGet, "/api/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]string
	decode(t, rec, &resp)
	if resp["message"] != "Indian Calorie Tracker API" {
		t.Errorf("message = %q", resp["message"])
	}
}

func TestAnalyzeMeal(t *testing.T) {
	e := newTestEnv(t, stubAnalyzer{text: "Plate of chole with basmati rice"}, false)

	rec := e.do(t, http.MethodPost, "/api/analyze-meal", map[string]string{"image_base64": "aW1n"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var resp models.MealAnalysis
	decode(t, rec, &resp)
	if resp.FoodName != "Rice-based Indian dish" || !resp.IsIndianFood {
		t.Errorf("resp = %+v", resp.Classification)
	}
	if resp.Nutrition.Calories == nil || *resp.Nutrition.Calories != 242 {
		t.Errorf("Calories = %v, want 242", resp.Nutrition.Calories)
	}
}

func TestAnalyzeMeal_NotIndianHasNullNutrition(t *testing.T) {
	e := newTestEnv(t, stubAnalyzer{text: "NOT_INDIAN_FOOD - tacos"}, false)

	rec := e.do(t, http.MethodPost, "/api/analyze-meal", map[string]string{"image_base64": "aW1n"})
	var raw map[string]interface{}
	decode(t, rec, &raw)

	if raw["is_indian_food"] != false {
		t.Errorf("is_indian_food = %v", raw["is_indian_food"])
	}
	if raw["estimated_quantity"] != nil {
		t.Errorf("estimated_quantity = %v", raw["estimated_quantity"])
	}
	nutrition := raw["nutrition"].(map[string]interface{})
	for _, k := range []string{"calories", "protein", "carbs", "fat", "fiber"} {
		v, present := nutrition[k]
		if !present || v != nil {
			t.Errorf("nutrition.%s = %v (present %v), want null", k, v, present)
		}
	}
}

func TestAnalyzeMeal_AnalyzerDown(t *testing.T) {
	e := newTestEnv(t, stubAnalyzer{err: errors.New("timeout")}, false)

	rec := e.do(t, http.MethodPost, "/api/analyze-meal", map[string]string{"image_base64": "aW1n"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 degraded response", rec.Code)
	}
	var resp models.MealAnalysis
	decode(t, rec, &resp)
	if resp.FoodName != "Unable to analyze image" || resp.Confidence != 1 {
		t.Errorf("resp = %+v", resp.Classification)
	}
}

func TestAnalyzeMeal_BadInput(t *testing.T) {
	e := newTestEnv(t, stubAnalyzer{}, false)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze-meal", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid JSON status = %d", rec.Code)
	}

	rec = e.do(t, http.MethodPost, "/api/analyze-meal", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing image status = %d", rec.Code)
	}
	var body errorBody
	decode(t, rec, &body)
	if body.Error.Code != CodeValidationError {
		t.Errorf("code = %q", body.Error.Code)
	}
}

func TestLogAndRecentMeals_Retention(t *testing.T) {
	e := newTestEnv(t, stubAnalyzer{}, false)

	var ids []string
	for i := 0; i < 16; i++ {
		ids = append(ids, logMeal(t, e, map[string]interface{}{
			"user_id":            "alice",
			"food_name":          "Paneer dish",
			"estimated_quantity": 100,
			"meal_type":          "lunch",
		}))
	}

	rec := e.do(t, http.MethodGet, "/api/meals/recent/alice?limit=50", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp recentMealsResponse
	decode(t, rec, &resp)
	if resp.Total != 14 || len(resp.Meals) != 14 {
		t.Fatalf("total = %d, meals = %d, want 14", resp.Total, len(resp.Meals))
	}
	for i, m := range resp.Meals {
		if want := ids[len(ids)-1-i]; m.ID != want {
			t.Errorf("meals[%d] = %s, want %s", i, m.ID, want)
		}
	}
	if resp.Meals[0].Calories != 265 {
		t.Errorf("Calories = %v, want 265", resp.Meals[0].Calories)
	}
}

func TestLogMeal_NullQuantityRejected(t *testing.T) {
	e := newTestEnv(t, stubAnalyzer{}, false)
	rec := e.do(t, http.MethodPost, "/api/log-meal", map[string]interface{}{
		"food_name":          "Non-Indian Food Detected",
		"estimated_quantity": nil,
		"nutrition":          map[string]interface{}{"calories": nil},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var body errorBody
	decode(t, rec, &body)
	if !strings.Contains(body.Error.Message, "estimated_quantity") {
		t.Errorf("message = %q", body.Error.Message)
	}
}

func TestRecentMeals_BadLimit(t *testing.T) {
	e := newTestEnv(t, stubAnalyzer{}, false)
	rec := e.do(t, http.MethodGet, "/api/meals/recent/alice?limit=ten", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestNutritionSummary(t *testing.T) {
	e := newTestEnv(t, stubAnalyzer{}, true)
	for _, cal := range []float64{100, 200, 50} {
		logMeal(t, e, map[string]interface{}{
			"user_id":            "bob",
			"food_name":          "Test meal",
			"estimated_quantity": 100,
			"nutrition":          map[string]float64{"calories": cal, "protein": 1, "carbs": 1, "fat": 1, "fiber": 1},
		})
	}

	rec := e.do(t, http.MethodGet, "/api/nutrition/summary/bob?days=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var resp models.NutritionSummary
	decode(t, rec, &resp)
	if resp.TotalCalories != 350 || resp.DailyAverage.Calories != 350 || resp.TotalMeals != 3 {
		t.Errorf("summary = %+v", resp)
	}

	for _, days := range []string{"0", "200000"} {
		rec = e.do(t, http.MethodGet, "/api/nutrition/summary/bob?days="+days, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("days=%s status = %d", days, rec.Code)
		}
	}

	rec = e.do(t, http.MethodGet, "/api/nutrition/summary/bob?days=36500", nil)
	resp = models.NutritionSummary{}
	decode(t, rec, &resp)
	if rec.Code != http.StatusOK || resp.TotalMeals != 3 {
		t.Errorf("days=36500 status = %d, meals = %d", rec.Code, resp.TotalMeals)
	}
}

func TestProteinRecommendations(t *testing.T) {
	e := newTestEnv(t, stubAnalyzer{}, true)
	logMeal(t, e, map[string]interface{}{
		"user_id":            "carol",
		"food_name":          "Test meal",
		"estimated_quantity": 300,
		"nutrition":          map[string]float64{"calories": 500, "protein": 60},
	})

	rec := e.do(t, http.MethodGet, "/api/protein-recommendations/carol", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp models.ProteinRecommendation
	decode(t, rec, &resp)
	if resp.Deficit != 0 {
		t.Errorf("Deficit = %v", resp.Deficit)
	}
	if len(resp.MealSuggestions) == 0 || !strings.HasPrefix(resp.MealSuggestions[0], "Great job") {
		t.Errorf("MealSuggestions = %v", resp.MealSuggestions)
	}
}

func TestDeleteMeal(t *testing.T) {
	e := newTestEnv(t, stubAnalyzer{}, false)
	keep := logMeal(t, e, map[string]interface{}{"user_id": "dan", "food_name": "Idli", "estimated_quantity": 120})
	drop := logMeal(t, e, map[string]interface{}{"user_id": "dan", "food_name": "Samosa", "estimated_quantity": 100})

	rec := e.do(t, http.MethodDelete, "/api/meals/unknown-id", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d", rec.Code)
	}

	rec = e.do(t, http.MethodDelete, "/api/meals/"+drop, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = e.do(t, http.MethodGet, "/api/meals/recent/dan", nil)
	var resp recentMealsResponse
	decode(t, rec, &resp)
	if resp.Total != 1 || resp.Meals[0].ID != keep {
		t.Errorf("remaining = %+v", resp.Meals)
	}
}

func TestDeleteMeal_ByUnderscoreID(t *testing.T) {
	e := newTestEnv(t, stubAnalyzer{}, false)
	logMeal(t, e, map[string]interface{}{"user_id": "fay", "food_name": "Roti", "estimated_quantity": 80})

	rec := e.do(t, http.MethodGet, "/api/meals/recent/fay", nil)
	var raw struct {
		Meals []map[string]interface{} `json:"meals"`
	}
	decode(t, rec, &raw)
	if len(raw.Meals) != 1 {
		t.Fatalf("meals = %v", raw.Meals)
	}
	id, _ := raw.Meals[0]["_id"].(string)
	if id == "" || id != raw.Meals[0]["id"] {
		t.Fatalf("_id = %v, id = %v", raw.Meals[0]["_id"], raw.Meals[0]["id"])
	}

	rec = e.do(t, http.MethodDelete, "/api/meals/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d body = %s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodGet, "/api/meals/recent/fay", nil)
	var after recentMealsResponse
	decode(t, rec, &after)
	if after.Total != 0 {
		t.Errorf("total after delete = %d", after.Total)
	}
}

func TestSearchFoods(t *testing.T) {
	e := newTestEnv(t, stubAnalyzer{}, false)

	rec := e.do(t, http.MethodGet, "/api/foods/search?query=dal", nil)
	var resp searchFoodsResponse
	decode(t, rec, &resp)
	if len(resp.Foods) == 0 || resp.Foods[0].Name != "Dal (Toor/Arhar)" {
		t.Errorf("foods = %+v", resp.Foods)
	}

	rec = e.do(t, http.MethodGet, "/api/foods/search", nil)
	resp = searchFoodsResponse{}
	decode(t, rec, &resp)
	if len(resp.Foods) != foods.Default().Len() {
		t.Errorf("empty query returned %d foods", len(resp.Foods))
	}
}

func TestStorageFailureIs500(t *testing.T) {
	e := newTestEnv(t, stubAnalyzer{}, false)
	e.store.Close()

	rec := e.do(t, http.MethodPost, "/api/log-meal", map[string]interface{}{"food_name": "Idli", "estimated_quantity": 120})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body errorBody
	decode(t, rec, &body)
	if body.Error.Code != CodeInternalError || !strings.HasPrefix(body.Error.Message, "Failed to log meal") {
		t.Errorf("error = %+v", body.Error)
	}
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t, stubAnalyzer{}, false)

	if rec := e.do(t, http.MethodGet, "/health/live", nil); rec.Code != http.StatusOK {
		t.Errorf("live status = %d", rec.Code)
	}
	if rec := e.do(t, http.MethodGet, "/health/ready", nil); rec.Code != http.StatusOK {
		t.Errorf("ready status = %d", rec.Code)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewMealLogServer(&config.Config{}, nil, failingPinger{}, logger)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready with failing store = %d", rec.Code)
	}
}

func TestMetricsAndCORS(t *testing.T) {
	e := newTestEnv(t, stubAnalyzer{}, false)
	e.do(t, http.MethodGet, "/api/meals/recent/erin", nil)

	rec := e.do(t, http.MethodGet, "/metrics", nil)
	if !strings.Contains(rec.Body.String(), `meal_log_http_requests_total{method="GET",path="/api/meals/recent/{userID}"`) {
		t.Error("request metric missing or not labelled by route pattern")
	}

	rec = e.do(t, http.MethodOptions, "/api/log-meal", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

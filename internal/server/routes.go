package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes bounds request bodies, which carry inline base64 photos.
const maxBodyBytes = 20 << 20

func (s *MealLogServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		RequestLogger(s.logger),
		MetricsMiddleware(),
		CORS(),
		limitBody(maxBodyBytes),
	)

	r.Get("/health/live", s.handleHealthLive)
	r.Get("/health/ready", s.handleHealthReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/mcp", s.handleToolCall)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.handleRoot)
		r.Post("/analyze-meal", s.handleAnalyzeMeal)
		r.Post("/log-meal", s.handleLogMeal)
		r.Get("/meals/recent/{userID}", s.handleRecentMeals)
		r.Delete("/meals/{mealID}", s.handleDeleteMeal)
		r.Get("/nutrition/summary/{userID}", s.handleNutritionSummary)
		r.Get("/protein-recommendations/{userID}", s.handleProteinRecommendations)
		r.Get("/foods/search", s.handleSearchFoods)
	})

	return r
}

func limitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}

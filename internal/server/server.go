// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"indian-meal-log/internal/config"
	"indian-meal-log/internal/foods"
	"indian-meal-log/internal/models"
)

// MealService is the set of meal log operations exposed over HTTP.
type MealService interface {
	AnalyzeMeal(ctx context.Context, req models.MealAnalysisRequest) (*models.MealAnalysis, error)
	LogMeal(ctx context.Context, req models.LogMealRequest) (string, error)
	RecentMeals(ctx context.Context, userID string, limit int) ([]*models.Meal, error)
	Summarize(ctx context.Context, userID string, days int) (*models.NutritionSummary, error)
	ProteinRecommendation(ctx context.Context, userID string) (*models.ProteinRecommendation, error)
	DeleteMeal(ctx context.Context, mealID string) error
	SearchFoods(query string) []foods.ReferenceFood
}

// Pinger reports whether the meal store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type MealLogServer struct {
	httpServer *http.Server
	meals      MealService
	store      Pinger
	logger     *slog.Logger
	config     *config.Config
	tools      map[string]toolHandler
}

func NewMealLogServer(cfg *config.Config, meals MealService, store Pinger, logger *slog.Logger) *MealLogServer {
	s := &MealLogServer{
		meals:  meals,
		store:  store,
		logger: logger,
		config: cfg,
	}
	s.registerTools()

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.routes(),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *MealLogServer) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start blocks serving HTTP until Stop is called or the listener fails.
func (s *MealLogServer) Start() error {
	s.logger.Info("Starting meal log server", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *MealLogServer) Stop(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *MealLogServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}

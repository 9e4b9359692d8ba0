// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"indian-meal-log/internal/models"
)

type toolHandler func(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

type AnalyzeMealParams struct {
	ImageBase64 string `json:"image_base64" description:"Base64 encoded photo of the meal"`
	Description string `json:"description,omitempty" description:"Optional context about the meal"`
}

type UserParams struct {
	UserID string `json:"user_id,omitempty" description:"User identifier (defaults to default_user)"`
}

type RecentMealsParams struct {
	UserID string `json:"user_id,omitempty" description:"User identifier (defaults to default_user)"`
	Limit  int    `json:"limit,omitempty" description:"Maximum number of meals to return (defaults to 14)"`
}

type SummaryParams struct {
	UserID string `json:"user_id,omitempty" description:"User identifier (defaults to default_user)"`
	Days   int    `json:"days,omitempty" description:"Window size in days (defaults to 1)"`
}

type DeleteMealParams struct {
	MealID string `json:"meal_id" description:"Identifier of the meal to delete"`
}

type SearchFoodsParams struct {
	Query string `json:"query,omitempty" description:"Substring to match against name, category or region"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	// Convert the Arguments map to JSON bytes, then unmarshal to target
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("failed to unmarshal parameters: %w", err)
	}

	return nil
}

func userOrDefault(id string) string {
	if id == "" {
		return models.DefaultUserID
	}
	return id
}

// handleToolCall serves MCP tools/call requests posted to /mcp.
func (s *MealLogServer) handleToolCall(w http.ResponseWriter, r *http.Request) {
	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationError, fmt.Sprintf("Invalid JSON: %v", err))
		return
	}

	handler, ok := s.tools[request.Name]
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, fmt.Sprintf("Unknown tool: %s", request.Name))
		return
	}

	result, err := handler(r.Context(), &request)
	if err != nil {
		s.writeServiceError(w, "call "+request.Name, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *MealLogServer) handleAnalyzeMealTool(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params AnalyzeMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, invalidParams(err)
	}

	result, err := s.meals.AnalyzeMeal(ctx, models.MealAnalysisRequest{
		ImageBase64: params.ImageBase64,
		Description: params.Description,
	})
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(result)
}

func (s *MealLogServer) handleLogMealTool(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params models.LogMealRequest
	if err := extractParams(req, &params); err != nil {
		return nil, invalidParams(err)
	}

	id, err := s.meals.LogMeal(ctx, params)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(logMealResponse{Success: true, MealID: id, Message: "Meal logged successfully"})
}

func (s *MealLogServer) handleRecentMealsTool(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params RecentMealsParams
	if err := extractParams(req, &params); err != nil {
		return nil, invalidParams(err)
	}

	meals, err := s.meals.RecentMeals(ctx, userOrDefault(params.UserID), params.Limit)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(recentMealsResponse{Meals: meals, Total: len(meals)})
}

func (s *MealLogServer) handleSummaryTool(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	params := SummaryParams{Days: 1}
	if err := extractParams(req, &params); err != nil {
		return nil, invalidParams(err)
	}

	summary, err := s.meals.Summarize(ctx, userOrDefault(params.UserID), params.Days)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(summary)
}

func (s *MealLogServer) handleProteinTool(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params UserParams
	if err := extractParams(req, &params); err != nil {
		return nil, invalidParams(err)
	}

	rec, err := s.meals.ProteinRecommendation(ctx, userOrDefault(params.UserID))
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(rec)
}

func (s *MealLogServer) handleDeleteMealTool(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params DeleteMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, invalidParams(err)
	}

	if err := s.meals.DeleteMeal(ctx, params.MealID); err != nil {
		return nil, err
	}
	return s.createJSONResponse(deleteMealResponse{Success: true, Message: "Meal deleted successfully"})
}

func (s *MealLogServer) handleSearchFoodsTool(_ context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SearchFoodsParams
	if err := extractParams(req, &params); err != nil {
		return nil, invalidParams(err)
	}
	return s.createJSONResponse(searchFoodsResponse{Foods: s.meals.SearchFoods(params.Query)})
}

func (s *MealLogServer) registerTools() {
	s.tools = map[string]toolHandler{
		"analyze_meal":                s.handleAnalyzeMealTool,
		"log_meal":                    s.handleLogMealTool,
		"get_recent_meals":            s.handleRecentMealsTool,
		"get_nutrition_summary":       s.handleSummaryTool,
		"get_protein_recommendations": s.handleProteinTool,
		"delete_meal":                 s.handleDeleteMealTool,
		"search_foods":                s.handleSearchFoodsTool,
	}

	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	s.logger.Debug("Registered tools", slog.Any("tools", names))
}

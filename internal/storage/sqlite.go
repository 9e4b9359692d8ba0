// internal/storage/sqlite.go

// Package storage persists meal records in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	_ "modernc.org/sqlite"

	"indian-meal-log/internal/models"
)

// DefaultRetentionLimit is the number of meals kept per user.
const DefaultRetentionLimit = 14

var (
	mealsAppendedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meal_log_meals_appended_total",
		Help: "Meals inserted into the store.",
	})
	mealsPrunedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meal_log_meals_pruned_total",
		Help: "Meals removed by the per-user retention cap.",
	})
	retentionFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meal_log_retention_failures_total",
		Help: "Retention runs that failed after an insert.",
	})
)

type SQLiteStorage struct {
	db             *sql.DB
	logger         *slog.Logger
	now            func() time.Time
	retentionLimit int
}

type Option func(*SQLiteStorage)

// WithClock overrides the source of meal timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStorage) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *SQLiteStorage) { s.logger = logger }
}

// WithRetentionLimit sets how many meals Append keeps per user.
func WithRetentionLimit(limit int) Option {
	return func(s *SQLiteStorage) {
		if limit > 0 {
			s.retentionLimit = limit
		}
	}
}

func NewSQLiteStorage(dbPath string, opts ...Option) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection serializes writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	storage := &SQLiteStorage{
		db:             db,
		logger:         slog.Default(),
		now:            time.Now,
		retentionLimit: DefaultRetentionLimit,
	}
	for _, opt := range opts {
		opt(storage)
	}

	if err := applyMigrations(db, storage.logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return wrap("ping database", s.db.PingContext(ctx))
}

// Append stores a new meal, assigning its id and timestamp, then trims the
// user's history to the retention limit. A failed trim is logged and does not
// fail the insert.
func (s *SQLiteStorage) Append(ctx context.Context, meal *models.Meal) error {
	meal.ID = uuid.NewString()
	meal.Timestamp = s.now().UTC()
	if meal.UserID == "" {
		meal.UserID = models.DefaultUserID
	}
	if meal.MealType == "" {
		meal.MealType = models.MealGeneral
	}

	query := `
        INSERT INTO meals (id, user_id, food_name, estimated_quantity, calories, protein, carbs, fat, fiber,
                           image_base64, ai_analysis, timestamp, meal_type)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := s.db.ExecContext(ctx, query,
		meal.ID, meal.UserID, meal.FoodName, meal.EstimatedQuantity,
		meal.Calories, meal.Protein, meal.Carbs, meal.Fat, meal.Fiber,
		meal.ImageBase64, meal.AIAnalysis, meal.Timestamp.UnixNano(), string(meal.MealType))
	if err != nil {
		return wrap("insert meal", err)
	}
	mealsAppendedTotal.Inc()

	pruned, err := s.Retain(ctx, meal.UserID, s.retentionLimit)
	if err != nil {
		retentionFailuresTotal.Inc()
		s.logger.Error("Error cleaning up old meals",
			slog.String("user_id", meal.UserID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if pruned > 0 {
		s.logger.Info("Cleaned up old meals",
			slog.String("user_id", meal.UserID),
			slog.Int("deleted", pruned),
		)
	}
	return nil
}

// Retain keeps the limit most recent meals of a user and deletes the rest in
// one statement. It returns the number of deleted meals.
func (s *SQLiteStorage) Retain(ctx context.Context, userID string, limit int) (int, error) {
	if limit < 0 {
		return 0, fmt.Errorf("invalid retention limit %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, `
        SELECT id FROM meals
        WHERE user_id = ?
        ORDER BY timestamp DESC, seq DESC
    `, userID)
	if err != nil {
		return 0, wrap("query meals for retention", err)
	}

	var stale []any
	pos := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, wrap("scan meal id", err)
		}
		if pos >= limit {
			stale = append(stale, id)
		}
		pos++
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, wrap("iterate meals for retention", err)
	}
	rows.Close()

	if len(stale) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(stale)), ",")
	res, err := s.db.ExecContext(ctx, "DELETE FROM meals WHERE id IN ("+placeholders+")", stale...)
	if err != nil {
		return 0, wrap("delete old meals", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrap("count deleted meals", err)
	}
	mealsPrunedTotal.Add(float64(n))
	return int(n), nil
}

// ListRecent returns up to limit meals of a user, newest first.
func (s *SQLiteStorage) ListRecent(ctx context.Context, userID string, limit int) ([]*models.Meal, error) {
	query := selectMeals + `
        WHERE user_id = ?
        ORDER BY timestamp DESC, seq DESC
        LIMIT ?
    `
	return s.queryMeals(ctx, "query recent meals", query, userID, limit)
}

// ListSince returns every meal of a user with a timestamp at or after since.
func (s *SQLiteStorage) ListSince(ctx context.Context, userID string, since time.Time) ([]*models.Meal, error) {
	query := selectMeals + `
        WHERE user_id = ? AND timestamp >= ?
        ORDER BY timestamp DESC, seq DESC
    `
	return s.queryMeals(ctx, "query meals since", query, userID, since.UTC().UnixNano())
}

// Delete removes a single meal by id.
func (s *SQLiteStorage) Delete(ctx context.Context, mealID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM meals WHERE id = ?", mealID)
	if err != nil {
		return wrap("delete meal", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("delete meal", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const selectMeals = `
        SELECT id, user_id, food_name, estimated_quantity, calories, protein, carbs, fat, fiber,
               image_base64, ai_analysis, timestamp, meal_type
        FROM meals
`

func (s *SQLiteStorage) queryMeals(ctx context.Context, op, query string, args ...any) ([]*models.Meal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	meals := []*models.Meal{}
	for rows.Next() {
		meal, err := scanMeal(rows)
		if err != nil {
			return nil, wrap("scan meal", err)
		}
		meals = append(meals, meal)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return meals, nil
}

func scanMeal(rows *sql.Rows) (*models.Meal, error) {
	meal := &models.Meal{}
	var image, analysis sql.NullString
	var ts int64
	var mealType string

	err := rows.Scan(
		&meal.ID, &meal.UserID, &meal.FoodName, &meal.EstimatedQuantity,
		&meal.Calories, &meal.Protein, &meal.Carbs, &meal.Fat, &meal.Fiber,
		&image, &analysis, &ts, &mealType)
	if err != nil {
		return nil, err
	}

	if image.Valid {
		meal.ImageBase64 = &image.String
	}
	if analysis.Valid {
		meal.AIAnalysis = &analysis.String
	}
	meal.Timestamp = time.Unix(0, ts).UTC()
	meal.MealType = models.MealType(mealType)
	return meal, nil
}

// IsNotFound reports whether err means the meal does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"indian-meal-log/internal/models"
)

var errStoreDown = errors.New("store down")

// memStore is an in-memory MealStore with an injectable clock.
type memStore struct {
	mu    sync.Mutex
	meals []*models.Meal
	now   func() time.Time
	seq   int
	fail  bool
}

func (s *memStore) Append(_ context.Context, meal *models.Meal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errStoreDown
	}
	s.seq++
	meal.ID = fmt.Sprintf("meal-%d", s.seq)
	meal.Timestamp = s.now()
	cp := *meal
	s.meals = append(s.meals, &cp)
	return nil
}

func (s *memStore) ListRecent(_ context.Context, userID string, limit int) ([]*models.Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errStoreDown
	}
	var out []*models.Meal
	for i := len(s.meals) - 1; i >= 0; i-- {
		if s.meals[i].UserID == userID {
			out = append(out, s.meals[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) ListSince(_ context.Context, userID string, since time.Time) ([]*models.Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errStoreDown
	}
	var out []*models.Meal
	for _, m := range s.meals {
		if m.UserID == userID && !m.Timestamp.Before(since) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) Delete(_ context.Context, mealID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.meals {
		if m.ID == mealID {
			s.meals = append(s.meals[:i], s.meals[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

var errNotFound = errors.New("meal not found")

// put inserts a meal with an explicit timestamp, bypassing the clock.
func (s *memStore) put(userID string, ts time.Time, macros models.Macros) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	m := &models.Meal{ID: fmt.Sprintf("meal-%d", s.seq), UserID: userID, Timestamp: ts}
	m.SetMacros(macros)
	s.meals = append(s.meals, m)
}

type fakeAnalyzer struct {
	text string
	err  error

	gotImage, gotDescription string
}

func (a *fakeAnalyzer) Analyze(_ context.Context, image, description string) (string, error) {
	a.gotImage, a.gotDescription = image, description
	return a.text, a.err
}

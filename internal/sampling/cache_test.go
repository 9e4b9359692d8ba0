package sampling

import (
	"context"
	"errors"
	"testing"
	"time"
)

type countingAnalyzer struct {
	calls int
	err   error
}

func (c *countingAnalyzer) Analyze(_ context.Context, image, description string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return "analysis of " + image + "/" + description, nil
}

func TestCachedAnalyzer_HitsAndMisses(t *testing.T) {
	next := &countingAnalyzer{}
	c := NewCachedAnalyzer(next, 10, time.Minute)

	for i := 0; i < 3; i++ {
		got, err := c.Analyze(context.Background(), "img", "desc")
		if err != nil {
			t.Fatal(err)
		}
		if got != "analysis of img/desc" {
			t.Errorf("got %q", got)
		}
	}
	if next.calls != 1 {
		t.Errorf("calls = %d, want 1", next.calls)
	}

	if _, err := c.Analyze(context.Background(), "img", "other"); err != nil {
		t.Fatal(err)
	}
	if next.calls != 2 {
		t.Errorf("calls = %d, want 2 after new description", next.calls)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestCachedAnalyzer_DoesNotCacheFailures(t *testing.T) {
	next := &countingAnalyzer{err: errors.New("boom")}
	c := NewCachedAnalyzer(next, 10, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := c.Analyze(context.Background(), "img", ""); err == nil {
			t.Fatal("expected error")
		}
	}
	if next.calls != 2 {
		t.Errorf("calls = %d, want 2", next.calls)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

func TestCachedAnalyzer_TTLExpiration(t *testing.T) {
	next := &countingAnalyzer{}
	c := NewCachedAnalyzer(next, 10, 50*time.Millisecond)

	_, _ = c.Analyze(context.Background(), "img", "")
	time.Sleep(100 * time.Millisecond)
	_, _ = c.Analyze(context.Background(), "img", "")

	if next.calls != 2 {
		t.Errorf("calls = %d, want 2 after TTL", next.calls)
	}
}

func TestCacheKey_SeparatesFields(t *testing.T) {
	if cacheKey("ab", "c") == cacheKey("a", "bc") {
		t.Error("cache key must separate image and description")
	}
}

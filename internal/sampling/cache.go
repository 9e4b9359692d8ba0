package sampling

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meal_log_analysis_cache_hits_total",
		Help: "Analyses served from the in-memory cache.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meal_log_analysis_cache_misses_total",
		Help: "Analyses that had to call the model.",
	})
)

// Analyzer describes a food photo in free text.
type Analyzer interface {
	Analyze(ctx context.Context, imageBase64, description string) (string, error)
}

// CachedAnalyzer remembers successful answers for identical photo and
// description pairs. Failures are never cached.
type CachedAnalyzer struct {
	next  Analyzer
	cache *expirable.LRU[string, string]
}

func NewCachedAnalyzer(next Analyzer, maxSize int, ttl time.Duration) *CachedAnalyzer {
	return &CachedAnalyzer{
		next:  next,
		cache: expirable.NewLRU[string, string](maxSize, nil, ttl),
	}
}

func (c *CachedAnalyzer) Analyze(ctx context.Context, imageBase64, description string) (string, error) {
	key := cacheKey(imageBase64, description)
	if text, ok := c.cache.Get(key); ok {
		cacheHitsTotal.Inc()
		return text, nil
	}
	cacheMissesTotal.Inc()

	text, err := c.next.Analyze(ctx, imageBase64, description)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, text)
	return text, nil
}

func (c *CachedAnalyzer) Len() int {
	return c.cache.Len()
}

func cacheKey(imageBase64, description string) string {
	h := sha256.New()
	h.Write([]byte(imageBase64))
	h.Write([]byte{0})
	h.Write([]byte(description))
	return hex.EncodeToString(h.Sum(nil))
}

package translate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ban2lab/longanicore-gateway/internal/cache"
	"github.com/ban2lab/longanicore-gateway/internal/metrics"
)

// CacheMaxSize is the default bound on the translation cache.
const CacheMaxSize = 100

// CachedTranslator wraps a Translator with a bounded LRU cache.
// Identical requests that differ only in case or surrounding
// whitespace hit the same entry. Only successfully parsed results are
// cached; cached translations are assumed valid indefinitely.
type CachedTranslator struct {
	inner Translator
	mu    sync.Mutex
	cache *cache.LRU[string, *Result]
}

// NewCachedTranslator wraps inner with a cache of the given capacity.
func NewCachedTranslator(inner Translator, capacity int) *CachedTranslator {
	return &CachedTranslator{
		inner: inner,
		cache: cache.NewLRU[string, *Result](capacity),
	}
}

// Translate returns a cached result when available, otherwise invokes
// the wrapped translator and caches its result.
func (s *CachedTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (*Result, error) {
	key := cacheKey(text, sourceLang, targetLang)

	s.mu.Lock()
	cached, ok := s.cache.Get(key)
	s.mu.Unlock()
	if ok {
		metrics.TranslationCacheHits.Inc()
		return cached, nil
	}
	metrics.TranslationCacheMisses.Inc()

	result, err := s.inner.Translate(ctx, text, sourceLang, targetLang)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache.Set(key, result)
	s.mu.Unlock()
	return result, nil
}

// cacheKey normalizes the input text so case and whitespace variants
// of the same request share an entry.
func cacheKey(text, sourceLang, targetLang string) string {
	return fmt.Sprintf("%s:%s:%s", sourceLang, targetLang, strings.ToLower(strings.TrimSpace(text)))
}

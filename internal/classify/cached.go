package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/carscout/carscout/internal/cache"
	"github.com/carscout/carscout/internal/model"
)

// CachedClassifier wraps an engine with a result cache. Classification only
// depends on the engine and the vehicle set, so the cache key is the engine
// name plus the ordered vehicle identifiers.
type CachedClassifier struct {
	inner Classifier
	store cache.Cache
	ttl   time.Duration
}

// NewCachedClassifier wraps inner with the given cache.
func NewCachedClassifier(inner Classifier, store cache.Cache, ttl time.Duration) *CachedClassifier {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedClassifier{inner: inner, store: store, ttl: ttl}
}

// Name reports the wrapped engine's name.
func (c *CachedClassifier) Name() string { return c.inner.Name() }

// IsAvailable defers to the wrapped engine.
func (c *CachedClassifier) IsAvailable(ctx context.Context) bool {
	return c.inner.IsAvailable(ctx)
}

// Classify serves from the cache when possible, otherwise runs the engine and
// stores the result. Cache write failures are ignored; the result is valid
// regardless.
func (c *CachedClassifier) Classify(ctx context.Context, vehicles []model.VehicleRecord) (*Result, error) {
	key := c.key(vehicles)

	if data, found := c.store.Get(key); found {
		var cached Result
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
		_ = c.store.Delete(key)
	}

	result, err := c.inner.Classify(ctx, vehicles)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		_ = c.store.Set(key, data, c.ttl)
	}

	return result, nil
}

func (c *CachedClassifier) key(vehicles []model.VehicleRecord) string {
	ids := make([]string, len(vehicles))
	for i, v := range vehicles {
		ids[i] = v.ID
	}
	return cache.Key(c.inner.Name(), fmt.Sprintf("%d", len(ids)), strings.Join(ids, ","))
}

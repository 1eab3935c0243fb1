package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"examship-quiz-service/internal/app"
	"examship-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// GeneratorCache caches generated sets with TTL to avoid repeated remote calls.
// Concurrent misses for the same request share one upstream call.
type GeneratorCache struct {
	next  app.Generator
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedSet
}

type cachedSet struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewGeneratorCache(next app.Generator, ttl time.Duration) *GeneratorCache {
	return &GeneratorCache{
		next:  next,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[string]cachedSet),
	}
}

func (c *GeneratorCache) Generate(ctx context.Context, req domain.GenerationRequest) ([]domain.Question, error) {
	key := RequestKey(req)
	if qs, ok := c.lookup(key); ok {
		return qs, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if qs, ok := c.lookup(key); ok {
			return qs, nil
		}
		qs, err := c.next.Generate(ctx, req)
		if err != nil {
			return nil, err
		}
		if c.ttl > 0 {
			c.mu.Lock()
			c.cache[key] = cachedSet{
				questions: domain.CloneQuestions(qs),
				expiresAt: c.clock().Add(c.ttlWithJitter()),
			}
			c.mu.Unlock()
		}
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return domain.CloneQuestions(result.([]domain.Question)), nil
}

func (c *GeneratorCache) lookup(key string) ([]domain.Question, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[key]
	if !ok || !entry.expiresAt.After(now) {
		return nil, false
	}
	return domain.CloneQuestions(entry.questions), true
}

// RequestKey identifies a generation request for caching.
func RequestKey(req domain.GenerationRequest) string {
	return fmt.Sprintf("%s|%s|%d|%d", req.Topic, req.Difficulty, req.SetNumber, req.Count)
}

func (c *GeneratorCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"examship-quiz-service/internal/app"
	"examship-quiz-service/internal/domain"
	"examship-quiz-service/internal/infra/memory"
	"examship-quiz-service/internal/logger"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// GeneratorCache caches generated sets in Redis and falls back to the wrapped
// generator on a miss. Sets are stored as one JSON blob:
//
//	SET quiz:generated:{topic|difficulty|set|count} [...questions]
type GeneratorCache struct {
	client *redis.Client
	next   app.Generator
	ttl    time.Duration
	log    *logger.Logger
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewGeneratorCache(client *redis.Client, next app.Generator, ttl time.Duration, log *logger.Logger) *GeneratorCache {
	return &GeneratorCache{
		client: client,
		next:   next,
		ttl:    ttl,
		log:    logger.OrNop(log),
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *GeneratorCache) Generate(ctx context.Context, req domain.GenerationRequest) ([]domain.Question, error) {
	key := c.key(req)
	if qs, ok := c.lookup(ctx, key); ok {
		return qs, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if qs, ok := c.lookup(ctx, key); ok {
			return qs, nil
		}
		qs, err := c.next.Generate(ctx, req)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(qs)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, data, c.ttlWithJitter()).Err(); err != nil {
			c.log.Warn("generated set not cached", "key", key, "error", err)
		}
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return domain.CloneQuestions(result.([]domain.Question)), nil
}

func (c *GeneratorCache) lookup(ctx context.Context, key string) ([]domain.Question, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("generated set lookup failed", "key", key, "error", err)
		}
		return nil, false
	}
	var qs []domain.Question
	if err := json.Unmarshal(raw, &qs); err != nil {
		c.log.Warn("dropping unreadable cached set", "key", key, "error", err)
		return nil, false
	}
	return qs, true
}

func (c *GeneratorCache) key(req domain.GenerationRequest) string {
	return "quiz:generated:" + memory.RequestKey(req)
}

func (c *GeneratorCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

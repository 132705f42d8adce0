package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuizCache keeps the participant-facing quiz snapshot in Redis so the join
// page and lobby polling do not hammer Postgres. Snapshots are stored as
// JSON under quiz:view:{code} with a TTL; writes to a quiz invalidate its
// snapshot. Concurrent misses for the same code collapse into one load.
type QuizCache struct {
	redis *redis.Client
	ttl   time.Duration
	sf    singleflight.Group
}

func NewQuizCache(client *redis.Client, ttl time.Duration) *QuizCache {
	return &QuizCache{redis: client, ttl: ttl}
}

func (c *QuizCache) key(code string) string {
	return "quiz:view:" + code
}

// GetPublicQuiz returns the cached snapshot for code, calling load on a miss
// and caching the result. Redis trouble degrades to loading straight from
// the source.
func (c *QuizCache) GetPublicQuiz(ctx context.Context, code string, load func() (*PublicQuiz, error)) (*PublicQuiz, error) {
	if c == nil || c.redis == nil {
		return load()
	}

	data, err := c.redis.Get(ctx, c.key(code)).Result()
	if err == nil {
		var view PublicQuiz
		if err := json.Unmarshal([]byte(data), &view); err == nil {
			return &view, nil
		}
		log.Printf("Discarding unreadable quiz snapshot for %s", code)
		_ = c.redis.Del(ctx, c.key(code)).Err()
	} else if err != redis.Nil {
		log.Printf("Redis error reading quiz snapshot for %s: %v", code, err)
		return load()
	}

	// The collapsed load serves every waiter, so it must not die with the
	// first caller's context.
	loadCtx := context.WithoutCancel(ctx)
	result, err, _ := c.sf.Do(code, func() (interface{}, error) {
		// Re-check in case another caller filled it while we waited.
		if data, err := c.redis.Get(loadCtx, c.key(code)).Result(); err == nil {
			var view PublicQuiz
			if err := json.Unmarshal([]byte(data), &view); err == nil {
				return &view, nil
			}
		}

		view, err := load()
		if err != nil {
			return nil, err
		}
		c.store(loadCtx, code, view)
		return view, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*PublicQuiz), nil
}

func (c *QuizCache) store(ctx context.Context, code string, view *PublicQuiz) {
	data, err := json.Marshal(view)
	if err != nil {
		log.Printf("Failed to marshal quiz snapshot for %s: %v", code, err)
		return
	}
	if err := c.redis.Set(ctx, c.key(code), data, c.ttl).Err(); err != nil {
		log.Printf("Failed to store quiz snapshot for %s: %v", code, err)
	}
}

// Invalidate drops the snapshot after any write to the quiz.
func (c *QuizCache) Invalidate(ctx context.Context, code string) {
	if c == nil || c.redis == nil {
		return
	}
	if err := c.redis.Del(ctx, c.key(code)).Err(); err != nil {
		log.Printf("Failed to invalidate quiz snapshot for %s: %v", code, err)
	}
}

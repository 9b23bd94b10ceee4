package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionCache keeps each quiz's ordered question list in Redis and falls back
// to the loader on a miss. Lists are stored as JSON:
//
//	SET quiz:{quizID}:questions [...] EX ttl
type QuestionCache struct {
	client *redis.Client
	loader app.QuestionReader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader app.QuestionReader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	if questions, ok := c.cached(ctx, quizID); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := c.cached(ctx, quizID); ok {
			return questions, nil
		}

		questions, err := c.loader.ListQuestions(ctx, quizID)
		if err != nil {
			return nil, err
		}
		// Empty lists are not cached so a quiz created under a reused id is picked up.
		if len(questions) > 0 {
			if raw, err := json.Marshal(questions); err == nil {
				_ = c.client.Set(ctx, c.key(quizID), raw, c.ttlWithJitter()).Err()
			}
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Question(nil), result.([]domain.Question)...), nil
}

func (c *QuestionCache) Invalidate(ctx context.Context, quizID string) error {
	return c.client.Del(ctx, c.key(quizID)).Err()
}

// cached treats any Redis failure as a miss; the loader stays authoritative.
func (c *QuestionCache) cached(ctx context.Context, quizID string) ([]domain.Question, bool) {
	raw, err := c.client.Get(ctx, c.key(quizID)).Bytes()
	if err != nil {
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, false
	}
	return questions, true
}

func (c *QuestionCache) key(quizID string) string {
	return "quiz:" + quizID + ":questions"
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

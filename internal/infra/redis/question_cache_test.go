package redis

import (
	"context"
	"testing"
	"time"

	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuestionCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{Store: seededStore(t)}
	cache := NewQuestionCache(client, loader, time.Minute)

	questions, err := cache.ListQuestions(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if len(questions) != 1 || questions[0].CorrectAnswer != "B" {
		t.Fatalf("unexpected questions: %+v", questions)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:quiz-1:questions") {
		t.Fatalf("expected redis key to be set")
	}

	// Second call should hit cache, loader not incremented.
	questions, _ = cache.ListQuestions(context.Background(), "quiz-1")
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(questions) != 1 || questions[0].Text != "What is 2 + 2?" {
		t.Fatalf("expected full question from cache, got %+v", questions)
	}

	if err := cache.Invalidate(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("quiz:quiz-1:questions") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestQuestionCacheSkipsEmptyLists(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewQuestionCache(newClient(mr), memory.NewStore(), time.Minute)
	questions, err := cache.ListQuestions(context.Background(), "missing")
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if len(questions) != 0 || mr.Exists("quiz:missing:questions") {
		t.Fatalf("expected nothing cached for an unknown quiz")
	}
}

type countingLoader struct {
	*memory.Store
	calls int
}

func (l *countingLoader) ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	l.calls++
	return l.Store.ListQuestions(ctx, quizID)
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	err := store.CreateQuiz(context.Background(), domain.Quiz{ID: "quiz-1", CreatorID: "host-1", Title: "Arithmetic"},
		[]domain.Question{{
			ID:            "q1",
			QuizID:        "quiz-1",
			Text:          "What is 2 + 2?",
			OptionA:       "3",
			OptionB:       "4",
			CorrectAnswer: "B",
			TimeLimit:     30,
		}})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

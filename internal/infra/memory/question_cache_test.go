package memory

import (
	"context"
	"testing"
	"time"

	"live-quiz-service/internal/domain"
)

func TestQuestionCacheCaches(t *testing.T) {
	store := NewStore()
	seedQuiz(t, store)
	loader := &countingLoader{Store: store}
	cache := NewQuestionCache(loader, time.Minute)

	questions, err := cache.ListQuestions(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if len(questions) != 2 || questions[0].ID != "q1" {
		t.Fatalf("unexpected questions: %+v", questions)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.ListQuestions(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("list questions 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuestionCacheExpiresAndInvalidates(t *testing.T) {
	store := NewStore()
	seedQuiz(t, store)
	loader := &countingLoader{Store: store}
	cache := NewQuestionCache(loader, time.Minute)
	now := time.Now()
	cache.clock = func() time.Time { return now }

	_, _ = cache.ListQuestions(context.Background(), "quiz-1")
	now = now.Add(2 * time.Minute)
	_, _ = cache.ListQuestions(context.Background(), "quiz-1")
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.calls)
	}

	if err := cache.Invalidate(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = cache.ListQuestions(context.Background(), "quiz-1")
	if loader.calls != 3 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls)
	}
}

func TestQuestionCacheReturnsCopies(t *testing.T) {
	store := NewStore()
	seedQuiz(t, store)
	cache := NewQuestionCache(store, time.Minute)

	first, _ := cache.ListQuestions(context.Background(), "quiz-1")
	first[0].CorrectAnswer = ""
	second, _ := cache.ListQuestions(context.Background(), "quiz-1")
	if second[0].CorrectAnswer != "B" {
		t.Fatalf("cached question was mutated: %+v", second[0])
	}
}

type countingLoader struct {
	*Store
	calls int
}

func (l *countingLoader) ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	l.calls++
	return l.Store.ListQuestions(ctx, quizID)
}

func seedQuiz(t *testing.T, store *Store) {
	t.Helper()
	err := store.CreateQuiz(context.Background(), domain.Quiz{
		ID:        "quiz-1",
		CreatorID: "host-1",
		Title:     "Arithmetic",
		CreatedAt: time.Now(),
	}, []domain.Question{
		{ID: "q2", QuizID: "quiz-1", Order: 1, Text: "3 + 3?", OptionA: "6", OptionB: "7", CorrectAnswer: "A", TimeLimit: 30},
		{ID: "q1", QuizID: "quiz-1", Order: 0, Text: "2 + 2?", OptionA: "3", OptionB: "4", CorrectAnswer: "B", TimeLimit: 30},
	})
	if err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
}

package app_test

import (
	"context"
	"testing"
	"time"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/infra/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateQuizStoresOrderedQuestions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	quizID, err := env.quizzes.CreateQuiz(ctx, "host-1", app.QuizInput{
		Title: "  Capitals ",
		Questions: []app.QuestionInput{
			{Text: "Capital of France?", OptionA: "Paris", OptionB: "Lyon", CorrectAnswer: "a"},
			{Text: "Capital of Japan?", OptionA: "Osaka", OptionB: "Tokyo", OptionC: "Kyoto", CorrectAnswer: "B", TimeLimit: 10},
		},
	})
	require.NoError(t, err)

	quiz, err := env.store.GetQuiz(ctx, quizID)
	require.NoError(t, err)
	assert.Equal(t, "Capitals", quiz.Title)
	assert.Equal(t, "host-1", quiz.CreatorID)

	questions, err := env.store.ListQuestions(ctx, quizID)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, 0, questions[0].Order)
	assert.Equal(t, "A", questions[0].CorrectAnswer)
	assert.Equal(t, domain.DefaultTimeLimit, questions[0].TimeLimit)
	assert.Equal(t, 1, questions[1].Order)
	assert.Equal(t, 10, questions[1].TimeLimit)
}

func TestCreateQuizValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	valid := app.QuestionInput{Text: "2 + 2?", OptionA: "3", OptionB: "4", CorrectAnswer: "B"}

	_, err := env.quizzes.CreateQuiz(ctx, "", app.QuizInput{Title: "x", Questions: []app.QuestionInput{valid}})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	cases := map[string]app.QuizInput{
		"blank title":       {Title: " ", Questions: []app.QuestionInput{valid}},
		"no questions":      {Title: "Quiz"},
		"blank text":        {Title: "Quiz", Questions: []app.QuestionInput{{OptionA: "a", OptionB: "b", CorrectAnswer: "A"}}},
		"missing option B":  {Title: "Quiz", Questions: []app.QuestionInput{{Text: "q", OptionA: "a", CorrectAnswer: "A"}}},
		"bad letter":        {Title: "Quiz", Questions: []app.QuestionInput{{Text: "q", OptionA: "a", OptionB: "b", CorrectAnswer: "E"}}},
		"empty correct opt": {Title: "Quiz", Questions: []app.QuestionInput{{Text: "q", OptionA: "a", OptionB: "b", CorrectAnswer: "C"}}},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.quizzes.CreateQuiz(ctx, "host-1", input)
			assert.ErrorIs(t, err, domain.ErrInvalidQuiz)
		})
	}
}

func TestListAndDeleteQuizzes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	first := env.seedQuiz(t, "host-1")
	second := env.seedQuiz(t, "host-1")
	env.seedQuiz(t, "host-2")

	quizzes, err := env.quizzes.ListQuizzes(ctx, "host-1")
	require.NoError(t, err)
	require.Len(t, quizzes, 2)

	_, err = env.quizzes.ListQuizzes(ctx, "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	// warm the cache so deletion has something to invalidate
	_, err = env.questions.ListQuestions(ctx, first)
	require.NoError(t, err)

	assert.ErrorIs(t, env.quizzes.DeleteQuiz(ctx, "host-2", first), domain.ErrUnauthorized)
	require.NoError(t, env.quizzes.DeleteQuiz(ctx, "host-1", first))
	assert.ErrorIs(t, env.quizzes.DeleteQuiz(ctx, "host-1", first), domain.ErrQuizNotFound)

	questions, err := env.questions.ListQuestions(ctx, first)
	require.NoError(t, err)
	assert.Empty(t, questions)

	quizzes, err = env.quizzes.ListQuizzes(ctx, "host-1")
	require.NoError(t, err)
	require.Len(t, quizzes, 1)
	assert.Equal(t, second, quizzes[0].ID)
}

type testEnv struct {
	store     *memory.Store
	questions *memory.QuestionCache
	notifier  *memory.Notifier
	quizzes   *app.QuizService
	sessions  *app.SessionService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithCodes(t, app.NewCodeGeneratorWithSeed(7))
}

func newTestEnvWithCodes(t *testing.T, codes app.CodeSource) *testEnv {
	t.Helper()
	store := memory.NewStore()
	questions := memory.NewQuestionCache(store, time.Minute)
	notifier := memory.NewNotifier()
	return &testEnv{
		store:     store,
		questions: questions,
		notifier:  notifier,
		quizzes:   app.NewQuizService(store, questions, nil),
		sessions:  app.NewSessionServiceWithCodes(store, questions, notifier, nil, codes),
	}
}

// seedQuiz creates a two-question quiz; question 1 is answered by A, question 2 by C.
func (e *testEnv) seedQuiz(t *testing.T, creatorID string) string {
	t.Helper()
	quizID, err := e.quizzes.CreateQuiz(context.Background(), creatorID, app.QuizInput{
		Title:       "General knowledge",
		Description: "warm-up round",
		Questions: []app.QuestionInput{
			{Text: "Largest planet?", OptionA: "Jupiter", OptionB: "Mars", OptionC: "Venus", OptionD: "Earth", CorrectAnswer: "A"},
			{Text: "H2O is?", OptionA: "Salt", OptionB: "Air", OptionC: "Water", CorrectAnswer: "C"},
		},
	})
	require.NoError(t, err)
	return quizID
}

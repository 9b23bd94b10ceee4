package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"live-quiz-service/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuestionInput is one authored question before it is stored.
type QuestionInput struct {
	Text          string `json:"text"`
	ImageURL      string `json:"imageUrl"`
	OptionA       string `json:"optionA"`
	OptionB       string `json:"optionB"`
	OptionC       string `json:"optionC"`
	OptionD       string `json:"optionD"`
	CorrectAnswer string `json:"correctAnswer"`
	TimeLimit     int    `json:"timeLimit"`
}

// QuizInput is a quiz as submitted by its author.
type QuizInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Questions   []QuestionInput `json:"questions"`
}

// QuizService contains the quiz authoring use cases.
type QuizService struct {
	quizzes QuizRepository
	cache   QuestionCache
	log     *zap.Logger
	now     func() time.Time
}

// NewQuizService builds the authoring service; cache may be nil.
func NewQuizService(quizzes QuizRepository, cache QuestionCache, log *zap.Logger) *QuizService {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuizService{quizzes: quizzes, cache: cache, log: log, now: time.Now}
}

// CreateQuiz validates and stores a quiz for the caller, returning its id.
func (s *QuizService) CreateQuiz(ctx context.Context, callerID string, input QuizInput) (string, error) {
	if callerID == "" {
		return "", domain.ErrUnauthenticated
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", domain.ErrInvalidQuiz)
	}
	if len(input.Questions) == 0 {
		return "", fmt.Errorf("%w: at least one question is required", domain.ErrInvalidQuiz)
	}

	quiz := domain.Quiz{
		ID:          uuid.NewString(),
		CreatorID:   callerID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   s.now(),
	}
	questions := make([]domain.Question, 0, len(input.Questions))
	for i, in := range input.Questions {
		q, err := buildQuestion(quiz.ID, i, in)
		if err != nil {
			return "", err
		}
		questions = append(questions, q)
	}

	if err := s.quizzes.CreateQuiz(ctx, quiz, questions); err != nil {
		return "", err
	}
	s.log.Info("quiz created",
		zap.String("quiz_id", quiz.ID),
		zap.String("creator_id", callerID),
		zap.Int("questions", len(questions)),
	)
	return quiz.ID, nil
}

// ListQuizzes returns the caller's quizzes, newest first.
func (s *QuizService) ListQuizzes(ctx context.Context, callerID string) ([]domain.Quiz, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.quizzes.ListQuizzesByCreator(ctx, callerID)
}

// DeleteQuiz removes a quiz and everything played from it. Only the creator may delete.
func (s *QuizService) DeleteQuiz(ctx context.Context, callerID, quizID string) error {
	if callerID == "" {
		return domain.ErrUnauthenticated
	}
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	if quiz.CreatorID != callerID {
		return domain.ErrUnauthorized
	}
	if err := s.quizzes.DeleteQuiz(ctx, quizID); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, quizID); err != nil {
			s.log.Warn("invalidate question cache failed", zap.String("quiz_id", quizID), zap.Error(err))
		}
	}
	return nil
}

func buildQuestion(quizID string, order int, in QuestionInput) (domain.Question, error) {
	invalid := func(msg string) error {
		return fmt.Errorf("%w: question %d: %s", domain.ErrInvalidQuiz, order+1, msg)
	}

	q := domain.Question{
		ID:        uuid.NewString(),
		QuizID:    quizID,
		Order:     order,
		Text:      strings.TrimSpace(in.Text),
		ImageURL:  strings.TrimSpace(in.ImageURL),
		OptionA:   strings.TrimSpace(in.OptionA),
		OptionB:   strings.TrimSpace(in.OptionB),
		OptionC:   strings.TrimSpace(in.OptionC),
		OptionD:   strings.TrimSpace(in.OptionD),
		TimeLimit: in.TimeLimit,
	}
	if q.Text == "" {
		return domain.Question{}, invalid("text is required")
	}
	if q.OptionA == "" || q.OptionB == "" {
		return domain.Question{}, invalid("options A and B are required")
	}
	correct, ok := domain.NormalizeOption(in.CorrectAnswer)
	if !ok {
		return domain.Question{}, invalid(domain.ErrInvalidAnswer.Error())
	}
	if q.Option(correct) == "" {
		return domain.Question{}, invalid("correct answer names an empty option")
	}
	q.CorrectAnswer = correct
	if q.TimeLimit <= 0 {
		q.TimeLimit = domain.DefaultTimeLimit
	}
	return q, nil
}

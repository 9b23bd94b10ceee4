package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"live-quiz-service/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PointsPerCorrectAnswer is added to a participant's score for each correct answer.
const PointsPerCorrectAnswer = 100

// QuizRepository persists quizzes together with their questions.
type QuizRepository interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz, questions []domain.Question) error
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	ListQuizzesByCreator(ctx context.Context, creatorID string) ([]domain.Quiz, error)
	DeleteQuiz(ctx context.Context, quizID string) error
}

// QuestionReader returns the questions of a quiz ordered by position.
type QuestionReader interface {
	ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error)
}

// QuestionCache is a QuestionReader that can drop what it holds for a quiz.
type QuestionCache interface {
	QuestionReader
	Invalidate(ctx context.Context, quizID string) error
}

// SessionRepository stores sessions. CreateSession returns domain.ErrJoinCodeTaken
// when the join code collides with an existing session.
type SessionRepository interface {
	JoinCodeExists(ctx context.Context, code string) (bool, error)
	CreateSession(ctx context.Context, session domain.Session) error
	GetSession(ctx context.Context, sessionID string) (domain.Session, error)
	GetSessionByJoinCode(ctx context.Context, code string) (domain.Session, error)
	UpdateSession(ctx context.Context, session domain.Session) error
}

// ParticipantRepository stores participants; ListParticipants orders by score descending.
type ParticipantRepository interface {
	AddParticipant(ctx context.Context, participant domain.Participant) error
	GetParticipant(ctx context.Context, participantID string) (domain.Participant, error)
	ListParticipants(ctx context.Context, sessionID string) ([]domain.Participant, error)
}

// AnswerRepository stores answers. RecordAnswer inserts the answer and adds points
// to the participant's score atomically, returning domain.ErrAlreadyAnswered on a
// duplicate (participant, question) pair.
type AnswerRepository interface {
	RecordAnswer(ctx context.Context, answer domain.Answer, points int) error
	HasAnswered(ctx context.Context, participantID, questionID string) (bool, error)
	ListAnswers(ctx context.Context, sessionID, questionID string) ([]domain.Answer, error)
}

// Store is the full persistence surface the services need.
type Store interface {
	QuizRepository
	QuestionReader
	SessionRepository
	ParticipantRepository
	AnswerRepository
}

// Notifier fans out "session changed" signals to live subscribers.
// The caller must invoke the returned cancel function to avoid leaks.
type Notifier interface {
	Publish(ctx context.Context, sessionID string) error
	Subscribe(ctx context.Context, sessionID string) (<-chan struct{}, func(), error)
}

// SessionService implements session creation, joining, host transitions,
// answers and the host/player read projections.
type SessionService struct {
	store     Store
	questions QuestionReader
	notifier  Notifier
	codes     CodeSource
	log       *zap.Logger
	now       func() time.Time
}

// NewSessionService wires the service. questions may be a cache in front of store;
// nil means reading straight from store.
func NewSessionService(store Store, questions QuestionReader, notifier Notifier, log *zap.Logger) *SessionService {
	return NewSessionServiceWithCodes(store, questions, notifier, log, NewCodeGenerator())
}

// NewSessionServiceWithCodes lets tests control join code generation.
func NewSessionServiceWithCodes(store Store, questions QuestionReader, notifier Notifier, log *zap.Logger, codes CodeSource) *SessionService {
	if questions == nil {
		questions = store
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionService{
		store:     store,
		questions: questions,
		notifier:  notifier,
		codes:     codes,
		log:       log,
		now:       time.Now,
	}
}

// Subscribe returns a channel signalled whenever the session changes.
func (s *SessionService) Subscribe(ctx context.Context, sessionID string) (<-chan struct{}, func(), error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, nil, err
	}
	return s.notifier.Subscribe(ctx, sessionID)
}

// CreateSession opens a waiting session for a quiz owned by the caller and
// returns its id.
func (s *SessionService) CreateSession(ctx context.Context, quizID, callerID string) (string, error) {
	if callerID == "" {
		return "", domain.ErrUnauthenticated
	}
	quiz, err := s.store.GetQuiz(ctx, quizID)
	if errors.Is(err, domain.ErrQuizNotFound) {
		return "", domain.ErrUnauthorized
	}
	if err != nil {
		return "", err
	}
	if quiz.CreatorID != callerID {
		return "", domain.ErrUnauthorized
	}

	session := domain.Session{
		ID:                   uuid.NewString(),
		QuizID:               quiz.ID,
		HostID:               callerID,
		Status:               domain.StatusWaiting,
		CurrentQuestionIndex: 0,
		ShowLeaderboard:      false,
		CreatedAt:            s.now(),
	}
	if err := s.insertWithUniqueCode(ctx, &session); err != nil {
		return "", err
	}

	s.log.Info("session created",
		zap.String("session_id", session.ID),
		zap.String("quiz_id", quiz.ID),
		zap.String("join_code", session.JoinCode),
	)
	return session.ID, nil
}

// insertWithUniqueCode retries with fresh codes when the code is already used,
// either seen up front or reported by the store's unique constraint.
func (s *SessionService) insertWithUniqueCode(ctx context.Context, session *domain.Session) error {
	for attempt := 0; attempt < maxJoinCodeAttempts; attempt++ {
		code := s.codes.Generate()
		exists, err := s.store.JoinCodeExists(ctx, code)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		session.JoinCode = code
		err = s.store.CreateSession(ctx, *session)
		if errors.Is(err, domain.ErrJoinCodeTaken) {
			continue
		}
		return err
	}
	s.log.Warn("join code allocation exhausted", zap.String("quiz_id", session.QuizID))
	return domain.ErrJoinCodeExhausted
}

// JoinSession seats a new player in the waiting session with the given code.
// Names are not deduplicated.
func (s *SessionService) JoinSession(ctx context.Context, joinCode, name string) (domain.JoinResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.JoinResult{}, domain.ErrInvalidName
	}

	session, err := s.store.GetSessionByJoinCode(ctx, NormalizeJoinCode(joinCode))
	if err != nil {
		return domain.JoinResult{}, err
	}
	if session.Status != domain.StatusWaiting {
		return domain.JoinResult{}, domain.ErrSessionClosed
	}

	participant := domain.Participant{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Name:      name,
		Score:     0,
		JoinedAt:  s.now(),
	}
	if err := s.store.AddParticipant(ctx, participant); err != nil {
		return domain.JoinResult{}, err
	}

	s.publish(ctx, session.ID)
	return domain.JoinResult{SessionID: session.ID, ParticipantID: participant.ID}, nil
}

// StartSession moves a waiting session to the first question.
func (s *SessionService) StartSession(ctx context.Context, sessionID, callerID string) error {
	return s.transition(ctx, sessionID, callerID, func(session *domain.Session, _ int) error {
		if session.Status != domain.StatusWaiting {
			return domain.ErrSessionNotActive
		}
		session.Status = domain.StatusActive
		session.CurrentQuestionIndex = 0
		session.ShowLeaderboard = false
		return nil
	})
}

// RevealLeaderboard makes answer statistics for the current question visible.
func (s *SessionService) RevealLeaderboard(ctx context.Context, sessionID, callerID string) error {
	return s.transition(ctx, sessionID, callerID, func(session *domain.Session, _ int) error {
		if session.Status != domain.StatusActive {
			return domain.ErrSessionNotActive
		}
		session.ShowLeaderboard = true
		return nil
	})
}

// NextQuestion advances to the following question, ending the session after the last one.
func (s *SessionService) NextQuestion(ctx context.Context, sessionID, callerID string) error {
	return s.transition(ctx, sessionID, callerID, func(session *domain.Session, questionCount int) error {
		if session.Status != domain.StatusActive {
			return domain.ErrSessionNotActive
		}
		session.ShowLeaderboard = false
		if session.CurrentQuestionIndex+1 >= questionCount {
			session.Status = domain.StatusEnded
			return nil
		}
		session.CurrentQuestionIndex++
		return nil
	})
}

// EndSession closes the session regardless of its state.
func (s *SessionService) EndSession(ctx context.Context, sessionID, callerID string) error {
	return s.transition(ctx, sessionID, callerID, func(session *domain.Session, _ int) error {
		session.Status = domain.StatusEnded
		return nil
	})
}

func (s *SessionService) transition(ctx context.Context, sessionID, callerID string, apply func(*domain.Session, int) error) error {
	if callerID == "" {
		return domain.ErrUnauthenticated
	}
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.HostID != callerID {
		return domain.ErrUnauthorized
	}

	questions, err := s.questions.ListQuestions(ctx, session.QuizID)
	if err != nil {
		return err
	}
	if err := apply(&session, len(questions)); err != nil {
		return err
	}
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return err
	}

	s.log.Debug("session updated",
		zap.String("session_id", session.ID),
		zap.String("status", string(session.Status)),
		zap.Int("question_index", session.CurrentQuestionIndex),
		zap.Bool("show_leaderboard", session.ShowLeaderboard),
	)
	s.publish(ctx, session.ID)
	return nil
}

// SubmitAnswer records a participant's answer to the current question.
func (s *SessionService) SubmitAnswer(ctx context.Context, sessionID, participantID, answer string) (domain.AnswerResult, error) {
	letter, ok := domain.NormalizeOption(answer)
	if !ok {
		return domain.AnswerResult{}, domain.ErrInvalidAnswer
	}

	session, _, err := s.seat(ctx, sessionID, participantID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	if session.Status != domain.StatusActive || session.ShowLeaderboard {
		return domain.AnswerResult{}, domain.ErrSessionNotActive
	}

	questions, err := s.questions.ListQuestions(ctx, session.QuizID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	current := currentQuestion(questions, session.CurrentQuestionIndex)
	if current == nil {
		return domain.AnswerResult{}, domain.ErrSessionNotActive
	}

	result := domain.AnswerResult{
		QuestionID: current.ID,
		Answer:     letter,
		Correct:    letter == current.CorrectAnswer,
	}
	if result.Correct {
		result.Awarded = PointsPerCorrectAnswer
	}

	err = s.store.RecordAnswer(ctx, domain.Answer{
		ID:            uuid.NewString(),
		SessionID:     session.ID,
		ParticipantID: participantID,
		QuestionID:    current.ID,
		Answer:        letter,
		CreatedAt:     s.now(),
	}, result.Awarded)
	if err != nil {
		return domain.AnswerResult{}, err
	}

	s.publish(ctx, session.ID)
	return result, nil
}

// HostView assembles the host screen. Callers other than the host get
// domain.ErrSessionNotFound so the session's existence is not revealed.
func (s *SessionService) HostView(ctx context.Context, sessionID, callerID string) (*domain.HostView, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if callerID == "" || session.HostID != callerID {
		return nil, domain.ErrSessionNotFound
	}

	view := &domain.HostView{Session: session}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		quiz, err := s.store.GetQuiz(gctx, session.QuizID)
		if errors.Is(err, domain.ErrQuizNotFound) {
			return domain.ErrSessionNotFound
		}
		view.Quiz = quiz
		return err
	})
	g.Go(func() error {
		questions, err := s.questions.ListQuestions(gctx, session.QuizID)
		view.Questions = questions
		return err
	})
	g.Go(func() error {
		participants, err := s.store.ListParticipants(gctx, session.ID)
		view.Participants = participants
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view.CurrentQuestion = currentQuestion(view.Questions, session.CurrentQuestionIndex)
	view.AnswerStats, err = s.answerStats(ctx, session, view.CurrentQuestion)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// PlayerView assembles what one participant sees. A participant from another
// session is reported as domain.ErrParticipantNotFound.
func (s *SessionService) PlayerView(ctx context.Context, sessionID, participantID string) (*domain.PlayerView, error) {
	session, participant, err := s.seat(ctx, sessionID, participantID)
	if err != nil {
		return nil, err
	}

	view := &domain.PlayerView{Session: session, Participant: participant}
	var questions []domain.Question
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		questions, err = s.questions.ListQuestions(gctx, session.QuizID)
		return err
	})
	g.Go(func() error {
		participants, err := s.store.ListParticipants(gctx, session.ID)
		view.Participants = participants
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	current := currentQuestion(questions, session.CurrentQuestionIndex)
	if current != nil {
		view.HasAnswered, err = s.store.HasAnswered(ctx, participant.ID, current.ID)
		if err != nil {
			return nil, err
		}
		if !session.ShowLeaderboard {
			current.CorrectAnswer = ""
		}
	}
	view.CurrentQuestion = current

	view.AnswerStats, err = s.answerStats(ctx, session, current)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// answerStats withholds the distribution until the host reveals it.
func (s *SessionService) answerStats(ctx context.Context, session domain.Session, current *domain.Question) (domain.AnswerStats, error) {
	if !session.ShowLeaderboard || current == nil {
		return domain.AnswerStats{}, nil
	}
	answers, err := s.store.ListAnswers(ctx, session.ID, current.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return TallyAnswers(answers), nil
}

func (s *SessionService) seat(ctx context.Context, sessionID, participantID string) (domain.Session, domain.Participant, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return domain.Session{}, domain.Participant{}, err
	}
	participant, err := s.store.GetParticipant(ctx, participantID)
	if err != nil {
		return domain.Session{}, domain.Participant{}, err
	}
	if participant.SessionID != session.ID {
		return domain.Session{}, domain.Participant{}, domain.ErrParticipantNotFound
	}
	return session, participant, nil
}

// publish is best effort; live clients resync on their next change.
func (s *SessionService) publish(ctx context.Context, sessionID string) {
	if err := s.notifier.Publish(ctx, sessionID); err != nil {
		s.log.Warn("publish session change failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

package memory

import (
	"context"
	"sort"
	"sync"

	"live-quiz-service/internal/domain"
)

// Store is an in-memory implementation of app.Store, used when no Postgres is configured.
type Store struct {
	mu           sync.RWMutex
	quizzes      map[string]domain.Quiz
	questions    map[string][]domain.Question // by quiz id, ordered
	sessions     map[string]domain.Session
	codes        map[string]string // join code -> session id
	participants map[string]domain.Participant
	joinOrder    map[string]int
	answers      map[string]domain.Answer // by participant id + question id
	seq          int
}

func NewStore() *Store {
	return &Store{
		quizzes:      make(map[string]domain.Quiz),
		questions:    make(map[string][]domain.Question),
		sessions:     make(map[string]domain.Session),
		codes:        make(map[string]string),
		participants: make(map[string]domain.Participant),
		joinOrder:    make(map[string]int),
		answers:      make(map[string]domain.Answer),
	}
}

func (s *Store) CreateQuiz(_ context.Context, quiz domain.Quiz, questions []domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = quiz
	ordered := append([]domain.Question(nil), questions...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })
	s.questions[quiz.ID] = ordered
	return nil
}

func (s *Store) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *Store) ListQuizzesByCreator(_ context.Context, creatorID string) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0)
	for _, quiz := range s.quizzes {
		if quiz.CreatorID == creatorID {
			out = append(out, quiz)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteQuiz drops the quiz with its questions, sessions, participants and answers.
func (s *Store) DeleteQuiz(_ context.Context, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, quizID)
	delete(s.questions, quizID)
	for id, session := range s.sessions {
		if session.QuizID != quizID {
			continue
		}
		delete(s.sessions, id)
		delete(s.codes, session.JoinCode)
		for pid, p := range s.participants {
			if p.SessionID == id {
				delete(s.participants, pid)
				delete(s.joinOrder, pid)
			}
		}
		for key, a := range s.answers {
			if a.SessionID == id {
				delete(s.answers, key)
			}
		}
	}
	return nil
}

func (s *Store) ListQuestions(_ context.Context, quizID string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Question(nil), s.questions[quizID]...), nil
}

func (s *Store) JoinCodeExists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.codes[code]
	return ok, nil
}

func (s *Store) CreateSession(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.codes[session.JoinCode]; ok {
		return domain.ErrJoinCodeTaken
	}
	s.sessions[session.ID] = session
	s.codes[session.JoinCode] = session.ID
	return nil
}

func (s *Store) GetSession(_ context.Context, sessionID string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *Store) GetSessionByJoinCode(_ context.Context, code string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.codes[code]
	if !ok {
		return domain.Session{}, domain.ErrJoinCodeNotFound
	}
	return s.sessions[id], nil
}

// UpdateSession writes the mutable session fields; quiz, host and code stay fixed.
func (s *Store) UpdateSession(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.sessions[session.ID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	existing.Status = session.Status
	existing.CurrentQuestionIndex = session.CurrentQuestionIndex
	existing.ShowLeaderboard = session.ShowLeaderboard
	s.sessions[session.ID] = existing
	return nil
}

func (s *Store) AddParticipant(_ context.Context, participant domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[participant.SessionID]; !ok {
		return domain.ErrSessionNotFound
	}
	s.seq++
	s.participants[participant.ID] = participant
	s.joinOrder[participant.ID] = s.seq
	return nil
}

func (s *Store) GetParticipant(_ context.Context, participantID string) (domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[participantID]
	if !ok {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	return p, nil
}

// ListParticipants orders by score descending, then by join order.
func (s *Store) ListParticipants(_ context.Context, sessionID string) ([]domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Participant, 0)
	for _, p := range s.participants {
		if p.SessionID == sessionID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return s.joinOrder[out[i].ID] < s.joinOrder[out[j].ID]
	})
	return out, nil
}

func (s *Store) RecordAnswer(_ context.Context, answer domain.Answer, points int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	participant, ok := s.participants[answer.ParticipantID]
	if !ok {
		return domain.ErrParticipantNotFound
	}
	key := answerKey(answer.ParticipantID, answer.QuestionID)
	if _, ok := s.answers[key]; ok {
		return domain.ErrAlreadyAnswered
	}
	s.answers[key] = answer
	participant.Score += points
	s.participants[participant.ID] = participant
	return nil
}

func (s *Store) HasAnswered(_ context.Context, participantID, questionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.answers[answerKey(participantID, questionID)]
	return ok, nil
}

func (s *Store) ListAnswers(_ context.Context, sessionID, questionID string) ([]domain.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Answer, 0)
	for _, a := range s.answers {
		if a.SessionID == sessionID && a.QuestionID == questionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func answerKey(participantID, questionID string) string {
	return participantID + "/" + questionID
}

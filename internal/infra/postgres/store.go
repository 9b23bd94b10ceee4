package postgres

import (
	"context"
	"errors"
	"fmt"

	"live-quiz-service/internal/domain"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Store implements app.Store on Postgres. Join code and answer uniqueness are
// enforced by table constraints and reported as domain errors.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateQuiz(ctx context.Context, quiz domain.Quiz, questions []domain.Question) error {
	err := s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO quizzes (id, creator_id, title, description, created_at) VALUES ($1, $2, $3, $4, $5)`,
			quiz.ID, quiz.CreatorID, quiz.Title, quiz.Description, quiz.CreatedAt,
		); err != nil {
			return err
		}
		for _, q := range questions {
			if _, err := tx.Exec(ctx,
				`INSERT INTO questions (id, quiz_id, position, text, image_url, option_a, option_b, option_c, option_d, correct_answer, time_limit)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
				q.ID, quiz.ID, q.Order, q.Text, q.ImageURL, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectAnswer, q.TimeLimit,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create quiz: %w", err)
	}
	return nil
}

func (s *Store) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := s.pool.QueryRow(ctx,
		`SELECT id, creator_id, title, description, created_at FROM quizzes WHERE id=$1`, quizID,
	).Scan(&quiz.ID, &quiz.CreatorID, &quiz.Title, &quiz.Description, &quiz.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return quiz, nil
}

func (s *Store) ListQuizzesByCreator(ctx context.Context, creatorID string) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, creator_id, title, description, created_at FROM quizzes
		 WHERE creator_id=$1 ORDER BY created_at DESC, id`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := make([]domain.Quiz, 0)
	for rows.Next() {
		var quiz domain.Quiz
		if err := rows.Scan(&quiz.ID, &quiz.CreatorID, &quiz.Title, &quiz.Description, &quiz.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

// DeleteQuiz relies on ON DELETE CASCADE for questions, sessions, participants and answers.
func (s *Store) DeleteQuiz(ctx context.Context, quizID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quizzes WHERE id=$1`, quizID)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *Store) ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, quiz_id, position, text, image_url, option_a, option_b, option_c, option_d, correct_answer, time_limit
		 FROM questions WHERE quiz_id=$1 ORDER BY position ASC`, quizID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	questions := make([]domain.Question, 0)
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Order, &q.Text, &q.ImageURL,
			&q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectAnswer, &q.TimeLimit); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Store) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM quiz_sessions WHERE join_code=$1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check join code: %w", err)
	}
	return exists, nil
}

func (s *Store) CreateSession(ctx context.Context, session domain.Session) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO quiz_sessions (id, quiz_id, host_id, join_code, status, current_question_index, show_leaderboard, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		session.ID, session.QuizID, session.HostID, session.JoinCode, string(session.Status),
		session.CurrentQuestionIndex, session.ShowLeaderboard, session.CreatedAt,
	)
	switch {
	case isViolation(err, uniqueViolation, "quiz_sessions_join_code_key"):
		return domain.ErrJoinCodeTaken
	case isViolation(err, foreignKeyViolation, ""):
		return domain.ErrQuizNotFound
	case err != nil:
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

const sessionColumns = `id, quiz_id, host_id, join_code, status, current_question_index, show_leaderboard, created_at`

func (s *Store) GetSession(ctx context.Context, sessionID string) (domain.Session, error) {
	session, err := scanSession(s.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM quiz_sessions WHERE id=$1`, sessionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return session, err
}

func (s *Store) GetSessionByJoinCode(ctx context.Context, code string) (domain.Session, error) {
	session, err := scanSession(s.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM quiz_sessions WHERE join_code=$1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Session{}, domain.ErrJoinCodeNotFound
	}
	return session, err
}

func (s *Store) UpdateSession(ctx context.Context, session domain.Session) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE quiz_sessions SET status=$2, current_question_index=$3, show_leaderboard=$4 WHERE id=$1`,
		session.ID, string(session.Status), session.CurrentQuestionIndex, session.ShowLeaderboard,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *Store) AddParticipant(ctx context.Context, p domain.Participant) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO participants (id, session_id, name, score, joined_at) VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.SessionID, p.Name, p.Score, p.JoinedAt,
	)
	if isViolation(err, foreignKeyViolation, "") {
		return domain.ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("add participant: %w", err)
	}
	return nil
}

func (s *Store) GetParticipant(ctx context.Context, participantID string) (domain.Participant, error) {
	var p domain.Participant
	err := s.pool.QueryRow(ctx,
		`SELECT id, session_id, name, score, joined_at FROM participants WHERE id=$1`, participantID,
	).Scan(&p.ID, &p.SessionID, &p.Name, &p.Score, &p.JoinedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	if err != nil {
		return domain.Participant{}, fmt.Errorf("load participant: %w", err)
	}
	return p, nil
}

func (s *Store) ListParticipants(ctx context.Context, sessionID string) ([]domain.Participant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, session_id, name, score, joined_at FROM participants
		 WHERE session_id=$1 ORDER BY score DESC, joined_at ASC, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	participants := make([]domain.Participant, 0)
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Name, &p.Score, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (s *Store) RecordAnswer(ctx context.Context, answer domain.Answer, points int) error {
	err := s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO answers (id, session_id, participant_id, question_id, answer, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			answer.ID, answer.SessionID, answer.ParticipantID, answer.QuestionID, answer.Answer, answer.CreatedAt,
		); err != nil {
			return err
		}
		if points == 0 {
			return nil
		}
		_, err := tx.Exec(ctx, `UPDATE participants SET score = score + $2 WHERE id=$1`, answer.ParticipantID, points)
		return err
	})
	switch {
	case isViolation(err, uniqueViolation, "answers_participant_question_key"):
		return domain.ErrAlreadyAnswered
	case isViolation(err, foreignKeyViolation, ""):
		return domain.ErrParticipantNotFound
	case err != nil:
		return fmt.Errorf("record answer: %w", err)
	}
	return nil
}

func (s *Store) HasAnswered(ctx context.Context, participantID, questionID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM answers WHERE participant_id=$1 AND question_id=$2)`,
		participantID, questionID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check answer: %w", err)
	}
	return exists, nil
}

func (s *Store) ListAnswers(ctx context.Context, sessionID, questionID string) ([]domain.Answer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, session_id, participant_id, question_id, answer, created_at FROM answers
		 WHERE session_id=$1 AND question_id=$2`, sessionID, questionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	answers := make([]domain.Answer, 0)
	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(&a.ID, &a.SessionID, &a.ParticipantID, &a.QuestionID, &a.Answer, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func scanSession(row pgx.Row) (domain.Session, error) {
	var session domain.Session
	var status string
	err := row.Scan(&session.ID, &session.QuizID, &session.HostID, &session.JoinCode, &status,
		&session.CurrentQuestionIndex, &session.ShowLeaderboard, &session.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Session{}, err
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}
	session.Status = domain.SessionStatus(status)
	return session, nil
}

// isViolation matches a Postgres error code and, when given, the constraint name.
func isViolation(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != code {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

package domain

import "errors"

var (
	// ErrUnauthenticated is returned when an operation needs a caller identity and none was supplied.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrUnauthorized is returned when the caller may not act on the resource.
	ErrUnauthorized = errors.New("not authorized for this quiz")
	// ErrQuizNotFound indicates the quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrSessionNotFound covers both missing sessions and sessions the caller may not see.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrParticipantNotFound is returned when a participant is missing or belongs to another session.
	ErrParticipantNotFound = errors.New("participant not found in session")
	// ErrJoinCodeNotFound indicates no session uses the supplied join code.
	ErrJoinCodeNotFound = errors.New("quiz code not found")
	// ErrSessionClosed is returned when joining a session that has left the waiting state.
	ErrSessionClosed = errors.New("quiz is no longer accepting new players")
	// ErrJoinCodeExhausted is returned when no unique join code could be allocated.
	ErrJoinCodeExhausted = errors.New("failed to generate unique join code")
	// ErrJoinCodeTaken is reported by stores when a session insert hits an existing join code.
	ErrJoinCodeTaken = errors.New("join code already in use")
	// ErrSessionNotActive is returned for transitions or answers not allowed in the current state.
	ErrSessionNotActive = errors.New("quiz session is not accepting this action")
	// ErrAlreadyAnswered is returned on a second answer to the same question.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrInvalidAnswer indicates an answer letter outside A-D.
	ErrInvalidAnswer = errors.New("answer must be one of A, B, C or D")
	// ErrInvalidName is returned when a player joins with a blank name.
	ErrInvalidName = errors.New("player name is required")
	// ErrInvalidQuiz wraps authoring validation failures.
	ErrInvalidQuiz = errors.New("invalid quiz")
)

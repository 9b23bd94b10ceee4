package domain

import (
	"strings"
	"time"
)

// SessionStatus is the lifecycle state of a live session.
type SessionStatus string

const (
	StatusWaiting SessionStatus = "waiting"
	StatusActive  SessionStatus = "active"
	StatusEnded   SessionStatus = "ended"
)

// DefaultTimeLimit is applied to questions authored without a time limit (seconds).
const DefaultTimeLimit = 30

// OptionLetters are the answer options every question offers, in display order.
var OptionLetters = []string{"A", "B", "C", "D"}

// NormalizeOption upper-cases an answer letter and reports whether it is one of A-D.
func NormalizeOption(raw string) (string, bool) {
	letter := strings.ToUpper(strings.TrimSpace(raw))
	for _, opt := range OptionLetters {
		if opt == letter {
			return letter, true
		}
	}
	return "", false
}

// Quiz is authored by a host and owns an ordered list of questions.
type Quiz struct {
	ID          string    `json:"id"`
	CreatorID   string    `json:"creatorId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Question is a four-option multiple choice question at a fixed position in its quiz.
type Question struct {
	ID            string `json:"id"`
	QuizID        string `json:"quizId"`
	Order         int    `json:"order"`
	Text          string `json:"text"`
	ImageURL      string `json:"imageUrl,omitempty"`
	OptionA       string `json:"optionA"`
	OptionB       string `json:"optionB"`
	OptionC       string `json:"optionC,omitempty"`
	OptionD       string `json:"optionD,omitempty"`
	CorrectAnswer string `json:"correctAnswer,omitempty"`
	TimeLimit     int    `json:"timeLimit"` // seconds
}

// Option returns the text of the option with the given letter.
func (q Question) Option(letter string) string {
	switch letter {
	case "A":
		return q.OptionA
	case "B":
		return q.OptionB
	case "C":
		return q.OptionC
	case "D":
		return q.OptionD
	}
	return ""
}

// Session is one live run of a quiz.
type Session struct {
	ID                   string        `json:"id"`
	QuizID               string        `json:"quizId"`
	HostID               string        `json:"hostId"`
	JoinCode             string        `json:"joinCode"`
	Status               SessionStatus `json:"status"`
	CurrentQuestionIndex int           `json:"currentQuestionIndex"`
	ShowLeaderboard      bool          `json:"showLeaderboard"`
	CreatedAt            time.Time     `json:"createdAt"`
}

// Participant is a player's seat within one session.
type Participant struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// Answer is a participant's choice for one question.
type Answer struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"sessionId"`
	ParticipantID string    `json:"participantId"`
	QuestionID    string    `json:"questionId"`
	Answer        string    `json:"answer"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AnswerStats maps option letters to the number of answers received.
type AnswerStats map[string]int

// JoinResult identifies the seat created by a successful join.
type JoinResult struct {
	SessionID     string `json:"sessionId"`
	ParticipantID string `json:"participantId"`
}

// AnswerResult summarizes a recorded answer for the submitting participant.
type AnswerResult struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
	Correct    bool   `json:"correct"`
	Awarded    int    `json:"awarded"`
}

// HostView is everything the host screen renders for a session.
type HostView struct {
	Session         Session       `json:"session"`
	Quiz            Quiz          `json:"quiz"`
	Questions       []Question    `json:"questions"`
	Participants    []Participant `json:"participants"`
	CurrentQuestion *Question     `json:"currentQuestion"`
	AnswerStats     AnswerStats   `json:"answerStats"`
}

// PlayerView is what a single participant sees.
type PlayerView struct {
	Session         Session       `json:"session"`
	Participant     Participant   `json:"participant"`
	Participants    []Participant `json:"allParticipants"`
	CurrentQuestion *Question     `json:"currentQuestion"`
	HasAnswered     bool          `json:"hasAnswered"`
	AnswerStats     AnswerStats   `json:"answerStats"`
}

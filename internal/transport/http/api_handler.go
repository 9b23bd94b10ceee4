package http

import (
	"context"
	"encoding/json"
	"net/http"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// APIHandler exposes the quiz and session use cases as JSON over HTTP.
type APIHandler struct {
	quizzes  *app.QuizService
	sessions *app.SessionService
	log      *zap.Logger
}

func NewAPIHandler(quizzes *app.QuizService, sessions *app.SessionService, log *zap.Logger) *APIHandler {
	return &APIHandler{quizzes: quizzes, sessions: sessions, log: log}
}

type idResponse struct {
	ID string `json:"id"`
}

type createSessionRequest struct {
	QuizID string `json:"quizId"`
}

type createSessionResponse struct {
	SessionID string `json:"sessionId"`
}

type joinRequest struct {
	JoinCode string `json:"joinCode"`
	Name     string `json:"name"`
}

type answerRequest struct {
	ParticipantID string `json:"participantId"`
	Answer        string `json:"answer"`
}

func (h *APIHandler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req app.QuizInput
	if !decode(w, r, &req) {
		return
	}
	id, err := h.quizzes.CreateQuiz(r.Context(), auth.CallerID(r.Context()), req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (h *APIHandler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizzes.ListQuizzes(r.Context(), auth.CallerID(r.Context()))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *APIHandler) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	err := h.quizzes.DeleteQuiz(r.Context(), auth.CallerID(r.Context()), chi.URLParam(r, "quizID"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := h.sessions.CreateSession(r.Context(), req.QuizID, auth.CallerID(r.Context()))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, createSessionResponse{SessionID: id})
}

func (h *APIHandler) JoinSession(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if !decode(w, r, &req) {
		return
	}
	joined, err := h.sessions.JoinSession(r.Context(), req.JoinCode, req.Name)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, joined)
}

func (h *APIHandler) HostView(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.HostView(r.Context(), chi.URLParam(r, "sessionID"), auth.CallerID(r.Context()))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *APIHandler) PlayerView(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.PlayerView(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "participantID"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Transition handles the host-only start, reveal, next and end actions.
func (h *APIHandler) Transition(w http.ResponseWriter, r *http.Request) {
	apply, ok := hostActions(h.sessions)[chi.URLParam(r, "action")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := apply(r.Context(), chi.URLParam(r, "sessionID"), auth.CallerID(r.Context())); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.sessions.SubmitAnswer(r.Context(), chi.URLParam(r, "sessionID"), req.ParticipantID, req.Answer)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type hostAction func(ctx context.Context, sessionID, callerID string) error

func hostActions(s *app.SessionService) map[string]hostAction {
	return map[string]hostAction{
		"start":  s.StartSession,
		"reveal": s.RevealLeaderboard,
		"next":   s.NextQuestion,
		"end":    s.EndSession,
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid request body"})
		return false
	}
	return true
}

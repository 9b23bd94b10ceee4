package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var errUnsupportedMessage = errors.New("unsupported message type")

// WSHandler streams recomputed host and player views to websocket clients
// whenever their session changes.
type WSHandler struct {
	sessions *app.SessionService
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewWSHandler(sessions *app.SessionService, log *zap.Logger) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Answer string `json:"answer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type renderFunc func(ctx context.Context) (any, error)

type inboundFunc func(ctx context.Context, msg inboundMessage) (*outboundMessage[any], error)

// ServeHost streams the host view and accepts start, reveal, next and end commands.
func (h *WSHandler) ServeHost(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	callerID := auth.CallerID(r.Context())
	actions := hostActions(h.sessions)

	render := func(ctx context.Context) (any, error) {
		return h.sessions.HostView(ctx, sessionID, callerID)
	}
	handle := func(ctx context.Context, msg inboundMessage) (*outboundMessage[any], error) {
		apply, ok := actions[msg.Type]
		if !ok {
			return nil, errUnsupportedMessage
		}
		return nil, apply(ctx, sessionID, callerID)
	}
	h.serve(w, r, sessionID, "host", render, handle)
}

// ServePlayer streams one participant's view and accepts answers.
func (h *WSHandler) ServePlayer(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	participantID := chi.URLParam(r, "participantID")

	render := func(ctx context.Context) (any, error) {
		return h.sessions.PlayerView(ctx, sessionID, participantID)
	}
	handle := func(ctx context.Context, msg inboundMessage) (*outboundMessage[any], error) {
		if msg.Type != "answer" {
			return nil, errUnsupportedMessage
		}
		var payload answerPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return nil, errors.New("invalid answer payload")
		}
		result, err := h.sessions.SubmitAnswer(ctx, sessionID, participantID, payload.Answer)
		if err != nil {
			return nil, err
		}
		return &outboundMessage[any]{Type: "answerResult", Payload: result}, nil
	}
	h.serve(w, r, sessionID, "player", render, handle)
}

func (h *WSHandler) serve(w http.ResponseWriter, r *http.Request, sessionID, viewType string, render renderFunc, handle inboundFunc) {
	ctx := r.Context()

	// Authorization failures surface as plain HTTP errors before the upgrade.
	initial, err := render(ctx)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	updates, cancel, err := h.sessions.Subscribe(ctx, sessionID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer; after a write error it keeps draining so senders never block,
	// and closing the conn ends the read loop below.
	go func() {
		defer close(writerDone)
		failed := false
		for msg := range send {
			if failed {
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", zap.String("session_id", sessionID), zap.Error(err))
				failed = true
				_ = conn.Close()
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case _, ok := <-updates:
				if !ok {
					return
				}
				msg := outboundMessage[any]{Type: viewType}
				if view, err := render(ctx); err != nil {
					msg = errorMessage(err)
				} else {
					msg.Payload = view
				}
				select {
				case send <- msg:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: viewType, Payload: initial}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		reply, err := handle(ctx, inbound)
		if err != nil {
			send <- errorMessage(err)
			continue
		}
		if reply != nil {
			send <- *reply
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func errorMessage(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
}

package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"live-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wireMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (s *testServer) dial(t *testing.T, path string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	u := "ws" + strings.TrimPrefix(s.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Cleanup(func() { conn.Close() })
	}
	return conn, resp, err
}

// readUntil reads messages until one of the wanted type satisfies match.
func readUntil(t *testing.T, conn *websocket.Conn, wantType string, match func(json.RawMessage) bool) json.RawMessage {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		var msg wireMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %s: %v", wantType, err)
		}
		if msg.Type == wantType && (match == nil || match(msg.Payload)) {
			return msg.Payload
		}
	}
}

func playerStatus(status domain.SessionStatus) func(json.RawMessage) bool {
	return func(raw json.RawMessage) bool {
		var view domain.PlayerView
		return json.Unmarshal(raw, &view) == nil && view.Session.Status == status
	}
}

func TestWebSocketLiveRound(t *testing.T) {
	srv := newTestServer(t)
	host := srv.token(t, "host-1")
	sessionID, joinCode := srv.hostSession(t, host)

	var joined domain.JoinResult
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/sessions/join", "", joinRequest{JoinCode: joinCode, Name: "Ann"}, &joined))

	hostConn, _, err := srv.dial(t, "/ws/sessions/"+sessionID+"/host?token="+host)
	require.NoError(t, err)
	playerConn, _, err := srv.dial(t, "/ws/sessions/"+sessionID+"/players/"+joined.ParticipantID)
	require.NoError(t, err)

	var hostView domain.HostView
	require.NoError(t, json.Unmarshal(readUntil(t, hostConn, "host", nil), &hostView))
	assert.Equal(t, domain.StatusWaiting, hostView.Session.Status)
	require.Len(t, hostView.Participants, 1)

	readUntil(t, playerConn, "player", playerStatus(domain.StatusWaiting))

	require.NoError(t, hostConn.WriteJSON(map[string]any{"type": "start"}))
	readUntil(t, playerConn, "player", playerStatus(domain.StatusActive))

	require.NoError(t, playerConn.WriteJSON(map[string]any{
		"type":    "answer",
		"payload": map[string]any{"answer": "a"},
	}))
	var result domain.AnswerResult
	require.NoError(t, json.Unmarshal(readUntil(t, playerConn, "answerResult", nil), &result))
	assert.True(t, result.Correct)
	assert.Equal(t, "A", result.Answer)

	require.NoError(t, playerConn.WriteJSON(map[string]any{
		"type":    "answer",
		"payload": map[string]any{"answer": "B"},
	}))
	var failure errorPayload
	require.NoError(t, json.Unmarshal(readUntil(t, playerConn, "error", nil), &failure))
	assert.Equal(t, domain.ErrAlreadyAnswered.Error(), failure.Message)

	require.NoError(t, hostConn.WriteJSON(map[string]any{"type": "reveal"}))
	payload := readUntil(t, hostConn, "host", func(raw json.RawMessage) bool {
		var view domain.HostView
		return json.Unmarshal(raw, &view) == nil && view.Session.ShowLeaderboard
	})
	require.NoError(t, json.Unmarshal(payload, &hostView))
	assert.Equal(t, domain.AnswerStats{"A": 1, "B": 0, "C": 0, "D": 0}, hostView.AnswerStats)

	require.NoError(t, hostConn.WriteJSON(map[string]any{"type": "shuffle"}))
	require.NoError(t, json.Unmarshal(readUntil(t, hostConn, "error", nil), &failure))
	assert.Equal(t, errUnsupportedMessage.Error(), failure.Message)
}

func TestWebSocketRejectsBeforeUpgrade(t *testing.T) {
	srv := newTestServer(t)
	sessionID, _ := srv.hostSession(t, srv.token(t, "host-1"))

	_, resp, err := srv.dial(t, "/ws/sessions/"+sessionID+"/host?token="+srv.token(t, "host-2"))
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, resp, err = srv.dial(t, "/ws/sessions/"+sessionID+"/players/nobody")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

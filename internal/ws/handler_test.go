package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"voiceforge/internal/config"
	"voiceforge/internal/emotion"
	"voiceforge/internal/studio"
	"voiceforge/pkg/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSpeaker struct {
	err error
}

func (f *fakeSpeaker) Speak(_ context.Context, text, characterID string) (*studio.SpeechOutcome, error) {
	if f.err != nil {
		return nil, f.err
	}
	url := "http://localhost:8000/static/audio/" + characterID + ".wav"
	return &studio.SpeechOutcome{
		AudioURL:    &url,
		Emotion:     emotion.AnalysisResult{PrimaryEmotion: emotion.Happy, Confidence: 0.7},
		CharacterID: characterID,
		Text:        text,
	}, nil
}

type fakeProfiles struct{}

func (fakeProfiles) GetProfile(_ context.Context, id string) *models.Character {
	if id == "villain" {
		return &models.Character{ID: "villain", Name: "Dr. Shadow"}
	}
	return &models.Character{ID: "narrator", Name: "The Storyteller"}
}

type wsRecorder struct {
	mu       sync.Mutex
	messages []string
	active   int
}

func (r *wsRecorder) RecordWSMessage(t string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, t)
}

func (r *wsRecorder) WSConnected() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active++
}

func (r *wsRecorder) WSDisconnected() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active--
}

func (r *wsRecorder) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

type testServer struct {
	srv      *httptest.Server
	manager  *Manager
	recorder *wsRecorder
}

func newTestServer(t *testing.T, speaker Speaker) *testServer {
	t.Helper()
	rec := &wsRecorder{}
	manager := NewManager(rec, zap.NewNop())
	cfg := config.WebSocketConfig{ReadLimit: 64 << 10, PingInterval: time.Second, WriteTimeout: time.Second}
	h := NewHandler(manager, speaker, fakeProfiles{}, cfg, []string{"http://allowed.test"}, zap.NewNop())

	mux := http.NewServeMux()
	mux.Handle("GET /ws/{session_id}", h)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, manager: manager, recorder: rec}
}

func (s *testServer) dial(t *testing.T, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/ws/" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestVoiceRequest(t *testing.T) {
	s := newTestServer(t, &fakeSpeaker{})
	conn := s.dial(t, "session-1")

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "voice_request", "text": "Hello world!", "character_id": "hero",
	}))

	msg := readJSON(t, conn)
	assert.Equal(t, "voice_response", msg["type"])
	assert.Equal(t, "http://localhost:8000/static/audio/hero.wav", msg["audio_url"])
	assert.Equal(t, "hero", msg["character_id"])
	assert.Equal(t, "Hello world!", msg["text"])
	emo := msg["emotion"].(map[string]any)
	assert.Equal(t, "happy", emo["primary_emotion"])
}

func TestVoiceRequestErrors(t *testing.T) {
	s := newTestServer(t, &fakeSpeaker{err: errors.New("boom")})
	conn := s.dial(t, "session-2")

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "voice_request", "text": "   "}))
	msg := readJSON(t, conn)
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "Text is required", msg["message"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "voice_request", "text": "Hi"}))
	msg = readJSON(t, conn)
	assert.Equal(t, "Voice generation failed: boom", msg["message"])
}

func TestInvalidJSONAndUnknownType(t *testing.T) {
	s := newTestServer(t, &fakeSpeaker{})
	conn := s.dial(t, "session-3")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	msg := readJSON(t, conn)
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "Invalid JSON format", msg["message"])

	// неизвестный тип игнорируется, следующий ответ относится к character_switch
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "dance"}))
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "character_switch", "character_id": "villain"}))

	msg = readJSON(t, conn)
	assert.Equal(t, "character_switched", msg["type"])
	character := msg["character"].(map[string]any)
	assert.Equal(t, "Dr. Shadow", character["name"])

	s.recorder.mu.Lock()
	defer s.recorder.mu.Unlock()
	assert.Equal(t, []string{"invalid", "unknown", "character_switch"}, s.recorder.messages)
}

func TestManagerSendAndBroadcast(t *testing.T) {
	s := newTestServer(t, &fakeSpeaker{})
	a := s.dial(t, "a")
	b := s.dial(t, "b")

	require.Eventually(t, func() bool { return s.manager.Count() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, s.recorder.Active())

	require.NoError(t, s.manager.SendPersonal("a", map[string]string{"type": "ping"}))
	assert.Equal(t, "ping", readJSON(t, a)["type"])
	assert.ErrorIs(t, s.manager.SendPersonal("missing", map[string]string{}), ErrSessionNotConnected)

	s.manager.Broadcast(map[string]string{"type": "announce"})
	assert.Equal(t, "announce", readJSON(t, a)["type"])
	assert.Equal(t, "announce", readJSON(t, b)["type"])

	require.NoError(t, b.Close())
	require.Eventually(t, func() bool { return s.manager.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, s.recorder.Active())

	s.manager.CloseAll()
	assert.Equal(t, 0, s.manager.Count())
}

func TestReconnectReplacesSession(t *testing.T) {
	s := newTestServer(t, &fakeSpeaker{})
	first := s.dial(t, "same")
	require.Eventually(t, func() bool { return s.manager.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	second := s.dial(t, "same")

	// старое соединение закрывается сервером
	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := first.ReadMessage()
	assert.Error(t, err)

	require.NoError(t, second.WriteJSON(map[string]any{"type": "character_switch"}))
	assert.Equal(t, "character_switched", readJSON(t, second)["type"])
	assert.Equal(t, 1, s.manager.Count())
	assert.Equal(t, 1, s.recorder.Active())
}

func TestOriginCheck(t *testing.T) {
	s := newTestServer(t, &fakeSpeaker{})
	url := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/ws/o"

	header := http.Header{"Origin": []string{"http://evil.test"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header = http.Header{"Origin": []string{"http://allowed.test"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	_ = conn.Close()
}

func TestOriginAllowed(t *testing.T) {
	assert.True(t, originAllowed("", nil))
	assert.True(t, originAllowed("http://x", []string{"*"}))
	assert.False(t, originAllowed("http://x", []string{"http://y"}))
}

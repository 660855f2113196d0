package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voiceforge/internal/character"
	"voiceforge/internal/emotion"
	"voiceforge/internal/store"
	"voiceforge/internal/studio"
	"voiceforge/internal/tts"
	"voiceforge/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStudio struct {
	speakErr error
	lastChar string
}

func (f *fakeStudio) Analyze(text string) emotion.AnalysisResult {
	return emotion.AnalysisResult{PrimaryEmotion: emotion.Happy, Confidence: 0.9}
}

func (f *fakeStudio) Speak(ctx context.Context, text, characterID string) (*studio.SpeechOutcome, error) {
	if strings.TrimSpace(text) == "" {
		return nil, tts.ErrEmptyText
	}
	if f.speakErr != nil {
		return nil, f.speakErr
	}
	f.lastChar = characterID
	url := "/static/audio/a.wav"
	return &studio.SpeechOutcome{AudioURL: &url, CharacterID: characterID, Text: text, SessionID: "s-1"}, nil
}

type fakeCharacters struct {
	lastDialogue models.GenerateDialogueRequest
}

func (f *fakeCharacters) ListCharacters(ctx context.Context) []models.CharacterSummary {
	return []models.CharacterSummary{{ID: "hero", Name: "Alex Hero"}}
}

func (f *fakeCharacters) GetProfile(ctx context.Context, id string) *models.Character {
	return &models.Character{ID: id, Name: "Alex Hero"}
}

func (f *fakeCharacters) Exists(ctx context.Context, id string) bool {
	return id == "hero"
}

func (f *fakeCharacters) CreateCharacter(ctx context.Context, req models.CreateCharacterRequest) (*models.Character, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, character.ErrNameRequired
	}
	return &models.Character{ID: models.Slugify(req.Name), Name: req.Name}, nil
}

func (f *fakeCharacters) GenerateDialogue(ctx context.Context, req models.GenerateDialogueRequest) string {
	f.lastDialogue = req
	return "Justice prevails!"
}

func (f *fakeCharacters) AnalyzeDelivery(ctx context.Context, req models.AnalyzeDeliveryRequest) models.DeliveryAnalysis {
	return models.DeliveryAnalysis{Emotion: "neutral", Pacing: "medium"}
}

type fakeVoices struct{}

func (fakeVoices) ListVoices() []models.Voice {
	return []models.Voice{{ID: "hero"}, {ID: "villain"}, {ID: "narrator"}}
}

type fakeSessions struct {
	limit int
	err   error
}

func (f *fakeSessions) GetBySessionID(ctx context.Context, id string) (*models.VoiceSession, error) {
	if id != "s-1" {
		return nil, store.ErrSessionNotFound
	}
	return &models.VoiceSession{SessionID: id, CharacterID: "hero"}, nil
}

func (f *fakeSessions) ListRecent(ctx context.Context, limit int) ([]*models.VoiceSession, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return []*models.VoiceSession{{SessionID: "s-1"}}, nil
}

func newTestServer(t *testing.T, deps Dependencies) *httptest.Server {
	t.Helper()
	if deps.Studio == nil {
		deps.Studio = &fakeStudio{}
	}
	if deps.Characters == nil {
		deps.Characters = &fakeCharacters{}
	}
	if deps.Voices == nil {
		deps.Voices = fakeVoices{}
	}
	srv := httptest.NewServer(NewServer(deps, zap.NewNop()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestRootAndVoices(t *testing.T) {
	srv := newTestServer(t, Dependencies{})

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "VoiceForge API is running!", body["message"])
	assert.Equal(t, Version, body["version"])

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/v1/voices", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["voices"], 3)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/unknown", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCharacterEndpoints(t *testing.T) {
	srv := newTestServer(t, Dependencies{})

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/characters", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["characters"], 1)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/v1/characters/hero", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Alex Hero", body["name"])

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/v1/characters/ghost", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Character not found", body["detail"])

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/characters", `{"name":"Space Pirate","description":"rogue"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "space_pirate", body["id"])

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/characters", `{"name":"  "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyzeEmotion(t *testing.T) {
	srv := newTestServer(t, Dependencies{})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/analyze-emotion", `{"text":"I am so happy!"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "happy", body["primary_emotion"])

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/analyze-emotion", `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Text is required", body["detail"])

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/analyze-emotion", `{"text":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/analyze-emotion", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateSpeech(t *testing.T) {
	st := &fakeStudio{}
	srv := newTestServer(t, Dependencies{Studio: st})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/generate-speech", `{"text":"Hello there"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/static/audio/a.wav", body["audio_url"])
	assert.Equal(t, "narrator", st.lastChar, "по умолчанию используется рассказчик")

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/generate-speech", `{"text":"   ","character_id":"hero"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	st.speakErr = errors.New("boom")
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/generate-speech", `{"text":"Hi","character_id":"hero"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestGenerateDialogueDefaults(t *testing.T) {
	chars := &fakeCharacters{}
	srv := newTestServer(t, Dependencies{Characters: chars})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/generate-dialogue", `{"character_id":"hero"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Justice prevails!", body["dialogue"])
	assert.Equal(t, "hero", body["character_id"])
	assert.Equal(t, models.DefaultSituation, chars.lastDialogue.Situation)
	assert.Equal(t, models.DefaultEmotion, chars.lastDialogue.Emotion)
}

func TestAnalyzeDelivery(t *testing.T) {
	srv := newTestServer(t, Dependencies{})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/analyze-delivery", `{"text":"Go now","character_id":"hero"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "medium", body["pacing"])

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/analyze-delivery", `{"text":"  "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionEndpoints(t *testing.T) {
	// База выключена
	srv := newTestServer(t, Dependencies{})
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/v1/sessions", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	sessions := &fakeSessions{}
	srv = newTestServer(t, Dependencies{Sessions: sessions})

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/sessions?limit=5", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["sessions"], 1)
	assert.Equal(t, 5, sessions.limit)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/sessions?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/v1/sessions/s-1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hero", body["character_id"])

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/sessions/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	sessions.err = errors.New("db down")
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/sessions", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, Dependencies{AllowedOrigins: []string{"http://localhost:3000"}})

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/analyze-emotion", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))

	req.Header.Set("Origin", "http://evil.test")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestStaticAndOptionalRoutes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "audio"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "audio", "x.wav"), []byte("RIFF"), 0o644))

	srv := newTestServer(t, Dependencies{
		StaticDir: dir,
		Health: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	})

	resp, err := http.Get(srv.URL + "/static/audio/x.wav")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRecovererHandlesPanic(t *testing.T) {
	s := NewServer(Dependencies{}, zap.NewNop())
	h := s.recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

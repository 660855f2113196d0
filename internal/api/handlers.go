package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"voiceforge/internal/character"
	"voiceforge/internal/store"
	"voiceforge/internal/tts"
	"voiceforge/pkg/models"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// errorResponse тело ответа с ошибкой
type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "VoiceForge API is running!",
		"version": Version,
	})
}

func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"voices": s.deps.Voices.ListVoices()})
}

func (s *Server) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"characters": s.deps.Characters.ListCharacters(r.Context())})
}

func (s *Server) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.deps.Characters.Exists(r.Context(), id) {
		writeError(w, http.StatusNotFound, "Character not found")
		return
	}
	s.writeJSON(w, http.StatusOK, s.deps.Characters.GetProfile(r.Context(), id))
}

func (s *Server) handleCreateCharacter(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCharacterRequest
	if !s.decode(w, r, &req) {
		return
	}

	c, err := s.deps.Characters.CreateCharacter(r.Context(), req)
	if errors.Is(err, character.ErrNameRequired) {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if err != nil {
		s.logger.Error("ошибка создания персонажа", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create character")
		return
	}

	s.writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleAnalyzeEmotion(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeEmotionRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	s.writeJSON(w, http.StatusOK, s.deps.Studio.Analyze(req.Text))
}

func (s *Server) handleGenerateSpeech(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateSpeechRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.Normalize()

	outcome, err := s.deps.Studio.Speak(r.Context(), req.Text, req.CharacterID)
	if errors.Is(err, tts.ErrEmptyText) {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}
	if err != nil {
		s.logger.Error("ошибка генерации речи", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Speech generation failed")
		return
	}

	s.writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleGenerateDialogue(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateDialogueRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.Normalize()

	dialogue := s.deps.Characters.GenerateDialogue(r.Context(), req)
	s.writeJSON(w, http.StatusOK, models.GenerateDialogueResponse{
		Dialogue:    dialogue,
		CharacterID: req.CharacterID,
	})
}

func (s *Server) handleAnalyzeDelivery(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeDeliveryRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.Normalize()
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	s.writeJSON(w, http.StatusOK, s.deps.Characters.AnalyzeDelivery(r.Context(), req))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if s.deps.Sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "Database is disabled")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	sessions, err := s.deps.Sessions.ListRecent(r.Context(), limit)
	if err != nil {
		s.logger.Error("ошибка получения голосовых сессий", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load sessions")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	if s.deps.Sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "Database is disabled")
		return
	}

	session, err := s.deps.Sessions.GetBySessionID(r.Context(), r.PathValue("session_id"))
	if errors.Is(err, store.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		s.logger.Error("ошибка получения голосовой сессии", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load session")
		return
	}

	s.writeJSON(w, http.StatusOK, session)
}

// decode читает JSON тело запроса; при ошибке сам пишет 400
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "Request body is required")
		default:
			s.logger.Debug("некорректный JSON в запросе", zap.String("path", r.URL.Path), zap.Error(err))
			writeError(w, http.StatusBadRequest, "Invalid JSON: "+strings.TrimPrefix(err.Error(), "json: "))
		}
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("ошибка записи ответа", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Detail: detail})
}

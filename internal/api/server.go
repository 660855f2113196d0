package api

import (
	"context"
	"net/http"

	"voiceforge/internal/emotion"
	"voiceforge/internal/studio"
	"voiceforge/pkg/models"

	"go.uber.org/zap"
)

// Version версия API в ответе корневого маршрута
const Version = "1.0.0"

// Studio анализ эмоций и озвучка
type Studio interface {
	Analyze(text string) emotion.AnalysisResult
	Speak(ctx context.Context, text, characterID string) (*studio.SpeechOutcome, error)
}

// Characters профили персонажей и генерация текста
type Characters interface {
	ListCharacters(ctx context.Context) []models.CharacterSummary
	GetProfile(ctx context.Context, characterID string) *models.Character
	Exists(ctx context.Context, characterID string) bool
	CreateCharacter(ctx context.Context, req models.CreateCharacterRequest) (*models.Character, error)
	GenerateDialogue(ctx context.Context, req models.GenerateDialogueRequest) string
	AnalyzeDelivery(ctx context.Context, req models.AnalyzeDeliveryRequest) models.DeliveryAnalysis
}

// VoiceLister список голосов синтеза
type VoiceLister interface {
	ListVoices() []models.Voice
}

// SessionLister чтение журнала голосовых сессий
type SessionLister interface {
	GetBySessionID(ctx context.Context, sessionID string) (*models.VoiceSession, error)
	ListRecent(ctx context.Context, limit int) ([]*models.VoiceSession, error)
}

// Dependencies сервисы, которые обслуживает HTTP слой
type Dependencies struct {
	Studio     Studio
	Characters Characters
	Voices     VoiceLister
	// Sessions может быть nil, если база выключена
	Sessions SessionLister

	Health    http.HandlerFunc
	Metrics   http.Handler
	WebSocket http.Handler

	StaticDir      string
	AllowedOrigins []string
}

// Server HTTP API студии
type Server struct {
	deps   Dependencies
	logger *zap.Logger
}

// NewServer создает HTTP API
func NewServer(deps Dependencies, logger *zap.Logger) *Server {
	return &Server{
		deps:   deps,
		logger: logger,
	}
}

// Handler собирает маршруты и middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	if s.deps.Health != nil {
		mux.HandleFunc("GET /health", s.deps.Health)
	}
	if s.deps.Metrics != nil {
		mux.Handle("GET /metrics", s.deps.Metrics)
	}

	mux.HandleFunc("GET /api/v1/voices", s.handleVoices)
	mux.HandleFunc("GET /api/v1/characters", s.handleListCharacters)
	mux.HandleFunc("GET /api/v1/characters/{id}", s.handleGetCharacter)
	mux.HandleFunc("POST /api/v1/characters", s.handleCreateCharacter)
	mux.HandleFunc("POST /api/v1/analyze-emotion", s.handleAnalyzeEmotion)
	mux.HandleFunc("POST /api/v1/generate-speech", s.handleGenerateSpeech)
	mux.HandleFunc("POST /api/v1/generate-dialogue", s.handleGenerateDialogue)
	mux.HandleFunc("POST /api/v1/analyze-delivery", s.handleAnalyzeDelivery)
	mux.HandleFunc("GET /api/v1/sessions", s.handleListSessions)
	mux.HandleFunc("GET /api/v1/sessions/{session_id}", s.handleGetSession)

	if s.deps.StaticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(s.deps.StaticDir))))
	}
	if s.deps.WebSocket != nil {
		mux.Handle("GET /ws/{session_id}", s.deps.WebSocket)
	}

	return s.recoverer(s.logRequests(s.cors(mux)))
}

package studio

import (
	"context"
	"errors"
	"strings"

	"voiceforge/internal/emotion"
	"voiceforge/internal/tts"
	"voiceforge/pkg/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Analyzer определяет эмоцию текста
type Analyzer interface {
	Analyze(text string) emotion.AnalysisResult
}

// Speaker озвучивает текст по результату анализа
type Speaker interface {
	GenerateWithEmotion(ctx context.Context, text, voiceID string, analysis emotion.AnalysisResult) (*tts.SpeechResult, error)
}

// VoiceResolver выбирает голос синтеза для персонажа
type VoiceResolver interface {
	VoiceFor(ctx context.Context, characterID string) string
}

// SessionWriter сохраняет сгенерированные реплики
type SessionWriter interface {
	Create(ctx context.Context, session *models.VoiceSession) error
}

// SpeechOutcome ответ на запрос озвучки
type SpeechOutcome struct {
	AudioURL    *string                `json:"audio_url"`
	Emotion     emotion.AnalysisResult `json:"emotion"`
	CharacterID string                 `json:"character_id"`
	Text        string                 `json:"text"`
	SessionID   string                 `json:"session_id,omitempty"`
}

// Service связывает анализ эмоции, синтез и журнал сессий
type Service struct {
	analyzer Analyzer
	speaker  Speaker
	voices   VoiceResolver
	sessions SessionWriter
	logger   *zap.Logger
}

// NewService создает сервис озвучки. sessions может быть nil, если база выключена
func NewService(analyzer Analyzer, speaker Speaker, voices VoiceResolver, sessions SessionWriter, logger *zap.Logger) *Service {
	return &Service{
		analyzer: analyzer,
		speaker:  speaker,
		voices:   voices,
		sessions: sessions,
		logger:   logger,
	}
}

// Analyze возвращает эмоциональный разбор текста
func (s *Service) Analyze(text string) emotion.AnalysisResult {
	return s.analyzer.Analyze(text)
}

// Speak анализирует текст и озвучивает его голосом персонажа.
// Ошибка синтеза не прерывает запрос: audio_url в ответе будет null
func (s *Service) Speak(ctx context.Context, text, characterID string) (*SpeechOutcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, tts.ErrEmptyText
	}
	if strings.TrimSpace(characterID) == "" {
		characterID = models.CharacterNarrator
	}

	analysis := s.analyzer.Analyze(text)
	outcome := &SpeechOutcome{
		Emotion:     analysis,
		CharacterID: characterID,
		Text:        text,
	}

	voiceID := s.voices.VoiceFor(ctx, characterID)
	result, err := s.speaker.GenerateWithEmotion(ctx, text, voiceID, analysis)
	switch {
	case err == nil:
		outcome.AudioURL = &result.URL
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	default:
		s.logger.Error("ошибка генерации речи",
			zap.String("character_id", characterID),
			zap.String("voice_id", voiceID),
			zap.Error(err))
	}

	s.record(ctx, outcome, result)

	s.logger.Info("🎵 реплика озвучена",
		zap.String("character_id", characterID),
		zap.String("emotion", analysis.PrimaryEmotion.String()),
		zap.Float64("confidence", analysis.Confidence),
		zap.Bool("has_audio", outcome.AudioURL != nil))

	return outcome, nil
}

func (s *Service) record(ctx context.Context, outcome *SpeechOutcome, result *tts.SpeechResult) {
	if s.sessions == nil {
		return
	}

	session := &models.VoiceSession{
		SessionID:   uuid.NewString(),
		CharacterID: outcome.CharacterID,
		Text:        outcome.Text,
		Emotion:     outcome.Emotion.PrimaryEmotion.String(),
		Confidence:  outcome.Emotion.Confidence,
		AudioURL:    outcome.AudioURL,
	}
	if result != nil {
		session.DurationSeconds = result.DurationSeconds
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		s.logger.Warn("не удалось сохранить голосовую сессию", zap.Error(err))
		return
	}
	outcome.SessionID = session.SessionID
}

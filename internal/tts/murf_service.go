package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Ограничения Murf API на относительные rate и pitch
const (
	murfMaxShift = 50
	murfMaxChars = 3000
)

// MurfService предоставляет функциональность Text-to-Speech через Murf API
type MurfService struct {
	logger     *zap.Logger
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewMurfService создает новый Murf TTS сервис
func NewMurfService(logger *zap.Logger, apiKey, baseURL string, timeout time.Duration) *MurfService {
	return &MurfService{
		logger:  logger,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *MurfService) Name() string { return "murf" }

type murfRequest struct {
	VoiceID string `json:"voiceId"`
	Text    string `json:"text"`
	Rate    int    `json:"rate"`
	Pitch   int    `json:"pitch"`
	Format  string `json:"format"`
	Style   string `json:"style,omitempty"`
}

type murfResponse struct {
	AudioFile            string  `json:"audioFile"`
	AudioLengthInSeconds float64 `json:"audioLengthInSeconds"`
	ErrorMessage         string  `json:"errorMessage"`
}

// murfShift переводит множитель в процентный сдвиг Murf
func murfShift(multiplier float64) int {
	shift := int(math.Round((multiplier - 1) * 100))
	return max(-murfMaxShift, min(murfMaxShift, shift))
}

// murfStyle подбирает стиль голоса под эмоцию
func murfStyle(emotion string) string {
	switch emotion {
	case "happy", "excited":
		return "Cheerful"
	case "sad":
		return "Sad"
	case "angry":
		return "Angry"
	case "fear":
		return "Terrified"
	case "calm":
		return "Calm"
	}
	return ""
}

// SynthesizeSpeech преобразует текст в аудио через Murf
func (s *MurfService) SynthesizeSpeech(ctx context.Context, req SynthesisRequest) ([]byte, error) {
	text := req.Text
	if runes := []rune(text); len(runes) > murfMaxChars {
		text = string(runes[:murfMaxChars])
	}

	s.logger.Info("🎵 генерируем аудио через Murf",
		zap.String("voice", req.Voice.MurfVoice),
		zap.String("emotion", req.Emotion),
		zap.Int("text_length", len(text)))

	payload := murfRequest{
		VoiceID: req.Voice.MurfVoice,
		Text:    text,
		Rate:    murfShift(req.RateRatio()),
		Pitch:   murfShift(req.Pitch),
		Format:  "WAV",
		Style:   murfStyle(req.Emotion),
	}

	audioURL, err := s.generateAudio(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации аудио: %w", err)
	}

	// Скачиваем аудио файл
	audioData, err := s.downloadAudioFile(ctx, audioURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка скачивания аудио: %w", err)
	}

	s.logger.Info("🎵 аудио успешно сгенерировано",
		zap.String("voice", req.Voice.ID),
		zap.Int("audio_size", len(audioData)))

	return audioData, nil
}

// generateAudio отправляет запрос к Murf и возвращает ссылку на файл
func (s *MurfService) generateAudio(ctx context.Context, payload murfRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/speech/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Murf вернул ошибку %d: %s", resp.StatusCode, string(responseBody))
	}

	var response murfResponse
	if err := json.Unmarshal(responseBody, &response); err != nil {
		return "", fmt.Errorf("ошибка парсинга ответа: %w", err)
	}

	if response.AudioFile == "" {
		return "", fmt.Errorf("Murf не вернул ссылку на аудио: %s", response.ErrorMessage)
	}

	return response.AudioFile, nil
}

// downloadAudioFile скачивает аудио файл по URL
func (s *MurfService) downloadAudioFile(ctx context.Context, audioURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса для скачивания: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка скачивания аудио файла: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ошибка скачивания аудио: статус %d", resp.StatusCode)
	}

	return readAudio(resp.Body)
}

package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// PiperService предоставляет функциональность Text-to-Speech через Piper TTS API
type PiperService struct {
	logger  *zap.Logger
	baseURL string
	client  *http.Client
}

// NewPiperService создает новый Piper TTS сервис
func NewPiperService(logger *zap.Logger, baseURL string, timeout time.Duration) *PiperService {
	return &PiperService{
		logger:  logger,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *PiperService) Name() string { return "piper" }

// SynthesizeSpeech преобразует текст в аудио через Piper TTS
func (s *PiperService) SynthesizeSpeech(ctx context.Context, req SynthesisRequest) ([]byte, error) {
	s.logger.Info("🎵 генерируем аудио через Piper TTS",
		zap.String("voice", req.Voice.ID),
		zap.String("emotion", req.Emotion),
		zap.Int("text_length", len(req.Text)))

	audioData, err := s.generateAudio(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации аудио: %w", err)
	}

	s.logger.Info("🎵 аудио успешно сгенерировано",
		zap.String("voice", req.Voice.ID),
		zap.Int("audio_size", len(audioData)))

	return audioData, nil
}

// lengthScale переводит скорость в параметр Piper: больше 1 - медленнее
func lengthScale(req SynthesisRequest) float64 {
	ratio := req.RateRatio()
	if ratio <= 0 {
		return 1
	}
	return 1 / ratio
}

// generateAudio отправляет запрос к Piper TTS API и получает аудио
func (s *PiperService) generateAudio(ctx context.Context, req SynthesisRequest) ([]byte, error) {
	url := fmt.Sprintf("%s/synthesize-raw", s.baseURL)

	// Создаем multipart form data
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	_ = writer.WriteField("text", req.Text)
	_ = writer.WriteField("length_scale", strconv.FormatFloat(lengthScale(req), 'f', 3, 64))
	// Piper не умеет менять высоту, pitch игнорируется

	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("неожиданный статус от Piper TTS: %d, тело: %s", resp.StatusCode, respBody)
	}

	audioData, err := readAudio(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(audioData) == 0 {
		return nil, fmt.Errorf("Piper TTS вернул пустое аудио")
	}

	return audioData, nil
}

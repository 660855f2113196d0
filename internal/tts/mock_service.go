package tts

import (
	"context"

	"voiceforge/internal/audio"
)

// MockService генерирует тональный сигнал вместо речи, когда провайдер не настроен
type MockService struct{}

func NewMockService() *MockService {
	return &MockService{}
}

func (s *MockService) Name() string { return "mock" }

func (s *MockService) SynthesizeSpeech(ctx context.Context, req SynthesisRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return audio.GenerateTone(audio.ToneDuration(req.Text)), nil
}

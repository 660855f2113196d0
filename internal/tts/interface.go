package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var (
	ErrEmptyText     = errors.New("текст для синтеза пуст")
	ErrAudioTooLarge = errors.New("аудио превышает допустимый размер")
)

// maxAudioBytes ограничивает аудио, получаемое от внешних сервисов
var maxAudioBytes int64 = 32 << 20

// readAudio читает тело ответа провайдера, но не больше maxAudioBytes
func readAudio(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxAudioBytes+1))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения аудио данных: %w", err)
	}
	if int64(len(data)) > maxAudioBytes {
		return nil, fmt.Errorf("%w: больше %d байт", ErrAudioTooLarge, maxAudioBytes)
	}
	return data, nil
}

// SpeechRequest параметры реплики: текст, персона, эмоция и модификаторы голоса
type SpeechRequest struct {
	Text    string
	VoiceID string
	Emotion string
	Speed   float64 // множитель к базовой скорости персоны
	Pitch   float64 // множитель к базовой высоте персоны
}

// SynthesisRequest запрос к провайдеру с уже рассчитанными параметрами голоса
type SynthesisRequest struct {
	Text    string
	Voice   Voice
	Emotion string
	Rate    float64 // слов в минуту
	Pitch   float64
}

// RateRatio возвращает отношение скорости к нейтральной
func (r SynthesisRequest) RateRatio() float64 {
	return r.Rate / NeutralRate
}

// TTSService представляет интерфейс для Text-to-Speech провайдера
type TTSService interface {
	// Name возвращает имя провайдера для логов и метрик
	Name() string
	// SynthesizeSpeech преобразует текст в аудио
	SynthesizeSpeech(ctx context.Context, req SynthesisRequest) ([]byte, error)
}

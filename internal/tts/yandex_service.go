package tts

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"

	ytts "github.com/yandex-cloud/go-genproto/yandex/cloud/ai/tts/v3"
)

const (
	YandexTTSEndpoint = "tts.api.cloud.yandex.net:443"

	yandexModel = "general"
	// сдвиг высоты в Гц на единицу множителя
	yandexPitchHz = 500.0
)

// YandexService синтезирует речь через Yandex SpeechKit v3 по gRPC
type YandexService struct {
	logger   *zap.Logger
	client   ytts.SynthesizerClient
	conn     *grpc.ClientConn
	apiKey   string
	folderID string
}

// NewYandexService подключается к SpeechKit
func NewYandexService(logger *zap.Logger, apiKey, folderID string) (*YandexService, error) {
	creds := credentials.NewTLS(&tls.Config{})

	conn, err := grpc.NewClient(YandexTTSEndpoint, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к Yandex TTS: %w", err)
	}

	s := newYandexServiceWithClient(logger, ytts.NewSynthesizerClient(conn), apiKey, folderID)
	s.conn = conn
	return s, nil
}

func newYandexServiceWithClient(logger *zap.Logger, client ytts.SynthesizerClient, apiKey, folderID string) *YandexService {
	return &YandexService{
		logger:   logger,
		client:   client,
		apiKey:   apiKey,
		folderID: folderID,
	}
}

func (s *YandexService) Name() string { return "yandex" }

// SynthesizeSpeech собирает потоковый ответ SpeechKit в один WAV
func (s *YandexService) SynthesizeSpeech(ctx context.Context, req SynthesisRequest) ([]byte, error) {
	ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Api-Key "+s.apiKey)
	ctx = metadata.AppendToOutgoingContext(ctx, "x-folder-id", s.folderID)

	s.logger.Info("🎵 генерируем аудио через Yandex SpeechKit",
		zap.String("voice", req.Voice.YandexVoice),
		zap.String("emotion", req.Emotion),
		zap.Int("text_length", len(req.Text)))

	stream, err := s.client.UtteranceSynthesis(ctx, buildYandexRequest(req))
	if err != nil {
		return nil, fmt.Errorf("ошибка запуска синтеза: %w", err)
	}

	var buf bytes.Buffer
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ошибка получения аудио: %w", err)
		}
		if chunk := resp.GetAudioChunk(); chunk != nil {
			buf.Write(chunk.GetData())
		}
	}

	if buf.Len() == 0 {
		return nil, fmt.Errorf("Yandex TTS вернул пустое аудио")
	}

	return buf.Bytes(), nil
}

// yandexRole подбирает амплуа голоса под эмоцию
func yandexRole(emotion string) string {
	switch emotion {
	case "happy", "excited", "surprised":
		return "good"
	case "angry":
		return "evil"
	}
	return "neutral"
}

func buildYandexRequest(req SynthesisRequest) *ytts.UtteranceSynthesisRequest {
	r := &ytts.UtteranceSynthesisRequest{}
	r.SetModel(yandexModel)
	r.SetText(req.Text)

	voiceHint := &ytts.Hints{}
	voiceHint.SetVoice(req.Voice.YandexVoice)

	speedHint := &ytts.Hints{}
	speedHint.SetSpeed(max(0.1, min(3.0, req.RateRatio())))

	pitchHint := &ytts.Hints{}
	pitchHint.SetPitchShift(max(-1000, min(1000, (req.Pitch-1)*yandexPitchHz)))

	roleHint := &ytts.Hints{}
	roleHint.SetRole(yandexRole(req.Emotion))

	r.SetHints([]*ytts.Hints{voiceHint, speedHint, pitchHint, roleHint})

	audioSpec := &ytts.AudioFormatOptions{}
	containerAudio := &ytts.ContainerAudio{}
	containerAudio.SetContainerAudioType(ytts.ContainerAudio_WAV)
	audioSpec.SetContainerAudio(containerAudio)
	r.SetOutputAudioSpec(audioSpec)

	r.SetLoudnessNormalizationType(ytts.UtteranceSynthesisRequest_LUFS)

	return r
}

// Close закрывает gRPC соединение
func (s *YandexService) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

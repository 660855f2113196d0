package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"voiceforge/internal/audio"
	"voiceforge/internal/emotion"
	"voiceforge/pkg/models"
)

// Recorder собирает статистику синтеза
type Recorder interface {
	RecordSpeechGeneration(provider string, success bool, duration time.Duration)
}

// SpeechResult результат генерации реплики
type SpeechResult struct {
	URL             string
	FileName        string
	Provider        string
	DurationSeconds float64
	// Placeholder означает, что файл не записан и URL указывает на заглушку
	Placeholder bool
}

// VoiceEngine синтезирует реплики персонажей и раскладывает аудио по статике
type VoiceEngine struct {
	provider  TTSService
	fallback  TTSService
	audioDir  string
	serverURL string
	recorder  Recorder
	logger    *zap.Logger
}

// VoiceEngineOption настраивает VoiceEngine
type VoiceEngineOption func(*VoiceEngine)

// WithRecorder подключает сбор метрик
func WithRecorder(r Recorder) VoiceEngineOption {
	return func(e *VoiceEngine) {
		e.recorder = r
	}
}

// WithFallback заменяет резервный провайдер
func WithFallback(p TTSService) VoiceEngineOption {
	return func(e *VoiceEngine) {
		e.fallback = p
	}
}

// NewVoiceEngine создает движок синтеза и каталог для аудио
func NewVoiceEngine(provider TTSService, audioDir, serverURL string, logger *zap.Logger, opts ...VoiceEngineOption) (*VoiceEngine, error) {
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога аудио: %w", err)
	}

	e := &VoiceEngine{
		provider:  provider,
		fallback:  NewMockService(),
		audioDir:  audioDir,
		serverURL: strings.TrimRight(serverURL, "/"),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.provider == nil {
		e.provider = e.fallback
	}

	logger.Info("движок синтеза речи инициализирован",
		zap.String("provider", e.provider.Name()),
		zap.String("audio_dir", audioDir))

	return e, nil
}

// ProviderName возвращает имя основного провайдера
func (e *VoiceEngine) ProviderName() string {
	return e.provider.Name()
}

// ListVoices возвращает доступные голосовые персоны
func (e *VoiceEngine) ListVoices() []models.Voice {
	return ListVoices()
}

// AudioURL строит публичный URL файла
func (e *VoiceEngine) AudioURL(fileName string) string {
	return fmt.Sprintf("%s/static/audio/%s", e.serverURL, fileName)
}

// GenerateWithEmotion озвучивает текст с модуляцией по результату анализа эмоции
func (e *VoiceEngine) GenerateWithEmotion(ctx context.Context, text, characterID string, analysis emotion.AnalysisResult) (*SpeechResult, error) {
	return e.Generate(ctx, SpeechRequest{
		Text:    text,
		VoiceID: characterID,
		Emotion: analysis.PrimaryEmotion.String(),
		Speed:   analysis.VoiceModifiers.SpeedModifier,
		Pitch:   analysis.VoiceModifiers.PitchModifier,
	})
}

// Generate синтезирует реплику и сохраняет ее в каталог аудио.
// Сбой провайдера переключает на резервный; если и он не справился, возвращается URL заглушки.
// При отмене ctx возвращается ошибка контекста
func (e *VoiceEngine) Generate(ctx context.Context, req SpeechRequest) (*SpeechResult, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyText
	}

	voice, _ := LookupVoice(req.VoiceID)
	// неизвестная метка превращается в neutral и не попадает в имя файла
	emo, _ := emotion.Parse(req.Emotion)

	synth := SynthesisRequest{
		Text:    text,
		Voice:   voice,
		Emotion: emo.String(),
		Rate:    float64(voice.BaseSpeed) * positiveOr(req.Speed, 1),
		Pitch:   voice.BasePitch * positiveOr(req.Pitch, 1),
	}

	for _, provider := range e.providers() {
		result, err := e.synthesizeWith(ctx, provider, synth)
		if err == nil {
			return result, nil
		}
		e.logger.Warn("ошибка синтеза речи",
			zap.String("provider", provider.Name()),
			zap.String("voice", voice.ID),
			zap.Error(err))
	}

	// отмененный запрос не получает заглушку: вызывающий сам решит, что ответить
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	placeholder := fmt.Sprintf("mock_generated_%s.wav", voice.ID)
	return &SpeechResult{
		URL:         e.AudioURL(placeholder),
		FileName:    placeholder,
		Provider:    e.fallback.Name(),
		Placeholder: true,
	}, nil
}

func (e *VoiceEngine) providers() []TTSService {
	if e.provider == e.fallback {
		return []TTSService{e.provider}
	}
	return []TTSService{e.provider, e.fallback}
}

func (e *VoiceEngine) synthesizeWith(ctx context.Context, provider TTSService, req SynthesisRequest) (*SpeechResult, error) {
	start := time.Now()
	data, err := provider.SynthesizeSpeech(ctx, req)
	e.record(provider.Name(), err == nil, time.Since(start))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("провайдер %s вернул пустое аудио", provider.Name())
	}

	fileName := fmt.Sprintf("%s_%s_%s%s", req.Voice.ID, req.Emotion, fileID(), audio.Extension(data))
	if err := os.WriteFile(filepath.Join(e.audioDir, fileName), data, 0o644); err != nil {
		return nil, fmt.Errorf("ошибка записи аудио файла: %w", err)
	}

	duration, err := audio.Duration(data)
	if err != nil {
		e.logger.Debug("не удалось определить длительность аудио",
			zap.String("file", fileName),
			zap.Error(err))
	}

	e.logger.Info("аудио сохранено",
		zap.String("provider", provider.Name()),
		zap.String("file", fileName),
		zap.Int("size", len(data)),
		zap.Float64("duration", duration))

	return &SpeechResult{
		URL:             e.AudioURL(fileName),
		FileName:        fileName,
		Provider:        provider.Name(),
		DurationSeconds: duration,
	}, nil
}

// CleanupOldFiles оставляет maxFiles самых новых аудио файлов и возвращает число удаленных
func (e *VoiceEngine) CleanupOldFiles(maxFiles int) (int, error) {
	return CleanupAudioDir(e.audioDir, maxFiles, false, e.logger)
}

// CleanupAudioDir удаляет самые старые аудио файлы сверх лимита.
// При dryRun только считает файлы к удалению
func CleanupAudioDir(dir string, maxFiles int, dryRun bool, logger *zap.Logger) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения каталога аудио: %w", err)
	}

	type audioFile struct {
		path    string
		modTime time.Time
	}

	var files []audioFile
	for _, entry := range entries {
		if entry.IsDir() || !audio.IsAudioFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, audioFile{path: filepath.Join(dir, entry.Name()), modTime: info.ModTime()})
	}

	if len(files) <= maxFiles {
		return 0, nil
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	removed := 0
	for _, f := range files[:len(files)-max(maxFiles, 0)] {
		if dryRun {
			logger.Info("будет удален аудио файл", zap.String("file", f.path))
			removed++
			continue
		}
		if err := os.Remove(f.path); err != nil {
			logger.Error("ошибка удаления аудио файла", zap.String("file", f.path), zap.Error(err))
			continue
		}
		logger.Info("удален старый аудио файл", zap.String("file", f.path))
		removed++
	}

	return removed, nil
}

func (e *VoiceEngine) record(provider string, success bool, d time.Duration) {
	if e.recorder != nil {
		e.recorder.RecordSpeechGeneration(provider, success, d)
	}
}

// fileID первые 12 hex символов uuid4
func fileID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func positiveOr(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

package character

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"voiceforge/internal/ai"
	"voiceforge/internal/store"
	"voiceforge/pkg/models"

	"go.uber.org/zap"
)

var ErrNameRequired = errors.New("имя персонажа обязательно")

// Типы AI запросов для метрик
const (
	RequestCreateCharacter = "create_character"
	RequestDialogue        = "dialogue"
	RequestDelivery        = "delivery"
)

// Лимиты токенов на ответ
const (
	dialogueMaxTokens = 120
	deliveryMaxTokens = 200
	longLineWords     = 10
)

// Recorder принимает статистику AI запросов (метрики)
type Recorder interface {
	RecordAIRequest(requestType string, success bool, duration time.Duration)
}

// Service профили персонажей и генерация текста для них
type Service struct {
	ai       ai.AIClient
	repo     store.CharacterRepository
	recorder Recorder
	logger   *zap.Logger

	temperature float64
	maxTokens   int

	mu    sync.RWMutex
	cache map[string]*models.Character
}

// Option настраивает Service
type Option func(*Service)

// WithRecorder подключает сбор метрик
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithGeneration задает температуру и лимит токенов для создания персонажа
func WithGeneration(temperature float64, maxTokens int) Option {
	return func(s *Service) {
		s.temperature = temperature
		s.maxTokens = maxTokens
	}
}

// NewService создает сервис персонажей. aiClient и repo могут быть nil:
// тогда используются заглушки и только встроенные персонажи
func NewService(aiClient ai.AIClient, repo store.CharacterRepository, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		ai:          aiClient,
		repo:        repo,
		logger:      logger,
		temperature: 0.8,
		maxTokens:   400,
		cache:       make(map[string]*models.Character),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.ai != nil {
		logger.Info("🎭 AI персонажей включен", zap.String("provider", s.ai.GetName()))
	} else {
		logger.Warn("🎭 AI персонажей выключен, используются заглушки")
	}

	return s
}

// AIEnabled сообщает, подключен ли AI провайдер
func (s *Service) AIEnabled() bool {
	return s.ai != nil
}

// GetProfile возвращает профиль персонажа. Неизвестный id получает профиль рассказчика.
// В кэш попадают только найденные персонажи: подмена рассказчиком не кэшируется
func (s *Service) GetProfile(ctx context.Context, characterID string) *models.Character {
	s.mu.RLock()
	cached, ok := s.cache[characterID]
	s.mu.RUnlock()
	if ok {
		return copyProfile(cached)
	}

	profile, found := s.lookup(ctx, characterID)
	if !found {
		narrator := builtinProfiles[models.CharacterNarrator]
		return &narrator
	}

	s.mu.Lock()
	s.cache[characterID] = profile
	s.mu.Unlock()

	return copyProfile(profile)
}

func (s *Service) lookup(ctx context.Context, characterID string) (*models.Character, bool) {
	if p, ok := builtinProfiles[characterID]; ok {
		return &p, true
	}

	if s.repo == nil || characterID == "" {
		return nil, false
	}

	c, err := s.repo.GetBySlug(ctx, characterID)
	if err != nil {
		if !errors.Is(err, store.ErrCharacterNotFound) {
			s.logger.Warn("ошибка загрузки персонажа", zap.String("character_id", characterID), zap.Error(err))
		}
		return nil, false
	}
	return c, true
}

// Exists сообщает, известен ли персонаж под этим id (без подмены рассказчиком)
func (s *Service) Exists(ctx context.Context, characterID string) bool {
	if _, ok := builtinProfiles[characterID]; ok {
		return true
	}
	return s.GetProfile(ctx, characterID).ID == characterID
}

// VoiceFor возвращает голос синтеза для персонажа
func (s *Service) VoiceFor(ctx context.Context, characterID string) string {
	p := s.GetProfile(ctx, characterID)
	if p.VoiceID != "" {
		return p.VoiceID
	}
	return models.CharacterNarrator
}

// ListCharacters возвращает встроенных персонажей и созданных пользователями
func (s *Service) ListCharacters(ctx context.Context) []models.CharacterSummary {
	list := make([]models.CharacterSummary, 0, len(builtinOrder))
	for _, id := range builtinOrder {
		p := builtinProfiles[id]
		list = append(list, models.CharacterSummary{ID: p.ID, Name: p.Name, Description: p.Description})
	}

	if s.repo == nil {
		return list
	}

	custom, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Warn("ошибка получения пользовательских персонажей", zap.Error(err))
		return list
	}
	for _, c := range custom {
		if _, builtin := builtinProfiles[c.ID]; builtin {
			continue
		}
		list = append(list, models.CharacterSummary{ID: c.ID, Name: c.Name, Description: c.Description})
	}

	return list
}

// CreateCharacter создает персонажа: AI дописывает профиль, при ошибке подставляются заглушки
func (s *Service) CreateCharacter(ctx context.Context, req models.CreateCharacterRequest) (*models.Character, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" {
		return nil, ErrNameRequired
	}

	c := &models.Character{
		ID:                models.Slugify(req.Name),
		Name:              req.Name,
		Description:       req.Description,
		VoiceID:           models.CharacterNarrator,
		PersonalityTraits: req.PersonalityTraits,
	}
	if c.PersonalityTraits == nil {
		c.PersonalityTraits = []string{}
	}

	details, ok := s.generateDetails(ctx, req)
	if !ok {
		details = mockDetails()
	}
	c.SpeakingStyle = details.SpeakingStyle
	c.EmotionalRange = details.EmotionalRange
	c.VoiceCharacteristics = details.VoiceCharacteristics
	c.TypicalPhrases = details.TypicalPhrases
	c.Background = details.Background

	if s.repo != nil {
		if err := s.repo.Create(ctx, c); err != nil {
			return nil, fmt.Errorf("ошибка сохранения персонажа: %w", err)
		}
	}

	s.mu.Lock()
	s.cache[c.ID] = copyProfile(c)
	s.mu.Unlock()

	s.logger.Info("создан персонаж",
		zap.String("character_id", c.ID),
		zap.String("name", c.Name),
		zap.Bool("ai_generated", ok))

	return c, nil
}

func (s *Service) generateDetails(ctx context.Context, req models.CreateCharacterRequest) (models.CharacterDetails, bool) {
	var details models.CharacterDetails
	if s.ai == nil {
		return details, false
	}

	resp, err := s.ask(ctx, RequestCreateCharacter, createCharacterPrompt(req), ai.GenerationOptions{
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
		Schema:      detailsSchema,
	})
	if err != nil {
		return details, false
	}

	if err := ai.DecodeJSON(resp, &details); err != nil {
		s.logger.Warn("не удалось разобрать профиль персонажа", zap.Error(err))
		return details, false
	}

	if details.EmotionalRange == nil {
		details.EmotionalRange = []string{}
	}
	if details.TypicalPhrases == nil {
		details.TypicalPhrases = []string{}
	}
	return details, true
}

// GenerateDialogue пишет реплику персонажа для ситуации и эмоции
func (s *Service) GenerateDialogue(ctx context.Context, req models.GenerateDialogueRequest) string {
	req.Normalize()
	emotion := strings.ToLower(strings.TrimSpace(req.Emotion))

	if s.ai == nil {
		return mockDialogue(req.CharacterID, emotion)
	}

	profile := s.GetProfile(ctx, req.CharacterID)
	line, err := s.ask(ctx, RequestDialogue, dialoguePrompt(profile, req.Situation, emotion), ai.GenerationOptions{
		Temperature: s.temperature,
		MaxTokens:   dialogueMaxTokens,
	})
	if err != nil {
		return mockDialogue(req.CharacterID, emotion)
	}

	line = strings.Trim(line, " \n\t\"'“”")
	if line == "" {
		return mockDialogue(req.CharacterID, emotion)
	}
	return line
}

// AnalyzeDelivery подсказывает, как персонажу произнести текст
func (s *Service) AnalyzeDelivery(ctx context.Context, req models.AnalyzeDeliveryRequest) models.DeliveryAnalysis {
	req.Normalize()

	if s.ai == nil {
		return mockDelivery(req.Text, req.CharacterID)
	}

	profile := s.GetProfile(ctx, req.CharacterID)
	resp, err := s.ask(ctx, RequestDelivery, deliveryPrompt(profile, req.Text), ai.GenerationOptions{
		Temperature: s.temperature,
		MaxTokens:   deliveryMaxTokens,
		Schema:      deliverySchema,
	})
	if err != nil {
		return mockDelivery(req.Text, req.CharacterID)
	}

	var analysis models.DeliveryAnalysis
	if err := ai.DecodeJSON(resp, &analysis); err != nil {
		s.logger.Warn("не удалось разобрать анализ подачи", zap.Error(err))
		return mockDelivery(req.Text, req.CharacterID)
	}

	if analysis.EmphasisWords == nil {
		analysis.EmphasisWords = []string{}
	}
	if analysis.Pauses == nil {
		analysis.Pauses = []string{}
	}
	return analysis
}

// ask отправляет один запрос к AI и пишет метрики
func (s *Service) ask(ctx context.Context, requestType, prompt string, opts ai.GenerationOptions) (string, error) {
	start := time.Now()
	resp, err := s.ai.GenerateResponse(ctx, []ai.Message{
		{Role: ai.RoleSystem, Content: systemPrompt},
		{Role: ai.RoleUser, Content: prompt},
	}, opts)
	duration := time.Since(start)

	if s.recorder != nil {
		s.recorder.RecordAIRequest(requestType, err == nil, duration)
	}

	if err != nil {
		s.logger.Error("ошибка запроса к AI",
			zap.String("type", requestType),
			zap.String("provider", s.ai.GetName()),
			zap.Duration("duration", duration),
			zap.Error(err))
		return "", err
	}

	s.logger.Debug("получен ответ AI",
		zap.String("type", requestType),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("duration", duration))

	return strings.TrimSpace(resp.Content), nil
}

func mockDetails() models.CharacterDetails {
	return models.CharacterDetails{
		SpeakingStyle:        mockSpeakingStyle,
		EmotionalRange:       append([]string(nil), mockEmotionalRange...),
		VoiceCharacteristics: mockVoiceCharacteristics,
		TypicalPhrases:       append([]string(nil), mockTypicalPhrases...),
		Background:           mockBackground,
	}
}

func mockDialogue(characterID, emotion string) string {
	lines, ok := mockDialogues[characterID]
	if !ok {
		lines = mockDialogues[models.CharacterNarrator]
	}
	if line, ok := lines[emotion]; ok {
		return line
	}
	return lines[models.DefaultEmotion]
}

func mockDelivery(text, characterID string) models.DeliveryAnalysis {
	emotion := "neutral"
	switch {
	case strings.Contains(text, "!"):
		emotion = "excited"
	case strings.Contains(text, "?"):
		emotion = "questioning"
	case strings.Contains(text, "..."):
		emotion = "contemplative"
	}

	pacing := "medium"
	if characterID == models.CharacterVillain {
		pacing = "slow"
	}

	words := strings.Fields(text)
	emphasis := make([]string, 0)
	for _, w := range words {
		if isUpperWord(w) {
			emphasis = append(emphasis, strings.Trim(w, ".,!?"))
		}
	}

	pauses := make([]string, 0, 1)
	if len(words) > longLineWords {
		pauses = append(pauses, "mid-sentence")
	}

	return models.DeliveryAnalysis{
		Emotion:       emotion,
		Pacing:        pacing,
		EmphasisWords: emphasis,
		Inflection:    "declarative",
		Pauses:        pauses,
		ToneNotes:     "Deliver in character as " + characterID,
	}
}

// isUpperWord слово содержит заглавные буквы и ни одной строчной
func isUpperWord(w string) bool {
	hasUpper := false
	for _, r := range w {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			hasUpper = true
		}
	}
	return hasUpper
}

func copyProfile(p *models.Character) *models.Character {
	c := *p
	return &c
}

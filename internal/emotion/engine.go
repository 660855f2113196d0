package emotion

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Пороги принятия решения
const (
	keywordThreshold   = 0.1
	sentimentThreshold = 0.3

	lengthBoostPerWord = 0.01
	lengthBoostMax     = 0.2
	punctBoostPerMark  = 0.1
	punctBoostMax      = 0.3
)

// AnalysisResult результат анализа текста
type AnalysisResult struct {
	PrimaryEmotion  Emotion             `json:"primary_emotion"`
	SentimentScores SentimentScores     `json:"sentiment_scores"`
	EmotionScores   map[Emotion]float64 `json:"emotion_scores"`
	VoiceModifiers  VoiceModifiers      `json:"voice_modifiers"`
	Confidence      float64             `json:"confidence"`
}

// Recorder принимает статистику анализа (метрики)
type Recorder interface {
	RecordEmotionAnalysis(emotion string, cacheHit bool)
}

// Engine определяет эмоцию текста и параметры голоса для синтеза
type Engine struct {
	lexicon   Lexicon
	modifiers ModifierTable
	scorer    SentimentScorer
	cache     *ResultCache
	recorder  Recorder
	logger    *zap.Logger
}

// Option настраивает Engine
type Option func(*Engine)

// WithSentimentScorer подменяет оценщик тональности
func WithSentimentScorer(s SentimentScorer) Option {
	return func(e *Engine) {
		e.scorer = s
	}
}

// WithLexicon подменяет словарь сигналов
func WithLexicon(lex Lexicon) Option {
	return func(e *Engine) {
		e.lexicon = lex
	}
}

// WithModifierTable подменяет таблицу модификаторов голоса
func WithModifierTable(t ModifierTable) Option {
	return func(e *Engine) {
		e.modifiers = t
	}
}

// WithCache задает кэш результатов (например, общий для нескольких движков)
func WithCache(c *ResultCache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithRecorder подключает сбор метрик
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// NewEngine создает движок и проверяет согласованность лексикона с таблицей модификаторов
func NewEngine(logger *zap.Logger, opts ...Option) (*Engine, error) {
	e := &Engine{
		lexicon:   DefaultLexicon(),
		modifiers: DefaultModifierTable(),
		scorer:    NewHeuristicScorer(),
		cache:     NewResultCache(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.scorer == nil {
		e.scorer = NewHeuristicScorer()
	}
	if e.cache == nil {
		e.cache = NewResultCache()
	}

	if err := Validate(e.lexicon, e.modifiers); err != nil {
		return nil, fmt.Errorf("ошибка инициализации анализатора эмоций: %w", err)
	}

	return e, nil
}

// Cache возвращает кэш результатов движка
func (e *Engine) Cache() *ResultCache {
	return e.cache
}

// Analyze анализирует текст. Никогда не возвращает ошибку: любой сбой
// внутри дает нейтральный результат.
func (e *Engine) Analyze(text string) (result AnalysisResult) {
	key := normalizeKey(text)
	if cached, ok := e.cache.Get(key); ok {
		e.record(cached.PrimaryEmotion, true)
		return cached
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("сбой анализа эмоций, возвращаем нейтральный результат",
				zap.Any("panic", r),
				zap.Int("text_length", len(text)))
			result = e.neutralResult()
		}
	}()

	result = e.compute(text)
	e.cache.Put(key, result)
	e.record(result.PrimaryEmotion, false)

	e.logger.Debug("эмоция определена",
		zap.String("emotion", result.PrimaryEmotion.String()),
		zap.Float64("confidence", result.Confidence),
		zap.Float64("compound", result.SentimentScores.Compound))

	return result
}

// compute выполняет полный анализ без кэша
func (e *Engine) compute(text string) AnalysisResult {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || !utf8.ValidString(trimmed) {
		return e.neutralResult()
	}

	lower := strings.ToLower(trimmed)
	sentiment := e.scorer.Score(trimmed).sanitize()
	scores := e.keywordScores(lower)
	signal := punctuationSignal(trimmed)

	maxEmotion, maxScore := e.strongest(scores)

	var primary Emotion
	base := 0.0
	switch {
	case maxScore >= keywordThreshold:
		primary = maxEmotion
		base = maxScore
	case signal != "":
		primary = signal
	case sentiment.Compound > sentimentThreshold:
		primary = Happy
	case sentiment.Compound < -sentimentThreshold:
		primary = Sad
	default:
		primary = Neutral
	}

	words := len(tokenize(trimmed))
	marks := strings.Count(trimmed, "!") + strings.Count(trimmed, "?")

	confidence := math.Max(base, math.Abs(sentiment.Compound))
	confidence += math.Min(lengthBoostMax, float64(words)*lengthBoostPerWord)
	confidence += math.Min(punctBoostMax, float64(marks)*punctBoostPerMark)

	return AnalysisResult{
		PrimaryEmotion:  primary,
		SentimentScores: sentiment,
		EmotionScores:   scores,
		VoiceModifiers:  e.modifiers.Resolve(primary),
		Confidence:      clamp(confidence, 0, 1),
	}
}

// keywordScores считает оценку каждой метки. Метки без записи в лексиконе получают 0.
func (e *Engine) keywordScores(lower string) map[Emotion]float64 {
	scores := make(map[Emotion]float64, len(Labels))
	for _, label := range Labels {
		group, ok := e.lexicon[label]
		if !ok {
			scores[label] = 0
			continue
		}
		scores[label] = group.score(lower)
	}
	return scores
}

// strongest выбирает метку с максимальной оценкой, при равенстве - первую по Labels
func (e *Engine) strongest(scores map[Emotion]float64) (Emotion, float64) {
	best := Neutral
	bestScore := 0.0
	for _, label := range Labels {
		if s := scores[label]; s > bestScore {
			best = label
			bestScore = s
		}
	}
	return best, bestScore
}

// punctuationSignal ищет шаблоны пунктуации в фиксированном порядке приоритета
func punctuationSignal(text string) Emotion {
	switch {
	case strings.Contains(text, "?!"), strings.Contains(text, "!?"):
		return Surprised
	case strings.Contains(text, "!"):
		return Excited
	case strings.Contains(text, "?"):
		return Questioning
	case strings.Contains(text, "..."), strings.Contains(text, "…"):
		return Contemplative
	default:
		return ""
	}
}

// neutralResult результат для пустого ввода и внутренних сбоев
func (e *Engine) neutralResult() AnalysisResult {
	scores := make(map[Emotion]float64, len(Labels))
	for _, label := range Labels {
		scores[label] = 0
	}
	return AnalysisResult{
		PrimaryEmotion:  Neutral,
		SentimentScores: neutralSentiment(),
		EmotionScores:   scores,
		VoiceModifiers:  e.modifiers.Resolve(Neutral),
		Confidence:      0,
	}
}

func (e *Engine) record(emotion Emotion, cacheHit bool) {
	if e.recorder != nil {
		e.recorder.RecordEmotionAnalysis(emotion.String(), cacheHit)
	}
}

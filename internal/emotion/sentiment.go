package emotion

import (
	"math"
	"strings"
	"unicode"
)

// SentimentScores оценка тональности текста
type SentimentScores struct {
	Compound float64 `json:"compound"`
	Positive float64 `json:"pos"`
	Neutral  float64 `json:"neu"`
	Negative float64 `json:"neg"`
}

// neutralSentiment тональность пустого текста
func neutralSentiment() SentimentScores {
	return SentimentScores{Neutral: 1}
}

// sanitize приводит оценки к допустимым диапазонам
func (s SentimentScores) sanitize() SentimentScores {
	return SentimentScores{
		Compound: clamp(finite(s.Compound), -1, 1),
		Positive: math.Max(0, finite(s.Positive)),
		Neutral:  math.Max(0, finite(s.Neutral)),
		Negative: math.Max(0, finite(s.Negative)),
	}
}

// SentimentScorer оценивает тональность текста. Реализация может быть
// заменена на более точную модель без изменения логики слияния сигналов.
type SentimentScorer interface {
	Score(text string) SentimentScores
}

// Коэффициенты усиления
const (
	shoutingBoost    = 1.3
	exclamationBoost = 0.1
)

var defaultPositiveWords = []string{
	"good", "great", "happy", "love", "excellent", "wonderful", "amazing", "awesome",
	"fantastic", "nice", "joy", "glad", "beautiful", "best", "brilliant", "delighted",
	"perfect", "pleased", "fun", "like", "enjoy", "win", "success", "hope", "calm",
	"peaceful", "excited", "thrilled", "yes", "thanks",
}

var defaultNegativeWords = []string{
	"bad", "terrible", "awful", "horrible", "hate", "sad", "angry", "wrong", "worst",
	"poor", "ugly", "fail", "failure", "pain", "hurt", "afraid", "scared", "fear", "cry",
	"lose", "lost", "no", "never", "upset", "annoyed", "furious", "depressed",
	"miserable", "disgusting", "evil",
}

// HeuristicScorer словарная оценка тональности без внешних зависимостей
type HeuristicScorer struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

// NewHeuristicScorer создает оценщик со встроенными списками слов
func NewHeuristicScorer() *HeuristicScorer {
	return NewHeuristicScorerWithWords(defaultPositiveWords, defaultNegativeWords)
}

// NewHeuristicScorerWithWords создает оценщик с заданными списками слов
func NewHeuristicScorerWithWords(positive, negative []string) *HeuristicScorer {
	return &HeuristicScorer{
		positive: toSet(positive),
		negative: toSet(negative),
	}
}

// Score считает доли позитивных и негативных слов и итоговый compound.
// Капс и восклицательные знаки усиливают compound до ограничения в [-1, 1].
func (s *HeuristicScorer) Score(text string) SentimentScores {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return neutralSentiment()
	}

	var posCount, negCount int
	shouting := false
	for _, tok := range tokens {
		if isShouting(tok) {
			shouting = true
		}
		word := strings.ToLower(tok)
		if _, ok := s.positive[word]; ok {
			posCount++
		} else if _, ok := s.negative[word]; ok {
			negCount++
		}
	}

	total := float64(len(tokens))
	pos := float64(posCount) / total
	neg := float64(negCount) / total
	compound := pos - neg

	if shouting {
		compound *= shoutingBoost
	}
	if n := strings.Count(text, "!"); n > 0 {
		compound *= 1 + exclamationBoost*float64(n)
	}

	return SentimentScores{
		Compound: clamp(compound, -1, 1),
		Positive: pos,
		Neutral:  math.Max(0, 1-pos-neg),
		Negative: neg,
	}
}

// tokenize делит текст на слова: буквы, цифры и апостроф
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// isShouting проверяет, что слово длиннее двух символов и написано капсом
func isShouting(tok string) bool {
	letters := 0
	for _, r := range tok {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters > 0 && len([]rune(tok)) > 2
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

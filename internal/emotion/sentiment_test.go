package emotion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeuristicScorerZeroTokens(t *testing.T) {
	s := NewHeuristicScorer()

	for _, text := range []string{"", "!!!", "... ?!"} {
		assert.Equal(t, SentimentScores{Neutral: 1}, s.Score(text))
	}
}

func TestHeuristicScorerProportions(t *testing.T) {
	s := NewHeuristicScorer()

	r := s.Score("good day, bad night")

	assert.InDelta(t, 0.25, r.Positive, 1e-9)
	assert.InDelta(t, 0.25, r.Negative, 1e-9)
	assert.InDelta(t, 0.5, r.Neutral, 1e-9)
	assert.InDelta(t, 0.0, r.Compound, 1e-9)
}

func TestHeuristicScorerShoutingAndExclamationCompose(t *testing.T) {
	s := NewHeuristicScorer()

	plain := s.Score("This is bad")
	shouted := s.Score("THIS IS BAD!!")

	assert.InDelta(t, -1.0/3.0, plain.Compound, 1e-9)
	// 1.3 за капс и 1 + 0.1*2 за восклицания
	assert.InDelta(t, -1.0/3.0*1.3*1.2, shouted.Compound, 1e-9)
	assert.Greater(t, math.Abs(shouted.Compound), math.Abs(plain.Compound))
}

func TestHeuristicScorerShortCapsIgnored(t *testing.T) {
	s := NewHeuristicScorer()

	// "OK" и "I" короче трех символов
	assert.Equal(t, s.Score("i am ok but sad"), s.Score("I am OK but sad"))
}

func TestHeuristicScorerClamp(t *testing.T) {
	s := NewHeuristicScorer()

	assert.Equal(t, -1.0, s.Score("BAD AWFUL!!!").Compound)
	assert.Equal(t, 1.0, s.Score("GREAT LOVE!!!").Compound)
}

func TestHeuristicScorerCustomWords(t *testing.T) {
	s := NewHeuristicScorerWithWords([]string{"Sunny"}, []string{"rainy"})

	assert.Equal(t, 1.0, s.Score("sunny").Compound)
	assert.Equal(t, -1.0, s.Score("rainy").Compound)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"I", "can't", "wait", "2day"}, tokenize("I can't wait... 2day!"))
	assert.Empty(t, tokenize("?! ... !!"))
}

func TestIsShouting(t *testing.T) {
	assert.True(t, isShouting("STOP"))
	assert.True(t, isShouting("DON'T"))
	assert.False(t, isShouting("OK"))
	assert.False(t, isShouting("Stop"))
	assert.False(t, isShouting("2024"))
}

func TestKeywordScoreNormalization(t *testing.T) {
	g := SignalGroup{
		Primary:     []string{"a1"},
		Secondary:   []string{"b1"},
		Expressions: []string{":)"},
	}

	assert.InDelta(t, 0.8/3, g.score("a1"), 1e-9)
	assert.InDelta(t, (0.8+0.4+0.6)/3, g.score("a1 b1 :)"), 1e-9)
	assert.Equal(t, 0.0, SignalGroup{}.score("anything"))
}

func TestKeywordScoreSubstringMatch(t *testing.T) {
	lex := DefaultLexicon()

	// "joyful" содержит "joy"
	assert.Greater(t, lex[Happy].score("joyful"), 0.0)
}

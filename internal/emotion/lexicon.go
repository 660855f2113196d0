package emotion

import (
	"errors"
	"fmt"
	"strings"
)

// Веса групп сигналов
const (
	primaryWeight    = 0.8
	secondaryWeight  = 0.4
	expressionWeight = 0.6
)

// ErrInvalidLexicon возвращается при несогласованном лексиконе или таблице модификаторов
var ErrInvalidLexicon = errors.New("некорректный лексикон эмоций")

// SignalGroup набор сигналов одной эмоции. Все строки в нижнем регистре.
type SignalGroup struct {
	Primary     []string
	Secondary   []string
	Expressions []string
}

// size возвращает общее число возможных сигналов
func (g SignalGroup) size() int {
	return len(g.Primary) + len(g.Secondary) + len(g.Expressions)
}

// score считает взвешенные попадания по подстрокам в тексте нижнего регистра
func (g SignalGroup) score(lower string) float64 {
	n := g.size()
	if n == 0 {
		return 0
	}

	var hits float64
	hits += primaryWeight * float64(countContained(lower, g.Primary))
	hits += secondaryWeight * float64(countContained(lower, g.Secondary))
	hits += expressionWeight * float64(countContained(lower, g.Expressions))

	return clamp(hits/float64(n), 0, 1)
}

func countContained(text string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			count++
		}
	}
	return count
}

// Lexicon словарь сигналов по эмоциям
type Lexicon map[Emotion]SignalGroup

// DefaultLexicon возвращает встроенный словарь
func DefaultLexicon() Lexicon {
	return Lexicon{
		Happy: {
			Primary:     []string{"happy", "joy", "glad", "delighted", "cheerful", "pleased"},
			Secondary:   []string{"great", "wonderful", "smile", "yay", "awesome"},
			Expressions: []string{":)", ":d", "😊"},
		},
		Sad: {
			Primary:     []string{"sad", "unhappy", "sorrow", "depressed", "gloomy", "heartbroken"},
			Secondary:   []string{"upset", "cry", "tears", "miss", "lonely"},
			Expressions: []string{":(", ":'(", "😢"},
		},
		Angry: {
			Primary:     []string{"angry", "mad", "furious", "rage", "irritated", "annoyed"},
			Secondary:   []string{"hate", "outraged", "hostile", "damn"},
			Expressions: []string{">:(", "😠", "😡"},
		},
		Fear: {
			Primary:     []string{"afraid", "scared", "fear", "terrified", "frightened", "anxious"},
			Secondary:   []string{"worried", "nervous", "panic", "dread"},
			Expressions: []string{"😨", "😱", "😰"},
		},
		Surprised: {
			Primary:     []string{"surprised", "astonished", "shocked", "amazed", "stunned"},
			Secondary:   []string{"wow", "whoa", "unexpected", "unbelievable"},
			Expressions: []string{":o", "😮", "😲"},
		},
		Calm: {
			Primary:     []string{"calm", "peaceful", "serene", "relaxed", "tranquil"},
			Secondary:   []string{"quiet", "gentle", "steady", "breathe"},
			Expressions: []string{"😌", "🧘"},
		},
		Excited: {
			Primary:     []string{"excited", "thrilled", "energetic", "enthusiastic", "pumped"},
			Secondary:   []string{"can't wait", "eager", "hyped", "ecstatic"},
			Expressions: []string{"🎉", "🤩", "🔥"},
		},
	}
}

// Validate проверяет согласованность лексикона и таблицы модификаторов:
// каждая метка лексикона из закрытого набора и имеет запись в таблице,
// запись neutral присутствует всегда.
func Validate(lex Lexicon, table ModifierTable) error {
	if _, ok := table[Neutral]; !ok {
		return fmt.Errorf("%w: нет модификаторов для %q", ErrInvalidLexicon, Neutral)
	}

	for label, group := range lex {
		if !label.IsLexical() {
			return fmt.Errorf("%w: неизвестная метка %q", ErrInvalidLexicon, label)
		}
		if group.size() == 0 {
			return fmt.Errorf("%w: пустой набор сигналов для %q", ErrInvalidLexicon, label)
		}
		if _, ok := table[label]; !ok {
			return fmt.Errorf("%w: нет модификаторов для %q", ErrInvalidLexicon, label)
		}
	}

	for label, m := range table {
		if m.SpeedModifier <= 0 || m.PitchModifier <= 0 {
			return fmt.Errorf("%w: модификаторы %q должны быть положительными", ErrInvalidLexicon, label)
		}
	}

	return nil
}

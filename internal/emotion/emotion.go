package emotion

import "strings"

// Emotion метка эмоции
type Emotion string

// Метки лексикона
const (
	Happy     Emotion = "happy"
	Sad       Emotion = "sad"
	Angry     Emotion = "angry"
	Fear      Emotion = "fear"
	Surprised Emotion = "surprised"
	Calm      Emotion = "calm"
	Excited   Emotion = "excited"
)

// Neutral используется, когда ни один сигнал не сработал
const Neutral Emotion = "neutral"

// Метки, которые дает только пунктуация. В таблице модификаторов их нет,
// голос для них берется из записи neutral.
const (
	Questioning   Emotion = "questioning"
	Contemplative Emotion = "contemplative"
)

// Labels задает порядок обхода лексикона. При равных оценках побеждает
// метка, стоящая раньше.
var Labels = []Emotion{Happy, Sad, Angry, Fear, Surprised, Calm, Excited}

// String возвращает строковое представление метки
func (e Emotion) String() string {
	return string(e)
}

// IsLexical проверяет, входит ли метка в закрытый набор лексикона
func (e Emotion) IsLexical() bool {
	for _, l := range Labels {
		if l == e {
			return true
		}
	}
	return false
}

// Parse разбирает метку из внешнего ввода. Неизвестные значения дают neutral.
func Parse(s string) (Emotion, bool) {
	e := Emotion(strings.ToLower(strings.TrimSpace(s)))
	switch {
	case e.IsLexical(), e == Neutral, e == Questioning, e == Contemplative:
		return e, true
	default:
		return Neutral, false
	}
}

// VoiceModifiers множители скорости и высоты голоса для синтеза речи
type VoiceModifiers struct {
	SpeedModifier float64 `json:"speed_modifier"`
	PitchModifier float64 `json:"pitch_modifier"`
}

// ModifierTable переводит эмоцию в параметры синтеза
type ModifierTable map[Emotion]VoiceModifiers

// DefaultModifierTable возвращает стандартную таблицу модификаторов
func DefaultModifierTable() ModifierTable {
	return ModifierTable{
		Happy:     {SpeedModifier: 1.15, PitchModifier: 1.05},
		Sad:       {SpeedModifier: 0.85, PitchModifier: 0.9},
		Angry:     {SpeedModifier: 1.25, PitchModifier: 1.02},
		Fear:      {SpeedModifier: 1.05, PitchModifier: 0.95},
		Surprised: {SpeedModifier: 1.3, PitchModifier: 1.15},
		Calm:      {SpeedModifier: 0.95, PitchModifier: 1.0},
		Excited:   {SpeedModifier: 1.25, PitchModifier: 1.15},
		Neutral:   {SpeedModifier: 1.0, PitchModifier: 1.0},
	}
}

// Resolve возвращает модификаторы для эмоции, при отсутствии записи - neutral
func (t ModifierTable) Resolve(e Emotion) VoiceModifiers {
	if m, ok := t[e]; ok {
		return m
	}
	return t[Neutral]
}

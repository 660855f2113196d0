package tts

import (
	"voiceforge/pkg/models"
)

// NeutralRate скорость речи, которую провайдеры считают обычной
const NeutralRate = 180.0

// Voice голосовая персона персонажа
type Voice struct {
	ID        string
	Name      string
	BaseSpeed int     // слов в минуту
	BasePitch float64 // множитель высоты

	MurfVoice   string
	YandexVoice string
}

var voices = map[string]Voice{
	models.CharacterHero: {
		ID:          models.CharacterHero,
		Name:        "Hero Voice",
		BaseSpeed:   200,
		BasePitch:   1.1,
		MurfVoice:   "en-US-ken",
		YandexVoice: "john",
	},
	models.CharacterVillain: {
		ID:          models.CharacterVillain,
		Name:        "Villain Voice",
		BaseSpeed:   150,
		BasePitch:   0.85,
		MurfVoice:   "en-UK-theo",
		YandexVoice: "filipp",
	},
	models.CharacterNarrator: {
		ID:          models.CharacterNarrator,
		Name:        "Narrator Voice",
		BaseSpeed:   180,
		BasePitch:   1.0,
		MurfVoice:   "en-US-natalie",
		YandexVoice: "marina",
	},
}

var voiceOrder = []string{models.CharacterHero, models.CharacterVillain, models.CharacterNarrator}

// LookupVoice возвращает персону по id, для неизвестных - рассказчика
func LookupVoice(id string) (Voice, bool) {
	v, ok := voices[id]
	if !ok {
		return voices[models.CharacterNarrator], false
	}
	return v, true
}

// ListVoices возвращает список персон для API
func ListVoices() []models.Voice {
	out := make([]models.Voice, 0, len(voiceOrder))
	for _, id := range voiceOrder {
		v := voices[id]
		out = append(out, models.Voice{
			ID:          v.ID,
			Name:        v.Name,
			Description: "Character voice for " + v.Name,
			BaseSpeed:   v.BaseSpeed,
			BasePitch:   v.BasePitch,
		})
	}
	return out
}

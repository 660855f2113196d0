package character

import "voiceforge/pkg/models"

// builtinOrder порядок встроенных персонажей в списках
var builtinOrder = []string{models.CharacterHero, models.CharacterVillain, models.CharacterNarrator}

var builtinProfiles = map[string]models.Character{
	models.CharacterHero: {
		ID:                   models.CharacterHero,
		Name:                 "Alex Hero",
		Description:          "A brave protagonist with unwavering determination",
		VoiceID:              models.CharacterHero,
		Personality:          "confident, inspiring, determined, optimistic",
		SpeakingStyle:        "Clear and motivational, speaks with conviction",
		VoiceCharacteristics: "Strong, warm tone with steady pacing",
	},
	models.CharacterVillain: {
		ID:                   models.CharacterVillain,
		Name:                 "Dr. Shadow",
		Description:          "A cunning antagonist with mysterious motives",
		VoiceID:              models.CharacterVillain,
		Personality:          "mysterious, calculating, menacing, intelligent",
		SpeakingStyle:        "Smooth and calculated, uses pauses for effect",
		VoiceCharacteristics: "Deep, controlled tone with deliberate pacing",
	},
	models.CharacterNarrator: {
		ID:                   models.CharacterNarrator,
		Name:                 "The Storyteller",
		Description:          "An omniscient narrator with deep wisdom",
		VoiceID:              models.CharacterNarrator,
		Personality:          "wise, clear, engaging, knowledgeable",
		SpeakingStyle:        "Flowing and descriptive, guides the listener",
		VoiceCharacteristics: "Rich, measured tone with natural rhythm",
	},
}

// mockDialogues реплики-заглушки: персонаж -> эмоция -> реплика
var mockDialogues = map[string]map[string]string{
	models.CharacterHero: {
		"happy":   "We did it! I knew we could overcome this challenge together!",
		"sad":     "This is difficult, but we must press on for everyone counting on us.",
		"angry":   "This injustice cannot stand! We will make this right!",
		"excited": "This is amazing! The possibilities are endless!",
		"calm":    "Let's take a step back and think this through carefully.",
		"neutral": "We need to consider all our options before moving forward.",
	},
	models.CharacterVillain: {
		"happy":   "Excellent... everything is proceeding exactly according to plan.",
		"sad":     "You think you've won, but this is merely a minor setback.",
		"angry":   "You fools! You have no idea what forces you've unleashed!",
		"excited": "At last! The moment I've been waiting for has arrived!",
		"calm":    "Patience... all good things come to those who wait.",
		"neutral": "Interesting... this development requires careful consideration.",
	},
	models.CharacterNarrator: {
		"happy":   "And so, joy filled the hearts of all who witnessed this remarkable moment.",
		"sad":     "A heavy silence fell upon the land, as hope seemed to drift away like morning mist.",
		"angry":   "The storm of conflict raged with unprecedented fury across the realm.",
		"excited": "The air crackled with anticipation as destiny hung in the balance!",
		"calm":    "Peace settled over the world like a gentle blanket of starlight.",
		"neutral": "The story continues to unfold in ways both mysterious and profound.",
	},
}

// Значения профиля, когда AI недоступен
var (
	mockSpeakingStyle        = "Natural and expressive"
	mockEmotionalRange       = []string{"neutral", "happy", "sad", "excited"}
	mockVoiceCharacteristics = "Clear and engaging tone"
	mockTypicalPhrases       = []string{"Let me think about that.", "That's interesting."}
	mockBackground           = "A well-developed character with unique traits"
)

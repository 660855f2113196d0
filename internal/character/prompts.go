package character

import (
	"fmt"
	"strings"

	"voiceforge/internal/ai"
	"voiceforge/pkg/models"
)

const systemPrompt = "You are a creative assistant for a voice acting studio. " +
	"You write characters and lines that voice actors can perform."

var (
	detailsSchema = &ai.JSONSchema{
		Name:        "character_details",
		Description: "Voice acting profile of a character",
		Schema:      ai.GenerateSchema[models.CharacterDetails](),
	}
	deliverySchema = &ai.JSONSchema{
		Name:        "delivery_analysis",
		Description: "How a character should deliver a line",
		Schema:      ai.GenerateSchema[models.DeliveryAnalysis](),
	}
)

func createCharacterPrompt(req models.CreateCharacterRequest) string {
	return fmt.Sprintf("Create a detailed character profile for a voice acting scenario:\n\n"+
		"Name: %s\nDescription: %s\nPersonality Traits: %s\n\n"+
		"Return a JSON object with keys: speaking_style (string), emotional_range (array of strings), "+
		"voice_characteristics (string), typical_phrases (array), background (string).",
		req.Name, req.Description, strings.Join(req.PersonalityTraits, ", "))
}

func dialoguePrompt(p *models.Character, situation, emotion string) string {
	return fmt.Sprintf("You are writing a line of dialogue for a voice actor.\n"+
		"Character: %s, Description: %s\n"+
		"Personality: %s, Speaking Style: %s\n\n"+
		"Situation: %s\nEmotion: %s\n\n"+
		"Produce a single line (1-2 sentences) that fits the character. Do not include quotes or names.",
		p.Name, p.Description, personalityOf(p), p.SpeakingStyle, situation, emotion)
}

func deliveryPrompt(p *models.Character, text string) string {
	return fmt.Sprintf("Analyze the following text for delivery by the character below. Return JSON keys: "+
		"emotion (string), pacing (string), emphasis_words (array), inflection (string), pauses (array), tone_notes (string).\n\n"+
		"Text: %q\nCharacter: %s - %s\nPersonality: %s",
		text, p.Name, p.Description, personalityOf(p))
}

// personalityOf у встроенных персонажей есть описание характера, у созданных только черты
func personalityOf(p *models.Character) string {
	if p.Personality != "" {
		return p.Personality
	}
	return strings.Join(p.PersonalityTraits, ", ")
}

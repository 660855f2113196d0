package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSpeechRequestNormalize(t *testing.T) {
	req := &GenerateSpeechRequest{Text: "  hello  "}
	req.Normalize()

	assert.Equal(t, "hello", req.Text)
	assert.Equal(t, CharacterNarrator, req.CharacterID)

	req = &GenerateSpeechRequest{Text: "hi", CharacterID: CharacterVillain}
	req.Normalize()
	assert.Equal(t, CharacterVillain, req.CharacterID)
}

func TestGenerateDialogueRequestNormalize(t *testing.T) {
	req := &GenerateDialogueRequest{}
	req.Normalize()

	assert.Equal(t, CharacterNarrator, req.CharacterID)
	assert.Equal(t, DefaultSituation, req.Situation)
	assert.Equal(t, DefaultEmotion, req.Emotion)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "captain_nova", Slugify("  Captain Nova "))
	assert.Equal(t, "hero", Slugify("Hero"))
}

package ws

import (
	"voiceforge/internal/emotion"
	"voiceforge/pkg/models"
)

// Типы сообщений протокола
const (
	TypeVoiceRequest      = "voice_request"
	TypeVoiceResponse     = "voice_response"
	TypeCharacterSwitch   = "character_switch"
	TypeCharacterSwitched = "character_switched"
	TypeError             = "error"
)

// InboundMessage сообщение от клиента
type InboundMessage struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	CharacterID string `json:"character_id,omitempty"`
}

// VoiceResponse ответ на voice_request
type VoiceResponse struct {
	Type        string                 `json:"type"`
	AudioURL    *string                `json:"audio_url"`
	Emotion     emotion.AnalysisResult `json:"emotion"`
	CharacterID string                 `json:"character_id"`
	Text        string                 `json:"text"`
}

// CharacterSwitched ответ на character_switch
type CharacterSwitched struct {
	Type      string            `json:"type"`
	Character *models.Character `json:"character"`
}

// ErrorMessage сообщение об ошибке
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func errorMessage(msg string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Message: msg}
}

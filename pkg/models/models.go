package models

import (
	"strings"
	"time"
)

// Character представляет персонажа озвучки
type Character struct {
	ID                   string         `json:"id" db:"slug"` // hero, villain, narrator или slug пользовательского персонажа
	Name                 string         `json:"name" db:"name"`
	Description          string         `json:"description" db:"description"`
	VoiceID              string         `json:"voice_id,omitempty" db:"voice_id"`
	Personality          string         `json:"personality,omitempty"`
	SpeakingStyle        string         `json:"speaking_style,omitempty"`
	VoiceCharacteristics string         `json:"voice_characteristics,omitempty"`
	PersonalityTraits    []string       `json:"personality_traits,omitempty" db:"personality_traits"`
	EmotionalRange       []string       `json:"emotional_range,omitempty"`
	TypicalPhrases       []string       `json:"typical_phrases,omitempty"`
	Background           string         `json:"background,omitempty"`
	VoiceSettings        map[string]any `json:"voice_settings,omitempty" db:"voice_settings"`
	CreatedAt            time.Time      `json:"created_at,omitempty" db:"created_at"`
}

// CharacterSummary краткое описание персонажа для списков
type CharacterSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CharacterDetails генерируемая AI часть профиля персонажа
type CharacterDetails struct {
	SpeakingStyle        string   `json:"speaking_style" jsonschema:"description=How the character speaks"`
	EmotionalRange       []string `json:"emotional_range" jsonschema:"description=Emotions the character can express"`
	VoiceCharacteristics string   `json:"voice_characteristics" jsonschema:"description=Tone and pacing of the voice"`
	TypicalPhrases       []string `json:"typical_phrases" jsonschema:"description=Short phrases the character often says"`
	Background           string   `json:"background" jsonschema:"description=One paragraph backstory"`
}

// DeliveryAnalysis рекомендации по подаче реплики персонажем
type DeliveryAnalysis struct {
	Emotion       string   `json:"emotion"`
	Pacing        string   `json:"pacing" jsonschema:"enum=slow,enum=medium,enum=fast"`
	EmphasisWords []string `json:"emphasis_words"`
	Inflection    string   `json:"inflection"`
	Pauses        []string `json:"pauses"`
	ToneNotes     string   `json:"tone_notes"`
}

// VoiceSession представляет одну сгенерированную реплику
type VoiceSession struct {
	ID              int64     `json:"id" db:"id"`
	SessionID       string    `json:"session_id" db:"session_id"`
	CharacterID     string    `json:"character_id" db:"character_id"`
	Text            string    `json:"text" db:"text"`
	Emotion         string    `json:"emotion" db:"emotion"`
	Confidence      float64   `json:"confidence" db:"confidence"`
	AudioURL        *string   `json:"audio_url" db:"audio_url"`
	DurationSeconds float64   `json:"duration_seconds" db:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Voice представляет голосовую персону синтеза
type Voice struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	BaseSpeed   int     `json:"base_speed"` // слов в минуту
	BasePitch   float64 `json:"base_pitch"`
}

// AnalyzeEmotionRequest запрос на анализ эмоции
type AnalyzeEmotionRequest struct {
	Text string `json:"text"`
}

// GenerateSpeechRequest запрос на генерацию речи
type GenerateSpeechRequest struct {
	Text        string `json:"text"`
	CharacterID string `json:"character_id"`
}

// GenerateDialogueRequest запрос на генерацию реплики персонажа
type GenerateDialogueRequest struct {
	CharacterID string `json:"character_id"`
	Situation   string `json:"situation"`
	Emotion     string `json:"emotion"`
}

// GenerateDialogueResponse ответ с репликой персонажа
type GenerateDialogueResponse struct {
	Dialogue    string `json:"dialogue"`
	CharacterID string `json:"character_id"`
}

// CreateCharacterRequest запрос на создание персонажа
type CreateCharacterRequest struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	PersonalityTraits []string `json:"personality_traits"`
}

// AnalyzeDeliveryRequest запрос на анализ подачи текста
type AnalyzeDeliveryRequest struct {
	Text        string `json:"text"`
	CharacterID string `json:"character_id"`
}

// Constants для встроенных персонажей
const (
	CharacterHero     = "hero"
	CharacterVillain  = "villain"
	CharacterNarrator = "narrator"
)

// Constants для значений по умолчанию в запросах
const (
	DefaultSituation = "general conversation"
	DefaultEmotion   = "neutral"
)

// Normalize подставляет значения по умолчанию
func (r *GenerateSpeechRequest) Normalize() {
	r.Text = strings.TrimSpace(r.Text)
	if strings.TrimSpace(r.CharacterID) == "" {
		r.CharacterID = CharacterNarrator
	}
}

// Normalize подставляет значения по умолчанию
func (r *GenerateDialogueRequest) Normalize() {
	if strings.TrimSpace(r.CharacterID) == "" {
		r.CharacterID = CharacterNarrator
	}
	if strings.TrimSpace(r.Situation) == "" {
		r.Situation = DefaultSituation
	}
	if strings.TrimSpace(r.Emotion) == "" {
		r.Emotion = DefaultEmotion
	}
}

// Normalize подставляет значения по умолчанию
func (r *AnalyzeDeliveryRequest) Normalize() {
	r.Text = strings.TrimSpace(r.Text)
	if strings.TrimSpace(r.CharacterID) == "" {
		r.CharacterID = CharacterNarrator
	}
}

// Slugify строит идентификатор персонажа из имени
func Slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"voiceforge/pkg/models"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// characterProfile часть персонажа, хранимая в колонке profile
type characterProfile struct {
	Personality          string   `json:"personality,omitempty"`
	SpeakingStyle        string   `json:"speaking_style,omitempty"`
	VoiceCharacteristics string   `json:"voice_characteristics,omitempty"`
	EmotionalRange       []string `json:"emotional_range,omitempty"`
	TypicalPhrases       []string `json:"typical_phrases,omitempty"`
	Background           string   `json:"background,omitempty"`
}

const characterColumns = `slug, name, description, voice_id, personality_traits, voice_settings, profile, created_at`

// characterRepository реализует CharacterRepository
type characterRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewCharacterRepository создает новый репозиторий персонажей
func NewCharacterRepository(db DBTX, logger *zap.Logger) CharacterRepository {
	return &characterRepository{
		db:     db,
		logger: logger,
	}
}

// Create сохраняет персонажа; повторное создание с тем же slug обновляет запись
func (r *characterRepository) Create(ctx context.Context, c *models.Character) error {
	query := `
		INSERT INTO characters (slug, name, description, voice_id, personality_traits, voice_settings, profile)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (slug) DO UPDATE
		SET name = EXCLUDED.name,
		    description = EXCLUDED.description,
		    voice_id = EXCLUDED.voice_id,
		    personality_traits = EXCLUDED.personality_traits,
		    voice_settings = EXCLUDED.voice_settings,
		    profile = EXCLUDED.profile
		RETURNING created_at`

	traits, err := json.Marshal(nonNil(c.PersonalityTraits))
	if err != nil {
		return fmt.Errorf("ошибка сериализации черт персонажа: %w", err)
	}
	settings, err := json.Marshal(c.VoiceSettings)
	if err != nil {
		return fmt.Errorf("ошибка сериализации настроек голоса: %w", err)
	}
	profile, err := json.Marshal(characterProfile{
		Personality:          c.Personality,
		SpeakingStyle:        c.SpeakingStyle,
		VoiceCharacteristics: c.VoiceCharacteristics,
		EmotionalRange:       c.EmotionalRange,
		TypicalPhrases:       c.TypicalPhrases,
		Background:           c.Background,
	})
	if err != nil {
		return fmt.Errorf("ошибка сериализации профиля персонажа: %w", err)
	}

	err = r.db.QueryRow(ctx, query,
		c.ID, c.Name, c.Description, c.VoiceID, traits, settings, profile,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка сохранения персонажа: %w", err)
	}

	r.logger.Info("персонаж сохранен",
		zap.String("character_id", c.ID),
		zap.String("name", c.Name))
	return nil
}

// GetBySlug получает персонажа по идентификатору
func (r *characterRepository) GetBySlug(ctx context.Context, slug string) (*models.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters WHERE slug = $1`

	c, err := scanCharacter(r.db.QueryRow(ctx, query, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCharacterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения персонажа %s: %w", slug, err)
	}
	return c, nil
}

// List возвращает всех пользовательских персонажей в порядке создания
func (r *characterRepository) List(ctx context.Context) ([]*models.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка персонажей: %w", err)
	}
	defer rows.Close()

	var characters []*models.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования персонажа: %w", err)
		}
		characters = append(characters, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации по персонажам: %w", err)
	}

	return characters, nil
}

func scanCharacter(row pgx.Row) (*models.Character, error) {
	var (
		c                         models.Character
		traits, settings, profile []byte
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.VoiceID, &traits, &settings, &profile, &c.CreatedAt); err != nil {
		return nil, err
	}

	if len(traits) > 0 {
		if err := json.Unmarshal(traits, &c.PersonalityTraits); err != nil {
			return nil, fmt.Errorf("некорректные черты персонажа: %w", err)
		}
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &c.VoiceSettings); err != nil {
			return nil, fmt.Errorf("некорректные настройки голоса: %w", err)
		}
	}
	if len(profile) > 0 {
		var p characterProfile
		if err := json.Unmarshal(profile, &p); err != nil {
			return nil, fmt.Errorf("некорректный профиль персонажа: %w", err)
		}
		c.Personality = p.Personality
		c.SpeakingStyle = p.SpeakingStyle
		c.VoiceCharacteristics = p.VoiceCharacteristics
		c.EmotionalRange = p.EmotionalRange
		c.TypicalPhrases = p.TypicalPhrases
		c.Background = p.Background
	}

	return &c, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

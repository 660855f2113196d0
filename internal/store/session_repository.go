package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voiceforge/pkg/models"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Лимиты выборки последних сессий
const (
	DefaultSessionsLimit = 20
	MaxSessionsLimit     = 100
)

const sessionColumns = `id, session_id, character_id, text, emotion, confidence, audio_url, duration_seconds, created_at`

// sessionRepository реализует SessionRepository
type sessionRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewSessionRepository создает новый репозиторий голосовых сессий
func NewSessionRepository(db DBTX, logger *zap.Logger) SessionRepository {
	return &sessionRepository{
		db:     db,
		logger: logger,
	}
}

// Create сохраняет сгенерированную реплику
func (r *sessionRepository) Create(ctx context.Context, s *models.VoiceSession) error {
	query := `
		INSERT INTO voice_sessions (session_id, character_id, text, emotion, confidence, audio_url, duration_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		s.SessionID, s.CharacterID, s.Text, s.Emotion, s.Confidence, s.AudioURL, s.DurationSeconds,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания голосовой сессии: %w", err)
	}

	r.logger.Debug("создана голосовая сессия",
		zap.Int64("id", s.ID),
		zap.String("session_id", s.SessionID),
		zap.String("character_id", s.CharacterID),
		zap.String("emotion", s.Emotion))
	return nil
}

// GetBySessionID получает сессию по внешнему идентификатору
func (r *sessionRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.VoiceSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM voice_sessions WHERE session_id = $1`

	s, err := scanSession(r.db.QueryRow(ctx, query, sessionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения голосовой сессии: %w", err)
	}
	return s, nil
}

// ListRecent возвращает последние сессии, новые первыми
func (r *sessionRepository) ListRecent(ctx context.Context, limit int) ([]*models.VoiceSession, error) {
	if limit <= 0 {
		limit = DefaultSessionsLimit
	}
	if limit > MaxSessionsLimit {
		limit = MaxSessionsLimit
	}

	query := `SELECT ` + sessionColumns + ` FROM voice_sessions ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения голосовых сессий: %w", err)
	}
	defer rows.Close()

	sessions := make([]*models.VoiceSession, 0, limit)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования голосовой сессии: %w", err)
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации по голосовым сессиям: %w", err)
	}

	return sessions, nil
}

// CountOlderThan считает сессии, созданные раньше cutoff
func (r *sessionRepository) CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM voice_sessions WHERE created_at < $1`, cutoff).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета старых сессий: %w", err)
	}
	return count, nil
}

// DeleteOlderThan удаляет сессии, созданные раньше cutoff
func (r *sessionRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM voice_sessions WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления старых сессий: %w", err)
	}

	deleted := result.RowsAffected()
	if deleted > 0 {
		r.logger.Info("удалены старые голосовые сессии",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff))
	}
	return deleted, nil
}

func scanSession(row pgx.Row) (*models.VoiceSession, error) {
	var s models.VoiceSession
	err := row.Scan(&s.ID, &s.SessionID, &s.CharacterID, &s.Text, &s.Emotion,
		&s.Confidence, &s.AudioURL, &s.DurationSeconds, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

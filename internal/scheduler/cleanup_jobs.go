package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// AudioCleaner удаляет старые аудио файлы сверх лимита
type AudioCleaner interface {
	CleanupOldFiles(maxFiles int) (int, error)
}

// AudioCleanupJob держит каталог сгенерированного аудио в пределах лимита
type AudioCleanupJob struct {
	cleaner  AudioCleaner
	maxFiles int
	logger   *zap.Logger
}

// NewAudioCleanupJob создает джобу очистки аудио
func NewAudioCleanupJob(cleaner AudioCleaner, maxFiles int, logger *zap.Logger) *AudioCleanupJob {
	return &AudioCleanupJob{
		cleaner:  cleaner,
		maxFiles: maxFiles,
		logger:   logger,
	}
}

func (j *AudioCleanupJob) Name() string { return "audio_cleanup" }

// Run удаляет самые старые файлы
func (j *AudioCleanupJob) Run(ctx context.Context) error {
	removed, err := j.cleaner.CleanupOldFiles(j.maxFiles)
	if err != nil {
		return fmt.Errorf("ошибка очистки аудио файлов: %w", err)
	}

	if removed > 0 {
		j.logger.Info("🧹 очищены старые аудио файлы",
			zap.Int("removed", removed),
			zap.Int("max_files", j.maxFiles))
	}
	return nil
}

// SessionPruner удаляет устаревшие голосовые сессии
type SessionPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SessionRetentionJob удаляет записи журнала сессий старше retention
type SessionRetentionJob struct {
	sessions  SessionPruner
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// NewSessionRetentionJob создает джобу очистки журнала; days <= 0 отключает удаление
func NewSessionRetentionJob(sessions SessionPruner, days int, logger *zap.Logger) *SessionRetentionJob {
	return &SessionRetentionJob{
		sessions:  sessions,
		retention: time.Duration(days) * 24 * time.Hour,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *SessionRetentionJob) Name() string { return "session_retention" }

// Run удаляет устаревшие сессии
func (j *SessionRetentionJob) Run(ctx context.Context) error {
	if j.retention <= 0 {
		return nil
	}

	cutoff := j.now().Add(-j.retention)
	deleted, err := j.sessions.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("ошибка удаления старых сессий: %w", err)
	}

	j.logger.Info("удалены устаревшие голосовые сессии",
		zap.Int64("deleted", deleted),
		zap.Time("cutoff", cutoff))
	return nil
}

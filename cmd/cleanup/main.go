package main

import (
	"context"
	"flag"
	"log"
	"time"

	"voiceforge/internal/config"
	"voiceforge/internal/store"
	"voiceforge/internal/tts"

	"go.uber.org/zap"
)

func main() {
	var (
		keepFiles = flag.Int("keep", 0, "Количество аудио файлов для сохранения (0 = TTS_MAX_FILES)")
		days      = flag.Int("days", 0, "Удалить голосовые сессии старше N дней (0 = SESSION_RETENTION_DAYS)")
		dryRun    = flag.Bool("dry-run", false, "Показать что будет удалено без фактического удаления")
	)
	flag.Parse()

	// Инициализация логгера
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Ошибка инициализации логгера:", err)
	}
	defer logger.Sync()

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Ошибка загрузки конфигурации", zap.Error(err))
	}

	if *keepFiles <= 0 {
		*keepFiles = cfg.TTS.MaxFiles
	}
	if *days <= 0 {
		*days = cfg.Scheduler.SessionRetentionDays
	}

	removed, err := tts.CleanupAudioDir(cfg.TTS.AudioDir, *keepFiles, *dryRun, logger)
	if err != nil {
		logger.Fatal("Ошибка очистки аудио файлов", zap.Error(err))
	}
	logger.Info("Очистка аудио файлов завершена",
		zap.String("dir", cfg.TTS.AudioDir),
		zap.Int("keep", *keepFiles),
		zap.Int("removed", removed),
		zap.Bool("dry_run", *dryRun))

	if !cfg.Database.Enabled || *days <= 0 {
		logger.Info("Очистка журнала сессий пропущена",
			zap.Bool("db_enabled", cfg.Database.Enabled),
			zap.Int("days", *days))
		return
	}

	// Подключение к базе данных
	db, err := store.NewStore(cfg, logger)
	if err != nil {
		logger.Fatal("Ошибка подключения к базе данных", zap.Error(err))
	}
	defer db.Close()

	if err := cleanupSessions(context.Background(), db.Session(), *days, *dryRun, logger); err != nil {
		logger.Fatal("Ошибка очистки голосовых сессий", zap.Error(err))
	}

	logger.Info("Очистка завершена успешно")
}

func cleanupSessions(ctx context.Context, sessions store.SessionRepository, days int, dryRun bool, logger *zap.Logger) error {
	cutoff := time.Now().AddDate(0, 0, -days)

	if dryRun {
		count, err := sessions.CountOlderThan(ctx, cutoff)
		if err != nil {
			return err
		}
		logger.Info("DRY RUN: Будет удалено голосовых сессий",
			zap.Int64("count", count),
			zap.Time("cutoff", cutoff))
		return nil
	}

	deleted, err := sessions.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}

	logger.Info("Удалены голосовые сессии",
		zap.Int64("deleted_count", deleted),
		zap.Int("days", days))
	return nil
}

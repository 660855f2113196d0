package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"voiceforge/internal/ai"
	"voiceforge/internal/api"
	"voiceforge/internal/character"
	"voiceforge/internal/config"
	"voiceforge/internal/emotion"
	"voiceforge/internal/metrics"
	"voiceforge/internal/migrations"
	"voiceforge/internal/scheduler"
	"voiceforge/internal/store"
	"voiceforge/internal/studio"
	"voiceforge/internal/tts"
	"voiceforge/internal/ws"

	"go.uber.org/zap"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера
	logger, err := initLogger(cfg.App)
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("🎭 запуск VoiceForge",
		zap.String("env", cfg.App.Env),
		zap.String("version", api.Version))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsSystem := metrics.New(logger)
	metricsHandler := metrics.NewHandler(metricsSystem, logger)
	metricsHandler.Register("api", metrics.Always)

	// База данных опциональна: без нее работают только встроенные персонажи
	var db store.Store
	if cfg.Database.Enabled {
		db, err = store.NewStore(cfg, logger)
		if err != nil {
			logger.Fatal("ошибка инициализации базы данных", zap.Error(err))
		}
		defer db.Close()

		if err := migrations.RunMigrations(cfg, logger); err != nil {
			logger.Fatal("ошибка применения миграций", zap.Error(err))
		}
		if cfg.App.IsDevelopment() {
			if err := migrations.GetMigrationStatus(cfg, logger); err != nil {
				logger.Warn("не удалось получить статус миграций", zap.Error(err))
			}
		}

		metricsHandler.Register("database", func(ctx context.Context) bool {
			return db.Ping(ctx) == nil
		})
	} else {
		logger.Info("база данных отключена, журнал сессий не ведется")
	}

	// Движок эмоций
	emotionEngine, err := emotion.NewEngine(logger, emotion.WithRecorder(metricsSystem))
	if err != nil {
		logger.Fatal("ошибка инициализации анализатора эмоций", zap.Error(err))
	}
	metricsHandler.Register("emotion_analyzer", metrics.Always)

	// Синтез речи
	provider, err := newTTSProvider(cfg.TTS, logger)
	if err != nil {
		logger.Fatal("ошибка инициализации TTS провайдера", zap.Error(err))
	}
	audioDir := cfg.TTS.AudioDir
	voiceEngine, err := tts.NewVoiceEngine(provider, audioDir, cfg.App.ServerURL, logger,
		tts.WithRecorder(metricsSystem))
	if err != nil {
		logger.Fatal("ошибка инициализации движка синтеза", zap.Error(err))
	}
	metricsHandler.Register("voice_engine", metrics.Always)

	// AI для генерации реплик и профилей
	logger.Info("конфигурация AI",
		zap.String("provider", cfg.AI.ResolveProvider()),
		zap.String("model", cfg.AI.ModelFor(cfg.AI.ResolveProvider())))

	aiClient, err := ai.NewAIClient(ctx, &cfg.AI, logger)
	if err != nil {
		logger.Fatal("ошибка создания AI клиента", zap.Error(err))
	}

	var (
		characterRepo store.CharacterRepository
		sessionWriter studio.SessionWriter
		sessionLister api.SessionLister
	)
	if db != nil {
		characterRepo = db.Character()
		sessionWriter = db.Session()
		sessionLister = db.Session()
	}

	characters := character.NewService(aiClient, characterRepo, logger,
		character.WithRecorder(metricsSystem),
		character.WithGeneration(cfg.AI.Temperature, cfg.AI.MaxTokens))
	// без ключа персонажи отвечают заглушками, это не деградация
	metricsHandler.Register("character_ai", metrics.Always)
	logger.Info("🎭 сервис персонажей готов", zap.Bool("ai_enabled", characters.AIEnabled()))
	studioService := studio.NewService(emotionEngine, voiceEngine, characters, sessionWriter, logger)

	// WebSocket сессии
	wsManager := ws.NewManager(metricsSystem, logger)
	wsHandler := ws.NewHandler(wsManager, studioService, characters, cfg.WebSocket, cfg.App.AllowedOrigins, logger)

	server := api.NewServer(api.Dependencies{
		Studio:         studioService,
		Characters:     characters,
		Voices:         voiceEngine,
		Sessions:       sessionLister,
		Health:         metricsHandler.HealthHandler,
		Metrics:        metricsHandler.MetricsHandler(),
		WebSocket:      wsHandler,
		StaticDir:      cfg.App.StaticDir,
		AllowedOrigins: cfg.App.AllowedOrigins,
	}, logger)

	// Фоновые задачи
	taskScheduler := scheduler.NewScheduler(logger)
	taskScheduler.AddJob(scheduler.NewAudioCleanupJob(voiceEngine, cfg.TTS.MaxFiles, logger))
	if db != nil {
		taskScheduler.AddJob(scheduler.NewSessionRetentionJob(db.Session(), cfg.Scheduler.SessionRetentionDays, logger))
	}
	go taskScheduler.Start(ctx, cfg.Scheduler.CleanupInterval)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("🎵 HTTP сервер запущен",
			zap.String("address", cfg.App.ServerURL),
			zap.String("tts_provider", voiceEngine.ProviderName()),
			zap.String("audio_dir", filepath.Clean(audioDir)))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ошибка HTTP сервера", zap.Error(err))
		}
	}()

	// Ожидание сигнала завершения
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("получен сигнал завершения, начинаем graceful shutdown")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Hijacked WebSocket соединения Shutdown не закрывает
	wsManager.CloseAll()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("ошибка при остановке HTTP сервера", zap.Error(err))
	}

	logger.Info("приложение завершено")
}

// initLogger инициализирует логгер
func initLogger(app config.AppConfig) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if app.IsProduction() {
		cfg = zap.NewProductionConfig()
	}
	cfg.OutputPaths = []string{"stdout", "logs/app.log"}
	cfg.ErrorOutputPaths = []string{"stderr", "logs/error.log"}

	cfg.Level = app.GetLogLevel()

	// Создаем директорию для логов если её нет
	if err := os.MkdirAll("logs", 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории логов: %w", err)
	}

	return cfg.Build()
}

// newTTSProvider выбирает провайдера синтеза по конфигурации
func newTTSProvider(cfg config.TTSConfig, logger *zap.Logger) (tts.TTSService, error) {
	switch provider := cfg.ResolveProvider(); provider {
	case config.ProviderMurf:
		return tts.NewMurfService(logger, cfg.Murf.APIKey, cfg.Murf.BaseURL, cfg.Timeout), nil
	case config.ProviderYandex:
		service, err := tts.NewYandexService(logger, cfg.Yandex.APIKey, cfg.Yandex.FolderID)
		if err != nil {
			return nil, err
		}
		return service, nil
	case config.ProviderPiper:
		return tts.NewPiperService(logger, cfg.Piper.BaseURL, cfg.Timeout), nil
	case config.ProviderMock:
		logger.Warn("TTS провайдер не настроен, используется тональная заглушка")
		return tts.NewMockService(), nil
	default:
		return nil, fmt.Errorf("неподдерживаемый TTS провайдер: %s", provider)
	}
}

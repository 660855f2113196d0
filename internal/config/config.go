package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config содержит все конфигурационные параметры приложения
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	TTS       TTSConfig
	AI        AIConfig
	WebSocket WebSocketConfig
	Scheduler SchedulerConfig
}

type AppConfig struct {
	Env            string
	LogLevel       string
	Port           int
	ServerURL      string
	AllowedOrigins []string
	StaticDir      string
}

type DatabaseConfig struct {
	Enabled       bool
	Host          string
	Port          int
	User          string
	Password      string
	Name          string
	SSLMode       string
	MigrationPath string
}

// TTSConfig содержит настройки синтеза речи
type TTSConfig struct {
	Provider string // auto, murf, piper, yandex, mock
	AudioDir string
	MaxFiles int
	Timeout  time.Duration
	Murf     MurfConfig
	Piper    PiperConfig
	Yandex   YandexConfig
}

type MurfConfig struct {
	APIKey  string
	BaseURL string
}

type PiperConfig struct {
	BaseURL string
}

type YandexConfig struct {
	APIKey   string
	FolderID string
}

// AIConfig содержит настройки AI провайдеров для генерации реплик
type AIConfig struct {
	Provider    string // auto, gemini, openai, openrouter, mock
	Model       string // пусто - модель по умолчанию для провайдера
	MaxTokens   int
	Temperature float64
	Gemini      GeminiConfig
	OpenAI      OpenAIConfig
	OpenRouter  OpenRouterConfig
}

type GeminiConfig struct {
	APIKey  string
	BaseURL string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
}

type OpenRouterConfig struct {
	APIKey   string
	SiteURL  string
	SiteName string
}

// WebSocketConfig содержит настройки WebSocket сессий
type WebSocketConfig struct {
	ReadLimit    int64
	PingInterval time.Duration
	WriteTimeout time.Duration
}

// SchedulerConfig содержит настройки фоновых задач
type SchedulerConfig struct {
	CleanupInterval      time.Duration
	SessionRetentionDays int
}

// Провайдеры
const (
	ProviderAuto       = "auto"
	ProviderMock       = "mock"
	ProviderMurf       = "murf"
	ProviderPiper      = "piper"
	ProviderYandex     = "yandex"
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
)

// Load загружает конфигурацию из переменных окружения и .env
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	// App
	cfg.App.Env = getEnvDefault("APP_ENV", "development")
	cfg.App.LogLevel = getEnvDefault("LOG_LEVEL", "info")
	cfg.App.Port = getEnvIntDefault("APP_PORT", 8000)
	cfg.App.ServerURL = strings.TrimRight(getEnvDefault("SERVER_URL", fmt.Sprintf("http://localhost:%d", cfg.App.Port)), "/")
	cfg.App.AllowedOrigins = getEnvListDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000"})
	cfg.App.StaticDir = getEnvDefault("STATIC_DIR", "static")

	// Database
	cfg.Database.Enabled = getEnvBoolDefault("DB_ENABLED", false)
	cfg.Database.Host = getEnvDefault("DB_HOST", "localhost")
	cfg.Database.Port = getEnvIntDefault("DB_PORT", 5432)
	cfg.Database.User = os.Getenv("DB_USER")
	cfg.Database.Password = os.Getenv("DB_PASSWORD")
	cfg.Database.Name = getEnvDefault("DB_NAME", "voiceforge")
	cfg.Database.SSLMode = getEnvDefault("DB_SSL_MODE", "disable")
	cfg.Database.MigrationPath = getEnvDefault("MIGRATION_PATH", "scripts/migrations")

	// TTS
	cfg.TTS.Provider = strings.ToLower(getEnvDefault("TTS_PROVIDER", ProviderAuto))
	cfg.TTS.AudioDir = getEnvDefault("TTS_AUDIO_DIR", cfg.App.StaticDir+"/audio")
	cfg.TTS.MaxFiles = getEnvIntDefault("TTS_MAX_FILES", 50)
	cfg.TTS.Timeout = getEnvDurationDefault("TTS_TIMEOUT", 30*time.Second)
	cfg.TTS.Murf.APIKey = os.Getenv("MURF_API_KEY")
	cfg.TTS.Murf.BaseURL = getEnvDefault("MURF_BASE_URL", "https://api.murf.ai/v1")
	cfg.TTS.Piper.BaseURL = os.Getenv("PIPER_BASE_URL")
	cfg.TTS.Yandex.APIKey = os.Getenv("YANDEX_API_KEY")
	cfg.TTS.Yandex.FolderID = os.Getenv("YANDEX_FOLDER_ID")

	// AI
	cfg.AI.Provider = strings.ToLower(getEnvDefault("AI_PROVIDER", ProviderAuto))
	cfg.AI.Model = os.Getenv("AI_MODEL")
	cfg.AI.MaxTokens = getEnvIntDefault("AI_MAX_TOKENS", 400)
	cfg.AI.Temperature = getEnvFloatDefault("AI_TEMPERATURE", 0.8)
	cfg.AI.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	cfg.AI.Gemini.BaseURL = os.Getenv("GEMINI_BASE_URL")
	cfg.AI.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	cfg.AI.OpenAI.BaseURL = os.Getenv("OPENAI_BASE_URL")
	cfg.AI.OpenRouter.APIKey = os.Getenv("OPENROUTER_API_KEY")
	cfg.AI.OpenRouter.SiteURL = getEnvDefault("OPENROUTER_SITE_URL", cfg.App.ServerURL)
	cfg.AI.OpenRouter.SiteName = getEnvDefault("OPENROUTER_SITE_NAME", "VoiceForge")

	// WebSocket
	cfg.WebSocket.ReadLimit = int64(getEnvIntDefault("WS_READ_LIMIT", 64*1024))
	cfg.WebSocket.PingInterval = getEnvDurationDefault("WS_PING_INTERVAL", 20*time.Second)
	cfg.WebSocket.WriteTimeout = getEnvDurationDefault("WS_WRITE_TIMEOUT", 5*time.Second)

	// Scheduler
	cfg.Scheduler.CleanupInterval = getEnvDurationDefault("CLEANUP_INTERVAL", time.Hour)
	cfg.Scheduler.SessionRetentionDays = getEnvIntDefault("SESSION_RETENTION_DAYS", 30)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}

	return cfg, nil
}

func getEnvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvFloatDefault(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// getEnvListDefault читает список через запятую
func getEnvListDefault(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// validateConfig проверяет корректность конфигурации
func validateConfig(config *Config) error {
	if config.App.Port <= 0 || config.App.Port > 65535 {
		return fmt.Errorf("некорректный APP_PORT: %d", config.App.Port)
	}

	switch config.TTS.Provider {
	case ProviderAuto, ProviderMock:
	case ProviderMurf:
		if config.TTS.Murf.APIKey == "" {
			return fmt.Errorf("MURF_API_KEY не установлен")
		}
	case ProviderPiper:
		if config.TTS.Piper.BaseURL == "" {
			return fmt.Errorf("PIPER_BASE_URL не установлен")
		}
	case ProviderYandex:
		if config.TTS.Yandex.APIKey == "" || config.TTS.Yandex.FolderID == "" {
			return fmt.Errorf("YANDEX_API_KEY и YANDEX_FOLDER_ID должны быть установлены")
		}
	default:
		return fmt.Errorf("поддерживаются только TTS_PROVIDER: auto, murf, piper, yandex, mock")
	}

	switch config.AI.Provider {
	case ProviderAuto, ProviderMock:
	case ProviderGemini:
		if config.AI.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY не установлен")
		}
	case ProviderOpenAI:
		if config.AI.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY не установлен")
		}
	case ProviderOpenRouter:
		if config.AI.OpenRouter.APIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY не установлен")
		}
	default:
		return fmt.Errorf("поддерживаются только AI_PROVIDER: auto, gemini, openai, openrouter, mock")
	}

	if config.TTS.MaxFiles <= 0 {
		return fmt.Errorf("TTS_MAX_FILES должен быть положительным")
	}

	if config.Database.Enabled {
		if config.Database.Host == "" {
			return fmt.Errorf("DB_HOST не установлен")
		}
		if config.Database.User == "" {
			return fmt.Errorf("DB_USER не установлен")
		}
		if config.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD не установлен")
		}
		if config.Database.Name == "" {
			return fmt.Errorf("DB_NAME не установлен")
		}
	}

	return nil
}

// ResolveProvider выбирает провайдера синтеза: при auto - первый с настроенным ключом, иначе mock
func (c *TTSConfig) ResolveProvider() string {
	if c.Provider != ProviderAuto {
		return c.Provider
	}
	switch {
	case c.Murf.APIKey != "":
		return ProviderMurf
	case c.Yandex.APIKey != "" && c.Yandex.FolderID != "":
		return ProviderYandex
	case c.Piper.BaseURL != "":
		return ProviderPiper
	default:
		return ProviderMock
	}
}

// ResolveProvider выбирает AI провайдера: при auto - первый с настроенным ключом, иначе mock
func (c *AIConfig) ResolveProvider() string {
	if c.Provider != ProviderAuto {
		return c.Provider
	}
	switch {
	case c.Gemini.APIKey != "":
		return ProviderGemini
	case c.OpenAI.APIKey != "":
		return ProviderOpenAI
	case c.OpenRouter.APIKey != "":
		return ProviderOpenRouter
	default:
		return ProviderMock
	}
}

// ModelFor возвращает модель для провайдера с учетом AI_MODEL
func (c *AIConfig) ModelFor(provider string) string {
	if c.Model != "" {
		return c.Model
	}
	switch provider {
	case ProviderGemini:
		return "gemini-2.5-flash"
	case ProviderOpenRouter:
		return "deepseek/deepseek-r1-0528:free"
	default:
		return "gpt-4o-mini"
	}
}

// GetDSN возвращает строку подключения к базе данных
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// GetURL возвращает строку подключения в формате URL (для goose)
func (c *DatabaseConfig) GetURL() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// IsDevelopment проверяет, запущено ли приложение в режиме разработки
func (c *AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction проверяет, запущено ли приложение в продакшн режиме
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// GetLogLevel возвращает уровень логирования в формате zap
func (c *AppConfig) GetLogLevel() zap.AtomicLevel {
	switch c.LogLevel {
	case "debug":
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
}

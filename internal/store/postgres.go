package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voiceforge/internal/config"
	"voiceforge/pkg/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var (
	ErrCharacterNotFound = errors.New("персонаж не найден")
	ErrSessionNotFound   = errors.New("голосовая сессия не найдена")
)

// DBTX общий набор методов пула и транзакции pgx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store представляет интерфейс для работы с базой данных
type Store interface {
	Character() CharacterRepository
	Session() SessionRepository
	Ping(ctx context.Context) error
	DB() *pgxpool.Pool
	Close() error
}

// store реализует интерфейс Store
type store struct {
	db        *pgxpool.Pool
	logger    *zap.Logger
	character CharacterRepository
	session   SessionRepository
}

// CharacterRepository интерфейс для работы с пользовательскими персонажами
type CharacterRepository interface {
	Create(ctx context.Context, character *models.Character) error
	GetBySlug(ctx context.Context, slug string) (*models.Character, error)
	List(ctx context.Context) ([]*models.Character, error)
}

// SessionRepository интерфейс для работы с голосовыми сессиями
type SessionRepository interface {
	Create(ctx context.Context, session *models.VoiceSession) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.VoiceSession, error)
	ListRecent(ctx context.Context, limit int) ([]*models.VoiceSession, error)
	CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewStore создает новое подключение к базе данных
func NewStore(cfg *config.Config, logger *zap.Logger) (Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DSN: %w", err)
	}

	// Настройка пула
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка проверки подключения к базе данных: %w", err)
	}

	logger.Info("успешное подключение к базе данных PostgreSQL",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Name))

	return &store{
		db:        db,
		logger:    logger,
		character: NewCharacterRepository(db, logger),
		session:   NewSessionRepository(db, logger),
	}, nil
}

// Character возвращает репозиторий персонажей
func (s *store) Character() CharacterRepository {
	return s.character
}

// Session возвращает репозиторий голосовых сессий
func (s *store) Session() SessionRepository {
	return s.session
}

func (s *store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// DB возвращает подключение к базе данных
func (s *store) DB() *pgxpool.Pool {
	return s.db
}

// Close закрывает подключение к базе данных
func (s *store) Close() error {
	s.logger.Info("закрытие подключения к базе данных")
	s.db.Close()
	return nil
}

package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck сообщает, работает ли зависимость
type HealthCheck func(ctx context.Context) bool

// Handler обрабатывает HTTP запросы для метрик и здоровья
type Handler struct {
	metrics *Metrics
	logger  *zap.Logger

	mu       sync.RWMutex
	services map[string]HealthCheck
}

// NewHandler создает новый обработчик метрик
func NewHandler(metrics *Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		metrics:  metrics,
		logger:   logger,
		services: make(map[string]HealthCheck),
	}
}

// Register добавляет сервис в ответ /health
func (h *Handler) Register(name string, check HealthCheck) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.services[name] = check
}

// MetricsHandler возвращает HTTP handler для Prometheus метрик
func (h *Handler) MetricsHandler() http.Handler {
	return h.metrics.Handler()
}

// HealthResponse тело ответа /health
type HealthResponse struct {
	Status   string          `json:"status"`
	Services map[string]bool `json:"services"`
}

// HealthHandler возвращает статус здоровья сервиса
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	h.mu.RLock()
	checks := make(map[string]HealthCheck, len(h.services))
	for name, check := range h.services {
		checks[name] = check
	}
	h.mu.RUnlock()

	resp := HealthResponse{Status: "healthy", Services: make(map[string]bool, len(checks))}
	for name, check := range checks {
		ok := check(ctx)
		resp.Services[name] = ok
		if !ok {
			resp.Status = "degraded"
			h.logger.Warn("сервис не прошел проверку здоровья", zap.String("service", name))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("ошибка записи ответа health", zap.Error(err))
	}
}

// Always проверка для сервисов без внешних зависимостей
func Always(context.Context) bool { return true }

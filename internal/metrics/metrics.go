package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Значения метки status
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Metrics содержит все метрики приложения
type Metrics struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// Счетчики
	emotionAnalyses   *prometheus.CounterVec
	emotionCache      *prometheus.CounterVec
	speechGenerations *prometheus.CounterVec
	aiRequests        *prometheus.CounterVec
	wsMessages        *prometheus.CounterVec

	// Гистограммы
	speechDuration *prometheus.HistogramVec
	aiResponseTime *prometheus.HistogramVec

	// Gauge метрики
	wsConnections prometheus.Gauge
}

// New создает новый экземпляр метрик со своим реестром
func New(logger *zap.Logger) *Metrics {
	m := &Metrics{
		logger:   logger,
		registry: prometheus.NewRegistry(),

		emotionAnalyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emotion_analyses_total",
				Help: "Количество анализов эмоций по итоговой эмоции",
			},
			[]string{"emotion"},
		),

		emotionCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emotion_cache_total",
				Help: "Обращения к кэшу анализа эмоций",
			},
			[]string{"result"}, // hit, miss
		),

		speechGenerations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "speech_generations_total",
				Help: "Количество синтезов речи",
			},
			[]string{"provider", "status"},
		),

		aiRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_requests_total",
				Help: "Общее количество запросов к AI",
			},
			[]string{"type", "status"}, // type: create_character, dialogue, delivery
		),

		wsMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ws_messages_total",
				Help: "Входящие WebSocket сообщения по типу",
			},
			[]string{"type"},
		),

		speechDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "speech_generation_seconds",
				Help:    "Время синтеза речи в секундах",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"provider"},
		),

		aiResponseTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ai_response_time_seconds",
				Help:    "Время ответа AI в секундах",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),

		wsConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ws_active_connections",
				Help: "Количество открытых WebSocket соединений",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.emotionAnalyses,
		m.emotionCache,
		m.speechGenerations,
		m.aiRequests,
		m.wsMessages,
		m.speechDuration,
		m.aiResponseTime,
		m.wsConnections,
	)

	return m
}

// IncrementCounter увеличивает счетчик
func (m *Metrics) IncrementCounter(name string, labels ...string) {
	var counter *prometheus.CounterVec

	switch name {
	case "emotion_analyses_total":
		counter = m.emotionAnalyses
	case "emotion_cache_total":
		counter = m.emotionCache
	case "speech_generations_total":
		counter = m.speechGenerations
	case "ai_requests_total":
		counter = m.aiRequests
	case "ws_messages_total":
		counter = m.wsMessages
	default:
		m.logger.Error("неизвестная метрика", zap.String("name", name))
		return
	}

	c, err := counter.GetMetricWithLabelValues(labels...)
	if err != nil {
		m.logger.Error("некорректные метки метрики", zap.String("name", name), zap.Error(err))
		return
	}
	c.Inc()
}

// ObserveHistogram добавляет наблюдение в гистограмму
func (m *Metrics) ObserveHistogram(name string, value float64, labels ...string) {
	var histogram *prometheus.HistogramVec

	switch name {
	case "speech_generation_seconds":
		histogram = m.speechDuration
	case "ai_response_time_seconds":
		histogram = m.aiResponseTime
	default:
		m.logger.Error("неизвестная гистограмма", zap.String("name", name))
		return
	}

	h, err := histogram.GetMetricWithLabelValues(labels...)
	if err != nil {
		m.logger.Error("некорректные метки гистограммы", zap.String("name", name), zap.Error(err))
		return
	}
	h.Observe(value)
}

// RecordEmotionAnalysis записывает результат анализа эмоции
func (m *Metrics) RecordEmotionAnalysis(emotion string, cacheHit bool) {
	result := "miss"
	if cacheHit {
		result = "hit"
	}
	m.IncrementCounter("emotion_cache_total", result)
	m.IncrementCounter("emotion_analyses_total", emotion)
}

// RecordSpeechGeneration записывает попытку синтеза речи
func (m *Metrics) RecordSpeechGeneration(provider string, success bool, duration time.Duration) {
	m.IncrementCounter("speech_generations_total", provider, status(success))
	m.ObserveHistogram("speech_generation_seconds", duration.Seconds(), provider)
}

// RecordAIRequest записывает запрос к AI
func (m *Metrics) RecordAIRequest(requestType string, success bool, duration time.Duration) {
	m.IncrementCounter("ai_requests_total", requestType, status(success))
	m.ObserveHistogram("ai_response_time_seconds", duration.Seconds(), requestType)
}

// RecordWSMessage записывает входящее WebSocket сообщение
func (m *Metrics) RecordWSMessage(messageType string) {
	m.IncrementCounter("ws_messages_total", messageType)
}

// WSConnected отмечает новое WebSocket соединение
func (m *Metrics) WSConnected() {
	m.wsConnections.Inc()
}

// WSDisconnected отмечает закрытие WebSocket соединения
func (m *Metrics) WSDisconnected() {
	m.wsConnections.Dec()
}

// Handler возвращает HTTP handler для метрик
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func status(success bool) string {
	if success {
		return StatusSuccess
	}
	return StatusFailed
}

package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"voiceforge/internal/config"
	"voiceforge/internal/studio"
	"voiceforge/internal/tts"
	"voiceforge/pkg/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	queueSize           = 8
	defaultPingInterval = 20 * time.Second
	defaultWriteTimeout = 5 * time.Second
)

// Speaker озвучивает реплику персонажа
type Speaker interface {
	Speak(ctx context.Context, text, characterID string) (*studio.SpeechOutcome, error)
}

// ProfileSource отдает профиль персонажа
type ProfileSource interface {
	GetProfile(ctx context.Context, characterID string) *models.Character
}

// Handler обслуживает /ws/{session_id}
type Handler struct {
	manager  *Manager
	speaker  Speaker
	profiles ProfileSource
	cfg      config.WebSocketConfig
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHandler создает обработчик WebSocket сессий
func NewHandler(manager *Manager, speaker Speaker, profiles ProfileSource, cfg config.WebSocketConfig, allowedOrigins []string, logger *zap.Logger) *Handler {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPingInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}

	h := &Handler{
		manager:  manager,
		speaker:  speaker,
		profiles: profiles,
		cfg:      cfg,
		logger:   logger,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r.Header.Get("Origin"), allowedOrigins)
		},
	}
	return h
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.PathValue("session_id"))
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ошибка установки WebSocket соединения",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return
	}

	client := h.manager.Connect(sessionID, conn, h.cfg.WriteTimeout)
	h.serve(r.Context(), client)
}

// serve читает сообщения до закрытия соединения. Озвучка выполняется
// в отдельной горутине, чтобы не блокировать чтение и ping/pong
func (h *Handler) serve(parent context.Context, client *Client) {
	ctx, cancel := context.WithCancel(parent)
	conn := client.conn

	queue := make(chan InboundMessage, queueSize)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		h.voiceWorker(ctx, client, queue)
	}()
	go func() {
		defer wg.Done()
		h.keepalive(ctx, client)
	}()

	defer func() {
		cancel()
		close(queue)
		wg.Wait()
		h.manager.Disconnect(client)
		_ = conn.Close()
	}()

	if h.cfg.ReadLimit > 0 {
		conn.SetReadLimit(h.cfg.ReadLimit)
	}
	pongWait := 2 * h.cfg.PingInterval
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket закрыт с ошибкой",
					zap.String("session_id", client.sessionID),
					zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg InboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.manager.record("invalid")
			h.logger.Error("некорректный JSON от клиента",
				zap.String("session_id", client.sessionID),
				zap.Error(err))
			h.send(client, errorMessage("Invalid JSON format"))
			continue
		}

		switch msg.Type {
		case TypeVoiceRequest:
			h.manager.record(msg.Type)
			select {
			case queue <- msg:
			default:
				h.send(client, errorMessage("Too many pending requests"))
			}
		case TypeCharacterSwitch:
			h.manager.record(msg.Type)
			h.switchCharacter(ctx, client, msg)
		default:
			h.manager.record("unknown")
			h.logger.Warn("неизвестный тип сообщения",
				zap.String("session_id", client.sessionID),
				zap.String("type", msg.Type))
		}
	}
}

func (h *Handler) voiceWorker(ctx context.Context, client *Client, queue <-chan InboundMessage) {
	for msg := range queue {
		if ctx.Err() != nil {
			continue
		}
		h.handleVoiceRequest(ctx, client, msg)
	}
}

func (h *Handler) handleVoiceRequest(ctx context.Context, client *Client, msg InboundMessage) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		h.send(client, errorMessage("Text is required"))
		return
	}

	h.logger.Info("генерация голоса по WebSocket",
		zap.String("session_id", client.sessionID),
		zap.String("character_id", msg.CharacterID))

	outcome, err := h.speaker.Speak(ctx, text, msg.CharacterID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, tts.ErrEmptyText) {
			h.send(client, errorMessage("Text is required"))
			return
		}
		h.send(client, errorMessage("Voice generation failed: "+err.Error()))
		return
	}

	h.send(client, VoiceResponse{
		Type:        TypeVoiceResponse,
		AudioURL:    outcome.AudioURL,
		Emotion:     outcome.Emotion,
		CharacterID: outcome.CharacterID,
		Text:        outcome.Text,
	})
}

func (h *Handler) switchCharacter(ctx context.Context, client *Client, msg InboundMessage) {
	characterID := strings.TrimSpace(msg.CharacterID)
	if characterID == "" {
		characterID = models.CharacterNarrator
	}

	profile := h.profiles.GetProfile(ctx, characterID)
	h.send(client, CharacterSwitched{Type: TypeCharacterSwitched, Character: profile})

	h.logger.Info("персонаж переключен",
		zap.String("session_id", client.sessionID),
		zap.String("character_id", characterID))
}

func (h *Handler) keepalive(ctx context.Context, client *Client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.ping(); err != nil {
				h.logger.Debug("ping не отправлен", zap.String("session_id", client.sessionID), zap.Error(err))
				return
			}
		}
	}
}

func (h *Handler) send(client *Client, v any) {
	if err := client.WriteJSON(v); err != nil {
		h.logger.Warn("ошибка отправки сообщения",
			zap.String("session_id", client.sessionID),
			zap.Error(err))
	}
}

package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var ErrSessionNotConnected = errors.New("сессия не подключена")

// Recorder принимает статистику WebSocket (метрики)
type Recorder interface {
	RecordWSMessage(messageType string)
	WSConnected()
	WSDisconnected()
}

// Client одно WebSocket соединение. Писать в gorilla/websocket можно только
// из одной горутины, поэтому все записи идут под writeMu
type Client struct {
	sessionID    string
	conn         *websocket.Conn
	writeTimeout time.Duration

	writeMu sync.Mutex
}

// SessionID возвращает идентификатор сессии клиента
func (c *Client) SessionID() string {
	return c.sessionID
}

// WriteJSON отправляет сообщение клиенту
func (c *Client) WriteJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

func (c *Client) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout))
}

func (c *Client) close() {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(c.writeTimeout))
	_ = c.conn.Close()
}

// Manager хранит активные соединения по идентификатору сессии
type Manager struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	recorder Recorder
	logger   *zap.Logger
}

// NewManager создает менеджер соединений; recorder может быть nil
func NewManager(recorder Recorder, logger *zap.Logger) *Manager {
	return &Manager{
		clients:  make(map[string]*Client),
		recorder: recorder,
		logger:   logger,
	}
}

// Connect регистрирует соединение. Старое соединение той же сессии закрывается
func (m *Manager) Connect(sessionID string, conn *websocket.Conn, writeTimeout time.Duration) *Client {
	client := &Client{sessionID: sessionID, conn: conn, writeTimeout: writeTimeout}

	m.mu.Lock()
	previous := m.clients[sessionID]
	m.clients[sessionID] = client
	m.mu.Unlock()

	if previous != nil {
		m.logger.Info("сессия переподключилась, закрываем старое соединение", zap.String("session_id", sessionID))
		previous.close()
	} else if m.recorder != nil {
		m.recorder.WSConnected()
	}

	m.logger.Info("WebSocket подключен", zap.String("session_id", sessionID))
	return client
}

// Disconnect удаляет соединение, если оно все еще текущее для сессии
func (m *Manager) Disconnect(client *Client) {
	m.mu.Lock()
	current, ok := m.clients[client.sessionID]
	if ok && current == client {
		delete(m.clients, client.sessionID)
	}
	m.mu.Unlock()

	if ok && current == client {
		if m.recorder != nil {
			m.recorder.WSDisconnected()
		}
		m.logger.Info("WebSocket отключен", zap.String("session_id", client.sessionID))
	}
}

// SendPersonal отправляет сообщение одной сессии
func (m *Manager) SendPersonal(sessionID string, v any) error {
	m.mu.RLock()
	client, ok := m.clients[sessionID]
	m.mu.RUnlock()
	if !ok {
		return ErrSessionNotConnected
	}
	return client.WriteJSON(v)
}

// Broadcast отправляет сообщение всем подключенным сессиям
func (m *Manager) Broadcast(v any) {
	m.mu.RLock()
	clients := make([]*Client, 0, len(m.clients))
	for _, c := range m.clients {
		clients = append(clients, c)
	}
	m.mu.RUnlock()

	for _, c := range clients {
		if err := c.WriteJSON(v); err != nil {
			m.logger.Warn("ошибка рассылки", zap.String("session_id", c.sessionID), zap.Error(err))
		}
	}
}

// Count возвращает число активных соединений
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// CloseAll закрывает все соединения при остановке сервера
func (m *Manager) CloseAll() {
	m.mu.Lock()
	clients := m.clients
	m.clients = make(map[string]*Client)
	m.mu.Unlock()

	for _, c := range clients {
		c.close()
		if m.recorder != nil {
			m.recorder.WSDisconnected()
		}
	}
	if len(clients) > 0 {
		m.logger.Info("закрыты все WebSocket соединения", zap.Int("count", len(clients)))
	}
}

func (m *Manager) record(messageType string) {
	if m.recorder != nil {
		m.recorder.RecordWSMessage(messageType)
	}
}

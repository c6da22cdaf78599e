package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/quizrunner/go/internal/game/events"
	"github.com/mcdev12/quizrunner/go/internal/game/listeners"
)

var errSendBufferFull = errors.New("send buffer full")

const (
	MessageSnapshot = "snapshot"
	MessageEvent    = "event"
)

// Message is what a WebSocket client receives. The first message on every
// connection is a snapshot; every later one carries a single event. Both are
// public views without player ids.
type Message struct {
	Type  string        `json:"type"`
	State *PublicState  `json:"state,omitempty"`
	Event *events.Event `json:"event,omitempty"`
}

// ConnectionManager manages WebSocket connections watching the game. Each
// connection is a listener in the registry under its own id.
type ConnectionManager struct {
	registry *listeners.Registry
	game     Game

	connections map[*Connection]struct{}
	mu          sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time

	done      chan struct{}
	closeOnce sync.Once
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBufferSize  int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBufferSize:  256,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

func NewConnectionManager(registry *listeners.Registry, game Game, config ConnectionConfig) *ConnectionManager {
	if config.SendBufferSize <= 0 {
		config.SendBufferSize = 256
	}
	return &ConnectionManager{
		registry:    registry,
		game:        game,
		connections: make(map[*Connection]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config: config,
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket, subscribes it
// to game events and queues the current snapshot. A client may see an event
// before the snapshot that already reflects it; the snapshot is authoritative.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Conn:        conn,
		Send:        make(chan []byte, cm.config.SendBufferSize),
		Manager:     cm,
		ConnectedAt: time.Now(),
		done:        make(chan struct{}),
	}

	cm.registerConnection(connection)
	cm.registry.Subscribe(connection.ID, connection.deliver)

	go connection.writePump()
	go connection.readPump()

	ctx, cancel := context.WithTimeout(r.Context(), cm.config.WriteTimeout)
	defer cancel()
	state, err := cm.game.Snapshot(ctx)
	if err != nil {
		log.Error().Err(err).Str("connection_id", connection.ID).Msg("failed to load snapshot for connection")
		connection.close()
		return nil
	}
	public := newPublicState(state)
	if err := connection.enqueue(Message{Type: MessageSnapshot, State: &public}); err != nil {
		log.Warn().Err(err).Str("connection_id", connection.ID).Msg("failed to queue snapshot")
	}

	log.Info().
		Str("connection_id", connection.ID).
		Str("remote", r.RemoteAddr).
		Msg("WebSocket connection established")

	return nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.connections[conn] = struct{}{}

	log.Debug().
		Str("connection_id", conn.ID).
		Int("total_connections", len(cm.connections)).
		Msg("connection registered")
}

func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, exists := cm.connections[conn]; exists {
		delete(cm.connections, conn)
		log.Info().Str("connection_id", conn.ID).Msg("connection unregistered")
	}
}

// ConnectionCount returns the number of open connections.
func (cm *ConnectionManager) ConnectionCount() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() map[string]int {
	return map[string]int{
		"total_connections": cm.ConnectionCount(),
		"listeners":         cm.registry.Len(),
	}
}

// CloseAll closes every open connection.
func (cm *ConnectionManager) CloseAll() {
	cm.mu.RLock()
	conns := make([]*Connection, 0, len(cm.connections))
	for c := range cm.connections {
		conns = append(conns, c)
	}
	cm.mu.RUnlock()

	for _, c := range conns {
		c.close()
	}
}

// deliver is the registry callback. A closed or slow connection reports
// itself gone so the registry drops it.
func (c *Connection) deliver(ev events.Event) error {
	select {
	case <-c.done:
		return listeners.ErrListenerGone
	default:
	}
	public, err := events.Redact(ev)
	if err != nil {
		log.Error().Err(err).Str("event_id", ev.ID).Msg("dropping event")
		return nil
	}
	if err := c.enqueue(Message{Type: MessageEvent, Event: &public}); err != nil {
		log.Warn().
			Err(err).
			Str("connection_id", c.ID).
			Msg("closing connection")
		c.close()
		return listeners.ErrListenerGone
	}
	return nil
}

func (c *Connection) enqueue(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	select {
	case c.Send <- data:
		return nil
	case <-c.done:
		return listeners.ErrListenerGone
	default:
		return errSendBufferFull
	}
}

func (c *Connection) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.Manager.registry.Unsubscribe(c.ID)
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	})
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump keeps the read deadline moving and notices when the client goes
// away. Clients have nothing to say; their messages are logged and dropped.
func (c *Connection) readPump() {
	defer c.close()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			return
		}

		log.Debug().
			Str("connection_id", c.ID).
			Int("bytes", len(message)).
			Msg("ignoring client message")
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}

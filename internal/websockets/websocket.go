package websockets

import (
	"context"
	"time"
	"topup/internal/events"
	"topup/internal/models"
	"topup/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	MESSAGE_TYPE_PING         = "ping"
	MESSAGE_TYPE_PONG         = "pong"
	MESSAGE_TYPE_NOTIFICATION = "notification"
	MESSAGE_TYPE_ERROR        = "error"
	PING_INTERVAL             = 30 * time.Second
	PONG_TIMEOUT              = 60 * time.Second
	WRITE_TIMEOUT             = 10 * time.Second
	MAX_MESSAGE_SIZE          = 64 * 1024
	SEND_CHANNEL_SIZE         = 64

	SYSTEM_CHANNEL = "system"
	USER_CHANNEL   = "user"
)

type Message struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Channel   string         `json:"channel,omitempty"`
	Action    string         `json:"action,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Authenticator resolves a session token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, *services.SessionClaims, error)
}

type Subscriber interface {
	Subscribe(channel events.Channel, handler events.EventHandler) error
}

type Client struct {
	ID         string
	UserID     uuid.UUID
	Connection *websocket.Conn
	Manager    *Manager
	Status     int
	send       chan Message
}

type Manager struct {
	hub  *Hub
	auth Authenticator
	log  logger.Logger
}

func New(auth Authenticator, eventBus Subscriber) (*Manager, error) {
	log := logger.New("websockets")

	manager := newManager(auth, log)

	log.Function("New").Info("Starting websocket hub")
	go manager.hub.run(manager)

	if eventBus != nil {
		if err := eventBus.Subscribe(events.NOTIFICATION_CHANNEL, manager.handleNotificationEvent); err != nil {
			return nil, log.Err("failed to subscribe to notification events", err)
		}
	}

	return manager, nil
}

func newManager(auth Authenticator, log logger.Logger) *Manager {
	return &Manager{
		hub: &Hub{
			register:   make(chan *Client),
			unregister: make(chan *Client),
			clients:    make(map[string]*Client),
		},
		auth: auth,
		log:  log,
	}
}

// HandleWebSocket runs one connection until it closes. The client must
// answer the auth request before anything is pushed to it.
func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")

	client := &Client{
		ID:         uuid.New().String(),
		UserID:     uuid.Nil,
		Connection: c,
		Manager:    m,
		Status:     STATUS_UNAUTHENTICATED,
		send:       make(chan Message, SEND_CHANNEL_SIZE),
	}

	if err := client.sendAuthRequest(); err != nil {
		if err := c.Close(); err != nil {
			log.Er("failed to close connection", err)
		}
		return
	}

	m.hub.register <- client
	client.startAuthTimeout()

	go client.readPump()
	client.writePump()
}

// handleNotificationEvent pushes a stored notification to every socket its
// recipient has open on this instance.
func (m *Manager) handleNotificationEvent(event events.Event) error {
	log := m.log.Function("handleNotificationEvent")

	switch event.Type {
	case events.NOTIFICATION_CREATED:
		if event.UserID == nil {
			log.Warn("Notification event without recipient", "eventID", event.ID)
			return nil
		}
		m.SendMessageToUser(*event.UserID, Message{
			ID:        event.ID,
			Type:      MESSAGE_TYPE_NOTIFICATION,
			Channel:   USER_CHANNEL,
			Action:    string(event.Type),
			UserID:    event.UserID.String(),
			Data:      event.Data,
			Timestamp: event.Timestamp,
		})
	case events.NOTIFICATIONS_PURGED:
		m.sendToAuthenticatedClients(Message{
			ID:        event.ID,
			Type:      MESSAGE_TYPE_NOTIFICATION,
			Channel:   SYSTEM_CHANNEL,
			Action:    string(event.Type),
			Timestamp: event.Timestamp,
		})
	default:
		log.Debug("Ignoring notification event", "eventID", event.ID, "type", event.Type)
	}

	return nil
}

func (c *Client) readPump() {
	log := c.Manager.log.Function("readPump")
	defer func() {
		c.Manager.hub.unregister <- c
		_ = c.Connection.Close()
	}()

	c.Connection.SetReadLimit(MAX_MESSAGE_SIZE)
	if err := c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT)); err != nil {
		log.Er("failed to set read deadline", err, "clientID", c.ID)
	}
	c.Connection.SetPongHandler(func(string) error {
		if err := c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT)); err != nil {
			log.Er("failed to set read deadline in pong handler", err, "clientID", c.ID)
		}
		return nil
	})

	for {
		var message Message
		if err := c.Connection.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				log.Er("Unexpected close error", err, "clientID", c.ID)
			}
			break
		}

		message.ID = uuid.New().String()
		message.Timestamp = time.Now()

		c.routeMessage(message)
	}
}

func (c *Client) routeMessage(message Message) {
	log := c.Manager.log.Function("routeMessage")

	if message.Type == AUTH_RESPONSE {
		c.handleAuthResponse(message)
		return
	}

	if !c.Manager.hub.isAuthenticated(c) {
		c.handleUnauthenticatedMessage(message)
		return
	}

	switch message.Type {
	case MESSAGE_TYPE_PING:
		c.trySend(Message{
			ID:        uuid.New().String(),
			Type:      MESSAGE_TYPE_PONG,
			Channel:   SYSTEM_CHANNEL,
			Timestamp: time.Now(),
		})
	default:
		log.Warn("Unknown message type", "type", message.Type, "clientID", c.ID)
	}
}

// trySend queues message without blocking. It reports false when the
// client's buffer is full or already closed.
func (c *Client) trySend(message Message) (sent bool) {
	defer func() {
		if recover() != nil {
			sent = false
		}
	}()

	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) writePump() {
	log := c.Manager.log.Function("writePump")

	ticker := time.NewTicker(PING_INTERVAL)
	defer func() {
		ticker.Stop()
		_ = c.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline", err, "clientID", c.ID)
			}
			if !ok {
				_ = c.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Connection.WriteJSON(message); err != nil {
				log.Er("WebSocket write error", err, "clientID", c.ID, "messageID", message.ID)
				return
			}

		case <-ticker.C:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline for ping", err, "clientID", c.ID)
			}
			if err := c.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package websockets

import (
	"sync"

	"github.com/google/uuid"
)

const (
	STATUS_UNAUTHENTICATED = iota
	STATUS_AUTHENTICATED
)

type Hub struct {
	register   chan *Client
	unregister chan *Client
	clients    map[string]*Client
	mutex      sync.RWMutex
}

func (h *Hub) run(m *Manager) {
	for {
		select {
		case client := <-h.register:
			m.registerClient(client)
		case client := <-h.unregister:
			m.unregisterClient(client)
		}
	}
}

func (m *Manager) registerClient(client *Client) {
	log := m.log.Function("registerClient")

	m.hub.mutex.Lock()
	m.hub.clients[client.ID] = client
	m.hub.mutex.Unlock()

	log.Debug("Client registered", "clientID", client.ID)
}

// unregisterClient is safe to call more than once per client; only the first
// call closes its send channel.
func (m *Manager) unregisterClient(client *Client) {
	log := m.log.Function("unregisterClient")

	m.hub.mutex.Lock()
	_, known := m.hub.clients[client.ID]
	if known {
		delete(m.hub.clients, client.ID)
		close(client.send)
	}
	m.hub.mutex.Unlock()

	if known {
		log.Info("Client unregistered", "clientID", client.ID, "userID", client.UserID)
	}
}

func (h *Hub) authenticate(client *Client, userID uuid.UUID) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	client.UserID = userID
	client.Status = STATUS_AUTHENTICATED
}

func (h *Hub) isAuthenticated(client *Client) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return client.Status == STATUS_AUTHENTICATED
}

// SendMessageToUser queues message on every authenticated connection of
// userID. A connection whose buffer is full is dropped.
func (m *Manager) SendMessageToUser(userID uuid.UUID, message Message) int {
	log := m.log.Function("SendMessageToUser")

	m.hub.mutex.RLock()
	var sent int
	var slow []*Client
	for _, client := range m.hub.clients {
		if client.Status != STATUS_AUTHENTICATED || client.UserID != userID {
			continue
		}
		if client.trySend(message) {
			sent++
		} else {
			slow = append(slow, client)
		}
	}
	m.hub.mutex.RUnlock()

	m.dropSlow(slow)

	if sent > 0 {
		log.Debug("Message sent to user connections", "userID", userID, "messageID", message.ID, "sentTo", sent)
	}
	return sent
}

func (m *Manager) sendToAuthenticatedClients(message Message) int {
	m.hub.mutex.RLock()
	var sent int
	var slow []*Client
	for _, client := range m.hub.clients {
		if client.Status != STATUS_AUTHENTICATED {
			continue
		}
		if client.trySend(message) {
			sent++
		} else {
			slow = append(slow, client)
		}
	}
	m.hub.mutex.RUnlock()

	m.dropSlow(slow)
	return sent
}

func (m *Manager) dropSlow(clients []*Client) {
	log := m.log.Function("dropSlow")

	for _, client := range clients {
		log.Warn("Client too slow, disconnecting", "clientID", client.ID, "userID", client.UserID)
		go func(c *Client) { m.hub.unregister <- c }(client)
	}
}

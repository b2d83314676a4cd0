package websockets

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	AUTH_REQUEST           = "auth_request"
	AUTH_RESPONSE          = "auth_response"
	AUTH_SUCCESS           = "auth_success"
	AUTH_FAILURE           = "auth_failure"
	AUTH_HANDSHAKE_TIMEOUT = 10 * time.Second
	AUTH_VALIDATE_TIMEOUT  = 5 * time.Second
)

// startAuthTimeout closes the connection if the client has not
// authenticated within the handshake window.
func (c *Client) startAuthTimeout() {
	log := c.Manager.log.Function("startAuthTimeout")

	time.AfterFunc(AUTH_HANDSHAKE_TIMEOUT, func() {
		if c.Manager.hub.isAuthenticated(c) {
			return
		}

		log.Warn("Client failed to authenticate within timeout, disconnecting",
			"clientID", c.ID,
			"timeout", AUTH_HANDSHAKE_TIMEOUT)

		c.trySend(authMessage(AUTH_FAILURE, "authentication_timeout", map[string]any{
			"reason": "Authentication timeout",
		}))
		time.Sleep(100 * time.Millisecond)

		if err := c.Connection.Close(); err != nil {
			log.Er("failed to close connection after auth timeout", err, "clientID", c.ID)
		}
	})
}

func (c *Client) handleAuthResponse(message Message) {
	log := c.Manager.log.Function("handleAuthResponse")

	if c.Manager.hub.isAuthenticated(c) {
		log.Warn("Auth response from already authenticated client", "clientID", c.ID)
		return
	}

	token, ok := message.Data["token"].(string)
	if !ok || token == "" {
		log.Warn("Invalid token in auth response", "clientID", c.ID)
		c.sendAuthFailure("Invalid token format")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), AUTH_VALIDATE_TIMEOUT)
	defer cancel()

	user, _, err := c.Manager.auth.Authenticate(ctx, token)
	if err != nil {
		log.Info("WebSocket token validation failed", "clientID", c.ID, "error", err.Error())
		c.sendAuthFailure("Authentication failed")
		return
	}

	c.Manager.hub.authenticate(c, user.ID)

	log.Info("WebSocket client authenticated", "clientID", c.ID, "userID", user.ID, "role", user.Role)

	success := authMessage(AUTH_SUCCESS, "authenticated", map[string]any{"userId": user.ID.String()})
	success.UserID = user.ID.String()
	c.trySend(success)
}

func (c *Client) sendAuthFailure(reason string) {
	log := c.Manager.log.Function("sendAuthFailure")

	c.trySend(authMessage(AUTH_FAILURE, "authentication_failed", map[string]any{"reason": reason}))

	log.Info("Auth failure sent, closing connection", "clientID", c.ID, "reason", reason)

	time.AfterFunc(100*time.Millisecond, func() {
		_ = c.Connection.Close()
	})
}

func (c *Client) sendAuthRequest() error {
	log := c.Manager.log.Function("sendAuthRequest")

	if err := c.Connection.WriteJSON(authMessage(AUTH_REQUEST, "authenticate", nil)); err != nil {
		return log.Err("failed to send auth request", err, "clientID", c.ID)
	}

	return nil
}

func (c *Client) handleUnauthenticatedMessage(message Message) {
	log := c.Manager.log.Function("handleUnauthenticatedMessage")

	log.Warn("Blocking message from unauthenticated client", "clientID", c.ID, "messageType", message.Type)

	c.trySend(authMessage(AUTH_FAILURE, "authentication_required", map[string]any{
		"reason": "Authentication required",
	}))
}

func authMessage(kind, action string, data map[string]any) Message {
	return Message{
		ID:        uuid.New().String(),
		Type:      kind,
		Channel:   SYSTEM_CHANNEL,
		Action:    action,
		Data:      data,
		Timestamp: time.Now(),
	}
}

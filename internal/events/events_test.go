package events

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	event := normalize(NOTIFICATION_CHANNEL, Event{Type: NOTIFICATION_CREATED})

	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
	assert.Equal(t, NOTIFICATION_CHANNEL, event.Channel)

	fixed := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	kept := normalize(NOTIFICATION_CHANNEL, Event{ID: "abc", Timestamp: fixed, Channel: "other"})
	assert.Equal(t, "abc", kept.ID)
	assert.Equal(t, fixed, kept.Timestamp)
	assert.Equal(t, Channel("other"), kept.Channel)
}

func TestEventBus_NotifyLocalHandlers(t *testing.T) {
	bus := New(nil)
	defer bus.Close()

	userID := uuid.New()
	var received []Event

	bus.mutex.Lock()
	bus.handlers[NOTIFICATION_CHANNEL] = []EventHandler{
		func(event Event) error {
			return errors.New("first handler fails")
		},
		func(event Event) error {
			received = append(received, event)
			return nil
		},
	}
	bus.mutex.Unlock()

	bus.notifyLocalHandlers(NOTIFICATION_CHANNEL, Event{ID: "1", UserID: &userID})
	bus.notifyLocalHandlers("unused", Event{ID: "2"})

	assert.Len(t, received, 1)
	assert.Equal(t, userID, *received[0].UserID)
}

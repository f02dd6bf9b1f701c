package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/isdelr/userdir-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_BroadcastsUserEvents(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	client := &Client{hub: hub, Send: make(chan []byte, 1)}
	hub.Register <- client

	event := models.NewUserEvent(models.EventUserCreated, &models.User{ID: "u1", AccountNumber: "ACC1"})
	hub.Publish(event)

	select {
	case raw := <-client.Send:
		var msg struct {
			Action  string           `json:"action"`
			Payload models.UserEvent `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, ActionUserEvent, msg.Action)
		assert.Equal(t, "user.created", msg.Payload.Type)
		assert.Equal(t, "u1", msg.Payload.UserID)
		assert.Equal(t, "ACC1", msg.Payload.AccountNumber)
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}

	cancel()
	select {
	case <-hub.Done():
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	_, open := <-client.Send
	assert.False(t, open, "send channel is closed on shutdown")
}

func TestHub_DropsSlowClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	slow := &Client{hub: hub, Send: make(chan []byte)}
	hub.Register <- slow

	hub.Publish(models.NewUserEvent(models.EventUserDeleted, &models.User{ID: "u1"}))

	// Non-blocking receives never pair with the hub's non-blocking send, so
	// this only observes the close.
	assert.Eventually(t, func() bool {
		select {
		case _, open := <-slow.Send:
			return !open
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestHub_PublishWithoutRunnerDoesNotBlock(t *testing.T) {
	hub := NewHub()
	for i := 0; i < cap(hub.broadcast)+10; i++ {
		hub.Publish(models.NewUserEvent(models.EventUserUpdated, &models.User{ID: "u1"}))
	}
	assert.Len(t, hub.broadcast, cap(hub.broadcast))
}

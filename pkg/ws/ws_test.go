package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shashiranjanraj/kproduct/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertForUsesHeaderKeys(t *testing.T) {
	a := AlertFor(event.EntityEvent{Entity: "kproductProduct", Action: event.Created, ID: 7})
	assert.Equal(t, "kproductApp.kproductProduct.created", a.Message)
	assert.Equal(t, "7", a.Param)
}

func TestHubStreamsAlerts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	d := event.NewDispatcher(nil)
	d.Listen(event.Wildcard, hub.Notify)
	d.Fire(context.Background(), event.EntityEvent{Entity: "kproductOrderItem", Action: event.Deleted, ID: 3})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var got Alert
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "kproductOrderItem", got.EntityName)
	assert.Equal(t, event.Deleted, got.Action)
	assert.Equal(t, int64(3), got.ID)
	assert.Equal(t, "kproductApp.kproductOrderItem.deleted", got.Message)
}

func TestRunDisconnectsClientsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	srv := httptest.NewServer(hub)
	defer srv.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
	assert.Zero(t, hub.ClientCount())
}

package events

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenroute/backend/internal/models"
)

func TestHubBroadcastsToClients(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	srv := httptest.NewServer(httpHandler(hub))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), models.LifecycleEvent{ID: "e1", Name: TicketCreated}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got models.LifecycleEvent
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, TicketCreated, got.Name)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

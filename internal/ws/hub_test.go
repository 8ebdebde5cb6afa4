package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/videomarket-backend/internal/domain/entity"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(ctx)
	go hub.Run()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(conn, hub, 1)
		hub.Register(client)
		client.Run()
	}))
	t.Cleanup(srv.Close)

	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestHub_BroadcastsCategoryEvents(t *testing.T) {
	hub, srv := startHub(t)
	first := dial(t, srv)
	defer first.Close()
	second := dial(t, srv)
	defer second.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	parentID := int64(3)
	hub.Publish(entity.NewCategoryEvent(entity.CategoryMoved, 7, &parentID))

	for _, conn := range []*websocket.Conn{first, second} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg eventMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, string(entity.CategoryMoved), msg.Type)
		assert.Equal(t, int64(7), msg.Data.CategoryID)
		require.NotNil(t, msg.Data.ParentID)
		assert.Equal(t, parentID, *msg.Data.ParentID)
	}
}

func TestHub_RemovesClosedClients(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_PublishWithoutClientsDoesNotBlock(t *testing.T) {
	hub := NewHub(context.Background())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish(entity.NewCategoryEvent(entity.CategoryCreated, int64(i), nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish заблокировался без запущенного хаба")
	}
}

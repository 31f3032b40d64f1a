package reconciler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webide/backend/internal/infrastructure/config"
	ws "github.com/webide/backend/internal/infrastructure/websocket"
)

// newTestHub 启动真实的 Hub 测试服务器
func newTestHub(t *testing.T) (*ws.Hub, string) {
	t.Helper()

	cfg := &config.Config{}
	cfg.WebSocket.ReadBufferSize = 1024
	cfg.WebSocket.WriteBufferSize = 1024
	cfg.WebSocket.SendBufferSize = 8

	hub := ws.NewHub(cfg)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleConnection(w, r)
	}))
	t.Cleanup(server.Close)
	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

// collector 收集服务端推送
type collector struct {
	mu       sync.Mutex
	messages []map[string]any
}

func (c *collector) handle(raw []byte) {
	var msg map[string]any
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
}

func (c *collector) byType(msgType string) []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	var matched []map[string]any
	for _, m := range c.messages {
		if m["type"] == msgType {
			matched = append(matched, m)
		}
	}
	return matched
}

func TestConnection_ReceivesConnectedAck(t *testing.T) {
	_, url := newTestHub(t)

	col := &collector{}
	conn := NewConnection(url, col.handle)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.Connect(context.Background()))
	assert.Equal(t, StateConnected, conn.State())

	require.Eventually(t, func() bool {
		return len(col.byType("connected")) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConnection_ReceivesBroadcast(t *testing.T) {
	hub, url := newTestHub(t)

	col := &collector{}
	conn := NewConnection(url, col.handle)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.Connect(context.Background()))

	require.Eventually(t, func() bool {
		return hub.SessionCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Broadcast(ws.FileMessage{Type: ws.TypeFileChanged, Path: "main.go"}))

	require.Eventually(t, func() bool {
		changed := col.byType("file:changed")
		return len(changed) == 1 && changed[0]["path"] == "main.go"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConnection_CloseStopsReconnect(t *testing.T) {
	_, url := newTestHub(t)

	conn := NewConnection(url, nil)
	require.NoError(t, conn.Connect(context.Background()))
	require.NoError(t, conn.Close())

	assert.Equal(t, StateDisconnected, conn.State())
}

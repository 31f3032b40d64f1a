package reconciler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	applog "github.com/webide/backend/internal/infrastructure/log"
)

// ConnectionState 连接状态
type ConnectionState string

const (
	// StateDisconnected 未连接
	StateDisconnected ConnectionState = "disconnected"
	// StateConnecting 连接中
	StateConnecting ConnectionState = "connecting"
	// StateConnected 已连接
	StateConnected ConnectionState = "connected"
)

// 心跳与重连参数
const (
	heartbeatInterval  = 30 * time.Second
	maxReconnectDelay  = 30 * time.Second
	baseReconnectDelay = time.Second
)

// MessageHandler 服务端推送回调
type MessageHandler func(raw []byte)

// Connection 到后端 /ws 端点的 WebSocket 连接
// 断开后按指数退避自动重连
type Connection struct {
	mu         sync.RWMutex
	conn       *websocket.Conn
	wsURL      string
	state      ConnectionState
	lastPong   time.Time
	retryCount int
	done       chan struct{}
	handler    MessageHandler
	logger     *slog.Logger
}

// NewConnection 创建 WebSocket 连接
// wsURL 形如 ws://127.0.0.1:18980/ws
func NewConnection(wsURL string, handler MessageHandler) *Connection {
	return &Connection{
		wsURL:   wsURL,
		state:   StateDisconnected,
		done:    make(chan struct{}),
		handler: handler,
		logger:  applog.NewModuleLogger("reconciler", "connection"),
	}
}

// Connect 建立连接并启动读写协程
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateConnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.mu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		c.mu.Lock()
		c.state = StateDisconnected
		c.mu.Unlock()
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.state = StateConnected
	c.lastPong = time.Now()
	c.retryCount = 0
	c.mu.Unlock()

	c.logger.Info("connected to backend",
		"url", c.wsURL,
	)

	go c.readPump()
	go c.pingLoop()

	return nil
}

// readPump 读取服务端推送
func (c *Connection) readPump() {
	defer c.handleDisconnect()

	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return
	}
	conn.SetReadLimit(512 * 1024)

	for {
		select {
		case <-c.done:
			return
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("connection read error",
					"error", err,
				)
			}
			return
		}

		// 心跳应答只更新时间戳
		var probe struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(message, &probe); err == nil && probe.Type == "pong" {
			c.mu.Lock()
			c.lastPong = time.Now()
			c.mu.Unlock()
			continue
		}

		if c.handler != nil {
			c.handler(message)
		}
	}
}

// pingLoop 定期发送协议层心跳
func (c *Connection) pingLoop() {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.RLock()
			conn := c.conn
			c.mu.RUnlock()
			if conn == nil {
				return
			}

			ping, _ := json.Marshal(map[string]string{"type": "ping"})
			if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return
			}
		}
	}
}

// handleDisconnect 处理断开并触发重连
func (c *Connection) handleDisconnect() {
	c.mu.Lock()
	wasConnected := c.state == StateConnected
	c.state = StateDisconnected
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	select {
	case <-c.done:
		return
	default:
	}

	if wasConnected {
		c.logger.Info("disconnected from backend")
	}

	go c.reconnect()
}

// reconnect 指数退避重连
func (c *Connection) reconnect() {
	for {
		c.mu.Lock()
		c.retryCount++
		retry := c.retryCount
		c.mu.Unlock()

		delay := baseReconnectDelay << (retry - 1)
		if delay > maxReconnectDelay || delay <= 0 {
			delay = maxReconnectDelay
		}

		select {
		case <-c.done:
			return
		case <-time.After(delay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.Connect(ctx)
		cancel()
		if err == nil {
			return
		}

		c.logger.Warn("reconnect attempt failed",
			"attempt", retry,
			"error", err,
		)
	}
}

// State 获取连接状态
func (c *Connection) State() ConnectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Close 关闭连接并停止重连
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		// 已关闭
	default:
		close(c.done)
	}

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.state = StateDisconnected
	return nil
}

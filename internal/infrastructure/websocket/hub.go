package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/webide/backend/internal/infrastructure/config"
	"github.com/webide/backend/internal/infrastructure/log"
)

// Hub WebSocket 连接管理中心
// 持有全部存活会话并向它们广播文件变更；对会话身份无状态，
// 所有会话收到完全相同的广播
type Hub struct {
	mu       sync.RWMutex
	sessions map[*Session]bool

	sendBufferSize int
	upgrader       websocket.Upgrader
	logger         *slog.Logger
}

// NewHub 创建 Hub
func NewHub(cfg *config.Config) *Hub {
	return &Hub{
		sessions:       make(map[*Session]bool),
		sendBufferSize: cfg.WebSocket.SendBufferSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
			WriteBufferSize: cfg.WebSocket.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true // 本地单用户服务，允许所有来源
			},
		},
		logger: log.NewModuleLogger("websocket", "hub"),
	}
}

// HandleConnection 升级 HTTP 连接并接管会话生命周期
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	session := NewSession(conn, h.sendBufferSize)
	h.Register(session)

	go session.writePump()
	go h.readPump(session)
}

// Register 将会话加入广播集合，并仅向该会话发送 connected 确认
func (h *Hub) Register(session *Session) {
	h.mu.Lock()
	h.sessions[session] = true
	h.mu.Unlock()

	session.markOpen()

	ack, _ := json.Marshal(ConnectedMessage{
		Type:      TypeConnected,
		Message:   "connected to workspace",
		Timestamp: time.Now().UnixMilli(),
	})
	if err := session.enqueue(ack); err != nil {
		h.logger.Warn("failed to send connected ack", "session_id", session.ID, "error", err)
		h.Unregister(session)
		return
	}

	h.logger.Info("session registered", "session_id", session.ID, "sessions", h.SessionCount())
}

// Unregister 将会话移出广播集合，幂等
// 对已移除的会话重复调用是安全的
func (h *Hub) Unregister(session *Session) {
	h.mu.Lock()
	_, exists := h.sessions[session]
	if exists {
		delete(h.sessions, session)
	}
	h.mu.Unlock()

	session.terminate()

	if exists {
		h.logger.Info("session unregistered", "session_id", session.ID, "sessions", h.SessionCount())
	}
}

// Broadcast 向所有存活会话广播消息
// 消息只序列化一次；单个会话投递失败（背压、连接已关闭）
// 不影响其它会话，失败的会话被注销
func (h *Hub) Broadcast(message any) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	targets := make([]*Session, 0, len(h.sessions))
	for session := range h.sessions {
		targets = append(targets, session)
	}
	h.mu.RUnlock()

	for _, session := range targets {
		if session.State() != StateOpen {
			h.Unregister(session)
			continue
		}
		if err := session.enqueue(data); err != nil {
			h.logger.Warn("broadcast delivery failed, dropping session",
				"session_id", session.ID,
				"error", err,
			)
			h.Unregister(session)
		}
	}
	return nil
}

// HandleInbound 处理客户端控制消息
// 无法解析的消息只记录日志，既不崩溃也不关闭会话
func (h *Hub) HandleInbound(session *Session, raw []byte) {
	var msg InboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.logger.Warn("malformed inbound message",
			"session_id", session.ID,
			"error", err,
		)
		return
	}

	switch msg.Type {
	case TypePing:
		reply, _ := json.Marshal(PongMessage{
			Type:      TypePong,
			Timestamp: time.Now().UnixMilli(),
		})
		if err := session.enqueue(reply); err != nil {
			h.Unregister(session)
		}

	case TypeSubscribe:
		// 不做按频道过滤，仅回显确认；所有会话都收到全部事件
		reply, _ := json.Marshal(SubscribedMessage{
			Type:    TypeSubscribed,
			Channel: msg.Channel,
		})
		if err := session.enqueue(reply); err != nil {
			h.Unregister(session)
		}

	default:
		h.logger.Debug("unknown inbound message type",
			"session_id", session.ID,
			"type", msg.Type,
		)
	}
}

// SessionCount 返回当前存活会话数
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// readPump 读取客户端消息并交给 HandleInbound
// 读取出错（断开、超时）即注销会话
func (h *Hub) readPump(session *Session) {
	defer h.Unregister(session)

	session.conn.SetReadLimit(512 * 1024) // 512KB
	_ = session.conn.SetReadDeadline(time.Now().Add(pongWait))
	session.conn.SetPongHandler(func(string) error {
		return session.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := session.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("session read error",
					"session_id", session.ID,
					"error", err,
				)
			}
			return
		}

		// 收到任何消息都续期读取超时
		_ = session.conn.SetReadDeadline(time.Now().Add(pongWait))

		h.HandleInbound(session, message)
	}
}

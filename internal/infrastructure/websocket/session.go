package websocket

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// SessionState 会话状态
type SessionState int32

const (
	// StateConnecting 已建立传输，尚未注册
	StateConnecting SessionState = iota
	// StateOpen 已注册，可收发消息
	StateOpen
	// StateClosed 终态，关闭后的会话不会被复用
	StateClosed
)

// 心跳参数
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// ErrSessionClosed 会话已关闭
var ErrSessionClosed = errors.New("session is closed")

// ErrSendBufferFull 发送队列已满（背压）
var ErrSendBufferFull = errors.New("session send buffer is full")

// Session 单个客户端连接
// 服务端不为会话保留传输句柄之外的状态，所有会话收到相同的广播
type Session struct {
	// ID 会话标识，仅用于日志
	ID string

	conn      *websocket.Conn
	send      chan []byte
	state     atomic.Int32
	closeOnce sync.Once
}

// NewSession 创建会话，初始状态为 connecting
func NewSession(conn *websocket.Conn, sendBufferSize int) *Session {
	if sendBufferSize <= 0 {
		sendBufferSize = 256
	}
	s := &Session{
		ID:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	s.state.Store(int32(StateConnecting))
	return s
}

// State 返回当前状态
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// markOpen 将状态从 connecting 迁移到 open
func (s *Session) markOpen() {
	s.state.CompareAndSwap(int32(StateConnecting), int32(StateOpen))
}

// enqueue 将消息放入发送队列
// 队列满或会话已关闭时返回错误，不阻塞调用方
func (s *Session) enqueue(data []byte) (err error) {
	if s.State() == StateClosed {
		return ErrSessionClosed
	}

	// terminate 可能在状态检查之后并发关闭队列
	defer func() {
		if recover() != nil {
			err = ErrSessionClosed
		}
	}()

	select {
	case s.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// terminate 关闭会话，幂等
// open -> closed 是终态迁移
func (s *Session) terminate() {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosed))
		close(s.send)
		_ = s.conn.Close()
	})
}

// writePump 将队列中的消息写入连接，并周期性发送协议层 Ping
// 在独立协程中运行，写失败即退出（随后由 readPump 触发注销）
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			if !ok {
				// 会话已终止
				_ = s.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
				return
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

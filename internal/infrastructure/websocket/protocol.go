// Package websocket 提供面向浏览器会话的 WebSocket 广播中心
package websocket

import "github.com/webide/backend/internal/domain/events"

// 服务端到客户端的消息类型
const (
	// TypeConnected 连接确认
	TypeConnected = "connected"
	// TypePong 心跳应答
	TypePong = "pong"
	// TypeSubscribed 订阅确认
	TypeSubscribed = "subscribed"
	// TypeFileAdded 文件新增广播
	TypeFileAdded = "file:added"
	// TypeFileChanged 文件修改广播
	TypeFileChanged = "file:changed"
	// TypeFileDeleted 文件删除广播
	TypeFileDeleted = "file:deleted"
)

// 客户端到服务端的消息类型
const (
	// TypePing 心跳
	TypePing = "ping"
	// TypeSubscribe 频道订阅
	TypeSubscribe = "subscribe"
)

// ConnectedMessage 连接确认消息，注册时仅发给新会话
type ConnectedMessage struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// FileMessage 文件变更广播消息
type FileMessage struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

// PongMessage 心跳应答消息
type PongMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// SubscribedMessage 订阅确认消息
type SubscribedMessage struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
}

// InboundMessage 客户端控制消息
type InboundMessage struct {
	Type    string `json:"type"`
	Channel string `json:"channel,omitempty"`
}

// FileMessageType 将领域事件类型映射为广播消息类型
// 未知类型返回空字符串
func FileMessageType(eventType events.EventType) string {
	switch eventType {
	case events.FileAdded:
		return TypeFileAdded
	case events.FileChanged:
		return TypeFileChanged
	case events.FileDeleted:
		return TypeFileDeleted
	default:
		return ""
	}
}

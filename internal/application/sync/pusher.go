// Package sync 将工作区文件事件推送到所有浏览器会话
package sync

import (
	"log/slog"

	"github.com/webide/backend/internal/domain/events"
	"github.com/webide/backend/internal/infrastructure/log"
	"github.com/webide/backend/internal/infrastructure/websocket"
)

// Broadcaster 广播接口（定义在 application 层）
// 这是应用层需要的技术能力，不是领域概念
type Broadcaster interface {
	Broadcast(message any) error
}

// Pusher 文件事件推送器
// 订阅事件总线，将文件事件转换为线上协议消息后广播；
// 事件在总线的发布顺序即广播顺序，跨 Hub 不发生重排
type Pusher struct {
	broadcaster Broadcaster
	logger      *slog.Logger
	unsubscribe func()
}

// NewPusher 创建推送器
func NewPusher(broadcaster Broadcaster) *Pusher {
	return &Pusher{
		broadcaster: broadcaster,
		logger:      log.NewModuleLogger("sync", "pusher"),
	}
}

// Start 订阅文件事件
func (p *Pusher) Start(bus events.EventBus) {
	p.unsubscribe = bus.SubscribeMultiple(
		[]events.EventType{events.FileAdded, events.FileChanged, events.FileDeleted},
		events.HandlerFunc(p.handleEvent),
	)
	p.logger.Info("File event pusher started")
}

// Stop 取消订阅
func (p *Pusher) Stop() {
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
	p.logger.Info("File event pusher stopped")
}

// handleEvent 将文件事件广播到所有会话
func (p *Pusher) handleEvent(event events.Event) error {
	fileEvent, ok := event.(*events.FileEvent)
	if !ok {
		return nil
	}

	msgType := websocket.FileMessageType(fileEvent.EventType)
	if msgType == "" {
		return nil
	}

	return p.broadcaster.Broadcast(websocket.FileMessage{
		Type: msgType,
		Path: fileEvent.Path,
	})
}

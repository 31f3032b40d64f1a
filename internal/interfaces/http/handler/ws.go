package handler

import (
	"github.com/gin-gonic/gin"

	ws "github.com/webide/backend/internal/infrastructure/websocket"
)

// WSHandler WebSocket 接入处理器
type WSHandler struct {
	hub *ws.Hub
}

// NewWSHandler 创建 WebSocket 接入处理器
func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Handle 升级为 WebSocket 连接并交给中心管理
func (h *WSHandler) Handle(c *gin.Context) {
	h.hub.HandleConnection(c.Writer, c.Request)
}

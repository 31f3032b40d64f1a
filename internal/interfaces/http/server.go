package http

import (
	"context"
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/webide/backend/internal/infrastructure/config"
	"github.com/webide/backend/internal/infrastructure/log"
	"github.com/webide/backend/internal/interfaces/http/handler"
	"github.com/webide/backend/internal/interfaces/mcp"

	_ "github.com/webide/backend/docs" // Swagger docs
)

// HTTPServer HTTP 服务器
type HTTPServer struct {
	router   *gin.Engine
	httpPort string
	server   *http.Server
	logger   *slog.Logger
}

// NewServer 创建 HTTP 服务器
func NewServer(
	serverConfig *config.ServerConfig,
	workspaceHandler *handler.WorkspaceHandler,
	sessionHandler *handler.SessionHandler,
	assistantHandler *handler.AssistantHandler,
	wsHandler *handler.WSHandler,
	mcpServer *mcp.MCPServer,
) *HTTPServer {
	router := gin.Default()

	logger := log.NewModuleLogger("http", "server")

	// 注册路由
	api := router.Group("/api/v1")
	{
		// 工作区文件路由
		api.GET("/files/tree", workspaceHandler.Tree)
		api.GET("/files/content", workspaceHandler.Content)
		api.POST("/files/save", workspaceHandler.Save)
		api.POST("/files/create", workspaceHandler.Create)
		api.DELETE("/files/delete", workspaceHandler.Delete)
		api.POST("/files/rename", workspaceHandler.Rename)

		// 编辑器会话路由
		api.GET("/session", sessionHandler.Get)
		api.PUT("/session", sessionHandler.Update)

		// AI 助手路由
		assistant := api.Group("/assistant")
		{
			assistant.POST("/chat", assistantHandler.Chat)
			assistant.POST("/stream", assistantHandler.Stream)
			assistant.POST("/tokens", assistantHandler.Tokens)
			// deep-think/tdd/agentic/review
			assistant.POST("/:mode", assistantHandler.Mode)
		}
	}

	// 文件变更推送 WebSocket
	router.GET("/ws", wsHandler.Handle)

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// MCP SSE 端点
	if mcpServer != nil {
		router.Any("/mcp/sse", gin.WrapH(mcpServer.GetHandler()))
	}

	return &HTTPServer{
		router:   router,
		httpPort: serverConfig.HTTPPort,
		logger:   logger,
	}
}

// Start 启动服务器
func (s *HTTPServer) Start() error {
	s.server = &http.Server{
		Addr:    s.httpPort,
		Handler: s.router,
	}

	s.logger.Info("HTTP server starting",
		"port", s.httpPort,
	)

	return s.server.ListenAndServe()
}

// Shutdown 优雅关闭
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Stop 停止服务器
func (s *HTTPServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

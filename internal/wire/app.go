package wire

import (
	"database/sql"
	"strconv"
	"strings"

	"log/slog"

	syncapp "github.com/webide/backend/internal/application/sync"
	workspaceapp "github.com/webide/backend/internal/application/workspace"
	"github.com/webide/backend/internal/domain/events"
	"github.com/webide/backend/internal/infrastructure/config"
	"github.com/webide/backend/internal/infrastructure/discovery"
	applog "github.com/webide/backend/internal/infrastructure/log"
	"github.com/webide/backend/internal/infrastructure/watcher"
	"github.com/webide/backend/internal/infrastructure/websocket"
	"github.com/webide/backend/internal/interfaces"
)

// App 应用主结构，组合所有服务
type App struct {
	HTTPServer *interfaces.HTTPServer
	MCPServer  *interfaces.MCPServer
	wsHub      *websocket.Hub
	workspace  *workspaceapp.Service
	pusher     *syncapp.Pusher
	advertiser *discovery.Advertiser
	cfg        *config.Config
	db         *sql.DB
	logger     *slog.Logger

	// 文件监听相关
	eventBus    events.EventBus
	fileWatcher *watcher.FileWatcher

	// fatalCh 监听器致命错误时关闭，main 据此退出
	fatalCh chan struct{}
}

// NewApp 创建应用实例
func NewApp(
	httpServer *interfaces.HTTPServer,
	mcpServer *interfaces.MCPServer,
	wsHub *websocket.Hub,
	workspaceService *workspaceapp.Service,
	pusher *syncapp.Pusher,
	advertiser *discovery.Advertiser,
	cfg *config.Config,
	db *sql.DB,
	eventBus events.EventBus,
	fileWatcher *watcher.FileWatcher,
) *App {
	return &App{
		HTTPServer:  httpServer,
		MCPServer:   mcpServer,
		wsHub:       wsHub,
		workspace:   workspaceService,
		pusher:      pusher,
		advertiser:  advertiser,
		cfg:         cfg,
		db:          db,
		logger:      applog.NewModuleLogger("app", "main"),
		eventBus:    eventBus,
		fileWatcher: fileWatcher,
		fatalCh:     make(chan struct{}),
	}
}

// Start 启动所有服务
func (a *App) Start() error {
	a.logger.Info("Starting webide backend application",
		"workspace", a.workspace.Root(),
	)

	// 订阅必须先于监听启动，避免丢失早期事件
	a.pusher.Start(a.eventBus)

	// 根目录不可读属于致命错误
	if err := a.fileWatcher.Start(); err != nil {
		return err
	}
	go a.watchFatal()
	a.logger.Info("File watcher started successfully")

	// mDNS 广播失败不影响本机使用
	if a.cfg.Server.Advertise {
		if err := a.advertiser.Start(a.cfg.Workspace.Name, a.httpPortNumber(), a.workspace.Root()); err != nil {
			a.logger.Warn("Failed to start mDNS advertiser",
				"error", err,
			)
		}
	}

	// 启动 HTTP 服务器（goroutine）
	go func() {
		if err := a.HTTPServer.Start(); err != nil {
			a.logger.Error("Failed to start HTTP server",
				"error", err,
			)
		}
	}()

	a.logger.Info("webide backend application started successfully")

	// MCP 服务器通过 HTTP Handler 提供服务，不需要单独启动
	// 已在 HTTP 服务器中注册 /mcp/sse 端点

	return nil
}

// watchFatal 监听器运行期间的致命错误使整个应用退出
func (a *App) watchFatal() {
	err, ok := <-a.fileWatcher.Fatal()
	if !ok {
		return
	}
	a.logger.Error("File watcher hit a fatal error, shutting down",
		"error", err,
	)
	close(a.fatalCh)
}

// FatalChan 获取致命错误通道（用于 main 函数监听）
func (a *App) FatalChan() <-chan struct{} {
	return a.fatalCh
}

// Stop 停止所有服务
func (a *App) Stop() error {
	a.logger.Info("Stopping webide backend application")

	a.advertiser.Stop()

	// 停止文件监听器
	a.fileWatcher.Stop()
	a.logger.Info("File watcher stopped")

	// 取消事件订阅并关闭总线
	a.pusher.Stop()
	a.eventBus.Close()
	a.logger.Info("Event bus closed")

	// 停止 HTTP 服务器
	if err := a.HTTPServer.Stop(); err != nil {
		a.logger.Error("Failed to stop HTTP server",
			"error", err,
		)
	}

	// 关闭数据库
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("Failed to close database",
				"error", err,
			)
		}
	}

	a.logger.Info("webide backend application stopped")
	return nil
}

// httpPortNumber 从监听地址解析端口号（mDNS 广播用）
func (a *App) httpPortNumber() int {
	addr := a.cfg.Server.HTTPPort
	port, err := strconv.Atoi(addr[strings.LastIndex(addr, ":")+1:])
	if err != nil {
		return 0
	}
	return port
}

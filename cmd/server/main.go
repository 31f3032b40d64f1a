// @title WebIDE Backend API
// @version 0.1.0
// @description 浏览器 Web IDE 的本地后端服务
// @host localhost:18980
// @BasePath /api/v1
// @schemes http
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/webide/backend/internal/infrastructure/config"
	applog "github.com/webide/backend/internal/infrastructure/log"
	"github.com/webide/backend/internal/infrastructure/singleton"
	"github.com/webide/backend/internal/wire"
)

var (
	flagWorkspace string
	flagPort      string
	flagConfig    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "webide-server",
		Short: "Local backend for the browser web IDE",
		Long: "webide-server serves the workspace file tree, pushes file change events " +
			"over WebSocket and proxies AI assistant requests for the browser IDE.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	rootCmd.Flags().StringVarP(&flagWorkspace, "workspace", "w", "", "workspace root directory")
	rootCmd.Flags().StringVarP(&flagPort, "port", "p", "", "HTTP listen port, e.g. :18980")
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "config file path")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer() error {
	// 命令行参数通过环境变量覆盖配置，优先级与配置加载一致
	if flagWorkspace != "" {
		os.Setenv(config.EnvWorkspaceDir, flagWorkspace)
	}
	if flagPort != "" {
		os.Setenv(config.EnvHTTPPort, flagPort)
	}
	if flagConfig != "" {
		os.Setenv(config.EnvConfigFile, flagConfig)
	}

	// 初始化日志系统
	applog.Init(nil)

	// 加载配置获取端口
	cfg := config.NewConfig()
	port := cfg.Server.HTTPPort

	// 单例锁检查：尝试获取端口锁
	listener, err := singleton.CheckAndLock(port)
	if err != nil {
		log.Fatalf("singleton check failed: %v", err)
	}
	if listener == nil {
		// 已有实例运行，直接退出
		log.Println("another instance is already running, exiting")
		return nil
	}
	// 关闭临时 listener，实际监听由 HTTP 服务器负责
	_ = listener.Close()

	// Wire 自动生成的初始化函数
	app, err := wire.InitializeAll()
	if err != nil {
		applog.GetLogger().Error("Failed to initialize application",
			"error", err,
		)
		os.Exit(1)
	}

	// 启动所有服务
	if err := app.Start(); err != nil {
		applog.GetLogger().Error("Failed to start application",
			"error", err,
		)
		os.Exit(1)
	}

	// 优雅关闭：系统信号或监听器致命错误
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		applog.GetLogger().Info("Shutting down application...")
	case <-app.FatalChan():
		applog.GetLogger().Error("Shutting down after fatal watcher error")
	}

	if err := app.Stop(); err != nil {
		applog.GetLogger().Error("Error during application shutdown",
			"error", err,
		)
	}
	applog.GetLogger().Info("Application stopped")
	return nil
}

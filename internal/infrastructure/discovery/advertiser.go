// Package discovery 提供局域网服务广播
// 让同一网络内的浏览器/编辑器插件发现本机的 webide 服务
package discovery

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/grandcat/zeroconf"

	"github.com/webide/backend/internal/infrastructure/log"
)

// ServiceType mDNS 服务类型
const ServiceType = "_webide._tcp"

// Advertiser mDNS 服务广播器
type Advertiser struct {
	mu      sync.Mutex
	server  *zeroconf.Server
	running bool
	logger  *slog.Logger
}

// NewAdvertiser 创建 mDNS 广播器
func NewAdvertiser() *Advertiser {
	return &Advertiser{
		logger: log.NewModuleLogger("discovery", "advertiser"),
	}
}

// Start 开始广播服务
// instanceName 为工作区显示名称，port 为 HTTP 监听端口
func (a *Advertiser) Start(instanceName string, port int, workspaceRoot string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return fmt.Errorf("advertiser is already running")
	}

	txtRecords := []string{
		fmt.Sprintf("workspace=%s", workspaceRoot),
	}

	server, err := zeroconf.Register(
		instanceName,
		ServiceType,
		"local.",
		port,
		txtRecords,
		nil, // 所有网络接口
	)
	if err != nil {
		return fmt.Errorf("failed to register mDNS service: %w", err)
	}

	a.server = server
	a.running = true

	a.logger.Info("mDNS advertiser started",
		"instance", instanceName,
		"service", ServiceType,
		"port", port,
	)
	return nil
}

// Stop 停止广播
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return
	}

	a.server.Shutdown()
	a.server = nil
	a.running = false

	a.logger.Info("mDNS advertiser stopped")
}

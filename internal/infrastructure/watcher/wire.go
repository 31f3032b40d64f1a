package watcher

import (
	"github.com/webide/backend/internal/domain/events"
	domain "github.com/webide/backend/internal/domain/workspace"
	"github.com/webide/backend/internal/infrastructure/config"
)

// ProvideEventBus 提供事件总线实例
func ProvideEventBus() events.EventBus {
	return NewEventBus()
}

// ProvideFileWatcher 提供文件监听器实例
func ProvideFileWatcher(cfg *config.Config, store domain.Store, eventBus events.EventBus) (*FileWatcher, error) {
	watchConfig := DefaultWatchConfig(store.Root())
	if cfg.Watcher.DebounceDelay > 0 {
		watchConfig.DebounceDelay = cfg.Watcher.DebounceDelay
	}

	return NewFileWatcher(watchConfig, eventBus)
}

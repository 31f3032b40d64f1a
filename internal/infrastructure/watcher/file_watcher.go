package watcher

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/webide/backend/internal/domain/events"
	"github.com/webide/backend/internal/infrastructure/log"
)

// WatchConfig FileWatcher 配置
type WatchConfig struct {
	// Root 工作区根目录（绝对路径）
	Root string
	// DebounceDelay 修改事件防抖延迟
	DebounceDelay time.Duration
}

// DefaultWatchConfig 返回默认配置
func DefaultWatchConfig(root string) WatchConfig {
	return WatchConfig{
		Root:          root,
		DebounceDelay: 300 * time.Millisecond,
	}
}

// FileWatcher 工作区文件监听器
// 启动后只报告真实的后续变更，不为已存在的条目合成初始事件。
// 修改事件按路径防抖；新增、删除事件立即发出，删除会取消同路径
// 尚未触发的修改事件，保证单路径上的事件顺序与底层变更一致。
type FileWatcher struct {
	config   WatchConfig
	eventBus events.EventBus
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	// 防抖相关
	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	// 控制
	stopCh  chan struct{}
	fatalCh chan error
	wg      sync.WaitGroup
}

// NewFileWatcher 创建文件监听器
func NewFileWatcher(config WatchConfig, eventBus events.EventBus) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &FileWatcher{
		config:         config,
		eventBus:       eventBus,
		watcher:        watcher,
		logger:         log.NewModuleLogger("watcher", "file_watcher"),
		debounceTimers: make(map[string]*time.Timer),
		stopCh:         make(chan struct{}),
		fatalCh:        make(chan error, 1),
	}, nil
}

// Start 启动文件监听
func (fw *FileWatcher) Start() error {
	fw.logger.Info("Starting file watcher",
		"root", fw.config.Root,
		"debounce", fw.config.DebounceDelay,
	)

	if err := fw.addDirRecursive(fw.config.Root); err != nil {
		return fmt.Errorf("failed to watch workspace root: %w", err)
	}

	// 启动事件处理循环
	fw.wg.Add(1)
	go fw.watchLoop()

	return nil
}

// Stop 停止文件监听
func (fw *FileWatcher) Stop() {
	fw.logger.Info("Stopping file watcher")

	close(fw.stopCh)
	fw.watcher.Close()
	fw.wg.Wait()

	// 取消所有防抖定时器
	fw.debounceMu.Lock()
	for _, timer := range fw.debounceTimers {
		timer.Stop()
	}
	fw.debounceMu.Unlock()

	// watchLoop 已退出，不会再写入，关闭以唤醒 Fatal 的消费方
	close(fw.fatalCh)

	fw.logger.Info("File watcher stopped")
}

// Fatal 返回致命错误通道
// 监听根目录不可读时收到一个错误，之后监听器停止产生事件，不做内部重试；
// Stop 后通道关闭
func (fw *FileWatcher) Fatal() <-chan error {
	return fw.fatalCh
}

// addDirRecursive 递归添加目录监听，跳过隐藏目录
func (fw *FileWatcher) addDirRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil // 忽略无法访问的子目录
		}

		if !info.IsDir() {
			return nil
		}

		if path != dir && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}

		if err := fw.watcher.Add(path); err != nil {
			fw.logger.Debug("Failed to add directory to watch",
				"path", path,
				"error", err,
			)
		} else {
			fw.logger.Debug("Added directory to watch", "path", path)
		}
		return nil
	})
}

// watchLoop 事件监听循环
func (fw *FileWatcher) watchLoop() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.stopCh:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleFsEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Error("Watcher error", "error", err)
			if fw.rootUnreadable() {
				fw.reportFatal(fmt.Errorf("workspace root became unreadable: %w", err))
				return
			}
		}
	}
}

// rootUnreadable 检查监听根目录是否仍然可读
func (fw *FileWatcher) rootUnreadable() bool {
	_, err := os.Stat(fw.config.Root)
	return err != nil
}

// reportFatal 上报致命错误并停止产生事件
func (fw *FileWatcher) reportFatal(err error) {
	fw.logger.Error("Fatal watcher error, stopping", "error", err)
	select {
	case fw.fatalCh <- err:
	default:
	}
}

// handleFsEvent 处理文件系统事件
func (fw *FileWatcher) handleFsEvent(event fsnotify.Event) {
	relPath, ok := fw.relativePath(event.Name)
	if !ok {
		return
	}

	switch {
	case event.Has(fsnotify.Create):
		// 新创建的目录需要加入监听集合
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = fw.addDirRecursive(event.Name)
		}
		fw.emit(events.FileAdded, relPath)

	case event.Has(fsnotify.Write):
		fw.debounceChanged(relPath)

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		// 删除先于任何尚未触发的修改事件，保证单路径顺序
		fw.cancelPending(relPath)
		fw.emit(events.FileDeleted, relPath)
	}
}

// relativePath 将事件路径转换为工作区相对路径
// 隐藏条目（任一路径段以 . 开头）返回 ok=false
func (fw *FileWatcher) relativePath(absPath string) (string, bool) {
	rel, err := filepath.Rel(fw.config.Root, absPath)
	if err != nil || rel == "." {
		return "", false
	}

	slashed := filepath.ToSlash(rel)
	for _, segment := range strings.Split(slashed, "/") {
		if strings.HasPrefix(segment, ".") {
			return "", false
		}
	}
	return slashed, true
}

// debounceChanged 对修改事件做按路径防抖
func (fw *FileWatcher) debounceChanged(relPath string) {
	fw.debounceMu.Lock()
	defer fw.debounceMu.Unlock()

	// 取消之前的定时器
	if timer, exists := fw.debounceTimers[relPath]; exists {
		timer.Stop()
	}

	fw.debounceTimers[relPath] = time.AfterFunc(fw.config.DebounceDelay, func() {
		fw.debounceMu.Lock()
		delete(fw.debounceTimers, relPath)
		fw.debounceMu.Unlock()

		fw.emit(events.FileChanged, relPath)
	})
}

// cancelPending 取消指定路径尚未触发的修改事件
func (fw *FileWatcher) cancelPending(relPath string) {
	fw.debounceMu.Lock()
	defer fw.debounceMu.Unlock()

	if timer, exists := fw.debounceTimers[relPath]; exists {
		timer.Stop()
		delete(fw.debounceTimers, relPath)
	}
}

// emit 发布文件事件
func (fw *FileWatcher) emit(eventType events.EventType, relPath string) {
	fw.eventBus.Publish(&events.FileEvent{
		EventType: eventType,
		Path:      relPath,
		EventTime: time.Now(),
	})

	fw.logger.Debug("File event emitted",
		"type", eventType,
		"path", relPath,
	)
}

package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webide/backend/internal/domain/events"
)

// eventCollector 记录收到的事件，供断言用
type eventCollector struct {
	mu     sync.Mutex
	events []*events.FileEvent
}

func (c *eventCollector) HandleEvent(event events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fe, ok := event.(*events.FileEvent); ok {
		c.events = append(c.events, fe)
	}
	return nil
}

func (c *eventCollector) snapshot() []*events.FileEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*events.FileEvent, len(c.events))
	copy(out, c.events)
	return out
}

// find 返回指定路径收到的事件序列
func (c *eventCollector) find(path string) []events.EventType {
	var kinds []events.EventType
	for _, e := range c.snapshot() {
		if e.Path == path {
			kinds = append(kinds, e.EventType)
		}
	}
	return kinds
}

// startWatcher 创建并启动指向临时目录的监听器
func startWatcher(t *testing.T) (string, *FileWatcher, *eventCollector) {
	t.Helper()

	root := t.TempDir()
	// 预先存在的文件不应产生初始事件
	require.NoError(t, os.WriteFile(filepath.Join(root, "existing.txt"), []byte("old"), 0644))

	bus := NewEventBus()
	collector := &eventCollector{}
	bus.SubscribeMultiple(
		[]events.EventType{events.FileAdded, events.FileChanged, events.FileDeleted},
		collector,
	)

	cfg := WatchConfig{Root: root, DebounceDelay: 50 * time.Millisecond}
	fw, err := NewFileWatcher(cfg, bus)
	require.NoError(t, err)
	require.NoError(t, fw.Start())
	t.Cleanup(fw.Stop)

	// 给底层监听一点就绪时间
	time.Sleep(100 * time.Millisecond)
	return root, fw, collector
}

func TestFileWatcher_NoInitialEvents(t *testing.T) {
	_, _, collector := startWatcher(t)

	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, collector.snapshot(), "pre-existing entries must not produce events")
}

func TestFileWatcher_Added(t *testing.T) {
	root, _, collector := startWatcher(t)

	require.NoError(t, os.WriteFile(filepath.Join(root, "new.txt"), []byte("hi"), 0644))

	time.Sleep(300 * time.Millisecond)
	kinds := collector.find("new.txt")
	require.NotEmpty(t, kinds)
	assert.Equal(t, events.FileAdded, kinds[0])
}

func TestFileWatcher_Changed_Debounced(t *testing.T) {
	root, _, collector := startWatcher(t)

	// 连续写入同一文件，防抖后应合并
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "existing.txt"), []byte("v"), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(300 * time.Millisecond)
	kinds := collector.find("existing.txt")
	require.NotEmpty(t, kinds)
	assert.Len(t, kinds, 1, "rapid writes should coalesce into one changed event")
	assert.Equal(t, events.FileChanged, kinds[0])
}

func TestFileWatcher_Deleted(t *testing.T) {
	root, _, collector := startWatcher(t)

	require.NoError(t, os.Remove(filepath.Join(root, "existing.txt")))

	time.Sleep(300 * time.Millisecond)
	kinds := collector.find("existing.txt")
	require.NotEmpty(t, kinds)
	assert.Equal(t, events.FileDeleted, kinds[len(kinds)-1])
}

func TestFileWatcher_IgnoresHidden(t *testing.T) {
	root, _, collector := startWatcher(t)

	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden"), []byte("x"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0755))

	time.Sleep(300 * time.Millisecond)
	for _, e := range collector.snapshot() {
		assert.NotContains(t, e.Path, ".hidden")
		assert.NotContains(t, e.Path, ".git")
	}
}

func TestFileWatcher_KindOrderPerPath(t *testing.T) {
	root, _, collector := startWatcher(t)

	path := filepath.Join(root, "ordered.txt")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))
	time.Sleep(150 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("ab"), 0644))
	time.Sleep(150 * time.Millisecond)
	require.NoError(t, os.Remove(path))
	time.Sleep(300 * time.Millisecond)

	kinds := collector.find("ordered.txt")
	require.NotEmpty(t, kinds)

	// added 必须先于 changed，changed 必须先于 deleted
	lastSeen := map[events.EventType]int{}
	for i, k := range kinds {
		lastSeen[k] = i
	}
	assert.Equal(t, events.FileAdded, kinds[0])
	assert.Equal(t, events.FileDeleted, kinds[len(kinds)-1])
	if idx, ok := lastSeen[events.FileChanged]; ok {
		assert.Greater(t, idx, 0)
		assert.Less(t, idx, len(kinds)-1)
	}
}

func TestFileWatcher_WatchesNewDirectories(t *testing.T) {
	root, _, collector := startWatcher(t)

	subdir := filepath.Join(root, "sub")
	require.NoError(t, os.MkdirAll(subdir, 0755))
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(subdir, "inner.txt"), []byte("x"), 0644))
	time.Sleep(300 * time.Millisecond)

	kinds := collector.find("sub/inner.txt")
	require.NotEmpty(t, kinds, "files in newly created directories should be watched")
	assert.Equal(t, events.FileAdded, kinds[0])
}

func TestFileWatcher_StopClosesFatalChannel(t *testing.T) {
	root := t.TempDir()
	fw, err := NewFileWatcher(WatchConfig{Root: root, DebounceDelay: 50 * time.Millisecond}, NewEventBus())
	require.NoError(t, err)
	require.NoError(t, fw.Start())

	fw.Stop()

	// 正常停止后通道关闭，消费方不会永久阻塞
	select {
	case _, ok := <-fw.Fatal():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("fatal channel should be closed after Stop")
	}
}

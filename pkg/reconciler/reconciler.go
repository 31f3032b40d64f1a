package reconciler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/webide/backend/internal/domain/workspace"
	applog "github.com/webide/backend/internal/infrastructure/log"
)

// Backend 后端访问接口，由 APIClient 实现
type Backend interface {
	FetchTree() (*TreeData, error)
	FetchContent(path string) (*workspace.FileContent, error)
	SaveFile(path, content string) error
	CreateEntry(path, entryType, content string) error
	DeleteEntry(path string) error
	RenameEntry(oldPath, newPath string) error
}

// State 编辑器状态快照
type State struct {
	FileTree     []*workspace.Entry `json:"fileTree"`
	OpenFiles    []string           `json:"openFiles"`
	ActiveFile   string             `json:"activeFile"`
	FileContents map[string]string  `json:"fileContents"`
}

// Reconciler 编辑器状态协调器
// 本地操作立即生效并同步到后端；后端推送的文件事件被合并进状态，
// 未保存的本地修改（脏文件）不会被远端变更覆盖
type Reconciler struct {
	mu      sync.RWMutex
	backend Backend
	state   State
	dirty   map[string]bool
	logger  *slog.Logger
}

// New 创建协调器并拉取初始目录树
func New(backend Backend) (*Reconciler, error) {
	r := &Reconciler{
		backend: backend,
		state: State{
			OpenFiles:    []string{},
			FileContents: make(map[string]string),
		},
		dirty:  make(map[string]bool),
		logger: applog.NewModuleLogger("reconciler", "state"),
	}

	if err := r.RefreshTree(); err != nil {
		return nil, err
	}
	return r, nil
}

// Snapshot 返回当前状态的深拷贝
func (r *Reconciler) Snapshot() State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	contents := make(map[string]string, len(r.state.FileContents))
	for k, v := range r.state.FileContents {
		contents[k] = v
	}
	return State{
		FileTree:     r.state.FileTree,
		OpenFiles:    slices.Clone(r.state.OpenFiles),
		ActiveFile:   r.state.ActiveFile,
		FileContents: contents,
	}
}

// RefreshTree 从后端重新拉取目录树
func (r *Reconciler) RefreshTree() error {
	tree, err := r.backend.FetchTree()
	if err != nil {
		return fmt.Errorf("refresh tree failed: %w", err)
	}

	r.mu.Lock()
	r.state.FileTree = tree.Tree
	r.mu.Unlock()
	return nil
}

// OpenFile 打开文件并置为活跃文件
// 首次打开时从后端拉取内容
func (r *Reconciler) OpenFile(path string) error {
	r.mu.Lock()
	_, cached := r.state.FileContents[path]
	r.mu.Unlock()

	if !cached {
		content, err := r.backend.FetchContent(path)
		if err != nil {
			return fmt.Errorf("open %s failed: %w", path, err)
		}
		r.mu.Lock()
		r.state.FileContents[path] = content.Content
		r.mu.Unlock()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !slices.Contains(r.state.OpenFiles, path) {
		r.state.OpenFiles = append(r.state.OpenFiles, path)
	}
	r.state.ActiveFile = path
	return nil
}

// CloseFile 关闭文件并释放缓存内容
// 关闭活跃文件时，打开顺序中它的前一个文件成为新的活跃文件，
// 没有前一个时取后一个，都没有则清空
func (r *Reconciler) CloseFile(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked(path)
}

func (r *Reconciler) closeLocked(path string) {
	idx := slices.Index(r.state.OpenFiles, path)
	if idx < 0 {
		return
	}

	r.state.OpenFiles = slices.Delete(r.state.OpenFiles, idx, idx+1)
	delete(r.state.FileContents, path)
	delete(r.dirty, path)

	if r.state.ActiveFile == path {
		switch {
		case idx > 0:
			r.state.ActiveFile = r.state.OpenFiles[idx-1]
		case len(r.state.OpenFiles) > 0:
			// 被关闭文件原位置上现在是它的后一个
			r.state.ActiveFile = r.state.OpenFiles[idx]
		default:
			r.state.ActiveFile = ""
		}
	}
}

// Edit 记录本地未保存的修改
func (r *Reconciler) Edit(path, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.FileContents[path] = content
	r.dirty[path] = true
}

// SaveFile 将内容保存到后端并更新本地缓存
func (r *Reconciler) SaveFile(path, content string) error {
	if err := r.backend.SaveFile(path, content); err != nil {
		return err
	}

	r.mu.Lock()
	r.state.FileContents[path] = content
	delete(r.dirty, path)
	r.mu.Unlock()
	return nil
}

// CreateFile 在后端创建文件或目录并刷新目录树
func (r *Reconciler) CreateFile(path, entryType, content string) error {
	if err := r.backend.CreateEntry(path, entryType, content); err != nil {
		return err
	}
	return r.RefreshTree()
}

// DeleteFile 在后端删除并从本地状态清除
func (r *Reconciler) DeleteFile(path string) error {
	if err := r.backend.DeleteEntry(path); err != nil {
		return err
	}

	r.mu.Lock()
	r.closeLocked(path)
	r.mu.Unlock()
	return r.RefreshTree()
}

// RenameFile 在后端重命名并重映射本地状态中的路径
func (r *Reconciler) RenameFile(oldPath, newPath string) error {
	if err := r.backend.RenameEntry(oldPath, newPath); err != nil {
		return err
	}

	r.mu.Lock()
	if idx := slices.Index(r.state.OpenFiles, oldPath); idx >= 0 {
		r.state.OpenFiles[idx] = newPath
	}
	if content, ok := r.state.FileContents[oldPath]; ok {
		r.state.FileContents[newPath] = content
		delete(r.state.FileContents, oldPath)
	}
	if r.dirty[oldPath] {
		r.dirty[newPath] = true
		delete(r.dirty, oldPath)
	}
	if r.state.ActiveFile == oldPath {
		r.state.ActiveFile = newPath
	}
	r.mu.Unlock()
	return r.RefreshTree()
}

// serverMessage 服务端推送消息
type serverMessage struct {
	Type string `json:"type"`
	Path string `json:"path,omitempty"`
}

// HandleMessage 合并一条服务端推送
// 未知类型仅记录日志
func (r *Reconciler) HandleMessage(raw []byte) {
	var msg serverMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		r.logger.Warn("Failed to decode server message", "error", err)
		return
	}

	switch msg.Type {
	case "connected", "pong", "subscribed":
		// 控制消息不影响编辑器状态
	case "file:added":
		r.onFileAdded(msg.Path)
	case "file:changed":
		r.onFileChanged(msg.Path)
	case "file:deleted":
		r.onFileDeleted(msg.Path)
	default:
		r.logger.Warn("Unknown server message type", "type", msg.Type)
	}
}

func (r *Reconciler) onFileAdded(path string) {
	if err := r.RefreshTree(); err != nil {
		r.logger.Warn("Failed to refresh tree after add", "path", path, "error", err)
	}
}

// onFileChanged 文件被外部修改时刷新打开的副本
// 本地有未保存修改时保留本地版本
func (r *Reconciler) onFileChanged(path string) {
	r.mu.RLock()
	open := slices.Contains(r.state.OpenFiles, path)
	dirty := r.dirty[path]
	r.mu.RUnlock()

	if !open {
		return
	}
	if dirty {
		r.logger.Info("Keeping dirty local copy over remote change", "path", path)
		return
	}

	content, err := r.backend.FetchContent(path)
	if err != nil {
		r.logger.Warn("Failed to refetch changed file", "path", path, "error", err)
		return
	}

	r.mu.Lock()
	r.state.FileContents[path] = content.Content
	r.mu.Unlock()
}

func (r *Reconciler) onFileDeleted(path string) {
	r.mu.Lock()
	r.closeLocked(path)
	r.mu.Unlock()

	if err := r.RefreshTree(); err != nil {
		r.logger.Warn("Failed to refresh tree after delete", "path", path, "error", err)
	}
}

// Package workspace 提供工作区文件操作的应用服务
package workspace

import (
	"log/slog"
	"strings"

	"github.com/webide/backend/internal/domain/session"
	domain "github.com/webide/backend/internal/domain/workspace"
	"github.com/webide/backend/internal/infrastructure/log"
)

// Service 工作区应用服务
// 对存储的薄封装；并发写入同一路径不加锁，由存储层后写覆盖
type Service struct {
	store       domain.Store
	sessionRepo session.Repository
	logger      *slog.Logger
}

// NewService 创建工作区服务
func NewService(store domain.Store, sessionRepo session.Repository) *Service {
	return &Service{
		store:       store,
		sessionRepo: sessionRepo,
		logger:      log.NewModuleLogger("workspace", "service"),
	}
}

// Root 返回工作区根目录
func (s *Service) Root() string {
	return s.store.Root()
}

// ListTree 列出完整目录树（每次重建快照）
func (s *Service) ListTree() ([]*domain.Entry, error) {
	return s.store.ListTree()
}

// Read 读取文件内容
func (s *Service) Read(path string) (*domain.FileContent, error) {
	return s.store.Read(path)
}

// Write 写入文件内容
func (s *Service) Write(path string, content string) error {
	return s.store.Write(path, content)
}

// Create 创建文件或目录
func (s *Service) Create(path string, entryType domain.EntryType, content string) error {
	return s.store.Create(path, entryType, content)
}

// Delete 删除文件或目录，并从已保存的编辑器会话中清除该路径
func (s *Service) Delete(path string) error {
	if err := s.store.Delete(path); err != nil {
		return err
	}

	if err := s.sessionRepo.RemovePath(s.store.Root(), path); err != nil {
		// 会话清理失败不影响删除本身
		s.logger.Warn("Failed to prune deleted path from editor session",
			"path", path,
			"error", err,
		)
	}
	return nil
}

// Rename 重命名文件或目录
func (s *Service) Rename(oldPath, newPath string) error {
	return s.store.Rename(oldPath, newPath)
}

// Search 按名称子串搜索文件，返回匹配的相对路径
// 供 MCP 工具使用
func (s *Service) Search(query string) ([]string, error) {
	tree, err := s.store.ListTree()
	if err != nil {
		return nil, err
	}

	lowered := strings.ToLower(query)

	var matches []string
	var walk func(entries []*domain.Entry)
	walk = func(entries []*domain.Entry) {
		for _, e := range entries {
			if !e.IsDir() && strings.Contains(strings.ToLower(e.Name), lowered) {
				matches = append(matches, e.Path)
			}
			if e.IsDir() {
				walk(e.Children)
			}
		}
	}
	walk(tree)
	return matches, nil
}

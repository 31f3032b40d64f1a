// Package session 提供编辑器会话的应用服务
package session

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/webide/backend/internal/domain/session"
	applog "github.com/webide/backend/internal/infrastructure/log"
)

// Service 编辑器会话应用服务
type Service struct {
	repo   session.Repository
	logger *slog.Logger
}

// NewService 创建会话服务
func NewService(repo session.Repository) *Service {
	return &Service{
		repo:   repo,
		logger: applog.NewModuleLogger("application", "session"),
	}
}

// Get 获取工作区会话，不存在时返回空会话
func (s *Service) Get(workspace string) (*session.EditorSession, error) {
	existing, err := s.repo.FindByWorkspace(workspace)
	if err != nil {
		return nil, fmt.Errorf("find session failed: %w", err)
	}
	if existing == nil {
		return &session.EditorSession{
			ID:        uuid.New().String(),
			Workspace: workspace,
			OpenFiles: []string{},
		}, nil
	}
	return existing, nil
}

// Update 更新工作区会话
// activeFile 非空时必须在 openFiles 中
func (s *Service) Update(workspace string, openFiles []string, activeFile string) (*session.EditorSession, error) {
	if activeFile != "" && !slices.Contains(openFiles, activeFile) {
		return nil, fmt.Errorf("active file %s is not in open files", activeFile)
	}
	if openFiles == nil {
		openFiles = []string{}
	}

	current, err := s.Get(workspace)
	if err != nil {
		return nil, err
	}
	current.OpenFiles = openFiles
	current.ActiveFile = activeFile
	current.UpdatedAt = time.Now()

	if err := s.repo.Save(current); err != nil {
		return nil, fmt.Errorf("save session failed: %w", err)
	}
	s.logger.Debug("session updated", "workspace", workspace, "openFiles", len(openFiles), "activeFile", activeFile)
	return current, nil
}

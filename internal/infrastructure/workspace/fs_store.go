// Package workspace 提供基于本地文件系统的工作区存储实现
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	domain "github.com/webide/backend/internal/domain/workspace"
	"github.com/webide/backend/internal/infrastructure/log"
)

// FSStore 文件系统工作区存储
type FSStore struct {
	root   string
	logger *slog.Logger
}

// NewFSStore 创建文件系统存储
// root 必须是已存在目录的绝对路径
func NewFSStore(root string) (*FSStore, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to stat workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root is not a directory: %s", absRoot)
	}

	return &FSStore{
		root:   absRoot,
		logger: log.NewModuleLogger("workspace", "fs_store"),
	}, nil
}

// Root 返回工作区根目录
func (s *FSStore) Root() string {
	return s.root
}

// resolve 将相对路径解析为根目录下的绝对路径
// 解析结果超出根目录时返回 ErrAccessDenied，该检查先于任何存储访问
func (s *FSStore) resolve(relPath string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(relPath))
	if filepath.IsAbs(cleaned) {
		return "", domain.ErrAccessDenied
	}

	abs := filepath.Join(s.root, cleaned)
	if abs != s.root && !strings.HasPrefix(abs, s.root+string(filepath.Separator)) {
		return "", domain.ErrAccessDenied
	}
	return abs, nil
}

// Relative 将绝对路径转换为工作区相对路径（斜杠分隔）
func (s *FSStore) Relative(absPath string) (string, error) {
	rel, err := filepath.Rel(s.root, absPath)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", domain.ErrAccessDenied
	}
	return filepath.ToSlash(rel), nil
}

// ListTree 列出完整目录树
func (s *FSStore) ListTree() ([]*domain.Entry, error) {
	return s.listDir(s.root, "")
}

// listDir 递归列出目录内容
// 目录排在文件之前，同类型按名称做大小写敏感的字典序排序
func (s *FSStore) listDir(absDir, relDir string) ([]*domain.Entry, error) {
	dirEntries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", relDir, err)
	}

	entries := make([]*domain.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		// 隐藏条目不进入目录树
		if strings.HasPrefix(name, ".") {
			continue
		}

		relPath := name
		if relDir != "" {
			relPath = relDir + "/" + name
		}

		info, err := de.Info()
		if err != nil {
			// 条目在遍历期间消失，跳过
			continue
		}

		entry := &domain.Entry{
			Name:       name,
			Path:       relPath,
			ModifiedAt: info.ModTime(),
		}

		if de.IsDir() {
			entry.Type = domain.EntryDirectory
			children, err := s.listDir(filepath.Join(absDir, name), relPath)
			if err != nil {
				return nil, err
			}
			entry.Children = children
		} else {
			entry.Type = domain.EntryFile
			entry.Size = info.Size()
		}

		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

// Read 读取文件内容
func (s *FSStore) Read(relPath string) (*domain.FileContent, error) {
	abs, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat %s: %w", relPath, err)
	}
	if info.IsDir() {
		return nil, domain.ErrIsDirectory
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", relPath, err)
	}

	return &domain.FileContent{
		Path:       filepath.ToSlash(filepath.Clean(filepath.FromSlash(relPath))),
		Content:    string(data),
		Size:       info.Size(),
		ModifiedAt: info.ModTime(),
	}, nil
}

// Write 写入文件内容，父目录不存在时自动创建
func (s *FSStore) Write(relPath string, content string) error {
	abs, err := s.resolve(relPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return fmt.Errorf("failed to create parent directories: %w", err)
	}

	if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", relPath, err)
	}

	s.logger.Debug("File written", "path", relPath, "size", len(content))
	return nil
}

// Create 创建文件或目录
func (s *FSStore) Create(relPath string, entryType domain.EntryType, content string) error {
	abs, err := s.resolve(relPath)
	if err != nil {
		return err
	}

	if _, err := os.Stat(abs); err == nil {
		return domain.ErrAlreadyExists
	}

	switch entryType {
	case domain.EntryDirectory:
		if err := os.MkdirAll(abs, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", relPath, err)
		}
	case domain.EntryFile:
		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			return fmt.Errorf("failed to create parent directories: %w", err)
		}
		if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to create file %s: %w", relPath, err)
		}
	default:
		return domain.ErrInvalidEntryType
	}

	s.logger.Debug("Entry created", "path", relPath, "type", entryType)
	return nil
}

// Delete 删除文件或目录（目录递归删除）
func (s *FSStore) Delete(relPath string) error {
	abs, err := s.resolve(relPath)
	if err != nil {
		return err
	}

	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to stat %s: %w", relPath, err)
	}

	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("failed to delete %s: %w", relPath, err)
	}

	s.logger.Debug("Entry deleted", "path", relPath)
	return nil
}

// Rename 重命名（移动）文件或目录
func (s *FSStore) Rename(oldPath, newPath string) error {
	oldAbs, err := s.resolve(oldPath)
	if err != nil {
		return err
	}
	newAbs, err := s.resolve(newPath)
	if err != nil {
		return err
	}

	if _, err := os.Stat(oldAbs); err != nil {
		if os.IsNotExist(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to stat %s: %w", oldPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(newAbs), 0755); err != nil {
		return fmt.Errorf("failed to create parent directories: %w", err)
	}

	if err := os.Rename(oldAbs, newAbs); err != nil {
		return fmt.Errorf("failed to rename %s to %s: %w", oldPath, newPath, err)
	}

	s.logger.Debug("Entry renamed", "old_path", oldPath, "new_path", newPath)
	return nil
}

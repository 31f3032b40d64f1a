package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/webide/backend/internal/domain/session"
)

// EditorSessionRepository 编辑器会话仓储的 sqlite 实现
type EditorSessionRepository struct {
	db *sql.DB
}

// NewEditorSessionRepository 创建编辑器会话仓储
func NewEditorSessionRepository(db *sql.DB) *EditorSessionRepository {
	return &EditorSessionRepository{db: db}
}

// Save 保存会话，按工作区 upsert
func (r *EditorSessionRepository) Save(s *session.EditorSession) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.UpdatedAt = time.Now()

	openFiles, err := json.Marshal(s.OpenFiles)
	if err != nil {
		return fmt.Errorf("failed to marshal open files: %w", err)
	}

	query := `
	INSERT INTO editor_sessions (id, workspace, open_files, active_file, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(workspace) DO UPDATE SET
		open_files = excluded.open_files,
		active_file = excluded.active_file,
		updated_at = excluded.updated_at;`

	if _, err := r.db.Exec(query, s.ID, s.Workspace, string(openFiles), s.ActiveFile, s.UpdatedAt.Unix()); err != nil {
		return fmt.Errorf("failed to save editor session: %w", err)
	}
	return nil
}

// FindByWorkspace 按工作区查询会话，不存在时返回 nil
func (r *EditorSessionRepository) FindByWorkspace(workspace string) (*session.EditorSession, error) {
	query := `
	SELECT id, workspace, open_files, active_file, updated_at
	FROM editor_sessions WHERE workspace = ?;`

	row := r.db.QueryRow(query, workspace)

	var s session.EditorSession
	var openFiles string
	var updatedAt int64
	if err := row.Scan(&s.ID, &s.Workspace, &openFiles, &s.ActiveFile, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query editor session: %w", err)
	}

	if err := json.Unmarshal([]byte(openFiles), &s.OpenFiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal open files: %w", err)
	}
	s.UpdatedAt = time.Unix(updatedAt, 0)

	return &s, nil
}

// RemovePath 从指定工作区会话中移除文件路径
// 删除目录时连同其下已打开的文件一并移除；被移除的文件若是活跃文件，活跃文件回退为空
func (r *EditorSessionRepository) RemovePath(workspace, path string) error {
	s, err := r.FindByWorkspace(workspace)
	if err != nil {
		return err
	}
	if s == nil {
		return nil
	}

	prefix := path + "/"
	pruned := func(p string) bool {
		return p == path || strings.HasPrefix(p, prefix)
	}

	filtered := make([]string, 0, len(s.OpenFiles))
	removed := false
	for _, p := range s.OpenFiles {
		if pruned(p) {
			removed = true
			continue
		}
		filtered = append(filtered, p)
	}
	if !removed {
		return nil
	}

	s.OpenFiles = filtered
	if pruned(s.ActiveFile) {
		s.ActiveFile = ""
	}
	return r.Save(s)
}

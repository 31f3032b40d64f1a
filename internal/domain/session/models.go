// Package session 定义编辑器会话领域模型
// 编辑器会话记录浏览器侧打开的文件和活跃文件，用于页面刷新后恢复
package session

import "time"

// EditorSession 编辑器会话
type EditorSession struct {
	// ID 会话 ID
	ID string `json:"id"`
	// Workspace 工作区标识（根目录绝对路径）
	Workspace string `json:"workspace"`
	// OpenFiles 打开的文件相对路径（保持打开顺序）
	OpenFiles []string `json:"openFiles"`
	// ActiveFile 当前活跃文件（必须是 OpenFiles 的成员或为空）
	ActiveFile string `json:"activeFile"`
	// UpdatedAt 最后更新时间
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository 编辑器会话仓储接口
type Repository interface {
	// Save 保存会话（按工作区 upsert）
	Save(s *EditorSession) error
	// FindByWorkspace 按工作区查询会话，不存在时返回 nil
	FindByWorkspace(workspace string) (*EditorSession, error)
	// RemovePath 从所有会话中移除指定文件路径（文件被删除时调用）
	RemovePath(workspace, path string) error
}

// Package workspace 定义工作区领域模型和存储接口
package workspace

import "time"

// EntryType 条目类型
type EntryType string

const (
	// EntryFile 文件条目
	EntryFile EntryType = "file"
	// EntryDirectory 目录条目
	EntryDirectory EntryType = "directory"
)

// Entry 工作区条目
// 目录树在每次请求时从存储重建，是一个快照而非增量维护的结构
type Entry struct {
	// Name 条目名称
	Name string `json:"name"`
	// Path 相对于工作区根目录的路径（斜杠分隔，父目录内唯一）
	Path string `json:"path"`
	// Type 条目类型（file/directory）
	Type EntryType `json:"type"`
	// Size 文件大小（仅文件有效）
	Size int64 `json:"size,omitempty"`
	// ModifiedAt 最后修改时间
	ModifiedAt time.Time `json:"modifiedAt"`
	// Children 子条目（仅目录有效，目录排在文件之前，同类型按名称排序）
	Children []*Entry `json:"children,omitempty"`
}

// IsDir 判断条目是否为目录
func (e *Entry) IsDir() bool {
	return e.Type == EntryDirectory
}

// FileContent 文件内容读取结果
type FileContent struct {
	// Path 相对路径
	Path string `json:"path"`
	// Content 文件文本内容
	Content string `json:"content"`
	// Size 文件大小（字节）
	Size int64 `json:"size"`
	// ModifiedAt 最后修改时间
	ModifiedAt time.Time `json:"modifiedAt"`
}

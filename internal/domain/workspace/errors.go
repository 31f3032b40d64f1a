package workspace

import "errors"

var (
	// ErrAccessDenied 路径解析结果超出工作区根目录
	ErrAccessDenied = errors.New("access denied: path outside workspace root")
	// ErrNotFound 路径不存在
	ErrNotFound = errors.New("file or directory not found")
	// ErrAlreadyExists 目标路径已存在
	ErrAlreadyExists = errors.New("file or directory already exists")
	// ErrIsDirectory 期望文件但路径是目录
	ErrIsDirectory = errors.New("path is a directory")
	// ErrInvalidEntryType 无效的条目类型
	ErrInvalidEntryType = errors.New("invalid entry type, must be 'file' or 'directory'")
)

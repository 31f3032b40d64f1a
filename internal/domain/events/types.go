// Package events 定义领域事件类型和接口
// 用于系统内部的事件驱动通信
package events

import "time"

// EventType 事件类型标识
type EventType string

// 工作区文件相关事件类型
const (
	// FileAdded 文件新增事件
	FileAdded EventType = "file.added"
	// FileChanged 文件内容变更事件
	FileChanged EventType = "file.changed"
	// FileDeleted 文件删除事件
	FileDeleted EventType = "file.deleted"
)

// Event 领域事件接口
// 所有事件类型都必须实现此接口
type Event interface {
	// Type 返回事件类型
	Type() EventType
	// Timestamp 返回事件发生时间
	Timestamp() time.Time
}

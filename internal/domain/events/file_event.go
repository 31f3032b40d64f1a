package events

import "time"

// FileEvent 工作区文件变更事件
// 当工作区根目录下的文件被创建、修改或删除时触发
type FileEvent struct {
	// EventType 事件类型（added/changed/deleted）
	EventType EventType
	// Path 相对于工作区根目录的路径（斜杠分隔）
	Path string
	// EventTime 事件发生时间
	EventTime time.Time
}

// Type 实现 Event 接口
func (e *FileEvent) Type() EventType {
	return e.EventType
}

// Timestamp 实现 Event 接口
func (e *FileEvent) Timestamp() time.Time {
	return e.EventTime
}

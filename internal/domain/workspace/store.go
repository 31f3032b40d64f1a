package workspace

// Store 工作区存储接口
// 所有接受路径的操作都必须先做根目录包含校验，再访问存储
type Store interface {
	// Root 返回工作区根目录的绝对路径
	Root() string

	// ListTree 列出以工作区根目录为根的完整目录树
	// 隐藏条目（以 . 开头）被排除
	ListTree() ([]*Entry, error)

	// Read 读取文件内容
	Read(path string) (*FileContent, error)

	// Write 写入文件内容，父目录不存在时自动创建
	Write(path string, content string) error

	// Create 创建文件或目录
	Create(path string, entryType EntryType, content string) error

	// Delete 删除文件或目录（目录递归删除）
	Delete(path string) error

	// Rename 重命名（移动）文件或目录
	Rename(oldPath, newPath string) error
}

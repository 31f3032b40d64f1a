package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	domain "github.com/webide/backend/internal/domain/workspace"
)

// WorkspaceTreeInput 目录树工具输入（空输入）
type WorkspaceTreeInput struct{}

// WorkspaceTreeOutput 目录树工具输出
type WorkspaceTreeOutput struct {
	Root string          `json:"root" jsonschema:"工作区根目录绝对路径"`
	Tree []*domain.Entry `json:"tree" jsonschema:"目录树"`
}

// workspaceTreeTool 获取工作区目录树工具
func (s *MCPServer) workspaceTreeTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input WorkspaceTreeInput,
) (*mcp.CallToolResult, WorkspaceTreeOutput, error) {
	tree, err := s.workspace.ListTree()
	if err != nil {
		return nil, WorkspaceTreeOutput{}, fmt.Errorf("list workspace tree failed: %w", err)
	}
	return nil, WorkspaceTreeOutput{Root: s.workspace.Root(), Tree: tree}, nil
}

// ReadFileInput 读取文件工具输入
type ReadFileInput struct {
	Path string `json:"path" jsonschema:"相对于工作区根目录的文件路径"`
}

// ReadFileOutput 读取文件工具输出
type ReadFileOutput struct {
	Path       string `json:"path" jsonschema:"相对路径"`
	Content    string `json:"content" jsonschema:"文件内容"`
	Size       int64  `json:"size" jsonschema:"文件大小（字节）"`
	ModifiedAt string `json:"modified_at" jsonschema:"最后修改时间（RFC3339）"`
}

// readFileTool 读取文件工具
func (s *MCPServer) readFileTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ReadFileInput,
) (*mcp.CallToolResult, ReadFileOutput, error) {
	content, err := s.workspace.Read(input.Path)
	if err != nil {
		return nil, ReadFileOutput{}, fmt.Errorf("read file failed: %w", err)
	}
	return nil, ReadFileOutput{
		Path:       content.Path,
		Content:    content.Content,
		Size:       content.Size,
		ModifiedAt: content.ModifiedAt.Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

// WriteFileInput 写入文件工具输入
type WriteFileInput struct {
	Path    string `json:"path" jsonschema:"相对于工作区根目录的文件路径"`
	Content string `json:"content" jsonschema:"完整文件内容"`
}

// WriteFileOutput 写入文件工具输出
type WriteFileOutput struct {
	Path    string `json:"path" jsonschema:"保存的相对路径"`
	Success bool   `json:"success" jsonschema:"是否保存成功"`
}

// writeFileTool 写入文件工具
func (s *MCPServer) writeFileTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input WriteFileInput,
) (*mcp.CallToolResult, WriteFileOutput, error) {
	if err := s.workspace.Write(input.Path, input.Content); err != nil {
		return nil, WriteFileOutput{}, fmt.Errorf("write file failed: %w", err)
	}
	return nil, WriteFileOutput{Path: input.Path, Success: true}, nil
}

// SearchFilesInput 搜索文件工具输入
type SearchFilesInput struct {
	Query string `json:"query" jsonschema:"文件名子串（不区分大小写）"`
}

// SearchFilesOutput 搜索文件工具输出
type SearchFilesOutput struct {
	Matches []string `json:"matches" jsonschema:"匹配的相对路径列表"`
	Total   int      `json:"total" jsonschema:"匹配总数"`
}

// searchFilesTool 按名称搜索文件工具
func (s *MCPServer) searchFilesTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SearchFilesInput,
) (*mcp.CallToolResult, SearchFilesOutput, error) {
	matches, err := s.workspace.Search(input.Query)
	if err != nil {
		return nil, SearchFilesOutput{}, fmt.Errorf("search files failed: %w", err)
	}
	if matches == nil {
		matches = []string{}
	}
	return nil, SearchFilesOutput{Matches: matches, Total: len(matches)}, nil
}

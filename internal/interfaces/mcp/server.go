// Package mcp 通过 MCP 协议向外部 AI 代理暴露工作区工具
package mcp

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	workspaceapp "github.com/webide/backend/internal/application/workspace"
)

// MCPServer MCP 服务器
type MCPServer struct {
	server    *mcp.Server
	handler   http.Handler
	workspace *workspaceapp.Service
}

// NewServer 创建 MCP 服务器
func NewServer(workspace *workspaceapp.Service) *MCPServer {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "webide-backend",
			Version: "0.1.0",
		},
		nil, // 使用默认能力
	)

	mcpServer := &MCPServer{
		server:    server,
		workspace: workspace,
	}

	// 注册工具：workspace_tree
	mcp.AddTool(server, &mcp.Tool{
		Name:        "workspace_tree",
		Description: "List the workspace file tree. No parameters required. Returns: workspace root path and the nested entry tree (hidden entries excluded).",
	}, mcpServer.workspaceTreeTool)

	// 注册工具：read_file
	mcp.AddTool(server, &mcp.Tool{
		Name:        "read_file",
		Description: "Read a file from the workspace. Parameters: path (string, required) - path relative to the workspace root. Returns: path, content, size, and last modified time.",
	}, mcpServer.readFileTool)

	// 注册工具：write_file
	mcp.AddTool(server, &mcp.Tool{
		Name:        "write_file",
		Description: "Write a file in the workspace, creating parent directories as needed. Parameters: path (string, required) - path relative to the workspace root; content (string, required) - full file content. Returns: saved path.",
	}, mcpServer.writeFileTool)

	// 注册工具：search_files
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_files",
		Description: "Search workspace files by name substring, case-insensitive. Parameters: query (string, required) - name fragment to match. Returns: matching relative paths and total count.",
	}, mcpServer.searchFilesTool)

	// 创建 SSE Handler
	handler := mcp.NewSSEHandler(
		func(r *http.Request) *mcp.Server {
			// 每个请求返回同一个服务器实例
			return server
		},
		nil, // SSEOptions，使用默认值
	)

	mcpServer.handler = handler
	return mcpServer
}

// GetHandler 获取 HTTP Handler（用于集成到 HTTP 服务器）
func (s *MCPServer) GetHandler() http.Handler {
	return s.handler
}

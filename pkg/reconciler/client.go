// Package reconciler 实现浏览器侧编辑器状态的无头客户端
// 通过 HTTP 读写工作区，通过 WebSocket 接收文件变更并合并到本地状态
package reconciler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/webide/backend/internal/domain/workspace"
)

// APIResponse 通用 API 响应（与服务端 response.Response 的 JSON 结构对应）
type APIResponse[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// TreeData GET /files/tree 响应 data
type TreeData struct {
	Root string             `json:"root"`
	Tree []*workspace.Entry `json:"tree"`
}

// APIClient 后端 HTTP 客户端
type APIClient struct {
	client  *resty.Client
	baseURL string
}

// NewAPIClient 创建后端 HTTP 客户端
// baseURL 形如 http://127.0.0.1:18980
func NewAPIClient(baseURL string) *APIClient {
	client := resty.New().
		SetBaseURL(baseURL + "/api/v1").
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &APIClient{
		client:  client,
		baseURL: baseURL,
	}
}

// call 发起请求并解包统一响应
func call[T any](r *resty.Request, method, path string) (T, error) {
	var data T

	resp, err := r.Execute(method, path)
	if err != nil {
		return data, fmt.Errorf("request %s %s failed: %w", method, path, err)
	}

	var envelope APIResponse[T]
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return data, fmt.Errorf("decode response of %s %s failed: %w", method, path, err)
	}
	if envelope.Code != 0 {
		return data, fmt.Errorf("%s %s: server error %d: %s", method, path, envelope.Code, envelope.Message)
	}
	return envelope.Data, nil
}

// FetchTree 获取目录树
func (c *APIClient) FetchTree() (*TreeData, error) {
	data, err := call[TreeData](c.client.R(), resty.MethodGet, "/files/tree")
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// FetchContent 读取文件内容
func (c *APIClient) FetchContent(path string) (*workspace.FileContent, error) {
	req := c.client.R().SetQueryParam("path", path)
	data, err := call[workspace.FileContent](req, resty.MethodGet, "/files/content")
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// SaveFile 保存文件内容
func (c *APIClient) SaveFile(path, content string) error {
	req := c.client.R().SetBody(map[string]string{"path": path, "content": content})
	_, err := call[map[string]any](req, resty.MethodPost, "/files/save")
	return err
}

// CreateEntry 创建文件或目录
func (c *APIClient) CreateEntry(path, entryType, content string) error {
	req := c.client.R().SetBody(map[string]string{"path": path, "type": entryType, "content": content})
	_, err := call[map[string]any](req, resty.MethodPost, "/files/create")
	return err
}

// DeleteEntry 删除文件或目录
func (c *APIClient) DeleteEntry(path string) error {
	req := c.client.R().SetQueryParam("path", path)
	_, err := call[map[string]any](req, resty.MethodDelete, "/files/delete")
	return err
}

// RenameEntry 重命名文件或目录
func (c *APIClient) RenameEntry(oldPath, newPath string) error {
	req := c.client.R().SetBody(map[string]string{"oldPath": oldPath, "newPath": newPath})
	_, err := call[map[string]any](req, resty.MethodPost, "/files/rename")
	return err
}

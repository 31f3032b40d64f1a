package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	workspaceapp "github.com/webide/backend/internal/application/workspace"
	domain "github.com/webide/backend/internal/domain/workspace"
	"github.com/webide/backend/internal/interfaces/http/response"
)

// WorkspaceHandler 工作区文件处理器
type WorkspaceHandler struct {
	service *workspaceapp.Service
}

// NewWorkspaceHandler 创建工作区文件处理器
func NewWorkspaceHandler(service *workspaceapp.Service) *WorkspaceHandler {
	return &WorkspaceHandler{service: service}
}

// SaveFileRequest 保存文件请求
type SaveFileRequest struct {
	Path    string `json:"path" binding:"required"`
	Content string `json:"content"`
}

// CreateEntryRequest 创建文件或目录请求
type CreateEntryRequest struct {
	Path    string `json:"path" binding:"required"`
	Type    string `json:"type" binding:"required"`
	Content string `json:"content"`
}

// RenameEntryRequest 重命名请求
type RenameEntryRequest struct {
	OldPath string `json:"oldPath" binding:"required"`
	NewPath string `json:"newPath" binding:"required"`
}

// writeStoreError 将领域错误映射为 HTTP 状态码
func writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrAccessDenied):
		response.Error(c, http.StatusForbidden, 200403, "路径超出工作区范围")
	case errors.Is(err, domain.ErrNotFound):
		response.Error(c, http.StatusNotFound, 200404, "文件或目录不存在")
	case errors.Is(err, domain.ErrAlreadyExists):
		response.Error(c, http.StatusConflict, 200409, "文件或目录已存在")
	case errors.Is(err, domain.ErrIsDirectory), errors.Is(err, domain.ErrInvalidEntryType):
		response.ErrorWithDetail(c, http.StatusBadRequest, 200400, "无效的文件操作", err.Error())
	default:
		response.ErrorWithDetail(c, http.StatusInternalServerError, 200500, "文件操作失败", err.Error())
	}
}

// Tree 获取工作区目录树
// @Summary 获取工作区目录树
// @Tags 工作区
// @Produce json
// @Success 200 {object} response.Response
// @Router /files/tree [get]
func (h *WorkspaceHandler) Tree(c *gin.Context) {
	tree, err := h.service.ListTree()
	if err != nil {
		writeStoreError(c, err)
		return
	}

	response.Success(c, gin.H{
		"root": h.service.Root(),
		"tree": tree,
	})
}

// Content 读取文件内容
// @Summary 读取文件内容
// @Tags 工作区
// @Produce json
// @Param path query string true "文件相对路径"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /files/content [get]
func (h *WorkspaceHandler) Content(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		response.Error(c, http.StatusBadRequest, 100001, "参数错误")
		return
	}

	content, err := h.service.Read(path)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	response.Success(c, content)
}

// Save 保存文件内容
// @Summary 保存文件内容
// @Tags 工作区
// @Accept json
// @Produce json
// @Param body body SaveFileRequest true "文件路径与内容"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Router /files/save [post]
func (h *WorkspaceHandler) Save(c *gin.Context) {
	var req SaveFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, 100001, "参数错误")
		return
	}

	if err := h.service.Write(req.Path, req.Content); err != nil {
		writeStoreError(c, err)
		return
	}

	response.Success(c, gin.H{"path": req.Path})
}

// Create 创建文件或目录
// @Summary 创建文件或目录
// @Tags 工作区
// @Accept json
// @Produce json
// @Param body body CreateEntryRequest true "路径与类型"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.ErrorResponse
// @Router /files/create [post]
func (h *WorkspaceHandler) Create(c *gin.Context) {
	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, 100001, "参数错误")
		return
	}

	if err := h.service.Create(req.Path, domain.EntryType(req.Type), req.Content); err != nil {
		writeStoreError(c, err)
		return
	}

	response.Success(c, gin.H{"path": req.Path, "type": req.Type})
}

// Delete 删除文件或目录
// @Summary 删除文件或目录
// @Tags 工作区
// @Produce json
// @Param path query string true "相对路径"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /files/delete [delete]
func (h *WorkspaceHandler) Delete(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		response.Error(c, http.StatusBadRequest, 100001, "参数错误")
		return
	}

	if err := h.service.Delete(path); err != nil {
		writeStoreError(c, err)
		return
	}

	response.Success(c, gin.H{"path": path})
}

// Rename 重命名文件或目录
// @Summary 重命名文件或目录
// @Tags 工作区
// @Accept json
// @Produce json
// @Param body body RenameEntryRequest true "原路径与新路径"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /files/rename [post]
func (h *WorkspaceHandler) Rename(c *gin.Context) {
	var req RenameEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, 100001, "参数错误")
		return
	}

	if err := h.service.Rename(req.OldPath, req.NewPath); err != nil {
		writeStoreError(c, err)
		return
	}

	response.Success(c, gin.H{"oldPath": req.OldPath, "newPath": req.NewPath})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	sessionapp "github.com/webide/backend/internal/application/session"
	workspaceapp "github.com/webide/backend/internal/application/workspace"
	"github.com/webide/backend/internal/interfaces/http/response"
)

// SessionHandler 编辑器会话处理器
type SessionHandler struct {
	service   *sessionapp.Service
	workspace *workspaceapp.Service
}

// NewSessionHandler 创建编辑器会话处理器
func NewSessionHandler(service *sessionapp.Service, workspace *workspaceapp.Service) *SessionHandler {
	return &SessionHandler{service: service, workspace: workspace}
}

// UpdateSessionRequest 更新会话请求
type UpdateSessionRequest struct {
	OpenFiles  []string `json:"openFiles"`
	ActiveFile string   `json:"activeFile"`
}

// Get 获取编辑器会话
// @Summary 获取编辑器会话
// @Tags 会话
// @Produce json
// @Success 200 {object} response.Response
// @Router /session [get]
func (h *SessionHandler) Get(c *gin.Context) {
	sess, err := h.service.Get(h.workspace.Root())
	if err != nil {
		response.ErrorWithDetail(c, http.StatusInternalServerError, 300500, "获取会话失败", err.Error())
		return
	}
	response.Success(c, sess)
}

// Update 更新编辑器会话
// @Summary 更新编辑器会话
// @Tags 会话
// @Accept json
// @Produce json
// @Param body body UpdateSessionRequest true "打开的文件与活跃文件"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /session [put]
func (h *SessionHandler) Update(c *gin.Context) {
	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, 100001, "参数错误")
		return
	}

	sess, err := h.service.Update(h.workspace.Root(), req.OpenFiles, req.ActiveFile)
	if err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, 300400, "更新会话失败", err.Error())
		return
	}
	response.Success(c, sess)
}

package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/webide/backend/internal/application/assistant"
	"github.com/webide/backend/internal/interfaces/http/response"
)

// AssistantHandler AI 助手处理器
type AssistantHandler struct {
	service *assistant.Service
}

// NewAssistantHandler 创建 AI 助手处理器
func NewAssistantHandler(service *assistant.Service) *AssistantHandler {
	return &AssistantHandler{service: service}
}

// ChatRequest 对话请求
type ChatRequest struct {
	Prompt  string                  `json:"prompt" binding:"required"`
	History []assistant.ChatMessage `json:"history"`
	Context json.RawMessage         `json:"context"`
}

// ModeRequest 结构化模式请求
type ModeRequest struct {
	Prompt  string          `json:"prompt" binding:"required"`
	Context json.RawMessage `json:"context"`
}

// TokensRequest token 估算请求
type TokensRequest struct {
	Text string `json:"text" binding:"required"`
}

// streamChunk SSE 流中的单个数据块
type streamChunk struct {
	Chunk string `json:"chunk"`
}

// Chat 普通对话
// @Summary AI 对话
// @Tags 助手
// @Accept json
// @Produce json
// @Param body body ChatRequest true "提示词与历史"
// @Success 200 {object} response.Response
// @Failure 502 {object} response.ErrorResponse
// @Router /assistant/chat [post]
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, 100001, "参数错误")
		return
	}

	reply, err := h.service.Chat(c.Request.Context(), req.History, req.Prompt, string(req.Context))
	if err != nil {
		response.ErrorWithDetail(c, http.StatusBadGateway, 400502, "模型请求失败", err.Error())
		return
	}
	response.Success(c, gin.H{"reply": reply})
}

// Mode 结构化模式（deep-think/tdd/agentic/review）
// @Summary 执行结构化助手模式
// @Tags 助手
// @Accept json
// @Produce json
// @Param mode path string true "模式名"
// @Param body body ModeRequest true "提示词与上下文"
// @Success 200 {object} response.Response
// @Failure 502 {object} response.ErrorResponse
// @Router /assistant/{mode} [post]
func (h *AssistantHandler) Mode(c *gin.Context) {
	var req ModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, 100001, "参数错误")
		return
	}

	mode := assistant.Mode(c.Param("mode"))
	switch mode {
	case assistant.ModeDeepThink, assistant.ModeTDD, assistant.ModeAgentic, assistant.ModeReview:
	default:
		response.Error(c, http.StatusBadRequest, 400404, "未知的助手模式")
		return
	}

	result, err := h.service.ExecuteMode(c.Request.Context(), mode, req.Prompt, string(req.Context))
	if err != nil {
		response.ErrorWithDetail(c, http.StatusBadGateway, 400502, "模型请求失败", err.Error())
		return
	}
	response.Success(c, result)
}

// Stream 流式对话，以 SSE 逐块推送
// @Summary AI 流式对话
// @Tags 助手
// @Accept json
// @Produce text/event-stream
// @Param body body ChatRequest true "提示词与历史"
// @Success 200 {string} string "data: {\"chunk\":\"...\"}"
// @Router /assistant/stream [post]
func (h *AssistantHandler) Stream(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, 100001, "参数错误")
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, http.StatusInternalServerError, 400500, "流式输出不可用")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	err := h.service.ChatStream(c.Request.Context(), req.History, req.Prompt, string(req.Context), func(chunk string) error {
		payload, err := json.Marshal(streamChunk{Chunk: chunk})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		// 响应头已发出，只能以 SSE 事件报告错误
		fmt.Fprintf(c.Writer, "data: {\"error\": %q}\n\n", err.Error())
	}

	fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	flusher.Flush()
}

// Tokens 估算文本 token 数
// @Summary 估算 token 数
// @Tags 助手
// @Accept json
// @Produce json
// @Param body body TokensRequest true "待估算文本"
// @Success 200 {object} response.Response
// @Router /assistant/tokens [post]
func (h *AssistantHandler) Tokens(c *gin.Context) {
	var req TokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, 100001, "参数错误")
		return
	}

	count, err := h.service.CountTokens(req.Text)
	if err != nil {
		response.ErrorWithDetail(c, http.StatusInternalServerError, 400501, "token 估算失败", err.Error())
		return
	}
	response.Success(c, gin.H{"tokens": count, "encoding": "cl100k_base"})
}

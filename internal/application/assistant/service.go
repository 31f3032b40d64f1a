package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/webide/backend/internal/infrastructure/llm"
	applog "github.com/webide/backend/internal/infrastructure/log"
)

// ChatClient LLM 客户端抽象，便于测试替换
type ChatClient interface {
	Chat(ctx context.Context, messages []llm.Message) (string, error)
	ChatStream(ctx context.Context, messages []llm.Message, onChunk func(chunk string) error) error
}

// ChatMessage 对话历史中的一条消息
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ModeResult 结构化模式的执行结果
// 模型回复包含合法 JSON 对象时 Parsed 非空，否则仅返回 Raw 原文
type ModeResult struct {
	Mode   Mode           `json:"mode"`
	Raw    string         `json:"raw"`
	Parsed map[string]any `json:"parsed,omitempty"`
}

// Service AI 助手应用服务
type Service struct {
	client ChatClient
	logger *slog.Logger
}

// NewService 创建助手服务
func NewService(client ChatClient) *Service {
	return &Service{
		client: client,
		logger: applog.NewModuleLogger("application", "assistant"),
	}
}

// Chat 普通对话，携带历史消息
func (s *Service) Chat(ctx context.Context, history []ChatMessage, prompt, contextJSON string) (string, error) {
	messages := s.buildMessages(ModeChat, history, prompt, contextJSON)
	reply, err := s.client.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return reply, nil
}

// ChatStream 流式对话，逐块回调
func (s *Service) ChatStream(ctx context.Context, history []ChatMessage, prompt, contextJSON string, onChunk func(chunk string) error) error {
	messages := s.buildMessages(ModeChat, history, prompt, contextJSON)
	return s.client.ChatStream(ctx, messages, onChunk)
}

// ExecuteMode 执行结构化模式（deep-think/tdd/agentic/review）
func (s *Service) ExecuteMode(ctx context.Context, mode Mode, prompt, contextJSON string) (*ModeResult, error) {
	if _, ok := systemPrompts[mode]; !ok {
		return nil, fmt.Errorf("unknown assistant mode: %s", mode)
	}

	messages := s.buildMessages(mode, nil, prompt, contextJSON)
	reply, err := s.client.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("mode %s completion failed: %w", mode, err)
	}

	result := &ModeResult{Mode: mode, Raw: reply}
	if parsed, ok := extractJSONObject(reply); ok {
		result.Parsed = parsed
	} else {
		s.logger.Info("model reply is not valid JSON, returning raw text", "mode", mode)
	}
	return result, nil
}

func (s *Service) buildMessages(mode Mode, history []ChatMessage, prompt, contextJSON string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompts[mode]})
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: buildUserPrompt(prompt, contextJSON)})
	return messages
}

// extractJSONObject 从模型回复中提取 JSON 对象
// 优先取 ```json 围栏内容，否则取首个 '{' 到末个 '}' 的片段
func extractJSONObject(reply string) (map[string]any, bool) {
	candidate := reply
	if start := strings.Index(reply, "```json"); start >= 0 {
		rest := reply[start+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			candidate = rest[:end]
		}
	} else if start := strings.Index(reply, "```"); start >= 0 {
		rest := reply[start+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			candidate = rest[:end]
		}
	}

	first := strings.Index(candidate, "{")
	last := strings.LastIndex(candidate, "}")
	if first < 0 || last <= first {
		return nil, false
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(candidate[first:last+1]), &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
	encodingErr  error
)

// CountTokens 用 cl100k_base 估算文本 token 数
// 编码表通过离线加载器获取，避免启动时联网下载
func (s *Service) CountTokens(text string) (int, error) {
	encodingOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
		encoding, encodingErr = tiktoken.GetEncoding("cl100k_base")
	})
	if encodingErr != nil {
		return 0, fmt.Errorf("load token encoding failed: %w", encodingErr)
	}
	return len(encoding.Encode(text, nil, nil)), nil
}

package assistant

import "fmt"

// Mode 助手工作模式
type Mode string

const (
	// ModeChat 普通对话
	ModeChat Mode = "chat"
	// ModeDeepThink 深度思考：分步推理后给出结构化结论
	ModeDeepThink Mode = "deep-think"
	// ModeTDD 测试驱动：先产出测试再产出实现
	ModeTDD Mode = "tdd"
	// ModeAgentic 代理模式：规划一系列文件操作
	ModeAgentic Mode = "agentic"
	// ModeReview 代码评审
	ModeReview Mode = "review"
)

// systemPrompt 各模式的系统提示词
// 结构化模式要求模型以 JSON 对象回复，解析失败时原文返回
var systemPrompts = map[Mode]string{
	ModeChat: "You are a coding assistant embedded in a web IDE. " +
		"Answer concisely and prefer code examples over prose.",

	ModeDeepThink: "You are a coding assistant in deep-think mode. " +
		"Reason step by step about the request, then reply with a JSON object: " +
		`{"reasoning": [...steps], "conclusion": "...", "suggestedCode": "..."}`,

	ModeTDD: "You are a coding assistant in TDD mode. " +
		"First write failing tests for the request, then the implementation. Reply with a JSON object: " +
		`{"tests": "...", "implementation": "...", "notes": "..."}`,

	ModeAgentic: "You are a coding agent in a web IDE. " +
		"Plan the file operations needed to fulfil the request. Reply with a JSON object: " +
		`{"plan": "...", "operations": [{"action": "create|update|delete", "path": "...", "content": "..."}]}`,

	ModeReview: "You are a code reviewer. " +
		"Review the provided code for bugs, style and security issues. Reply with a JSON object: " +
		`{"summary": "...", "issues": [{"severity": "...", "path": "...", "line": 0, "message": "..."}]}`,
}

// buildUserPrompt 组装用户消息
// context 为浏览器传来的 JSON 上下文（当前文件、选中内容等），原样内嵌
func buildUserPrompt(prompt, context string) string {
	if context == "" {
		return prompt
	}
	return fmt.Sprintf("%s\n\nContext (JSON):\n%s", prompt, context)
}

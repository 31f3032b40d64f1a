package handler

import "github.com/google/wire"

// ProviderSet HTTP 处理器提供者集合
var ProviderSet = wire.NewSet(
	NewWorkspaceHandler,
	NewSessionHandler,
	NewAssistantHandler,
	NewWSHandler,
)

package assistant

import (
	"github.com/google/wire"

	"github.com/webide/backend/internal/infrastructure/llm"
)

// ProviderSet 助手服务提供者集合
var ProviderSet = wire.NewSet(
	NewService,
	wire.Bind(new(ChatClient), new(*llm.Client)),
)

package session

import "github.com/google/wire"

// ProviderSet 会话服务提供者集合
var ProviderSet = wire.NewSet(NewService)

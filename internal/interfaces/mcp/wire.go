package mcp

import "github.com/google/wire"

// ProviderSet MCP 接口层提供者集合
var ProviderSet = wire.NewSet(NewServer)

package workspace

import "github.com/google/wire"

// ProviderSet Workspace 应用层 ProviderSet
var ProviderSet = wire.NewSet(
	NewService,
)

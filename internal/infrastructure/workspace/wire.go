package workspace

import (
	"github.com/google/wire"

	domain "github.com/webide/backend/internal/domain/workspace"
	"github.com/webide/backend/internal/infrastructure/config"
)

// ProvideFSStore 提供文件系统工作区存储
func ProvideFSStore(cfg *config.Config) (*FSStore, error) {
	root, err := cfg.ResolveWorkspaceRoot()
	if err != nil {
		return nil, err
	}
	return NewFSStore(root)
}

// ProviderSet Workspace 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideFSStore,
	wire.Bind(new(domain.Store), new(*FSStore)),
)

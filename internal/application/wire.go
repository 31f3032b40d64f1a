// Package application 聚合应用层提供者
package application

import (
	"github.com/google/wire"

	"github.com/webide/backend/internal/application/assistant"
	"github.com/webide/backend/internal/application/session"
	syncapp "github.com/webide/backend/internal/application/sync"
	"github.com/webide/backend/internal/application/workspace"
)

// ProviderSet 应用层提供者集合
var ProviderSet = wire.NewSet(
	workspace.ProviderSet,
	syncapp.ProviderSet,
	assistant.ProviderSet,
	session.ProviderSet,
)

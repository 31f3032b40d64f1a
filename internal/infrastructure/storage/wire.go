package storage

import (
	"github.com/google/wire"

	"github.com/webide/backend/internal/domain/session"
)

// ProviderSet Storage 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	OpenDB,
	NewEditorSessionRepository,
	wire.Bind(new(session.Repository), new(*EditorSessionRepository)),
)

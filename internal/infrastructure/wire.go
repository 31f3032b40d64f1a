package infrastructure

import (
	"github.com/google/wire"

	"github.com/webide/backend/internal/infrastructure/config"
	"github.com/webide/backend/internal/infrastructure/discovery"
	"github.com/webide/backend/internal/infrastructure/llm"
	"github.com/webide/backend/internal/infrastructure/storage"
	"github.com/webide/backend/internal/infrastructure/watcher"
	"github.com/webide/backend/internal/infrastructure/websocket"
	"github.com/webide/backend/internal/infrastructure/workspace"
)

// ProviderSet Infrastructure 层总 ProviderSet
var ProviderSet = wire.NewSet(
	config.ProviderSet,
	workspace.ProviderSet,
	watcher.ProvideEventBus,
	watcher.ProvideFileWatcher,
	websocket.ProviderSet,
	storage.ProviderSet,
	llm.NewClient,
	discovery.NewAdvertiser,
)

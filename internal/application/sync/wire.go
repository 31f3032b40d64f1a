package sync

import (
	"github.com/google/wire"

	"github.com/webide/backend/internal/infrastructure/websocket"
)

// ProviderSet Sync 应用层 ProviderSet
var ProviderSet = wire.NewSet(
	NewPusher,
	wire.Bind(new(Broadcaster), new(*websocket.Hub)),
)

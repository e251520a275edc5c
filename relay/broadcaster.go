// Package relay wires the registry, presence broadcaster, and message
// router into the service the transport layer talks to. It orchestrates
// without owning domain rules: the registry decides what changed, this
// package decides who hears about it.
package relay

import (
	"context"
	"log/slog"

	"blind-relay/contract"
	"blind-relay/domain/event"
)

// Broadcaster pushes the full presence snapshot to every attached
// connection, registered or not.
//
// It provides best-effort fan-out with no guarantees regarding delivery
// order across connections; snapshots are recomputed per broadcast and
// carry no ordering meaning. It is not a message broker.
type Broadcaster struct {
	log      *slog.Logger
	registry contract.IRegistry
}

func NewBroadcaster(log *slog.Logger, registry contract.IRegistry) *Broadcaster {
	return &Broadcaster{log: log, registry: registry}
}

// BroadcastPresence runs synchronously within the same logical step as the
// registry mutation that triggered it: N mutations produce N broadcasts,
// no debouncing, no batching. Sinks never block, so this returns promptly.
func (b *Broadcaster) BroadcastPresence(ctx context.Context) {
	parties := b.registry.Snapshot()
	evt := event.PresenceUpdated{Parties: parties}

	for _, s := range b.registry.Sinks() {
		if err := s.Consume(ctx, evt); err != nil {
			b.log.Debug("Presence update lost for one connection", "error", err)
		}
	}
}

package relay

import (
	"context"
	"log/slog"

	"blind-relay/contract"
	"blind-relay/domain"
	"blind-relay/domain/event"
)

// Router forwards sealed envelopes between identities. It never decodes an
// envelope and keeps no copy of one past the instant of forwarding.
type Router struct {
	log      *slog.Logger
	registry contract.IRegistry
}

func NewRouter(log *slog.Logger, registry contract.IRegistry) *Router {
	return &Router{log: log, registry: registry}
}

// Route resolves the recipient and forwards the envelope unchanged, stamping
// the sender's current registry identity at the time of routing, never a
// sender-supplied value.
//
// Fire and forget: an unknown recipient or a dead connection drops the
// message with an operator-level log only. No error reaches the sender, no
// retry, no queueing for later delivery.
func (r *Router) Route(ctx context.Context, from domain.ConnID, cmd domain.SendCommand) {
	entry, ok := r.registry.Lookup(cmd.To)
	if !ok {
		r.log.Debug("Dropping envelope for unknown identity", "to", cmd.To)
		return
	}

	recipient, ok := r.registry.SinkOf(entry.ConnID)
	if !ok {
		r.log.Debug("Dropping envelope, recipient connection gone", "to", cmd.To)
		return
	}

	sender, ok := r.registry.IdentityOf(from)
	if !ok {
		// Sender detached between sending and routing; its name is gone too.
		r.log.Debug("Dropping envelope from detached connection", "to", cmd.To)
		return
	}

	if err := recipient.Consume(ctx, event.EnvelopeDelivered{From: sender, Envelope: cmd.Envelope}); err != nil {
		r.log.Debug("Envelope delivery lost", "to", cmd.To, "error", err)
	}
}

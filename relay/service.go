package relay

import (
	"context"
	"log/slog"

	"blind-relay/contract"
	"blind-relay/domain"
	"blind-relay/domain/event"
)

type IService interface {
	Connect(sink contract.EventSink) domain.Session
	Register(ctx context.Context, connID domain.ConnID, cmd domain.RegisterCommand)
	Send(ctx context.Context, connID domain.ConnID, cmd domain.SendCommand)
	Disconnect(ctx context.Context, connID domain.ConnID)
}

// Service sequences each connection event against the registry and its side
// effects. Per-connection ordering is guaranteed by the caller (one read
// loop per connection); cross-connection serialization by the registry.
type Service struct {
	log         *slog.Logger
	registry    contract.IRegistry
	broadcaster contract.IBroadcaster
	router      contract.IRouter
}

func NewService(log *slog.Logger, registry contract.IRegistry,
	broadcaster contract.IBroadcaster, router contract.IRouter) *Service {
	return &Service{log: log, registry: registry, broadcaster: broadcaster, router: router}
}

func (s *Service) Connect(sink contract.EventSink) domain.Session {
	sess := s.registry.Attach(sink)
	s.log.Debug("Connection attached", "conn_id", sess.ID, "guest", sess.GuestIdentity)
	return sess
}

// Register commits the binding, confirms it to the registrant, and pushes a
// presence broadcast. A no-op registration (empty field, stale connection)
// produces neither: malformed registrations are silently ignored.
func (s *Service) Register(ctx context.Context, connID domain.ConnID, cmd domain.RegisterCommand) {
	if !s.registry.Register(cmd.Identity, cmd.PublicKey, connID) {
		s.log.Debug("Ignoring malformed registration", "conn_id", connID)
		return
	}
	s.log.Info("Identity registered", "identity", cmd.Identity, "conn_id", connID)

	if sink, ok := s.registry.SinkOf(connID); ok {
		if err := sink.Consume(ctx, event.RegistrationConfirmed{Identity: cmd.Identity}); err != nil {
			s.log.Debug("Registration confirmation lost", "identity", cmd.Identity, "error", err)
		}
	}
	s.broadcaster.BroadcastPresence(ctx)
}

func (s *Service) Send(ctx context.Context, connID domain.ConnID, cmd domain.SendCommand) {
	s.router.Route(ctx, connID, cmd)
}

// Disconnect cleans up after the transport reports a closed connection.
// Broadcasts only when a registered entry actually disappeared, so a guest
// leaving or a duplicate disconnect stays invisible to everyone else.
func (s *Service) Disconnect(ctx context.Context, connID domain.ConnID) {
	if s.registry.Detach(connID) {
		s.log.Info("Registered party disconnected", "conn_id", connID)
		s.broadcaster.BroadcastPresence(ctx)
		return
	}
	s.log.Debug("Connection detached", "conn_id", connID)
}

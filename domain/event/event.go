package event

import (
	"blind-relay/domain"
)

// ServerEvent is anything the relay pushes to a connected party.
// Kind returns the wire-level event name.
type ServerEvent interface {
	Kind() string
}

// IdentityAssigned is sent exactly once, right after a connection attaches.
type IdentityAssigned struct {
	Identity string
}

func (e IdentityAssigned) Kind() string { return "identity-assigned" }

// RegistrationConfirmed echoes the identity the registry committed.
type RegistrationConfirmed struct {
	Identity string
}

func (e RegistrationConfirmed) Kind() string { return "registration-confirmed" }

// PresenceUpdated carries the full snapshot, pushed to every attached
// connection after each registry mutation.
type PresenceUpdated struct {
	Parties []domain.PresenceEntry
}

func (e PresenceUpdated) Kind() string { return "presence-update" }

// EnvelopeDelivered hands a forwarded envelope to the resolved recipient.
// From is the sender's registry identity as observed at routing time.
type EnvelopeDelivered struct {
	From     string
	Envelope domain.SealedEnvelope
}

func (e EnvelopeDelivered) Kind() string { return "deliver" }

package ws

import (
	"blind-relay/domain"
	"blind-relay/domain/event"
)

// ClientMessage is every party->relay frame. Type discriminates; unused
// fields stay empty. Unknown types are logged and ignored so one confused
// client never affects another connection.
type ClientMessage struct {
	Type       string `json:"type"`
	Identity   string `json:"identity,omitempty"`
	PublicKey  string `json:"publicKey,omitempty"`
	To         string `json:"to,omitempty"`
	WrappedKey string `json:"wrappedKey,omitempty"`
	Ciphertext string `json:"ciphertext,omitempty"`
	Nonce      string `json:"nonce,omitempty"`
}

const (
	TypeRegister = "register"
	TypeSend     = "send"
)

// ServerMessage is every relay->party frame.
type ServerMessage struct {
	Type       string                 `json:"type"`
	Identity   string                 `json:"identity,omitempty"`
	From       string                 `json:"from,omitempty"`
	Parties    []domain.PresenceEntry `json:"parties,omitempty"` // nil except on presence-update
	WrappedKey string                 `json:"wrappedKey,omitempty"`
	Ciphertext string                 `json:"ciphertext,omitempty"`
	Nonce      string                 `json:"nonce,omitempty"`
}

// ToServerMessage flattens a domain event onto the wire frame. The event's
// Kind is the frame type.
func ToServerMessage(e event.ServerEvent) ServerMessage {
	msg := ServerMessage{Type: e.Kind()}
	switch evt := e.(type) {
	case event.IdentityAssigned:
		msg.Identity = evt.Identity
	case event.RegistrationConfirmed:
		msg.Identity = evt.Identity
	case event.PresenceUpdated:
		msg.Parties = evt.Parties
	case event.EnvelopeDelivered:
		msg.From = evt.From
		msg.WrappedKey = evt.Envelope.WrappedKey
		msg.Ciphertext = evt.Envelope.Ciphertext
		msg.Nonce = evt.Envelope.Nonce
	}
	return msg
}

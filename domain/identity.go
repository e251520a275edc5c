// Package domain contains core concepts of the relay.
// Identities are session-scoped: a party is addressed by a human-chosen
// string that is unique among currently registered parties only.
package domain

// ConnID identifies one live transport connection. The relay core never
// touches the transport itself, only this handle.
type ConnID string

// Session is what the registry hands back when a connection attaches.
// The guest identity is addressable but does not appear in presence.
type Session struct {
	ID            ConnID
	GuestIdentity string
}

// RegistryEntry binds a registered identity to its connection and the
// public key the party announced. Owned exclusively by the registry.
type RegistryEntry struct {
	Identity  string
	ConnID    ConnID
	PublicKey string
}

// PresenceEntry is the public projection of a RegistryEntry.
type PresenceEntry struct {
	Identity  string `json:"identity"`
	PublicKey string `json:"publicKey"`
}

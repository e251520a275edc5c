// Package registry owns the relay's only shared mutable state: the mapping
// between live connections, registered identities, and announced public keys.
// Every mutation is serialized behind one lock; nothing here ever performs
// transport I/O, so callers can broadcast right after a mutation without the
// registry being observable in a torn state.
package registry

import (
	"sync"

	"blind-relay/contract"
	"blind-relay/domain"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type session struct {
	id       domain.ConnID
	guest    string
	identity string // registered identity, empty while the party is a guest
	sink     contract.EventSink
}

type Registry struct {
	mu         sync.RWMutex
	conns      map[domain.ConnID]*session
	identities map[string]domain.RegistryEntry
}

func NewRegistry() *Registry {
	return &Registry{
		conns:      make(map[domain.ConnID]*session),
		identities: make(map[string]domain.RegistryEntry),
	}
}

// Attach admits a new connection and assigns its temporary guest identity.
// Guests receive every broadcast but never appear in presence snapshots.
func (r *Registry) Attach(sink contract.EventSink) domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := domain.ConnID(uuid.NewString())
	guest := "guest-" + string(id)[:8]
	r.conns[id] = &session{id: id, guest: guest, sink: sink}
	return domain.Session{ID: id, GuestIdentity: guest}
}

// Register binds identity -> (connID, publicKey).
//
// Empty identity or key makes the call a silent no-op, as does a connection
// that already detached. If this connection held a different identity, the
// old binding is removed first (rebinding, not duplication). An existing
// entry under the same identity is overwritten unconditionally, even when
// another connection owns it: last writer wins, the dispossessed party is
// not notified. Returns true when the registry changed, so the caller knows
// a presence broadcast is due.
func (r *Registry) Register(identity, publicKey string, connID domain.ConnID) bool {
	if identity == "" || publicKey == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.conns[connID]
	if !ok {
		return false
	}

	// Rebinding: this connection abandons its previous identity.
	if old := sess.identity; old != "" && old != identity {
		if entry, ok := r.identities[old]; ok && entry.ConnID == connID {
			delete(r.identities, old)
		}
	}

	// Takeover: strip the identity from whichever connection held it.
	if prev, ok := r.identities[identity]; ok && prev.ConnID != connID {
		if other, ok := r.conns[prev.ConnID]; ok {
			other.identity = ""
		}
	}

	r.identities[identity] = domain.RegistryEntry{
		Identity:  identity,
		ConnID:    connID,
		PublicKey: publicKey,
	}
	sess.identity = identity
	return true
}

// Lookup is a pure read of the committed entry for an identity.
func (r *Registry) Lookup(identity string) (domain.RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.identities[identity]
	return entry, ok
}

// Detach removes a connection on disconnect. The identity entry is removed
// only while this connection still owns it, which guards against deleting a
// newer rebinding made after a takeover. Returns true only when a registered
// entry actually disappeared; detaching an unknown or already-detached
// connection is a no-op and must not trigger a broadcast.
func (r *Registry) Detach(connID domain.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.conns[connID]
	if !ok {
		return false
	}
	delete(r.conns, connID)

	if sess.identity == "" {
		return false
	}
	entry, ok := r.identities[sess.identity]
	if !ok || entry.ConnID != connID {
		return false
	}
	delete(r.identities, sess.identity)
	return true
}

// IdentityOf reports how a connection is currently addressed: its registered
// identity when it has one, its guest identity otherwise.
func (r *Registry) IdentityOf(connID domain.ConnID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.conns[connID]
	if !ok {
		return "", false
	}
	if sess.identity != "" {
		return sess.identity, true
	}
	return sess.guest, true
}

// SinkOf resolves a connection to its live sink, if still attached.
func (r *Registry) SinkOf(connID domain.ConnID) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.conns[connID]
	if !ok {
		return nil, false
	}
	return sess.sink, true
}

// Snapshot derives the public presence list from registered entries only.
// It is recomputed on every call and never cached beyond one broadcast.
func (r *Registry) Snapshot() []domain.PresenceEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.MapToSlice(r.identities, func(_ string, entry domain.RegistryEntry) domain.PresenceEntry {
		return domain.PresenceEntry{Identity: entry.Identity, PublicKey: entry.PublicKey}
	})
}

// Sinks returns the sinks of every attached connection, registered or not.
func (r *Registry) Sinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.MapToSlice(r.conns, func(_ domain.ConnID, sess *session) contract.EventSink {
		return sess.sink
	})
}

// Stats feeds the telemetry worker.
func (r *Registry) Stats() (connections, registered int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns), len(r.identities)
}

//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"blind-relay/domain"
	"blind-relay/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is the relay-side end of one live connection. Consume must never
// block on transport I/O: implementations buffer and the connection's write
// loop drains.
type EventSink interface {
	Consume(ctx context.Context, e event.ServerEvent) error
}

// IRegistry is the single shared mutable structure of the relay.
// All methods are safe for concurrent use; mutations are serialized.
type IRegistry interface {
	Attach(sink EventSink) domain.Session
	Register(identity, publicKey string, connID domain.ConnID) bool
	Lookup(identity string) (domain.RegistryEntry, bool)
	Detach(connID domain.ConnID) bool
	IdentityOf(connID domain.ConnID) (string, bool)
	SinkOf(connID domain.ConnID) (EventSink, bool)
	Snapshot() []domain.PresenceEntry
	Sinks() []EventSink
	Stats() (connections, registered int)
}

// IBroadcaster pushes the current presence snapshot to every attached
// connection, registered or not.
type IBroadcaster interface {
	BroadcastPresence(ctx context.Context)
}

// IRouter forwards one envelope to one recipient, or drops it. Fire and forget.
type IRouter interface {
	Route(ctx context.Context, from domain.ConnID, cmd domain.SendCommand)
}

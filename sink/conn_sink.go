package sink

import (
	"context"

	"blind-relay/domain/event"
)

// ConnSink buffers events destined for one connection. The transport's
// write loop owns the receiving side of Events.
type ConnSink struct {
	Events chan event.ServerEvent
}

func NewConnSink(bufferSize int) *ConnSink {
	return &ConnSink{Events: make(chan event.ServerEvent, bufferSize)}
}

// Consume is called by the broadcaster and the router.
// Redirect the event through the concerned owner of the channel;
// the connection's write loop will take it from now.
// A full buffer drops the event: delivery is best effort per connection
// and one slow party must never stall the registry or another party.
func (s *ConnSink) Consume(ctx context.Context, e event.ServerEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

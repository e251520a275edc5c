// Package ws exposes the relay over one long-lived websocket per party.
// The transport guarantees in-order delivery per connection; each
// connection gets one read loop (so its events are processed in arrival
// order) and one write loop draining its sink.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"blind-relay/domain"
	"blind-relay/domain/event"
	"blind-relay/relay"
	"blind-relay/sink"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

type Server struct {
	log        *slog.Logger
	service    relay.IService
	upgrader   websocket.Upgrader
	bufferSize int
}

func NewServer(log *slog.Logger, service relay.IService, allowedOrigins []string, bufferSize int) *Server {
	return &Server{
		log:        log,
		service:    service,
		upgrader:   newUpgrader(allowedOrigins),
		bufferSize: bufferSize,
	}
}

// newUpgrader builds the origin check from the configured allow-list.
// An empty list or a "*" entry allows any origin.
func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 || lo.Contains(allowedOrigins, "*") {
				return true
			}
			return lo.Contains(allowedOrigins, r.Header.Get("Origin"))
		},
	}
}

// Handler wires the websocket endpoint and the health probe.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	router.HandleFunc("/ws", s.handleParty)
	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleParty owns one party's whole connection lifecycle: upgrade, attach,
// identity assignment, in-order event processing, and cleanup. It blocks
// until the client disconnects or a network error occurs; the deferred
// Disconnect keeps the registry leak-free.
func (s *Server) handleParty(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	connSink := sink.NewConnSink(s.bufferSize)
	sess := s.service.Connect(connSink)

	defer func() {
		cancel()
		s.service.Disconnect(context.Background(), sess.ID)
		_ = conn.Close()
	}()

	// Sent once on connect, before anything else can reach the sink.
	_ = connSink.Consume(ctx, event.IdentityAssigned{Identity: sess.GuestIdentity})

	go s.writeLoop(ctx, sess.ID, conn, connSink)
	s.readLoop(ctx, sess.ID, conn)
}

// readLoop processes the connection's events strictly in arrival order:
// a send issued after a rename carries the new identity.
func (s *Server) readLoop(ctx context.Context, connID domain.ConnID, conn *websocket.Conn) {
	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			s.log.Debug("Connection closed", "conn_id", connID, "error", err)
			return
		}

		switch msg.Type {
		case TypeRegister:
			s.service.Register(ctx, connID, domain.RegisterCommand{
				Identity:  msg.Identity,
				PublicKey: msg.PublicKey,
			})
		case TypeSend:
			s.service.Send(ctx, connID, domain.SendCommand{
				To: msg.To,
				Envelope: domain.SealedEnvelope{
					WrappedKey: msg.WrappedKey,
					Ciphertext: msg.Ciphertext,
					Nonce:      msg.Nonce,
				},
			})
		default:
			// One malformed client must never affect other connections.
			s.log.Debug("Ignoring unknown message type", "conn_id", connID, "type", msg.Type)
		}
	}
}

func (s *Server) writeLoop(ctx context.Context, connID domain.ConnID, conn *websocket.Conn, connSink *sink.ConnSink) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-connSink.Events:
			if err := conn.WriteJSON(ToServerMessage(evt)); err != nil {
				s.log.Debug("Write failed, dropping connection", "conn_id", connID, "error", err)
				_ = conn.Close() // unblocks the read loop
				return
			}
		}
	}
}

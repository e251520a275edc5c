package e2e

import (
	"fmt"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"blind-relay/envelope"
	"blind-relay/infrastructure/ws"
	"blind-relay/registry"
	"blind-relay/relay"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

type BaseRelaySuite struct {
	suite.Suite
	Config Config

	server *httptest.Server
	wsURL  string
}

// SetupSuite loads the environment configuration and makes sure a relay is
// reachable, starting one in-process when E2E_RELAY_ADDR is unset.
func (s *BaseRelaySuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.RelayAddr != "" {
		s.wsURL = "ws://" + s.Config.RelayAddr + "/ws"
		return
	}

	log := logs.GetLoggerFromLevel(slog.LevelWarn)
	reg := registry.NewRegistry()
	svc := relay.NewService(log, reg, relay.NewBroadcaster(log, reg), relay.NewRouter(log, reg))
	s.server = httptest.NewServer(ws.NewServer(log, svc, nil, 32).Handler())
	s.wsURL = "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
}

func (s *BaseRelaySuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
}

// Step prints a colorized header so suite logs read as a scenario script.
func (s *BaseRelaySuite) Step(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// Party is one connected end of the relay with its local keypair.
type Party struct {
	Name    string
	Conn    *websocket.Conn
	Keypair *envelope.Keypair
}

// ConnectParty dials the relay, consumes the identity-assigned frame, and
// registers the party under its name with a freshly generated key.
func (s *BaseRelaySuite) ConnectParty(name string) *Party {
	keypair, err := envelope.GenerateKeypair()
	s.Require().NoError(err)
	publicKey, err := envelope.MarshalPublicKey(keypair.Public)
	s.Require().NoError(err)

	conn, _, err := websocket.DefaultDialer.Dial(s.wsURL, nil)
	s.Require().NoError(err)

	assigned := s.ReadFrame(conn)
	s.Require().Equal("identity-assigned", assigned.Type)
	s.Require().Contains(assigned.Identity, "guest-")

	s.Require().NoError(conn.WriteJSON(ws.ClientMessage{
		Type: ws.TypeRegister, Identity: name, PublicKey: publicKey,
	}))

	confirmed := s.ReadFrame(conn)
	s.Require().Equal("registration-confirmed", confirmed.Type)
	s.Require().Equal(name, confirmed.Identity)

	return &Party{Name: name, Conn: conn, Keypair: keypair}
}

func (s *BaseRelaySuite) ReadFrame(conn *websocket.Conn) ws.ServerMessage {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(3 * time.Second)))
	var frame ws.ServerMessage
	s.Require().NoError(conn.ReadJSON(&frame))
	return frame
}

// WaitPresence reads frames until a presence-update containing all wanted
// identities arrives, and returns the announced key per identity.
func (s *BaseRelaySuite) WaitPresence(conn *websocket.Conn, wanted ...string) map[string]string {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		frame := s.ReadFrame(conn)
		if frame.Type != "presence-update" {
			continue
		}
		keys := make(map[string]string, len(frame.Parties))
		for _, p := range frame.Parties {
			keys[p.Identity] = p.PublicKey
		}
		complete := true
		for _, name := range wanted {
			if _, ok := keys[name]; !ok {
				complete = false
				break
			}
		}
		if complete {
			return keys
		}
	}
	s.Require().FailNow("presence never showed: " + strings.Join(wanted, ", "))
	return nil
}

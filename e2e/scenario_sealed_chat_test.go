package e2e

import (
	"testing"
	"time"

	"blind-relay/domain"
	"blind-relay/envelope"
	"blind-relay/errors"
	"blind-relay/infrastructure/ws"

	"github.com/stretchr/testify/suite"
)

type SealedChatSuite struct {
	BaseRelaySuite
}

func TestSealedChatSuite(t *testing.T) {
	suite.Run(t, new(SealedChatSuite))
}

// The canonical scenario: Alice and Bob register, discover each other via
// presence, and exchange a message the relay can only see sealed. Eve sits
// on the same relay the whole time and learns nothing.
func (s *SealedChatSuite) TestAliceWhispersToBob() {
	t := s.T()

	s.Step(t, "Parties register")
	alice := s.ConnectParty("alice")
	bob := s.ConnectParty("bob")
	eve := s.ConnectParty("eve")
	defer alice.Conn.Close()
	defer bob.Conn.Close()
	defer eve.Conn.Close()

	s.Step(t, "Presence distributes public keys")
	aliceView := s.WaitPresence(alice.Conn, "alice", "bob", "eve")
	s.WaitPresence(bob.Conn, "alice", "bob", "eve")
	s.WaitPresence(eve.Conn, "alice", "bob", "eve")

	s.Step(t, "Alice seals for Bob's announced key and sends")
	bobKey, err := envelope.ParsePublicKey(aliceView["bob"])
	s.Require().NoError(err)
	sealed, err := envelope.Seal(bobKey, []byte("hello"))
	s.Require().NoError(err)
	s.Require().NoError(alice.Conn.WriteJSON(ws.ClientMessage{
		Type:       ws.TypeSend,
		To:         "bob",
		WrappedKey: sealed.WrappedKey,
		Ciphertext: sealed.Ciphertext,
		Nonce:      sealed.Nonce,
	}))

	s.Step(t, "Bob opens the delivery")
	frame := s.ReadFrame(bob.Conn)
	s.Require().Equal("deliver", frame.Type)
	s.Require().Equal("alice", frame.From)

	plaintext, err := envelope.Open(bob.Keypair.Private, domain.SealedEnvelope{
		WrappedKey: frame.WrappedKey,
		Ciphertext: frame.Ciphertext,
		Nonce:      frame.Nonce,
	})
	s.Require().NoError(err)
	s.Require().Equal([]byte("hello"), plaintext)

	s.Step(t, "Eve captured the wire envelope but cannot open it")
	_, err = envelope.Open(eve.Keypair.Private, sealed)
	s.Require().ErrorIs(err, errors.ErrMessageUnreadable)

	// And the relay delivered to nobody else
	s.Require().NoError(eve.Conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond)))
	var stray ws.ServerMessage
	s.Require().Error(eve.Conn.ReadJSON(&stray))
}

// Rebinding and collision behavior observed end to end over the wire.
func (s *SealedChatSuite) TestIdentityChurn() {
	t := s.T()

	s.Step(t, "A party renames itself")
	carol := s.ConnectParty("carol1")
	defer carol.Conn.Close()
	s.WaitPresence(carol.Conn, "carol1")

	publicKey, err := envelope.MarshalPublicKey(carol.Keypair.Public)
	s.Require().NoError(err)
	s.Require().NoError(carol.Conn.WriteJSON(ws.ClientMessage{
		Type: ws.TypeRegister, Identity: "carol2", PublicKey: publicKey,
	}))

	confirmed := s.ReadFrame(carol.Conn)
	s.Require().Equal("registration-confirmed", confirmed.Type)
	s.Require().Equal("carol2", confirmed.Identity)

	keys := s.WaitPresence(carol.Conn, "carol2")
	s.Require().NotContains(keys, "carol1")

	s.Step(t, "A second connection takes the identity over")
	usurper := s.ConnectParty("carol2")
	defer usurper.Conn.Close()

	usurperKey, err := envelope.MarshalPublicKey(usurper.Keypair.Public)
	s.Require().NoError(err)
	keys = s.WaitPresence(usurper.Conn, "carol2")
	s.Require().Equal(usurperKey, keys["carol2"], "presence must show the latest registrant's key")
}

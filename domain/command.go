package domain

// RegisterCommand is a party's intent to bind an identity and public key
// to its connection. Empty fields make the whole command a silent no-op.
type RegisterCommand struct {
	Identity  string
	PublicKey string
}

// SendCommand addresses a sealed envelope to a registered identity.
// The sender identity is NOT part of the command: the relay stamps the
// sender's current registry identity at routing time.
type SendCommand struct {
	To       string
	Envelope SealedEnvelope
}

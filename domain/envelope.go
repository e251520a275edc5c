package domain

// SealedEnvelope is the only thing that crosses the relay for a message:
// an AES-256-GCM ciphertext, its 96-bit nonce, and the message key wrapped
// with RSA-OAEP under the recipient's public key. Every field is base64 so
// nothing on the wire is binary. The relay forwards it verbatim and keeps
// no copy past the instant of forwarding.
type SealedEnvelope struct {
	WrappedKey string `json:"wrappedKey"`
	Ciphertext string `json:"ciphertext"`
	Nonce      string `json:"nonce"`
}

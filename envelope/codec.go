// Package envelope implements the hybrid encryption contract every party
// must follow so that the relay stays blind: a fresh AES-256-GCM key and
// 96-bit nonce are drawn for each message, the plaintext is sealed under
// them, and the raw key bytes are wrapped with RSA-OAEP (SHA-256 for both
// the OAEP hash and the MGF) under the recipient's 2048-bit public key.
// All envelope fields travel as standard base64 text.
//
// Security notes. The construction gives confidentiality and integrity of
// message content against the relay and network observers, and per-message
// key independence. It deliberately does NOT authenticate the sender:
// nothing binds the delivered "from" identity to the wrapping key, so a
// relay or path attacker that substitutes public keys during presence
// distribution can impersonate a party. There is no out-of-band key
// verification. These are known limitations of the contract, not defects
// of this implementation.
package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"blind-relay/domain"
	"blind-relay/errors"
)

const (
	// KeySize is the per-message symmetric key length (AES-256).
	KeySize = 32
	// NonceSize is the GCM nonce length.
	NonceSize = 12
	// RSABits is the modulus size for generated keypairs. Parsing accepts
	// larger moduli; smaller ones cannot wrap a 32-byte key safely.
	RSABits = 2048
)

// Seal encrypts plaintext for the holder of recipient's private key.
// A fresh key and nonce are drawn on every call; nothing is ever reused,
// even for the same recipient.
func Seal(recipient *rsa.PublicKey, plaintext []byte) (domain.SealedEnvelope, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return domain.SealedEnvelope{}, fmt.Errorf("drawing message key: %w", err)
	}
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return domain.SealedEnvelope{}, fmt.Errorf("drawing nonce: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return domain.SealedEnvelope{}, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return domain.SealedEnvelope{}, err
	}
	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	wrappedKey, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, recipient, key, nil)
	if err != nil {
		return domain.SealedEnvelope{}, fmt.Errorf("wrapping message key: %w", err)
	}

	return domain.SealedEnvelope{
		WrappedKey: base64.StdEncoding.EncodeToString(wrappedKey),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
	}, nil
}

// Open reverses Seal with the recipient's private key.
//
// Every failure path returns an error satisfying
// errors.Is(err, errors.ErrMessageUnreadable); a rejected key wrap
// (ErrKeyUnwrap) stays distinguishable from a failed ciphertext
// authentication (ErrCiphertextAuth) so operators can tell a wrong key
// from tampering. Open never panics on hostile input and a failure only
// affects the one envelope it was called with.
func Open(priv *rsa.PrivateKey, env domain.SealedEnvelope) ([]byte, error) {
	wrappedKey, err := base64.StdEncoding.DecodeString(env.WrappedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: wrappedKey: %v", errors.ErrEnvelopeEncoding, err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext: %v", errors.ErrEnvelopeEncoding, err)
	}
	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", errors.ErrEnvelopeEncoding, err)
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: nonce length %d", errors.ErrEnvelopeEncoding, len(nonce))
	}

	key, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, wrappedKey, nil)
	if err != nil {
		return nil, errors.ErrKeyUnwrap
	}
	if len(key) != KeySize {
		return nil, errors.ErrKeyUnwrap
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.ErrKeyUnwrap
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.ErrCiphertextAuth
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.ErrCiphertextAuth
	}
	return plaintext, nil
}

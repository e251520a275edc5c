package envelope

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"fmt"

	"blind-relay/errors"
)

// Keypair holds a party's asymmetric pair. The private half is a
// client-local secret: it never crosses the wire and the relay has no
// representation for it.
type Keypair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

func GenerateKeypair() (*Keypair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, RSABits)
	if err != nil {
		return nil, fmt.Errorf("generating keypair: %w", err)
	}
	return &Keypair{Private: priv, Public: &priv.PublicKey}, nil
}

// MarshalPublicKey encodes a public key as base64 SPKI DER, the form
// announced in registrations and distributed through presence snapshots.
func MarshalPublicKey(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

// ParsePublicKey decodes a presence-distributed public key. It rejects
// non-RSA keys and moduli below RSABits, which could not wrap a message
// key safely.
func ParsePublicKey(encoded string) (*rsa.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidPublicKey, err)
	}
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidPublicKey, err)
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA key", errors.ErrInvalidPublicKey)
	}
	if pub.Size()*8 < RSABits {
		return nil, fmt.Errorf("%w: modulus below %d bits", errors.ErrInvalidPublicKey, RSABits)
	}
	return pub, nil
}

// MarshalPrivateKey and ParsePrivateKey exist for parties that keep their
// key across a session locally (PKCS#8 DER, base64). Nothing in the relay
// ever calls them.
func MarshalPrivateKey(priv *rsa.PrivateKey) (string, error) {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

func ParsePrivateKey(encoded string) (*rsa.PrivateKey, error) {
	der, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, err
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA private key")
	}
	return priv, nil
}

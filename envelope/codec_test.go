package envelope

import (
	stderrors "errors"
	"testing"

	"blind-relay/errors"

	"github.com/stretchr/testify/require"
)

func TestCodec_SealOpen_RoundTrip(t *testing.T) {
	req := require.New(t)

	// Given a recipient keypair
	kp, err := GenerateKeypair()
	req.NoError(err)

	// When a message is sealed for the recipient and opened with its private key
	plaintext := []byte("hello")
	env, err := Seal(kp.Public, plaintext)
	req.NoError(err)
	opened, err := Open(kp.Private, env)

	// Then the original plaintext comes back exactly
	req.NoError(err)
	req.Equal(plaintext, opened)
}

func TestCodec_SealOpen_EmptyAndBinaryPlaintext(t *testing.T) {
	req := require.New(t)
	kp, err := GenerateKeypair()
	req.NoError(err)

	for _, plaintext := range [][]byte{{}, {0x00, 0xff, 0x10, 0x7f, 0x00}} {
		env, err := Seal(kp.Public, plaintext)
		req.NoError(err)
		opened, err := Open(kp.Private, env)
		req.NoError(err)
		req.Equal(plaintext, opened)
	}
}

func TestCodec_FreshKeyAndNoncePerMessage(t *testing.T) {
	req := require.New(t)
	kp, err := GenerateKeypair()
	req.NoError(err)

	// When the same plaintext is sealed twice for the same recipient
	env1, err := Seal(kp.Public, []byte("same message"))
	req.NoError(err)
	env2, err := Seal(kp.Public, []byte("same message"))
	req.NoError(err)

	// Then nothing on the wire repeats
	req.NotEqual(env1.Nonce, env2.Nonce)
	req.NotEqual(env1.WrappedKey, env2.WrappedKey)
	req.NotEqual(env1.Ciphertext, env2.Ciphertext)
}

func TestCodec_Open_WrongPrivateKey(t *testing.T) {
	req := require.New(t)
	alice, err := GenerateKeypair()
	req.NoError(err)
	mallory, err := GenerateKeypair()
	req.NoError(err)

	env, err := Seal(alice.Public, []byte("for alice only"))
	req.NoError(err)

	// When an interceptor tries its own private key
	_, err = Open(mallory.Private, env)

	// Then the failure is a key unwrap, surfaced as unreadable, no panic
	req.ErrorIs(err, errors.ErrKeyUnwrap)
	req.ErrorIs(err, errors.ErrMessageUnreadable)
}

func TestCodec_Open_TamperedCiphertext(t *testing.T) {
	req := require.New(t)
	kp, err := GenerateKeypair()
	req.NoError(err)

	env, err := Seal(kp.Public, []byte("integrity matters"))
	req.NoError(err)

	// When a single ciphertext byte is flipped (still valid base64)
	raw := []byte(env.Ciphertext)
	if raw[0] == 'A' {
		raw[0] = 'B'
	} else {
		raw[0] = 'A'
	}
	env.Ciphertext = string(raw)
	_, err = Open(kp.Private, env)

	// Then authentication fails, distinct from a key unwrap failure
	req.ErrorIs(err, errors.ErrCiphertextAuth)
	req.ErrorIs(err, errors.ErrMessageUnreadable)
	req.False(stderrors.Is(err, errors.ErrKeyUnwrap))
}

func TestCodec_Open_TamperedNonce(t *testing.T) {
	req := require.New(t)
	kp, err := GenerateKeypair()
	req.NoError(err)

	env, err := Seal(kp.Public, []byte("nonce is bound"))
	req.NoError(err)

	other, err := Seal(kp.Public, []byte("x"))
	req.NoError(err)
	env.Nonce = other.Nonce

	_, err = Open(kp.Private, env)
	req.ErrorIs(err, errors.ErrCiphertextAuth)
}

func TestCodec_Open_TamperedWrappedKey(t *testing.T) {
	req := require.New(t)
	kp, err := GenerateKeypair()
	req.NoError(err)

	env, err := Seal(kp.Public, []byte("wrapped key is bound"))
	req.NoError(err)

	other, err := Seal(kp.Public, []byte("y"))
	req.NoError(err)
	env.WrappedKey = other.WrappedKey

	// The substituted wrap decrypts to a different key, so GCM must reject
	_, err = Open(kp.Private, env)
	req.ErrorIs(err, errors.ErrMessageUnreadable)
}

func TestCodec_Open_MalformedEncoding(t *testing.T) {
	req := require.New(t)
	kp, err := GenerateKeypair()
	req.NoError(err)

	env, err := Seal(kp.Public, []byte("ok"))
	req.NoError(err)
	env.Nonce = "%%% not base64 %%%"

	_, err = Open(kp.Private, env)
	req.ErrorIs(err, errors.ErrEnvelopeEncoding)
	req.ErrorIs(err, errors.ErrMessageUnreadable)
}

func TestKeys_PublicKeyRoundTrip(t *testing.T) {
	req := require.New(t)
	kp, err := GenerateKeypair()
	req.NoError(err)

	encoded, err := MarshalPublicKey(kp.Public)
	req.NoError(err)
	parsed, err := ParsePublicKey(encoded)
	req.NoError(err)
	req.True(kp.Public.Equal(parsed))

	// A sealed envelope built from the parsed key still opens
	env, err := Seal(parsed, []byte("via presence"))
	req.NoError(err)
	opened, err := Open(kp.Private, env)
	req.NoError(err)
	req.Equal([]byte("via presence"), opened)
}

func TestKeys_ParsePublicKey_Garbage(t *testing.T) {
	req := require.New(t)

	_, err := ParsePublicKey("definitely not a key")
	req.ErrorIs(err, errors.ErrInvalidPublicKey)

	_, err = ParsePublicKey("aGVsbG8=") // valid base64, not DER
	req.ErrorIs(err, errors.ErrInvalidPublicKey)
}

func TestKeys_PrivateKeyRoundTrip(t *testing.T) {
	req := require.New(t)
	kp, err := GenerateKeypair()
	req.NoError(err)

	encoded, err := MarshalPrivateKey(kp.Private)
	req.NoError(err)
	parsed, err := ParsePrivateKey(encoded)
	req.NoError(err)
	req.True(kp.Private.Equal(parsed))
}

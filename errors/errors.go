package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	// ErrMessageUnreadable is the only failure a caller should branch on when
	// opening an envelope. The two wrapped variants below exist so logs can
	// tell a rejected key wrap from a failed ciphertext authentication.
	ErrMessageUnreadable = fmt.Errorf("message unreadable")
	ErrKeyUnwrap         = fmt.Errorf("%w: wrapped key rejected", ErrMessageUnreadable)
	ErrCiphertextAuth    = fmt.Errorf("%w: ciphertext authentication failed", ErrMessageUnreadable)
	ErrEnvelopeEncoding  = fmt.Errorf("%w: malformed envelope field", ErrMessageUnreadable)

	ErrInvalidPublicKey = fmt.Errorf("invalid public key")
)

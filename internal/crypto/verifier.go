// Package crypto defines the signature verification boundary used by trust gates.
// Backends live in subpackages; native is the standard implementation.
package crypto

import (
	"context"

	"github.com/mrz1836/trustlink/internal/crypto/keys"
)

// Verifier checks a signature over a canonical message.
//
// Implementations must be safe for concurrent use and free of side effects.
// Every failure, including a malformed signature or a nil key, is reported as
// false rather than an error.
type Verifier interface {
	// Verify reports whether signature is a valid signature of message under key.
	// signature is the url-safe base64 text carried in the link.
	Verify(ctx context.Context, key *keys.Handle, message, signature []byte) bool
}

// VerifierFunc adapts an ordinary function to the Verifier interface.
type VerifierFunc func(ctx context.Context, key *keys.Handle, message, signature []byte) bool

// Verify calls f.
func (f VerifierFunc) Verify(ctx context.Context, key *keys.Handle, message, signature []byte) bool {
	return f(ctx, key, message, signature)
}

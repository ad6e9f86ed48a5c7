// Package native verifies link signatures with the standard library primitives.
//
// Every scheme signs the SHA-256 digest of the canonical message:
//   - ECDSA: ASN.1 DER or raw r||s (IEEE P1363) signatures
//   - RSA: PKCS#1 v1.5, falling back to PSS with any salt length
//   - Ed25519: signature over the 32-byte digest
package native

import (
	"bytes"
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"

	"github.com/rs/zerolog"

	"github.com/mrz1836/trustlink/internal/crypto/keys"
)

var (
	// ErrNoKey is returned when verification is attempted without a key.
	ErrNoKey = errors.New("no public key")

	// ErrMalformedSignature is returned when the signature is not url-safe base64.
	ErrMalformedSignature = errors.New("malformed signature encoding")

	// ErrInvalidSignature is returned when the signature does not match.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrAlgorithmMismatch is returned when the key family and public key disagree.
	ErrAlgorithmMismatch = errors.New("key algorithm mismatch")

	// ErrVerifierPanic is returned when a primitive panicked on hostile input.
	ErrVerifierPanic = errors.New("verifier panicked")
)

// Verifier implements crypto.Verifier. The zero value is ready to use.
type Verifier struct{}

// New returns a Verifier.
func New() *Verifier {
	return &Verifier{}
}

// Verify reports whether signature is valid for message under key.
// Rejections are logged at debug level through the context logger.
func (v *Verifier) Verify(ctx context.Context, key *keys.Handle, message, signature []byte) bool {
	err := v.Check(ctx, key, message, signature)
	if err == nil {
		return true
	}
	zerolog.Ctx(ctx).Debug().
		Str("component", "signature_verifier").
		Err(err).
		Msg("signature rejected")
	return false
}

// Check is Verify with the rejection reason.
func (v *Verifier) Check(ctx context.Context, key *keys.Handle, message, signature []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrVerifierPanic, r)
		}
	}()

	if err = ctx.Err(); err != nil {
		return err
	}
	if key == nil {
		return ErrNoKey
	}

	sig, err := DecodeSignature(signature)
	if err != nil {
		return err
	}
	digest := sha256.Sum256(message)

	switch key.Algorithm() {
	case keys.AlgorithmECDSA:
		pub, ok := key.Public().(*ecdsa.PublicKey)
		if !ok {
			return ErrAlgorithmMismatch
		}
		return verifyECDSA(pub, digest[:], sig)
	case keys.AlgorithmRSA:
		pub, ok := key.Public().(*rsa.PublicKey)
		if !ok {
			return ErrAlgorithmMismatch
		}
		return verifyRSA(pub, digest[:], sig)
	case keys.AlgorithmEd25519:
		pub, ok := key.Public().(ed25519.PublicKey)
		if !ok {
			return ErrAlgorithmMismatch
		}
		if !ed25519.Verify(pub, digest[:], sig) {
			return ErrInvalidSignature
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrAlgorithmMismatch, key.Algorithm())
	}
}

// DecodeSignature decodes url-safe base64 with or without padding.
//
// Decoding is strict: padding must be exactly what the length requires,
// unused trailing bits must be zero and line breaks are rejected. Apart from
// dropping the padding, no other string decodes to the same bytes.
func DecodeSignature(encoded []byte) ([]byte, error) {
	if len(encoded) == 0 || bytes.ContainsAny(encoded, "\r\n") {
		return nil, ErrMalformedSignature
	}

	enc := base64.RawURLEncoding.Strict()
	if bytes.IndexByte(encoded, '=') >= 0 {
		enc = base64.URLEncoding.Strict()
	}

	sig := make([]byte, enc.DecodedLen(len(encoded)))
	n, err := enc.Decode(sig, encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSignature, err)
	}
	if n == 0 {
		return nil, ErrMalformedSignature
	}
	return sig[:n], nil
}

func verifyECDSA(pub *ecdsa.PublicKey, digest, sig []byte) error {
	size := (pub.Curve.Params().BitSize + 7) / 8
	if len(sig) == 2*size {
		r := new(big.Int).SetBytes(sig[:size])
		s := new(big.Int).SetBytes(sig[size:])
		if ecdsa.Verify(pub, digest, r, s) {
			return nil
		}
	}
	if ecdsa.VerifyASN1(pub, digest, sig) {
		return nil
	}
	return ErrInvalidSignature
}

func verifyRSA(pub *rsa.PublicKey, digest, sig []byte) error {
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest, sig); err == nil {
		return nil
	}
	opts := &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthAuto, Hash: crypto.SHA256}
	if err := rsa.VerifyPSS(pub, crypto.SHA256, digest, sig, opts); err != nil {
		return ErrInvalidSignature
	}
	return nil
}

// Package keys imports and caches the public key used to verify signed links.
//
// Key material is imported once per process. The first completed import,
// successful or not, is memoized by the Loader and never retried: a broken
// key is fatal for verification, and every later trust decision is untrusted.
//
// Import rules:
//   - CAN import: internal/errors, std lib, zerolog, x/sync
//   - MUST NOT import: internal/trust, internal/cli
package keys

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"strings"

	"github.com/mrz1836/trustlink/internal/errors"
)

// Algorithm is the key family of an imported public key.
type Algorithm string

// Supported key families.
const (
	// AlgorithmECDSA covers P-256, P-384 and P-521 keys.
	AlgorithmECDSA Algorithm = "ecdsa"

	// AlgorithmRSA covers RSA keys of at least MinRSABits bits.
	AlgorithmRSA Algorithm = "rsa"

	// AlgorithmEd25519 covers Ed25519 keys.
	AlgorithmEd25519 Algorithm = "ed25519"
)

// MinRSABits is the smallest RSA modulus accepted on import.
const MinRSABits = 2048

// PEM block types accepted on import.
const (
	pemTypeSPKI  = "PUBLIC KEY"
	pemTypePKCS1 = "RSA PUBLIC KEY"
)

// Handle is an imported, immutable public key.
type Handle struct {
	public      crypto.PublicKey
	algorithm   Algorithm
	fingerprint string
}

// Public returns the parsed public key.
func (h *Handle) Public() crypto.PublicKey {
	return h.public
}

// Algorithm returns the key family.
func (h *Handle) Algorithm() Algorithm {
	return h.algorithm
}

// Fingerprint returns the hex SHA-256 of the key's SPKI DER encoding.
func (h *Handle) Fingerprint() string {
	return h.fingerprint
}

// String describes the handle without exposing key bytes.
func (h *Handle) String() string {
	return fmt.Sprintf("%s:%s", h.algorithm, h.fingerprint)
}

// Import parses public key material into a Handle.
//
// Accepted forms:
//   - PEM "PUBLIC KEY" (SPKI)
//   - PEM "RSA PUBLIC KEY" (PKCS#1)
//   - the base64 body of an SPKI key without PEM armor, as commonly carried
//     in configuration values
//
// Every failure wraps errors.ErrKeyImport. Empty material wraps
// errors.ErrKeyNotConfigured instead.
func Import(material []byte) (*Handle, error) {
	material = bytes.TrimSpace(material)
	if len(material) == 0 {
		return nil, errors.ErrKeyNotConfigured
	}

	pub, err := parse(material)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrKeyImport, err)
	}

	algorithm, err := classify(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrKeyImport, err)
	}

	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding SPKI: %w", errors.ErrKeyImport, err)
	}
	sum := sha256.Sum256(der)

	return &Handle{
		public:      pub,
		algorithm:   algorithm,
		fingerprint: hex.EncodeToString(sum[:]),
	}, nil
}

// parse decodes PEM or bare base64 SPKI material.
func parse(material []byte) (crypto.PublicKey, error) {
	if !bytes.Contains(material, []byte("-----BEGIN")) {
		der, err := decodeBareBase64(string(material))
		if err != nil {
			return nil, err
		}
		return x509.ParsePKIXPublicKey(der)
	}

	block, rest := pem.Decode(material)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	if len(bytes.TrimSpace(rest)) > 0 {
		return nil, fmt.Errorf("trailing data after %q PEM block", block.Type)
	}

	switch block.Type {
	case pemTypeSPKI:
		return x509.ParsePKIXPublicKey(block.Bytes)
	case pemTypePKCS1:
		return x509.ParsePKCS1PublicKey(block.Bytes)
	default:
		return nil, fmt.Errorf("unsupported PEM block type %q", block.Type)
	}
}

// decodeBareBase64 decodes an SPKI body that may be wrapped over several
// lines and may or may not carry padding.
func decodeBareBase64(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimRight(s, "=")
	der, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 key body: %w", err)
	}
	return der, nil
}

// classify checks the key is one this verifier can use.
func classify(pub crypto.PublicKey) (Algorithm, error) {
	switch k := pub.(type) {
	case *ecdsa.PublicKey:
		return AlgorithmECDSA, nil
	case *rsa.PublicKey:
		if k.N.BitLen() < MinRSABits {
			return "", fmt.Errorf("%w: rsa key of %d bits is below %d", errors.ErrUnsupportedKeyType, k.N.BitLen(), MinRSABits)
		}
		return AlgorithmRSA, nil
	case ed25519.PublicKey:
		return AlgorithmEd25519, nil
	default:
		return "", fmt.Errorf("%w: %T", errors.ErrUnsupportedKeyType, pub)
	}
}

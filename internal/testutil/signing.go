package testutil

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrz1836/trustlink/internal/query"
)

// KeyPair is a signing key together with its public half in the encodings
// trustlink accepts as configuration.
type KeyPair struct {
	Signer crypto.Signer

	// PublicPEM is the SPKI public key in PEM armor.
	PublicPEM string

	// PublicBase64 is the SPKI DER body without armor.
	PublicBase64 string
}

// NewECDSAKey generates a P-256 keypair.
func NewECDSAKey(t testing.TB) *KeyPair {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return newKeyPair(t, priv)
}

// NewRSAKey generates a 2048-bit RSA keypair.
func NewRSAKey(t testing.TB) *KeyPair {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return newKeyPair(t, priv)
}

// NewEd25519Key generates an Ed25519 keypair.
func NewEd25519Key(t testing.TB) *KeyPair {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return newKeyPair(t, priv)
}

func newKeyPair(t testing.TB, signer crypto.Signer) *KeyPair {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(signer.Public())
	require.NoError(t, err)
	return &KeyPair{
		Signer:       signer,
		PublicPEM:    string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})),
		PublicBase64: base64.StdEncoding.EncodeToString(der),
	}
}

// Sign signs the SHA-256 digest of message and returns the signature as
// padded url-safe base64, the encoding carried in the "s" parameter.
func (kp *KeyPair) Sign(t testing.TB, message []byte) string {
	t.Helper()
	return base64.URLEncoding.EncodeToString(kp.SignRaw(t, message))
}

// SignRaw signs the SHA-256 digest of message and returns the raw signature.
// ECDSA signatures are ASN.1 DER, RSA signatures are PKCS#1 v1.5.
func (kp *KeyPair) SignRaw(t testing.TB, message []byte) []byte {
	t.Helper()
	digest := sha256.Sum256(message)

	var opts crypto.SignerOpts = crypto.SHA256
	if _, ok := kp.Signer.(ed25519.PrivateKey); ok {
		opts = crypto.Hash(0)
	}

	sig, err := kp.Signer.Sign(rand.Reader, digest[:], opts)
	require.NoError(t, err)
	return sig
}

// SignedQuery returns Encode(params) with a signature parameter appended,
// the way the upstream server builds error redirects.
func (kp *KeyPair) SignedQuery(t testing.TB, path string, params query.Params) string {
	t.Helper()
	sig := kp.Sign(t, query.Canonicalize(path, params))
	encoded := query.Encode(params)
	if encoded == "" {
		return "s=" + sig
	}
	return encoded + "&s=" + sig
}

// urlAlphabet is the url-safe base64 alphabet.
const urlAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// AlterLastSignatureChar flips the lowest bit of the last data character of
// a url-safe base64 signature. For lengths that are not a multiple of three
// that bit is padding, so a lenient decoder yields the same bytes.
func AlterLastSignatureChar(t testing.TB, sig string) string {
	t.Helper()
	data := strings.TrimRight(sig, "=")
	require.NotEmpty(t, data)

	last := len(data) - 1
	idx := strings.IndexByte(urlAlphabet, data[last])
	require.GreaterOrEqual(t, idx, 0, "not url-safe base64: %q", sig)

	return data[:last] + string(urlAlphabet[idx^1]) + sig[len(data):]
}

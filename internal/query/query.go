// Package query parses the error route's query string and rebuilds the exact
// byte sequence a signer covered.
//
// Parameters keep the order in which they appeared in the URL. Canonical
// bytes depend on that order, so nothing in this package ever sorts keys.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages
package query

import (
	"net/url"
	"strings"
)

// Param is a single decoded key/value pair.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of decoded parameters.
// Duplicate keys are kept, in order of appearance.
type Params []Param

// Get returns the value of the first parameter named key.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Value returns the value of the first parameter named key, or "".
func (p Params) Value(key string) string {
	v, _ := p.Get(key)
	return v
}

// Without returns a copy of p with every parameter named key removed.
func (p Params) Without(key string) Params {
	out := make(Params, 0, len(p))
	for _, kv := range p {
		if kv.Key != key {
			out = append(out, kv)
		}
	}
	return out
}

// Signature is the still-encoded value of the reserved signature parameter.
type Signature struct {
	// Encoded is the decoded query value, i.e. the url-safe base64 text.
	Encoded string
	// Present is false when the parameter did not appear at all.
	Present bool
}

// Parse splits a raw query string into ordered, form-decoded parameters.
//
// One leading "?" is ignored, empty segments are skipped, and a segment
// without "=" becomes a key with an empty value. A malformed percent escape
// anywhere in the query degrades the whole result to an empty Params; the
// caller then sees no signature and settles untrusted.
func Parse(rawQuery string) Params {
	rawQuery = strings.TrimPrefix(rawQuery, "?")
	if rawQuery == "" {
		return Params{}
	}

	segments := strings.Split(rawQuery, "&")
	params := make(Params, 0, len(segments))
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(segment, "=")

		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return Params{}
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return Params{}
		}
		params = append(params, Param{Key: key, Value: value})
	}
	return params
}

// ExtractSignature removes every parameter named name and returns the
// remainder together with the first such value. The input is not modified.
func ExtractSignature(params Params, name string) (Params, Signature) {
	value, ok := params.Get(name)
	return params.Without(name), Signature{Encoded: value, Present: ok}
}

// Encode form-encodes params as "k=v" pairs joined by "&", in order.
// Escaping matches url.QueryEscape, which is what url.Values.Encode uses on
// the signing side.
func Encode(params Params) string {
	if len(params) == 0 {
		return ""
	}
	var b strings.Builder
	for i, kv := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}

// Canonicalize returns the message a signature must cover: path + "?" + Encode(params).
// params must already exclude the signature parameter.
func Canonicalize(path string, params Params) []byte {
	encoded := Encode(params)
	msg := make([]byte, 0, len(path)+1+len(encoded))
	msg = append(msg, path...)
	msg = append(msg, '?')
	msg = append(msg, encoded...)
	return msg
}

// Package testutil provides testing utilities for trustlink.
//
// It holds keypairs and a signer that produces links the way the upstream
// server does, so tests can exercise verification end to end.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
var (
	// ErrMockVerifier indicates a mock verifier failed (used in tests).
	ErrMockVerifier = errors.New("verifier failed")

	// ErrMockKeySource indicates a mock key source is unavailable (used in tests).
	ErrMockKeySource = errors.New("key source unavailable")
)

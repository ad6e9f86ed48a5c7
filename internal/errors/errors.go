// Package errors provides centralized error handling for trustlink.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// Verification failures are deliberately absent: a signature that does not
// verify is an ordinary outcome (untrusted), not an error.
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
var (
	// ErrKeyImport indicates the configured public key material could not be
	// parsed into a usable verification key. It is fatal for the verification
	// path: every later verification resolves to untrusted.
	ErrKeyImport = errors.New("public key import failed")

	// ErrKeyNotConfigured indicates no public key material was supplied.
	ErrKeyNotConfigured = errors.New("public key not configured")

	// ErrUnsupportedKeyType indicates the key parsed but is not an ECDSA, RSA or Ed25519 key.
	ErrUnsupportedKeyType = errors.New("unsupported public key type")

	// ErrGateTornDown indicates the consumer of a trust gate went away before
	// the trust decision settled. The late result, if any, is discarded.
	ErrGateTornDown = errors.New("trust gate torn down")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidVerifier indicates an invalid verifier configuration value.
	ErrConfigInvalidVerifier = errors.New("invalid verifier configuration")

	// ErrConfigInvalidSite indicates an invalid site configuration value.
	ErrConfigInvalidSite = errors.New("invalid site configuration")

	// ErrConfigInvalidServer indicates an invalid server configuration value.
	ErrConfigInvalidServer = errors.New("invalid server configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrInvalidArgument indicates that an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoInput indicates a command that needs URLs was given none.
	ErrNoInput = errors.New("no input provided")

	// ErrUntrustedLinks indicates at least one verified link did not carry a
	// valid signature. Only the verify command returns it.
	ErrUntrustedLinks = errors.New("one or more links are untrusted")

	// ErrLocked indicates a file lock is held by another process.
	ErrLocked = errors.New("file is locked by another process")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}

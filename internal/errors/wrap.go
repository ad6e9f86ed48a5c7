package errors

import "fmt"

// Wrap adds context to an error at a package boundary and returns nil for a
// nil error, so it can be used inline:
//
//	return errors.Wrap(err, "failed to read public key file")
//
// The chain is preserved, so errors.Is(err, errors.ErrKeyImport) keeps working.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is Wrap with a formatted message.
//
//	return errors.Wrapf(errors.ErrConfigInvalidVerifier, "verifier.timeout must be positive, got %s", d)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

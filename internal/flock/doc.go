// Package flock provides exclusive, non-blocking file locks on Unix and Windows.
//
// trustlink uses it to keep two `config init` runs from interleaving writes
// to the same config file.
//
// Usage:
//
//	release, err := flock.Acquire(path + ".lock")
//	if err != nil {
//	    // another process holds the lock
//	}
//	defer release()
//
// Import rules:
//   - CAN import: internal/errors, std lib, golang.org/x/sys
//   - MUST NOT import: any other internal package
package flock

import (
	"os"

	"github.com/mrz1836/trustlink/internal/errors"
)

// Acquire creates or opens the lock file at path and takes an exclusive lock
// on it. The returned release func unlocks, closes and removes the file.
// It fails immediately with errors.ErrLocked when the lock is held elsewhere.
func Acquire(path string) (func() error, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600) //nolint:gosec // Lock file next to a config file
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open lock file %s", path)
	}
	if err := Exclusive(f.Fd()); err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(errors.ErrLocked, "%s", path)
	}

	release := func() error {
		unlockErr := Unlock(f.Fd())
		_ = os.Remove(path)
		closeErr := f.Close()
		if unlockErr != nil {
			return errors.Wrap(unlockErr, "failed to unlock")
		}
		return closeErr
	}
	return release, nil
}

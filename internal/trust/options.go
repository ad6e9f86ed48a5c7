package trust

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/trustlink/internal/clock"
	"github.com/mrz1836/trustlink/internal/constants"
	"github.com/mrz1836/trustlink/internal/crypto"
	"github.com/mrz1836/trustlink/internal/crypto/keys"
)

// SettledFunc is called once when a gate enters a terminal state.
// It runs on the goroutine that settled the gate, outside the gate's lock.
type SettledFunc func(state constants.TrustState, fields ErrorContext)

// Option configures a Gate.
type Option func(*Gate)

// WithVerifier sets the signature verifier. Without one every gate with a
// signature settles untrusted.
func WithVerifier(v crypto.Verifier) Option {
	return func(g *Gate) {
		g.verifier = v
	}
}

// WithKey sets the public key handle. A nil handle means no key is available.
func WithKey(h *keys.Handle) Option {
	return func(g *Gate) {
		g.key = h
	}
}

// WithSignatureParam overrides the reserved signature parameter name.
func WithSignatureParam(name string) Option {
	return func(g *Gate) {
		if name != "" {
			g.signatureParam = name
		}
	}
}

// WithClock sets the clock used to stamp transitions.
func WithClock(c clock.Clock) Option {
	return func(g *Gate) {
		if c != nil {
			g.clock = c
		}
	}
}

// WithLogger sets the gate logger. Without it the logger is taken from the
// context passed to Activate.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Gate) {
		g.logger = &logger
	}
}

// WithTimeout bounds verification. A verification that exceeds it counts as
// invalid. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(g *Gate) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithOnSettled registers the re-render callback.
func WithOnSettled(fn SettledFunc) Option {
	return func(g *Gate) {
		g.onSettled = fn
	}
}

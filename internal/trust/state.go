// Package trust decides whether the parameters of a signed link may be shown.
//
// This file holds the trust state machine. A gate's state only moves forward
// and every change is recorded with a timestamp and a reason.
//
// Import rules:
//   - CAN import: internal/constants, internal/crypto, internal/query,
//     internal/logging, internal/clock, internal/errors, std lib
//   - MUST NOT import: internal/route, internal/web, internal/cli
package trust

import (
	"slices"
	"time"

	"github.com/mrz1836/trustlink/internal/constants"
)

// ValidTransitions defines all allowed trust state transitions.
// Format: from_state -> []to_states
//
//	Unverified → Verifying, Untrusted
//	Verifying → Trusted, Untrusted
//
// Trusted and Untrusted are terminal.
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidTransitions = map[constants.TrustState][]constants.TrustState{
	constants.TrustStateUnverified: {constants.TrustStateVerifying, constants.TrustStateUntrusted},
	constants.TrustStateVerifying:  {constants.TrustStateTrusted, constants.TrustStateUntrusted},
}

// IsValidTransition checks if a transition from one state to another is allowed.
// Returns false for transitions out of terminal states and to the same state.
func IsValidTransition(from, to constants.TrustState) bool {
	if from == to {
		return false
	}
	targets, exists := ValidTransitions[from]
	if !exists {
		return false
	}
	return slices.Contains(targets, to)
}

// Transition is one entry of a gate's audit trail.
type Transition struct {
	From   constants.TrustState `json:"from"`
	To     constants.TrustState `json:"to"`
	At     time.Time            `json:"at"`
	Reason string               `json:"reason,omitempty"`
}

// Reasons recorded on transitions.
const (
	ReasonNoSignature    = "no signature"
	ReasonNoVerifier     = "no verification capability"
	ReasonNoKey          = "no public key"
	ReasonSignatureFound = "signature present"
	ReasonValid          = "signature valid"
	ReasonInvalid        = "signature invalid"
	ReasonTimeout        = "verification timed out"
)

package trust

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/trustlink/internal/clock"
	"github.com/mrz1836/trustlink/internal/constants"
	"github.com/mrz1836/trustlink/internal/crypto"
	"github.com/mrz1836/trustlink/internal/crypto/keys"
	"github.com/mrz1836/trustlink/internal/errors"
	"github.com/mrz1836/trustlink/internal/logging"
	"github.com/mrz1836/trustlink/internal/query"
)

// Gate owns the trust decision for one error page instance.
//
// Lifecycle:
//   - NewGate: state is unverified, only the error type is exposed
//   - Activate: starts the single verification attempt, or settles untrusted
//     at once when there is no signature, verifier or key
//   - the verification result moves the gate to trusted or untrusted
//   - Teardown: the consumer went away; a result arriving later is dropped
//
// A Gate is safe for concurrent use.
type Gate struct {
	id             string
	path           string
	params         query.Params
	signatureParam string
	verifier       crypto.Verifier
	key            *keys.Handle
	clock          clock.Clock
	logger         *zerolog.Logger
	timeout        time.Duration
	onSettled      SettledFunc

	mu          sync.Mutex
	activated   bool
	tornDown    bool
	pageType    constants.ErrorPageType
	state       constants.TrustState
	fields      ErrorContext
	transitions []Transition
	stopAfter   func() bool
	settled     chan struct{}
	torn        chan struct{}
}

// NewGate creates a gate for the parameters of the page served at path.
// params is the full decoded query, signature included.
func NewGate(path string, params query.Params, opts ...Option) *Gate {
	g := &Gate{
		id:             uuid.NewString(),
		path:           path,
		params:         params,
		signatureParam: constants.ParamSignature,
		clock:          clock.RealClock{},
		state:          constants.TrustStateUnverified,
		settled:        make(chan struct{}),
		torn:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	remaining, _ := query.ExtractSignature(params, g.signatureParam)
	g.pageType = pageType(remaining)
	return g
}

// ID returns the gate's correlation id.
func (g *Gate) ID() string {
	return g.id
}

// Activate starts verification. Only the first call has any effect, and a
// gate that was torn down before activation stays unverified.
//
// Verification runs on its own goroutine; Activate never blocks on it. When
// ctx is done the gate is torn down, which binds the gate to the lifetime of
// whatever owns ctx.
func (g *Gate) Activate(ctx context.Context) {
	g.mu.Lock()
	if g.activated || g.tornDown {
		g.mu.Unlock()
		return
	}
	g.activated = true
	if g.logger == nil {
		l := zerolog.Ctx(ctx).With().Logger()
		g.logger = &l
	}
	l := g.logger.With().Str("component", "trust_gate").Str("gate_id", g.id).Logger()
	g.logger = &l

	remaining, sig := query.ExtractSignature(g.params, g.signatureParam)

	var reason string
	switch {
	case !sig.Present:
		reason = ReasonNoSignature
	case g.verifier == nil:
		reason = ReasonNoVerifier
	case g.key == nil:
		reason = ReasonNoKey
	}
	if reason != "" {
		notify := g.settleLocked(constants.TrustStateUntrusted, reason, ErrorContext{})
		g.mu.Unlock()
		notify()
		return
	}

	g.transitionLocked(constants.TrustStateVerifying, ReasonSignatureFound)
	g.stopAfter = context.AfterFunc(ctx, g.Teardown)
	g.mu.Unlock()

	message := query.Canonicalize(g.path, remaining)
	g.logger.Debug().
		Str("type", logging.SafeValue(constants.ParamType, remaining.Value(constants.ParamType))).
		Int("params", len(remaining)).
		Msg("verifying link signature")

	go g.verify(ctx, remaining, message, []byte(sig.Encoded))
}

// verify runs the one verification attempt and delivers its result.
// Cancellation of ctx does not abort the primitive; Teardown handles that.
func (g *Gate) verify(ctx context.Context, remaining query.Params, message, signature []byte) {
	vctx := context.WithoutCancel(ctx)
	if g.timeout > 0 {
		var cancel context.CancelFunc
		vctx, cancel = context.WithTimeout(vctx, g.timeout)
		defer cancel()
	}

	result := make(chan bool, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				g.logger.Error().Str("panic", fmt.Sprint(r)).Msg("verifier panicked")
				result <- false
			}
		}()
		result <- g.verifier.Verify(vctx, g.key, message, signature)
	}()

	var ok bool
	reason := ReasonInvalid
	select {
	case ok = <-result:
		if ok {
			reason = ReasonValid
		}
	case <-vctx.Done():
		reason = ReasonTimeout
	}

	g.deliver(ok, reason, remaining)
}

// deliver commits a verification result unless the gate was torn down.
func (g *Gate) deliver(ok bool, reason string, remaining query.Params) {
	g.mu.Lock()
	if g.tornDown || g.state != constants.TrustStateVerifying {
		g.mu.Unlock()
		g.logger.Debug().Bool("valid", ok).Msg("discarding late verification result")
		return
	}

	to, fields := constants.TrustStateUntrusted, ErrorContext{}
	if ok {
		to, fields = constants.TrustStateTrusted, trustedContext(remaining)
	}
	notify := g.settleLocked(to, reason, fields)
	g.mu.Unlock()
	notify()
}

// settleLocked moves the gate to a terminal state and returns the callback
// to run once the lock is released. g.mu must be held.
func (g *Gate) settleLocked(to constants.TrustState, reason string, fields ErrorContext) func() {
	g.transitionLocked(to, reason)
	if to == constants.TrustStateTrusted {
		g.fields = fields
	}
	close(g.settled)
	if g.stopAfter != nil {
		g.stopAfter()
	}

	g.logger.Info().
		Str("state", to.String()).
		Str("reason", reason).
		Str("type", g.pageType.String()).
		Msg("trust gate settled")

	fn, snapshot := g.onSettled, g.fields
	return func() {
		if fn != nil {
			fn(to, snapshot)
		}
	}
}

// transitionLocked applies a validated transition. g.mu must be held.
func (g *Gate) transitionLocked(to constants.TrustState, reason string) {
	if !IsValidTransition(g.state, to) {
		// Unreachable through the public API.
		panic(fmt.Sprintf("trust: invalid transition %s -> %s", g.state, to))
	}
	g.transitions = append(g.transitions, Transition{
		From:   g.state,
		To:     to,
		At:     g.clock.Now(),
		Reason: reason,
	})
	g.state = to
}

// Teardown detaches the consumer. A result that arrives afterwards causes no
// transition, no field update and no callback. Teardown of a settled gate is
// a no-op.
func (g *Gate) Teardown() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.tornDown || g.state.IsTerminal() {
		return
	}
	g.tornDown = true
	close(g.torn)
}

// State returns the current trust state.
func (g *Gate) State() constants.TrustState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Type returns the error page type named by the link. It is not covered by
// trust and only selects locally defined content.
func (g *Gate) Type() constants.ErrorPageType {
	return g.pageType
}

// TrustedFields returns the link-supplied content the renderer may show. It
// is the zero ErrorContext unless the state is trusted.
func (g *Gate) TrustedFields() ErrorContext {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fields
}

// Transitions returns a copy of the audit trail.
func (g *Gate) Transitions() []Transition {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Transition, len(g.transitions))
	copy(out, g.transitions)
	return out
}

// Settled is closed when the gate enters a terminal state.
func (g *Gate) Settled() <-chan struct{} {
	return g.settled
}

// Await blocks until the gate settles, is torn down, or ctx is done.
// It returns errors.ErrGateTornDown if the gate was torn down first.
func (g *Gate) Await(ctx context.Context) (constants.TrustState, error) {
	select {
	case <-g.settled:
		return g.State(), nil
	default:
	}

	select {
	case <-g.settled:
		return g.State(), nil
	case <-g.torn:
		return g.State(), errors.ErrGateTornDown
	case <-ctx.Done():
		return g.State(), ctx.Err()
	}
}

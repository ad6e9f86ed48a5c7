package keys

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/mrz1836/trustlink/internal/errors"
)

// loadKey is the single singleflight key: a Loader only ever imports one key.
const loadKey = "public-key"

// Loader imports key material once and hands every caller the same Handle.
//
// Lifecycle: the first Load call starts an import; callers that arrive while
// it is in flight wait for it and share its result. Once an import has
// completed its outcome is fixed for the lifetime of the Loader, including
// failures. Later calls return the memoized result without looking at the
// material they pass.
type Loader struct {
	group singleflight.Group

	mu      sync.RWMutex
	done    bool
	outcome outcome

	imports atomic.Int64
}

// NewLoader creates an empty Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// shared is the process-wide Loader.
//
//nolint:gochecknoglobals // Process-wide init-once key cache
var shared = sync.OnceValue(NewLoader)

// Shared returns the process-wide Loader.
func Shared() *Loader {
	return shared()
}

// Load imports material on first use and returns the memoized Handle.
// A canceled ctx stops the caller from waiting but not the shared import.
func (l *Loader) Load(ctx context.Context, material []byte) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if o, ok := l.cached(); ok {
		return o.handle, o.err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "key_loader").Logger()
	ch := l.group.DoChan(loadKey, func() (any, error) {
		if o, ok := l.cached(); ok {
			return o.handle, o.err
		}
		return l.importOnce(logger, material)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		h, _ := res.Val.(*Handle)
		return h, res.Err
	}
}

// Handle returns the memoized result of a completed import.
// Before any import has completed it returns errors.ErrKeyNotConfigured.
func (l *Loader) Handle() (*Handle, error) {
	if o, ok := l.cached(); ok {
		return o.handle, o.err
	}
	return nil, errors.ErrKeyNotConfigured
}

// Imports reports how many imports this Loader has performed. It is at most 1.
func (l *Loader) Imports() int64 {
	return l.imports.Load()
}

// outcome is the memoized result of the one import.
type outcome struct {
	handle *Handle
	err    error
}

func (l *Loader) cached() (outcome, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.outcome, l.done
}

// importOnce runs inside the singleflight call, so at most one goroutine is here.
func (l *Loader) importOnce(logger zerolog.Logger, material []byte) (*Handle, error) {
	l.imports.Add(1)
	h, err := Import(material)

	l.mu.Lock()
	l.done, l.outcome = true, outcome{handle: h, err: err}
	l.mu.Unlock()

	if err != nil {
		logger.Error().Err(err).Msg("public key import failed, signed links will be untrusted")
		return nil, err
	}
	logger.Info().
		Str("algorithm", string(h.Algorithm())).
		Str("fingerprint", h.Fingerprint()).
		Msg("public key imported")
	return h, nil
}

package keys

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/trustlink/internal/errors"
	"github.com/mrz1836/trustlink/internal/testutil"
)

func TestLoader_Load(t *testing.T) {
	t.Run("imports once and returns the same handle", func(t *testing.T) {
		kp := testutil.NewECDSAKey(t)
		l := NewLoader()

		first, err := l.Load(context.Background(), []byte(kp.PublicPEM))
		require.NoError(t, err)
		second, err := l.Load(context.Background(), []byte(kp.PublicPEM))
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, int64(1), l.Imports())
	})

	t.Run("later material is ignored once loaded", func(t *testing.T) {
		l := NewLoader()
		first, err := l.Load(context.Background(), []byte(testutil.NewECDSAKey(t).PublicPEM))
		require.NoError(t, err)

		second, err := l.Load(context.Background(), []byte(testutil.NewEd25519Key(t).PublicPEM))
		require.NoError(t, err)
		assert.Same(t, first, second)
		assert.Equal(t, AlgorithmECDSA, second.Algorithm())
	})

	t.Run("import failure is memoized and not retried", func(t *testing.T) {
		l := NewLoader()
		_, err := l.Load(context.Background(), []byte("garbage"))
		require.ErrorIs(t, err, errors.ErrKeyImport)

		h, err := l.Load(context.Background(), []byte(testutil.NewECDSAKey(t).PublicPEM))
		require.ErrorIs(t, err, errors.ErrKeyImport)
		assert.Nil(t, h)
		assert.Equal(t, int64(1), l.Imports())
	})

	t.Run("canceled context returns before importing", func(t *testing.T) {
		l := NewLoader()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := l.Load(ctx, []byte(testutil.NewECDSAKey(t).PublicPEM))
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, int64(0), l.Imports())
	})
}

func TestLoader_ConcurrentFirstLoad(t *testing.T) {
	kp := testutil.NewRSAKey(t)
	l := NewLoader()

	const callers = 32
	handles := make([]*Handle, callers)
	errs := make([]error, callers)
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			handles[i], errs[i] = l.Load(context.Background(), []byte(kp.PublicPEM))
		}()
	}
	close(start)
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Same(t, handles[0], handles[i], "caller %d got a different handle", i)
	}
	assert.Equal(t, int64(1), l.Imports())
}

func TestLoader_Handle(t *testing.T) {
	l := NewLoader()
	_, err := l.Handle()
	require.ErrorIs(t, err, errors.ErrKeyNotConfigured)

	loaded, err := l.Load(context.Background(), []byte(testutil.NewEd25519Key(t).PublicPEM))
	require.NoError(t, err)

	h, err := l.Handle()
	require.NoError(t, err)
	assert.Same(t, loaded, h)
}

func TestShared(t *testing.T) {
	assert.Same(t, Shared(), Shared())
}

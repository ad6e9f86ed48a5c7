package crypto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrz1836/trustlink/internal/crypto/keys"
)

func TestVerifierFunc(t *testing.T) {
	var _ Verifier = VerifierFunc(nil)

	t.Run("passes arguments through", func(t *testing.T) {
		var gotMessage, gotSignature []byte
		v := VerifierFunc(func(_ context.Context, _ *keys.Handle, message, signature []byte) bool {
			gotMessage, gotSignature = message, signature
			return true
		})

		ok := v.Verify(context.Background(), nil, []byte("/error?type=x"), []byte("sig"))
		assert.True(t, ok)
		assert.Equal(t, []byte("/error?type=x"), gotMessage)
		assert.Equal(t, []byte("sig"), gotSignature)
	})

	t.Run("returns the function result", func(t *testing.T) {
		v := VerifierFunc(func(context.Context, *keys.Handle, []byte, []byte) bool { return false })
		assert.False(t, v.Verify(context.Background(), nil, nil, nil))
	})
}

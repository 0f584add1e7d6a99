package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := BcryptHasher{}

	digest, err := h.Hash("pw1")
	require.NoError(t, err)
	require.NotEqual(t, "pw1", digest)

	require.True(t, h.Verify("pw1", digest))
	require.False(t, h.Verify("pw2", digest))
	require.False(t, h.Verify("pw1", "not-a-digest"))
}

func TestBcryptHasher_DigestsAreSalted(t *testing.T) {
	h := BcryptHasher{}

	a, err := h.Hash("pw1")
	require.NoError(t, err)
	b, err := h.Hash("pw1")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	h, err := HashPassword("Secret123")
	require.NoError(t, err)
	require.NotEqual(t, "Secret123", h)

	require.True(t, CheckPassword(h, "Secret123"))
	require.False(t, CheckPassword(h, "secret123"))
	require.False(t, CheckPassword(h, ""))
}

func TestCheckPassword_GarbageHash(t *testing.T) {
	require.False(t, CheckPassword("not-a-bcrypt-hash", "Secret123"))
}

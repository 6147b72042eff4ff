package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestBox_SealOpen(t *testing.T) {
	b, err := NewBoxFromHex(testKey)
	require.NoError(t, err)

	sealed, err := b.Seal("ya29.refresh-token")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "refresh-token")

	again, err := b.Seal("ya29.refresh-token")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per call")

	plain, err := b.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "ya29.refresh-token", plain)
}

func TestBox_Empty(t *testing.T) {
	b, err := NewBoxFromHex(testKey)
	require.NoError(t, err)
	s, err := b.Seal("")
	require.NoError(t, err)
	assert.Empty(t, s)
	p, err := b.Open("")
	require.NoError(t, err)
	assert.Empty(t, p)
}

func TestBox_Errors(t *testing.T) {
	_, err := NewBoxFromHex("zz")
	assert.Error(t, err)
	_, err = NewBoxFromHex("0011")
	assert.ErrorIs(t, err, ErrInvalidKey)

	b, err := NewBoxFromHex(testKey)
	require.NoError(t, err)
	_, err = b.Open("AAAA")
	assert.ErrorIs(t, err, ErrCiphertextTooShort)

	other, err := NewBoxFromHex(strings.Repeat("ab", 32))
	require.NoError(t, err)
	sealed, _ := b.Seal("secret")
	_, err = other.Open(sealed)
	assert.Error(t, err)
}

package cryptox

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	old := PasswordCost
	PasswordCost = bcrypt.MinCost
	t.Cleanup(func() { PasswordCost = old })

	hash, err := HashPassword([]byte("secret1"))
	require.NoError(t, err)
	assert.NotEqual(t, []byte("secret1"), hash)

	ok, err := CheckPassword(hash, []byte("secret1"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, []byte("secret2"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckPassword([]byte("not-a-hash"), []byte("secret1"))
	assert.Error(t, err)
}

func TestMakeRandHexString(t *testing.T) {
	s, err := MakeRandHexString(16)
	require.NoError(t, err)
	assert.Len(t, s, 32)
	_, err = hex.DecodeString(s)
	assert.NoError(t, err)

	empty, err := MakeRandHexString(0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte{1, 2, 3}
	WipeByteArray(buf)
	assert.Equal(t, []byte{0, 0, 0}, buf)
	WipeByteArray(nil)
}

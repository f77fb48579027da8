package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testHasher(t *testing.T) *PasswordHasher {
	t.Helper()
	h, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := testHasher(t)

	hash, err := h.Hash("GoodPass1!")
	require.NoError(t, err)

	assert.NotEqual(t, "GoodPass1!", hash)
	assert.True(t, h.Verify("GoodPass1!", hash))
	assert.False(t, h.Verify("GoodPass2!", hash))
}

func TestPasswordHasher_SaltsEveryHash(t *testing.T) {
	h := testHasher(t)

	first, err := h.Hash("SamePass1!")
	require.NoError(t, err)
	second, err := h.Hash("SamePass1!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("SamePass1!", first))
	assert.True(t, h.Verify("SamePass1!", second))
}

func TestPasswordHasher_MalformedHashFailsClosed(t *testing.T) {
	h := testHasher(t)

	for _, stored := range []string{"", "not-a-hash", "$2a$04$short"} {
		assert.False(t, h.Verify("GoodPass1!", stored), "stored=%q", stored)
	}
}

func TestNewPasswordHasher_Cost(t *testing.T) {
	h, err := NewPasswordHasher(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, h.Cost)

	_, err = NewPasswordHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)
}

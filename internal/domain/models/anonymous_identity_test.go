package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintToken(t *testing.T) {
	a, err := MintToken()
	require.NoError(t, err)
	b, err := MintToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestNewAnonymousIdentity(t *testing.T) {
	identity, err := NewAnonymousIdentity()
	require.NoError(t, err)

	assert.NotEmpty(t, identity.Token)
	assert.Equal(t, 0, identity.SearchCount)
	assert.Nil(t, identity.LastSearchAt)
	assert.False(t, identity.CreatedAt.IsZero())
}

func TestHashAddress(t *testing.T) {
	h1 := HashAddress("203.0.113.7", "salt-a")
	h2 := HashAddress("203.0.113.7", "salt-a")
	h3 := HashAddress("203.0.113.7", "salt-b")
	h4 := HashAddress("203.0.113.8", "salt-a")

	assert.Equal(t, h1, h2, "same address and salt must hash identically")
	assert.NotEqual(t, h1, h3, "changing the salt must re-key the address")
	assert.NotEqual(t, h1, h4)
	assert.Len(t, h1, 64)
	assert.NotContains(t, h1, "203.0.113.7")
}

func TestRemainingOf(t *testing.T) {
	assert.Equal(t, 6, RemainingOf(6, 0))
	assert.Equal(t, 1, RemainingOf(6, 5))
	assert.Equal(t, 0, RemainingOf(6, 6))
	assert.Equal(t, 0, RemainingOf(6, 9), "remaining never goes negative")
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "chronic fatigue", NormalizeQuery("  Chronic   FATIGUE "))
	assert.Equal(t, "", NormalizeQuery("   "))
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordAndCheck(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong-pass", hash))
}

func TestCheckPasswordHashInvalidHash(t *testing.T) {
	assert.False(t, CheckPasswordHash("anything", "not-a-bcrypt-hash"))
}

func TestHashPasswordProducesDistinctHashes(t *testing.T) {
	// bcrypt带随机盐，相同明文两次哈希不应相等
	h1, err := HashPassword("same-pass")
	require.NoError(t, err)
	h2, err := HashPassword("same-pass")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

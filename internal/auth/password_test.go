package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/org-directory/internal"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-password", bcrypt.MinCost)
	require.Nil(t, err)
	assert.True(t, VerifyPassword(hash, "s3cret-password"))
	assert.False(t, VerifyPassword(hash, "wrong-password"))
}

func TestHashPasswordRejectsOver72Bytes(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 73), bcrypt.MinCost)
	require.NotNil(t, err)

	assert.Equal(t, internal.ErrCodePasswordTooLong, err.Code)
}

func TestHashPasswordAccepts72Bytes(t *testing.T) {
	hash, err := HashPassword(strings.Repeat("a", 72), bcrypt.MinCost)
	require.Nil(t, err)
	assert.True(t, VerifyPassword(hash, strings.Repeat("a", 72)))
}

func TestVerifyPasswordMalformedDigest(t *testing.T) {
	assert.False(t, VerifyPassword("not-a-bcrypt-digest", "anything"))
	assert.False(t, VerifyPassword("", "anything"))
}

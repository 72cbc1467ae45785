package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	user := User{PasswordHash: hash}
	assert.True(t, user.CheckPassword("s3cret"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestCanRate(t *testing.T) {
	assert.True(t, (&User{Role: "admin"}).CanRate())
	assert.True(t, (&User{Role: "manager"}).CanRate())
	assert.False(t, (&User{Role: "employee"}).CanRate())
}

func TestValidateScore(t *testing.T) {
	for score := 1; score <= 5; score++ {
		assert.NoError(t, ValidateScore(score))
	}
	assert.Error(t, ValidateScore(0))
	assert.Error(t, ValidateScore(6))
	assert.Error(t, ValidateScore(-1))
}

func TestTOTPRoundTrip(t *testing.T) {
	key, err := NewTOTPKey("alice", "Performance Ratings")
	require.NoError(t, err)
	assert.NotEmpty(t, key.Secret())
	assert.Equal(t, "Performance Ratings", key.Issuer())

	qr, err := TOTPQRCodePNG(key)
	require.NoError(t, err)
	assert.NotEmpty(t, qr)

	assert.False(t, VerifyTOTPCode(key.Secret(), "000000"))
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("3f0c9a8e-tech", "technician")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "3f0c9a8e-tech", claims.UserID)
	assert.Equal(t, "technician", claims.Role)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	token, err := GenerateToken("user-1", "admin")
	require.NoError(t, err)

	original := JWTSecret
	defer func() { JWTSecret = original }()
	JWTSecret = []byte("another-secret")

	_, err = ParseToken(token)
	assert.Error(t, err)
}

package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motorledger/motorledger-backend/pkg/config"
)

func testCfg() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "motorledger-test",
		ExpirationMinutes: 15,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	userID := uuid.New()
	token, err := MintAccessToken(testCfg(), time.Now(), AccessTokenPayload{
		UserID: userID,
		Email:  "driver@example.com",
	})
	require.NoError(t, err)

	claims, err := ParseAccessToken(testCfg(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "driver@example.com", claims.Email)
	assert.Equal(t, "motorledger-test", claims.Issuer)
}

func TestMintAccessToken_requirements(t *testing.T) {
	valid := testCfg()

	noSecret := valid
	noSecret.Secret = ""
	_, err := MintAccessToken(noSecret, time.Now(), AccessTokenPayload{UserID: uuid.New()})
	require.Error(t, err)

	noIssuer := valid
	noIssuer.Issuer = ""
	_, err = MintAccessToken(noIssuer, time.Now(), AccessTokenPayload{UserID: uuid.New()})
	require.Error(t, err)

	_, err = MintAccessToken(valid, time.Now(), AccessTokenPayload{})
	require.Error(t, err)
}

func TestParseAccessToken_rejectsTampering(t *testing.T) {
	token, err := MintAccessToken(testCfg(), time.Now(), AccessTokenPayload{UserID: uuid.New()})
	require.NoError(t, err)

	wrongSecret := testCfg()
	wrongSecret.Secret = "other-secret"
	_, err = ParseAccessToken(wrongSecret, token)
	require.Error(t, err)

	wrongIssuer := testCfg()
	wrongIssuer.Issuer = "someone-else"
	_, err = ParseAccessToken(wrongIssuer, token)
	require.Error(t, err)
}

func TestParseAccessToken_rejectsExpired(t *testing.T) {
	issued := time.Now().Add(-time.Hour)
	token, err := MintAccessToken(testCfg(), issued, AccessTokenPayload{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = ParseAccessToken(testCfg(), token)
	require.Error(t, err)
}

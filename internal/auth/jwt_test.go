package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testTM() *TokenManager {
	return NewTokenManager("acc-secret", "ref-secret", "consult-test", 15*time.Minute, 24*time.Hour)
}

func TestGenerateAndParsePair(t *testing.T) {
	tm := testTM()
	access, refresh, exp, err := tm.GeneratePair("u1", "u1@test.local", "consultant")
	require.NoError(t, err)
	require.True(t, exp.After(time.Now()))

	claims, err := tm.ParseAccess(access)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.UserID)
	require.Equal(t, "u1@test.local", claims.Email)
	require.Equal(t, "consultant", claims.Role)

	rc, err := tm.ParseRefresh(refresh)
	require.NoError(t, err)
	require.Equal(t, "u1", rc.UserID)
}

// The two token types are signed with different secrets and carry a
// type claim; neither parser accepts the other's token.
func TestTokenTypesDoNotCross(t *testing.T) {
	tm := testTM()
	access, refresh, _, err := tm.GeneratePair("u1", "u1@test.local", "client")
	require.NoError(t, err)

	_, err = tm.ParseAccess(refresh)
	require.Error(t, err)
	_, err = tm.ParseRefresh(access)
	require.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := NewTokenManager("acc-secret", "ref-secret", "consult-test", -time.Minute, -time.Minute)
	access, _, _, err := tm.GeneratePair("u1", "u1@test.local", "client")
	require.NoError(t, err)

	_, err = tm.ParseAccess(access)
	require.Error(t, err)
}

func TestForeignSecretRejected(t *testing.T) {
	other := NewTokenManager("else", "else", "consult-test", time.Hour, time.Hour)
	access, _, _, err := other.GeneratePair("u1", "u1@test.local", "client")
	require.NoError(t, err)

	_, err = testTM().ParseAccess(access)
	require.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery", hash)

	require.NoError(t, VerifyPassword("correct horse battery", hash))
	require.Error(t, VerifyPassword("wrong", hash))
}

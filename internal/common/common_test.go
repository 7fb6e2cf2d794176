package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken(secret, 42, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "usernotify", claims.Issuer)
}

func TestValidToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken([]byte("secret-a"), 42, time.Hour)
	require.NoError(t, err)

	_, err = ValidToken([]byte("secret-b"), token)
	assert.Error(t, err)
}

func TestValidToken_Expired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateToken(secret, 42, -time.Minute)
	require.NoError(t, err)

	_, err = ValidToken(secret, token)
	assert.Error(t, err)
}

func TestValidToken_Garbage(t *testing.T) {
	_, err := ValidToken([]byte("test-secret"), "not.a.token")
	assert.Error(t, err)
}

func TestScopeContains(t *testing.T) {
	scope := Scope{1, 3}

	assert.True(t, scope.Contains(1))
	assert.True(t, scope.Contains(3))
	assert.False(t, scope.Contains(2))
	assert.False(t, Scope{}.Contains(1))
}

func TestEventSupports(t *testing.T) {
	event := Event{SupportedKinds: []Kind{KindInApp, KindEmail}}

	assert.True(t, event.Supports(KindInApp))
	assert.True(t, event.Supports(KindEmail))
	assert.False(t, event.Supports(KindPush))
}

func TestRecipientKindsFor(t *testing.T) {
	r := Recipient{UserID: 5, KindsByEvent: map[int64][]Kind{
		1: {KindInApp},
	}}

	assert.Equal(t, []Kind{KindInApp}, r.KindsFor(1))
	assert.Empty(t, r.KindsFor(2))
}

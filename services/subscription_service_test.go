package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	svc := NewSubscriptionService("test-secret", "price_123", "http://localhost:3000", nil)

	token, err := svc.signSessionToken("alex@example.com", true, "cus_123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.parseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alex@example.com", claims.Email)
	assert.True(t, claims.IsSubscribed)
	assert.Equal(t, "cus_123", claims.CustomerID)
}

func TestSessionTokenExpires(t *testing.T) {
	svc := NewSubscriptionService("test-secret", "price_123", "http://localhost:3000", nil)
	svc.now = func() time.Time { return time.Now().Add(-25 * time.Hour) }

	token, err := svc.signSessionToken("alex@example.com", true, "cus_123")
	require.NoError(t, err)

	_, err = svc.parseSessionToken(token)
	assert.Error(t, err)
}

func TestSessionTokenWrongSecret(t *testing.T) {
	signer := NewSubscriptionService("secret-a", "price_123", "http://localhost:3000", nil)
	verifier := NewSubscriptionService("secret-b", "price_123", "http://localhost:3000", nil)

	token, err := signer.signSessionToken("alex@example.com", true, "cus_123")
	require.NoError(t, err)

	_, err = verifier.parseSessionToken(token)
	assert.Error(t, err)
}

func TestParseSessionTokenEmpty(t *testing.T) {
	svc := NewSubscriptionService("test-secret", "price_123", "http://localhost:3000", nil)

	_, err := svc.parseSessionToken("")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseSessionTokenGarbage(t *testing.T) {
	svc := NewSubscriptionService("test-secret", "price_123", "http://localhost:3000", nil)

	_, err := svc.parseSessionToken("not.a.token")
	assert.Error(t, err)
}

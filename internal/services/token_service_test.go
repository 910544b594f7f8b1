package services

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroterra/internal/models"
)

func TestTokenIssueAndParse(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testEpoch)
	svc := NewTokenService([]byte("test-secret"), 2*time.Hour, clock)

	acc := &models.Account{ID: 7, Email: "dana@example.com", RoleID: 40}
	token, err := svc.Issue(acc)
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.AccountID)
	assert.Equal(t, "dana@example.com", claims.Email)
	assert.Equal(t, 40, claims.RoleID)
}

func TestTokenExpires(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testEpoch)
	svc := NewTokenService([]byte("test-secret"), 2*time.Hour, clock)

	token, err := svc.Issue(&models.Account{ID: 7})
	require.NoError(t, err)

	clock.Advance(2*time.Hour + time.Minute)
	_, err = svc.Parse(token)
	assert.Error(t, err)
}

func TestTokenRejectsForeignSecret(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testEpoch)
	issuer := NewTokenService([]byte("secret-a"), 2*time.Hour, clock)
	verifier := NewTokenService([]byte("secret-b"), 2*time.Hour, clock)

	token, err := issuer.Issue(&models.Account{ID: 7})
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	auth := NewAuthService()

	hash, err := auth.HashPassword("sunflower42")
	require.NoError(t, err)
	assert.NotEqual(t, "sunflower42", hash)
	assert.True(t, auth.CheckPassword("sunflower42", hash))
	assert.False(t, auth.CheckPassword("sunflower43", hash))
}

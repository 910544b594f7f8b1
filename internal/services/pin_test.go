package services

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroterra/internal/models"
)

var testEpoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testFlowPolicy() FlowPolicy {
	return FlowPolicy{
		PinTTL:       10 * time.Minute,
		MaxAttempts:  3,
		LockDuration: 10 * time.Minute,
		ResendMinGap: 3 * time.Minute,
	}
}

func TestGeneratePin(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		pin, err := generatePin()
		require.NoError(t, err)
		require.Len(t, pin, pinDigits)
		for _, r := range pin {
			require.True(t, r >= '0' && r <= '9', "pin %q contains non-digit", pin)
		}
		seen[pin] = true
	}
	// 50 draws from a million values colliding down to a handful would
	// point at a broken source
	assert.Greater(t, len(seen), 40)
}

func TestHashPin(t *testing.T) {
	h1 := hashPin("123456")
	h2 := hashPin("123456")
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, hashPin("123457"))
	assert.Len(t, h1, 64) // sha-256 hex

	cred := &models.VerificationCredential{PinHash: h1}
	assert.True(t, pinMatches("123456", cred))
	assert.False(t, pinMatches("654321", cred))
}

func TestPinChallengesIssueAndExpiry(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testEpoch)
	creds := newMemCredentialRepo()
	pins := pinChallenges{creds: creds, clock: clock}

	pin, err := pins.issue(1, models.PurposeTwoFactor, 10*time.Minute)
	require.NoError(t, err)
	require.Len(t, pin, pinDigits)

	cred, err := creds.FindLive(1, models.PurposeTwoFactor)
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, hashPin(pin), cred.PinHash)
	assert.Equal(t, testEpoch.Add(10*time.Minute), cred.ExpiresAt)

	assert.False(t, pins.isExpired(cred))
	clock.Advance(10*time.Minute - time.Second)
	assert.False(t, pins.isExpired(cred))
	clock.Advance(2 * time.Second)
	assert.True(t, pins.isExpired(cred))
}

func TestPinChallengesIssueSupersedes(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testEpoch)
	creds := newMemCredentialRepo()
	pins := pinChallenges{creds: creds, clock: clock}

	first, err := pins.issue(1, models.PurposeRegistration, 10*time.Minute)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := pins.issue(1, models.PurposeRegistration, 10*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, 1, creds.count())
	cred, err := creds.FindLive(1, models.PurposeRegistration)
	require.NoError(t, err)
	assert.False(t, pinMatches(first, cred))
	assert.True(t, pinMatches(second, cred))
}

func TestPinChallengesRegenerateResetsProgress(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testEpoch)
	creds := newMemCredentialRepo()
	pins := pinChallenges{creds: creds, clock: clock}

	_, err := pins.issue(1, models.PurposeRecovery, 10*time.Minute)
	require.NoError(t, err)

	cred, err := creds.FindLive(1, models.PurposeRecovery)
	require.NoError(t, err)
	cred.Attempts = 2
	cred.PinConfirmed = true
	require.NoError(t, creds.Update(cred))

	clock.Advance(5 * time.Minute)
	pin, err := pins.regenerate(cred, 10*time.Minute)
	require.NoError(t, err)

	fresh, err := creds.FindLive(1, models.PurposeRecovery)
	require.NoError(t, err)
	assert.True(t, pinMatches(pin, fresh))
	assert.Equal(t, 0, fresh.Attempts)
	assert.Equal(t, 1, fresh.Resends)
	assert.False(t, fresh.PinConfirmed)
	assert.Equal(t, clock.Now().UTC().Add(10*time.Minute), fresh.ExpiresAt)
}

func TestThrottleResendWindow(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testEpoch)
	creds := newMemCredentialRepo()
	pins := pinChallenges{creds: creds, clock: clock}
	pol := testFlowPolicy()

	_, err := pins.issue(1, models.PurposeTwoFactor, pol.PinTTL)
	require.NoError(t, err)
	cred, err := creds.FindLive(1, models.PurposeTwoFactor)
	require.NoError(t, err)

	// inside the window
	clock.Advance(pol.ResendMinGap - time.Second)
	err = pins.throttleResend(cred, pol)
	var throttled *ThrottledError
	require.ErrorAs(t, err, &throttled)
	assert.Equal(t, time.Second, throttled.RetryAfter)

	// exactly at the boundary the resend goes through
	clock.Advance(time.Second)
	assert.NoError(t, pins.throttleResend(cred, pol))
}

func TestThrottleResendFirstExemption(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testEpoch)
	creds := newMemCredentialRepo()
	pins := pinChallenges{creds: creds, clock: clock}

	pol := testFlowPolicy()
	pol.ExemptFirstResend = true

	_, err := pins.issue(1, models.PurposeTwoFactor, pol.PinTTL)
	require.NoError(t, err)
	cred, err := creds.FindLive(1, models.PurposeTwoFactor)
	require.NoError(t, err)

	// the first resend skips the gap entirely
	assert.NoError(t, pins.throttleResend(cred, pol))

	_, err = pins.regenerate(cred, pol.PinTTL)
	require.NoError(t, err)

	// the second one is back under the throttle
	err = pins.throttleResend(cred, pol)
	assert.ErrorIs(t, err, ErrThrottled)
}

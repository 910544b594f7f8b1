package services

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroterra/internal/models"
)

type recoveryFixture struct {
	svc      RecoveryService
	accounts *memAccountRepo
	creds    *memCredentialRepo
	mail     *mailbox
	clock    *clockwork.FakeClock
	auth     AuthService
}

func newRecoveryFixture(t *testing.T) *recoveryFixture {
	t.Helper()
	creds := newMemCredentialRepo()
	accounts := newMemAccountRepo(creds)
	mail := newMailbox()
	clock := clockwork.NewFakeClockAt(testEpoch)
	auth := NewAuthService()
	svc := NewRecoveryService(accounts, creds, mail, auth, clock, testFlowPolicy())
	return &recoveryFixture{svc: svc, accounts: accounts, creds: creds, mail: mail, clock: clock, auth: auth}
}

func (f *recoveryFixture) seedActive(t *testing.T, email, password string) *models.Account {
	t.Helper()
	hash, err := f.auth.HashPassword(password)
	require.NoError(t, err)
	acc := &models.Account{Email: email, PasswordHash: hash, State: models.StateActive}
	require.NoError(t, f.accounts.Create(acc))
	return acc
}

// Scenario: full reset round trip, then sign-in material checks out.
func TestRecoveryRoundTrip(t *testing.T) {
	f := newRecoveryFixture(t)
	acc := f.seedActive(t, "dana@example.com", "oldpassword1")

	require.NoError(t, f.svc.Initiate("dana@example.com"))
	pin := f.mail.waitPin(t)

	require.NoError(t, f.svc.ConfirmPin("dana@example.com", pin))
	require.NoError(t, f.svc.ResetPassword("dana@example.com", "newpassword2"))

	stored, err := f.accounts.GetByID(acc.ID)
	require.NoError(t, err)
	assert.True(t, f.auth.CheckPassword("newpassword2", stored.PasswordHash))
	assert.False(t, f.auth.CheckPassword("oldpassword1", stored.PasswordHash))
	assert.Equal(t, 0, f.creds.count())
}

func TestRecoveryRequiresActiveAccount(t *testing.T) {
	f := newRecoveryFixture(t)
	assert.ErrorIs(t, f.svc.Initiate("ghost@example.com"), ErrNotRegistered)

	hash, _ := f.auth.HashPassword("pw123456")
	require.NoError(t, f.accounts.Create(&models.Account{
		Email: "p@example.com", PasswordHash: hash, State: models.StatePending,
	}))
	assert.ErrorIs(t, f.svc.Initiate("p@example.com"), ErrInvalidState)
}

// The password must not change on the strength of an unconfirmed PIN, even
// a correct one sitting in the store.
func TestResetPasswordRequiresConfirmedPin(t *testing.T) {
	f := newRecoveryFixture(t)
	f.seedActive(t, "dana@example.com", "oldpassword1")

	require.NoError(t, f.svc.Initiate("dana@example.com"))
	f.mail.waitPin(t)

	err := f.svc.ResetPassword("dana@example.com", "newpassword2")
	assert.ErrorIs(t, err, ErrPinNotConfirmed)
}

func TestResetPasswordRejectsSamePassword(t *testing.T) {
	f := newRecoveryFixture(t)
	f.seedActive(t, "dana@example.com", "oldpassword1")

	require.NoError(t, f.svc.Initiate("dana@example.com"))
	pin := f.mail.waitPin(t)
	require.NoError(t, f.svc.ConfirmPin("dana@example.com", pin))

	err := f.svc.ResetPassword("dana@example.com", "oldpassword1")
	assert.ErrorIs(t, err, ErrPasswordUnchanged)

	// the confirmation is still standing, a different password goes through
	require.NoError(t, f.svc.ResetPassword("dana@example.com", "newpassword2"))
}

func TestConfirmPinLockoutOnExhaustion(t *testing.T) {
	f := newRecoveryFixture(t)
	acc := f.seedActive(t, "dana@example.com", "oldpassword1")

	require.NoError(t, f.svc.Initiate("dana@example.com"))
	pin := f.mail.waitPin(t)
	wrong := wrongPin(pin)

	for i := 1; i <= 2; i++ {
		err := f.svc.ConfirmPin("dana@example.com", wrong)
		var invalid *InvalidPinError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, 3-i, invalid.AttemptsLeft)
	}
	assert.ErrorIs(t, f.svc.ConfirmPin("dana@example.com", wrong), ErrLocked)

	stored, _ := f.accounts.GetByID(acc.ID)
	assert.Equal(t, models.StateLocked, stored.State)
	assert.Equal(t, 0, f.creds.count())
}

func TestConfirmPinExpired(t *testing.T) {
	f := newRecoveryFixture(t)
	f.seedActive(t, "dana@example.com", "oldpassword1")

	require.NoError(t, f.svc.Initiate("dana@example.com"))
	pin := f.mail.waitPin(t)

	f.clock.Advance(10*time.Minute + time.Second)
	assert.ErrorIs(t, f.svc.ConfirmPin("dana@example.com", pin), ErrPinExpired)
	assert.Equal(t, 0, f.creds.count())
}

// Scenario: PIN confirmed, then a resend arrives before the reset. The new
// code voids the confirmation, so the reset must re-run the PIN step.
func TestResendVoidsPriorConfirmation(t *testing.T) {
	f := newRecoveryFixture(t)
	f.seedActive(t, "dana@example.com", "oldpassword1")

	require.NoError(t, f.svc.Initiate("dana@example.com"))
	pin := f.mail.waitPin(t)
	require.NoError(t, f.svc.ConfirmPin("dana@example.com", pin))

	f.clock.Advance(3 * time.Minute)
	require.NoError(t, f.svc.Resend("dana@example.com"))
	second := f.mail.waitPin(t)

	err := f.svc.ResetPassword("dana@example.com", "newpassword2")
	assert.ErrorIs(t, err, ErrPinNotConfirmed)

	require.NoError(t, f.svc.ConfirmPin("dana@example.com", second))
	require.NoError(t, f.svc.ResetPassword("dana@example.com", "newpassword2"))
}

// A reset whose confirmed credential is consumed underneath it (say by a
// concurrent reset that won the delete) must leave the password untouched.
func TestResetPasswordSingleWinner(t *testing.T) {
	creds := &rivalCredRepo{memCredentialRepo: newMemCredentialRepo()}
	accounts := newMemAccountRepo(creds.memCredentialRepo)
	mail := newMailbox()
	clock := clockwork.NewFakeClockAt(testEpoch)
	auth := NewAuthService()
	svc := NewRecoveryService(accounts, creds, mail, auth, clock, testFlowPolicy())

	hash, err := auth.HashPassword("oldpassword1")
	require.NoError(t, err)
	acc := &models.Account{Email: "dana@example.com", PasswordHash: hash, State: models.StateActive}
	require.NoError(t, accounts.Create(acc))

	require.NoError(t, svc.Initiate("dana@example.com"))
	pin := mail.waitPin(t)
	require.NoError(t, svc.ConfirmPin("dana@example.com", pin))

	creds.armed = true
	err = svc.ResetPassword("dana@example.com", "newpassword2")
	assert.ErrorIs(t, err, ErrNoPendingVerification)

	stored, err := accounts.GetByID(acc.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword("oldpassword1", stored.PasswordHash))
	assert.False(t, auth.CheckPassword("newpassword2", stored.PasswordHash))
}

func TestInitiateThrottledWhileChallengeFresh(t *testing.T) {
	f := newRecoveryFixture(t)
	f.seedActive(t, "dana@example.com", "oldpassword1")

	require.NoError(t, f.svc.Initiate("dana@example.com"))
	f.mail.waitPin(t)

	f.clock.Advance(time.Minute)
	assert.ErrorIs(t, f.svc.Initiate("dana@example.com"), ErrThrottled)

	// an expired challenge does not throttle a restart
	f.clock.Advance(10 * time.Minute)
	require.NoError(t, f.svc.Initiate("dana@example.com"))
	f.mail.waitPin(t)
}

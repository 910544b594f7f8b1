package services

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroterra/internal/models"
)

type registrationFixture struct {
	svc      RegistrationService
	accounts *memAccountRepo
	creds    *memCredentialRepo
	mail     *mailbox
	clock    *clockwork.FakeClock
}

func newRegistrationFixture(t *testing.T) *registrationFixture {
	t.Helper()
	creds := newMemCredentialRepo()
	accounts := newMemAccountRepo(creds)
	mail := newMailbox()
	clock := clockwork.NewFakeClockAt(testEpoch)
	svc := NewRegistrationService(accounts, creds, mail, NewAuthService(), clock, testFlowPolicy())
	return &registrationFixture{svc: svc, accounts: accounts, creds: creds, mail: mail, clock: clock}
}

func register(t *testing.T, f *registrationFixture, email string) (*models.Account, string) {
	t.Helper()
	acc, err := f.svc.Register(&models.RegisterRequest{
		FirstName: "Aruzhan",
		LastName:  "Seitova",
		Email:     email,
		Password:  "sunflower42",
	})
	require.NoError(t, err)
	return acc, f.mail.waitPin(t)
}

func TestRegisterCreatesPendingAccount(t *testing.T) {
	f := newRegistrationFixture(t)

	acc, pin := register(t, f, "Aruzhan@Example.com ")
	assert.Equal(t, models.StatePending, acc.State)
	assert.Equal(t, "aruzhan@example.com", acc.Email)
	assert.Len(t, pin, pinDigits)
	assert.NotEqual(t, "sunflower42", acc.PasswordHash)

	cred, err := f.creds.FindLive(acc.ID, models.PurposeRegistration)
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, hashPin(pin), cred.PinHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newRegistrationFixture(t)

	register(t, f, "a@example.com")
	_, err := f.svc.Register(&models.RegisterRequest{
		FirstName: "B", LastName: "B", Email: "A@example.com", Password: "different1",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestConfirmActivatesAndConsumesCredential(t *testing.T) {
	f := newRegistrationFixture(t)
	acc, pin := register(t, f, "a@example.com")

	require.NoError(t, f.svc.Confirm("a@example.com", pin))

	stored, err := f.accounts.GetByID(acc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateActive, stored.State)
	assert.Equal(t, 0, f.creds.count())

	// a second confirm finds an already-active account
	err = f.svc.Confirm("a@example.com", pin)
	assert.ErrorIs(t, err, ErrInvalidState)
}

// Three wrong codes delete the pending account entirely; a fourth try sees
// no account, and the email is free to register again.
func TestConfirmAttemptsExhaustedDeletesAccount(t *testing.T) {
	f := newRegistrationFixture(t)
	acc, pin := register(t, f, "a@example.com")
	wrong := wrongPin(pin)

	for i := 1; i <= 2; i++ {
		err := f.svc.Confirm("a@example.com", wrong)
		var invalid *InvalidPinError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, 3-i, invalid.AttemptsLeft)
	}

	err := f.svc.Confirm("a@example.com", wrong)
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	gone, err := f.accounts.GetByID(acc.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.Equal(t, 0, f.creds.count())

	assert.ErrorIs(t, f.svc.Confirm("a@example.com", pin), ErrNotRegistered)

	// registration restarts cleanly
	fresh, _ := register(t, f, "a@example.com")
	assert.Equal(t, models.StatePending, fresh.State)
}

// Of two concurrent confirms with the right code, only the one that wins
// the credential consume activates the account; the loser reports the
// missing challenge and changes nothing.
func TestConfirmSingleWinner(t *testing.T) {
	creds := &rivalCredRepo{memCredentialRepo: newMemCredentialRepo()}
	accounts := newMemAccountRepo(creds.memCredentialRepo)
	mail := newMailbox()
	clock := clockwork.NewFakeClockAt(testEpoch)
	svc := NewRegistrationService(accounts, creds, mail, NewAuthService(), clock, testFlowPolicy())

	acc, err := svc.Register(&models.RegisterRequest{
		FirstName: "Aruzhan", LastName: "Seitova",
		Email: "a@example.com", Password: "sunflower42",
	})
	require.NoError(t, err)
	pin := mail.waitPin(t)

	creds.armed = true
	err = svc.Confirm("a@example.com", pin)
	assert.ErrorIs(t, err, ErrNoPendingVerification)

	stored, err := accounts.GetByID(acc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatePending, stored.State)
}

func TestConfirmExpiredPinDeletesAccount(t *testing.T) {
	f := newRegistrationFixture(t)
	acc, pin := register(t, f, "a@example.com")

	f.clock.Advance(10*time.Minute + time.Second)
	err := f.svc.Confirm("a@example.com", pin)
	assert.ErrorIs(t, err, ErrPinExpired)

	gone, err := f.accounts.GetByID(acc.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestResendRegeneratesPin(t *testing.T) {
	f := newRegistrationFixture(t)
	_, first := register(t, f, "a@example.com")

	// too soon
	err := f.svc.Resend("a@example.com")
	assert.ErrorIs(t, err, ErrThrottled)

	f.clock.Advance(3 * time.Minute)
	require.NoError(t, f.svc.Resend("a@example.com"))
	second := f.mail.waitPin(t)

	// old code is dead, new one works
	err = f.svc.Confirm("a@example.com", first)
	assert.ErrorIs(t, err, ErrInvalidPin)
	require.NoError(t, f.svc.Confirm("a@example.com", second))
}

func TestResendWithoutPendingFlow(t *testing.T) {
	f := newRegistrationFixture(t)
	assert.ErrorIs(t, f.svc.Resend("ghost@example.com"), ErrNotRegistered)

	_, pin := register(t, f, "a@example.com")
	require.NoError(t, f.svc.Confirm("a@example.com", pin))
	assert.ErrorIs(t, f.svc.Resend("a@example.com"), ErrInvalidState)
}

// wrongPin returns a pin guaranteed not to match the given one.
func wrongPin(pin string) string {
	if pin == "000000" {
		return "000001"
	}
	return "000000"
}

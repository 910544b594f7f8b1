package services

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroterra/internal/models"
)

func TestValidateLazyUnlock(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testEpoch)
	accounts := newMemAccountRepo(nil)
	states := accountStates{accounts: accounts, clock: clock}

	until := testEpoch.Add(10 * time.Minute)
	acc := &models.Account{
		Email:          "a@example.com",
		State:          models.StateLocked,
		FailedAttempts: 3,
		LockedUntil:    &until,
	}
	require.NoError(t, accounts.Create(acc))

	// lock still in force
	err := states.validate(acc,
		[]models.AccountState{models.StateActive},
		[]models.AccountState{models.StatePending, models.StateInactive},
	)
	var locked *LockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, 10, locked.Minutes())

	// and no state change happened
	stored, err := accounts.GetByID(acc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateLocked, stored.State)
	assert.Equal(t, 3, stored.FailedAttempts)

	// past the deadline the same call unlocks in place
	clock.Advance(10*time.Minute + time.Second)
	require.NoError(t, states.validate(acc,
		[]models.AccountState{models.StateActive},
		[]models.AccountState{models.StatePending, models.StateInactive},
	))
	assert.Equal(t, models.StateActive, acc.State)
	assert.Equal(t, 0, acc.FailedAttempts)
	assert.Nil(t, acc.LockedUntil)

	stored, err = accounts.GetByID(acc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateActive, stored.State)
	assert.Equal(t, 0, stored.FailedAttempts)
}

func TestValidateDisallowedStates(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testEpoch)
	accounts := newMemAccountRepo(nil)
	states := accountStates{accounts: accounts, clock: clock}

	for _, tc := range []struct {
		state models.AccountState
	}{
		{models.StatePending},
		{models.StateInactive},
	} {
		acc := &models.Account{State: tc.state}
		err := states.validate(acc,
			[]models.AccountState{models.StateActive},
			[]models.AccountState{models.StatePending, models.StateInactive},
		)
		var invalid *InvalidStateError
		require.ErrorAs(t, err, &invalid, "state %s", tc.state)
		assert.Equal(t, tc.state, invalid.State)
		assert.ErrorIs(t, err, ErrInvalidState)
	}
}

func TestLockSetsDeadline(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testEpoch)
	accounts := newMemAccountRepo(nil)
	states := accountStates{accounts: accounts, clock: clock}

	acc := &models.Account{Email: "a@example.com", State: models.StateActive}
	require.NoError(t, accounts.Create(acc))

	require.NoError(t, states.lock(acc, 10*time.Minute))
	assert.Equal(t, models.StateLocked, acc.State)
	require.NotNil(t, acc.LockedUntil)
	assert.Equal(t, testEpoch.Add(10*time.Minute), acc.LockedUntil.UTC())
	assert.Equal(t, 10*time.Minute, states.remainingLock(acc))
}

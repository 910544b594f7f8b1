package services

import (
	"time"

	"github.com/jonboulle/clockwork"

	"agroterra/internal/models"
	"agroterra/internal/repositories"
)

// accountStates validates the four-state lifecycle shared by every security
// flow: pending -> active -> locked -> active (lazy) and the terminal
// inactive. Every flow calls validate at the top before touching anything.
type accountStates struct {
	accounts repositories.AccountRepository
	clock    clockwork.Clock
}

// validate runs the lazy unlock, then checks the current state against the
// caller's allow/deny lists. A timed-out lock is flipped back to active with
// the failed-password counter reset before any other check runs; a lock
// still in force rejects with the remaining time and takes no other action.
func (v *accountStates) validate(acc *models.Account, allowed, disallowed []models.AccountState) error {
	if acc.State == models.StateLocked {
		now := v.clock.Now().UTC()
		if acc.LockedUntil != nil && now.After(acc.LockedUntil.UTC()) {
			acc.State = models.StateActive
			acc.FailedAttempts = 0
			acc.LockedUntil = nil
			if err := v.accounts.Update(acc); err != nil {
				return err
			}
		} else {
			return &LockedError{Remaining: v.remainingLock(acc)}
		}
	}

	for _, s := range disallowed {
		if acc.State == s {
			return &InvalidStateError{State: acc.State}
		}
	}
	for _, s := range allowed {
		if acc.State == s {
			return nil
		}
	}
	return &InvalidStateError{State: acc.State}
}

// lock transitions the account to locked for the given duration. The caller
// has already decided that a threshold was crossed.
func (v *accountStates) lock(acc *models.Account, d time.Duration) error {
	until := v.clock.Now().UTC().Add(d)
	acc.State = models.StateLocked
	acc.LockedUntil = &until
	return v.accounts.Update(acc)
}

func (v *accountStates) remainingLock(acc *models.Account) time.Duration {
	if acc.LockedUntil == nil {
		return 0
	}
	return acc.LockedUntil.UTC().Sub(v.clock.Now().UTC())
}

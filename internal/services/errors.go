package services

import (
	"errors"
	"fmt"
	"time"

	"agroterra/internal/models"
)

// Expected flow outcomes. Anything else coming out of a security flow is an
// infrastructure failure and is wrapped with %w instead.
var (
	ErrNotRegistered         = errors.New("account not registered")
	ErrEmailTaken            = errors.New("email already registered")
	ErrNoPendingVerification = errors.New("no pending verification")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrInvalidPin            = errors.New("incorrect pin")
	ErrPinExpired            = errors.New("pin expired")
	ErrTooManyAttempts       = errors.New("too many attempts")
	ErrLocked                = errors.New("account temporarily locked")
	ErrThrottled             = errors.New("resend throttled")
	ErrInvalidState          = errors.New("operation not allowed in current account state")
	ErrPinNotConfirmed       = errors.New("pin not confirmed")
	ErrPasswordUnchanged     = errors.New("new password must differ from the current one")
)

// LockedError reports how long the lock still holds. Minutes is rounded
// down; clients render it directly.
type LockedError struct {
	Remaining time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked, retry in %d min", e.Minutes())
}

func (e *LockedError) Is(target error) bool { return target == ErrLocked }

func (e *LockedError) Minutes() int {
	return int(e.Remaining.Minutes())
}

// ThrottledError reports the wait until the next resend is allowed.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("resend throttled, retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *ThrottledError) Is(target error) bool { return target == ErrThrottled }

// InvalidStateError carries the offending state so the caller can render a
// specific message ("already confirmed", "pending confirmation", "account
// removed").
type InvalidStateError struct {
	State models.AccountState
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("operation not allowed for %s account", e.State)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// InvalidPinError is a mismatch that has not yet exhausted the attempt
// budget; AttemptsLeft lets the client warn the user.
type InvalidPinError struct {
	AttemptsLeft int
}

func (e *InvalidPinError) Error() string {
	return fmt.Sprintf("incorrect pin, %d attempts left", e.AttemptsLeft)
}

func (e *InvalidPinError) Is(target error) bool { return target == ErrInvalidPin }

package models

import "time"

// AccountState is the lifecycle state of an account. The four values are
// exhaustive and mutually exclusive.
type AccountState string

const (
	StatePending  AccountState = "pending"
	StateActive   AccountState = "active"
	StateLocked   AccountState = "locked"
	StateInactive AccountState = "inactive"
)

// Account invariant: LockedUntil is non-nil only while State == StateLocked.
// The lazy unlock in the security flows flips a timed-out lock back to active
// before any other check runs.
type Account struct {
	ID           int          `json:"id"`
	FirstName    string       `json:"first_name"`
	LastName     string       `json:"last_name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	RoleID       int          `json:"role_id"`
	State        AccountState `json:"state"`

	FailedAttempts int        `json:"-"`
	LockedUntil    *time.Time `json:"-"`

	// Telegram task reminders
	TelegramChatID      int64 `json:"-"`
	NotifyTasksTelegram bool  `json:"notify_tasks_telegram"`

	// refresh-token storage, opaque string rotated on every refresh
	RefreshToken     *string    `json:"-"`
	RefreshExpiresAt *time.Time `json:"-"`
	RefreshRevoked   bool       `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenPair is what a completed login (password + PIN) hands back.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

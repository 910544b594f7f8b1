package models

import "time"

// CredentialPurpose selects which security flow a PIN challenge belongs to.
// At most one live credential per account per purpose exists at a time.
type CredentialPurpose string

const (
	PurposeRegistration CredentialPurpose = "registration"
	PurposeTwoFactor    CredentialPurpose = "two_factor"
	PurposeRecovery     CredentialPurpose = "password_recovery"
)

// VerificationCredential is an outstanding PIN challenge. Only the SHA-256
// hash of the code is stored; CreatedAt is reset on every regenerate and
// drives the resend throttle.
type VerificationCredential struct {
	ID        int64             `json:"id"`
	AccountID int               `json:"account_id"`
	Purpose   CredentialPurpose `json:"purpose"`
	PinHash   string            `json:"-"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
	Attempts  int               `json:"attempts"`
	Resends   int               `json:"resends"`

	// password recovery only: PIN step done, password not yet changed
	PinConfirmed bool `json:"pin_confirmed"`
}

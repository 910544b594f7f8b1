package services

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/jonboulle/clockwork"

	"agroterra/internal/models"
	"agroterra/internal/repositories"
)

const pinDigits = 6

var pinModulus = big.NewInt(1_000_000)

// FlowPolicy holds the security knobs of one PIN flow. Constructed from
// config, never read from package globals.
type FlowPolicy struct {
	PinTTL       time.Duration
	MaxAttempts  int
	LockDuration time.Duration
	ResendMinGap time.Duration
	// The legacy behavior exempted the first resend from the throttle in
	// some flows but not others; kept as an explicit per-flow switch.
	ExemptFirstResend bool
}

// generatePin draws a fixed-length numeric code from crypto/rand. This is a
// security control, not a UX string.
func generatePin() (string, error) {
	n, err := rand.Int(rand.Reader, pinModulus)
	if err != nil {
		return "", fmt.Errorf("generate pin: %w", err)
	}
	return fmt.Sprintf("%0*d", pinDigits, n), nil
}

// hashPin is deliberately a fast deterministic hash, not bcrypt: the stored
// value is matched by exact comparison, never brute-force-verified.
func hashPin(pin string) string {
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:])
}

func pinMatches(candidate string, cred *models.VerificationCredential) bool {
	h := hashPin(candidate)
	return subtle.ConstantTimeCompare([]byte(h), []byte(cred.PinHash)) == 1
}

// pinChallenges is the generate/verify/throttle contract shared by the
// registration, two-factor and password-recovery flows.
type pinChallenges struct {
	creds repositories.CredentialRepository
	clock clockwork.Clock
}

// issue creates a fresh credential, superseding any live one for the same
// account and purpose, and returns the plaintext PIN for out-of-band
// delivery.
func (p *pinChallenges) issue(accountID int, purpose models.CredentialPurpose, ttl time.Duration) (string, error) {
	pin, err := generatePin()
	if err != nil {
		return "", err
	}
	now := p.clock.Now().UTC()
	cred := &models.VerificationCredential{
		AccountID: accountID,
		Purpose:   purpose,
		PinHash:   hashPin(pin),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := p.creds.Replace(cred); err != nil {
		return "", err
	}
	return pin, nil
}

// regenerate rewrites the credential in place with a new PIN and a fresh
// TTL. Attempts reset to zero and any prior PIN confirmation is void: a new
// code invalidates everything earned with the old one.
func (p *pinChallenges) regenerate(cred *models.VerificationCredential, ttl time.Duration) (string, error) {
	pin, err := generatePin()
	if err != nil {
		return "", err
	}
	now := p.clock.Now().UTC()
	cred.PinHash = hashPin(pin)
	cred.CreatedAt = now
	cred.ExpiresAt = now.Add(ttl)
	cred.Attempts = 0
	cred.Resends++
	cred.PinConfirmed = false
	if err := p.creds.Update(cred); err != nil {
		return "", err
	}
	return pin, nil
}

func (p *pinChallenges) isExpired(cred *models.VerificationCredential) bool {
	return p.clock.Now().UTC().After(cred.ExpiresAt.UTC())
}

func (p *pinChallenges) wasRecentlyIssued(cred *models.VerificationCredential, minGap time.Duration) bool {
	return p.clock.Now().UTC().Sub(cred.CreatedAt.UTC()) < minGap
}

// throttleResend rejects a resend inside the minimum-interval window and
// reports the remaining wait. Honors the per-flow first-resend exemption.
func (p *pinChallenges) throttleResend(cred *models.VerificationCredential, pol FlowPolicy) error {
	if pol.ExemptFirstResend && cred.Resends == 0 {
		return nil
	}
	if p.wasRecentlyIssued(cred, pol.ResendMinGap) {
		wait := pol.ResendMinGap - p.clock.Now().UTC().Sub(cred.CreatedAt.UTC())
		return &ThrottledError{RetryAfter: wait}
	}
	return nil
}

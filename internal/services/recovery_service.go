package services

import (
	"log"

	"github.com/jonboulle/clockwork"

	"agroterra/internal/models"
	"agroterra/internal/repositories"
)

// RecoveryService is the PIN-gated password reset. Unlike the other two
// flows it has three calls: the PIN must be confirmed as a distinct step
// before the password may actually change, tracked by pin_confirmed on the
// credential.
type RecoveryService interface {
	Initiate(email string) error
	Resend(email string) error
	ConfirmPin(email, pin string) error
	ResetPassword(email, newPassword string) error
}

type recoveryService struct {
	accounts repositories.AccountRepository
	creds    repositories.CredentialRepository
	emails   EmailService
	auth     AuthService
	policy   FlowPolicy

	states accountStates
	pins   pinChallenges
}

func NewRecoveryService(
	accounts repositories.AccountRepository,
	creds repositories.CredentialRepository,
	emails EmailService,
	auth AuthService,
	clock clockwork.Clock,
	policy FlowPolicy,
) RecoveryService {
	return &recoveryService{
		accounts: accounts,
		creds:    creds,
		emails:   emails,
		auth:     auth,
		policy:   policy,
		states:   accountStates{accounts: accounts, clock: clock},
		pins:     pinChallenges{creds: creds, clock: clock},
	}
}

func (s *recoveryService) Initiate(email string) error {
	acc, err := s.loadActive(email)
	if err != nil {
		return err
	}

	if cred, err := s.creds.FindLive(acc.ID, models.PurposeRecovery); err != nil {
		return err
	} else if cred != nil && !s.pins.isExpired(cred) {
		if err := s.pins.throttleResend(cred, s.policy); err != nil {
			return err
		}
	}

	pin, err := s.pins.issue(acc.ID, models.PurposeRecovery, s.policy.PinTTL)
	if err != nil {
		return err
	}
	dispatchEmail("recovery", func() error {
		return s.emails.SendRecoveryPin(acc.Email, pin)
	})

	log.Printf("[recovery][init] account_id=%d", acc.ID)
	return nil
}

func (s *recoveryService) Resend(email string) error {
	acc, err := s.loadActive(email)
	if err != nil {
		return err
	}

	cred, err := s.creds.FindLive(acc.ID, models.PurposeRecovery)
	if err != nil {
		return err
	}
	if cred == nil {
		return ErrNoPendingVerification
	}

	if err := s.pins.throttleResend(cred, s.policy); err != nil {
		return err
	}

	// regenerate resets pin_confirmed: a new PIN invalidates any prior
	// confirmation earned with the old one
	pin, err := s.pins.regenerate(cred, s.policy.PinTTL)
	if err != nil {
		return err
	}
	dispatchEmail("recovery-resend", func() error {
		return s.emails.SendRecoveryPin(acc.Email, pin)
	})

	log.Printf("[recovery][resend] account_id=%d resends=%d", acc.ID, cred.Resends)
	return nil
}

func (s *recoveryService) ConfirmPin(email, pin string) error {
	acc, err := s.loadActive(email)
	if err != nil {
		return err
	}

	cred, err := s.creds.FindLive(acc.ID, models.PurposeRecovery)
	if err != nil {
		return err
	}
	if cred == nil {
		return ErrNoPendingVerification
	}

	if s.pins.isExpired(cred) {
		if err := s.creds.Delete(cred.ID); err != nil {
			return err
		}
		return ErrPinExpired
	}

	if !pinMatches(pin, cred) {
		attempts, err := s.creds.IncrementAttempts(cred.ID)
		if err != nil {
			return err
		}
		if attempts >= s.policy.MaxAttempts {
			if err := s.creds.Delete(cred.ID); err != nil {
				return err
			}
			if err := s.states.lock(acc, s.policy.LockDuration); err != nil {
				return err
			}
			log.Printf("[recovery][confirm] locked after failed pins: account_id=%d", acc.ID)
			return &LockedError{Remaining: s.policy.LockDuration}
		}
		return &InvalidPinError{AttemptsLeft: s.policy.MaxAttempts - attempts}
	}

	// the credential survives into ResetPassword
	if err := s.creds.SetPinConfirmed(cred.ID); err != nil {
		return err
	}
	log.Printf("[recovery][confirm] pin confirmed: account_id=%d", acc.ID)
	return nil
}

func (s *recoveryService) ResetPassword(email, newPassword string) error {
	acc, err := s.loadActive(email)
	if err != nil {
		return err
	}

	cred, err := s.creds.FindLive(acc.ID, models.PurposeRecovery)
	if err != nil {
		return err
	}
	if cred == nil {
		return ErrNoPendingVerification
	}
	if s.pins.isExpired(cred) {
		if err := s.creds.Delete(cred.ID); err != nil {
			return err
		}
		return ErrPinExpired
	}
	if !cred.PinConfirmed {
		return ErrPinNotConfirmed
	}

	// reject no-op resets even though the PIN was valid
	if s.auth.CheckPassword(newPassword, acc.PasswordHash) {
		return ErrPasswordUnchanged
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	// consume before touching the password so concurrent resets cannot
	// both ride the same confirmed credential
	ok, err := s.creds.Consume(cred.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoPendingVerification
	}
	if err := s.accounts.UpdatePassword(acc.ID, hash); err != nil {
		return err
	}
	dispatchEmail("password-changed", func() error {
		return s.emails.SendPasswordChanged(acc.Email)
	})

	log.Printf("[recovery][reset] password updated: account_id=%d", acc.ID)
	return nil
}

func (s *recoveryService) loadActive(email string) (*models.Account, error) {
	acc, err := s.accounts.GetByEmail(normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, ErrNotRegistered
	}
	if err := s.states.validate(acc,
		[]models.AccountState{models.StateActive},
		[]models.AccountState{models.StateInactive, models.StatePending, models.StateLocked},
	); err != nil {
		return nil, err
	}
	return acc, nil
}

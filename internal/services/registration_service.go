package services

import (
	"log"
	"strings"

	"github.com/jonboulle/clockwork"

	"agroterra/internal/models"
	"agroterra/internal/repositories"
)

// RegistrationService owns the pending -> active leg of the account
// lifecycle. A pending account that exhausts or outlives its confirmation
// PIN is deleted entirely: registration is restarted, never resumed.
type RegistrationService interface {
	Register(req *models.RegisterRequest) (*models.Account, error)
	Confirm(email, pin string) error
	Resend(email string) error
}

type registrationService struct {
	accounts repositories.AccountRepository
	creds    repositories.CredentialRepository
	emails   EmailService
	auth     AuthService
	policy   FlowPolicy

	states accountStates
	pins   pinChallenges
}

func NewRegistrationService(
	accounts repositories.AccountRepository,
	creds repositories.CredentialRepository,
	emails EmailService,
	auth AuthService,
	clock clockwork.Clock,
	policy FlowPolicy,
) RegistrationService {
	return &registrationService{
		accounts: accounts,
		creds:    creds,
		emails:   emails,
		auth:     auth,
		policy:   policy,
		states:   accountStates{accounts: accounts, clock: clock},
		pins:     pinChallenges{creds: creds, clock: clock},
	}
}

func (s *registrationService) Register(req *models.RegisterRequest) (*models.Account, error) {
	email := normalizeEmail(req.Email)

	existing, err := s.accounts.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	acc := &models.Account{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: hash,
		State:        models.StatePending,
	}
	if err := s.accounts.Create(acc); err != nil {
		return nil, err
	}

	pin, err := s.pins.issue(acc.ID, models.PurposeRegistration, s.policy.PinTTL)
	if err != nil {
		return nil, err
	}
	dispatchEmail("registration", func() error {
		return s.emails.SendRegistrationPin(acc.Email, acc.FirstName, pin)
	})

	log.Printf("[register][init] account_id=%d email=%s", acc.ID, acc.Email)
	return acc, nil
}

func (s *registrationService) Confirm(email, pin string) error {
	acc, err := s.accounts.GetByEmail(normalizeEmail(email))
	if err != nil {
		return err
	}
	if acc == nil {
		return ErrNotRegistered
	}

	if err := s.states.validate(acc,
		[]models.AccountState{models.StatePending},
		[]models.AccountState{models.StateActive, models.StateLocked, models.StateInactive},
	); err != nil {
		return err
	}

	cred, err := s.creds.FindLive(acc.ID, models.PurposeRegistration)
	if err != nil {
		return err
	}
	if cred == nil {
		return ErrNoPendingVerification
	}

	// Expiry wins over everything, even a correct PIN arriving late.
	if s.pins.isExpired(cred) {
		if err := s.accounts.Delete(acc.ID); err != nil {
			return err
		}
		log.Printf("[register][confirm] expired, account deleted: account_id=%d", acc.ID)
		return ErrPinExpired
	}

	if !pinMatches(pin, cred) {
		attempts, err := s.creds.IncrementAttempts(cred.ID)
		if err != nil {
			return err
		}
		if attempts >= s.policy.MaxAttempts {
			if err := s.accounts.Delete(acc.ID); err != nil {
				return err
			}
			log.Printf("[register][confirm] attempts exhausted, account deleted: account_id=%d", acc.ID)
			return ErrTooManyAttempts
		}
		return &InvalidPinError{AttemptsLeft: s.policy.MaxAttempts - attempts}
	}

	// consume first: of two concurrent confirms with the right PIN, only
	// the one that wins the delete activates the account
	ok, err := s.creds.Consume(cred.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoPendingVerification
	}
	acc.State = models.StateActive
	if err := s.accounts.Update(acc); err != nil {
		return err
	}
	log.Printf("[register][confirm] OK account_id=%d", acc.ID)
	return nil
}

func (s *registrationService) Resend(email string) error {
	acc, err := s.accounts.GetByEmail(normalizeEmail(email))
	if err != nil {
		return err
	}
	if acc == nil {
		return ErrNotRegistered
	}

	if err := s.states.validate(acc,
		[]models.AccountState{models.StatePending},
		[]models.AccountState{models.StateActive, models.StateLocked, models.StateInactive},
	); err != nil {
		return err
	}

	// resend only makes sense mid-flow
	cred, err := s.creds.FindLive(acc.ID, models.PurposeRegistration)
	if err != nil {
		return err
	}
	if cred == nil {
		return ErrNoPendingVerification
	}

	if err := s.pins.throttleResend(cred, s.policy); err != nil {
		return err
	}

	pin, err := s.pins.regenerate(cred, s.policy.PinTTL)
	if err != nil {
		return err
	}
	dispatchEmail("registration-resend", func() error {
		return s.emails.SendRegistrationPin(acc.Email, acc.FirstName, pin)
	})

	log.Printf("[register][resend] account_id=%d resends=%d", acc.ID, cred.Resends)
	return nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

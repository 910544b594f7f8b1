package services

import (
	"log"
	"time"

	"github.com/jonboulle/clockwork"

	"agroterra/internal/models"
	"agroterra/internal/repositories"
	"agroterra/internal/utils"
)

// LoginPolicy covers the password step of the two-factor login. The PIN
// step has its own FlowPolicy: the two lockouts are configured
// independently on purpose.
type LoginPolicy struct {
	MaxFailedPasswords int
	LockDuration       time.Duration
	RefreshTTL         time.Duration
}

// LoginService is the two-step authentication flow: password first, then a
// PIN delivered by email. No token is issued until both steps pass.
type LoginService interface {
	Login(email, password string) error
	VerifyTwoFactor(email, pin string) (*models.TokenPair, error)
	ResendTwoFactorPin(email string) error
	Refresh(refreshToken string) (*models.TokenPair, error)
}

type loginService struct {
	accounts repositories.AccountRepository
	creds    repositories.CredentialRepository
	emails   EmailService
	auth     AuthService
	tokens   TokenService
	clock    clockwork.Clock

	loginPolicy LoginPolicy
	pinPolicy   FlowPolicy

	states accountStates
	pins   pinChallenges
}

func NewLoginService(
	accounts repositories.AccountRepository,
	creds repositories.CredentialRepository,
	emails EmailService,
	auth AuthService,
	tokens TokenService,
	clock clockwork.Clock,
	loginPolicy LoginPolicy,
	pinPolicy FlowPolicy,
) LoginService {
	return &loginService{
		accounts:    accounts,
		creds:       creds,
		emails:      emails,
		auth:        auth,
		tokens:      tokens,
		clock:       clock,
		loginPolicy: loginPolicy,
		pinPolicy:   pinPolicy,
		states:      accountStates{accounts: accounts, clock: clock},
		pins:        pinChallenges{creds: creds, clock: clock},
	}
}

// Login checks the password and, on success, opens a two-factor challenge.
// Success here means "PIN sent", never "signed in".
func (s *loginService) Login(email, password string) error {
	acc, err := s.accounts.GetByEmail(normalizeEmail(email))
	if err != nil {
		return err
	}
	if acc == nil {
		return ErrNotRegistered
	}

	if err := s.states.validate(acc,
		[]models.AccountState{models.StateActive},
		[]models.AccountState{models.StateInactive, models.StatePending, models.StateLocked},
	); err != nil {
		return err
	}

	// A challenge issued moments ago is still good; re-triggering the email
	// send here would let a password holder spam the inbox.
	if cred, err := s.creds.FindLive(acc.ID, models.PurposeTwoFactor); err != nil {
		return err
	} else if cred != nil {
		if !s.pins.isExpired(cred) && s.pins.wasRecentlyIssued(cred, s.pinPolicy.ResendMinGap) {
			wait := s.pinPolicy.ResendMinGap - s.clock.Now().UTC().Sub(cred.CreatedAt.UTC())
			return &ThrottledError{RetryAfter: wait}
		}
		if err := s.creds.Delete(cred.ID); err != nil {
			return err
		}
	}

	if !s.auth.CheckPassword(password, acc.PasswordHash) {
		acc.FailedAttempts++
		if acc.FailedAttempts >= s.loginPolicy.MaxFailedPasswords {
			if err := s.states.lock(acc, s.loginPolicy.LockDuration); err != nil {
				return err
			}
			log.Printf("[auth][login] locked after failed passwords: account_id=%d", acc.ID)
			return &LockedError{Remaining: s.loginPolicy.LockDuration}
		}
		if err := s.accounts.Update(acc); err != nil {
			return err
		}
		return ErrInvalidCredentials
	}

	acc.FailedAttempts = 0
	if err := s.accounts.Update(acc); err != nil {
		return err
	}

	pin, err := s.pins.issue(acc.ID, models.PurposeTwoFactor, s.pinPolicy.PinTTL)
	if err != nil {
		return err
	}
	dispatchEmail("two-factor", func() error {
		return s.emails.SendTwoFactorPin(acc.Email, pin)
	})

	log.Printf("[auth][login] password OK, 2fa initiated: account_id=%d", acc.ID)
	return nil
}

func (s *loginService) VerifyTwoFactor(email, pin string) (*models.TokenPair, error) {
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

	cred, err := s.creds.FindLive(acc.ID, models.PurposeTwoFactor)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, ErrNoPendingVerification
	}

	if s.pins.isExpired(cred) {
		if err := s.creds.Delete(cred.ID); err != nil {
			return nil, err
		}
		return nil, ErrPinExpired
	}

	if !pinMatches(pin, cred) {
		attempts, err := s.creds.IncrementAttempts(cred.ID)
		if err != nil {
			return nil, err
		}
		if attempts >= s.pinPolicy.MaxAttempts {
			if err := s.creds.Delete(cred.ID); err != nil {
				return nil, err
			}
			if err := s.states.lock(acc, s.pinPolicy.LockDuration); err != nil {
				return nil, err
			}
			log.Printf("[auth][2fa] locked after failed pins: account_id=%d", acc.ID)
			return nil, &LockedError{Remaining: s.pinPolicy.LockDuration}
		}
		return nil, &InvalidPinError{AttemptsLeft: s.pinPolicy.MaxAttempts - attempts}
	}

	// single-use: the challenge must be consumed before tokens exist, and
	// only the caller that wins the delete gets them
	ok, err := s.creds.Consume(cred.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoPendingVerification
	}
	pair, err := s.issueTokens(acc)
	if err != nil {
		return nil, err
	}
	log.Printf("[auth][2fa] OK account_id=%d", acc.ID)
	return pair, nil
}

func (s *loginService) ResendTwoFactorPin(email string) error {
	acc, err := s.accounts.GetByEmail(normalizeEmail(email))
	if err != nil {
		return err
	}
	if acc == nil {
		return ErrNotRegistered
	}

	if err := s.states.validate(acc,
		[]models.AccountState{models.StateActive},
		[]models.AccountState{models.StateInactive, models.StatePending, models.StateLocked},
	); err != nil {
		return err
	}

	cred, err := s.creds.FindLive(acc.ID, models.PurposeTwoFactor)
	if err != nil {
		return err
	}
	if cred == nil {
		return ErrNoPendingVerification
	}

	if err := s.pins.throttleResend(cred, s.pinPolicy); err != nil {
		return err
	}

	pin, err := s.pins.regenerate(cred, s.pinPolicy.PinTTL)
	if err != nil {
		return err
	}
	dispatchEmail("two-factor-resend", func() error {
		return s.emails.SendTwoFactorPin(acc.Email, pin)
	})

	log.Printf("[auth][2fa][resend] account_id=%d resends=%d", acc.ID, cred.Resends)
	return nil
}

// Refresh rotates the opaque refresh token and issues a new access token.
func (s *loginService) Refresh(refreshToken string) (*models.TokenPair, error) {
	acc, err := s.accounts.GetByRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if acc == nil || acc.RefreshExpiresAt == nil || acc.RefreshRevoked {
		return nil, ErrInvalidCredentials
	}
	if s.clock.Now().UTC().After(acc.RefreshExpiresAt.UTC()) {
		return nil, ErrInvalidCredentials
	}

	newRT, err := utils.NewRefreshToken(32)
	if err != nil {
		return nil, err
	}
	newExp := s.clock.Now().UTC().Add(s.loginPolicy.RefreshTTL)
	rotated, err := s.accounts.RotateRefresh(refreshToken, newRT, newExp)
	if err != nil || rotated == nil {
		return nil, ErrInvalidCredentials
	}

	access, err := s.tokens.Issue(rotated)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: newRT}, nil
}

func (s *loginService) issueTokens(acc *models.Account) (*models.TokenPair, error) {
	access, err := s.tokens.Issue(acc)
	if err != nil {
		return nil, err
	}
	rt, err := utils.NewRefreshToken(32)
	if err != nil {
		return nil, err
	}
	exp := s.clock.Now().UTC().Add(s.loginPolicy.RefreshTTL)
	if err := s.accounts.UpdateRefresh(acc.ID, rt, exp); err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: rt}, nil
}

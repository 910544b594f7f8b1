package services

import (
	"fmt"

	"agroterra/internal/models"
	"agroterra/internal/repositories"
)

// AccountService covers the administrative surface of accounts. The
// security flows never call this; deactivation is the one transition that
// only an administrator may trigger.
type AccountService interface {
	GetByID(id int) (*models.Account, error)
	Update(acc *models.Account) error
	// Deactivate is terminal from the flows' point of view: every PIN flow
	// against an inactive account fails permanently.
	Deactivate(id int) error
	LinkTelegram(accountID int, chatID int64, enable bool) error
}

type accountService struct {
	accounts repositories.AccountRepository
	creds    repositories.CredentialRepository
}

func NewAccountService(accounts repositories.AccountRepository, creds repositories.CredentialRepository) AccountService {
	return &accountService{accounts: accounts, creds: creds}
}

func (s *accountService) GetByID(id int) (*models.Account, error) {
	return s.accounts.GetByID(id)
}

func (s *accountService) Update(acc *models.Account) error {
	return s.accounts.Update(acc)
}

func (s *accountService) Deactivate(id int) error {
	acc, err := s.accounts.GetByID(id)
	if err != nil {
		return err
	}
	if acc == nil {
		return fmt.Errorf("account %d not found", id)
	}
	acc.State = models.StateInactive
	acc.LockedUntil = nil
	acc.FailedAttempts = 0
	if err := s.accounts.Update(acc); err != nil {
		return err
	}
	// outstanding challenges are useless now
	return s.creds.DeleteByAccount(id)
}

func (s *accountService) LinkTelegram(accountID int, chatID int64, enable bool) error {
	return s.accounts.UpdateTelegramLink(accountID, chatID, enable)
}

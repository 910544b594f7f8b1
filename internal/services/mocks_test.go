package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"agroterra/internal/models"
)

// In-memory repositories backing the flow tests. They mirror the postgres
// repositories' contracts: lookups return nil on miss, FindLive returns the
// newest credential regardless of expiry, account deletion cascades to
// credentials.

type memAccountRepo struct {
	mu     sync.Mutex
	nextID int
	byID   map[int]*models.Account
	creds  *memCredentialRepo
}

func newMemAccountRepo(creds *memCredentialRepo) *memAccountRepo {
	return &memAccountRepo{byID: map[int]*models.Account{}, creds: creds}
}

func cloneAccount(a *models.Account) *models.Account {
	cp := *a
	if a.LockedUntil != nil {
		t := *a.LockedUntil
		cp.LockedUntil = &t
	}
	if a.RefreshToken != nil {
		s := *a.RefreshToken
		cp.RefreshToken = &s
	}
	if a.RefreshExpiresAt != nil {
		t := *a.RefreshExpiresAt
		cp.RefreshExpiresAt = &t
	}
	return &cp
}

func (r *memAccountRepo) Create(a *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.ID = r.nextID
	a.CreatedAt = time.Now().UTC()
	r.byID[a.ID] = cloneAccount(a)
	return nil
}

func (r *memAccountRepo) GetByID(id int) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return cloneAccount(a), nil
}

func (r *memAccountRepo) GetByEmail(email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, nil
}

func (r *memAccountRepo) Update(a *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[a.ID] = cloneAccount(a)
	return nil
}

func (r *memAccountRepo) UpdatePassword(id int, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		a.PasswordHash = passwordHash
	}
	return nil
}

func (r *memAccountRepo) Delete(id int) error {
	r.mu.Lock()
	delete(r.byID, id)
	r.mu.Unlock()
	if r.creds != nil {
		return r.creds.DeleteByAccount(id)
	}
	return nil
}

func (r *memAccountRepo) GetTelegramSettings(_ context.Context, accountID int) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[accountID]; ok {
		return a.TelegramChatID, a.NotifyTasksTelegram, nil
	}
	return 0, false, nil
}

func (r *memAccountRepo) UpdateTelegramLink(accountID int, chatID int64, enable bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[accountID]; ok {
		a.TelegramChatID = chatID
		a.NotifyTasksTelegram = enable
	}
	return nil
}

func (r *memAccountRepo) UpdateRefresh(id int, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		a.RefreshToken = &token
		a.RefreshExpiresAt = &expiresAt
		a.RefreshRevoked = false
	}
	return nil
}

func (r *memAccountRepo) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.RefreshToken != nil && *a.RefreshToken == oldToken && !a.RefreshRevoked {
			a.RefreshToken = &newToken
			a.RefreshExpiresAt = &newExpiresAt
			return cloneAccount(a), nil
		}
	}
	return nil, nil
}

func (r *memAccountRepo) GetByRefreshToken(token string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.RefreshToken != nil && *a.RefreshToken == token && !a.RefreshRevoked {
			return cloneAccount(a), nil
		}
	}
	return nil, nil
}

func (r *memAccountRepo) ClearRefresh(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		a.RefreshToken = nil
		a.RefreshExpiresAt = nil
		a.RefreshRevoked = true
	}
	return nil
}

type memCredentialRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.VerificationCredential
}

func newMemCredentialRepo() *memCredentialRepo {
	return &memCredentialRepo{byID: map[int64]*models.VerificationCredential{}}
}

func cloneCred(c *models.VerificationCredential) *models.VerificationCredential {
	cp := *c
	return &cp
}

func (r *memCredentialRepo) Replace(c *models.VerificationCredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, old := range r.byID {
		if old.AccountID == c.AccountID && old.Purpose == c.Purpose {
			delete(r.byID, id)
		}
	}
	r.nextID++
	c.ID = r.nextID
	r.byID[c.ID] = cloneCred(c)
	return nil
}

func (r *memCredentialRepo) FindLive(accountID int, purpose models.CredentialPurpose) (*models.VerificationCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.VerificationCredential
	for _, c := range r.byID {
		if c.AccountID != accountID || c.Purpose != purpose {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, nil
	}
	return cloneCred(latest), nil
}

func (r *memCredentialRepo) Update(c *models.VerificationCredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[c.ID] = cloneCred(c)
	return nil
}

func (r *memCredentialRepo) IncrementAttempts(id int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return 0, nil
	}
	c.Attempts++
	return c.Attempts, nil
}

func (r *memCredentialRepo) SetPinConfirmed(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byID[id]; ok {
		c.PinConfirmed = true
	}
	return nil
}

func (r *memCredentialRepo) Consume(id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

func (r *memCredentialRepo) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *memCredentialRepo) DeleteByAccount(accountID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.byID {
		if c.AccountID == accountID {
			delete(r.byID, id)
		}
	}
	return nil
}

// rivalCredRepo simulates a second verification landing between this
// caller's read and its consume: when armed, the next FindLive still hands
// back the credential but removes it from the store underneath.
type rivalCredRepo struct {
	*memCredentialRepo
	armed bool
}

func (r *rivalCredRepo) FindLive(accountID int, purpose models.CredentialPurpose) (*models.VerificationCredential, error) {
	cred, err := r.memCredentialRepo.FindLive(accountID, purpose)
	if err != nil || cred == nil {
		return cred, err
	}
	if r.armed {
		r.armed = false
		if err := r.memCredentialRepo.Delete(cred.ID); err != nil {
			return nil, err
		}
	}
	return cred, nil
}

func (r *memCredentialRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// mailbox captures the plaintext PINs the flows email out. Sends run on a
// goroutine, so delivery is observed through a channel rather than a field.
type mailbox struct {
	pins chan string

	mu              sync.Mutex
	passwordChanged int
}

func newMailbox() *mailbox {
	return &mailbox{pins: make(chan string, 16)}
}

func (m *mailbox) SendRegistrationPin(_, _, pin string) error {
	m.pins <- pin
	return nil
}

func (m *mailbox) SendTwoFactorPin(_, pin string) error {
	m.pins <- pin
	return nil
}

func (m *mailbox) SendRecoveryPin(_, pin string) error {
	m.pins <- pin
	return nil
}

func (m *mailbox) SendPasswordChanged(string) error {
	m.mu.Lock()
	m.passwordChanged++
	m.mu.Unlock()
	return nil
}

func (m *mailbox) waitPin(t *testing.T) string {
	t.Helper()
	select {
	case pin := <-m.pins:
		return pin
	case <-time.After(2 * time.Second):
		t.Fatal("expected a pin email, got none")
		return ""
	}
}

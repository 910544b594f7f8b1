package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"agroterra/internal/models"
)

type AccountRepository interface {
	Create(a *models.Account) error
	GetByID(id int) (*models.Account, error)
	GetByEmail(email string) (*models.Account, error)
	Update(a *models.Account) error
	UpdatePassword(id int, passwordHash string) error
	// Delete removes the account and cascades to all of its verification
	// credentials. Used by the registration flow when confirmation is
	// exhausted or expired.
	Delete(id int) error

	// Telegram helpers
	GetTelegramSettings(ctx context.Context, accountID int) (chatID int64, notify bool, err error)
	UpdateTelegramLink(accountID int, chatID int64, enable bool) error

	// refresh helpers
	UpdateRefresh(id int, token string, expiresAt time.Time) error
	RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.Account, error)
	GetByRefreshToken(token string) (*models.Account, error)
	ClearRefresh(id int) error
}

type accountRepository struct {
	DB *sql.DB
}

func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{DB: db}
}

const accountColumns = `
	id, first_name, last_name, email, password_hash, role_id, state,
	failed_attempts, locked_until,
	refresh_token, refresh_expires_at, refresh_revoked,
	created_at
`

func (r *accountRepository) Create(a *models.Account) error {
	const q = `
		INSERT INTO accounts (
			first_name, last_name, email, password_hash, role_id, state,
			failed_attempts, locked_until
		)
		VALUES ($1,$2,$3,$4,$5,$6,0,NULL)
		RETURNING id, created_at
	`
	if err := r.DB.QueryRow(q,
		a.FirstName, a.LastName, a.Email, a.PasswordHash, a.RoleID, a.State,
	).Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("account create: %w", err)
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return nil
}

func (r *accountRepository) GetByID(id int) (*models.Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanOne(r.DB.QueryRow(q, id))
}

func (r *accountRepository) GetByEmail(email string) (*models.Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.scanOne(r.DB.QueryRow(q, email))
}

func (r *accountRepository) GetByRefreshToken(token string) (*models.Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE refresh_token = $1 AND refresh_revoked = FALSE`
	return r.scanOne(r.DB.QueryRow(q, token))
}

// Update persists the mutable lifecycle fields: names, role, state, the
// failed-password counter and the lock window.
func (r *accountRepository) Update(a *models.Account) error {
	const q = `
		UPDATE accounts
		SET first_name=$1, last_name=$2, role_id=$3, state=$4,
		    failed_attempts=$5, locked_until=$6
		WHERE id=$7
	`
	if _, err := r.DB.Exec(q,
		a.FirstName, a.LastName, a.RoleID, a.State,
		a.FailedAttempts, a.LockedUntil, a.ID,
	); err != nil {
		return fmt.Errorf("account update: %w", err)
	}
	return nil
}

func (r *accountRepository) UpdatePassword(id int, passwordHash string) error {
	if _, err := r.DB.Exec(`UPDATE accounts SET password_hash=$1 WHERE id=$2`, passwordHash, id); err != nil {
		return fmt.Errorf("account update password: %w", err)
	}
	return nil
}

func (r *accountRepository) Delete(id int) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM verification_credentials WHERE account_id=$1`, id); err != nil {
		return fmt.Errorf("account delete credentials: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM accounts WHERE id=$1`, id); err != nil {
		return fmt.Errorf("account delete: %w", err)
	}
	return tx.Commit()
}

func (r *accountRepository) GetTelegramSettings(ctx context.Context, accountID int) (int64, bool, error) {
	const q = `
		SELECT COALESCE(telegram_chat_id, 0), COALESCE(notify_tasks_telegram, FALSE)
		FROM accounts WHERE id = $1
	`
	var chatID int64
	var notify bool
	if err := r.DB.QueryRowContext(ctx, q, accountID).Scan(&chatID, &notify); err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("account telegram settings: %w", err)
	}
	return chatID, notify, nil
}

func (r *accountRepository) UpdateTelegramLink(accountID int, chatID int64, enable bool) error {
	const q = `
		UPDATE accounts SET telegram_chat_id=$1, notify_tasks_telegram=$2 WHERE id=$3
	`
	if _, err := r.DB.Exec(q, chatID, enable, accountID); err != nil {
		return fmt.Errorf("account update telegram link: %w", err)
	}
	return nil
}

func (r *accountRepository) UpdateRefresh(id int, token string, expiresAt time.Time) error {
	const q = `
		UPDATE accounts
		SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE id=$3
	`
	if _, err := r.DB.Exec(q, token, expiresAt, id); err != nil {
		return fmt.Errorf("account update refresh: %w", err)
	}
	return nil
}

func (r *accountRepository) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.Account, error) {
	const q = `
		UPDATE accounts
		SET refresh_token=$1, refresh_expires_at=$2
		WHERE refresh_token=$3 AND refresh_revoked=FALSE
		RETURNING ` + accountColumns
	return r.scanOne(r.DB.QueryRow(q, newToken, newExpiresAt, oldToken))
}

func (r *accountRepository) ClearRefresh(id int) error {
	const q = `
		UPDATE accounts
		SET refresh_token=NULL, refresh_expires_at=NULL, refresh_revoked=FALSE
		WHERE id=$1
	`
	_, err := r.DB.Exec(q, id)
	return err
}

func (r *accountRepository) scanOne(row *sql.Row) (*models.Account, error) {
	a := &models.Account{}
	var (
		lockedUntil sql.NullTime
		rt          sql.NullString
		rte         sql.NullTime
		rr          sql.NullBool
	)
	err := row.Scan(
		&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.PasswordHash, &a.RoleID, &a.State,
		&a.FailedAttempts, &lockedUntil,
		&rt, &rte, &rr,
		&a.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("account scan: %w", err)
	}
	// timestamps are compared against the flow clock; normalize to UTC so a
	// driver handing back a naive local time can never skew expiry checks
	if lockedUntil.Valid {
		t := lockedUntil.Time.UTC()
		a.LockedUntil = &t
	}
	if rt.Valid {
		s := rt.String
		a.RefreshToken = &s
	}
	if rte.Valid {
		t := rte.Time.UTC()
		a.RefreshExpiresAt = &t
	}
	if rr.Valid {
		a.RefreshRevoked = rr.Bool
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}

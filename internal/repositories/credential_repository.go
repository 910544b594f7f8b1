package repositories

import (
	"database/sql"
	"fmt"

	"agroterra/internal/models"
)

// CredentialRepository stores outstanding PIN challenges. The write-time
// invariant is at most one credential per (account, purpose) pair: Replace
// deletes any previous row and inserts the new one inside one transaction,
// so readers never have to collapse duplicates.
type CredentialRepository interface {
	Replace(c *models.VerificationCredential) error
	FindLive(accountID int, purpose models.CredentialPurpose) (*models.VerificationCredential, error)
	Update(c *models.VerificationCredential) error
	IncrementAttempts(id int64) (int, error)
	SetPinConfirmed(id int64) error
	// Consume deletes the credential and reports whether this caller got
	// it. Concurrent verifications of the same credential race on this
	// delete; exactly one sees true.
	Consume(id int64) (bool, error)
	Delete(id int64) error
	DeleteByAccount(accountID int) error
}

type credentialRepository struct {
	DB *sql.DB
}

func NewCredentialRepository(db *sql.DB) CredentialRepository {
	return &credentialRepository{DB: db}
}

func (r *credentialRepository) Replace(c *models.VerificationCredential) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM verification_credentials WHERE account_id=$1 AND purpose=$2`,
		c.AccountID, c.Purpose,
	); err != nil {
		return fmt.Errorf("credential supersede: %w", err)
	}

	const q = `
		INSERT INTO verification_credentials (
			account_id, purpose, pin_hash, created_at, expires_at,
			attempts, resends, pin_confirmed
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id
	`
	if err := tx.QueryRow(q,
		c.AccountID, c.Purpose, c.PinHash, c.CreatedAt, c.ExpiresAt,
		c.Attempts, c.Resends, c.PinConfirmed,
	).Scan(&c.ID); err != nil {
		return fmt.Errorf("credential create: %w", err)
	}
	return tx.Commit()
}

// FindLive returns the most recent credential for the pair, deleting any
// older leftovers it finds. Expiry is judged by the caller: the flows need
// to see an expired credential to run its cleanup side effects.
func (r *credentialRepository) FindLive(accountID int, purpose models.CredentialPurpose) (*models.VerificationCredential, error) {
	const q = `
		SELECT id, account_id, purpose, pin_hash, created_at, expires_at,
		       attempts, resends, pin_confirmed
		FROM verification_credentials
		WHERE account_id = $1 AND purpose = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	row := r.DB.QueryRow(q, accountID, purpose)
	var c models.VerificationCredential
	if err := row.Scan(
		&c.ID, &c.AccountID, &c.Purpose, &c.PinHash, &c.CreatedAt, &c.ExpiresAt,
		&c.Attempts, &c.Resends, &c.PinConfirmed,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("credential find live: %w", err)
	}
	if _, err := r.DB.Exec(
		`DELETE FROM verification_credentials WHERE account_id=$1 AND purpose=$2 AND id <> $3`,
		accountID, purpose, c.ID,
	); err != nil {
		return nil, fmt.Errorf("credential cleanup: %w", err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.ExpiresAt = c.ExpiresAt.UTC()
	return &c, nil
}

// Update persists a regenerate: new pin hash, fresh TTL window, reset
// counters. It intentionally does not touch the row identity.
func (r *credentialRepository) Update(c *models.VerificationCredential) error {
	const q = `
		UPDATE verification_credentials
		SET pin_hash=$1, created_at=$2, expires_at=$3,
		    attempts=$4, resends=$5, pin_confirmed=$6
		WHERE id=$7
	`
	if _, err := r.DB.Exec(q,
		c.PinHash, c.CreatedAt, c.ExpiresAt,
		c.Attempts, c.Resends, c.PinConfirmed, c.ID,
	); err != nil {
		return fmt.Errorf("credential update: %w", err)
	}
	return nil
}

// IncrementAttempts is a single atomic read-modify-write so concurrent
// failed guesses cannot lose counter updates.
func (r *credentialRepository) IncrementAttempts(id int64) (int, error) {
	const q = `
		UPDATE verification_credentials
		SET attempts = attempts + 1
		WHERE id = $1
		RETURNING attempts
	`
	var attempts int
	if err := r.DB.QueryRow(q, id).Scan(&attempts); err != nil {
		return 0, fmt.Errorf("credential increment attempts: %w", err)
	}
	return attempts, nil
}

func (r *credentialRepository) SetPinConfirmed(id int64) error {
	_, err := r.DB.Exec(`UPDATE verification_credentials SET pin_confirmed=TRUE WHERE id=$1`, id)
	return err
}

func (r *credentialRepository) Consume(id int64) (bool, error) {
	res, err := r.DB.Exec(`DELETE FROM verification_credentials WHERE id=$1`, id)
	if err != nil {
		return false, fmt.Errorf("credential consume: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("credential consume: %w", err)
	}
	return n > 0, nil
}

func (r *credentialRepository) Delete(id int64) error {
	_, err := r.DB.Exec(`DELETE FROM verification_credentials WHERE id=$1`, id)
	return err
}

func (r *credentialRepository) DeleteByAccount(accountID int) error {
	_, err := r.DB.Exec(`DELETE FROM verification_credentials WHERE account_id=$1`, accountID)
	return err
}

package repositories

import (
	"database/sql"
	"fmt"

	"agroterra/internal/models"
)

type FarmRepository interface {
	Create(f *models.Farm) error
	GetByID(id int) (*models.Farm, error)
	ListByOwner(ownerID int) ([]models.Farm, error)
	List(limit, offset int) ([]models.Farm, error)
	Update(f *models.Farm) error
	Delete(id int) error
}

type farmRepository struct {
	DB *sql.DB
}

func NewFarmRepository(db *sql.DB) FarmRepository {
	return &farmRepository{DB: db}
}

func (r *farmRepository) Create(f *models.Farm) error {
	const q = `
		INSERT INTO farms (owner_id, name, location, area_hectares)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at
	`
	if err := r.DB.QueryRow(q, f.OwnerID, f.Name, f.Location, f.AreaHectares).Scan(&f.ID, &f.CreatedAt); err != nil {
		return fmt.Errorf("farm create: %w", err)
	}
	return nil
}

func (r *farmRepository) GetByID(id int) (*models.Farm, error) {
	const q = `SELECT id, owner_id, name, location, area_hectares, created_at FROM farms WHERE id = $1`
	f := &models.Farm{}
	err := r.DB.QueryRow(q, id).Scan(&f.ID, &f.OwnerID, &f.Name, &f.Location, &f.AreaHectares, &f.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("farm get: %w", err)
	}
	return f, nil
}

func (r *farmRepository) ListByOwner(ownerID int) ([]models.Farm, error) {
	const q = `
		SELECT id, owner_id, name, location, area_hectares, created_at
		FROM farms WHERE owner_id = $1 ORDER BY created_at DESC
	`
	return r.scanList(r.DB.Query(q, ownerID))
}

func (r *farmRepository) List(limit, offset int) ([]models.Farm, error) {
	const q = `
		SELECT id, owner_id, name, location, area_hectares, created_at
		FROM farms ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`
	return r.scanList(r.DB.Query(q, limit, offset))
}

func (r *farmRepository) Update(f *models.Farm) error {
	const q = `UPDATE farms SET name=$1, location=$2, area_hectares=$3 WHERE id=$4`
	if _, err := r.DB.Exec(q, f.Name, f.Location, f.AreaHectares, f.ID); err != nil {
		return fmt.Errorf("farm update: %w", err)
	}
	return nil
}

func (r *farmRepository) Delete(id int) error {
	if _, err := r.DB.Exec(`DELETE FROM farms WHERE id=$1`, id); err != nil {
		return fmt.Errorf("farm delete: %w", err)
	}
	return nil
}

func (r *farmRepository) scanList(rows *sql.Rows, err error) ([]models.Farm, error) {
	if err != nil {
		return nil, fmt.Errorf("farm list: %w", err)
	}
	defer rows.Close()

	var farms []models.Farm
	for rows.Next() {
		var f models.Farm
		if err := rows.Scan(&f.ID, &f.OwnerID, &f.Name, &f.Location, &f.AreaHectares, &f.CreatedAt); err != nil {
			return nil, err
		}
		farms = append(farms, f)
	}
	return farms, rows.Err()
}

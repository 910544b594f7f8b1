package repositories

import (
	"database/sql"
	"fmt"

	"agroterra/internal/models"
)

type CropRepository interface {
	Create(c *models.Crop) error
	GetByID(id int) (*models.Crop, error)
	ListByPlot(plotID int) ([]models.Crop, error)
	Update(c *models.Crop) error
	UpdateStatus(id int, to models.CropStatus) error
	Delete(id int) error
}

type cropRepository struct {
	DB *sql.DB
}

func NewCropRepository(db *sql.DB) CropRepository {
	return &cropRepository{DB: db}
}

func (r *cropRepository) Create(c *models.Crop) error {
	const q = `
		INSERT INTO crops (plot_id, name, variety, status, planted_at, expected_harvest_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`
	if err := r.DB.QueryRow(q,
		c.PlotID, c.Name, c.Variety, c.Status, c.PlantedAt, c.ExpectedHarvestAt,
	).Scan(&c.ID); err != nil {
		return fmt.Errorf("crop create: %w", err)
	}
	return nil
}

func (r *cropRepository) GetByID(id int) (*models.Crop, error) {
	const q = `
		SELECT id, plot_id, name, variety, status, planted_at, expected_harvest_at
		FROM crops WHERE id = $1
	`
	c := &models.Crop{}
	var harvestAt sql.NullTime
	err := r.DB.QueryRow(q, id).Scan(&c.ID, &c.PlotID, &c.Name, &c.Variety, &c.Status, &c.PlantedAt, &harvestAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("crop get: %w", err)
	}
	if harvestAt.Valid {
		t := harvestAt.Time
		c.ExpectedHarvestAt = &t
	}
	return c, nil
}

func (r *cropRepository) ListByPlot(plotID int) ([]models.Crop, error) {
	const q = `
		SELECT id, plot_id, name, variety, status, planted_at, expected_harvest_at
		FROM crops WHERE plot_id = $1 ORDER BY planted_at DESC
	`
	rows, err := r.DB.Query(q, plotID)
	if err != nil {
		return nil, fmt.Errorf("crop list: %w", err)
	}
	defer rows.Close()

	var crops []models.Crop
	for rows.Next() {
		var c models.Crop
		var harvestAt sql.NullTime
		if err := rows.Scan(&c.ID, &c.PlotID, &c.Name, &c.Variety, &c.Status, &c.PlantedAt, &harvestAt); err != nil {
			return nil, err
		}
		if harvestAt.Valid {
			t := harvestAt.Time
			c.ExpectedHarvestAt = &t
		}
		crops = append(crops, c)
	}
	return crops, rows.Err()
}

func (r *cropRepository) Update(c *models.Crop) error {
	const q = `
		UPDATE crops
		SET name=$1, variety=$2, status=$3, planted_at=$4, expected_harvest_at=$5
		WHERE id=$6
	`
	if _, err := r.DB.Exec(q, c.Name, c.Variety, c.Status, c.PlantedAt, c.ExpectedHarvestAt, c.ID); err != nil {
		return fmt.Errorf("crop update: %w", err)
	}
	return nil
}

func (r *cropRepository) UpdateStatus(id int, to models.CropStatus) error {
	if _, err := r.DB.Exec(`UPDATE crops SET status=$1 WHERE id=$2`, to, id); err != nil {
		return fmt.Errorf("crop update status: %w", err)
	}
	return nil
}

func (r *cropRepository) Delete(id int) error {
	if _, err := r.DB.Exec(`DELETE FROM crops WHERE id=$1`, id); err != nil {
		return fmt.Errorf("crop delete: %w", err)
	}
	return nil
}

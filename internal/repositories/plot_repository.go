package repositories

import (
	"database/sql"
	"fmt"

	"agroterra/internal/models"
)

type PlotRepository interface {
	Create(p *models.Plot) error
	GetByID(id int) (*models.Plot, error)
	ListByFarm(farmID int) ([]models.Plot, error)
	Update(p *models.Plot) error
	Delete(id int) error
}

type plotRepository struct {
	DB *sql.DB
}

func NewPlotRepository(db *sql.DB) PlotRepository {
	return &plotRepository{DB: db}
}

func (r *plotRepository) Create(p *models.Plot) error {
	const q = `
		INSERT INTO plots (farm_id, name, area_hectares, soil_type)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`
	if err := r.DB.QueryRow(q, p.FarmID, p.Name, p.AreaHectares, p.SoilType).Scan(&p.ID); err != nil {
		return fmt.Errorf("plot create: %w", err)
	}
	return nil
}

func (r *plotRepository) GetByID(id int) (*models.Plot, error) {
	const q = `SELECT id, farm_id, name, area_hectares, soil_type FROM plots WHERE id = $1`
	p := &models.Plot{}
	err := r.DB.QueryRow(q, id).Scan(&p.ID, &p.FarmID, &p.Name, &p.AreaHectares, &p.SoilType)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("plot get: %w", err)
	}
	return p, nil
}

func (r *plotRepository) ListByFarm(farmID int) ([]models.Plot, error) {
	const q = `SELECT id, farm_id, name, area_hectares, soil_type FROM plots WHERE farm_id = $1 ORDER BY name`
	rows, err := r.DB.Query(q, farmID)
	if err != nil {
		return nil, fmt.Errorf("plot list: %w", err)
	}
	defer rows.Close()

	var plots []models.Plot
	for rows.Next() {
		var p models.Plot
		if err := rows.Scan(&p.ID, &p.FarmID, &p.Name, &p.AreaHectares, &p.SoilType); err != nil {
			return nil, err
		}
		plots = append(plots, p)
	}
	return plots, rows.Err()
}

func (r *plotRepository) Update(p *models.Plot) error {
	const q = `UPDATE plots SET name=$1, area_hectares=$2, soil_type=$3 WHERE id=$4`
	if _, err := r.DB.Exec(q, p.Name, p.AreaHectares, p.SoilType, p.ID); err != nil {
		return fmt.Errorf("plot update: %w", err)
	}
	return nil
}

func (r *plotRepository) Delete(id int) error {
	if _, err := r.DB.Exec(`DELETE FROM plots WHERE id=$1`, id); err != nil {
		return fmt.Errorf("plot delete: %w", err)
	}
	return nil
}

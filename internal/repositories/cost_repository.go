package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"agroterra/internal/models"
)

type CostRepository interface {
	Create(c *models.Cost) error
	GetByID(id int64) (*models.Cost, error)
	FindAll(filter models.CostFilter) ([]models.Cost, error)
	Update(c *models.Cost) error
	Delete(id int64) error

	// SumByCategory aggregates a farm's expenses per category for a period,
	// used by the cost report.
	SumByCategory(farmID int, from, to time.Time) (map[models.CostCategory]float64, error)
}

type costRepository struct {
	DB *sql.DB
}

func NewCostRepository(db *sql.DB) CostRepository {
	return &costRepository{DB: db}
}

func (r *costRepository) Create(c *models.Cost) error {
	const q = `
		INSERT INTO costs (farm_id, category, amount, currency, note, incurred_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at
	`
	if err := r.DB.QueryRow(q,
		c.FarmID, c.Category, c.Amount, c.Currency, c.Note, c.IncurredAt,
	).Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("cost create: %w", err)
	}
	return nil
}

func (r *costRepository) GetByID(id int64) (*models.Cost, error) {
	const q = `
		SELECT id, farm_id, category, amount, currency, note, incurred_at, created_at
		FROM costs WHERE id = $1
	`
	c := &models.Cost{}
	err := r.DB.QueryRow(q, id).Scan(&c.ID, &c.FarmID, &c.Category, &c.Amount, &c.Currency, &c.Note, &c.IncurredAt, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("cost get: %w", err)
	}
	return c, nil
}

func (r *costRepository) FindAll(filter models.CostFilter) ([]models.Cost, error) {
	baseQuery := `SELECT id, farm_id, category, amount, currency, note, incurred_at, created_at FROM costs`

	conditions := []string{}
	args := []interface{}{}
	argID := 1

	if filter.FarmID != nil {
		conditions = append(conditions, fmt.Sprintf("farm_id = $%d", argID))
		args = append(args, *filter.FarmID)
		argID++
	}
	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argID))
		args = append(args, *filter.Category)
		argID++
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("incurred_at >= $%d", argID))
		args = append(args, *filter.From)
		argID++
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("incurred_at <= $%d", argID))
		args = append(args, *filter.To)
		argID++
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY incurred_at DESC"

	rows, err := r.DB.Query(baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("cost list: %w", err)
	}
	defer rows.Close()

	var costs []models.Cost
	for rows.Next() {
		var c models.Cost
		if err := rows.Scan(&c.ID, &c.FarmID, &c.Category, &c.Amount, &c.Currency, &c.Note, &c.IncurredAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		costs = append(costs, c)
	}
	return costs, rows.Err()
}

func (r *costRepository) Update(c *models.Cost) error {
	const q = `
		UPDATE costs
		SET category=$1, amount=$2, currency=$3, note=$4, incurred_at=$5
		WHERE id=$6
	`
	if _, err := r.DB.Exec(q, c.Category, c.Amount, c.Currency, c.Note, c.IncurredAt, c.ID); err != nil {
		return fmt.Errorf("cost update: %w", err)
	}
	return nil
}

func (r *costRepository) Delete(id int64) error {
	if _, err := r.DB.Exec(`DELETE FROM costs WHERE id=$1`, id); err != nil {
		return fmt.Errorf("cost delete: %w", err)
	}
	return nil
}

func (r *costRepository) SumByCategory(farmID int, from, to time.Time) (map[models.CostCategory]float64, error) {
	const q = `
		SELECT category, COALESCE(SUM(amount), 0)
		FROM costs
		WHERE farm_id = $1 AND incurred_at >= $2 AND incurred_at <= $3
		GROUP BY category
	`
	rows, err := r.DB.Query(q, farmID, from, to)
	if err != nil {
		return nil, fmt.Errorf("cost sum by category: %w", err)
	}
	defer rows.Close()

	sums := map[models.CostCategory]float64{}
	for rows.Next() {
		var cat models.CostCategory
		var total float64
		if err := rows.Scan(&cat, &total); err != nil {
			return nil, err
		}
		sums[cat] = total
	}
	return sums, rows.Err()
}

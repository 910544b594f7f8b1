package services

import (
	"fmt"

	"agroterra/internal/models"
	"agroterra/internal/repositories"
)

type CostService interface {
	Create(cost *models.Cost) error
	GetByID(id int64) (*models.Cost, error)
	FindAll(filter models.CostFilter) ([]models.Cost, error)
	Update(cost *models.Cost) error
	Delete(id int64) error
}

type costService struct {
	repo  repositories.CostRepository
	farms repositories.FarmRepository
}

func NewCostService(repo repositories.CostRepository, farms repositories.FarmRepository) CostService {
	return &costService{repo: repo, farms: farms}
}

func (s *costService) Create(cost *models.Cost) error {
	if cost.Amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if cost.Currency == "" {
		cost.Currency = "EUR"
	}
	if cost.Category == "" {
		cost.Category = models.CostOther
	}
	farm, err := s.farms.GetByID(cost.FarmID)
	if err != nil {
		return err
	}
	if farm == nil {
		return fmt.Errorf("farm %d not found", cost.FarmID)
	}
	return s.repo.Create(cost)
}

func (s *costService) GetByID(id int64) (*models.Cost, error) {
	return s.repo.GetByID(id)
}

func (s *costService) FindAll(filter models.CostFilter) ([]models.Cost, error) {
	return s.repo.FindAll(filter)
}

func (s *costService) Update(cost *models.Cost) error {
	return s.repo.Update(cost)
}

func (s *costService) Delete(id int64) error {
	return s.repo.Delete(id)
}

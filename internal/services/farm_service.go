package services

import (
	"fmt"
	"strings"

	"agroterra/internal/models"
	"agroterra/internal/repositories"
)

type FarmService interface {
	Create(farm *models.Farm) error
	GetByID(id int) (*models.Farm, error)
	ListByOwner(ownerID int) ([]models.Farm, error)
	List(limit, offset int) ([]models.Farm, error)
	Update(farm *models.Farm) error
	Delete(id int) error
}

type farmService struct {
	repo repositories.FarmRepository
}

func NewFarmService(repo repositories.FarmRepository) FarmService {
	return &farmService{repo: repo}
}

func (s *farmService) Create(farm *models.Farm) error {
	if strings.TrimSpace(farm.Name) == "" {
		return fmt.Errorf("farm name is required")
	}
	if farm.AreaHectares < 0 {
		return fmt.Errorf("area must be non-negative")
	}
	return s.repo.Create(farm)
}

func (s *farmService) GetByID(id int) (*models.Farm, error) {
	return s.repo.GetByID(id)
}

func (s *farmService) ListByOwner(ownerID int) ([]models.Farm, error) {
	return s.repo.ListByOwner(ownerID)
}

func (s *farmService) List(limit, offset int) ([]models.Farm, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.List(limit, offset)
}

func (s *farmService) Update(farm *models.Farm) error {
	return s.repo.Update(farm)
}

func (s *farmService) Delete(id int) error {
	return s.repo.Delete(id)
}

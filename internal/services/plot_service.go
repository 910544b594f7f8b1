package services

import (
	"fmt"
	"strings"

	"agroterra/internal/models"
	"agroterra/internal/repositories"
)

type PlotService interface {
	Create(plot *models.Plot) error
	GetByID(id int) (*models.Plot, error)
	ListByFarm(farmID int) ([]models.Plot, error)
	Update(plot *models.Plot) error
	Delete(id int) error
}

type plotService struct {
	repo  repositories.PlotRepository
	farms repositories.FarmRepository
}

func NewPlotService(repo repositories.PlotRepository, farms repositories.FarmRepository) PlotService {
	return &plotService{repo: repo, farms: farms}
}

func (s *plotService) Create(plot *models.Plot) error {
	if strings.TrimSpace(plot.Name) == "" {
		return fmt.Errorf("plot name is required")
	}
	farm, err := s.farms.GetByID(plot.FarmID)
	if err != nil {
		return err
	}
	if farm == nil {
		return fmt.Errorf("farm %d not found", plot.FarmID)
	}
	return s.repo.Create(plot)
}

func (s *plotService) GetByID(id int) (*models.Plot, error) {
	return s.repo.GetByID(id)
}

func (s *plotService) ListByFarm(farmID int) ([]models.Plot, error) {
	return s.repo.ListByFarm(farmID)
}

func (s *plotService) Update(plot *models.Plot) error {
	return s.repo.Update(plot)
}

func (s *plotService) Delete(id int) error {
	return s.repo.Delete(id)
}

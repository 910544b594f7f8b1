package services

import (
	"fmt"

	"agroterra/internal/models"
	"agroterra/internal/repositories"
)

// legal crop status transitions
var cropTransitions = map[models.CropStatus][]models.CropStatus{
	models.CropPlanted: {models.CropGrowing, models.CropFailed},
	models.CropGrowing: {models.CropHarvested, models.CropFailed},
}

type CropService interface {
	Create(crop *models.Crop) error
	GetByID(id int) (*models.Crop, error)
	ListByPlot(plotID int) ([]models.Crop, error)
	Update(crop *models.Crop) error
	ChangeStatus(id int, to models.CropStatus) (*models.Crop, error)
	Delete(id int) error
}

type cropService struct {
	repo  repositories.CropRepository
	plots repositories.PlotRepository
}

func NewCropService(repo repositories.CropRepository, plots repositories.PlotRepository) CropService {
	return &cropService{repo: repo, plots: plots}
}

func (s *cropService) Create(crop *models.Crop) error {
	plot, err := s.plots.GetByID(crop.PlotID)
	if err != nil {
		return err
	}
	if plot == nil {
		return fmt.Errorf("plot %d not found", crop.PlotID)
	}
	if crop.Status == "" {
		crop.Status = models.CropPlanted
	}
	return s.repo.Create(crop)
}

func (s *cropService) GetByID(id int) (*models.Crop, error) {
	return s.repo.GetByID(id)
}

func (s *cropService) ListByPlot(plotID int) ([]models.Crop, error) {
	return s.repo.ListByPlot(plotID)
}

func (s *cropService) Update(crop *models.Crop) error {
	return s.repo.Update(crop)
}

func (s *cropService) ChangeStatus(id int, to models.CropStatus) (*models.Crop, error) {
	crop, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if crop == nil {
		return nil, fmt.Errorf("crop %d not found", id)
	}
	allowed := false
	for _, next := range cropTransitions[crop.Status] {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("cannot move crop from %s to %s", crop.Status, to)
	}
	if err := s.repo.UpdateStatus(id, to); err != nil {
		return nil, err
	}
	crop.Status = to
	return crop, nil
}

func (s *cropService) Delete(id int) error {
	return s.repo.Delete(id)
}

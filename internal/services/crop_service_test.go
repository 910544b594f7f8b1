package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroterra/internal/models"
)

type memCropRepo struct {
	nextID int
	byID   map[int]*models.Crop
}

func newMemCropRepo() *memCropRepo {
	return &memCropRepo{byID: map[int]*models.Crop{}}
}

func (r *memCropRepo) Create(c *models.Crop) error {
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.byID[c.ID] = &cp
	return nil
}

func (r *memCropRepo) GetByID(id int) (*models.Crop, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *memCropRepo) ListByPlot(plotID int) ([]models.Crop, error) {
	var out []models.Crop
	for _, c := range r.byID {
		if c.PlotID == plotID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memCropRepo) Update(c *models.Crop) error {
	cp := *c
	r.byID[c.ID] = &cp
	return nil
}

func (r *memCropRepo) UpdateStatus(id int, to models.CropStatus) error {
	if c, ok := r.byID[id]; ok {
		c.Status = to
	}
	return nil
}

func (r *memCropRepo) Delete(id int) error {
	delete(r.byID, id)
	return nil
}

type memPlotRepo struct {
	byID map[int]*models.Plot
}

func (r *memPlotRepo) Create(p *models.Plot) error          { r.byID[p.ID] = p; return nil }
func (r *memPlotRepo) GetByID(id int) (*models.Plot, error) { return r.byID[id], nil }
func (r *memPlotRepo) ListByFarm(int) ([]models.Plot, error) {
	return nil, nil
}
func (r *memPlotRepo) Update(*models.Plot) error { return nil }
func (r *memPlotRepo) Delete(int) error          { return nil }

func newCropFixture() (CropService, *memCropRepo) {
	crops := newMemCropRepo()
	plots := &memPlotRepo{byID: map[int]*models.Plot{
		1: {ID: 1, FarmID: 1, Name: "North field"},
	}}
	return NewCropService(crops, plots), crops
}

func TestCropCreateDefaultsToPlanted(t *testing.T) {
	svc, _ := newCropFixture()

	crop := &models.Crop{PlotID: 1, Name: "Winter wheat", PlantedAt: time.Now()}
	require.NoError(t, svc.Create(crop))
	assert.Equal(t, models.CropPlanted, crop.Status)

	bad := &models.Crop{PlotID: 99, Name: "Corn"}
	assert.Error(t, svc.Create(bad))
}

func TestCropStatusTransitions(t *testing.T) {
	svc, _ := newCropFixture()

	crop := &models.Crop{PlotID: 1, Name: "Winter wheat"}
	require.NoError(t, svc.Create(crop))

	// planted -> harvested skips a stage
	_, err := svc.ChangeStatus(crop.ID, models.CropHarvested)
	assert.Error(t, err)

	got, err := svc.ChangeStatus(crop.ID, models.CropGrowing)
	require.NoError(t, err)
	assert.Equal(t, models.CropGrowing, got.Status)

	got, err = svc.ChangeStatus(crop.ID, models.CropHarvested)
	require.NoError(t, err)
	assert.Equal(t, models.CropHarvested, got.Status)

	// harvested is terminal
	_, err = svc.ChangeStatus(crop.ID, models.CropGrowing)
	assert.Error(t, err)
}

func TestCropCanFailFromAnyLiveStage(t *testing.T) {
	svc, _ := newCropFixture()

	crop := &models.Crop{PlotID: 1, Name: "Barley"}
	require.NoError(t, svc.Create(crop))

	got, err := svc.ChangeStatus(crop.ID, models.CropFailed)
	require.NoError(t, err)
	assert.Equal(t, models.CropFailed, got.Status)

	_, err = svc.ChangeStatus(crop.ID, models.CropGrowing)
	assert.Error(t, err)
}

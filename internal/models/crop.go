package models

import "time"

// CropStatus defines the possible stages of a planted crop.
type CropStatus string

const (
	CropPlanted   CropStatus = "planted"
	CropGrowing   CropStatus = "growing"
	CropHarvested CropStatus = "harvested"
	CropFailed    CropStatus = "failed"
)

type Crop struct {
	ID                int        `json:"id"`
	PlotID            int        `json:"plot_id"`
	Name              string     `json:"name"`
	Variety           string     `json:"variety"`
	Status            CropStatus `json:"status"`
	PlantedAt         time.Time  `json:"planted_at"`
	ExpectedHarvestAt *time.Time `json:"expected_harvest_at,omitempty"`
}

package models

import "time"

type Farm struct {
	ID           int       `json:"id"`
	OwnerID      int       `json:"owner_id"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	AreaHectares float64   `json:"area_hectares"`
	CreatedAt    time.Time `json:"created_at"`
}

type Plot struct {
	ID           int     `json:"id"`
	FarmID       int     `json:"farm_id"`
	Name         string  `json:"name"`
	AreaHectares float64 `json:"area_hectares"`
	SoilType     string  `json:"soil_type"`
}

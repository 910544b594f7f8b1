package models

import "time"

type CostCategory string

const (
	CostSeeds      CostCategory = "seeds"
	CostFertilizer CostCategory = "fertilizer"
	CostFuel       CostCategory = "fuel"
	CostLabor      CostCategory = "labor"
	CostEquipment  CostCategory = "equipment"
	CostOther      CostCategory = "other"
)

// Cost is a single expense entry booked against a farm.
type Cost struct {
	ID         int64        `json:"id"`
	FarmID     int          `json:"farm_id"`
	Category   CostCategory `json:"category"`
	Amount     float64      `json:"amount"`
	Currency   string       `json:"currency"`
	Note       string       `json:"note"`
	IncurredAt time.Time    `json:"incurred_at"`
	CreatedAt  time.Time    `json:"created_at"`
}

// CostFilter defines the available parameters for filtering cost entries.
type CostFilter struct {
	FarmID   *int
	Category *CostCategory
	From     *time.Time
	To       *time.Time
}

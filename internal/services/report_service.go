package services

import (
	"fmt"
	"time"

	"agroterra/internal/models"
	"agroterra/internal/pdf"
	"agroterra/internal/repositories"
)

// CostSummary is the JSON shape of the per-farm cost rollup.
type CostSummary struct {
	FarmID   int                             `json:"farm_id"`
	FarmName string                          `json:"farm_name"`
	From     time.Time                       `json:"from"`
	To       time.Time                       `json:"to"`
	Currency string                          `json:"currency"`
	Totals   map[models.CostCategory]float64 `json:"totals"`
	Total    float64                         `json:"total"`
}

type ReportService interface {
	CostSummary(farmID int, from, to time.Time) (*CostSummary, error)
	CostReportPDF(farmID int, from, to time.Time) (string, error)
}

type reportService struct {
	costs repositories.CostRepository
	farms repositories.FarmRepository
	gen   pdf.Generator
}

func NewReportService(costs repositories.CostRepository, farms repositories.FarmRepository, gen pdf.Generator) ReportService {
	return &reportService{costs: costs, farms: farms, gen: gen}
}

func (s *reportService) CostSummary(farmID int, from, to time.Time) (*CostSummary, error) {
	farm, err := s.farms.GetByID(farmID)
	if err != nil {
		return nil, err
	}
	if farm == nil {
		return nil, fmt.Errorf("farm %d not found", farmID)
	}

	totals, err := s.costs.SumByCategory(farmID, from, to)
	if err != nil {
		return nil, err
	}

	summary := &CostSummary{
		FarmID:   farm.ID,
		FarmName: farm.Name,
		From:     from,
		To:       to,
		Currency: "EUR",
		Totals:   totals,
	}
	for _, v := range totals {
		summary.Total += v
	}
	return summary, nil
}

func (s *reportService) CostReportPDF(farmID int, from, to time.Time) (string, error) {
	summary, err := s.CostSummary(farmID, from, to)
	if err != nil {
		return "", err
	}

	totals := make(map[string]float64, len(summary.Totals))
	for cat, v := range summary.Totals {
		totals[string(cat)] = v
	}
	return s.gen.GenerateCostReport(pdf.CostReportData{
		FarmName: summary.FarmName,
		From:     from,
		To:       to,
		Currency: summary.Currency,
		Totals:   totals,
	})
}

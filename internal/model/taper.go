package model

import (
	"time"
)

// TaperStep is one row of a computed taper plan. Index 0 is always the
// unmodified current dose; the final step is always the discontinuation
// dose.
type TaperStep struct {
	Date       time.Time `json:"date"`
	DoseMg     float64   `json:"dose_mg"`
	WeekNumber int       `json:"week_number"`
	Notes      string    `json:"notes"`
}

// TaperOptions configures a taper plan computation. Zero values mean
// "use the default"; explicitly negative values are rejected.
type TaperOptions struct {
	// ReductionPercent is the share of the current dose removed at each
	// step. Default 25.
	ReductionPercent float64 `json:"reduction_percent" binding:"omitempty,gt=0,lte=100"`
	// IntervalWeeks is the number of calendar weeks between steps.
	// Default 2.
	IntervalWeeks int `json:"interval_weeks" binding:"omitempty,gt=0"`
	// MinDose is the floor at which the plan terminates and is recorded
	// as a discontinuation. Default 0.
	MinDose float64 `json:"min_dose" binding:"omitempty,gte=0"`
	// StartDate anchors step dates. Zero means "now" at the call
	// boundary; injecting it keeps the planner deterministic under test.
	StartDate time.Time `json:"start_date"`
}

// TaperPlan is the API shape returned by the taper endpoint: the raw
// steps plus their markdown rendering for direct display.
type TaperPlan struct {
	MedicationID   string      `json:"medication_id"`
	MedicationName string      `json:"medication_name"`
	Steps          []TaperStep `json:"steps"`
	Markdown       string      `json:"markdown"`
}

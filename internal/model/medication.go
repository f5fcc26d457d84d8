package model

import (
	"time"

	"github.com/google/uuid"
)

// Medication is a persisted prescription row for a patient.
type Medication struct {
	Base
	PatientID       uuid.UUID  `db:"patient_id" json:"patient_id"`
	Name            string     `db:"name" json:"name"`
	DoseMg          *float64   `db:"dose_mg" json:"dose_mg,omitempty"`
	StartDate       time.Time  `db:"start_date" json:"start_date"`
	EndDate         *time.Time `db:"end_date" json:"end_date,omitempty"`
	IsActive        bool       `db:"is_active" json:"is_active"`
	MaxGuidelineDmg *float64   `db:"max_guideline_mg" json:"max_guideline_mg,omitempty"`
}

// MedicationSpan is the planner's view of a currently active prescription.
// It is built fresh per planning request and never persisted.
type MedicationSpan struct {
	MedicationID   string
	MedicationName string
	StartDate      time.Time
	DoseMg         *float64
	IsActive       bool
}

// Span projects the stored row into the planner input shape.
func (m *Medication) Span() MedicationSpan {
	return MedicationSpan{
		MedicationID:   m.ID.String(),
		MedicationName: m.Name,
		StartDate:      m.StartDate,
		DoseMg:         m.DoseMg,
		IsActive:       m.IsActive,
	}
}

type MedicationEventType string

const (
	EventStart      MedicationEventType = "start"
	EventDoseChange MedicationEventType = "dose-change"
	EventStop       MedicationEventType = "stop"
)

// MedicationEvent is one point on a medication timeline, as rendered in
// the history view.
type MedicationEvent struct {
	Type             MedicationEventType `json:"type"`
	MedicationName   string              `json:"medication_name"`
	Date             string              `json:"date"`
	DoseMg           *float64            `json:"dose_mg,omitempty"`
	Note             string              `json:"note,omitempty"`
	IsAboveGuideline bool                `json:"is_above_guideline"`
	OutcomeText      string              `json:"outcome_text,omitempty"`
}

type CreateMedicationRequest struct {
	Name      string     `json:"name" binding:"required"`
	DoseMg    *float64   `json:"dose_mg" binding:"omitempty,gt=0"`
	StartDate *time.Time `json:"start_date"`
}

type UpdateMedicationRequest struct {
	DoseMg   *float64   `json:"dose_mg" binding:"omitempty,gt=0"`
	EndDate  *time.Time `json:"end_date"`
	IsActive *bool      `json:"is_active"`
}

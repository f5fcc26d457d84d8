package model

import (
	"github.com/google/uuid"
)

type NoteStatus string

const (
	NoteStatusDraft     NoteStatus = "draft"
	NoteStatusFinalized NoteStatus = "finalized"
)

// Note is a single patient-visit note: the raw transcript the clinician
// recorded or pasted, plus the SOAP sections synthesized from it.
type Note struct {
	Base
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	AuthorID   uuid.UUID `db:"author_id" json:"author_id"`
	Transcript string    `db:"transcript" json:"transcript"`
	Subjective string    `db:"subjective" json:"subjective"`
	Objective  string    `db:"objective" json:"objective"`
	Assessment string    `db:"assessment" json:"assessment"`
	Plan       string    `db:"plan" json:"plan"`
	Summary    string    `db:"summary" json:"summary,omitempty"`
	Status     string    `db:"status" json:"status"`
}

type CreateNoteRequest struct {
	Transcript string `json:"transcript" binding:"required"`
}

type UpdateNoteRequest struct {
	Subjective *string `json:"subjective"`
	Objective  *string `json:"objective"`
	Assessment *string `json:"assessment"`
	Plan       *string `json:"plan"`
	Status     *string `json:"status" binding:"omitempty,oneof=draft finalized"`
}

type NoteFilters struct {
	Status string `form:"status"`
	Pagination
}

// SOAPSections is the structured output of note synthesis.
type SOAPSections struct {
	Subjective string `json:"subjective"`
	Objective  string `json:"objective"`
	Assessment string `json:"assessment"`
	Plan       string `json:"plan"`
}

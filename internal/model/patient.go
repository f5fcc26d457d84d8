package model

import (
	"time"
)

type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
)

type Patient struct {
	Base
	Name        string     `db:"name" json:"name"`
	Email       string     `db:"email" json:"email"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Status      string     `db:"status" json:"status"`
	Notes       string     `db:"notes" json:"notes,omitempty"`
}

type CreatePatientRequest struct {
	Name        string     `json:"name" binding:"required"`
	Email       string     `json:"email" binding:"required,email"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Notes       string     `json:"notes"`
}

type UpdatePatientRequest struct {
	Name        *string    `json:"name"`
	Email       *string    `json:"email" binding:"omitempty,email"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Status      *string    `json:"status" binding:"omitempty,oneof=active inactive"`
	Notes       *string    `json:"notes"`
}

type PatientFilters struct {
	SearchTerm string `form:"search_term"`
	Status     string `form:"status"`
	Pagination
}

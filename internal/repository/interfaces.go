package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/joshwoodland/boredcertified/internal/model"
)

// All repository interfaces in one file
type (
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	}

	NoteRepository interface {
		Create(ctx context.Context, note *model.Note) error
		Get(ctx context.Context, id uuid.UUID) (*model.Note, error)
		Update(ctx context.Context, note *model.Note) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByPatient(ctx context.Context, patientID uuid.UUID, filters *model.NoteFilters) ([]*model.Note, error)
	}

	MedicationRepository interface {
		Create(ctx context.Context, med *model.Medication) error
		Get(ctx context.Context, id uuid.UUID) (*model.Medication, error)
		Update(ctx context.Context, med *model.Medication) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByPatient(ctx context.Context, patientID uuid.UUID, activeOnly bool) ([]*model.Medication, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, entry *model.AuditLog) error
		ListByResource(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]*model.AuditLog, error)
	}
)

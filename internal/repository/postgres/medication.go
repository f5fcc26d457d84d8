package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joshwoodland/boredcertified/internal/model"
	"github.com/joshwoodland/boredcertified/internal/repository"
)

type medicationRepository struct {
	db *sqlx.DB
}

func NewMedicationRepository(db *sqlx.DB) repository.MedicationRepository {
	return &medicationRepository{db: db}
}

func (r *medicationRepository) Create(ctx context.Context, med *model.Medication) error {
	query := `
		INSERT INTO medications (id, patient_id, name, dose_mg, start_date, end_date,
			is_active, max_guideline_mg, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	med.CreatedAt = time.Now()
	med.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		med.ID,
		med.PatientID,
		med.Name,
		med.DoseMg,
		med.StartDate,
		med.EndDate,
		med.IsActive,
		med.MaxGuidelineDmg,
		med.CreatedAt,
		med.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medication: %w", err)
	}
	return nil
}

func (r *medicationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	query := `SELECT * FROM medications WHERE id = $1 AND deleted_at IS NULL`
	var med model.Medication
	if err := r.db.GetContext(ctx, &med, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get medication: %w", err)
	}
	return &med, nil
}

func (r *medicationRepository) Update(ctx context.Context, med *model.Medication) error {
	query := `
		UPDATE medications
		SET dose_mg = $1, end_date = $2, is_active = $3, max_guideline_mg = $4, updated_at = $5
		WHERE id = $6 AND deleted_at IS NULL
	`
	med.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		med.DoseMg,
		med.EndDate,
		med.IsActive,
		med.MaxGuidelineDmg,
		med.UpdatedAt,
		med.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update medication: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *medicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE medications SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete medication: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *medicationRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, activeOnly bool) ([]*model.Medication, error) {
	query := `SELECT * FROM medications WHERE patient_id = $1 AND deleted_at IS NULL`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY start_date`

	meds := []*model.Medication{}
	if err := r.db.SelectContext(ctx, &meds, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return meds, nil
}

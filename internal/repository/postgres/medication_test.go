package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshwoodland/boredcertified/internal/model"
	"github.com/joshwoodland/boredcertified/internal/repository"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, repository.MedicationRepository) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return sqlxDB, mock, NewMedicationRepository(sqlxDB)
}

func TestMedicationRepositoryGet(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	id := uuid.New()
	patientID := uuid.New()
	dose := 87.0
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "patient_id", "name", "dose_mg", "start_date", "end_date",
		"is_active", "max_guideline_mg", "created_at", "updated_at", "deleted_at",
	}).AddRow(id, patientID, "Sertraline", dose, now, nil, true, 200.0, now, now, nil)

	mock.ExpectQuery(`SELECT \* FROM medications`).
		WithArgs(id).
		WillReturnRows(rows)

	med, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Sertraline", med.Name)
	require.NotNil(t, med.DoseMg)
	assert.Equal(t, 87.0, *med.DoseMg)
	assert.True(t, med.IsActive)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMedicationRepositoryGetNotFound(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM medications`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Get(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMedicationRepositoryCreate(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	dose := 50.0
	med := &model.Medication{
		Base:      model.Base{ID: uuid.New()},
		PatientID: uuid.New(),
		Name:      "Bupropion",
		DoseMg:    &dose,
		StartDate: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
		IsActive:  true,
	}

	mock.ExpectExec(`INSERT INTO medications`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), med))
	assert.False(t, med.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMedicationRepositoryListByPatientActiveOnly(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	patientID := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "patient_id", "name", "dose_mg", "start_date", "end_date",
		"is_active", "max_guideline_mg", "created_at", "updated_at", "deleted_at",
	}).AddRow(uuid.New(), patientID, "Sertraline", 100.0, now, nil, true, nil, now, now, nil)

	mock.ExpectQuery(`SELECT \* FROM medications WHERE patient_id = \$1 AND deleted_at IS NULL AND is_active = TRUE`).
		WithArgs(patientID).
		WillReturnRows(rows)

	meds, err := repo.ListByPatient(context.Background(), patientID, true)
	require.NoError(t, err)
	require.Len(t, meds, 1)
	assert.Equal(t, "Sertraline", meds[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMedicationRepositoryDeleteMissing(t *testing.T) {
	_, mock, repo := setupMockDB(t)

	id := uuid.New()
	mock.ExpectExec(`UPDATE medications SET deleted_at`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

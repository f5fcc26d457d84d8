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

type noteRepository struct {
	db *sqlx.DB
}

func NewNoteRepository(db *sqlx.DB) repository.NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *model.Note) error {
	query := `
		INSERT INTO notes (id, patient_id, author_id, transcript, subjective, objective,
			assessment, plan, summary, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	note.CreatedAt = time.Now()
	note.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		note.ID,
		note.PatientID,
		note.AuthorID,
		note.Transcript,
		note.Subjective,
		note.Objective,
		note.Assessment,
		note.Plan,
		note.Summary,
		note.Status,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

func (r *noteRepository) Get(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	query := `SELECT * FROM notes WHERE id = $1 AND deleted_at IS NULL`
	var note model.Note
	if err := r.db.GetContext(ctx, &note, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return &note, nil
}

func (r *noteRepository) Update(ctx context.Context, note *model.Note) error {
	query := `
		UPDATE notes
		SET subjective = $1, objective = $2, assessment = $3, plan = $4,
			summary = $5, status = $6, updated_at = $7
		WHERE id = $8 AND deleted_at IS NULL
	`
	note.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		note.Subjective,
		note.Objective,
		note.Assessment,
		note.Plan,
		note.Summary,
		note.Status,
		note.UpdatedAt,
		note.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *noteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE notes SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *noteRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, filters *model.NoteFilters) ([]*model.Note, error) {
	query := `SELECT * FROM notes WHERE patient_id = $1 AND deleted_at IS NULL`
	args := []interface{}{patientID}

	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	filters.Normalize()
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	notes := []*model.Note{}
	if err := r.db.SelectContext(ctx, &notes, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

package note

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/joshwoodland/boredcertified/internal/ai"
	"github.com/joshwoodland/boredcertified/internal/model"
	"github.com/joshwoodland/boredcertified/internal/repository"
	"github.com/joshwoodland/boredcertified/internal/service/audit"
	apperrors "github.com/joshwoodland/boredcertified/pkg/errors"
	"github.com/joshwoodland/boredcertified/pkg/metrics"
)

// summaryTTL bounds how long a cached summary can outlive edits made
// through other channels.
const summaryTTL = 24 * time.Hour

type Service struct {
	repo      repository.NoteRepository
	generator ai.Generator
	cache     *redis.Client
	auditor   *audit.Service
	metrics   *metrics.Metrics
}

func NewService(repo repository.NoteRepository, generator ai.Generator, cache *redis.Client, auditor *audit.Service, m *metrics.Metrics) *Service {
	return &Service{
		repo:      repo,
		generator: generator,
		cache:     cache,
		auditor:   auditor,
		metrics:   m,
	}
}

// CreateFromTranscript synthesizes SOAP sections from the visit
// transcript and stores the result as a draft note.
func (s *Service) CreateFromTranscript(ctx context.Context, patientID, authorID uuid.UUID, transcript string) (*model.Note, error) {
	start := time.Now()

	sections, err := s.generator.GenerateSOAP(ctx, transcript)
	if err != nil {
		return nil, apperrors.Upstream("note synthesis", err)
	}

	note := &model.Note{
		Base:       model.Base{ID: uuid.New()},
		PatientID:  patientID,
		AuthorID:   authorID,
		Transcript: transcript,
		Subjective: sections.Subjective,
		Objective:  sections.Objective,
		Assessment: sections.Assessment,
		Plan:       sections.Plan,
		Status:     string(model.NoteStatusDraft),
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to store note: %w", err)
	}

	s.metrics.NotesGenerated.Inc()
	s.metrics.NoteGenerationTime.Observe(time.Since(start).Seconds())
	s.auditor.Log(ctx, authorID, "create", "note", note.ID, nil)
	return note, nil
}

func (s *Service) GetNote(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	note, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.auditor.Log(ctx, audit.ActorFromContext(ctx), "read", "note", id, nil)
	return note, nil
}

func (s *Service) UpdateNote(ctx context.Context, id uuid.UUID, req *model.UpdateNoteRequest) (*model.Note, error) {
	note, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Subjective != nil {
		note.Subjective = *req.Subjective
	}
	if req.Objective != nil {
		note.Objective = *req.Objective
	}
	if req.Assessment != nil {
		note.Assessment = *req.Assessment
	}
	if req.Plan != nil {
		note.Plan = *req.Plan
	}
	if req.Status != nil {
		note.Status = *req.Status
	}

	if err := s.repo.Update(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	// Edits invalidate any cached summary.
	s.cache.Del(ctx, summaryKey(id))

	s.auditor.Log(ctx, audit.ActorFromContext(ctx), "update", "note", id, req)
	return note, nil
}

func (s *Service) DeleteNote(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Del(ctx, summaryKey(id))
	s.auditor.Log(ctx, audit.ActorFromContext(ctx), "delete", "note", id, nil)
	return nil
}

func (s *Service) ListNotes(ctx context.Context, patientID uuid.UUID, filters *model.NoteFilters) ([]*model.Note, error) {
	return s.repo.ListByPatient(ctx, patientID, filters)
}

// Summarize returns the one-line summary for a note, serving from redis
// when a fresh one exists and persisting newly generated summaries back
// onto the note row.
func (s *Service) Summarize(ctx context.Context, id uuid.UUID) (string, error) {
	cached, err := s.cache.Get(ctx, summaryKey(id)).Result()
	if err == nil {
		s.metrics.SummaryCacheHits.Inc()
		return cached, nil
	}
	// Cache trouble is treated the same as a miss; the upstream call is
	// the fallback either way.
	s.metrics.SummaryCacheMisses.Inc()

	note, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}

	summary, err := s.generator.Summarize(ctx, noteText(note))
	if err != nil {
		return "", apperrors.Upstream("note summarization", err)
	}

	note.Summary = summary
	if err := s.repo.Update(ctx, note); err != nil {
		return "", fmt.Errorf("failed to persist summary: %w", err)
	}
	s.cache.Set(ctx, summaryKey(id), summary, summaryTTL)

	return summary, nil
}

func summaryKey(id uuid.UUID) string {
	return "note:summary:" + id.String()
}

func noteText(n *model.Note) string {
	return fmt.Sprintf("Subjective: %s\nObjective: %s\nAssessment: %s\nPlan: %s",
		n.Subjective, n.Objective, n.Assessment, n.Plan)
}

package note

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshwoodland/boredcertified/internal/model"
	"github.com/joshwoodland/boredcertified/internal/repository/postgres"
	"github.com/joshwoodland/boredcertified/internal/service/audit"
	"github.com/joshwoodland/boredcertified/pkg/logger"
	"github.com/joshwoodland/boredcertified/pkg/metrics"
)

type fakeNoteRepo struct {
	notes   map[uuid.UUID]*model.Note
	updates int
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[uuid.UUID]*model.Note)}
}

func (r *fakeNoteRepo) Create(ctx context.Context, note *model.Note) error {
	r.notes[note.ID] = note
	return nil
}

func (r *fakeNoteRepo) Get(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	note, ok := r.notes[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	copied := *note
	return &copied, nil
}

func (r *fakeNoteRepo) Update(ctx context.Context, note *model.Note) error {
	if _, ok := r.notes[note.ID]; !ok {
		return postgres.ErrNotFound
	}
	r.notes[note.ID] = note
	r.updates++
	return nil
}

func (r *fakeNoteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.notes[id]; !ok {
		return postgres.ErrNotFound
	}
	delete(r.notes, id)
	return nil
}

func (r *fakeNoteRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, filters *model.NoteFilters) ([]*model.Note, error) {
	out := []*model.Note{}
	for _, n := range r.notes {
		if n.PatientID == patientID {
			out = append(out, n)
		}
	}
	return out, nil
}

type fakeGenerator struct {
	sections      *model.SOAPSections
	summary       string
	summarizeHits int
}

func (g *fakeGenerator) GenerateSOAP(ctx context.Context, transcript string) (*model.SOAPSections, error) {
	return g.sections, nil
}

func (g *fakeGenerator) Summarize(ctx context.Context, noteText string) (string, error) {
	g.summarizeHits++
	return g.summary, nil
}

type fakeAuditRepo struct{}

func (r *fakeAuditRepo) Create(ctx context.Context, e *model.AuditLog) error { return nil }
func (r *fakeAuditRepo) ListByResource(ctx context.Context, rt string, id uuid.UUID) ([]*model.AuditLog, error) {
	return nil, nil
}

var testMetrics = metrics.NewMetrics("note_service_test")

func newTestService(t *testing.T) (*Service, *fakeNoteRepo, *fakeGenerator, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	repo := newFakeNoteRepo()
	gen := &fakeGenerator{
		sections: &model.SOAPSections{
			Subjective: "Reports improved mood.",
			Objective:  "Alert, calm affect.",
			Assessment: "MDD, responding to treatment.",
			Plan:       "Continue sertraline 100 mg.",
		},
		summary: "Follow-up visit, mood improved on current dose.",
	}
	auditor := audit.NewService(&fakeAuditRepo{}, logger.NewLogger(nil))

	return NewService(repo, gen, cache, auditor, testMetrics), repo, gen, mr
}

func TestCreateFromTranscript(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	patientID, authorID := uuid.New(), uuid.New()
	note, err := svc.CreateFromTranscript(context.Background(), patientID, authorID, "Patient says mood is better.")
	require.NoError(t, err)

	assert.Equal(t, patientID, note.PatientID)
	assert.Equal(t, authorID, note.AuthorID)
	assert.Equal(t, "Patient says mood is better.", note.Transcript)
	assert.Equal(t, "Reports improved mood.", note.Subjective)
	assert.Equal(t, string(model.NoteStatusDraft), note.Status)

	stored, err := repo.Get(context.Background(), note.ID)
	require.NoError(t, err)
	assert.Equal(t, note.Subjective, stored.Subjective)
}

func TestSummarizeCachesResult(t *testing.T) {
	svc, repo, gen, mr := newTestService(t)

	note := &model.Note{Base: model.Base{ID: uuid.New()}, Subjective: "Mood improved."}
	repo.notes[note.ID] = note

	// First call misses the cache and hits the generator.
	summary, err := svc.Summarize(context.Background(), note.ID)
	require.NoError(t, err)
	assert.Equal(t, gen.summary, summary)
	assert.Equal(t, 1, gen.summarizeHits)

	cached, err := mr.Get(summaryKey(note.ID))
	require.NoError(t, err)
	assert.Equal(t, gen.summary, cached)

	// Summary is also persisted on the row.
	stored, err := repo.Get(context.Background(), note.ID)
	require.NoError(t, err)
	assert.Equal(t, gen.summary, stored.Summary)

	// Second call is served from redis.
	summary, err = svc.Summarize(context.Background(), note.ID)
	require.NoError(t, err)
	assert.Equal(t, gen.summary, summary)
	assert.Equal(t, 1, gen.summarizeHits)
}

func TestSummarizeMissingNote(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Summarize(context.Background(), uuid.New())
	assert.ErrorIs(t, err, postgres.ErrNotFound)
}

func TestUpdateInvalidatesCachedSummary(t *testing.T) {
	svc, repo, gen, mr := newTestService(t)

	note := &model.Note{Base: model.Base{ID: uuid.New()}, Subjective: "Mood improved."}
	repo.notes[note.ID] = note

	_, err := svc.Summarize(context.Background(), note.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists(summaryKey(note.ID)))

	newPlan := "Taper sertraline over 8 weeks."
	_, err = svc.UpdateNote(context.Background(), note.ID, &model.UpdateNoteRequest{Plan: &newPlan})
	require.NoError(t, err)

	assert.False(t, mr.Exists(summaryKey(note.ID)))

	// The next summary request regenerates.
	_, err = svc.Summarize(context.Background(), note.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, gen.summarizeHits)
}

func TestDeleteNoteDropsCache(t *testing.T) {
	svc, repo, _, mr := newTestService(t)

	note := &model.Note{Base: model.Base{ID: uuid.New()}, Subjective: "Mood improved."}
	repo.notes[note.ID] = note

	_, err := svc.Summarize(context.Background(), note.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteNote(context.Background(), note.ID))
	assert.False(t, mr.Exists(summaryKey(note.ID)))

	_, err = repo.Get(context.Background(), note.ID)
	assert.ErrorIs(t, err, postgres.ErrNotFound)
}

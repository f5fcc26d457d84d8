package medication

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshwoodland/boredcertified/internal/model"
	"github.com/joshwoodland/boredcertified/internal/repository/postgres"
	"github.com/joshwoodland/boredcertified/internal/service/audit"
	"github.com/joshwoodland/boredcertified/internal/taper"
	"github.com/joshwoodland/boredcertified/pkg/logger"
	"github.com/joshwoodland/boredcertified/pkg/metrics"
)

func mg(v float64) *float64 { return &v }

type fakeMedicationRepo struct {
	meds map[uuid.UUID]*model.Medication
}

func newFakeMedicationRepo() *fakeMedicationRepo {
	return &fakeMedicationRepo{meds: make(map[uuid.UUID]*model.Medication)}
}

func (r *fakeMedicationRepo) Create(ctx context.Context, med *model.Medication) error {
	r.meds[med.ID] = med
	return nil
}

func (r *fakeMedicationRepo) Get(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	med, ok := r.meds[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	return med, nil
}

func (r *fakeMedicationRepo) Update(ctx context.Context, med *model.Medication) error {
	if _, ok := r.meds[med.ID]; !ok {
		return postgres.ErrNotFound
	}
	r.meds[med.ID] = med
	return nil
}

func (r *fakeMedicationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.meds[id]; !ok {
		return postgres.ErrNotFound
	}
	delete(r.meds, id)
	return nil
}

func (r *fakeMedicationRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, activeOnly bool) ([]*model.Medication, error) {
	out := []*model.Medication{}
	for _, med := range r.meds {
		if med.PatientID != patientID {
			continue
		}
		if activeOnly && !med.IsActive {
			continue
		}
		out = append(out, med)
	}
	return out, nil
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func (r *fakePatientRepo) Create(ctx context.Context, p *model.Patient) error { return nil }
func (r *fakePatientRepo) Update(ctx context.Context, p *model.Patient) error { return nil }
func (r *fakePatientRepo) Delete(ctx context.Context, id uuid.UUID) error     { return nil }
func (r *fakePatientRepo) List(ctx context.Context, f *model.PatientFilters) ([]*model.Patient, error) {
	return nil, nil
}

func (r *fakePatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	return p, nil
}

type fakeAuditRepo struct{}

func (r *fakeAuditRepo) Create(ctx context.Context, e *model.AuditLog) error { return nil }
func (r *fakeAuditRepo) ListByResource(ctx context.Context, rt string, id uuid.UUID) ([]*model.AuditLog, error) {
	return nil, nil
}

type capturedMail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent []capturedMail
}

func (m *fakeMailer) SendTaperPlan(ctx context.Context, to, patientName, medicationName, markdown string) error {
	m.sent = append(m.sent, capturedMail{to: to, subject: medicationName, body: markdown})
	return nil
}

func (m *fakeMailer) SendCustom(ctx context.Context, to, subject, body string) error {
	m.sent = append(m.sent, capturedMail{to: to, subject: subject, body: body})
	return nil
}

var testMetrics = metrics.NewMetrics("medication_service_test")

func newTestService(t *testing.T) (*Service, *fakeMedicationRepo, *fakePatientRepo, *fakeMailer) {
	t.Helper()

	medRepo := newFakeMedicationRepo()
	patientRepo := &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
	mailer := &fakeMailer{}
	auditor := audit.NewService(&fakeAuditRepo{}, logger.NewLogger(nil))

	return NewService(medRepo, patientRepo, mailer, auditor, testMetrics), medRepo, patientRepo, mailer
}

func storedMedication(repo *fakeMedicationRepo, patientID uuid.UUID, name string, dose *float64) *model.Medication {
	med := &model.Medication{
		Base:      model.Base{ID: uuid.New()},
		PatientID: patientID,
		Name:      name,
		DoseMg:    dose,
		StartDate: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		IsActive:  true,
	}
	repo.meds[med.ID] = med
	return med
}

func TestBuildTaperPlan(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	med := storedMedication(repo, uuid.New(), "Sertraline", mg(87))

	plan, err := svc.BuildTaperPlan(context.Background(), med.ID, model.TaperOptions{
		StartDate: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(plan.Steps), 2)
	assert.Equal(t, 87.0, plan.Steps[0].DoseMg)
	assert.Equal(t, "Current dose", plan.Steps[0].Notes)
	assert.Equal(t, 65.0, plan.Steps[1].DoseMg)
	assert.Equal(t, 0.0, plan.Steps[len(plan.Steps)-1].DoseMg)

	assert.Contains(t, plan.Markdown, "| Week | Date | Dose (mg) | Notes |")
	assert.Contains(t, plan.Markdown, "| 0 | Dec 1, 2023 | 87 | Current dose |")
}

func TestBuildTaperPlanUnknownDose(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	med := storedMedication(repo, uuid.New(), "Sertraline", nil)

	plan, err := svc.BuildTaperPlan(context.Background(), med.ID, model.TaperOptions{})
	require.NoError(t, err)

	assert.Empty(t, plan.Steps)
	assert.Equal(t, "No taper plan available.", plan.Markdown)
}

func TestBuildTaperPlanInvalidOptions(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	med := storedMedication(repo, uuid.New(), "Sertraline", mg(50))

	_, err := svc.BuildTaperPlan(context.Background(), med.ID, model.TaperOptions{ReductionPercent: -10})
	assert.ErrorIs(t, err, taper.ErrInvalidOptions)
}

func TestBuildTaperPlanMissingMedication(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.BuildTaperPlan(context.Background(), uuid.New(), model.TaperOptions{})
	assert.ErrorIs(t, err, postgres.ErrNotFound)
}

func TestEmailTaperPlan(t *testing.T) {
	svc, repo, patients, mailer := newTestService(t)

	patientID := uuid.New()
	patients.patients[patientID] = &model.Patient{
		Base:  model.Base{ID: patientID},
		Name:  "Jordan Avery",
		Email: "jordan@example.com",
	}
	med := storedMedication(repo, patientID, "Sertraline", mg(100))

	err := svc.EmailTaperPlan(context.Background(), med.ID, model.TaperOptions{
		StartDate: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "jordan@example.com", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].body, "| Week | Date | Dose (mg) | Notes |")
}

func TestGuidelineMaxLookup(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	max, ok := svc.GuidelineMax("Sertraline")
	require.True(t, ok)
	assert.Equal(t, 200.0, max)

	max, ok = svc.GuidelineMax("  SERTRALINE ")
	require.True(t, ok)
	assert.Equal(t, 200.0, max)

	_, ok = svc.GuidelineMax("unobtainium")
	assert.False(t, ok)
}

func TestIsAboveGuideline(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	over := storedMedication(repo, uuid.New(), "Sertraline", mg(250))
	assert.True(t, svc.IsAboveGuideline(over))

	within := storedMedication(repo, uuid.New(), "Sertraline", mg(100))
	assert.False(t, svc.IsAboveGuideline(within))

	unknownDose := storedMedication(repo, uuid.New(), "Sertraline", nil)
	assert.False(t, svc.IsAboveGuideline(unknownDose))
}

func TestTimeline(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	patientID := uuid.New()
	active := storedMedication(repo, patientID, "Sertraline", mg(250))

	stopped := storedMedication(repo, patientID, "Bupropion", mg(150))
	end := time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC)
	stopped.EndDate = &end
	stopped.IsActive = false

	entries, err := svc.Timeline(context.Background(), patientID)
	require.NoError(t, err)
	require.Len(t, entries, 3, "two starts plus one stop")

	var sawWarn, sawStop bool
	for _, e := range entries {
		if e.Event.Type == model.EventStart && e.Event.MedicationName == active.Name {
			assert.Contains(t, e.Tooltip, "Started Sertraline 250 mg")
			assert.Contains(t, e.Tooltip, "⚠️ Above recommended max")
			assert.Equal(t, "rgba(255,171,0,0.85)", e.BarFill)
			sawWarn = true
		}
		if e.Event.Type == model.EventStop {
			assert.Contains(t, e.Tooltip, "Discontinued May 2023")
			assert.Equal(t, "rgba(59,130,246,0.6)", e.BarFill)
			sawStop = true
		}
	}
	assert.True(t, sawWarn)
	assert.True(t, sawStop)
}

func TestTimelineDoseChange(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	patientID := uuid.New()
	first := storedMedication(repo, patientID, "Sertraline", mg(50))
	first.StartDate = time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	first.EndDate = &end

	second := storedMedication(repo, patientID, "Sertraline", mg(100))
	second.StartDate = time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	entries, err := svc.Timeline(context.Background(), patientID)
	require.NoError(t, err)
	require.Len(t, entries, 3, "start, stop, dose change")

	assert.Equal(t, model.EventStart, entries[0].Event.Type)
	assert.Empty(t, entries[0].Icon)

	assert.Equal(t, model.EventStop, entries[1].Event.Type)

	assert.Equal(t, model.EventDoseChange, entries[2].Event.Type)
	assert.Equal(t, "Changed to 100 mg Mar 2023", entries[2].Tooltip)
	assert.Equal(t, "▲", entries[2].Icon)
}

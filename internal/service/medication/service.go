package medication

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/joshwoodland/boredcertified/internal/email"
	"github.com/joshwoodland/boredcertified/internal/model"
	"github.com/joshwoodland/boredcertified/internal/present"
	"github.com/joshwoodland/boredcertified/internal/repository"
	"github.com/joshwoodland/boredcertified/internal/service/audit"
	"github.com/joshwoodland/boredcertified/internal/taper"
	"github.com/joshwoodland/boredcertified/pkg/metrics"
)

// guidelineMaxMg maps lowercase medication names to published maximum
// recommended daily doses. The table is seeded from prescribing
// references and consulted through an expiring cache so per-row
// overrides loaded later win over the static entry.
var guidelineMaxMg = map[string]float64{
	"sertraline":   200,
	"fluoxetine":   80,
	"escitalopram": 20,
	"bupropion":    450,
	"venlafaxine":  375,
	"duloxetine":   120,
	"mirtazapine":  45,
	"trazodone":    400,
}

type Service struct {
	repo        repository.MedicationRepository
	patientRepo repository.PatientRepository
	mailer      email.Sender
	auditor     *audit.Service
	metrics     *metrics.Metrics
	guidelines  *gocache.Cache
}

func NewService(repo repository.MedicationRepository, patientRepo repository.PatientRepository, mailer email.Sender, auditor *audit.Service, m *metrics.Metrics) *Service {
	guidelines := gocache.New(12*time.Hour, time.Hour)
	for name, max := range guidelineMaxMg {
		guidelines.Set(name, max, gocache.NoExpiration)
	}

	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		mailer:      mailer,
		auditor:     auditor,
		metrics:     m,
		guidelines:  guidelines,
	}
}

func (s *Service) CreateMedication(ctx context.Context, patientID uuid.UUID, req *model.CreateMedicationRequest) (*model.Medication, error) {
	start := time.Now()
	if req.StartDate != nil {
		start = *req.StartDate
	}

	med := &model.Medication{
		Base:      model.Base{ID: uuid.New()},
		PatientID: patientID,
		Name:      req.Name,
		DoseMg:    req.DoseMg,
		StartDate: start,
		IsActive:  true,
	}
	if max, ok := s.GuidelineMax(req.Name); ok {
		med.MaxGuidelineDmg = &max
	}

	if err := s.repo.Create(ctx, med); err != nil {
		return nil, fmt.Errorf("failed to create medication: %w", err)
	}

	s.auditor.Log(ctx, audit.ActorFromContext(ctx), "create", "medication", med.ID, med)
	return med, nil
}

func (s *Service) GetMedication(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateMedication(ctx context.Context, id uuid.UUID, req *model.UpdateMedicationRequest) (*model.Medication, error) {
	med, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DoseMg != nil {
		med.DoseMg = req.DoseMg
	}
	if req.EndDate != nil {
		med.EndDate = req.EndDate
	}
	if req.IsActive != nil {
		med.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, med); err != nil {
		return nil, fmt.Errorf("failed to update medication: %w", err)
	}

	s.auditor.Log(ctx, audit.ActorFromContext(ctx), "update", "medication", id, req)
	return med, nil
}

func (s *Service) DeleteMedication(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditor.Log(ctx, audit.ActorFromContext(ctx), "delete", "medication", id, nil)
	return nil
}

func (s *Service) ListMedications(ctx context.Context, patientID uuid.UUID, activeOnly bool) ([]*model.Medication, error) {
	return s.repo.ListByPatient(ctx, patientID, activeOnly)
}

// GuidelineMax looks up the published maximum daily dose for a
// medication name, case-insensitively.
func (s *Service) GuidelineMax(name string) (float64, bool) {
	v, ok := s.guidelines.Get(strings.ToLower(strings.TrimSpace(name)))
	if !ok {
		return 0, false
	}
	max, ok := v.(float64)
	return max, ok
}

// IsAboveGuideline reports whether the medication's current dose exceeds
// its guideline maximum. Unknown doses or medications are never flagged.
func (s *Service) IsAboveGuideline(med *model.Medication) bool {
	if med.DoseMg == nil {
		return false
	}
	max := med.MaxGuidelineDmg
	if max == nil {
		if m, ok := s.GuidelineMax(med.Name); ok {
			max = &m
		}
	}
	return max != nil && *med.DoseMg > *max
}

// BuildTaperPlan computes the step-down schedule for a stored
// medication and renders it for display.
func (s *Service) BuildTaperPlan(ctx context.Context, medicationID uuid.UUID, opts model.TaperOptions) (*model.TaperPlan, error) {
	med, err := s.repo.Get(ctx, medicationID)
	if err != nil {
		return nil, err
	}

	steps, err := taper.ComputeTaper(med.Span(), opts)
	if err != nil {
		return nil, err
	}

	s.metrics.TaperPlansComputed.Inc()
	s.metrics.TaperPlanSteps.Observe(float64(len(steps)))
	s.auditor.Log(ctx, audit.ActorFromContext(ctx), "taper_plan", "medication", medicationID, opts)

	return &model.TaperPlan{
		MedicationID:   med.ID.String(),
		MedicationName: med.Name,
		Steps:          steps,
		Markdown:       present.MarkdownTable(steps),
	}, nil
}

// EmailTaperPlan computes a plan and mails its markdown rendering to the
// patient on file.
func (s *Service) EmailTaperPlan(ctx context.Context, medicationID uuid.UUID, opts model.TaperOptions) error {
	plan, err := s.BuildTaperPlan(ctx, medicationID, opts)
	if err != nil {
		return err
	}

	med, err := s.repo.Get(ctx, medicationID)
	if err != nil {
		return err
	}
	patient, err := s.patientRepo.Get(ctx, med.PatientID)
	if err != nil {
		return err
	}

	if err := s.mailer.SendTaperPlan(ctx, patient.Email, patient.Name, plan.MedicationName, plan.Markdown); err != nil {
		return fmt.Errorf("failed to email taper plan: %w", err)
	}

	s.auditor.Log(ctx, audit.ActorFromContext(ctx), "taper_plan_email", "medication", medicationID, nil)
	return nil
}

// TimelineEntry pairs a medication event with its precomputed display
// strings so the UI renders them verbatim.
type TimelineEntry struct {
	Event   model.MedicationEvent `json:"event"`
	Tooltip string                `json:"tooltip"`
	Icon    string                `json:"icon"`
	BarFill string                `json:"bar_fill"`
}

// Timeline flattens a patient's medication history into ordered
// start/dose-change/stop entries with display strings attached. A dose
// change is recorded as a new row for the same medication name, so a
// later row of a name already seen renders as a change, not a start.
func (s *Service) Timeline(ctx context.Context, patientID uuid.UUID) ([]TimelineEntry, error) {
	meds, err := s.repo.ListByPatient(ctx, patientID, false)
	if err != nil {
		return nil, err
	}
	sort.Slice(meds, func(i, j int) bool { return meds[i].StartDate.Before(meds[j].StartDate) })

	prevDose := map[string]*float64{}
	entries := []TimelineEntry{}
	for _, med := range meds {
		above := s.IsAboveGuideline(med)

		evType := model.EventStart
		prev, seen := prevDose[med.Name]
		if seen {
			evType = model.EventDoseChange
		}

		ev := model.MedicationEvent{
			Type:             evType,
			MedicationName:   med.Name,
			Date:             med.StartDate.UTC().Format(time.RFC3339),
			DoseMg:           med.DoseMg,
			IsAboveGuideline: above,
		}
		entries = append(entries, TimelineEntry{
			Event:   ev,
			Tooltip: present.TooltipText(ev),
			Icon:    present.DoseChangeIcon(prev, med.DoseMg),
			BarFill: present.BarFill(med.DoseMg, s.guidelineFor(med), above),
		})
		prevDose[med.Name] = med.DoseMg

		if med.EndDate != nil {
			stopEv := model.MedicationEvent{
				Type:           model.EventStop,
				MedicationName: med.Name,
				Date:           med.EndDate.UTC().Format(time.RFC3339),
			}
			entries = append(entries, TimelineEntry{
				Event:   stopEv,
				Tooltip: present.TooltipText(stopEv),
				BarFill: present.BarFill(nil, nil, false),
			})
		}
	}

	s.auditor.Log(ctx, audit.ActorFromContext(ctx), "timeline", "patient", patientID, nil)
	return entries, nil
}

func (s *Service) guidelineFor(med *model.Medication) *float64 {
	if med.MaxGuidelineDmg != nil {
		return med.MaxGuidelineDmg
	}
	if max, ok := s.GuidelineMax(med.Name); ok {
		return &max
	}
	return nil
}

package present

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshwoodland/boredcertified/internal/model"
)

func mg(v float64) *float64 { return &v }

func samplePlan() []model.TaperStep {
	start := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	return []model.TaperStep{
		{Date: start, DoseMg: 87, WeekNumber: 0, Notes: "Current dose"},
		{Date: start.AddDate(0, 0, 14), DoseMg: 65, WeekNumber: 2, Notes: "25% reduction"},
		{Date: start.AddDate(0, 0, 28), DoseMg: 50, WeekNumber: 4, Notes: "25% reduction"},
		{Date: start.AddDate(0, 0, 42), DoseMg: 0, WeekNumber: 6, Notes: "Discontinue"},
	}
}

func TestMarkdownTableEmptyPlanSentinel(t *testing.T) {
	assert.Equal(t, "No taper plan available.", MarkdownTable(nil))
	assert.Equal(t, "No taper plan available.", MarkdownTable([]model.TaperStep{}))
}

func TestMarkdownTableStructure(t *testing.T) {
	out := MarkdownTable(samplePlan())

	assert.Contains(t, out, "| Week | Date | Dose (mg) | Notes |")
	assert.Contains(t, out, "|------|------|-----------|-------|")
	assert.Contains(t, out, "| 0 | Dec 1, 2023 | 87 | Current dose |")
	assert.Contains(t, out, "| 2 | Dec 15, 2023 | 65 | 25% reduction |")
	assert.Contains(t, out, "| 6 | Jan 12, 2024 | 0 | Discontinue |")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6, "header + separator + one row per step")
}

func TestMarkdownTableFractionalDose(t *testing.T) {
	plan := []model.TaperStep{
		{Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), DoseMg: 7.5, WeekNumber: 0, Notes: "Current dose"},
	}
	assert.Contains(t, MarkdownTable(plan), "| 0 | Mar 5, 2024 | 7.5 | Current dose |")
}

func TestBarFillAboveGuidelineWinsAlways(t *testing.T) {
	assert.Equal(t, "rgba(255,171,0,0.85)", BarFill(mg(10), mg(100), true))
	assert.Equal(t, "rgba(255,171,0,0.85)", BarFill(nil, nil, true))
	assert.Equal(t, "rgba(255,171,0,0.85)", BarFill(mg(500), mg(1), true))
}

func TestBarFillDefaultOnMissingInputs(t *testing.T) {
	assert.Equal(t, "rgba(59,130,246,0.6)", BarFill(nil, nil, false))
	assert.Equal(t, "rgba(59,130,246,0.6)", BarFill(mg(50), nil, false))
	assert.Equal(t, "rgba(59,130,246,0.6)", BarFill(nil, mg(100), false))
}

func TestBarFillInterpolation(t *testing.T) {
	assert.Contains(t, BarFill(mg(75), mg(100), false), "0.825")
	assert.Contains(t, BarFill(mg(25), mg(100), false), "0.475")
}

func TestBarFillCapsAtFullIntensity(t *testing.T) {
	assert.Equal(t, "rgba(59,130,246,1)", BarFill(mg(200), mg(100), false))
	assert.Equal(t, "rgba(59,130,246,1)", BarFill(mg(100), mg(100), false))
}

func TestDoseChangeIcon(t *testing.T) {
	assert.Equal(t, "▲", DoseChangeIcon(mg(50), mg(75)))
	assert.Equal(t, "▼", DoseChangeIcon(mg(75), mg(50)))
	assert.Equal(t, "●", DoseChangeIcon(mg(50), mg(50)))
	assert.Equal(t, "", DoseChangeIcon(nil, mg(50)))
	assert.Equal(t, "", DoseChangeIcon(mg(50), nil))
	assert.Equal(t, "", DoseChangeIcon(nil, nil))
}

func TestTooltipStart(t *testing.T) {
	out := TooltipText(model.MedicationEvent{
		Type:             model.EventStart,
		MedicationName:   "Sertraline",
		Date:             "2023-01-15T00:00:00.000Z",
		DoseMg:           mg(250),
		IsAboveGuideline: true,
	})
	assert.Equal(t, "Started Sertraline 250 mg Jan 2023 ⚠️ Above recommended max", out)
}

func TestTooltipStartWithoutDose(t *testing.T) {
	out := TooltipText(model.MedicationEvent{
		Type:           model.EventStart,
		MedicationName: "Bupropion",
		Date:           "2023-03-01T00:00:00.000Z",
	})
	assert.Equal(t, "Started Bupropion Mar 2023", out)
}

func TestTooltipDoseChange(t *testing.T) {
	out := TooltipText(model.MedicationEvent{
		Type:   model.EventDoseChange,
		Date:   "2023-04-10T00:00:00.000Z",
		DoseMg: mg(37.5),
	})
	assert.Equal(t, "Changed to 37.5 mg Apr 2023", out)
}

func TestTooltipStopWithNote(t *testing.T) {
	out := TooltipText(model.MedicationEvent{
		Type: model.EventStop,
		Date: "2023-05-15T00:00:00.000Z",
		Note: "Side effects",
	})
	assert.Contains(t, out, "Discontinued May 2023")
	assert.Contains(t, out, "Side effects")
}

func TestTooltipOutcomeAppendsLast(t *testing.T) {
	out := TooltipText(model.MedicationEvent{
		Type:             model.EventStop,
		Date:             "2023-05-15T00:00:00.000Z",
		Note:             "Side effects",
		IsAboveGuideline: true,
		OutcomeText:      "✅ Remission sustained",
	})
	assert.Equal(t, "Discontinued May 2023 – Side effects ⚠️ Above recommended max ✅ Remission sustained", out)
}

func TestTooltipMalformedDate(t *testing.T) {
	out := TooltipText(model.MedicationEvent{
		Type:           model.EventStart,
		MedicationName: "Sertraline",
		Date:           "not-a-date",
	})
	assert.Equal(t, "Started Sertraline Invalid Date", out)
}

func TestFormattersAreIdempotent(t *testing.T) {
	plan := samplePlan()
	assert.Equal(t, MarkdownTable(plan), MarkdownTable(plan))
	assert.Equal(t, BarFill(mg(75), mg(100), false), BarFill(mg(75), mg(100), false))
	assert.Equal(t, DoseChangeIcon(mg(1), mg(2)), DoseChangeIcon(mg(1), mg(2)))

	ev := model.MedicationEvent{Type: model.EventStart, MedicationName: "X", Date: "2023-01-01T00:00:00Z"}
	assert.Equal(t, TooltipText(ev), TooltipText(ev))
}

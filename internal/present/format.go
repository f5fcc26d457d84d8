// Package present renders taper plans and medication events into the
// exact display strings the UI shows verbatim. Downstream code pattern
// matches on these strings, so the formats here are load-bearing.
package present

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joshwoodland/boredcertified/internal/model"
)

// Fixed colors for the dose-intensity bar.
const (
	warnColor    = "rgba(255,171,0,0.85)"
	defaultColor = "rgba(59,130,246,0.6)"
)

const invalidDate = "Invalid Date"

// MarkdownTable renders a taper plan as a markdown table, one row per
// step. An empty plan renders the fixed sentinel line instead.
func MarkdownTable(plan []model.TaperStep) string {
	if len(plan) == 0 {
		return "No taper plan available."
	}

	var b strings.Builder
	b.WriteString("| Week | Date | Dose (mg) | Notes |\n")
	b.WriteString("|------|------|-----------|-------|\n")
	for _, step := range plan {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n",
			step.WeekNumber,
			step.Date.Format("Jan 2, 2006"),
			formatNumber(step.DoseMg),
			step.Notes,
		)
	}
	return b.String()
}

// BarFill encodes a dose as an RGBA color for the intensity bar. An
// above-guideline flag wins over everything; missing inputs fall back to
// the neutral default; otherwise opacity scales linearly from 0.3 to 1.0
// with the dose-to-guideline ratio, capped at full intensity.
func BarFill(doseMg, maxGuidelineDoseMg *float64, isAboveGuideline bool) string {
	if isAboveGuideline {
		return warnColor
	}
	if doseMg == nil || maxGuidelineDoseMg == nil {
		return defaultColor
	}
	ratio := *doseMg / *maxGuidelineDoseMg
	if ratio > 1 {
		ratio = 1
	}
	return fmt.Sprintf("rgba(59,130,246,%s)", formatNumber(0.3+ratio*0.7))
}

// DoseChangeIcon maps a dose transition to a trend glyph. Either side
// missing means no glyph at all.
func DoseChangeIcon(oldDoseMg, newDoseMg *float64) string {
	if oldDoseMg == nil || newDoseMg == nil {
		return ""
	}
	switch {
	case *newDoseMg > *oldDoseMg:
		return "▲"
	case *newDoseMg < *oldDoseMg:
		return "▼"
	default:
		return "●"
	}
}

// TooltipText builds the one-line hover description for a medication
// event. Composition order is fixed: base text, guideline warning,
// outcome text.
func TooltipText(ev model.MedicationEvent) string {
	var b strings.Builder

	switch ev.Type {
	case model.EventStart:
		b.WriteString("Started ")
		b.WriteString(ev.MedicationName)
		if ev.DoseMg != nil {
			b.WriteString(" ")
			b.WriteString(formatNumber(*ev.DoseMg))
			b.WriteString(" mg")
		}
		b.WriteString(" ")
		b.WriteString(monthYear(ev.Date))
	case model.EventDoseChange:
		b.WriteString("Changed to ")
		if ev.DoseMg != nil {
			b.WriteString(formatNumber(*ev.DoseMg))
			b.WriteString(" mg ")
		}
		b.WriteString(monthYear(ev.Date))
	case model.EventStop:
		b.WriteString("Discontinued ")
		b.WriteString(monthYear(ev.Date))
		if ev.Note != "" {
			b.WriteString(" – ")
			b.WriteString(ev.Note)
		}
	}

	if ev.IsAboveGuideline {
		b.WriteString(" ⚠️ Above recommended max")
	}
	if ev.OutcomeText != "" {
		b.WriteString(" ")
		b.WriteString(ev.OutcomeText)
	}
	return b.String()
}

// monthYear renders an ISO-8601 date as "Jan 2006". A date that does not
// parse renders the literal "Invalid Date" token rather than failing;
// tooltips stay total over garbage input.
func monthYear(iso string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		if t, err = time.Parse("2006-01-02", iso); err != nil {
			return invalidDate
		}
	}
	return t.UTC().Format("Jan 2006")
}

// formatNumber renders a dose or opacity as a plain decimal: no trailing
// zeros, no fixed width, no exponent form.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

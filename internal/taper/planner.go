// Package taper computes medication dose step-down schedules.
//
// The planner is pure: given a medication span and options it returns the
// same plan every time. The only ambient input, the plan start date, is
// injected through TaperOptions and defaulted at the call boundary.
package taper

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/joshwoodland/boredcertified/internal/model"
)

// Defaults applied when the corresponding TaperOptions field is zero.
const (
	DefaultReductionPercent = 25.0
	DefaultIntervalWeeks    = 2
	DefaultMinDose          = 0.0
)

// maxSteps bounds the plan length. A default 25% taper from any realistic
// dose discontinues in well under twenty steps; hitting the cap means the
// options describe a reduction too small to ever converge.
const maxSteps = 120

// ErrInvalidOptions is returned for explicitly negative reduction,
// interval, or minimum-dose values. Zero values select the defaults.
var ErrInvalidOptions = errors.New("taper: reduction percent, interval weeks, and min dose must not be negative")

// ComputeTaper builds a dose step-down schedule for the given span.
//
// The first step reproduces the current dose verbatim. Each subsequent
// step removes ReductionPercent of the previous step's dose, clamps the
// result at MinDose, and rounds it to a realistic dosing increment. The
// plan ends with a "Discontinue" step at MinDose.
//
// A span with an absent dose, or a dose at or below MinDose, yields an
// empty plan and no error: there is nothing to taper.
func ComputeTaper(span model.MedicationSpan, opts model.TaperOptions) ([]model.TaperStep, error) {
	if opts.ReductionPercent < 0 || opts.IntervalWeeks < 0 || opts.MinDose < 0 {
		return nil, ErrInvalidOptions
	}
	if opts.ReductionPercent == 0 {
		opts.ReductionPercent = DefaultReductionPercent
	}
	if opts.IntervalWeeks == 0 {
		opts.IntervalWeeks = DefaultIntervalWeeks
	}
	if opts.StartDate.IsZero() {
		opts.StartDate = time.Now()
	}

	if span.DoseMg == nil || *span.DoseMg <= opts.MinDose {
		return []model.TaperStep{}, nil
	}

	steps := []model.TaperStep{{
		Date:       opts.StartDate,
		DoseMg:     *span.DoseMg,
		WeekNumber: 0,
		Notes:      "Current dose",
	}}

	dose := *span.DoseMg
	week := 0
	for len(steps) < maxSteps {
		week += opts.IntervalWeeks

		next := dose - dose*(opts.ReductionPercent/100)
		if next < opts.MinDose {
			next = opts.MinDose
		}
		next = RoundDose(next)
		if next < opts.MinDose {
			// Rounding landed under a nonzero floor.
			next = opts.MinDose
		}

		// Rounding can stall (e.g. 0.1 mg minus 25% rounds back to
		// 0.1 mg). Force the terminal step so the plan always ends.
		if next >= dose {
			next = opts.MinDose
		}

		notes := fmt.Sprintf("%s%% reduction", formatMg(opts.ReductionPercent))
		if next == opts.MinDose {
			notes = "Discontinue"
		}

		steps = append(steps, model.TaperStep{
			Date:       opts.StartDate.AddDate(0, 0, week*7),
			DoseMg:     next,
			WeekNumber: week,
			Notes:      notes,
		})

		if next == opts.MinDose {
			break
		}
		dose = next
	}

	return steps, nil
}

// RoundDose snaps a computed dose to a realistic dispensing increment:
// multiples of 5 mg above 10 mg, 0.5 mg above 1 mg, and 0.1 mg below
// that. The tiers mirror common tablet and liquid strengths and are a
// clinical contract, not a display nicety.
func RoundDose(mg float64) float64 {
	switch {
	case mg > 10:
		return math.Round(mg/5) * 5
	case mg > 1:
		return math.Round(mg*2) / 2
	default:
		return math.Round(mg*10) / 10
	}
}

// formatMg renders a dose or percentage the way a clinician writes it:
// no trailing zeros, no exponent form.
func formatMg(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package balance

import (
	"errors"
	"fmt"

	"weight_balance/internal/models"
)

var (
	ErrNoUtilityEnvelope = errors.New("aircraft has no utility category envelope")
	ErrUnknownCategory   = errors.New("unknown category")
)

// Evaluate runs the whole pipeline for one aircraft: it accumulates the
// flight phases, picks the envelope for the category and checks takeoff
// and, when withLanding is set, landing against it.
//
// The verdict is GO only when every evaluated phase is inside the
// envelope. The category changes which polygon is consulted, never the
// weights or CGs.
func Evaluate(tpl models.Template, st models.LoadingState, cat models.Category, withLanding bool) (models.Evaluation, error) {
	if cat == "" {
		cat = models.CategoryNormal
	}
	if cat != models.CategoryNormal && cat != models.CategoryUtility {
		return models.Evaluation{}, fmt.Errorf("%w: %q", ErrUnknownCategory, string(cat))
	}
	env, ok := tpl.EnvelopeFor(cat)
	if !ok {
		if cat == models.CategoryUtility {
			return models.Evaluation{}, ErrNoUtilityEnvelope
		}
		return models.Evaluation{}, fmt.Errorf("aircraft %s has no normal category envelope", tpl.ID)
	}

	ph := ComputeFlightPhases(tpl, st)

	ev := models.Evaluation{
		AircraftID: tpl.ID,
		Category:   cat,
		Envelope:   env,
		Phases:     ph,
		MaxGross:   MaxGross(env),
		Takeoff:    AnalyzeEnvelope(ph.Takeoff.Point(), env),
	}
	if ev.MaxGross > 0 {
		ev.LoadPercent = clamp(ph.Takeoff.Weight/ev.MaxGross*100, 0, 100)
	}

	if withLanding {
		landing := AnalyzeEnvelope(ph.Landing.Point(), env)
		ev.Landing = &landing
	}

	ev.Verdict = FlightVerdict(ev.Takeoff, ev.Landing)
	return ev, nil
}

// FlightVerdict is GO iff takeoff is inside and, when a landing analysis
// is given, landing is inside too.
func FlightVerdict(takeoff models.EnvelopeAnalysis, landing *models.EnvelopeAnalysis) models.Verdict {
	if !takeoff.Inside {
		return models.VerdictNoGo
	}
	if landing != nil && !landing.Inside {
		return models.VerdictNoGo
	}
	return models.VerdictGo
}

package balance

import (
	"fmt"
	"math"
	"strconv"

	"weight_balance/internal/models"
)

// PointInEnvelope reports whether p lies inside env using the even-odd
// rule: a ray is cast from p toward increasing CG and every edge it
// crosses toggles the result. An edge counts when exactly one of its
// endpoints lies strictly above p's weight, so a shared vertex is only
// counted once. Points exactly on the top edge are outside.
func PointInEnvelope(p models.EnvelopePoint, env models.Envelope) bool {
	inside := false
	n := len(env)
	for i := 0; i < n; i++ {
		p0, p1 := env[i], env[(i+1)%n]
		if (p0.Weight > p.Weight) != (p1.Weight > p.Weight) {
			cg := p0.CG + (p.Weight-p0.Weight)*(p1.CG-p0.CG)/(p1.Weight-p0.Weight)
			if cg > p.CG {
				inside = !inside
			}
		}
	}
	return inside
}

// MaxGross returns the largest weight of any envelope vertex, or 0 for an
// empty envelope.
func MaxGross(env models.Envelope) float64 {
	if len(env) == 0 {
		return 0
	}
	mg := env[0].Weight
	for _, p := range env[1:] {
		mg = max(mg, p.Weight)
	}
	return mg
}

// CGLimitsAtWeight intersects the envelope boundary with the horizontal
// line at the given weight and returns the forward (smallest) and aft
// (largest) crossing. It returns false when the boundary is crossed fewer
// than twice, i.e. the envelope has no extent at that weight.
func CGLimitsAtWeight(weight float64, env models.Envelope) (models.CGLimits, bool) {
	var cgs []float64
	n := len(env)
	for i := 0; i < n; i++ {
		p1, p2 := env[i], env[(i+1)%n]
		if (p1.Weight <= weight && p2.Weight > weight) || (p1.Weight > weight && p2.Weight <= weight) {
			cgs = append(cgs, p1.CG+(weight-p1.Weight)*(p2.CG-p1.CG)/(p2.Weight-p1.Weight))
		}
	}
	if len(cgs) < 2 {
		return models.CGLimits{}, false
	}

	lim := models.CGLimits{Min: cgs[0], Max: cgs[0]}
	for _, cg := range cgs[1:] {
		lim.Min = min(lim.Min, cg)
		lim.Max = max(lim.Max, cg)
	}
	return lim, true
}

// AnalyzeEnvelope classifies p against env. Inside is decided by
// PointInEnvelope alone; the weight-slice limits only explain a failure
// and never override the containment result.
func AnalyzeEnvelope(p models.EnvelopePoint, env models.Envelope) models.EnvelopeAnalysis {
	a := models.EnvelopeAnalysis{MaxGross: MaxGross(env)}

	limits, ok := CGLimitsAtWeight(p.Weight, env)
	if ok {
		a.Limits = &limits
	}

	if PointInEnvelope(p, env) {
		a.Inside = true
		return a
	}

	switch {
	case len(env) > 0 && p.Weight > a.MaxGross:
		a.Limit, a.Exceedance = models.LimitMaxGross, p.Weight-a.MaxGross
	case !ok:
		a.Limit = models.LimitOutside
	case p.CG < limits.Min:
		a.Limit, a.Exceedance = models.LimitForward, limits.Min-p.CG
	case p.CG > limits.Max:
		a.Limit, a.Exceedance = models.LimitAft, p.CG-limits.Max
	default:
		// Non-convex envelope: inside the slice, outside the polygon.
		a.Limit = models.LimitOutside
	}
	a.Diagnostic = Diagnostic(a.Limit, a.Exceedance)

	return a
}

// Diagnostic renders the operator-facing text for a violated limit.
func Diagnostic(limit models.LimitKind, amount float64) string {
	switch limit {
	case models.LimitNone:
		return ""
	case models.LimitMaxGross:
		return "over max gross by " + formatAmount(amount)
	case models.LimitForward:
		return "forward limit exceeded by " + formatAmount(amount)
	case models.LimitAft:
		return "aft limit exceeded by " + formatAmount(amount)
	case models.LimitOutside:
		return "outside envelope"
	default:
		return fmt.Sprintf("unknown limit %q", string(limit))
	}
}

// formatAmount rounds to a tenth and drops trailing zeros.
func formatAmount(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}

package balance

import (
	"fmt"
	"math"
	"strings"

	"weight_balance/internal/models"
)

// EnvelopeError lists everything wrong with an envelope polygon.
type EnvelopeError struct {
	Problems []string
}

func (e *EnvelopeError) Error() string {
	return "invalid envelope: " + strings.Join(e.Problems, "; ")
}

// ValidateEnvelope checks that env is usable for containment tests: finite
// coordinates, at least three distinct vertices, no repeated consecutive
// vertices, non-zero area and no self-intersection. A trailing vertex that
// repeats the first one is accepted. It returns nil or an *EnvelopeError.
func ValidateEnvelope(env models.Envelope) error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	for i, p := range env {
		if !finite(p.CG) || !finite(p.Weight) {
			addf("vertex %d has a non-finite coordinate", i)
		}
	}
	if len(problems) > 0 {
		return &EnvelopeError{Problems: problems}
	}

	pts := openRing(env)
	if len(pts) < 3 {
		addf("need at least 3 distinct vertices, have %d", len(pts))
		return &EnvelopeError{Problems: problems}
	}

	n := len(pts)
	for i := 0; i < n; i++ {
		if pts[i] == pts[(i+1)%n] {
			addf("vertex %d repeats vertex %d", (i+1)%n, i)
		}
	}
	if len(problems) > 0 {
		return &EnvelopeError{Problems: problems}
	}

	if signedArea(pts) == 0 {
		addf("polygon has zero area")
	}

	for i := 0; i < n; i++ {
		a0, a1 := pts[i], pts[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				// Edges n-1 and 0 share vertex 0.
				continue
			}
			b0, b1 := pts[j], pts[(j+1)%n]
			if segmentsIntersect(a0, a1, b0, b1) {
				addf("edge %d-%d intersects edge %d-%d", i, (i+1)%n, j, (j+1)%n)
			}
		}
	}

	if len(problems) > 0 {
		return &EnvelopeError{Problems: problems}
	}
	return nil
}

// openRing drops a trailing vertex equal to the first one.
func openRing(env models.Envelope) models.Envelope {
	if len(env) > 1 && env[0] == env[len(env)-1] {
		return env[:len(env)-1]
	}
	return env
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// signedArea is the shoelace area in the (cg, weight) plane.
func signedArea(pts models.Envelope) float64 {
	var a float64
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		a += p.CG*q.Weight - q.CG*p.Weight
	}
	return a / 2
}

// orientation returns >0 when (a, b, c) turn counter-clockwise, <0 for
// clockwise and 0 when collinear.
func orientation(a, b, c models.EnvelopePoint) float64 {
	return (b.CG-a.CG)*(c.Weight-a.Weight) - (b.Weight-a.Weight)*(c.CG-a.CG)
}

func onSegment(a, b, p models.EnvelopePoint) bool {
	return min(a.CG, b.CG) <= p.CG && p.CG <= max(a.CG, b.CG) &&
		min(a.Weight, b.Weight) <= p.Weight && p.Weight <= max(a.Weight, b.Weight)
}

// segmentsIntersect reports whether the closed segments p1-p2 and p3-p4
// touch or cross, including collinear overlap.
func segmentsIntersect(p1, p2, p3, p4 models.EnvelopePoint) bool {
	d1 := orientation(p3, p4, p1)
	d2 := orientation(p3, p4, p2)
	d3 := orientation(p1, p2, p3)
	d4 := orientation(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	return (d1 == 0 && onSegment(p3, p4, p1)) ||
		(d2 == 0 && onSegment(p3, p4, p2)) ||
		(d3 == 0 && onSegment(p1, p2, p3)) ||
		(d4 == 0 && onSegment(p1, p2, p4))
}

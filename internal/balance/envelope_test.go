package balance

import (
	"testing"

	"weight_balance/internal/models"
)

func rectangle() models.Envelope {
	return models.Envelope{
		{CG: 30, Weight: 1000},
		{CG: 30, Weight: 2000},
		{CG: 40, Weight: 2000},
		{CG: 40, Weight: 1000},
	}
}

func TestPointInEnvelope(t *testing.T) {
	tests := []struct {
		name string
		p    models.EnvelopePoint
		want bool
	}{
		{"center", models.EnvelopePoint{CG: 35, Weight: 1500}, true},
		{"forward of box", models.EnvelopePoint{CG: 25, Weight: 1500}, false},
		{"aft of box", models.EnvelopePoint{CG: 45, Weight: 1500}, false},
		{"above box", models.EnvelopePoint{CG: 35, Weight: 2500}, false},
		{"below box", models.EnvelopePoint{CG: 35, Weight: 500}, false},
		{"on top edge", models.EnvelopePoint{CG: 35, Weight: 2000}, false},
		{"on bottom edge", models.EnvelopePoint{CG: 35, Weight: 1000}, true},
		{"at vertex weight, inside cg", models.EnvelopePoint{CG: 31, Weight: 1000}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointInEnvelope(tt.p, rectangle()); got != tt.want {
				t.Errorf("PointInEnvelope(%+v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestPointInEnvelopeClosedRing(t *testing.T) {
	env := append(rectangle(), rectangle()[0])
	for _, p := range []models.EnvelopePoint{{CG: 35, Weight: 1500}, {CG: 25, Weight: 1500}, {CG: 39.9, Weight: 1999}} {
		if PointInEnvelope(p, env) != PointInEnvelope(p, rectangle()) {
			t.Errorf("closing vertex changed the result for %+v", p)
		}
	}
}

func TestPointInEnvelopeVertexCrossing(t *testing.T) {
	// Diamond whose left and right vertices sit exactly at weight 1500.
	env := models.Envelope{
		{CG: 35, Weight: 1000},
		{CG: 30, Weight: 1500},
		{CG: 35, Weight: 2000},
		{CG: 40, Weight: 1500},
	}
	if !PointInEnvelope(models.EnvelopePoint{CG: 35, Weight: 1500}, env) {
		t.Errorf("center of diamond should be inside")
	}
	if PointInEnvelope(models.EnvelopePoint{CG: 25, Weight: 1500}, env) {
		t.Errorf("point level with the left vertex should be outside")
	}
}

func TestPointInEnvelopeDegenerate(t *testing.T) {
	p := models.EnvelopePoint{CG: 35, Weight: 1500}
	if PointInEnvelope(p, nil) {
		t.Errorf("empty envelope should contain nothing")
	}
	line := models.Envelope{{CG: 30, Weight: 1000}, {CG: 40, Weight: 2000}}
	if PointInEnvelope(p, line) {
		t.Errorf("two-vertex envelope should contain nothing")
	}
}

func TestCGLimitsAtWeight(t *testing.T) {
	lim, ok := CGLimitsAtWeight(1500, rectangle())
	if !ok || lim.Min != 30 || lim.Max != 40 {
		t.Fatalf("limits at 1500 = %+v, %v; want 30..40", lim, ok)
	}

	if _, ok := CGLimitsAtWeight(2500, rectangle()); ok {
		t.Errorf("limits above the envelope should be undefined")
	}
	if _, ok := CGLimitsAtWeight(500, rectangle()); ok {
		t.Errorf("limits below the envelope should be undefined")
	}

	// Sloped forward edge of the 172S: 35 @ 2200 to 41 @ 2550.
	lim, ok = CGLimitsAtWeight(2374, c172s().Envelope)
	if !ok {
		t.Fatalf("limits at 2374 undefined")
	}
	want := 35 + (2374-2200)*(41-35)/(2550-2200.0)
	if !near(lim.Min, want) || lim.Max != 47.3 {
		t.Errorf("limits at 2374 = %+v, want %v..47.3", lim, want)
	}
}

func TestMaxGross(t *testing.T) {
	if got := MaxGross(rectangle()); got != 2000 {
		t.Errorf("MaxGross(rectangle) = %v, want 2000", got)
	}
	if got := MaxGross(c172s().Envelope); got != 2550 {
		t.Errorf("MaxGross(c172s) = %v, want 2550", got)
	}
	if got := MaxGross(c172s().UtilityEnvelope); got != 2200 {
		t.Errorf("MaxGross(c172s utility) = %v, want 2200", got)
	}
	if got := MaxGross(nil); got != 0 {
		t.Errorf("MaxGross(nil) = %v, want 0", got)
	}
}

func TestAnalyzeEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		p          models.EnvelopePoint
		inside     bool
		limit      models.LimitKind
		diagnostic string
	}{
		{"inside", models.EnvelopePoint{CG: 35, Weight: 1500}, true, models.LimitNone, ""},
		{"forward", models.EnvelopePoint{CG: 25, Weight: 1500}, false, models.LimitForward, "forward limit exceeded by 5"},
		{"aft", models.EnvelopePoint{CG: 42.26, Weight: 1500}, false, models.LimitAft, "aft limit exceeded by 2.3"},
		{"over max gross", models.EnvelopePoint{CG: 35, Weight: 2500}, false, models.LimitMaxGross, "over max gross by 500"},
		{"below envelope", models.EnvelopePoint{CG: 35, Weight: 500}, false, models.LimitOutside, "outside envelope"},
		{"on top edge", models.EnvelopePoint{CG: 35, Weight: 2000}, false, models.LimitOutside, "outside envelope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AnalyzeEnvelope(tt.p, rectangle())
			if a.Inside != tt.inside {
				t.Fatalf("Inside = %v, want %v", a.Inside, tt.inside)
			}
			if a.Limit != tt.limit {
				t.Errorf("Limit = %q, want %q", a.Limit, tt.limit)
			}
			if a.Diagnostic != tt.diagnostic {
				t.Errorf("Diagnostic = %q, want %q", a.Diagnostic, tt.diagnostic)
			}
			if a.MaxGross != 2000 {
				t.Errorf("MaxGross = %v, want 2000", a.MaxGross)
			}
		})
	}
}

func TestAnalyzeEnvelopeAgreesWithContainment(t *testing.T) {
	env := c172s().Envelope
	for w := 1400.0; w <= 2700; w += 25 {
		for cg := 33.0; cg <= 49; cg += 0.25 {
			p := models.EnvelopePoint{CG: cg, Weight: w}
			a := AnalyzeEnvelope(p, env)
			if a.Inside != PointInEnvelope(p, env) {
				t.Fatalf("AnalyzeEnvelope(%+v).Inside = %v disagrees with PointInEnvelope", p, a.Inside)
			}
			if a.Inside && a.Diagnostic != "" {
				t.Fatalf("inside point %+v has diagnostic %q", p, a.Diagnostic)
			}
			if !a.Inside && a.Diagnostic == "" {
				t.Fatalf("outside point %+v has no diagnostic", p)
			}
		}
	}
}

func TestAnalyzeEnvelopeNonConvex(t *testing.T) {
	// U shape: the notch between cg 33 and 37 above weight 1500 is outside
	// the polygon but inside the slice limits.
	env := models.Envelope{
		{CG: 30, Weight: 1000},
		{CG: 30, Weight: 2000},
		{CG: 33, Weight: 2000},
		{CG: 33, Weight: 1500},
		{CG: 37, Weight: 1500},
		{CG: 37, Weight: 2000},
		{CG: 40, Weight: 2000},
		{CG: 40, Weight: 1000},
	}
	a := AnalyzeEnvelope(models.EnvelopePoint{CG: 35, Weight: 1800}, env)
	if a.Inside {
		t.Fatalf("point in the notch should be outside")
	}
	if a.Limit != models.LimitOutside || a.Diagnostic != "outside envelope" {
		t.Errorf("notch analysis = %q/%q, want outside envelope", a.Limit, a.Diagnostic)
	}
	if a.Limits == nil || a.Limits.Min != 30 || a.Limits.Max != 40 {
		t.Errorf("notch limits = %+v, want 30..40", a.Limits)
	}
}

func TestDiagnostic(t *testing.T) {
	tests := []struct {
		limit  models.LimitKind
		amount float64
		want   string
	}{
		{models.LimitNone, 0, ""},
		{models.LimitMaxGross, 174, "over max gross by 174"},
		{models.LimitMaxGross, 12.04, "over max gross by 12"},
		{models.LimitForward, 0.35, "forward limit exceeded by 0.4"},
		{models.LimitAft, 1.25, "aft limit exceeded by 1.3"},
		{models.LimitOutside, 0, "outside envelope"},
	}
	for _, tt := range tests {
		if got := Diagnostic(tt.limit, tt.amount); got != tt.want {
			t.Errorf("Diagnostic(%q, %v) = %q, want %q", tt.limit, tt.amount, got, tt.want)
		}
	}
}

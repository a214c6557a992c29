package balance

import (
	"errors"
	"testing"

	"weight_balance/internal/models"
)

func categorySwitchLoad() models.LoadingState {
	return models.LoadingState{
		Weights:    map[string]float64{"frontSeat": 340, "rearSeat": 200, "fuel": 30},
		Fuel:       &models.FuelPlan{Taxi: 1.5},
		UseGallons: true,
	}
}

func TestEvaluateCategorySwitch(t *testing.T) {
	tpl := c172s()
	st := categorySwitchLoad()

	normal, err := Evaluate(tpl, st, models.CategoryNormal, false)
	if err != nil {
		t.Fatalf("normal: %v", err)
	}
	if normal.Phases.Takeoff.Weight != 2374 {
		t.Fatalf("takeoff weight = %v, want 2374", normal.Phases.Takeoff.Weight)
	}
	if !normal.Takeoff.Inside || normal.Verdict != models.VerdictGo {
		t.Errorf("normal: inside=%v verdict=%s, want inside GO (%s)", normal.Takeoff.Inside, normal.Verdict, normal.Takeoff.Diagnostic)
	}
	if normal.MaxGross != 2550 {
		t.Errorf("normal max gross = %v, want 2550", normal.MaxGross)
	}

	utility, err := Evaluate(tpl, st, models.CategoryUtility, false)
	if err != nil {
		t.Fatalf("utility: %v", err)
	}
	if utility.Takeoff.Inside || utility.Verdict != models.VerdictNoGo {
		t.Errorf("utility: inside=%v verdict=%s, want outside NO-GO", utility.Takeoff.Inside, utility.Verdict)
	}
	if utility.Takeoff.Diagnostic != "over max gross by 174" {
		t.Errorf("utility diagnostic = %q, want %q", utility.Takeoff.Diagnostic, "over max gross by 174")
	}
	if utility.LoadPercent != 100 {
		t.Errorf("utility load percent = %v, want clamped to 100", utility.LoadPercent)
	}

	if normal.Phases.Takeoff != utility.Phases.Takeoff {
		t.Errorf("category changed the takeoff phase: %+v vs %+v", normal.Phases.Takeoff, utility.Phases.Takeoff)
	}
}

func TestEvaluateDefaultsToNormal(t *testing.T) {
	ev, err := Evaluate(c172s(), categorySwitchLoad(), "", false)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Category != models.CategoryNormal {
		t.Errorf("category = %q, want normal", ev.Category)
	}
}

func TestEvaluateCategoryErrors(t *testing.T) {
	tpl := c172s()
	tpl.UtilityEnvelope = nil

	if _, err := Evaluate(tpl, categorySwitchLoad(), models.CategoryUtility, false); !errors.Is(err, ErrNoUtilityEnvelope) {
		t.Errorf("missing utility envelope: err = %v, want ErrNoUtilityEnvelope", err)
	}
	if _, err := Evaluate(tpl, categorySwitchLoad(), "aerobatic", false); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("unknown category: err = %v, want ErrUnknownCategory", err)
	}
}

func TestEvaluateLanding(t *testing.T) {
	tpl := c172s()
	st := models.LoadingState{
		Weights:    map[string]float64{"frontSeat": 340, "fuel": 40},
		Fuel:       &models.FuelPlan{Taxi: 1.5, Trip: 20, Burn: 8},
		UseGallons: true,
	}

	ev, err := Evaluate(tpl, st, models.CategoryNormal, true)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Landing == nil {
		t.Fatalf("landing analysis missing")
	}
	if ev.Phases.Landing.Weight != ev.Phases.Takeoff.Weight-120 {
		t.Errorf("landing weight = %v, want takeoff - 120", ev.Phases.Landing.Weight)
	}
	if ev.Verdict != models.VerdictGo {
		t.Errorf("verdict = %s, want GO", ev.Verdict)
	}

	noLanding, err := Evaluate(tpl, st, models.CategoryNormal, false)
	if err != nil {
		t.Fatal(err)
	}
	if noLanding.Landing != nil {
		t.Errorf("landing analyzed without being requested")
	}
}

func TestFlightVerdict(t *testing.T) {
	in := models.EnvelopeAnalysis{Inside: true}
	out := models.EnvelopeAnalysis{Inside: false}

	tests := []struct {
		name    string
		takeoff models.EnvelopeAnalysis
		landing *models.EnvelopeAnalysis
		want    models.Verdict
	}{
		{"takeoff only, inside", in, nil, models.VerdictGo},
		{"takeoff only, outside", out, nil, models.VerdictNoGo},
		{"both inside", in, &in, models.VerdictGo},
		{"landing outside", in, &out, models.VerdictNoGo},
		{"takeoff outside", out, &in, models.VerdictNoGo},
	}
	for _, tt := range tests {
		if got := FlightVerdict(tt.takeoff, tt.landing); got != tt.want {
			t.Errorf("%s: verdict = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	tpl := c172s()
	st := categorySwitchLoad()
	a, err := Evaluate(tpl, st, models.CategoryNormal, true)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Evaluate(tpl, st, models.CategoryNormal, true)
	if err != nil {
		t.Fatal(err)
	}
	if a.Phases.Takeoff != b.Phases.Takeoff || a.Phases.Landing != b.Phases.Landing || a.Verdict != b.Verdict {
		t.Errorf("repeated evaluation differs: %+v vs %+v", a, b)
	}
	if st.Weights["fuel"] != 30 {
		t.Errorf("evaluation mutated the loading state: %v", st.Weights)
	}
}

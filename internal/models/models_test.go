package models

import "testing"

func sample() Template {
	return Template{
		ID:          "box",
		EmptyWeight: 1000,
		EmptyArm:    35,
		Stations: []Station{
			{ID: "seat", Name: "Seat", Arm: 37, Kind: StationStandard},
			{ID: "fuel", Name: "Fuel", Arm: 48, Kind: StationFuel},
		},
		Envelope: Envelope{{CG: 30, Weight: 1000}, {CG: 30, Weight: 2000}, {CG: 40, Weight: 2000}, {CG: 40, Weight: 1000}},
	}
}

func TestEnvelopeFor(t *testing.T) {
	tpl := sample()
	if env, ok := tpl.EnvelopeFor(""); !ok || len(env) != 4 {
		t.Errorf("empty category should select normal")
	}
	if _, ok := tpl.EnvelopeFor(CategoryUtility); ok {
		t.Errorf("template without utility envelope reported one")
	}
	if _, ok := tpl.EnvelopeFor("aerobatic"); ok {
		t.Errorf("unknown category reported an envelope")
	}
}

func TestSavedResolve(t *testing.T) {
	saved := SavedAircraft{
		Template:     sample(),
		Registration: "N1",
		ArmOverrides: map[string]float64{"fuel": 46, "gone": 10},
	}
	var a Aircraft = saved
	tpl := a.Resolve()

	if fuel, _ := tpl.FuelStation(); fuel.Arm != 46 {
		t.Errorf("resolved fuel arm = %v, want 46", fuel.Arm)
	}
	if saved.Stations[1].Arm != 48 {
		t.Errorf("Resolve modified the saved snapshot")
	}
	tpl.Envelope[0].CG = 0
	if saved.Envelope[0].CG != 30 {
		t.Errorf("resolved template shares the saved envelope")
	}
}

func TestWithArmOverrides(t *testing.T) {
	st := LoadingState{ArmOverrides: map[string]float64{"seat": 38}}
	merged := st.WithArmOverrides(map[string]float64{"seat": 36, "fuel": 47})

	if merged.ArmOverrides["seat"] != 38 || merged.ArmOverrides["fuel"] != 47 {
		t.Errorf("merged = %v", merged.ArmOverrides)
	}
	if _, ok := st.ArmOverrides["fuel"]; ok {
		t.Errorf("WithArmOverrides modified the receiver")
	}

	empty := LoadingState{}.WithArmOverrides(nil)
	if empty.ArmOverrides == nil || len(empty.ArmOverrides) != 0 {
		t.Errorf("nil base gave %v", empty.ArmOverrides)
	}
}

func TestSelectFuelPlan(t *testing.T) {
	explicit := FuelPlan{Taxi: 2, Trip: 10, Burn: 9}
	embedded := FuelPlan{Trip: 5}
	zero := FuelPlan{}

	tests := []struct {
		name     string
		explicit *FuelPlan
		embedded *FuelPlan
		want     FuelPlan
	}{
		{"explicit wins", &explicit, &embedded, explicit},
		{"embedded", nil, &embedded, embedded},
		{"zero embedded is kept", nil, &zero, zero},
		{"defaults", nil, nil, DefaultFuelPlan()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectFuelPlan(tt.explicit, tt.embedded); got != tt.want {
				t.Errorf("SelectFuelPlan = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoadingPlan(t *testing.T) {
	if got := (LoadingState{}).Plan(); got != (FuelPlan{}) {
		t.Errorf("missing plan = %+v, want empty", got)
	}
	p := FuelPlan{Taxi: 1}
	if got := (LoadingState{Fuel: &p}).Plan(); got != p {
		t.Errorf("Plan = %+v, want %+v", got, p)
	}
}

package models

import (
	"maps"

	"github.com/brunoga/deep"
)

// StationKind tags how a loading station is treated by the accumulator.
type StationKind string

const (
	StationStandard StationKind = "standard"
	StationFuel     StationKind = "fuel"
	StationAdHoc    StationKind = "ad_hoc"
)

type Station struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Arm       float64     `json:"arm"`
	MaxWeight float64     `json:"max_weight,omitempty"`
	Kind      StationKind `json:"kind"`
}

func (s Station) IsFuel() bool {
	return s.Kind == StationFuel
}

type EnvelopePoint struct {
	CG     float64 `json:"cg"`
	Weight float64 `json:"weight"`
}

// Envelope is a CG-vs-weight polygon. The vertex list is implicitly
// closed; a trailing copy of the first vertex is allowed.
type Envelope []EnvelopePoint

type Category string

const (
	CategoryNormal  Category = "normal"
	CategoryUtility Category = "utility"
)

// Template is a factory aircraft from the catalog.
type Template struct {
	ID              string    `json:"id"`
	Make            string    `json:"make"`
	Model           string    `json:"model"`
	EmptyWeight     float64   `json:"empty_weight"`
	EmptyArm        float64   `json:"empty_arm"`
	Stations        []Station `json:"stations"`
	Envelope        Envelope  `json:"envelope"`
	UtilityEnvelope Envelope  `json:"utility_envelope,omitempty"`
}

// FuelStation returns the station tagged as fuel, if any.
func (t Template) FuelStation() (Station, bool) {
	for _, s := range t.Stations {
		if s.IsFuel() {
			return s, true
		}
	}
	return Station{}, false
}

// EnvelopeFor returns the polygon certified for the given category.
func (t Template) EnvelopeFor(c Category) (Envelope, bool) {
	switch c {
	case CategoryNormal, "":
		return t.Envelope, len(t.Envelope) > 0
	case CategoryUtility:
		return t.UtilityEnvelope, len(t.UtilityEnvelope) > 0
	default:
		return nil, false
	}
}

// SavedAircraft is a user's customized airframe: a snapshot of the base
// template with its own registration, empty weight/arm and station arms.
type SavedAircraft struct {
	Template
	BaseID       string             `json:"base_id,omitempty"`
	Registration string             `json:"registration"`
	ArmOverrides map[string]float64 `json:"arm_overrides,omitempty"`
}

// Aircraft is either a catalog Template or a SavedAircraft. Resolve
// returns the template the calculation should run against.
type Aircraft interface {
	Resolve() Template
	aircraft()
}

func (Template) aircraft()      {}
func (SavedAircraft) aircraft() {}

func (t Template) Resolve() Template {
	return t
}

// Resolve returns a deep copy of the saved snapshot with the saved arm
// overrides folded into the station arms. The receiver is not modified.
func (s SavedAircraft) Resolve() Template {
	t, err := deep.Copy(s.Template)
	if err != nil {
		// Template holds only plain values and slices of them.
		panic(err)
	}
	for i, st := range t.Stations {
		if arm, ok := s.ArmOverrides[st.ID]; ok {
			t.Stations[i].Arm = arm
		}
	}
	return t
}

// AdHocStation is a user-added item with no catalog counterpart. Its
// weight is always in pounds.
type AdHocStation struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Arm    float64 `json:"arm"`
}

// FuelPlan is expressed in gallons (taxi, trip) and gallons/hour (burn).
type FuelPlan struct {
	Taxi float64 `json:"taxi"`
	Trip float64 `json:"trip"`
	Burn float64 `json:"burn"`
}

func DefaultFuelPlan() FuelPlan {
	return FuelPlan{Taxi: 1.5}
}

// SelectFuelPlan picks the explicit plan, then the plan carried by the
// loading, then the defaults. A plan that is present but all zero is kept.
func SelectFuelPlan(explicit, embedded *FuelPlan) FuelPlan {
	switch {
	case explicit != nil:
		return *explicit
	case embedded != nil:
		return *embedded
	}
	return DefaultFuelPlan()
}

// LoadingState is the per-calculation user input.
type LoadingState struct {
	Weights      map[string]float64 `json:"weights"`
	ArmOverrides map[string]float64 `json:"arm_overrides,omitempty"`
	AdHoc        []AdHocStation     `json:"ad_hoc,omitempty"`
	Fuel         *FuelPlan          `json:"fuel,omitempty"`
	UseGallons   bool               `json:"use_gallons"`
}

// Plan returns the loading's fuel plan, or an empty plan when none
// was given.
func (st LoadingState) Plan() FuelPlan {
	if st.Fuel == nil {
		return FuelPlan{}
	}
	return *st.Fuel
}

// WithArmOverrides returns a copy of st whose arm overrides are layered
// on top of base; entries already in st win.
func (st LoadingState) WithArmOverrides(base map[string]float64) LoadingState {
	merged := maps.Clone(base)
	if merged == nil {
		merged = make(map[string]float64, len(st.ArmOverrides))
	}
	maps.Copy(merged, st.ArmOverrides)
	st.ArmOverrides = merged
	return st
}

type Unit string

const (
	UnitPounds  Unit = "lbs"
	UnitGallons Unit = "gal"
)

type PhaseResult struct {
	Weight    float64 `json:"weight"`
	Moment    float64 `json:"moment"`
	CG        float64 `json:"cg"`
	CGDefined bool    `json:"cg_defined"`
}

func (p PhaseResult) Point() EnvelopePoint {
	return EnvelopePoint{CG: p.CG, Weight: p.Weight}
}

// LineItem is one row of the loading manifest.
type LineItem struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Kind      StationKind `json:"kind,omitempty"`
	Entered   float64     `json:"entered"`
	Unit      Unit        `json:"unit"`
	Weight    float64     `json:"weight"`
	Arm       float64     `json:"arm"`
	Moment    float64     `json:"moment"`
	MaxWeight float64     `json:"max_weight,omitempty"`
	OverMax   bool        `json:"over_max,omitempty"`
}

type Endurance struct {
	Hours         int     `json:"hours"`
	Minutes       int     `json:"minutes"`
	UsableGallons float64 `json:"usable_gallons"`
}

type FlightPhases struct {
	Empty           LineItem    `json:"empty"`
	Stations        []LineItem  `json:"stations"`
	Ramp            PhaseResult `json:"ramp"`
	Takeoff         PhaseResult `json:"takeoff"`
	Landing         PhaseResult `json:"landing"`
	FuelArm         float64     `json:"fuel_arm"`
	TotalFuelWeight float64     `json:"total_fuel_weight"`
	TaxiFuelWeight  float64     `json:"taxi_fuel_weight"`
	TaxiMoment      float64     `json:"taxi_moment"`
	TripFuelWeight  float64     `json:"trip_fuel_weight"`
	TripMoment      float64     `json:"trip_moment"`
	Endurance       *Endurance  `json:"endurance"`
}

type LimitKind string

const (
	LimitNone     LimitKind = ""
	LimitMaxGross LimitKind = "max_gross"
	LimitForward  LimitKind = "forward"
	LimitAft      LimitKind = "aft"
	LimitOutside  LimitKind = "outside"
)

// CGLimits are the forward (Min) and aft (Max) CG limits at one weight.
type CGLimits struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type EnvelopeAnalysis struct {
	Inside     bool      `json:"inside"`
	Limit      LimitKind `json:"limit,omitempty"`
	Exceedance float64   `json:"exceedance,omitempty"`
	Diagnostic string    `json:"diagnostic,omitempty"`
	MaxGross   float64   `json:"max_gross"`
	Limits     *CGLimits `json:"limits,omitempty"`
}

type Verdict string

const (
	VerdictGo   Verdict = "GO"
	VerdictNoGo Verdict = "NO-GO"
)

type Evaluation struct {
	AircraftID  string            `json:"aircraft_id"`
	Category    Category          `json:"category"`
	Envelope    Envelope          `json:"envelope"`
	Phases      FlightPhases      `json:"phases"`
	MaxGross    float64           `json:"max_gross"`
	LoadPercent float64           `json:"load_percent"`
	Takeoff     EnvelopeAnalysis  `json:"takeoff"`
	Landing     *EnvelopeAnalysis `json:"landing,omitempty"`
	Verdict     Verdict           `json:"verdict"`
}

package balance

import (
	"math"

	"weight_balance/internal/models"
)

// LbsPerGallon is the fixed fuel density used for every gallon/pound
// conversion.
const LbsPerGallon = 6.0

// ComputeFlightPhases accumulates weight and moment from the empty
// aircraft, the catalog stations and the ad-hoc stations, then removes
// taxi and trip fuel at the fuel arm to produce ramp, takeoff and landing
// conditions. It never fails: negative or zero weights are carried through
// as numbers and left for the envelope analysis to flag.
func ComputeFlightPhases(tpl models.Template, st models.LoadingState) models.FlightPhases {
	var ph models.FlightPhases

	weight := tpl.EmptyWeight
	moment := tpl.EmptyWeight * tpl.EmptyArm
	ph.Empty = models.LineItem{
		ID:      "empty",
		Name:    "Basic Empty Weight",
		Entered: tpl.EmptyWeight,
		Unit:    models.UnitPounds,
		Weight:  tpl.EmptyWeight,
		Arm:     tpl.EmptyArm,
		Moment:  moment,
	}

	ph.Stations = make([]models.LineItem, 0, len(tpl.Stations)+len(st.AdHoc))
	for _, s := range tpl.Stations {
		entered := st.Weights[s.ID]
		w, unit := entered, models.UnitPounds
		if s.IsFuel() && st.UseGallons {
			w, unit = entered*LbsPerGallon, models.UnitGallons
		}

		arm := s.Arm
		if o, ok := st.ArmOverrides[s.ID]; ok {
			arm = o
		}

		m := w * arm
		weight += w
		moment += m

		if s.IsFuel() {
			ph.FuelArm = arm
			ph.TotalFuelWeight = w
		}

		ph.Stations = append(ph.Stations, models.LineItem{
			ID:        s.ID,
			Name:      s.Name,
			Kind:      s.Kind,
			Entered:   entered,
			Unit:      unit,
			Weight:    w,
			Arm:       arm,
			Moment:    m,
			MaxWeight: s.MaxWeight,
			OverMax:   s.MaxWeight > 0 && w > s.MaxWeight,
		})
	}

	for _, a := range st.AdHoc {
		m := a.Weight * a.Arm
		weight += a.Weight
		moment += m
		ph.Stations = append(ph.Stations, models.LineItem{
			ID:      a.ID,
			Name:    a.Name,
			Kind:    models.StationAdHoc,
			Entered: a.Weight,
			Unit:    models.UnitPounds,
			Weight:  a.Weight,
			Arm:     a.Arm,
			Moment:  m,
		})
	}

	ph.Ramp = phase(weight, moment)

	fuel := st.Plan()
	ph.TaxiFuelWeight = fuel.Taxi * LbsPerGallon
	ph.TaxiMoment = ph.TaxiFuelWeight * ph.FuelArm
	ph.Takeoff = phase(ph.Ramp.Weight-ph.TaxiFuelWeight, ph.Ramp.Moment-ph.TaxiMoment)

	ph.Landing = ph.Takeoff
	if fuel.Trip > 0 {
		ph.TripFuelWeight = fuel.Trip * LbsPerGallon
		ph.TripMoment = ph.TripFuelWeight * ph.FuelArm
		ph.Landing = phase(ph.Takeoff.Weight-ph.TripFuelWeight, ph.Takeoff.Moment-ph.TripMoment)
	}

	ph.Endurance = endurance(ph.TotalFuelWeight, ph.TaxiFuelWeight, fuel.Burn)

	return ph
}

func phase(weight, moment float64) models.PhaseResult {
	return models.PhaseResult{
		Weight:    weight,
		Moment:    moment,
		CG:        SafeDivide(moment, weight, 1),
		CGDefined: weight != 0,
	}
}

// endurance returns nil when there is no burn rate or no usable fuel left
// after taxi.
func endurance(totalFuelWeight, taxiFuelWeight, burn float64) *models.Endurance {
	usable := (totalFuelWeight - taxiFuelWeight) / LbsPerGallon
	if !(burn > 0 && usable > 0) {
		return nil
	}
	total := usable / burn
	if math.IsInf(total, 0) || math.IsNaN(total) {
		return nil
	}
	hours := math.Floor(total)
	return &models.Endurance{
		Hours:         int(hours),
		Minutes:       int(math.Floor((total - hours) * 60)),
		UsableGallons: usable,
	}
}

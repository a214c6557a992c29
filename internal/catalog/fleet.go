package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"weight_balance/internal/models"
)

var (
	ErrNotFleet      = errors.New("fleet data is not a JSON array")
	ErrNoValidRecord = errors.New("fleet data has no valid aircraft")
)

// FleetResult is the outcome of a fleet import: the records that passed
// and one message per record that was dropped.
type FleetResult struct {
	Aircraft []models.SavedAircraft `json:"aircraft"`
	Rejected []string               `json:"rejected,omitempty"`
}

// fleetRecord mirrors models.SavedAircraft with pointers for the fields a
// record must carry, so absent and zero can be told apart.
//
// Exports from the browser calculator use camelCase keys and call the arm
// overrides savedArmOverrides; those are read into the legacy fields and
// folded in by adoptLegacyKeys.
type fleetRecord struct {
	ID              *string            `json:"id"`
	Make            string             `json:"make"`
	Model           *string            `json:"model"`
	Registration    *string            `json:"registration"`
	BaseID          string             `json:"base_id"`
	EmptyWeight     *float64           `json:"empty_weight"`
	EmptyArm        *float64           `json:"empty_arm"`
	Stations        *[]fleetStation    `json:"stations"`
	Envelope        *[]fleetPoint      `json:"envelope"`
	UtilityEnvelope []fleetPoint       `json:"utility_envelope"`
	ArmOverrides    map[string]float64 `json:"arm_overrides"`

	LegacyEmptyWeight     *float64           `json:"emptyWeight"`
	LegacyEmptyArm        *float64           `json:"emptyArm"`
	LegacyUtilityEnvelope []fleetPoint       `json:"utilityEnvelope"`
	LegacyArmOverrides    map[string]float64 `json:"savedArmOverrides"`
}

type fleetStation struct {
	ID        *string            `json:"id"`
	Name      *string            `json:"name"`
	Arm       *float64           `json:"arm"`
	MaxWeight float64            `json:"max_weight"`
	Kind      models.StationKind `json:"kind"`

	LegacyMaxWeight float64 `json:"maxWeight"`
}

// adoptLegacyKeys fills every field the record left empty from its
// camelCase counterpart. Snake_case keys win when both are present.
func (r *fleetRecord) adoptLegacyKeys() {
	if r.EmptyWeight == nil {
		r.EmptyWeight = r.LegacyEmptyWeight
	}
	if r.EmptyArm == nil {
		r.EmptyArm = r.LegacyEmptyArm
	}
	if r.UtilityEnvelope == nil {
		r.UtilityEnvelope = r.LegacyUtilityEnvelope
	}
	if r.ArmOverrides == nil {
		r.ArmOverrides = r.LegacyArmOverrides
	}
	if r.Stations == nil {
		return
	}
	for i := range *r.Stations {
		s := &(*r.Stations)[i]
		if s.MaxWeight == 0 {
			s.MaxWeight = s.LegacyMaxWeight
		}
	}
}

type fleetPoint struct {
	CG     *float64 `json:"cg"`
	Weight *float64 `json:"weight"`
}

// ValidateFleet checks a JSON array of saved aircraft and keeps the valid
// ones. Invalid records are dropped, not repaired. It fails when data is
// not an array, or when a non-empty array has no valid record at all.
//
// Stations without a kind are tagged here: one whose id contains "fuel"
// becomes the fuel station, every other one is standard.
func ValidateFleet(data []byte) (FleetResult, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return FleetResult{}, ErrNotFleet
	}

	res := FleetResult{Aircraft: make([]models.SavedAircraft, 0, len(raw))}
	for i, msg := range raw {
		var el ErrorLogger
		el.Push(fmt.Sprintf("record %d", i))
		if sa, ok := decodeRecord(&el, msg); ok {
			res.Aircraft = append(res.Aircraft, sa)
		}
		el.Pop()
		res.Rejected = append(res.Rejected, el.Errors()...)
	}

	if len(raw) > 0 && len(res.Aircraft) == 0 {
		return res, ErrNoValidRecord
	}
	return res, nil
}

// DecodeSaved validates a single saved aircraft record the same way
// ValidateFleet validates each element of a fleet.
func DecodeSaved(data []byte) (models.SavedAircraft, error) {
	var el ErrorLogger
	el.Push("saved aircraft")
	sa, ok := decodeRecord(&el, data)
	el.Pop()
	if !ok {
		return models.SavedAircraft{}, el.Err()
	}
	return sa, nil
}

func decodeRecord(el *ErrorLogger, msg json.RawMessage) (models.SavedAircraft, bool) {
	defer el.CheckDepth(el.CurrentDepth())

	var r fleetRecord
	if err := json.Unmarshal(msg, &r); err != nil {
		el.Error(err)
		return models.SavedAircraft{}, false
	}
	r.adoptLegacyKeys()

	switch {
	case r.ID == nil:
		el.ErrorString("missing id")
	case r.Model == nil:
		el.ErrorString("missing model")
	case r.EmptyWeight == nil || r.EmptyArm == nil:
		el.ErrorString("missing empty weight or arm")
	case r.Stations == nil:
		el.ErrorString("missing stations")
	case r.Envelope == nil && r.BaseID == "":
		el.ErrorString("missing envelope")
	}
	if el.HaveErrors() {
		return models.SavedAircraft{}, false
	}

	sa := models.SavedAircraft{
		Template: models.Template{
			ID:          *r.ID,
			Make:        r.Make,
			Model:       *r.Model,
			EmptyWeight: *r.EmptyWeight,
			EmptyArm:    *r.EmptyArm,
		},
		BaseID:       r.BaseID,
		ArmOverrides: r.ArmOverrides,
	}
	if r.Registration != nil {
		sa.Registration = *r.Registration
	}

	for j, s := range *r.Stations {
		if s.ID == nil || s.Name == nil || s.Arm == nil {
			el.ErrorString("station %d: id, name and arm are required", j)
			continue
		}
		kind := s.Kind
		if kind == "" {
			kind = models.StationStandard
			if strings.Contains(strings.ToLower(*s.ID), "fuel") {
				kind = models.StationFuel
			}
		}
		sa.Stations = append(sa.Stations, models.Station{
			ID:        *s.ID,
			Name:      *s.Name,
			Arm:       *s.Arm,
			MaxWeight: s.MaxWeight,
			Kind:      kind,
		})
	}

	var ok bool
	if r.Envelope != nil {
		if sa.Envelope, ok = points(*r.Envelope); !ok {
			el.ErrorString("envelope points need cg and weight")
		}
	}
	if len(r.UtilityEnvelope) > 0 {
		if sa.UtilityEnvelope, ok = points(r.UtilityEnvelope); !ok {
			el.ErrorString("utility envelope points need cg and weight")
		}
	}
	if el.HaveErrors() {
		return models.SavedAircraft{}, false
	}

	validateStations(el, sa.Template)
	// A record without its own envelope borrows the base template's at
	// resolution time, where it is validated.
	if len(sa.Envelope) > 0 || sa.BaseID == "" {
		validateEnvelopes(el, sa.Template)
	}
	for id, arm := range sa.ArmOverrides {
		if !finite(arm) {
			el.ErrorString("arm override %s is not finite", id)
		}
	}
	if el.HaveErrors() {
		return models.SavedAircraft{}, false
	}
	return sa, true
}

func points(in []fleetPoint) (models.Envelope, bool) {
	env := make(models.Envelope, 0, len(in))
	for _, p := range in {
		if p.CG == nil || p.Weight == nil {
			return nil, false
		}
		env = append(env, models.EnvelopePoint{CG: *p.CG, Weight: *p.Weight})
	}
	return env, true
}

// LoadFleet reads a fleet file written by SaveFleet or exported by another
// tool and returns the valid records.
func LoadFleet(path string) (FleetResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FleetResult{}, err
	}
	return ValidateFleet(data)
}

// SaveFleet writes the fleet atomically.
func SaveFleet(path string, fleet []models.SavedAircraft) error {
	data, err := json.MarshalIndent(fleet, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

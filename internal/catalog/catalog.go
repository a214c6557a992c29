package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/brunoga/deep"

	"weight_balance/internal/balance"
	"weight_balance/internal/models"
)

var ErrNotFound = errors.New("aircraft not found")

// Catalog owns the read-only set of factory templates. It can be swapped
// wholesale by Reload while requests are being served.
type Catalog struct {
	mu        sync.RWMutex
	templates []models.Template
	byID      map[string]models.Template
	source    string
}

func New(list []models.Template) *Catalog {
	c := &Catalog{}
	c.SetTemplates(list)
	return c
}

// Open loads the catalog at path, or the embedded factory fleet when path
// is empty.
func Open(path string) (*Catalog, error) {
	list, err := Load(path)
	if err != nil {
		return nil, err
	}
	c := New(list)
	c.source = sourceName(path)
	return c, nil
}

func (c *Catalog) SetTemplates(list []models.Template) {
	byID := make(map[string]models.Template, len(list))
	for _, t := range list {
		byID[strings.ToLower(t.ID)] = t
	}

	c.mu.Lock()
	c.templates = list
	c.byID = byID
	c.mu.Unlock()
}

// Templates returns the templates in catalog order.
func (c *Catalog) Templates() []models.Template {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Template, len(c.templates))
	copy(out, c.templates)
	return out
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}

// Source names where the current templates came from.
func (c *Catalog) Source() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.source
}

// Lookup returns a private copy of the template with the given id. Ids are
// matched case-insensitively.
func (c *Catalog) Lookup(id string) (models.Template, error) {
	c.mu.RLock()
	t, ok := c.byID[strings.ToLower(id)]
	c.mu.RUnlock()
	if !ok {
		return models.Template{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return deep.Copy(t)
}

// Resolve turns a template or saved aircraft into the template a
// calculation runs against. A saved aircraft stored without an envelope
// borrows the envelopes of its base template.
func (c *Catalog) Resolve(a models.Aircraft) (models.Template, error) {
	tpl := a.Resolve()

	if saved, ok := a.(models.SavedAircraft); ok && len(tpl.Envelope) == 0 {
		if saved.BaseID == "" {
			return models.Template{}, fmt.Errorf("saved aircraft %s has no envelope and no base template", saved.Registration)
		}
		base, err := c.Lookup(saved.BaseID)
		if err != nil {
			return models.Template{}, err
		}
		tpl.Envelope = base.Envelope
		if len(tpl.UtilityEnvelope) == 0 {
			tpl.UtilityEnvelope = base.UtilityEnvelope
		}
	}

	var el ErrorLogger
	el.Push("aircraft " + tpl.ID)
	validateTemplate(&el, tpl)
	el.Pop()
	if err := el.Err(); err != nil {
		return models.Template{}, err
	}
	return tpl, nil
}

// Reload re-reads path and replaces the templates. On error the current
// templates are kept.
func (c *Catalog) Reload(path string) error {
	list, err := Load(path)
	if err != nil {
		return err
	}
	c.SetTemplates(list)
	c.mu.Lock()
	c.source = sourceName(path)
	c.mu.Unlock()
	return nil
}

// Load reads and validates a catalog file. An empty path selects the
// embedded factory fleet.
func Load(path string) ([]models.Template, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, err
		}
	}
	list, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sourceName(path), err)
	}
	return list, nil
}

// Parse decodes a JSON array of templates and validates every one of
// them. All problems are reported together.
func Parse(data []byte) ([]models.Template, error) {
	var list []models.Template
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.New("catalog is empty")
	}

	var el ErrorLogger
	seen := make(map[string]bool, len(list))
	for i, t := range list {
		el.Push(fmt.Sprintf("aircraft %d (%s)", i, t.ID))
		id := strings.ToLower(t.ID)
		if id == "" {
			el.ErrorString("missing id")
		} else if seen[id] {
			el.ErrorString("duplicate id")
		}
		seen[id] = true
		validateTemplate(&el, t)
		el.Pop()
	}

	if el.HaveErrors() {
		return nil, fmt.Errorf("invalid catalog:\n%s", el.String())
	}
	return list, nil
}

func validateTemplate(el *ErrorLogger, t models.Template) {
	validateStations(el, t)
	validateEnvelopes(el, t)
}

func validateStations(el *ErrorLogger, t models.Template) {
	defer el.CheckDepth(el.CurrentDepth())

	if !finite(t.EmptyWeight) || !finite(t.EmptyArm) {
		el.ErrorString("empty weight and arm must be finite")
	}

	fuel := 0
	stationIDs := make(map[string]bool, len(t.Stations))
	for _, s := range t.Stations {
		el.Push("station " + s.ID)
		switch {
		case s.ID == "":
			el.ErrorString("missing id")
		case stationIDs[s.ID]:
			el.ErrorString("duplicate id")
		}
		stationIDs[s.ID] = true

		switch s.Kind {
		case models.StationFuel:
			fuel++
		case models.StationStandard:
		default:
			el.ErrorString("invalid kind %q", string(s.Kind))
		}
		if !finite(s.Arm) || !finite(s.MaxWeight) {
			el.ErrorString("arm and max weight must be finite")
		}
		el.Pop()
	}
	if fuel > 1 {
		el.ErrorString("%d fuel stations, at most one is allowed", fuel)
	}
}

func validateEnvelopes(el *ErrorLogger, t models.Template) {
	defer el.CheckDepth(el.CurrentDepth())

	el.Push("normal envelope")
	if err := balance.ValidateEnvelope(t.Envelope); err != nil {
		el.Error(err)
	}
	el.Pop()

	if len(t.UtilityEnvelope) > 0 {
		el.Push("utility envelope")
		if err := balance.ValidateEnvelope(t.UtilityEnvelope); err != nil {
			el.Error(err)
		}
		el.Pop()
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func sourceName(path string) string {
	if path == "" {
		return "embedded catalog"
	}
	return path
}

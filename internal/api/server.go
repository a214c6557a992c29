package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"weight_balance/internal/balance"
	"weight_balance/internal/catalog"
	"weight_balance/internal/metrics"
	"weight_balance/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/handlers"
	"github.com/klauspost/compress/gzhttp"
	log "github.com/sirupsen/logrus"
)

// maxBodyBytes bounds request bodies; a fleet import is the largest
// legitimate payload.
const maxBodyBytes = 1 << 20

type Options struct {
	CORSOrigins []string
	Logger      *log.Logger
}

type Server struct {
	catalog *catalog.Catalog
	logger  *log.Logger
}

// New constructs the HTTP router wired to the aircraft catalog.
func New(cat *catalog.Catalog, opts Options) http.Handler {
	s := &Server{catalog: cat, logger: opts.Logger}
	if s.logger == nil {
		s.logger = log.StandardLogger()
	}

	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Use(s.logRequests)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/aircraft/templates", s.handleTemplates)
	r.Get("/aircraft/templates/{id}", s.handleTemplate)
	r.Post("/calculate", s.handleCalculate)
	r.Post("/envelope/analyze", s.handleAnalyze)
	r.Post("/envelope/validate", s.handleValidateEnvelope)
	r.Post("/fleet/validate", s.handleValidateFleet)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(s.logger),
		handlers.PrintRecoveryStack(true),
	)

	return gzhttp.GzipHandler(recovery(cors(r)))
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.catalog.Templates())
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.catalog.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tpl)
}

// calculateRequest selects an aircraft either by catalog id or by passing
// a saved aircraft record inline.
type calculateRequest struct {
	AircraftID string              `json:"aircraft_id"`
	Saved      json.RawMessage     `json:"saved,omitempty"`
	Loading    models.LoadingState `json:"loading"`
	Category   models.Category     `json:"category"`
	FlightPlan *models.FuelPlan    `json:"flight_plan,omitempty"`
	// EvaluateLanding defaults to true when the flight plan has trip fuel.
	EvaluateLanding *bool `json:"evaluate_landing,omitempty"`
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad request: "+err.Error())
		return
	}

	tpl, armOverrides, status, err := s.resolveAircraft(req.AircraftID, req.Saved)
	if err != nil {
		writeJSONError(w, status, err.Error())
		return
	}

	st := req.Loading.WithArmOverrides(armOverrides)
	plan := models.SelectFuelPlan(req.FlightPlan, st.Fuel)
	st.Fuel = &plan
	withLanding := plan.Trip > 0
	if req.EvaluateLanding != nil {
		withLanding = *req.EvaluateLanding
	}

	ev, err := balance.Evaluate(tpl, st, req.Category, withLanding)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	metrics.ObserveEvaluation(ev.Category, ev.Verdict)

	s.requestLogger(r).WithFields(log.Fields{
		"aircraft": ev.AircraftID,
		"category": ev.Category,
		"verdict":  ev.Verdict,
	}).Debugf("takeoff %.0f lbs @ %.2f", ev.Phases.Takeoff.Weight, ev.Phases.Takeoff.CG)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ev)
}

// resolveAircraft returns the template to evaluate and the saved arm
// overrides that sit below the request's own overrides.
func (s *Server) resolveAircraft(id string, saved json.RawMessage) (models.Template, map[string]float64, int, error) {
	switch {
	case len(saved) > 0 && string(saved) != "null":
		sa, err := catalog.DecodeSaved(saved)
		if err != nil {
			return models.Template{}, nil, http.StatusBadRequest, err
		}
		tpl, err := s.catalog.Resolve(sa)
		if err != nil {
			return models.Template{}, nil, statusFor(err), err
		}
		return tpl, sa.ArmOverrides, http.StatusOK, nil
	case id != "":
		tpl, err := s.catalog.Lookup(id)
		if err != nil {
			return models.Template{}, nil, http.StatusNotFound, err
		}
		return tpl, nil, http.StatusOK, nil
	default:
		return models.Template{}, nil, http.StatusBadRequest, errors.New("aircraft_id or saved is required")
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Point      *models.EnvelopePoint `json:"point"`
		Envelope   models.Envelope       `json:"envelope,omitempty"`
		AircraftID string                `json:"aircraft_id,omitempty"`
		Category   models.Category       `json:"category,omitempty"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad request: "+err.Error())
		return
	}
	if req.Point == nil {
		writeJSONError(w, http.StatusBadRequest, "point is required")
		return
	}

	env := req.Envelope
	switch {
	case len(env) > 0:
		if err := balance.ValidateEnvelope(env); err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
	case req.AircraftID != "":
		tpl, err := s.catalog.Lookup(req.AircraftID)
		if err != nil {
			writeJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		cat := req.Category
		if cat == "" {
			cat = models.CategoryNormal
		}
		var ok bool
		if env, ok = tpl.EnvelopeFor(cat); !ok {
			if cat == models.CategoryUtility {
				writeJSONError(w, http.StatusBadRequest, balance.ErrNoUtilityEnvelope.Error())
			} else {
				writeJSONError(w, http.StatusBadRequest, balance.ErrUnknownCategory.Error()+": "+string(cat))
			}
			return
		}
	default:
		writeJSONError(w, http.StatusBadRequest, "envelope or aircraft_id is required")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(balance.AnalyzeEnvelope(*req.Point, env))
}

func (s *Server) handleValidateEnvelope(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Envelope models.Envelope `json:"envelope"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad request: "+err.Error())
		return
	}

	resp := struct {
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors,omitempty"`
	}{Valid: true}
	if err := balance.ValidateEnvelope(req.Envelope); err != nil {
		resp.Valid = false
		var ee *balance.EnvelopeError
		if errors.As(err, &ee) {
			resp.Errors = ee.Problems
		} else {
			resp.Errors = []string{err.Error()}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleValidateFleet(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := decodeJSON(w, r, &raw); err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad request: "+err.Error())
		return
	}

	res, err := catalog.ValidateFleet(raw)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(res.Rejected) > 0 {
		s.requestLogger(r).WithField("rejected", len(res.Rejected)).Info("fleet import dropped records")
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func statusFor(err error) int {
	if errors.Is(err, catalog.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) requestLogger(r *http.Request) *log.Entry {
	return s.logger.WithFields(log.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"IP":     clientIP(r),
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.requestLogger(r).Debugf("handled in %s", time.Since(start))
	})
}

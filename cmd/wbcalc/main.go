// wbcalc evaluates one loading from the command line.
//
//	wbcalc -in request.json
//	wbcalc -fleet fleet.json < request.json
//	wbcalc -import export.json -o fleet.json
//
// The request is the body accepted by POST /calculate, plus an optional
// "registration" that selects an aircraft from the -fleet file.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goforj/godump"
	"github.com/peterbourgon/ff"

	"weight_balance/internal/balance"
	"weight_balance/internal/catalog"
	"weight_balance/internal/models"
)

type request struct {
	AircraftID      string              `json:"aircraft_id"`
	Registration    string              `json:"registration"`
	Loading         models.LoadingState `json:"loading"`
	Category        models.Category     `json:"category"`
	FlightPlan      *models.FuelPlan    `json:"flight_plan"`
	EvaluateLanding *bool               `json:"evaluate_landing"`
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "wbcalc:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("wbcalc", flag.ContinueOnError)
	var (
		catalogPath = fs.String("catalog", "", "aircraft catalog JSON file (empty uses the built-in fleet)")
		fleetPath   = fs.String("fleet", "", "saved aircraft file for requests that name a registration")
		in          = fs.String("in", "", "request file (default stdin)")
		list        = fs.Bool("list", false, "list catalog templates and exit")
		dump        = fs.Bool("dump", false, "print a readable dump instead of JSON")
		importPath  = fs.String("import", "", "validate a fleet export and write the valid records to -o")
		out         = fs.String("o", "", "output file for -import")
	)
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("WB")); err != nil {
		return err
	}

	if *importPath != "" {
		return importFleet(*importPath, *out, stdout)
	}

	cat, err := catalog.Open(*catalogPath)
	if err != nil {
		return err
	}

	if *list {
		for _, t := range cat.Templates() {
			fmt.Fprintf(stdout, "%-10s %s %s\n", t.ID, t.Make, t.Model)
		}
		return nil
	}

	r := stdin
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	var req request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return fmt.Errorf("request: %w", err)
	}

	tpl, armOverrides, err := resolve(cat, *fleetPath, req)
	if err != nil {
		return err
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
		return err
	}

	if *dump {
		godump.Fdump(stdout, ev)
		return nil
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(ev)
}

func resolve(cat *catalog.Catalog, fleetPath string, req request) (models.Template, map[string]float64, error) {
	if req.Registration == "" {
		if req.AircraftID == "" {
			return models.Template{}, nil, errors.New("request needs aircraft_id or registration")
		}
		tpl, err := cat.Lookup(req.AircraftID)
		return tpl, nil, err
	}

	if fleetPath == "" {
		return models.Template{}, nil, errors.New("registration given without -fleet")
	}
	fleet, err := catalog.LoadFleet(fleetPath)
	if err != nil {
		return models.Template{}, nil, err
	}
	for _, sa := range fleet.Aircraft {
		if strings.EqualFold(sa.Registration, req.Registration) {
			tpl, err := cat.Resolve(sa)
			return tpl, sa.ArmOverrides, err
		}
	}
	return models.Template{}, nil, fmt.Errorf("%w: registration %s", catalog.ErrNotFound, req.Registration)
}

func importFleet(path, out string, stdout io.Writer) error {
	if out == "" {
		return errors.New("-import needs -o")
	}
	res, err := catalog.LoadFleet(path)
	if err != nil {
		return err
	}
	for _, msg := range res.Rejected {
		fmt.Fprintln(stdout, "dropped", msg)
	}
	if err := catalog.SaveFleet(out, res.Aircraft); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %d aircraft to %s\n", len(res.Aircraft), out)
	return nil
}

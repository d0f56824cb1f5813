// Package dashboard is the single JSON entry point shared by the CLI and the WASM build.
// A request carries one set of policy parameters; the response carries the simulation,
// its judgment and, on request, the cheapest acceptable alternative under the same
// conditions.
package dashboard

import (
	"encoding/json"
	"fmt"

	"github.com/cxd309/tram-policy/internal/engine"
	"github.com/cxd309/tram-policy/internal/judge"
	"github.com/cxd309/tram-policy/internal/policy"
	"github.com/cxd309/tram-policy/internal/search"
	"github.com/cxd309/tram-policy/internal/station"
)

// AlternativeRequest asks for an alternative search. A zero Grid means the default grid.
type AlternativeRequest struct {
	Grid    search.Grid `json:"grid"`
	Workers int         `json:"workers,omitempty"`
}

// Request is the JSON input of Run. Omitting stations selects the embedded dataset; an
// explicit empty list yields the not-ready result.
type Request struct {
	Params      policy.Params       `json:"params"`
	Stations    []station.Station   `json:"stations,omitempty"`
	Calibration *engine.Calibration `json:"calibration,omitempty"`
	Alternative *AlternativeRequest `json:"alternative,omitempty"`
}

// Response is the JSON output of Run. Judgment is nil while the dataset is not ready.
type Response struct {
	Result      engine.Result       `json:"result"`
	Judgment    *judge.Judgment     `json:"judgment,omitempty"`
	Alternative *search.Alternative `json:"alternative,omitempty"`
}

// Conditions returns the parts of p an alternative search holds fixed: weather, signal
// priority and time slot.
func Conditions(p policy.Params) policy.Partial {
	return policy.Partial{
		SignalPriority: &p.SignalPriority,
		Weather:        &p.Weather,
		TimeSlot:       &p.TimeSlot,
	}
}

// Run simulates and judges req.
func Run(req Request) (Response, error) {
	model := engine.Default()
	if req.Calibration != nil {
		m, err := engine.New(*req.Calibration)
		if err != nil {
			return Response{}, err
		}
		model = m
	}
	stations := req.Stations
	if stations == nil {
		stations = station.Default()
	}

	res, err := model.Simulate(req.Params, stations)
	if err != nil {
		return Response{}, err
	}
	out := Response{Result: res}
	if res.Ready {
		j := judge.Judge(res.AverageCongestionPercent, res.ComplaintScore, res.BudgetChangePercent)
		out.Judgment = &j
	}

	if req.Alternative != nil {
		alt, err := search.Search(model, stations, Conditions(req.Params), search.Options{
			Grid:    req.Alternative.Grid,
			Workers: req.Alternative.Workers,
		})
		if err != nil {
			return Response{}, fmt.Errorf("alternative search: %w", err)
		}
		out.Alternative = &alt
	}
	return out, nil
}

// RunJSON accepts a JSON-encoded Request and returns a JSON-encoded Response.
func RunJSON(jsonInput string) (string, error) {
	var req Request
	if err := json.Unmarshal([]byte(jsonInput), &req); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}

	resp, err := Run(req)
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}

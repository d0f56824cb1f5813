// Package search finds the cheapest acceptable policy over a fixed parameter grid.
//
// Every grid point is simulated and judged. Rejected points are dropped and the point with
// the lowest budget change wins; ties go to the earliest point in grid order (intervals
// outer, reductions inner), so a concurrent search returns the same candidate as a
// sequential one.
package search

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/cxd309/tram-policy/internal/engine"
	"github.com/cxd309/tram-policy/internal/judge"
	"github.com/cxd309/tram-policy/internal/policy"
	"github.com/cxd309/tram-policy/internal/station"
)

// Grid is the set of dispatch intervals and bus reductions searched.
type Grid struct {
	Intervals  []float64 `json:"intervals" yaml:"intervals"`   // minutes, ascending
	Reductions []float64 `json:"reductions" yaml:"reductions"` // percent, ascending
}

// DefaultGrid covers every whole-minute interval from 4 to 12 and bus reductions from 0 to
// 30 percent in steps of 5.
func DefaultGrid() Grid {
	g := Grid{}
	for i := 4; i <= 12; i++ {
		g.Intervals = append(g.Intervals, float64(i))
	}
	for r := 0; r <= 30; r += 5 {
		g.Reductions = append(g.Reductions, float64(r))
	}
	return g
}

// Size returns the number of grid points.
func (g Grid) Size() int {
	return len(g.Intervals) * len(g.Reductions)
}

// Options tunes a search. A zero Grid means DefaultGrid; Workers <= 1 evaluates
// sequentially.
type Options struct {
	Grid    Grid
	Workers int
}

// Candidate is one evaluated grid point.
type Candidate struct {
	Index    int            `json:"index"`
	Params   policy.Params  `json:"params"`
	Result   engine.Result  `json:"result"`
	Judgment judge.Judgment `json:"judgment"`
}

// Alternative is the outcome of a search. Found is false when no grid point escaped
// rejection; this is an expected outcome and not an error.
type Alternative struct {
	Found      bool       `json:"found"`
	Best       *Candidate `json:"best,omitempty"`
	Evaluated  int        `json:"evaluated"`
	Acceptable int        `json:"acceptable"`
	Message    string     `json:"message"`
}

// FindAlternative searches the default grid with the default model.
func FindAlternative(stations []station.Station, fixed policy.Partial) (Alternative, error) {
	return Search(engine.Default(), stations, fixed, Options{})
}

// Search evaluates every grid point under model. Fields of fixed that are set pin the
// matching grid axis to that value; the remaining fields supply weather, signal priority
// and time slot for every point.
func Search(model engine.Model, stations []station.Station, fixed policy.Partial, opts Options) (Alternative, error) {
	grid := opts.Grid
	if len(grid.Intervals) == 0 && len(grid.Reductions) == 0 {
		grid = DefaultGrid()
	}
	if fixed.DispatchIntervalMinutes != nil {
		grid.Intervals = []float64{*fixed.DispatchIntervalMinutes}
	}
	if fixed.BusReductionPercent != nil {
		grid.Reductions = []float64{*fixed.BusReductionPercent}
	}
	if grid.Size() == 0 {
		return Alternative{}, fmt.Errorf("%w: search grid has %d intervals and %d reductions",
			policy.ErrInvalidParameter, len(grid.Intervals), len(grid.Reductions))
	}

	base := policy.Params{}.Merge(fixed)
	points := make([]policy.Params, 0, grid.Size())
	for _, interval := range grid.Intervals {
		for _, reduction := range grid.Reductions {
			p := base
			p.DispatchIntervalMinutes = interval
			p.BusReductionPercent = reduction
			points = append(points, p)
		}
	}

	candidates, err := evaluate(model, stations, points, opts.Workers)
	if err != nil {
		return Alternative{}, err
	}

	alt := Alternative{Evaluated: len(candidates)}
	for i := range candidates {
		c := &candidates[i]
		if !c.Result.Ready || !c.Judgment.Tier.Acceptable() {
			continue
		}
		alt.Acceptable++
		if alt.Best == nil || c.Result.BudgetChangePercent < alt.Best.Result.BudgetChangePercent {
			alt.Best = c
		}
	}

	switch {
	case len(stations) == 0:
		alt.Message = "station data is loading"
	case alt.Best == nil:
		alt.Message = "no acceptable alternative on the search grid; relax the fixed conditions and try again"
	default:
		alt.Found = true
		b := alt.Best
		alt.Message = fmt.Sprintf("dispatch every %.0f minutes with a %.0f%% bus reduction: budget change %.1f%%, judged %s",
			b.Params.DispatchIntervalMinutes, b.Params.BusReductionPercent, b.Result.BudgetChangePercent, b.Judgment.Tier)
	}

	ev := log.Debug().
		Int("evaluated", alt.Evaluated).
		Int("acceptable", alt.Acceptable).
		Int("workers", opts.Workers).
		Bool("found", alt.Found)
	if alt.Found {
		ev = ev.Int("best_index", alt.Best.Index)
	}
	ev.Msg("alternative search complete")

	return alt, nil
}

// evaluate simulates and judges every point. Results are stored by grid index, and the
// error reported is the one of the lowest failing index.
func evaluate(model engine.Model, stations []station.Station, points []policy.Params, workers int) ([]Candidate, error) {
	out := make([]Candidate, len(points))
	errs := make([]error, len(points))

	run := func(i int) {
		res, err := model.Simulate(points[i], stations)
		if err != nil {
			errs[i] = fmt.Errorf("grid point %d: %w", i, err)
			return
		}
		out[i] = Candidate{
			Index:    i,
			Params:   points[i],
			Result:   res,
			Judgment: judge.Judge(res.AverageCongestionPercent, res.ComplaintScore, res.BudgetChangePercent),
		}
	}

	if workers <= 1 {
		for i := range points {
			run(i)
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					run(i)
				}
			}()
		}
		for i := range points {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
